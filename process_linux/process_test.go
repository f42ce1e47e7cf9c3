//go:build linux

package process_linux

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageinfo/inspect"
	"pageinfo/pagetable"
	"pageinfo/process"
	"pageinfo/process_dump"
)

func openSelf(t *testing.T) *LinuxProcess {
	t.Helper()
	p, err := NewWithPID(process.ProcessID(os.Getpid()), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestFinder_NoSuchProcess(t *testing.T) {
	f := NewProcessFinder(false)

	_, err := f.FindProcessByPID(0)
	assert.ErrorIs(t, err, process.ErrNoSuchProcess)

	// above the kernel pid_max ceiling
	_, err = f.FindProcessByPID(1 << 23)
	assert.ErrorIs(t, err, process.ErrNoSuchProcess)
}

func TestFinder_Self(t *testing.T) {
	p, err := NewProcessFinder(false).FindProcessByPID(process.ProcessID(os.Getpid()))
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, process.ProcessID(os.Getpid()), p.GetPID())
}

func TestGetMemoryMap_Self(t *testing.T) {
	p := openSelf(t)

	mm, err := p.GetMemoryMap()
	if err != nil {
		t.Skipf("pagemap not readable: %v", err)
	}

	regions := mm.Regions()
	require.NotEmpty(t, regions)
	for i := 1; i < len(regions); i++ {
		assert.LessOrEqual(t, regions[i-1].Address, regions[i].Address)
	}
}

func TestPageTable_TouchedMemoryIsResident(t *testing.T) {
	// touch the buffer before reading the maps so its region is listed
	buf := make([]byte, 2*pagetable.PageSize)
	for i := range buf {
		buf[i] = 1
	}
	addr := uint64(uintptrOf(buf))

	p := openSelf(t)
	mm, err := p.GetMemoryMap()
	if err != nil {
		t.Skipf("pagemap not readable: %v", err)
	}

	tr := pagetable.Translate(mm.PageTable(), addr)
	runtime.KeepAlive(buf)

	assert.True(t, tr.Present, "stopped at %s", tr.Stopped)
	assert.NotZero(t, tr.Page.Flags)
}

func TestPageTable_UnmappedAddress(t *testing.T) {
	p := openSelf(t)

	mm, err := p.GetMemoryMap()
	if err != nil {
		t.Skipf("pagemap not readable: %v", err)
	}

	// the null page is never mapped
	tr := pagetable.Translate(mm.PageTable(), 0)
	assert.False(t, tr.Present)
}

func TestResolveExecutable_Self(t *testing.T) {
	p := openSelf(t)

	exe, err := os.Executable()
	require.NoError(t, err)

	d, err := inspect.ResolveExecutable(p)
	if err != nil {
		t.Skipf("executable not resolvable: %v", err)
	}

	assert.Equal(t, filepath.Base(exe), d.Name)
	assert.NotZero(t, d.InodeNumber)
}

func TestScanFirstPage_Self(t *testing.T) {
	p := openSelf(t)

	page, err := inspect.ScanFirstPage(p)
	if err != nil {
		// an evicted first region is legitimate
		require.ErrorIs(t, err, process.ErrPageNotFound)
		return
	}

	mm, err := p.GetMemoryMap()
	require.NoError(t, err)
	first := mm.Regions()[0]
	assert.GreaterOrEqual(t, uint64(page.VirtualAddress), first.Address)
	assert.LessOrEqual(t, uint64(page.VirtualAddress), first.End())
}

func TestSave_Self(t *testing.T) {
	p := openSelf(t)

	dir := t.TempDir()
	if err := p.Save(dir); err != nil {
		t.Skipf("snapshot not possible: %v", err)
	}

	dump, err := process_dump.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, process.ProcessID(os.Getpid()), dump.PID)
	assert.NotEmpty(t, dump.MemoryMap)
}

func TestLinuxProcess_ConcurrentUse(t *testing.T) {
	p, err := NewWithPID(process.ProcessID(os.Getpid()), false)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, process.ProcessID(os.Getpid()), p.GetPID())
			if mm, err := p.GetMemoryMap(); err == nil {
				assert.NotEmpty(t, mm.Regions())
			}
		}()
	}
	wg.Wait()

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
}
