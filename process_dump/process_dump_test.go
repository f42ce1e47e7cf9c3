package process_dump

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageinfo/pagetable"
	"pageinfo/process"
)

func sampleDump() *ProcessDump {
	p := NewProcessDump(1234)
	p.Name = "myprog"
	p.AddRegion(0x600000, 0x1000, "rw-p", "/usr/bin/myprog")
	p.AddRegion(0x400000, 0x2000, "r-xp", "/usr/bin/myprog")
	p.MapPage(0x401000, 0x40, 0xabc)
	p.SetExecutable("/usr/bin/myprog", 1000, 99, 0)
	return p
}

func TestProcessDump_MemoryMap(t *testing.T) {
	p := sampleDump()

	mm, err := p.GetMemoryMap()
	require.NoError(t, err)

	regions := mm.Regions()
	require.Len(t, regions, 2)
	assert.Equal(t, uint64(0x400000), regions[0].Address, "regions are kept sorted")

	tr := pagetable.Translate(mm.PageTable(), 0x401000)
	require.True(t, tr.Present)
	assert.Equal(t, uint64(0x40), tr.Page.Flags)

	exe, err := mm.ExeFile()
	require.NoError(t, err)
	assert.Equal(t, "myprog", exe.Dentry.Name)
}

func TestProcessDump_Kernel(t *testing.T) {
	p := NewProcessDump(2)
	p.Kernel = true

	_, err := p.GetMemoryMap()
	assert.ErrorIs(t, err, process.ErrNoMemoryMap)
}

func TestProcessDump_NoExecutable(t *testing.T) {
	mm, err := NewProcessDump(5).GetMemoryMap()
	require.NoError(t, err)

	_, err = mm.ExeFile()
	assert.ErrorIs(t, err, process.ErrNoExeFile)
}

func TestProcessDump_SaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "1234")
	require.NoError(t, sampleDump().Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, process.ProcessID(1234), loaded.PID)
	assert.Equal(t, "myprog", loaded.Name)
	assert.Len(t, loaded.MemoryMap, 2)
	assert.Equal(t, 1, loaded.Pages.Len())
	require.NotNil(t, loaded.Exe)
	require.NotNil(t, loaded.Exe.Dentry)
	require.NotNil(t, loaded.Exe.Dentry.Inode)
	assert.Equal(t, uint64(99), loaded.Exe.Dentry.Inode.Number)
}

func TestFinder(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, sampleDump().Save(filepath.Join(root, strconv.Itoa(1234))))

	f := NewFinder(root)

	p, err := f.FindProcessByPID(1234)
	require.NoError(t, err)
	assert.Equal(t, process.ProcessID(1234), p.GetPID())

	again, err := f.FindProcessByPID(1234)
	require.NoError(t, err)
	assert.Same(t, p, again, "loaded dumps are cached")

	_, err = f.FindProcessByPID(4321)
	assert.ErrorIs(t, err, process.ErrNoSuchProcess)

	added := NewProcessDump(4321)
	f.Add(added)
	p, err = f.FindProcessByPID(4321)
	require.NoError(t, err)
	assert.Same(t, added, p)
}

func TestFinder_PIDMismatch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, sampleDump().Save(filepath.Join(root, "77")))

	_, err := NewFinder(root).FindProcessByPID(77)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, process.ErrNoSuchProcess)
}
