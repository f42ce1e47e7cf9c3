package inspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageinfo/process"
	"pageinfo/process_dump"
)

func TestScanFirstPage_FirstResident(t *testing.T) {
	p := process_dump.NewProcessDump(1234)
	p.AddRegion(0x400000, 0x4000, "r-xp", "/usr/bin/myprog")
	p.MapPage(0x403000, 0x2, 0)
	p.MapPage(0x401000, 0x40, 0xfeed)

	page, err := ScanFirstPage(p)
	require.NoError(t, err)
	assert.Equal(t, process.ProcessMemoryAddress(0x401000), page.VirtualAddress)
	assert.Equal(t, uint64(0x40), page.Flags)
	assert.Equal(t, uint64(0xfeed), page.Mapping)
}

func TestScanFirstPage_InclusiveUpperBound(t *testing.T) {
	p := process_dump.NewProcessDump(1234)
	p.AddRegion(0x400000, 0x1000, "r-xp", "")
	// the page starting exactly at the region end is still probed
	p.MapPage(0x401000, 0x8, 0)

	page, err := ScanFirstPage(p)
	require.NoError(t, err)
	assert.Equal(t, process.ProcessMemoryAddress(0x401000), page.VirtualAddress)
}

func TestScanFirstPage_UnalignedRegionStart(t *testing.T) {
	p := process_dump.NewProcessDump(1234)
	p.AddRegion(0x400800, 0x1000, "r-xp", "")
	p.MapPage(0x400000, 0x4, 0)

	page, err := ScanFirstPage(p)
	require.NoError(t, err)
	assert.Equal(t, process.ProcessMemoryAddress(0x400000), page.VirtualAddress)
}

func TestScanFirstPage_OnlyFirstRegion(t *testing.T) {
	p := process_dump.NewProcessDump(1234)
	p.AddRegion(0x400000, 0x1000, "r-xp", "")
	p.AddRegion(0x600000, 0x1000, "rw-p", "")
	p.MapPage(0x600000, 0x1, 0)

	_, err := ScanFirstPage(p)
	assert.ErrorIs(t, err, process.ErrPageNotFound)
}

func TestScanFirstPage_NoRegion(t *testing.T) {
	_, err := ScanFirstPage(process_dump.NewProcessDump(1234))
	assert.ErrorIs(t, err, process.ErrNoRegion)
}

func TestScanFirstPage_NoMemoryMap(t *testing.T) {
	p := process_dump.NewProcessDump(2)
	p.Kernel = true

	_, err := ScanFirstPage(p)
	assert.ErrorIs(t, err, process.ErrNoMemoryMap)
}

func TestScanFirstPage_TopOfAddressSpace(t *testing.T) {
	p := process_dump.NewProcessDump(1234)
	p.AddRegion(^uint64(0)-0x1fff, 0x1000, "rw-p", "")

	_, err := ScanFirstPage(p)
	assert.ErrorIs(t, err, process.ErrPageNotFound)
}
