//go:build linux

package process_linux

import (
	"pageinfo/pagetable"
	"pageinfo/process"
	"pageinfo/process/memory_map"
)

type linuxMemoryMap struct {
	pid     process.ProcessID
	regions []memory_map.MemoryMapItem
	src     *pagemapSource
}

func (m *linuxMemoryMap) Regions() []memory_map.MemoryMapItem {
	result := make([]memory_map.MemoryMapItem, len(m.regions))
	copy(result, m.regions)
	return result
}

func (m *linuxMemoryMap) PageTable() pagetable.Table {
	return pagemapTable{src: m.src, level: pagetable.LevelPGD}
}

func (m *linuxMemoryMap) ExeFile() (*process.ExeFile, error) {
	return readExeFile(m.pid)
}
