//go:build linux

package memory_map

import (
	"fmt"
	"os"
)

// ReadMemoryMap reads and parses the memory map for a process from /proc/[pid]/maps.
// The result is sorted by address.
func ReadMemoryMap(pid int) ([]MemoryMapItem, error) {
	file, err := os.Open(fmt.Sprintf("/proc/%d/maps", pid))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	memoryMap, err := ParseMemoryMap(file)
	if err != nil {
		return nil, err
	}

	SortByAddress(memoryMap)
	return memoryMap, nil
}
