package memory_map

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// MemoryMapItem represents a memory region in a process's address space
type MemoryMapItem struct {
	Address  uint64 `json:"address"`  // The starting address of the memory region
	Size     uint   `json:"size"`     // The size of the memory region in bytes
	Perms    string `json:"perms"`    // Permissions (e.g., "r-xp" for read, execute, private)
	Offset   uint64 `json:"offset"`   // Offset into the backing file
	Dev      string `json:"dev"`      // Backing device as major:minor
	Inode    uint64 `json:"inode"`    // Backing inode, 0 for anonymous memory
	Pathname string `json:"pathname"` // Backing file or pseudo path such as [heap]
}

// String returns a string representation of the memory map item
func (mmItem MemoryMapItem) String() string {
	return fmt.Sprintf("Address: %x, Size: %d, Perms: %s, Path: %s", mmItem.Address, mmItem.Size, mmItem.Perms, mmItem.Pathname)
}

// End returns the first address past the region
func (mmItem MemoryMapItem) End() uint64 {
	return mmItem.Address + uint64(mmItem.Size)
}

// ParseMemoryMap parses the /proc/[pid]/maps format. Malformed lines are skipped.
func ParseMemoryMap(r io.Reader) ([]MemoryMapItem, error) {
	var memoryMap []MemoryMapItem
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		item, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		memoryMap = append(memoryMap, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return memoryMap, nil
}

// parseLine parses a single maps line such as
// "00400000-0040b000 r-xp 00000000 08:01 1234   /usr/bin/cat"
func parseLine(line string) (MemoryMapItem, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return MemoryMapItem{}, false
	}

	addrRange := strings.Split(fields[0], "-")
	if len(addrRange) != 2 {
		return MemoryMapItem{}, false
	}

	startAddr, err := strconv.ParseUint(addrRange[0], 16, 64)
	if err != nil {
		return MemoryMapItem{}, false
	}

	endAddr, err := strconv.ParseUint(addrRange[1], 16, 64)
	if err != nil || endAddr < startAddr {
		return MemoryMapItem{}, false
	}

	item := MemoryMapItem{
		Address: startAddr,
		Size:    uint(endAddr - startAddr),
		Perms:   fields[1],
	}

	if len(fields) > 2 {
		item.Offset, _ = strconv.ParseUint(fields[2], 16, 64)
	}
	if len(fields) > 3 {
		item.Dev = fields[3]
	}
	if len(fields) > 4 {
		item.Inode, _ = strconv.ParseUint(fields[4], 10, 64)
	}
	if len(fields) > 5 {
		// pathnames may contain spaces, and deleted files carry a " (deleted)" suffix
		item.Pathname = strings.Join(fields[5:], " ")
	}

	return item, true
}

// SortByAddress sorts regions in increasing address order
func SortByAddress(memoryMap []MemoryMapItem) {
	sort.Slice(memoryMap, func(i, j int) bool {
		return memoryMap[i].Address < memoryMap[j].Address
	})
}

// RegionForAddress returns the region containing addr. memoryMap must be sorted.
func RegionForAddress(addr uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	i := sort.Search(len(memoryMap), func(i int) bool {
		return memoryMap[i].End() > addr
	})
	if i < len(memoryMap) && memoryMap[i].Address <= addr {
		return &memoryMap[i]
	}

	return nil
}

// Overlaps reports whether any region intersects [start, end). memoryMap must be sorted.
func Overlaps(start, end uint64, memoryMap []MemoryMapItem) bool {
	i := sort.Search(len(memoryMap), func(i int) bool {
		return memoryMap[i].End() > start
	})
	return i < len(memoryMap) && memoryMap[i].Address < end
}
