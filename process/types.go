package process

import "fmt"

// ProcessID represents a unique identifier for a process
type ProcessID int

// PageDescriptor describes the first resident page found in a process
type PageDescriptor struct {
	Flags          uint64               // Page state bits
	VirtualAddress ProcessMemoryAddress // Address that resolved to the page
	Mapping        uint64               // Owner token of the page, never dereferenced
}

// DentryDescriptor is a snapshot of the directory entry of a process executable
type DentryDescriptor struct {
	Name        string // File name of the executable
	InodeUID    uint32 // Owning user of the inode
	InodeNumber uint64 // Inode number
	InodeFlags  uint32 // Inode flags word
}

func (d DentryDescriptor) String() string {
	return fmt.Sprintf("%s (uid=%d ino=%d flags=%x)", d.Name, d.InodeUID, d.InodeNumber, d.InodeFlags)
}
