package process

import (
	"pageinfo/pagetable"
	"pageinfo/process/memory_map"
)

// Process is the interface that defines the lookups a query needs from a process
type Process interface {
	// GetPID returns the process ID
	GetPID() ProcessID

	// GetMemoryMap returns the address space of the process, or ErrNoMemoryMap
	GetMemoryMap() (MemoryMap, error)

	// Close releases resources held for the process
	Close() error
}

// MemoryMap is the address space of a process
type MemoryMap interface {
	// Regions returns the mapped regions in increasing address order
	Regions() []memory_map.MemoryMapItem

	// PageTable returns the root of the translation hierarchy
	PageTable() pagetable.Table

	// ExeFile returns the file backing the primary executable mapping, or ErrNoExeFile
	ExeFile() (*ExeFile, error)
}

// ExeFile is the file backing the executable image of a process
type ExeFile struct {
	Path   string  `json:"path"`
	Dentry *Dentry `json:"dentry,omitempty"` // nil when the file has no directory entry
}

// Dentry links a name to an inode
type Dentry struct {
	Name  string `json:"name"`
	Inode *Inode `json:"inode,omitempty"` // nil when the inode is unreachable
}

// Inode holds the identity of a file
type Inode struct {
	UID    uint32 `json:"uid"`
	Number uint64 `json:"number"`
	Flags  uint32 `json:"flags"`
}
