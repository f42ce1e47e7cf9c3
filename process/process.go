// Package process defines the process model the page and dentry lookups work on
package process

import "errors"

// Interfaces live in:
// - process_interface.go: Process, MemoryMap and the executable file chain
// - process_finder.go: ProcessFinder
// - types.go: ProcessID and the result descriptors

var (
	// ErrNoSuchProcess is returned when a PID does not name a running process.
	ErrNoSuchProcess = errors.New("no such process")

	// ErrNoMemoryMap is returned for processes without an address space, such as kernel threads.
	ErrNoMemoryMap = errors.New("no memory map")

	// ErrNoRegion is returned when a memory map has no regions.
	ErrNoRegion = errors.New("no region")

	// ErrPageNotFound is returned when a scanned region holds no resident page.
	ErrPageNotFound = errors.New("page not found")

	ErrNoExeFile = errors.New("no executable file")
	ErrNoDentry  = errors.New("no directory entry")
	ErrNoInode   = errors.New("no inode")
)
