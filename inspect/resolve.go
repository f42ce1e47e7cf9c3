package inspect

import (
	"fmt"

	"pageinfo/process"
)

// ResolveExecutable follows memory map -> executable file -> directory entry
// -> inode and copies the fields it needs. The returned value shares nothing
// with the objects it was read from.
func ResolveExecutable(proc process.Process) (process.DentryDescriptor, error) {
	mm, err := proc.GetMemoryMap()
	if err != nil {
		return process.DentryDescriptor{}, err
	}
	if mm == nil {
		return process.DentryDescriptor{}, process.ErrNoMemoryMap
	}

	exe, err := mm.ExeFile()
	if err != nil {
		return process.DentryDescriptor{}, err
	}
	if exe == nil {
		return process.DentryDescriptor{}, process.ErrNoExeFile
	}

	dentry := exe.Dentry
	if dentry == nil {
		return process.DentryDescriptor{}, fmt.Errorf("%s: %w", exe.Path, process.ErrNoDentry)
	}

	inode := dentry.Inode
	if inode == nil {
		return process.DentryDescriptor{}, fmt.Errorf("%s: %w", dentry.Name, process.ErrNoInode)
	}

	return process.DentryDescriptor{
		Name:        dentry.Name,
		InodeUID:    inode.UID,
		InodeNumber: inode.Number,
		InodeFlags:  inode.Flags,
	}, nil
}
