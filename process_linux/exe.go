//go:build linux

package process_linux

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"pageinfo/process"
)

const deletedSuffix = " (deleted)"

// readExeFile resolves /proc/[pid]/exe. The dentry is left nil when the link
// has no usable name and the inode is left nil when it cannot be stat'ed.
func readExeFile(pid process.ProcessID) (*process.ExeFile, error) {
	exeLink := fmt.Sprintf("/proc/%d/exe", pid)

	target, err := os.Readlink(exeLink)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", process.ErrNoExeFile, err)
	}

	exe := &process.ExeFile{Path: strings.TrimSuffix(target, deletedSuffix)}

	name := filepath.Base(exe.Path)
	if name == "" || name == "/" || name == "." {
		return exe, nil
	}
	exe.Dentry = &process.Dentry{Name: name}

	// stat through the magic link, it reaches the inode even after unlink
	var st unix.Stat_t
	if err := unix.Stat(exeLink, &st); err != nil {
		return exe, nil
	}

	exe.Dentry.Inode = &process.Inode{
		UID:    st.Uid,
		Number: uint64(st.Ino),
		Flags:  inodeFlags(exeLink),
	}
	return exe, nil
}

// inodeFlags returns the FS_IOC_GETFLAGS attribute word, 0 when the
// filesystem does not support it.
func inodeFlags(path string) uint32 {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC|unix.O_NONBLOCK, 0)
	if err != nil {
		return 0
	}
	defer unix.Close(fd)

	flags, err := unix.IoctlGetUint32(fd, unix.FS_IOC_GETFLAGS)
	if err != nil {
		return 0
	}
	return flags
}
