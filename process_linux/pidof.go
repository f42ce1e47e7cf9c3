//go:build linux

package process_linux

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	gopsprocess "github.com/shirou/gopsutil/v4/process"

	"pageinfo/process"
)

// LinuxProcessFinder implements process.ProcessFinder for live processes
type LinuxProcessFinder struct {
	// KPageFlags enables kernel page flags in page descriptors
	KPageFlags bool
}

var _ process.ProcessFinder = (*LinuxProcessFinder)(nil)

// NewProcessFinder creates a finder for live processes
func NewProcessFinder(kpageflags bool) *LinuxProcessFinder {
	return &LinuxProcessFinder{KPageFlags: kpageflags}
}

func (f *LinuxProcessFinder) FindProcessByPID(pid process.ProcessID) (process.Process, error) {
	if pid <= 0 {
		return nil, process.ErrNoSuchProcess
	}

	exists, err := gopsprocess.PidExists(int32(pid))
	if err != nil {
		exists = procExists(int(pid))
	}
	if !exists {
		return nil, fmt.Errorf("pid %d: %w", pid, process.ErrNoSuchProcess)
	}

	return NewWithPID(pid, f.KPageFlags)
}

// ----- helpers -----

func procExists(pid int) bool {
	// Fast path: stat /proc/<pid>
	_, err := os.Stat(filepath.Join("/proc", strconv.Itoa(pid)))
	if err == nil {
		return true
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	// For transient errors (permission, EIO): fall back to kill 0
	return syscall.Kill(pid, 0) == nil
}

// processName returns the comm of a process, "unknown" when it cannot be read
func processName(pid process.ProcessID) string {
	p, err := gopsprocess.NewProcess(int32(pid))
	if err != nil {
		return "unknown"
	}
	name, err := p.Name()
	if err != nil || name == "" {
		return "unknown"
	}
	return name
}
