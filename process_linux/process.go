//go:build linux

package process_linux

import (
	"fmt"
	"os"
	"sync"

	"pageinfo/process"
	"pageinfo/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// LinuxProcess implements the process.Process interface on top of /proc.
// pid, kpageflags and log are fixed at construction; mu guards sources.
type LinuxProcess struct {
	pid        process.ProcessID
	kpageflags bool
	log        *logger.Logger
	mu         sync.Mutex
	sources    []*pagemapSource
}

// NewWithPID opens the process with the given PID. kpageflags enables reading
// kernel page flags, which needs CAP_SYS_ADMIN.
func NewWithPID(pid process.ProcessID, kpageflags bool) (*LinuxProcess, error) {
	// Check if process exists
	procPath := fmt.Sprintf("/proc/%d", pid)
	if _, err := os.Stat(procPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("pid %d: %w", pid, process.ErrNoSuchProcess)
	}

	p := &LinuxProcess{
		pid:        pid,
		kpageflags: kpageflags,
		log:        logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid))),
	}
	p.log.Debugln("Process opened")

	return p, nil
}

// Close releases the pagemap handles opened by GetMemoryMap
func (p *LinuxProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, src := range p.sources {
		src.close()
	}
	p.sources = nil

	p.log.Debugln("Process closed")

	return nil
}

// GetPID returns the process ID
func (p *LinuxProcess) GetPID() process.ProcessID {
	return p.pid
}

// GetMemoryMap reads /proc/[pid]/maps and opens the pagemap of the process.
// Kernel threads have an empty maps file and report process.ErrNoMemoryMap.
func (p *LinuxProcess) GetMemoryMap() (process.MemoryMap, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pid == 0 {
		return nil, fmt.Errorf("process not opened")
	}

	mm, err := memory_map.ReadMemoryMap(int(p.pid))
	if err != nil {
		return nil, fmt.Errorf("failed to read memory map: %w", err)
	}
	if len(mm) == 0 {
		return nil, process.ErrNoMemoryMap
	}

	src, err := openPagemap(p.pid, mm, p.kpageflags)
	if err != nil {
		return nil, err
	}
	p.sources = append(p.sources, src)

	p.log.Debugln("Memory map read,", len(mm), "regions")

	return &linuxMemoryMap{pid: p.pid, regions: mm, src: src}, nil
}
