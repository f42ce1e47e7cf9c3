package process_dump

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"sync"

	"pageinfo/process"
)

// Finder resolves PIDs to dumps. Dumps added with Add take precedence over
// dumps stored under dir/<pid>, which are loaded on first use.
type Finder struct {
	dir   string
	mu    sync.Mutex
	procs map[process.ProcessID]*ProcessDump
}

var _ process.ProcessFinder = (*Finder)(nil)

// NewFinder creates a Finder backed by dir. An empty dir serves only added dumps.
func NewFinder(dir string) *Finder {
	return &Finder{
		dir:   dir,
		procs: make(map[process.ProcessID]*ProcessDump),
	}
}

// Add registers a dump under its PID
func (f *Finder) Add(p *ProcessDump) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.procs[p.PID] = p
}

func (f *Finder) FindProcessByPID(pid process.ProcessID) (process.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.procs[pid]; ok {
		return p, nil
	}

	if f.dir == "" || pid <= 0 {
		return nil, process.ErrNoSuchProcess
	}

	p, err := Load(filepath.Join(f.dir, strconv.Itoa(int(pid))))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, process.ErrNoSuchProcess
		}
		return nil, fmt.Errorf("load dump for pid %d: %w", pid, err)
	}
	if p.PID != pid {
		return nil, fmt.Errorf("dump for pid %d records pid %d", pid, p.PID)
	}

	f.procs[pid] = p
	return p, nil
}
