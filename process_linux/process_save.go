//go:build linux

package process_linux

import (
	"errors"
	"fmt"

	"pageinfo/pagetable"
	"pageinfo/process"
	"pageinfo/process_dump"
)

// Snapshot captures what a query needs from the live process: the memory
// map, the resident pages of the first region and the executable metadata.
func (p *LinuxProcess) Snapshot() (*process_dump.ProcessDump, error) {
	pid := p.GetPID()
	if pid == 0 {
		return nil, fmt.Errorf("process not opened")
	}

	dump := process_dump.NewProcessDump(pid)
	dump.Name = processName(pid)

	mm, err := p.GetMemoryMap()
	if errors.Is(err, process.ErrNoMemoryMap) {
		dump.Kernel = true
		p.log.Infoln("Process has no memory map, saving as kernel thread")
		return dump, nil
	}
	if err != nil {
		return nil, err
	}

	dump.MemoryMap = mm.Regions()

	if len(dump.MemoryMap) > 0 {
		first := dump.MemoryMap[0]
		root := mm.PageTable()
		resident := 0
		for addr := pagetable.PageAlign(first.Address); addr <= first.End(); addr += pagetable.PageSize {
			if tr := pagetable.Translate(root, addr); tr.Present {
				dump.Pages.Map(addr, tr.Page)
				resident++
			}
			if addr+pagetable.PageSize < addr {
				break
			}
		}
		p.log.Infoln("Captured", resident, "resident pages of region at", fmt.Sprintf("%x", first.Address))
	}

	exe, err := mm.ExeFile()
	if err != nil {
		p.log.Warn("Executable not captured: ", err)
	} else {
		dump.Exe = exe
	}

	return dump, nil
}

// Save writes a snapshot of the process to a directory readable by process_dump.Load
func (p *LinuxProcess) Save(dirname string) error {
	dump, err := p.Snapshot()
	if err != nil {
		return err
	}

	if err := dump.Save(dirname); err != nil {
		return err
	}

	p.log.Infoln("Process snapshot saved to", dirname)
	return nil
}
