package process_dump

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pageinfo/pagetable"
	"pageinfo/process"
	"pageinfo/process/memory_map"
)

const (
	metadataFile  = "metadata.json"
	memoryMapFile = "process_memory_map.json"
	pagesFile     = "process_pages.json"
)

// ProcessDump implements process.Process for a captured or hand-built process
type ProcessDump struct {
	PID       process.ProcessID
	Name      string
	Kernel    bool // no address space, like a kernel thread
	MemoryMap []memory_map.MemoryMapItem
	Pages     *pagetable.Directory
	Exe       *process.ExeFile
}

var _ process.Process = (*ProcessDump)(nil)

// NewProcessDump creates an empty ProcessDump with an address space and no regions
func NewProcessDump(pid process.ProcessID) *ProcessDump {
	return &ProcessDump{
		PID:   pid,
		Pages: pagetable.NewDirectory(),
	}
}

// AddRegion appends a region to the memory map, keeping it sorted
func (p *ProcessDump) AddRegion(start uint64, size uint, perms string, pathname string) {
	p.MemoryMap = append(p.MemoryMap, memory_map.MemoryMapItem{
		Address:  start,
		Size:     size,
		Perms:    perms,
		Pathname: pathname,
	})
	memory_map.SortByAddress(p.MemoryMap)
}

// MapPage marks the page containing addr as resident
func (p *ProcessDump) MapPage(addr uint64, flags uint64, mapping uint64) {
	p.Pages.Map(addr, pagetable.Page{Flags: flags, Mapping: mapping})
}

// SetExecutable records a fully resolvable executable image
func (p *ProcessDump) SetExecutable(path string, uid uint32, ino uint64, flags uint32) {
	p.Exe = &process.ExeFile{
		Path: path,
		Dentry: &process.Dentry{
			Name:  filepath.Base(path),
			Inode: &process.Inode{UID: uid, Number: ino, Flags: flags},
		},
	}
}

func (p *ProcessDump) GetPID() process.ProcessID {
	return p.PID
}

func (p *ProcessDump) GetMemoryMap() (process.MemoryMap, error) {
	if p.Kernel {
		return nil, process.ErrNoMemoryMap
	}
	return dumpMemoryMap{p}, nil
}

// Close is a no-op, a dump stays usable for later queries
func (p *ProcessDump) Close() error {
	return nil
}

type dumpMemoryMap struct {
	p *ProcessDump
}

func (m dumpMemoryMap) Regions() []memory_map.MemoryMapItem {
	result := make([]memory_map.MemoryMapItem, len(m.p.MemoryMap))
	copy(result, m.p.MemoryMap)
	return result
}

func (m dumpMemoryMap) PageTable() pagetable.Table {
	if m.p.Pages == nil {
		return nil
	}
	return m.p.Pages
}

func (m dumpMemoryMap) ExeFile() (*process.ExeFile, error) {
	if m.p.Exe == nil {
		return nil, process.ErrNoExeFile
	}
	return m.p.Exe, nil
}

type metadata struct {
	PID    process.ProcessID `json:"pid"`
	Name   string            `json:"name"`
	Kernel bool              `json:"kernel,omitempty"`
	Exe    *process.ExeFile  `json:"exe,omitempty"`
}

type pageRecord struct {
	Address uint64 `json:"address"`
	Flags   uint64 `json:"flags"`
	Mapping uint64 `json:"mapping"`
}

// Save writes the dump to a directory
func (p *ProcessDump) Save(dirname string) error {
	if err := os.MkdirAll(dirname, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	meta := metadata{PID: p.PID, Name: p.Name, Kernel: p.Kernel, Exe: p.Exe}
	if err := writeJSON(filepath.Join(dirname, metadataFile), meta); err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(dirname, memoryMapFile), p.MemoryMap); err != nil {
		return err
	}

	var pages []pageRecord
	if p.Pages != nil {
		for _, mp := range p.Pages.Pages() {
			pages = append(pages, pageRecord{Address: mp.Address, Flags: mp.Page.Flags, Mapping: mp.Page.Mapping})
		}
	}
	return writeJSON(filepath.Join(dirname, pagesFile), pages)
}

// Load reads a dump written by Save
func Load(dirname string) (*ProcessDump, error) {
	var meta metadata
	if err := readJSON(filepath.Join(dirname, metadataFile), &meta); err != nil {
		return nil, err
	}

	p := NewProcessDump(meta.PID)
	p.Name = meta.Name
	p.Kernel = meta.Kernel
	p.Exe = meta.Exe

	if err := readJSON(filepath.Join(dirname, memoryMapFile), &p.MemoryMap); err != nil {
		return nil, err
	}
	memory_map.SortByAddress(p.MemoryMap)

	var pages []pageRecord
	if err := readJSON(filepath.Join(dirname, pagesFile), &pages); err != nil {
		return nil, err
	}
	for _, rec := range pages {
		p.MapPage(rec.Address, rec.Flags, rec.Mapping)
	}

	return p, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(path), err)
	}
	return nil
}
