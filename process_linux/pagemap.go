//go:build linux

package process_linux

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"

	"pageinfo/pagetable"
	"pageinfo/process"
	"pageinfo/process/memory_map"
)

// Bits of a /proc/[pid]/pagemap entry
const (
	pmPresent   = uint64(1) << 63
	pmPFNMask   = uint64(1)<<55 - 1
	pmFlagShift = 55
)

// pagemapSource answers leaf lookups from /proc/[pid]/pagemap and, when
// readable, /proc/kpageflags.
type pagemapSource struct {
	pagemap    int
	kpageflags int
	regions    []memory_map.MemoryMapItem
}

func openPagemap(pid process.ProcessID, regions []memory_map.MemoryMapItem, kpageflags bool) (*pagemapSource, error) {
	fd, err := unix.Open(fmt.Sprintf("/proc/%d/pagemap", pid), unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open pagemap of pid %d: %w", pid, err)
	}

	src := &pagemapSource{pagemap: fd, kpageflags: -1, regions: regions}
	if kpageflags {
		// Without CAP_SYS_ADMIN this fails and pagemap status bits are used instead
		if kfd, err := unix.Open("/proc/kpageflags", unix.O_RDONLY|unix.O_CLOEXEC, 0); err == nil {
			src.kpageflags = kfd
		}
	}
	return src, nil
}

func (s *pagemapSource) close() {
	if s.pagemap >= 0 {
		unix.Close(s.pagemap)
		s.pagemap = -1
	}
	if s.kpageflags >= 0 {
		unix.Close(s.kpageflags)
		s.kpageflags = -1
	}
}

func (s *pagemapSource) readEntry(fd int, index uint64) (uint64, bool) {
	var buf [8]byte
	n, err := unix.Pread(fd, buf[:], int64(index*8))
	if err != nil || n != len(buf) {
		return 0, false
	}
	return binary.NativeEndian.Uint64(buf[:]), true
}

// page returns the page backing vaddr if it is resident
func (s *pagemapSource) page(vaddr uint64) (pagetable.Page, bool) {
	entry, ok := s.readEntry(s.pagemap, vaddr>>pagetable.PageShift)
	if !ok || entry&pmPresent == 0 {
		return pagetable.Page{}, false
	}

	page := pagetable.Page{Flags: entry >> pmFlagShift}

	// the PFN reads as zero for unprivileged callers
	if pfn := entry & pmPFNMask; pfn != 0 && s.kpageflags >= 0 {
		if flags, ok := s.readEntry(s.kpageflags, pfn); ok {
			page.Flags = flags
		}
	}

	// file-backed pages are owned by the inode's address space
	if region := memory_map.RegionForAddress(vaddr, s.regions); region != nil {
		page.Mapping = region.Inode
	}

	return page, true
}

// pagemapTable presents the pagemap as a five-level hierarchy. A directory
// entry is present when its span overlaps a mapped region, a page entry when
// pagemap reports the page resident.
type pagemapTable struct {
	src   *pagemapSource
	level pagetable.Level
	base  uint64
}

var _ pagetable.Table = pagemapTable{}

func (t pagemapTable) Lookup(index int) (pagetable.Entry, bool) {
	desc := pagetable.Levels[t.level]
	start := t.base | uint64(index)<<desc.Shift

	if t.level == pagetable.LevelPTE {
		page, ok := t.src.page(start)
		return pagetable.Entry{Page: page}, ok
	}

	if !memory_map.Overlaps(start, start+desc.Span(), t.src.regions) {
		return pagetable.Entry{}, false
	}

	return pagetable.Entry{
		Next: pagemapTable{src: t.src, level: t.level + 1, base: start},
	}, true
}
