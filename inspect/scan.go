// Package inspect locates the first resident page of a process and resolves
// the metadata of its executable image.
package inspect

import (
	"pageinfo/pagetable"
	"pageinfo/process"
)

// ScanFirstPage probes the first region of the process memory map page by
// page, upper bound included, and returns the first address that translates
// to a present page. Later regions are never scanned.
func ScanFirstPage(proc process.Process) (process.PageDescriptor, error) {
	mm, err := proc.GetMemoryMap()
	if err != nil {
		return process.PageDescriptor{}, err
	}
	if mm == nil {
		return process.PageDescriptor{}, process.ErrNoMemoryMap
	}

	regions := mm.Regions()
	if len(regions) == 0 {
		return process.PageDescriptor{}, process.ErrNoRegion
	}

	root := mm.PageTable()
	region := regions[0]
	end := region.End()

	for addr := pagetable.PageAlign(region.Address); addr <= end; addr += pagetable.PageSize {
		tr := pagetable.Translate(root, addr)
		if tr.Present {
			return process.PageDescriptor{
				Flags:          tr.Page.Flags,
				VirtualAddress: process.ProcessMemoryAddress(addr),
				Mapping:        tr.Page.Mapping,
			}, nil
		}

		// top of the address space
		if addr+pagetable.PageSize < addr {
			break
		}
	}

	return process.PageDescriptor{}, process.ErrPageNotFound
}
