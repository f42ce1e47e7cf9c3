// Package pagetable models a fixed five-level virtual address translation
// hierarchy and walks it to find the page backing a virtual address.
package pagetable

import "fmt"

// Level identifies one level of the translation hierarchy, top-down.
type Level int

const (
	LevelPGD Level = iota // page global directory
	LevelP4D              // fourth-level directory
	LevelPUD              // page upper directory
	LevelPMD              // page middle directory
	LevelPTE              // page table, yields the page
	NumLevels
)

const (
	PageShift = 12
	PageSize  = uint64(1) << PageShift

	// EntriesPerTable is the fan-out of every level.
	EntriesPerTable = 1 << 9
)

// LevelDescriptor describes which slice of a virtual address indexes a level.
type LevelDescriptor struct {
	Name  string
	Shift uint
	Bits  uint
}

// Levels is the walk order. The last entry yields pages.
var Levels = [NumLevels]LevelDescriptor{
	LevelPGD: {Name: "pgd", Shift: 48, Bits: 9},
	LevelP4D: {Name: "p4d", Shift: 39, Bits: 9},
	LevelPUD: {Name: "pud", Shift: 30, Bits: 9},
	LevelPMD: {Name: "pmd", Shift: 21, Bits: 9},
	LevelPTE: {Name: "pte", Shift: 12, Bits: 9},
}

// Index returns the entry index vaddr selects at this level.
func (d LevelDescriptor) Index(vaddr uint64) int {
	return int((vaddr >> d.Shift) & (uint64(1)<<d.Bits - 1))
}

// Span returns the number of bytes of address space one entry covers.
func (d LevelDescriptor) Span() uint64 {
	return uint64(1) << d.Shift
}

func (l Level) String() string {
	if l < 0 || l >= NumLevels {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return Levels[l].Name
}

// PageAlign rounds addr down to the page containing it.
func PageAlign(addr uint64) uint64 {
	return addr &^ (PageSize - 1)
}
