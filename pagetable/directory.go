package pagetable

import "sort"

// Directory is an in-memory Table. Upper levels hold child directories,
// the LevelPTE directory holds pages.
type Directory struct {
	level    Level
	children map[int]*Directory
	pages    map[int]Page
}

var _ Table = (*Directory)(nil)

// NewDirectory returns an empty root (LevelPGD) directory.
func NewDirectory() *Directory {
	return newDirectory(LevelPGD)
}

func newDirectory(level Level) *Directory {
	d := &Directory{level: level}
	if level == LevelPTE {
		d.pages = make(map[int]Page)
	} else {
		d.children = make(map[int]*Directory)
	}
	return d
}

func (d *Directory) Lookup(index int) (Entry, bool) {
	if d.level == LevelPTE {
		page, ok := d.pages[index]
		return Entry{Page: page}, ok
	}

	child, ok := d.children[index]
	if !ok {
		return Entry{}, false
	}
	return Entry{Next: child}, true
}

// Map installs page for the page containing vaddr, creating any missing
// intermediate directories. Map must be called on a root directory.
func (d *Directory) Map(vaddr uint64, page Page) {
	cur := d
	for lvl := d.level; lvl < LevelPTE; lvl++ {
		idx := Levels[lvl].Index(vaddr)
		next, ok := cur.children[idx]
		if !ok {
			next = newDirectory(lvl + 1)
			cur.children[idx] = next
		}
		cur = next
	}
	cur.pages[Levels[LevelPTE].Index(vaddr)] = page
}

// Unmap removes the page containing vaddr. Intermediate directories are left
// in place, so a later walk stops at LevelPTE.
func (d *Directory) Unmap(vaddr uint64) {
	cur := d
	for lvl := d.level; lvl < LevelPTE; lvl++ {
		next, ok := cur.children[Levels[lvl].Index(vaddr)]
		if !ok {
			return
		}
		cur = next
	}
	delete(cur.pages, Levels[LevelPTE].Index(vaddr))
}

// Len returns the number of pages mapped below d.
func (d *Directory) Len() int {
	if d.level == LevelPTE {
		return len(d.pages)
	}
	n := 0
	for _, child := range d.children {
		n += child.Len()
	}
	return n
}

// MappedPage is a page together with the address it is mapped at.
type MappedPage struct {
	Address uint64
	Page    Page
}

// Pages returns every mapped page in increasing address order.
func (d *Directory) Pages() []MappedPage {
	var out []MappedPage
	d.collect(0, &out)
	return out
}

func (d *Directory) collect(base uint64, out *[]MappedPage) {
	desc := Levels[d.level]
	if d.level == LevelPTE {
		for _, idx := range sortedKeys(d.pages) {
			*out = append(*out, MappedPage{
				Address: base | uint64(idx)<<desc.Shift,
				Page:    d.pages[idx],
			})
		}
		return
	}
	for _, idx := range sortedKeys(d.children) {
		d.children[idx].collect(base|uint64(idx)<<desc.Shift, out)
	}
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
