package pagetable

// Page is what the last level of the hierarchy points at.
type Page struct {
	// Flags is the page state word.
	Flags uint64
	// Mapping identifies the owner of the page. It is never dereferenced.
	Mapping uint64
}

// Entry is a present slot of a Table. Next is set on every level above
// LevelPTE, Page on LevelPTE.
type Entry struct {
	Next Table
	Page Page
}

// Table is one level of the hierarchy. Lookup reports false when the slot at
// index is not present.
type Table interface {
	Lookup(index int) (Entry, bool)
}

// Translation is the outcome of a walk: either a present page, or the level
// at which the walk stopped.
type Translation struct {
	Present bool
	Page    Page
	// Stopped is the level whose entry was absent. Only meaningful when
	// Present is false.
	Stopped Level
}

// Translate walks root top-down for vaddr. The walk stops at the first level
// whose entry is absent and never looks at neighbouring entries.
func Translate(root Table, vaddr uint64) Translation {
	table := root
	for lvl := LevelPGD; lvl < NumLevels; lvl++ {
		if table == nil {
			return Translation{Stopped: lvl}
		}

		entry, ok := table.Lookup(Levels[lvl].Index(vaddr))
		if !ok {
			return Translation{Stopped: lvl}
		}

		if lvl == LevelPTE {
			return Translation{Present: true, Page: entry.Page}
		}
		table = entry.Next
	}

	// unreachable: the loop returns on LevelPTE
	return Translation{Stopped: LevelPTE}
}
