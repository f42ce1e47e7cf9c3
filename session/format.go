package session

import (
	"fmt"
	"strings"
)

const (
	pageErrorLine    = "An error occurred while getting page info!\n"
	pageNotFoundLine = "Page wasn't found in the first memory region!\n"
	dentryErrorLine  = "An error occurred while getting dentry info!\n"
)

// Render formats a state as the text returned to readers. Only sections
// requested by the last accepted request appear; a requested section without
// a descriptor renders as an error line.
func Render(st State) string {
	var b strings.Builder

	if st.Flags.Has(FlagPage) {
		switch {
		case st.Page != nil:
			b.WriteString("Page:\n")
			fmt.Fprintf(&b, "\tFlags: %x\n", st.Page.Flags)
			fmt.Fprintf(&b, "\tVirtual address: %x\n", uint64(st.Page.VirtualAddress))
			fmt.Fprintf(&b, "\tMapping: %016x\n", st.Page.Mapping)
		case st.PageNotFound:
			b.WriteString(pageNotFoundLine)
		default:
			b.WriteString(pageErrorLine)
		}
	}

	if st.Flags.Has(FlagDentry) {
		if st.Dentry != nil {
			b.WriteString("Dentry:\n")
			fmt.Fprintf(&b, "\tName: %s\n", st.Dentry.Name)
			fmt.Fprintf(&b, "\tInode UID: %d\n", st.Dentry.InodeUID)
			fmt.Fprintf(&b, "\tInode number: %d\n", st.Dentry.InodeNumber)
			fmt.Fprintf(&b, "\tInode flags: %x\n", st.Dentry.InodeFlags)
		} else {
			b.WriteString(dentryErrorLine)
		}
	}

	return b.String()
}
