package session

import "pageinfo/process"

// State is the result of the last accepted request.
type State struct {
	Flags  Flags
	Page   *process.PageDescriptor
	Dentry *process.DentryDescriptor

	// PageNotFound is set when the page scan finished without a resident page.
	PageNotFound bool
}

// Empty reports whether the state holds nothing, as after a reset.
func (st State) Empty() bool {
	return st.Flags == 0 && st.Page == nil && st.Dentry == nil && !st.PageNotFound
}
