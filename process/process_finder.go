package process

// ProcessFinder resolves process identifiers to processes
type ProcessFinder interface {
	// FindProcessByPID returns the process with the given PID, or ErrNoSuchProcess
	FindProcessByPID(pid ProcessID) (Process, error)
}
