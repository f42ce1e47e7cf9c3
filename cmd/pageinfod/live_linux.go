package main

import (
	"pageinfo/process"
	"pageinfo/process_linux"
)

func newLiveFinder(kpageflags bool) (process.ProcessFinder, error) {
	log.Infoln("Serving live processes, kpageflags:", kpageflags)
	return process_linux.NewProcessFinder(kpageflags), nil
}

func saveSnapshot(pid process.ProcessID, dirname string, kpageflags bool) error {
	proc, err := process_linux.NewWithPID(pid, kpageflags)
	if err != nil {
		return err
	}
	defer proc.Close()

	return proc.Save(dirname)
}
