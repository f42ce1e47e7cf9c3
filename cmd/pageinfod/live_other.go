//go:build !linux

package main

import (
	"errors"
	"runtime"

	"pageinfo/process"
)

var errUnsupported = errors.New("live processes are not supported on " + runtime.GOOS)

func newLiveFinder(bool) (process.ProcessFinder, error) {
	return nil, errUnsupported
}

func saveSnapshot(process.ProcessID, string, bool) error {
	return errUnsupported
}
