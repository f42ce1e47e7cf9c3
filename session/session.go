// Package session serializes page and dentry queries: one session at a time
// acquires the service, submits a request, reads the rendered result and
// releases the service.
package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"pageinfo/inspect"
	"pageinfo/process"
)

var (
	// ErrBusy is returned by Acquire while another session is open.
	ErrBusy = errors.New("session busy")

	// ErrInvalidArgument is returned for a bad pid, bad flags or an unknown process.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrFault is returned when a lookup fails after the request was accepted.
	ErrFault = errors.New("lookup fault")

	// ErrClosed is returned by Acquire after the service was closed.
	ErrClosed = errors.New("service closed")

	// ErrReleased is returned when a released session is used again.
	ErrReleased = errors.New("session released")
)

// Service owns the query state and the lock that makes sessions exclusive.
type Service struct {
	finder process.ProcessFinder
	log    *logger.Logger

	// lock is only ever taken with TryLock; holding it is holding a session.
	lock   sync.Mutex
	state  State
	closed atomic.Bool
}

// NewService creates a Service resolving PIDs with finder.
func NewService(finder process.ProcessFinder) *Service {
	return &Service{
		finder: finder,
		log:    logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "session")),
	}
}

// Acquire opens a session. It never blocks: if a session is already open it
// fails with ErrBusy.
func (s *Service) Acquire() (*Session, error) {
	if !s.lock.TryLock() {
		return nil, ErrBusy
	}
	if s.closed.Load() {
		s.lock.Unlock()
		return nil, ErrClosed
	}
	return &Session{svc: s}, nil
}

// Close tears the service down and drops any result still held. If a session
// is open, its result is dropped when it is released. Further Acquire calls
// fail with ErrClosed.
func (s *Service) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	if !s.lock.TryLock() {
		s.log.Warn("Closing service while a session is still open")
		return nil
	}
	s.state = State{}
	s.lock.Unlock()

	s.log.Infoln("Service closed")
	return nil
}

// Session is one exclusive acquire-submit-render-release cycle.
type Session struct {
	svc      *Service
	released atomic.Bool
}

// Submit runs a request. The previous result is always dropped first; on
// success the new result replaces it. The returned error wraps ErrInvalidArgument
// or ErrFault together with the underlying cause.
func (s *Session) Submit(pid int32, flags Flags) error {
	if s.released.Load() {
		return ErrReleased
	}

	svc := s.svc
	svc.state = State{}

	if pid <= 0 {
		svc.log.Warn("Invalid PID: ", pid)
		return fmt.Errorf("%w: pid %d", ErrInvalidArgument, pid)
	}

	if !flags.Valid() {
		svc.log.Warn("Invalid flags: ", flags)
		return fmt.Errorf("%w: flags %s", ErrInvalidArgument, flags)
	}

	svc.log.Infoln("Received PID:", pid, "flags:", flags)

	proc, err := svc.finder.FindProcessByPID(process.ProcessID(pid))
	if err != nil {
		svc.log.Warn("There is no process with PID=", pid, ": ", err)
		return fmt.Errorf("%w: pid %d: %w", ErrInvalidArgument, pid, err)
	}
	defer proc.Close()

	next := State{Flags: flags}

	if flags.Has(FlagPage) {
		page, err := inspect.ScanFirstPage(proc)
		if err != nil {
			next.PageNotFound = errors.Is(err, process.ErrPageNotFound)
			svc.state = next
			svc.log.Warn("Getting page for PID=", pid, " failed: ", err)
			return fmt.Errorf("%w: page of pid %d: %w", ErrFault, pid, err)
		}
		svc.log.Debugln("Page found at", page.VirtualAddress.ToString())
		next.Page = &page
	}

	if flags.Has(FlagDentry) {
		dentry, err := inspect.ResolveExecutable(proc)
		if err != nil {
			svc.state = next
			svc.log.Warn("Getting dentry for PID=", pid, " failed: ", err)
			return fmt.Errorf("%w: dentry of pid %d: %w", ErrFault, pid, err)
		}
		svc.log.Debugln("Dentry found:", dentry)
		next.Dentry = &dentry
	}

	svc.state = next
	return nil
}

// Reset drops the current result without submitting a new request.
func (s *Session) Reset() error {
	if s.released.Load() {
		return ErrReleased
	}
	s.svc.state = State{}
	return nil
}

// Render returns the text for the current result. Calling it repeatedly
// without an intervening Submit returns the same text.
func (s *Session) Render() (string, error) {
	if s.released.Load() {
		return "", ErrReleased
	}
	return Render(s.svc.state), nil
}

// Release ends the session regardless of how Submit went. The result stays
// in the service until the next Submit, or is dropped here once the service
// is closed. Releasing twice is a no-op.
func (s *Session) Release() {
	if s.released.Swap(true) {
		return
	}
	svc := s.svc
	if svc.closed.Load() {
		svc.state = State{}
	}
	svc.lock.Unlock()
}
