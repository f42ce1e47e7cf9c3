package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"pageinfo/session"
)

// ErrServerClosed is returned by Serve after Close.
var ErrServerClosed = errors.New("control server closed")

// Server serves control handles on a unix socket, one handle per connection.
type Server struct {
	svc *session.Service
	log *logger.Logger

	mu       sync.Mutex
	listener net.Listener
	path     string
	conns    map[net.Conn]struct{}
	closed   bool
	wg       sync.WaitGroup
}

func NewServer(svc *session.Service) *Server {
	return &Server{
		svc:   svc,
		log:   logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "control")),
		conns: make(map[net.Conn]struct{}),
	}
}

// Listen binds the socket at path with the given mode. A stale socket left
// by a previous run is removed first.
func (s *Server) Listen(path string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}
	if info, err := os.Lstat(path); err == nil {
		if info.Mode()&os.ModeSocket == 0 {
			return fmt.Errorf("%s exists and is not a socket", path)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove stale socket: %w", err)
		}
	}

	l, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", path, err)
	}
	if err := os.Chmod(path, mode); err != nil {
		l.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		l.Close()
		return ErrServerClosed
	}
	s.listener = l
	s.path = path

	s.log.Infoln("Listening on", path, "mode", mode)
	return nil
}

// Serve accepts connections until ctx is done or Close is called.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return errors.New("control server is not listening")
	}

	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	for {
		conn, err := l.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return ErrServerClosed
			}
			return fmt.Errorf("accept: %w", err)
		}

		if !s.track(conn) {
			conn.Close()
			return ErrServerClosed
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.serveConn(conn)
		}()
	}
}

// Close stops the listener, drops open connections and waits for their
// handles to be released.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true

	var err error
	if s.listener != nil {
		err = s.listener.Close()
		os.Remove(s.path)
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Infoln("Server closed")
	return err
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

func (s *Server) serveConn(conn net.Conn) {
	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)

	h, err := Open(s.svc)
	if werr := s.reply(w, func() error { return writeInt32(w, statusOf(err)) }); werr != nil || err != nil {
		if err != nil {
			s.log.Debugln("Open refused:", err)
		}
		return
	}
	defer h.Close()

	s.log.Debugln("Handle opened")

	for {
		op, err := r.ReadByte()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Debugln("Connection read failed:", err)
			}
			return
		}

		switch op {
		case opWrite:
			err = s.handleWrite(h, r, w)
		case opRead:
			err = s.handleRead(h, r, w)
		default:
			s.log.Warn("Unknown op ", op, ", dropping connection")
			return
		}
		if err != nil {
			s.log.Debugln("Connection dropped:", err)
			return
		}
	}
}

func (s *Server) handleWrite(h *Handle, r io.Reader, w *bufio.Writer) error {
	size, err := readUint32(r)
	if err != nil {
		return err
	}
	if size > maxFrame {
		return fmt.Errorf("write frame of %d bytes exceeds %d", size, maxFrame)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return err
	}

	n, werr := h.Write(payload)
	return s.reply(w, func() error {
		if err := writeInt32(w, statusOf(werr)); err != nil {
			return err
		}
		return writeInt32(w, int32(n))
	})
}

func (s *Server) handleRead(h *Handle, r io.Reader, w *bufio.Writer) error {
	size, err := readUint32(r)
	if err != nil {
		return err
	}
	size = min(size, maxFrame)

	buf := make([]byte, size)
	n, rerr := h.Read(buf)
	if errors.Is(rerr, io.EOF) {
		rerr = nil
	}

	return s.reply(w, func() error {
		if err := writeInt32(w, statusOf(rerr)); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(n)); err != nil {
			return err
		}
		_, err := w.Write(buf[:n])
		return err
	})
}

func (s *Server) reply(w *bufio.Writer, frame func() error) error {
	if err := frame(); err != nil {
		return err
	}
	return w.Flush()
}
