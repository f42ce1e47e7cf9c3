// Package control exposes query sessions with file semantics: open acquires a
// session, a write submits a request, reads stream the rendered result and
// close releases the session. Handles are served to other processes over a
// unix socket.
package control

import (
	"encoding/binary"
	"fmt"
	"io"

	"pageinfo/session"
)

// RequestSize is the size of an encoded request: pid and flags, both int32.
const RequestSize = 8

// EncodeRequest lays out a request the way Handle.Write expects it.
func EncodeRequest(pid int32, flags session.Flags) []byte {
	buf := make([]byte, RequestSize)
	binary.NativeEndian.PutUint32(buf[0:4], uint32(pid))
	binary.NativeEndian.PutUint32(buf[4:8], uint32(flags))
	return buf
}

// DecodeRequest is the inverse of EncodeRequest. Bytes past RequestSize are ignored.
func DecodeRequest(p []byte) (int32, session.Flags, error) {
	if len(p) < RequestSize {
		return 0, 0, fmt.Errorf("%w: short request of %d bytes", session.ErrFault, len(p))
	}
	pid := int32(binary.NativeEndian.Uint32(p[0:4]))
	flags := session.Flags(int32(binary.NativeEndian.Uint32(p[4:8])))
	return pid, flags, nil
}

// Handle is one open control file.
type Handle struct {
	sess *session.Session

	text     []byte
	rendered bool
	off      int
}

// Open acquires a session on svc. It fails with session.ErrBusy while another
// handle is open.
func Open(svc *session.Service) (*Handle, error) {
	sess, err := svc.Acquire()
	if err != nil {
		return nil, err
	}
	return &Handle{sess: sess}, nil
}

// Write submits the request in p and rewinds the read offset. It returns
// len(p) on success.
func (h *Handle) Write(p []byte) (int, error) {
	h.text = nil
	h.rendered = false
	h.off = 0

	pid, flags, err := DecodeRequest(p)
	if err != nil {
		// an unreadable request still drops the previous result
		if rerr := h.sess.Reset(); rerr != nil {
			return 0, rerr
		}
		return 0, err
	}

	if err := h.sess.Submit(pid, flags); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Read copies the rendered result from the current offset. The text is
// rendered on the first read after open or after a write.
func (h *Handle) Read(p []byte) (int, error) {
	if !h.rendered {
		text, err := h.sess.Render()
		if err != nil {
			return 0, err
		}
		h.text = []byte(text)
		h.rendered = true
	}

	if h.off >= len(h.text) {
		return 0, io.EOF
	}
	n := copy(p, h.text[h.off:])
	h.off += n
	return n, nil
}

// Close releases the session. Closing twice is a no-op.
func (h *Handle) Close() error {
	h.sess.Release()
	return nil
}
