package control

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"

	"pageinfo/session"
)

// Frame layout on the socket, all integers native-endian:
//
//	accept  server -> int32 status
//	'W'     client -> uint32 len, payload    server -> int32 status, int32 n
//	'R'     client -> uint32 max             server -> int32 status, uint32 len, text
const (
	opWrite byte = 'W'
	opRead  byte = 'R'

	// maxFrame bounds both write payloads and read replies.
	maxFrame = 64 << 10
)

var byteOrder = binary.NativeEndian

// statusOf maps a handle error onto the errno reported to the client.
func statusOf(err error) int32 {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, session.ErrBusy):
		return int32(unix.EBUSY)
	case errors.Is(err, session.ErrInvalidArgument):
		return int32(unix.EINVAL)
	case errors.Is(err, session.ErrFault):
		return int32(unix.EFAULT)
	case errors.Is(err, session.ErrClosed):
		return int32(unix.ENODEV)
	default:
		return int32(unix.EIO)
	}
}

// errorOf is the client side inverse of statusOf.
func errorOf(status int32) error {
	errno := unix.Errno(status)
	switch errno {
	case 0:
		return nil
	case unix.EBUSY:
		return fmt.Errorf("%w (%w)", session.ErrBusy, errno)
	case unix.EINVAL:
		return fmt.Errorf("%w (%w)", session.ErrInvalidArgument, errno)
	case unix.EFAULT:
		return fmt.Errorf("%w (%w)", session.ErrFault, errno)
	case unix.ENODEV:
		return fmt.Errorf("%w (%w)", session.ErrClosed, errno)
	default:
		return errno
	}
}

func writeInt32(w io.Writer, v int32) error {
	return binary.Write(w, byteOrder, v)
}

func writeUint32(w io.Writer, v uint32) error {
	return binary.Write(w, byteOrder, v)
}

func readInt32(r io.Reader) (int32, error) {
	var v int32
	err := binary.Read(r, byteOrder, &v)
	return v, err
}

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, byteOrder, &v)
	return v, err
}
