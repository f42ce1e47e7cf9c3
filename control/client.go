package control

import (
	"bufio"
	"fmt"
	"io"
	"net"
)

// Client is the caller side of a control connection. It behaves like the
// control file: Write submits a request, Read streams the result until
// io.EOF, Close releases the session.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

var _ io.ReadWriteCloser = (*Client)(nil)

// Dial opens the control socket at path. An error wrapping session.ErrBusy
// means another session is open.
func Dial(path string) (*Client, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", path, err)
	}

	c := &Client{
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
	}

	status, err := readInt32(c.r)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := errorOf(status); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// Write sends p as one request.
func (c *Client) Write(p []byte) (int, error) {
	if len(p) > maxFrame {
		return 0, fmt.Errorf("request of %d bytes exceeds %d", len(p), maxFrame)
	}

	if err := c.w.WriteByte(opWrite); err != nil {
		return 0, err
	}
	if err := writeUint32(c.w, uint32(len(p))); err != nil {
		return 0, err
	}
	if _, err := c.w.Write(p); err != nil {
		return 0, err
	}
	if err := c.w.Flush(); err != nil {
		return 0, err
	}

	status, err := readInt32(c.r)
	if err != nil {
		return 0, err
	}
	n, err := readInt32(c.r)
	if err != nil {
		return 0, err
	}
	if err := errorOf(status); err != nil {
		return 0, err
	}
	return int(n), nil
}

// Read fetches up to len(p) bytes of the rendered result.
func (c *Client) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if err := c.w.WriteByte(opRead); err != nil {
		return 0, err
	}
	if err := writeUint32(c.w, uint32(min(len(p), maxFrame))); err != nil {
		return 0, err
	}
	if err := c.w.Flush(); err != nil {
		return 0, err
	}

	status, err := readInt32(c.r)
	if err != nil {
		return 0, err
	}
	size, err := readUint32(c.r)
	if err != nil {
		return 0, err
	}
	if int(size) > len(p) {
		return 0, fmt.Errorf("read reply of %d bytes exceeds buffer of %d", size, len(p))
	}
	if _, err := io.ReadFull(c.r, p[:size]); err != nil {
		return 0, err
	}
	if err := errorOf(status); err != nil {
		return 0, err
	}
	if size == 0 {
		return 0, io.EOF
	}
	return int(size), nil
}

// Close ends the connection, which releases the session on the server.
func (c *Client) Close() error {
	return c.conn.Close()
}
