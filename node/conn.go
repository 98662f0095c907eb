package node

import "net"

// Conn is the interface for a client connection.
type Conn interface {
	// Write writes data to the connection.
	Write(data []byte) (err error)

	// Close closes the connection.
	Close() error

	Ip() string
}

// netConn adapts a net.Conn to the Conn interface.
type netConn struct {
	nc net.Conn
}

func (c *netConn) Write(data []byte) error {
	_, err := c.nc.Write(data)
	return err
}

func (c *netConn) Close() error {
	return c.nc.Close()
}

func (c *netConn) Ip() string {
	return c.nc.RemoteAddr().String()
}
