package udp

import (
	"fmt"
	"net"

	"github.com/bft-labs/overdrive/internal/domain"
)

// Client sends packets to a Listener.
type Client struct {
	conn net.Conn
}

// Dial connects a Client to addr ("host:port").
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Send writes p as a single datagram.
func (c *Client) Send(p domain.Packet) error {
	raw, err := p.Marshal()
	if err != nil {
		return err
	}
	if _, err := c.conn.Write(raw); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// SendCommand wraps cmd in a packet for port and sends it.
func (c *Client) SendCommand(port domain.Port, cmd domain.Command) error {
	return c.Send(domain.Packet{Port: port, Data: cmd.Encode()})
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
