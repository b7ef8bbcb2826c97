package transport

import (
	"fmt"
	"net"
)

// UDP sends each frame as a single datagram to a fixed destination. There
// is no acknowledgment and no retry.
type UDP struct {
	conn *net.UDPConn
}

// DialUDP resolves the destination ("host:port") and binds a connected UDP
// socket to it.
func DialUDP(destination string) (*UDP, error) {
	addr, err := net.ResolveUDPAddr("udp", destination)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", destination, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", destination, err)
	}
	return &UDP{conn: conn}, nil
}

// Send writes one payload as one datagram.
func (u *UDP) Send(payload []byte) error {
	_, err := u.conn.Write(payload)
	return err
}

// Close releases the socket.
func (u *UDP) Close() error { return u.conn.Close() }
