// Package host is the client side of the telemetry link: it receives and
// decodes frame datagrams and carries the configuration ingress that
// mutates the acquisition core remotely.
package host

import (
	"context"
	"fmt"
	"net"

	"github.com/charmbracelet/log"

	"godaq/protocol"
)

// FrameHandler receives each decoded telemetry datagram.
type FrameHandler func(dg *protocol.Datagram)

// Receiver listens for telemetry datagrams on a UDP socket and hands the
// decoded frames to a handler. Malformed datagrams are logged and dropped.
type Receiver struct {
	conn    *net.UDPConn
	handler FrameHandler
	log     *log.Logger
}

// NewReceiver binds the listen address ("host:port", host may be empty).
func NewReceiver(listen string, handler FrameHandler, logger *log.Logger) (*Receiver, error) {
	addr, err := net.ResolveUDPAddr("udp", listen)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", listen, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", listen, err)
	}
	return &Receiver{conn: conn, handler: handler, log: logger}, nil
}

// Addr returns the bound socket address.
func (r *Receiver) Addr() net.Addr { return r.conn.LocalAddr() }

// Run reads datagrams until ctx is done or the socket fails.
func (r *Receiver) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		r.conn.Close()
	}()

	buf := make([]byte, 64*1024)
	for {
		n, from, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}
		r.handleDatagram(buf[:n], from)
	}
}

func (r *Receiver) handleDatagram(payload []byte, from *net.UDPAddr) {
	dg, err := protocol.Decode(payload)
	if err != nil {
		r.log.Warn("dropping malformed datagram", "from", from, "err", err)
		return
	}
	r.handler(dg)
}
