package host

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"godaq/protocol"
)

func TestHandleDatagram(t *testing.T) {
	var got []*protocol.Datagram
	r := &Receiver{
		handler: func(dg *protocol.Datagram) { got = append(got, dg) },
		log:     log.New(io.Discard),
	}

	// One channel, two positions: samples 1 and -1.
	r.handleDatagram([]byte{'D', 4, 0x01, 0x01, 0x00, 0xFF, 0xFF}, nil)
	if len(got) != 1 {
		t.Fatalf("handler ran %d times, want 1", len(got))
	}
	dg := got[0]
	if dg.Buffer != 4 || dg.Positions != 2 || len(dg.Channels) != 1 {
		t.Errorf("decoded %+v", dg)
	}
	if s := dg.Channels[0].Samples; s[0] != 1 || s[1] != -1 {
		t.Errorf("samples = %v, want [1 -1]", s)
	}

	// Malformed payloads are dropped without reaching the handler.
	r.handleDatagram([]byte{'D', 4, 0x01, 0x01}, nil)
	if len(got) != 1 {
		t.Errorf("malformed datagram reached the handler")
	}
}
