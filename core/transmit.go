package core

import "godaq/protocol"

// Transport delivers one serialized frame to its destination, fire and
// forget: no acknowledgment, no retry. Implementations may block; the
// transmit pipeline runs outside the acquisition event contexts.
type Transport interface {
	Send(payload []byte) error
}

// Transmitter is the background consumer of the pending-transmit slot. It
// serializes the marked frame into the telemetry wire format and hands it to
// the transport.
type Transmitter struct {
	acq *Acquisition
	tr  Transport
	tag byte
}

// NewTransmitter wires a transmitter to the acquisition controller and a
// transport.
func NewTransmitter(acq *Acquisition, tr Transport) *Transmitter {
	return &Transmitter{acq: acq, tr: tr, tag: protocol.TypeData}
}

// SetDatagramType overrides the type tag placed in outgoing datagrams.
func (t *Transmitter) SetDatagramType(tag byte) { t.tag = tag }

// Poll sends the pending frame if one is marked, reporting whether a frame
// went out. The marker is cleared after the send attempt whether or not it
// succeeded; a send failure is returned but never retried.
func (t *Transmitter) Poll() (sent bool, err error) {
	buffer, mask, ok := t.acq.PendingFrame()
	if !ok {
		return false, nil
	}
	pool := t.acq.Pool()
	payload := protocol.EncodeFrame(t.tag, uint8(buffer), mask, pool.Channels(), pool.Frame(buffer))
	err = t.tr.Send(payload)
	t.acq.ClearPending()
	if err != nil {
		return false, err
	}
	return true, nil
}
