// Package transport carries serialized telemetry frames to their
// destination. The UDP transport sends bare payloads, one datagram per
// frame; the serial transport wraps each payload in the stream framing
// defined here so a receiver can resynchronize on a raw byte stream.
package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Stream framing: sync byte, big-endian payload length, payload, CRC16 over
// length and payload, trailing sync byte.
const (
	syncByte      = 0x7E
	frameOverhead = 1 + 2 + 2 + 1

	// MaxPayload bounds a frame; 8 channels x 256 positions is well inside.
	MaxPayload = 8192
)

// ErrPayloadTooLarge is returned when a payload exceeds MaxPayload.
var ErrPayloadTooLarge = errors.New("payload exceeds frame limit")

// EncodeStream wraps a payload in the stream framing.
func EncodeStream(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	frame := make([]byte, 0, len(payload)+frameOverhead)
	frame = append(frame, syncByte)
	frame = binary.BigEndian.AppendUint16(frame, uint16(len(payload)))
	frame = append(frame, payload...)
	frame = binary.BigEndian.AppendUint16(frame, crc16(frame[1:]))
	frame = append(frame, syncByte)
	return frame, nil
}

// DecodeStream extracts the first complete frame from buf. It returns the
// payload and the number of bytes consumed. A nil payload with consumed > 0
// means garbage or a corrupt frame was skipped; a nil payload with consumed
// == 0 means more bytes are needed.
func DecodeStream(buf []byte) (payload []byte, consumed int, err error) {
	// Resynchronize on the next sync byte.
	start := -1
	for i, b := range buf {
		if b == syncByte {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, len(buf), nil
	}
	if start > 0 {
		return nil, start, nil
	}

	if len(buf) < 3 {
		return nil, 0, nil
	}
	length := int(binary.BigEndian.Uint16(buf[1:3]))
	if length > MaxPayload {
		// Not a frame start; skip the spurious sync byte.
		return nil, 1, fmt.Errorf("implausible frame length %d", length)
	}
	total := length + frameOverhead
	if len(buf) < total {
		return nil, 0, nil
	}

	if buf[total-1] != syncByte {
		return nil, 1, errors.New("missing trailing sync byte")
	}
	want := binary.BigEndian.Uint16(buf[total-3 : total-1])
	if got := crc16(buf[1 : total-3]); got != want {
		return nil, 1, fmt.Errorf("crc mismatch: got %04x, want %04x", got, want)
	}
	return buf[3 : 3+length], total, nil
}

// crc16 is the CCITT-flavored checksum used on the serial link.
func crc16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		b ^= uint8(crc & 0xFF)
		b ^= b << 4
		b16 := uint16(b)
		crc = (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
	}
	return crc
}
