// Package protocol implements the telemetry wire format: one datagram per
// frame, carrying a type tag, the ring buffer index, the enabled-channel
// bitmask and the per-channel samples of every enabled channel.
package protocol

// Datagram type tags.
const (
	// TypeData marks a regular sample frame.
	TypeData byte = 'D'
)

// Payload layout constants.
const (
	HeaderSize = 3 // type tag, buffer index, enabled mask
	SampleSize = 2 // int16, least-significant byte first
)
