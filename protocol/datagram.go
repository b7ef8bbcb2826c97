package protocol

import (
	"fmt"
	"math/bits"
)

// FrameSource exposes one frame's per-channel samples for serialization.
// Channel returns the position-ordered samples of the given channel index.
type FrameSource interface {
	Channel(ch int) []int16
}

// EncodeFrame serializes one frame. The payload is the type tag, the buffer
// index, the enabled-channel mask, then for each enabled channel in
// ascending index order the channel's samples in position order, each as two
// bytes least-significant first. Channels with a cleared mask bit are
// omitted entirely.
func EncodeFrame(tag byte, buffer, mask uint8, channels int, frame FrameSource) []byte {
	positions := 0
	if mask != 0 {
		// All channels share the frame geometry; probe the first
		// enabled one for the position count.
		for ch := 0; ch < channels; ch++ {
			if mask&(1<<ch) != 0 {
				positions = len(frame.Channel(ch))
				break
			}
		}
	}

	payload := make([]byte, 0, HeaderSize+bits.OnesCount8(mask)*positions*SampleSize)
	payload = append(payload, tag, buffer, mask)
	for ch := 0; ch < channels; ch++ {
		if mask&(1<<ch) == 0 {
			continue
		}
		for _, sample := range frame.Channel(ch) {
			payload = append(payload, byte(sample), byte(uint16(sample)>>8))
		}
	}
	return payload
}

// ChannelSamples is one decoded channel, identified by its input index.
type ChannelSamples struct {
	Index   int
	Samples []int16
}

// Datagram is a decoded telemetry payload.
type Datagram struct {
	Type      byte
	Buffer    uint8
	Mask      uint8
	Positions int
	Channels  []ChannelSamples // ascending by Index, enabled channels only
}

// Decode parses a telemetry payload. The position count is inferred from
// the payload length and the mask's population count.
func Decode(payload []byte) (*Datagram, error) {
	if len(payload) < HeaderSize {
		return nil, fmt.Errorf("payload too short: %d bytes", len(payload))
	}
	dg := &Datagram{
		Type:   payload[0],
		Buffer: payload[1],
		Mask:   payload[2],
	}
	body := payload[HeaderSize:]

	enabled := bits.OnesCount8(dg.Mask)
	if enabled == 0 {
		if len(body) != 0 {
			return nil, fmt.Errorf("empty mask but %d sample bytes", len(body))
		}
		return dg, nil
	}
	stride := enabled * SampleSize
	if len(body) == 0 || len(body)%stride != 0 {
		return nil, fmt.Errorf("%d sample bytes not divisible across %d channels", len(body), enabled)
	}
	dg.Positions = len(body) / stride

	for ch := 0; ch < 8; ch++ {
		if dg.Mask&(1<<ch) == 0 {
			continue
		}
		samples := make([]int16, dg.Positions)
		for pos := range samples {
			samples[pos] = int16(uint16(body[0]) | uint16(body[1])<<8)
			body = body[SampleSize:]
		}
		dg.Channels = append(dg.Channels, ChannelSamples{Index: ch, Samples: samples})
	}
	return dg, nil
}
