package core

// FramePool is a fixed ring of frames, each a channels x positions sample
// matrix. All storage is allocated once at construction and overwritten in
// place as the ring wraps; there is no growth and no per-frame allocation.
type FramePool struct {
	buffers   int
	channels  int
	positions int
	samples   []int16 // flattened as [buffer][channel][position]
}

// NewFramePool preallocates a ring of buffers frames holding channels x
// positions samples each.
func NewFramePool(buffers, channels, positions int) *FramePool {
	return &FramePool{
		buffers:   buffers,
		channels:  channels,
		positions: positions,
		samples:   make([]int16, buffers*channels*positions),
	}
}

// Buffers returns the number of frames in the ring.
func (p *FramePool) Buffers() int { return p.buffers }

// Channels returns the number of channels per frame.
func (p *FramePool) Channels() int { return p.channels }

// Positions returns the number of sampling instants per frame.
func (p *FramePool) Positions() int { return p.positions }

// Write stores one sample. The acquisition state machine guarantees the
// indices are in range; there is no additional bounds check here.
func (p *FramePool) Write(buffer, position, channel int, sample int16) {
	p.samples[(buffer*p.channels+channel)*p.positions+position] = sample
}

// Frame returns a view of one frame's samples without copying.
func (p *FramePool) Frame(buffer int) FrameView {
	return FrameView{pool: p, buffer: buffer}
}

// FrameView exposes a single frame for serialization. The view aliases the
// pool's storage; it is only stable while the ring is at least one full
// cycle away from overwriting the viewed frame.
type FrameView struct {
	pool   *FramePool
	buffer int
}

// Buffer returns the ring index of the viewed frame.
func (v FrameView) Buffer() int { return v.buffer }

// Channel returns the position-ordered samples of one channel, backed by
// the pool's storage.
func (v FrameView) Channel(ch int) []int16 {
	base := (v.buffer*v.pool.channels + ch) * v.pool.positions
	return v.pool.samples[base : base+v.pool.positions]
}
