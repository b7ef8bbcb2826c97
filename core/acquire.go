package core

import (
	"errors"
	"fmt"
	"sync"
)

// Geometry of the reference hardware: five multiplexed differential inputs
// sampled into a ring of 64 frames, 16 sampling instants per frame.
const (
	DefaultInputs    = 5
	DefaultBuffers   = 64
	DefaultPositions = 16
)

// ErrInvalidGain is returned for gain values outside the fixed discrete set.
var ErrInvalidGain = errors.New("invalid gain value")

const (
	idleInput = -1 // no conversion in flight
	noPending = -1 // no frame awaiting transmission
)

// Config fixes the acquisition geometry at construction time. The mask is a
// uint8, so at most 8 inputs are supported.
type Config struct {
	Inputs    int     // number of multiplexed analog inputs, 1..8
	Buffers   int     // frames in the ring
	Positions int     // sampling instants per frame
	MuxMap    []uint8 // peripheral MUX value for each input; identity if nil
}

func (c *Config) applyDefaults() {
	if c.Inputs == 0 {
		c.Inputs = DefaultInputs
	}
	if c.Buffers == 0 {
		c.Buffers = DefaultBuffers
	}
	if c.Positions == 0 {
		c.Positions = DefaultPositions
	}
	if c.MuxMap == nil {
		c.MuxMap = make([]uint8, c.Inputs)
		for i := range c.MuxMap {
			c.MuxMap[i] = uint8(i)
		}
	}
}

// Acquisition owns the real-time sampling state machine. Two event methods
// drive it: RoundAdvance from the periodic timer and ConversionComplete from
// the analog driver. On the reference platform those run in a single
// interrupt context; here the guard mutex reproduces that mutual exclusion,
// since the event sources are goroutines. Both handlers are non-blocking.
type Acquisition struct {
	mu sync.Mutex // stands in for the platform's interrupt discipline

	adc  AnalogDriver
	pool *FramePool
	cfg  Config

	enabledMask uint8
	gain        uint8

	readingInput    int // idleInput when no conversion is in flight
	bufferIndex     int
	positionIndex   int
	pendingTransmit int // noPending, or the most recently completed frame
}

// NewAcquisition builds the acquisition controller and its frame pool. The
// driver's completion handler must be wired to ConversionComplete by the
// caller before sampling starts.
func NewAcquisition(cfg Config, adc AnalogDriver) (*Acquisition, error) {
	cfg.applyDefaults()
	if cfg.Inputs < 1 || cfg.Inputs > 8 {
		return nil, fmt.Errorf("inputs must be 1..8, got %d", cfg.Inputs)
	}
	if len(cfg.MuxMap) != cfg.Inputs {
		return nil, fmt.Errorf("mux map covers %d inputs, want %d", len(cfg.MuxMap), cfg.Inputs)
	}
	if cfg.Buffers < 2 {
		return nil, fmt.Errorf("ring needs at least 2 buffers, got %d", cfg.Buffers)
	}
	if cfg.Positions < 1 {
		return nil, fmt.Errorf("positions must be positive, got %d", cfg.Positions)
	}
	return &Acquisition{
		adc:             adc,
		pool:            NewFramePool(cfg.Buffers, cfg.Inputs, cfg.Positions),
		cfg:             cfg,
		gain:            1,
		readingInput:    idleInput,
		pendingTransmit: noPending,
	}, nil
}

// Pool returns the frame ring.
func (a *Acquisition) Pool() *FramePool { return a.pool }

// RoundAdvance is the periodic-timer event handler. With a non-empty mask it
// advances the position index, publishes the finished frame to the
// pending-transmit slot when the position wraps, and starts the first
// conversion of the new round. With an empty mask it touches nothing.
func (a *Acquisition) RoundAdvance() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.enabledMask != 0 {
		a.positionIndex++
		if a.positionIndex == a.cfg.Positions {
			// Single-slot marker: an unconsumed frame is overwritten.
			a.pendingTransmit = a.bufferIndex
			a.bufferIndex = (a.bufferIndex + 1) % a.cfg.Buffers
			a.positionIndex = 0
		}
		a.readingInput = idleInput
	}
	if next := a.startNextRead(); next != idleInput {
		a.readingInput = next
	}
}

// ConversionComplete is the conversion-ready event handler. It stores the
// sign-extended sample at the current (buffer, position, channel) cell and
// chains the next conversion of the round, going idle when the scan finds
// no further enabled input.
func (a *Acquisition) ConversionComplete(raw uint16) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.readingInput == idleInput {
		return // nothing in flight
	}
	a.pool.Write(a.bufferIndex, a.positionIndex, a.readingInput, ConvertSample(raw))
	a.readingInput = a.startNextRead()
}

// startNextRead is the channel scheduler: it scans for the first enabled
// input strictly after the one just read (no wraparound) and issues the
// hardware request for it. It returns idleInput when the round is finished.
// Callers hold the guard.
func (a *Acquisition) startNextRead() int {
	next := nextEnabled(a.readingInput, a.enabledMask, a.cfg.Inputs)
	if next != idleInput {
		a.adc.SelectChannel(a.cfg.MuxMap[next])
		a.adc.StartConversion()
	}
	return next
}

// nextEnabled returns the lowest input strictly greater than cur whose bit
// is set in mask, or idleInput when the scan runs off the end.
func nextEnabled(cur int, mask uint8, inputs int) int {
	for i := cur + 1; i < inputs; i++ {
		if mask&(1<<i) != 0 {
			return i
		}
	}
	return idleInput
}

// SetEnabledMask replaces the enabled-input bitmask. The change takes effect
// at the scheduler's next scan point; an in-flight conversion is never
// aborted. Bits above the configured input count are dropped.
func (a *Acquisition) SetEnabledMask(mask uint8) {
	a.mu.Lock()
	a.enabledMask = mask & (uint8(1<<a.cfg.Inputs) - 1)
	a.mu.Unlock()
}

// EnabledMask returns the current enabled-input bitmask.
func (a *Acquisition) EnabledMask() uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabledMask
}

// SetGain applies one of the discrete front-end gain values {1, 2, 4, 8,
// 16}. Any other value fails closed: neither the active gain nor the
// peripheral is touched.
func (a *Acquisition) SetGain(gain uint8) error {
	switch gain {
	case 1, 2, 4, 8, 16:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidGain, gain)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.adc.ConfigureGain(gain); err != nil {
		return err
	}
	a.gain = gain
	return nil
}

// Gain returns the active front-end gain.
func (a *Acquisition) Gain() uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gain
}

// PendingFrame reports the frame marked for transmission, if any, together
// with the enabled mask observed at call time. The marker is left in place;
// the transmit pipeline clears it with ClearPending after the send.
func (a *Acquisition) PendingFrame() (buffer int, mask uint8, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pendingTransmit == noPending {
		return 0, 0, false
	}
	return a.pendingTransmit, a.enabledMask, true
}

// ClearPending drops the pending-transmit marker. A marker published while
// the consumer was sending is dropped too; the slot is best-effort
// telemetry, not a queue.
func (a *Acquisition) ClearPending() {
	a.mu.Lock()
	a.pendingTransmit = noPending
	a.mu.Unlock()
}

// Status is a snapshot of the acquisition progress counters.
type Status struct {
	ReadingInput  int // -1 when idle
	BufferIndex   int
	PositionIndex int
	Pending       bool
	EnabledMask   uint8
	Gain          uint8
}

// Snapshot returns a consistent copy of the controller state.
func (a *Acquisition) Snapshot() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Status{
		ReadingInput:  a.readingInput,
		BufferIndex:   a.bufferIndex,
		PositionIndex: a.positionIndex,
		Pending:       a.pendingTransmit != noPending,
		EnabledMask:   a.enabledMask,
		Gain:          a.gain,
	}
}
