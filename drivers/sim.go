// Package drivers provides host-side implementations of the acquisition
// core's analog and timer peripherals: a simulated converter for bench
// runs, an MCP3008 SPI converter for real inputs, and a ticker-backed
// periodic timer.
package drivers

import (
	"math"
	"sync"
	"time"
)

// SimADC is a simulated analog front end producing a per-channel sine
// pattern. Conversions complete asynchronously after a fixed latency, like
// the real converter's result-ready interrupt.
type SimADC struct {
	mu       sync.Mutex
	complete func(raw uint16)

	selected uint8
	phase    map[uint8]float64
	gain     uint8

	amplitude float64
	phaseStep float64
	latency   time.Duration
}

// NewSimADC builds a simulated converter with a full-scale sine on every
// channel at unity gain.
func NewSimADC() *SimADC {
	return &SimADC{
		phase:     make(map[uint8]float64),
		gain:      1,
		amplitude: 1024, // half of 12-bit signed full scale at unity gain
		phaseStep: 2 * math.Pi / 64,
		latency:   50 * time.Microsecond,
	}
}

// SetCompletionHandler registers the conversion-complete sink. It must be
// set before the first StartConversion.
func (s *SimADC) SetCompletionHandler(fn func(raw uint16)) {
	s.mu.Lock()
	s.complete = fn
	s.mu.Unlock()
}

// SelectChannel routes a simulated channel to the converter.
func (s *SimADC) SelectChannel(mux uint8) {
	s.mu.Lock()
	s.selected = mux
	s.mu.Unlock()
}

// StartConversion samples the selected channel's sine and schedules the
// completion callback after the conversion latency.
func (s *SimADC) StartConversion() {
	s.mu.Lock()
	mux := s.selected
	ph := s.phase[mux]
	s.phase[mux] = ph + s.phaseStep
	gain := float64(s.gain)
	fn := s.complete
	latency := s.latency
	s.mu.Unlock()

	value := s.amplitude * gain * math.Sin(ph+float64(mux))
	if value > 2047 {
		value = 2047
	} else if value < -2048 {
		value = -2048
	}
	raw := uint16(int16(value)) & 0x0FFF // 12-bit two's-complement reading

	if fn == nil {
		return
	}
	time.AfterFunc(latency, func() { fn(raw) })
}

// ConfigureGain scales the simulated front end.
func (s *SimADC) ConfigureGain(gain uint8) error {
	s.mu.Lock()
	s.gain = gain
	s.mu.Unlock()
	return nil
}
