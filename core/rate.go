package core

import "fmt"

// Clock domain of the reference platform's sample timer.
const (
	DefaultClockHz   = 48000000
	DefaultPrescaler = 1024
)

// RateController derives the periodic compare interval from a target
// sampling frequency and keeps the timer phase continuous across frequency
// changes. The first successful SetFrequency arms the timer and registers
// the round-advance handler.
type RateController struct {
	timer      TimerDriver
	clockHz    uint32
	prescaler  uint32
	onPeriodic func()

	compare uint32
	running bool
}

// NewRateController wires a rate controller to a timer driver. Zero clockHz
// or prescaler select the reference platform values.
func NewRateController(timer TimerDriver, clockHz, prescaler uint32, onPeriodic func()) *RateController {
	if clockHz == 0 {
		clockHz = DefaultClockHz
	}
	if prescaler == 0 {
		prescaler = DefaultPrescaler
	}
	return &RateController{
		timer:      timer,
		clockHz:    clockHz,
		prescaler:  prescaler,
		onPeriodic: onPeriodic,
	}
}

// SetFrequency installs a new sampling frequency in Hz. While running, the
// current timer phase is rescaled linearly to the new interval so the
// change causes no timing discontinuity.
func (r *RateController) SetFrequency(hz uint32) error {
	if hz == 0 {
		return fmt.Errorf("sampling frequency must be positive")
	}
	// 64-bit divisor: prescaler*hz can exceed 32 bits for absurd inputs.
	ticks := uint64(r.clockHz) / (uint64(r.prescaler) * uint64(hz))
	if ticks < 2 {
		return fmt.Errorf("sampling frequency %d Hz too high for %d Hz / %d timer clock",
			hz, r.clockHz, r.prescaler)
	}
	compare := uint32(ticks - 1)

	if r.running {
		r.timer.SetPhase(rescalePhase(r.timer.Phase(), r.compare, compare))
		r.timer.SetIntervalTicks(compare)
	} else {
		r.timer.Arm(compare, r.onPeriodic)
		r.running = true
	}
	r.compare = compare
	return nil
}

// Compare returns the active compare interval in ticks.
func (r *RateController) Compare() uint32 { return r.compare }

// Running reports whether the timer has been armed.
func (r *RateController) Running() bool { return r.running }

// rescalePhase maps a counter position proportionally from the old compare
// interval to the new one, rounding to the nearest tick.
func rescalePhase(phase, oldCompare, newCompare uint32) uint32 {
	if oldCompare == 0 {
		return 0
	}
	return uint32((uint64(phase)*uint64(newCompare) + uint64(oldCompare)/2) / uint64(oldCompare))
}
