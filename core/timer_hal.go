package core

// TimerDriver is the periodic event source behind the rate controller.
// Intervals and phases are in ticks of the platform timer's clock domain
// (clock divided by prescaler).
type TimerDriver interface {
	// Arm installs the periodic handler and starts the timer with the
	// given compare interval.
	Arm(intervalTicks uint32, onPeriodic func())

	// SetIntervalTicks installs a new compare interval on a running
	// timer without disturbing the handler.
	SetIntervalTicks(ticks uint32)

	// Phase reports the current counter position within the period.
	Phase() uint32

	// SetPhase moves the counter position within the period.
	SetPhase(ticks uint32)
}
