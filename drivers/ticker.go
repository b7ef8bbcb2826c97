package drivers

import (
	"sync"
	"time"
)

// TickerTimer emulates the reference platform's compare timer with a
// time.Ticker. Intervals and phases are expressed in timer ticks of the
// configured clock domain, as the rate controller expects; the phase is
// derived from wall-clock time since the last tick, which is exact enough
// for the controller's proportional rescaling.
type TickerTimer struct {
	clockHz   uint32
	prescaler uint32

	mu       sync.Mutex
	interval uint32
	handler  func()
	ticker   *time.Ticker
	done     chan struct{}
	lastFire time.Time
}

// NewTickerTimer builds a timer in the given clock domain.
func NewTickerTimer(clockHz, prescaler uint32) *TickerTimer {
	return &TickerTimer{clockHz: clockHz, prescaler: prescaler}
}

// tickHz is the rate of one timer tick.
func (t *TickerTimer) tickHz() float64 {
	return float64(t.clockHz) / float64(t.prescaler)
}

// tickDuration converts a compare interval to the matching period. The
// hardware counts compare+1 ticks per period.
func (t *TickerTimer) tickDuration(ticks uint32) time.Duration {
	return time.Duration(float64(ticks+1) / t.tickHz() * float64(time.Second))
}

// Arm installs the periodic handler and starts firing.
func (t *TickerTimer) Arm(intervalTicks uint32, onPeriodic func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ticker != nil {
		t.ticker.Stop()
		close(t.done)
	}
	t.interval = intervalTicks
	t.handler = onPeriodic
	t.lastFire = time.Now()
	t.ticker = time.NewTicker(t.tickDuration(intervalTicks))
	t.done = make(chan struct{})
	go t.run(t.ticker, t.done)
}

func (t *TickerTimer) run(ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			t.mu.Lock()
			t.lastFire = now
			handler := t.handler
			t.mu.Unlock()
			if handler != nil {
				handler()
			}
		}
	}
}

// SetIntervalTicks installs a new compare interval on the running timer.
func (t *TickerTimer) SetIntervalTicks(ticks uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interval = ticks
	if t.ticker != nil {
		t.ticker.Reset(t.tickDuration(ticks))
	}
}

// Phase reports ticks elapsed since the last periodic event, clamped to the
// interval.
func (t *TickerTimer) Phase() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	elapsed := time.Since(t.lastFire).Seconds() * t.tickHz()
	if elapsed < 0 {
		return 0
	}
	if elapsed > float64(t.interval) {
		return t.interval
	}
	return uint32(elapsed)
}

// SetPhase moves the emulated counter position by shifting the last-fire
// reference point.
func (t *TickerTimer) SetPhase(ticks uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	offset := time.Duration(float64(ticks) / t.tickHz() * float64(time.Second))
	t.lastFire = time.Now().Add(-offset)
}

// Stop halts the periodic events.
func (t *TickerTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ticker != nil {
		t.ticker.Stop()
		close(t.done)
		t.ticker = nil
	}
}
