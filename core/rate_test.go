package core

import "testing"

// fakeTimer records the driver calls the rate controller makes.
type fakeTimer struct {
	armCalls int
	interval uint32
	phase    uint32
	handler  func()
}

func (f *fakeTimer) Arm(ticks uint32, onPeriodic func()) {
	f.armCalls++
	f.interval = ticks
	f.handler = onPeriodic
}
func (f *fakeTimer) SetIntervalTicks(ticks uint32) { f.interval = ticks }
func (f *fakeTimer) Phase() uint32                 { return f.phase }
func (f *fakeTimer) SetPhase(ticks uint32)         { f.phase = ticks }

func TestSetFrequencyComputesCompare(t *testing.T) {
	timer := &fakeTimer{}
	fired := 0
	rc := NewRateController(timer, 0, 0, func() { fired++ })

	if err := rc.SetFrequency(100); err != nil {
		t.Fatalf("SetFrequency(100): %v", err)
	}
	// 48 MHz / (1024 * 100 Hz) = 468.75, truncated, minus one.
	if rc.Compare() != 467 {
		t.Errorf("compare = %d, want 467", rc.Compare())
	}
	if timer.armCalls != 1 || timer.interval != 467 {
		t.Errorf("timer armed %d times with interval %d", timer.armCalls, timer.interval)
	}
	if timer.handler == nil {
		t.Fatal("periodic handler not registered")
	}
	timer.handler()
	if fired != 1 {
		t.Errorf("handler fired %d times, want 1", fired)
	}
}

func TestFrequencyChangePreservesPhase(t *testing.T) {
	timer := &fakeTimer{}
	rc := NewRateController(timer, 0, 0, func() {})

	if err := rc.SetFrequency(100); err != nil {
		t.Fatalf("SetFrequency(100): %v", err)
	}
	timer.phase = 400

	// Doubling the frequency halves the interval; the phase position is
	// rescaled proportionally so no trigger slips.
	if err := rc.SetFrequency(200); err != nil {
		t.Fatalf("SetFrequency(200): %v", err)
	}
	if rc.Compare() != 233 {
		t.Errorf("compare = %d, want 233", rc.Compare())
	}
	if timer.interval != 233 {
		t.Errorf("installed interval = %d, want 233", timer.interval)
	}
	if timer.phase != 200 {
		t.Errorf("rescaled phase = %d, want 200", timer.phase)
	}
	if timer.armCalls != 1 {
		t.Errorf("timer re-armed on frequency change: %d calls", timer.armCalls)
	}
}

func TestSetFrequencyRejectsOutOfRange(t *testing.T) {
	timer := &fakeTimer{}
	rc := NewRateController(timer, 0, 0, func() {})

	if err := rc.SetFrequency(0); err == nil {
		t.Error("zero frequency accepted")
	}
	// 48 MHz / 1024 = 46875 ticks/s; anything at or above half of that
	// leaves no usable compare interval.
	if err := rc.SetFrequency(46875); err == nil {
		t.Error("frequency beyond the timer resolution accepted")
	}
	// The divisor product exceeds 32 bits here; the controller must reject
	// the frequency rather than wrap and divide by zero.
	if err := rc.SetFrequency(4194304); err == nil {
		t.Error("divisor-wrapping frequency accepted")
	}
	if err := rc.SetFrequency(1 << 31); err == nil {
		t.Error("huge frequency accepted")
	}
	if rc.Running() {
		t.Error("timer armed by rejected frequencies")
	}
}

func TestRescalePhaseRounds(t *testing.T) {
	cases := []struct {
		phase, oldC, newC, want uint32
	}{
		{0, 467, 233, 0},
		{467, 467, 233, 233},
		{100, 200, 400, 200},
		{3, 4, 6, 5}, // 4.5 rounds up
	}
	for _, tc := range cases {
		if got := rescalePhase(tc.phase, tc.oldC, tc.newC); got != tc.want {
			t.Errorf("rescalePhase(%d, %d, %d) = %d, want %d",
				tc.phase, tc.oldC, tc.newC, got, tc.want)
		}
	}
}
