package drivers

import (
	"testing"
	"time"
)

func TestSimADCDeliversTwelveBitReadings(t *testing.T) {
	sim := NewSimADC()
	readings := make(chan uint16, 8)
	sim.SetCompletionHandler(func(raw uint16) { readings <- raw })

	for ch := uint8(0); ch < 5; ch++ {
		sim.SelectChannel(ch)
		sim.StartConversion()
	}

	for i := 0; i < 5; i++ {
		select {
		case raw := <-readings:
			if raw&^uint16(0x0FFF) != 0 {
				t.Errorf("reading %#04x has bits above the 12-bit span", raw)
			}
		case <-time.After(time.Second):
			t.Fatal("conversion never completed")
		}
	}
}

func TestSimADCWithoutHandlerDropsConversions(t *testing.T) {
	sim := NewSimADC()
	sim.SelectChannel(0)
	sim.StartConversion() // must not panic
}

func TestTickerTimerPhaseTracking(t *testing.T) {
	// 1 kHz tick domain so phases map to milliseconds.
	timer := NewTickerTimer(1000, 1)
	fired := make(chan struct{}, 64)
	timer.Arm(99, func() { fired <- struct{}{} }) // 100ms period
	defer timer.Stop()

	timer.SetPhase(50)
	phase := timer.Phase()
	if phase < 40 || phase > 70 {
		t.Errorf("phase = %d ticks after SetPhase(50)", phase)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("periodic event never fired")
	}
}

func TestTickerTimerIntervalChange(t *testing.T) {
	timer := NewTickerTimer(1000, 1)
	fired := make(chan struct{}, 64)
	timer.Arm(999, func() { fired <- struct{}{} })
	defer timer.Stop()

	// Shrink the period from 1s to 10ms; the next event must arrive well
	// before the original interval.
	timer.SetIntervalTicks(9)
	select {
	case <-fired:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("interval change did not take effect")
	}
}
