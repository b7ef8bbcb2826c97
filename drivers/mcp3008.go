package drivers

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// MCP3008 drives the 8-channel MCP3008 converter over SPI. Its 10-bit
// single-ended readings are shifted up to the 12-bit span the acquisition
// core expects; they are always non-negative, so sign extension is a no-op
// for this front end.
type MCP3008 struct {
	port spi.PortCloser
	conn spi.Conn

	mu       sync.Mutex
	selected uint8
	complete func(raw uint16)
	onError  func(err error)
}

// OpenMCP3008 initializes the host peripheral drivers and connects to the
// converter on the named SPI port ("" selects the first available).
func OpenMCP3008(spiPort string) (*MCP3008, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}
	p, err := spireg.Open(spiPort)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", spiPort, err)
	}
	// 1 MHz maximum per the MCP3008 datasheet.
	if err := p.LimitSpeed(1 * physic.MegaHertz); err != nil {
		p.Close()
		return nil, fmt.Errorf("limit spi speed: %w", err)
	}
	c, err := p.Connect(1*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("connect spi: %w", err)
	}
	return &MCP3008{port: p, conn: c}, nil
}

// SetCompletionHandler registers the conversion-complete sink. It must be
// set before the first StartConversion.
func (m *MCP3008) SetCompletionHandler(fn func(raw uint16)) {
	m.mu.Lock()
	m.complete = fn
	m.mu.Unlock()
}

// SetErrorHandler registers a sink for SPI transfer failures. A failed
// transfer never delivers a completion, which stalls the acquisition round
// until the next periodic event; the handler gives the caller visibility.
func (m *MCP3008) SetErrorHandler(fn func(err error)) {
	m.mu.Lock()
	m.onError = fn
	m.mu.Unlock()
}

// SelectChannel picks one of the eight single-ended inputs.
func (m *MCP3008) SelectChannel(mux uint8) {
	m.mu.Lock()
	m.selected = mux & 0x07
	m.mu.Unlock()
}

// StartConversion runs one SPI transaction off the caller's goroutine and
// delivers the reading to the completion handler.
func (m *MCP3008) StartConversion() {
	m.mu.Lock()
	ch := m.selected
	fn := m.complete
	onError := m.onError
	m.mu.Unlock()

	go func() {
		// Start bit, single-ended mode + channel, one clocking byte.
		tx := []byte{1, byte((8 + ch) << 4), 0}
		rx := make([]byte, 3)
		if err := m.conn.Tx(tx, rx); err != nil {
			if onError != nil {
				onError(fmt.Errorf("mcp3008 channel %d: %w", ch, err))
			}
			return
		}
		raw := uint16((int(rx[1])<<8|int(rx[2]))&0x3FF) << 2
		if fn != nil {
			fn(raw)
		}
	}()
}

// ConfigureGain rejects everything but unity: this front end has no
// programmable gain amplifier.
func (m *MCP3008) ConfigureGain(gain uint8) error {
	if gain != 1 {
		return fmt.Errorf("mcp3008 has no programmable gain, cannot set %dx", gain)
	}
	return nil
}

// Close releases the SPI port.
func (m *MCP3008) Close() error { return m.port.Close() }
