package transport

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// SerialConfig holds serial link parameters.
type SerialConfig struct {
	// Device path, e.g. "/dev/ttyACM0" or "COM3".
	Device string

	// Baud rate; ignored by USB CDC devices.
	Baud int

	// ReadTimeout for the underlying port; zero blocks.
	ReadTimeout time.Duration
}

// DefaultSerialConfig returns the usual parameters for a USB CDC link.
func DefaultSerialConfig(device string) SerialConfig {
	return SerialConfig{
		Device:      device,
		Baud:        250000,
		ReadTimeout: 100 * time.Millisecond,
	}
}

// Serial carries stream-framed telemetry frames over a serial port.
type Serial struct {
	port *serial.Port
}

// OpenSerial opens the serial port described by cfg.
func OpenSerial(cfg SerialConfig) (*Serial, error) {
	if cfg.Baud == 0 {
		cfg.Baud = 250000
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.Device, err)
	}
	return &Serial{port: port}, nil
}

// Send writes one payload as one stream frame.
func (s *Serial) Send(payload []byte) error {
	frame, err := EncodeStream(payload)
	if err != nil {
		return err
	}
	if _, err := s.port.Write(frame); err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	return nil
}

// Close flushes and closes the port.
func (s *Serial) Close() error {
	if err := s.port.Flush(); err != nil {
		return err
	}
	return s.port.Close()
}
