// Package config loads the acquisition daemon's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the daemon configuration.
type Config struct {
	// Channels lists the enabled input indices.
	Channels []int `yaml:"channels"`

	// Gain is the front-end gain, one of 1, 2, 4, 8, 16.
	Gain uint8 `yaml:"gain"`

	// SampleHz is the per-channel sampling frequency.
	SampleHz uint32 `yaml:"sample_hz"`

	// Transport selects "udp" or "serial".
	Transport string `yaml:"transport"`

	// Destination is the UDP telemetry target, host:port.
	Destination string `yaml:"destination"`

	// SerialDevice and SerialBaud configure the serial transport.
	SerialDevice string `yaml:"serial_device"`
	SerialBaud   int    `yaml:"serial_baud"`

	// SPIPort names the MCP3008's SPI port; empty selects the simulated
	// converter.
	SPIPort string `yaml:"spi_port"`

	// ControlAddr is the UDP listen address for the configuration
	// ingress; empty disables it.
	ControlAddr string `yaml:"control_addr"`

	// TransmitPollMS is the transmit pipeline's polling interval.
	TransmitPollMS int `yaml:"transmit_poll_ms"`
}

// Default returns the configuration used when no file is given: all five
// reference inputs at 1 kHz, unity gain, UDP to localhost.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Channels == nil {
		cfg.Channels = []int{0, 1, 2, 3, 4}
	}
	if cfg.Gain == 0 {
		cfg.Gain = 1
	}
	if cfg.SampleHz == 0 {
		cfg.SampleHz = 1000
	}
	if cfg.Transport == "" {
		cfg.Transport = "udp"
	}
	if cfg.Destination == "" {
		cfg.Destination = "127.0.0.1:5555"
	}
	if cfg.SerialBaud == 0 {
		cfg.SerialBaud = 250000
	}
	if cfg.TransmitPollMS == 0 {
		cfg.TransmitPollMS = 5
	}
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	for _, ch := range c.Channels {
		if ch < 0 || ch > 7 {
			return fmt.Errorf("channel %d out of range 0..7", ch)
		}
	}
	switch c.Gain {
	case 1, 2, 4, 8, 16:
	default:
		return fmt.Errorf("gain %d not in {1,2,4,8,16}", c.Gain)
	}
	switch c.Transport {
	case "udp", "serial":
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.Transport == "serial" && c.SerialDevice == "" {
		return fmt.Errorf("serial transport needs serial_device")
	}
	return nil
}

// Inputs returns the acquisition geometry's input count: enough to cover
// the highest configured channel, never fewer than the reference five.
func (c *Config) Inputs() int {
	inputs := 5
	for _, ch := range c.Channels {
		if ch+1 > inputs {
			inputs = ch + 1
		}
	}
	return inputs
}

// Mask folds the channel list into the enabled-input bitmask.
func (c *Config) Mask() uint8 {
	var mask uint8
	for _, ch := range c.Channels {
		mask |= 1 << ch
	}
	return mask
}
