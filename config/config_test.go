package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("channels: [0, 2]\n"))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 2}, cfg.Channels)
	assert.Equal(t, uint8(0b101), cfg.Mask())
	assert.Equal(t, uint8(1), cfg.Gain)
	assert.Equal(t, uint32(1000), cfg.SampleHz)
	assert.Equal(t, "udp", cfg.Transport)
	assert.Equal(t, "127.0.0.1:5555", cfg.Destination)
	assert.Equal(t, 5, cfg.TransmitPollMS)
}

func TestParseFullDocument(t *testing.T) {
	doc := `
channels: [1, 3, 4]
gain: 8
sample_hz: 250
transport: serial
serial_device: /dev/ttyACM0
serial_baud: 115200
control_addr: ":5556"
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, uint8(0b11010), cfg.Mask())
	assert.Equal(t, uint8(8), cfg.Gain)
	assert.Equal(t, uint32(250), cfg.SampleHz)
	assert.Equal(t, "serial", cfg.Transport)
	assert.Equal(t, 115200, cfg.SerialBaud)
	assert.Equal(t, ":5556", cfg.ControlAddr)
}

func TestParseRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"bad gain", "gain: 3\n"},
		{"channel out of range", "channels: [9]\n"},
		{"negative channel", "channels: [-1]\n"},
		{"unknown transport", "transport: carrier-pigeon\n"},
		{"serial without device", "transport: serial\n"},
		{"not yaml", ": : :\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestDefaultMatchesReferenceHardware(t *testing.T) {
	cfg := Default()
	assert.Equal(t, uint8(0x1F), cfg.Mask())
	assert.Equal(t, 5, cfg.Inputs())
	require.NoError(t, cfg.Validate())
}

func TestInputsCoversHighestChannel(t *testing.T) {
	cfg, err := Parse([]byte("channels: [0, 7]\n"))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Inputs())
	assert.Equal(t, uint8(0x81), cfg.Mask())
}
