package host

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"godaq/core"
)

// Control is the configuration ingress: a line-oriented UDP endpoint that
// mutates the acquisition core's enabled mask, gain and sampling frequency
// at runtime. Each datagram carries one command; the reply goes back to the
// sender.
//
// Commands:
//
//	mask <bits>      set the enabled-channel bitmask (e.g. "mask 0x1f")
//	gain <value>     set the front-end gain (1, 2, 4, 8 or 16)
//	freq <hz>        set the sampling frequency
//	status           report the acquisition state
type Control struct {
	conn *net.UDPConn
	acq  *core.Acquisition
	rate *core.RateController
	log  *log.Logger
}

// NewControl binds the control ingress to a UDP listen address.
func NewControl(listen string, acq *core.Acquisition, rate *core.RateController, logger *log.Logger) (*Control, error) {
	addr, err := net.ResolveUDPAddr("udp", listen)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", listen, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", listen, err)
	}
	return &Control{conn: conn, acq: acq, rate: rate, log: logger}, nil
}

// Run serves commands until ctx is done.
func (c *Control) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		c.conn.Close()
	}()

	buf := make([]byte, 256)
	for {
		n, from, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("control receive: %w", err)
		}
		reply := c.execute(strings.TrimSpace(string(buf[:n])))
		if _, err := c.conn.WriteToUDP([]byte(reply+"\n"), from); err != nil {
			c.log.Warn("control reply failed", "to", from, "err", err)
		}
	}
}

func (c *Control) execute(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "err: empty command"
	}
	switch fields[0] {
	case "mask":
		if len(fields) != 2 {
			return "err: usage: mask <bits>"
		}
		mask, err := strconv.ParseUint(fields[1], 0, 8)
		if err != nil {
			return fmt.Sprintf("err: %v", err)
		}
		c.acq.SetEnabledMask(uint8(mask))
		c.log.Info("enabled mask changed", "mask", fmt.Sprintf("%#02x", mask))
		return "ok"

	case "gain":
		if len(fields) != 2 {
			return "err: usage: gain <value>"
		}
		gain, err := strconv.ParseUint(fields[1], 0, 8)
		if err != nil {
			return fmt.Sprintf("err: %v", err)
		}
		if err := c.acq.SetGain(uint8(gain)); err != nil {
			return fmt.Sprintf("err: %v", err)
		}
		c.log.Info("gain changed", "gain", gain)
		return "ok"

	case "freq":
		if len(fields) != 2 {
			return "err: usage: freq <hz>"
		}
		hz, err := strconv.ParseUint(fields[1], 0, 32)
		if err != nil {
			return fmt.Sprintf("err: %v", err)
		}
		if err := c.rate.SetFrequency(uint32(hz)); err != nil {
			return fmt.Sprintf("err: %v", err)
		}
		c.log.Info("sampling frequency changed", "hz", hz)
		return "ok"

	case "status":
		st := c.acq.Snapshot()
		return fmt.Sprintf("ok mask=%#02x gain=%d buffer=%d position=%d reading=%d pending=%t compare=%d",
			st.EnabledMask, st.Gain, st.BufferIndex, st.PositionIndex, st.ReadingInput, st.Pending, c.rate.Compare())

	default:
		return fmt.Sprintf("err: unknown command %q", fields[0])
	}
}
