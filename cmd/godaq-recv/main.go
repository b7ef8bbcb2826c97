// godaq-recv listens for telemetry datagrams and prints a summary of every
// decoded frame. It is the bench-side counterpart of the godaq daemon.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"godaq/host"
	"godaq/protocol"
)

func main() {
	listen := pflag.StringP("listen", "l", ":5555", "UDP listen address")
	verbose := pflag.BoolP("verbose", "v", false, "Print per-channel sample values")
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "godaq-recv"})

	handler := func(dg *protocol.Datagram) {
		logger.Info("frame",
			"type", string(rune(dg.Type)), "buffer", dg.Buffer,
			"mask", dg.Mask, "positions", dg.Positions, "channels", len(dg.Channels))
		if *verbose {
			for _, ch := range dg.Channels {
				logger.Info("channel", "index", ch.Index, "samples", ch.Samples)
			}
		}
	}

	recv, err := host.NewReceiver(*listen, handler, logger)
	if err != nil {
		logger.Fatal("listen failed", "err", err)
	}
	logger.Info("listening", "addr", recv.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := recv.Run(ctx); err != nil {
		logger.Fatal("receiver stopped", "err", err)
	}
}
