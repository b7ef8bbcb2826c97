// godaq is the acquisition daemon: it samples the enabled analog channels
// on a fixed schedule, accumulates them into ring-buffered frames and
// streams completed frames to a telemetry destination.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"godaq/config"
	"godaq/core"
	"godaq/drivers"
	"godaq/host"
	"godaq/transport"
)

type analogDriver interface {
	core.AnalogDriver
	SetCompletionHandler(fn func(raw uint16))
}

func main() {
	configPath := pflag.StringP("config", "c", "", "Path to YAML configuration file")
	destination := pflag.StringP("destination", "d", "", "Override the telemetry destination (host:port)")
	controlAddr := pflag.StringP("control", "C", "", "Override the control ingress listen address")
	verbose := pflag.BoolP("verbose", "v", false, "Enable debug logging")
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "godaq"})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			logger.Fatal("configuration rejected", "err", err)
		}
	}
	if *destination != "" {
		cfg.Destination = *destination
	}
	if *controlAddr != "" {
		cfg.ControlAddr = *controlAddr
	}

	tr, closeTransport, err := openTransport(cfg)
	if err != nil {
		logger.Fatal("transport setup failed", "err", err)
	}
	defer closeTransport()

	adc, err := openADC(cfg, logger)
	if err != nil {
		logger.Fatal("analog driver setup failed", "err", err)
	}

	acq, err := core.NewAcquisition(core.Config{Inputs: cfg.Inputs()}, adc)
	if err != nil {
		logger.Fatal("acquisition setup failed", "err", err)
	}
	adc.SetCompletionHandler(acq.ConversionComplete)

	if err := acq.SetGain(cfg.Gain); err != nil {
		logger.Fatal("gain rejected", "gain", cfg.Gain, "err", err)
	}
	acq.SetEnabledMask(cfg.Mask())

	timer := drivers.NewTickerTimer(core.DefaultClockHz, core.DefaultPrescaler)
	defer timer.Stop()
	rate := core.NewRateController(timer, 0, 0, acq.RoundAdvance)
	if err := rate.SetFrequency(cfg.SampleHz); err != nil {
		logger.Fatal("sampling frequency rejected", "hz", cfg.SampleHz, "err", err)
	}

	logger.Info("acquisition running",
		"mask", cfg.Mask(), "gain", cfg.Gain, "hz", cfg.SampleHz,
		"transport", cfg.Transport, "destination", cfg.Destination)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ControlAddr != "" {
		ctl, err := host.NewControl(cfg.ControlAddr, acq, rate, logger)
		if err != nil {
			logger.Fatal("control ingress setup failed", "err", err)
		}
		go func() {
			if err := ctl.Run(ctx); err != nil {
				logger.Error("control ingress stopped", "err", err)
			}
		}()
		logger.Info("control ingress listening", "addr", cfg.ControlAddr)
	}

	tx := core.NewTransmitter(acq, tr)
	poll := time.NewTicker(time.Duration(cfg.TransmitPollMS) * time.Millisecond)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case <-poll.C:
			sent, err := tx.Poll()
			if err != nil {
				logger.Warn("frame send failed", "err", err)
			} else if sent {
				logger.Debug("frame sent")
			}
		}
	}
}

func openTransport(cfg *config.Config) (core.Transport, func(), error) {
	switch cfg.Transport {
	case "serial":
		sc := transport.DefaultSerialConfig(cfg.SerialDevice)
		sc.Baud = cfg.SerialBaud
		s, err := transport.OpenSerial(sc)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		u, err := transport.DialUDP(cfg.Destination)
		if err != nil {
			return nil, nil, err
		}
		return u, func() { u.Close() }, nil
	}
}

func openADC(cfg *config.Config, logger *log.Logger) (analogDriver, error) {
	if cfg.SPIPort == "" {
		logger.Info("using simulated analog inputs")
		return drivers.NewSimADC(), nil
	}
	m, err := drivers.OpenMCP3008(cfg.SPIPort)
	if err != nil {
		return nil, err
	}
	m.SetErrorHandler(func(err error) {
		logger.Warn("conversion failed", "err", err)
	})
	return m, nil
}
