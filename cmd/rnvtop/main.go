package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tahoe/rnvtop/internal/config"
	"github.com/tahoe/rnvtop/internal/errors"
	"github.com/tahoe/rnvtop/internal/gpu"
	"github.com/tahoe/rnvtop/internal/logger"
	"github.com/tahoe/rnvtop/internal/monitor"
	"github.com/tahoe/rnvtop/internal/render"
	"github.com/tahoe/rnvtop/internal/telemetry"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		var appErr errors.Error
		if errors.As(err, &appErr) {
			logger.FatalWithCode(appErr).Msg("rnvtop failed")
		}
		logger.Fatal().Err(err).Msg("rnvtop failed")
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rnvtop",
		Short:         "Show live NVIDIA GPU telemetry",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	config.RegisterFlags(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive("oneline", "table", "json", "mode")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.Init(level, logger.IsService())
	logger.Debug().Interface("config", cfg).Msg("Config loaded")

	device, err := gpu.Open(cfg.Device, logger.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := device.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown NVML")
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go handleSignals(ctx, cancel)

	keys := monitor.NewSleepPoller()
	if cfg.Loop {
		keys, err = monitor.NewTerminalPoller(os.Stdin)
		if err != nil {
			return err
		}
		defer func() {
			if err := keys.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to restore terminal")
			}
		}()
	}

	collector := telemetry.NewCollector(device.Device(), device.System(), logger.Default())

	m := monitor.New(monitor.Config{
		Loop:     cfg.Loop,
		Interval: cfg.IntervalDuration(),
		Render: render.Options{
			Mode:     cfg.RenderMode(),
			Colorize: cfg.ColorizeOutput(isatty.IsTerminal(os.Stdout.Fd())),
		},
	}, collector, cmd.OutOrStdout(), monitor.WithKeyPoller(keys), monitor.WithLogger(logger.Default()))

	if err := m.Run(ctx); err != nil {
		return errors.New().Wrap(errors.ErrMainLoop, err)
	}

	return nil
}

func handleSignals(ctx context.Context, cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-sigs:
		logger.Info().Msg("Received termination signal.")
		cancel()
	case <-ctx.Done():
	}
}
