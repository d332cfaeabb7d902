// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ppmconv/internal/codec"
	"github.com/pdiddy/ppmconv/internal/container"
	"github.com/pdiddy/ppmconv/internal/convert"
	"github.com/pdiddy/ppmconv/internal/history"
	"github.com/pdiddy/ppmconv/pkg/types"
)

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper(), cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Info("using config file", "path", used)
	}
	cmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := newCodec(cfg.Conversion, logger)
	if err != nil {
		return err
	}

	opts := convert.OptionsFromConfig(cfg.Conversion)
	opts.Logger = logger

	store := openHistory(cfg.History, logger)
	if store != nil {
		defer store.Close()
		runID, err := store.BeginRun(ctx, history.RunInfo{
			Root:         cfg.Conversion.Root,
			Pattern:      cfg.Conversion.Pattern,
			TargetFormat: cfg.Conversion.TargetFormat,
			Backend:      c.Name(),
		})
		if err != nil {
			logger.Warn("history disabled for this run", "error", err)
		} else {
			opts.RunID = runID
			opts.Recorder = store
		}
	}

	result, runErr := convert.Run(ctx, c, opts, cmd.OutOrStdout())

	if opts.RunID != "" {
		// The run context may already be canceled; the ledger still gets
		// the final state.
		if err := store.FinishRun(context.WithoutCancel(ctx), opts.RunID, result.Converted, runErr); err != nil {
			logger.Warn("recording run result", "error", err)
		}
	}

	return runErr
}

// newCodec builds the configured backend.
func newCodec(cfg types.ConversionConfig, logger *slog.Logger) (codec.Codec, error) {
	opts := codec.OptionsFromConfig(cfg)

	switch cfg.Backend {
	case types.BackendImageMagick:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, fmt.Errorf("imagemagick backend: %w", err)
		}
		m, err := codec.NewMagick(rt, cfg.MagickImage, opts)
		if err != nil {
			return nil, err
		}
		logger.Info("using imagemagick backend", "runtime", rt.Name(), "image", cfg.MagickImage)
		return m, nil
	default:
		logger.Debug("using native backend", "formats", codec.NewRegistry(opts).Formats())
		return codec.NewNative(opts), nil
	}
}

// openHistory opens the ledger when enabled. Failure only disables history.
func openHistory(cfg types.HistoryConfig, logger *slog.Logger) *history.Store {
	if !cfg.Enabled {
		return nil
	}
	store, err := history.Open(cfg)
	if err != nil {
		logger.Warn("history unavailable", "dir", cfg.Dir, "error", err)
		return nil
	}
	logger.Debug("recording history", "path", store.Path())
	return store
}
