package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"image-steganography/config"
	"image-steganography/imaging"
	"image-steganography/logging"
	"image-steganography/stego"
)

// addCodecFlags registers the flags shared by every command that runs the codec.
func addCodecFlags(cmd *cobra.Command) {
	cmd.Flags().String("channel", config.DefaultChannel, "Payload channel: red, green or blue")
	cmd.Flags().String("resample", imaging.DefaultResample, "Secret resampling policy: nearest, approxbilinear, bilinear, catmullrom")
	cmd.Flags().Int("workers", 0, "Goroutines per codec call (default: number of CPUs)")
}

// loadConfig builds the configuration from defaults, the config file and
// the flags the user actually set, then builds the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("json-logs") {
		cfg.JSONLogs, _ = flags.GetBool("json-logs")
	}
	if flags.Changed("channel") {
		// planes resolves "all" itself; every other command must name one channel.
		channel, _ := flags.GetString("channel")
		if cmd.Name() != planesCmdName || !strings.EqualFold(channel, allChannels) {
			cfg.Channel = channel
		}
	}
	if flags.Changed("resample") {
		cfg.Resample, _ = flags.GetString("resample")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("min-psnr") {
		cfg.MinPSNR, _ = flags.GetFloat64("min-psnr")
	}
	if flags.Changed("format") {
		cfg.OutputFormat, _ = flags.GetString("format")
	}
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := logging.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.JSONLogs)
	if cfg.ConfigFilePath != "" {
		logger.Debug("configuration loaded", "path", cfg.ConfigFilePath)
	}
	return cfg, logger, nil
}

// newCodec returns a codec and the payload channel for cfg.
func newCodec(cfg *config.Config) (*stego.LSBSteganography, stego.Channel, error) {
	resizer, err := imaging.NewResizer(cfg.Resample)
	if err != nil {
		return nil, 0, err
	}
	lsb := stego.NewLSBSteganography(cfg.StegoConfig(), resizer)
	channel, err := lsb.Channel()
	if err != nil {
		return nil, 0, err
	}
	return lsb, channel, nil
}

// readGrid decodes the image file at path.
func readGrid(path string) (*stego.PixelGrid, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	grid, _, err := imaging.NewImageDecoder().Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return grid, nil
}

// writeGrid encodes grid to path, creating parent directories as needed.
func writeGrid(path string, grid *stego.PixelGrid, format string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := imaging.Encode(f, grid, format); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// formatFor picks the output format: the --format flag when given, else
// the extension of path when it names a lossless format, else the
// configured default.
func formatFor(cmd *cobra.Command, cfg *config.Config, path string) (string, error) {
	if cmd.Flags().Changed("format") {
		return imaging.ParseFormat(cfg.OutputFormat)
	}
	if ext := filepath.Ext(path); ext != "" {
		if format, err := imaging.ParseFormat(ext); err == nil {
			return format, nil
		} else if errors.Is(err, imaging.ErrLossyFormat) {
			return "", err
		}
	}
	return imaging.ParseFormat(cfg.OutputFormat)
}
