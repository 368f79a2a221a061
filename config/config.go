// Package config holds the runtime configuration shared by the CLI and the
// HTTP server: codec defaults, server settings and logging switches.
package config

import (
	"errors"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"

	"image-steganography/imaging"
	"image-steganography/models"
	"image-steganography/stego"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "stegano"

	// DefaultChannel is the payload channel when none is configured.
	DefaultChannel = "red"

	// DefaultAddr is the listen address of the HTTP server.
	DefaultAddr = ":8080"

	// DefaultAllowOrigin is the frontend origin allowed by CORS.
	DefaultAllowOrigin = "http://localhost:3000"

	// DefaultMaxUploadBytes caps a multipart upload at 32MB.
	DefaultMaxUploadBytes = 32 << 20

	// DefaultOutputFormat is the encoding of written grids.
	DefaultOutputFormat = imaging.FormatPNG
)

// Config holds all configuration options.
type Config struct {
	// Channel is the payload channel name: red, green or blue.
	Channel string

	// Resample is the policy used to fit the secret to the cover.
	// See imaging.ResampleNames.
	Resample string

	// Workers bounds the goroutines used per codec call.
	Workers int

	// Addr is the HTTP listen address.
	Addr string

	// AllowOrigins lists the CORS origins accepted by the HTTP server.
	AllowOrigins []string

	// MaxUploadBytes limits the multipart form size of one request.
	MaxUploadBytes int64

	// MinPSNR is the embed quality floor in dB; lower results are logged
	// as warnings.
	MinPSNR float64

	// OutputFormat is the lossless format written by the CLI.
	OutputFormat string

	// Verbose enables debug logging.
	Verbose bool

	// JSONLogs switches the log handler from text to JSON.
	JSONLogs bool

	// ConfigFilePath is the file the configuration was loaded from, if any.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Channel:        DefaultChannel,
		Resample:       imaging.DefaultResample,
		Workers:        runtime.NumCPU(),
		Addr:           DefaultAddr,
		AllowOrigins:   []string{DefaultAllowOrigin},
		MaxUploadBytes: DefaultMaxUploadBytes,
		MinPSNR:        imaging.DefaultMinPSNR,
		OutputFormat:   DefaultOutputFormat,
	}
}

// XDGConfigDir returns the XDG config directory for the application.
// On Linux: ~/.config/stegano
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// StegoConfig returns the codec settings.
func (c *Config) StegoConfig() *models.StegoConfig {
	return &models.StegoConfig{
		Channel:  c.Channel,
		Resample: c.Resample,
		Workers:  c.Workers,
	}
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if _, err := stego.ParseChannel(c.Channel); err != nil {
		return err
	}

	if _, err := imaging.NewResizer(c.Resample); err != nil {
		return err
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.MinPSNR < 0 {
		return ErrInvalidMinPSNR
	}

	if strings.TrimSpace(c.Addr) == "" {
		return ErrInvalidAddr
	}

	if c.MaxUploadBytes <= 0 {
		return ErrInvalidMaxUpload
	}

	if _, err := imaging.ParseFormat(c.OutputFormat); err != nil {
		return errors.Join(ErrInvalidOutputFormat, err)
	}

	return nil
}
