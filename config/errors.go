package config

import "errors"

// Configuration validation errors returned by Config.Validate. Channel and
// resample problems surface as stego.ErrInvalidChannel and
// imaging.ErrUnknownResample.
var (
	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidMinPSNR is returned when the quality floor is negative.
	ErrInvalidMinPSNR = errors.New("invalid min PSNR: must not be negative")

	// ErrInvalidAddr is returned when the listen address is empty.
	ErrInvalidAddr = errors.New("invalid listen address: must not be empty")

	// ErrInvalidMaxUpload is returned when the upload limit is not positive.
	ErrInvalidMaxUpload = errors.New("invalid max upload size: must be positive")

	// ErrInvalidOutputFormat is returned when the output format is not a
	// lossless format the encoder supports.
	ErrInvalidOutputFormat = errors.New("invalid output format: must be png, bmp or tiff")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
