package stego

import "errors"

// Codec errors. Every failure is reported through one of these sentinels,
// wrapped with context, so callers can classify it with errors.Is.
var (
	// ErrInvalidDimensions is returned for a grid with zero width or height,
	// or whose pixel buffer does not match its declared size.
	ErrInvalidDimensions = errors.New("invalid dimensions: grid must have non-zero width and height")

	// ErrChannelCountMismatch is returned when an RGB grid is required but the
	// input carries fewer than 3 channels.
	ErrChannelCountMismatch = errors.New("channel count mismatch: RGB grid required")

	// ErrResizeFailure is returned when the secret cannot be resampled to the
	// cover's size.
	ErrResizeFailure = errors.New("resize failure")

	// ErrDimensionMismatch is returned when a mask does not match the size of
	// the grid it is applied to.
	ErrDimensionMismatch = errors.New("dimension mismatch: mask and cover sizes differ")

	// ErrInvalidChannel is returned for a channel outside red, green and blue.
	ErrInvalidChannel = errors.New("invalid channel: must be red, green or blue")

	// ErrInvalidPlane is returned for a bit-plane index outside [0,7].
	ErrInvalidPlane = errors.New("invalid bit plane: index must be between 0 and 7")
)
