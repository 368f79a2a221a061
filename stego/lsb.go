// Package stego implements LSB steganography over in-memory pixel grids
package stego

import (
	"fmt"

	"image-steganography/models"
)

const (
	// BinarizeThreshold splits secret intensities: values below it are dark
	// and become payload bit 1.
	BinarizeThreshold = 128

	// SecretInk and SecretPaper are the rendered intensities of extracted
	// secret bits 1 and 0.
	SecretInk   uint8 = 0
	SecretPaper uint8 = 255

	lsbMask uint8 = 0x01
)

// Resizer resamples an intensity grid to an exact size.
type Resizer interface {
	Resize(src *PixelGrid, width, height int) (*PixelGrid, error)
}

// LSBSteganography embeds, extracts and decomposes bit-planes of pixel grids.
type LSBSteganography struct {
	config  *models.StegoConfig
	resizer Resizer
	workers int
}

// NewLSBSteganography returns a codec. resizer may be nil when every secret
// already matches its cover's size.
func NewLSBSteganography(config *models.StegoConfig, resizer Resizer) *LSBSteganography {
	if config == nil {
		config = &models.StegoConfig{}
	}
	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	return &LSBSteganography{
		config:  config,
		resizer: resizer,
		workers: workers,
	}
}

// Channel returns the configured payload channel, Red when none is set.
func (lsb *LSBSteganography) Channel() (Channel, error) {
	if lsb.config.Channel == "" {
		return Red, nil
	}
	return ParseChannel(lsb.config.Channel)
}

// Binarize reduces a secret image of any size and colour depth to a mask of
// width x height: intensity below BinarizeThreshold is 1, anything else 0.
func (lsb *LSBSteganography) Binarize(secret *PixelGrid, width, height int) (*BinaryMask, error) {
	intensity, err := secret.Intensity()
	if err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}

	if intensity.Width != width || intensity.Height != height {
		intensity, err = lsb.resize(intensity, width, height)
		if err != nil {
			return nil, err
		}
	}

	mask, err := NewBinaryMask(width, height)
	if err != nil {
		return nil, err
	}
	for i, v := range intensity.Pix {
		if v < BinarizeThreshold {
			mask.Bits[i] = 1
		}
	}
	return mask, nil
}

func (lsb *LSBSteganography) resize(src *PixelGrid, width, height int) (*PixelGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: degenerate target %dx%d", ErrResizeFailure, width, height)
	}
	if lsb.resizer == nil {
		return nil, fmt.Errorf("%w: no resizer configured for %dx%d -> %dx%d",
			ErrResizeFailure, src.Width, src.Height, width, height)
	}

	out, err := lsb.resizer.Resize(src, width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResizeFailure, err)
	}
	if out == nil || out.Width != width || out.Height != height || out.Channels != IntensityChannels {
		return nil, fmt.Errorf("%w: resizer returned an unexpected grid", ErrResizeFailure)
	}
	return out, nil
}

// Embed hides the binarised secret in the LSB of channel of cover. The secret
// is converted to intensity and resampled to the cover's size first.
func (lsb *LSBSteganography) Embed(cover, secret *PixelGrid, channel Channel) (*PixelGrid, error) {
	if err := checkChannel(channel); err != nil {
		return nil, err
	}
	if err := checkRGB(cover); err != nil {
		return nil, fmt.Errorf("cover: %w", err)
	}

	mask, err := lsb.Binarize(secret, cover.Width, cover.Height)
	if err != nil {
		return nil, err
	}
	return lsb.EmbedMask(cover, mask, channel)
}

// EmbedMask writes mask into the LSB of channel of a copy of cover. All other
// bits and channels are copied unchanged.
func (lsb *LSBSteganography) EmbedMask(cover *PixelGrid, mask *BinaryMask, channel Channel) (*PixelGrid, error) {
	if err := checkChannel(channel); err != nil {
		return nil, err
	}
	if err := checkRGB(cover); err != nil {
		return nil, fmt.Errorf("cover: %w", err)
	}
	if err := mask.Validate(); err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}
	if mask.Width != cover.Width || mask.Height != cover.Height {
		return nil, fmt.Errorf("%w: mask %dx%d, cover %dx%d",
			ErrDimensionMismatch, mask.Width, mask.Height, cover.Width, cover.Height)
	}

	stego := cover.Clone()
	ch := int(channel)
	lsb.forEachBand(stego.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < stego.Width; x++ {
				i := stego.Offset(x, y) + ch
				stego.Pix[i] = (stego.Pix[i] &^ lsbMask) | (mask.At(x, y) & lsbMask)
			}
		}
	})
	return stego, nil
}

// Extraction holds the two products of Extract.
type Extraction struct {
	// RecoveredCover is the stego grid with the payload LSB cleared. It
	// differs from the true cover by at most 1 in the payload channel.
	RecoveredCover *PixelGrid
	Secret         *BinaryMask
}

// SecretImage renders the secret with payload bit 1 as black ink on white.
func (e *Extraction) SecretImage() *PixelGrid {
	return e.Secret.Render(SecretInk, SecretPaper)
}

// Extract reads the LSB plane of channel as the secret and returns the stego
// grid with that plane zeroed as the recovered cover.
func (lsb *LSBSteganography) Extract(stego *PixelGrid, channel Channel) (*Extraction, error) {
	if err := checkChannel(channel); err != nil {
		return nil, err
	}
	if err := checkRGB(stego); err != nil {
		return nil, fmt.Errorf("stego: %w", err)
	}

	secret, err := NewBinaryMask(stego.Width, stego.Height)
	if err != nil {
		return nil, err
	}
	recovered := stego.Clone()
	ch := int(channel)
	lsb.forEachBand(stego.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < stego.Width; x++ {
				i := recovered.Offset(x, y) + ch
				secret.Bits[y*stego.Width+x] = recovered.Pix[i] & lsbMask
				recovered.Pix[i] &^= lsbMask
			}
		}
	})

	return &Extraction{RecoveredCover: recovered, Secret: secret}, nil
}
