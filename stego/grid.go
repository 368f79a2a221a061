package stego

import (
	"fmt"
)

const (
	// RGBChannels is the channel count of a colour grid.
	RGBChannels = 3
	// IntensityChannels is the channel count of a single-channel intensity grid.
	IntensityChannels = 1
)

// PixelGrid is a width x height raster of 8-bit samples stored row-major with
// interleaved channels: the sample for channel c of pixel (x, y) lives at
// Pix[(y*Width+x)*Channels+c].
type PixelGrid struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewPixelGrid allocates a zeroed RGB grid.
func NewPixelGrid(width, height int) (*PixelGrid, error) {
	return newGrid(width, height, RGBChannels)
}

// NewIntensityGrid allocates a zeroed single-channel grid.
func NewIntensityGrid(width, height int) (*PixelGrid, error) {
	return newGrid(width, height, IntensityChannels)
}

func newGrid(width, height, channels int) (*PixelGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &PixelGrid{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}, nil
}

// Validate checks that the grid has a non-zero area and a buffer of the
// declared size.
func (g *PixelGrid) Validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", ErrInvalidDimensions)
	}
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, g.Width, g.Height)
	}
	if g.Channels <= 0 {
		return fmt.Errorf("%w: %d channels", ErrChannelCountMismatch, g.Channels)
	}
	if len(g.Pix) != g.Width*g.Height*g.Channels {
		return fmt.Errorf("%w: buffer holds %d samples, want %d",
			ErrInvalidDimensions, len(g.Pix), g.Width*g.Height*g.Channels)
	}
	return nil
}

// Offset returns the index of the first sample of pixel (x, y).
func (g *PixelGrid) Offset(x, y int) int {
	return (y*g.Width + x) * g.Channels
}

// At returns the sample of channel c at (x, y).
func (g *PixelGrid) At(x, y, c int) uint8 {
	return g.Pix[g.Offset(x, y)+c]
}

// Set stores v as the sample of channel c at (x, y).
func (g *PixelGrid) Set(x, y, c int, v uint8) {
	g.Pix[g.Offset(x, y)+c] = v
}

// Clone returns a deep copy of the grid.
func (g *PixelGrid) Clone() *PixelGrid {
	pix := make([]uint8, len(g.Pix))
	copy(pix, g.Pix)
	return &PixelGrid{Width: g.Width, Height: g.Height, Channels: g.Channels, Pix: pix}
}

// Intensity converts the grid to a single-channel luma grid using the
// ITU-R 601 weights. A single-channel grid is copied unchanged.
func (g *PixelGrid) Intensity() (*PixelGrid, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if g.Channels == IntensityChannels {
		return g.Clone(), nil
	}
	if g.Channels < RGBChannels {
		return nil, fmt.Errorf("%w: cannot derive intensity from %d channels", ErrChannelCountMismatch, g.Channels)
	}

	out, err := NewIntensityGrid(g.Width, g.Height)
	if err != nil {
		return nil, err
	}
	for i := range out.Pix {
		p := g.Pix[i*g.Channels:]
		out.Pix[i] = luma(p[0], p[1], p[2])
	}
	return out, nil
}

// luma matches image/color.GrayModel applied to 8-bit samples.
func luma(r, g, b uint8) uint8 {
	y := (19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16
	return uint8(y)
}

func checkRGB(g *PixelGrid) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.Channels < RGBChannels {
		return fmt.Errorf("%w: got %d channels", ErrChannelCountMismatch, g.Channels)
	}
	return nil
}

// BinaryMask is a width x height grid of single bits stored one per byte.
type BinaryMask struct {
	Width  int
	Height int
	Bits   []uint8
}

// NewBinaryMask allocates an all-zero mask.
func NewBinaryMask(width, height int) (*BinaryMask, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &BinaryMask{Width: width, Height: height, Bits: make([]uint8, width*height)}, nil
}

// MaskFromRows builds a mask from rows of bits; any non-zero value is 1.
func MaskFromRows(rows [][]uint8) (*BinaryMask, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidDimensions)
	}
	m, err := NewBinaryMask(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != m.Width {
			return nil, fmt.Errorf("%w: row %d has %d bits, want %d", ErrInvalidDimensions, y, len(row), m.Width)
		}
		for x, v := range row {
			if v != 0 {
				m.Bits[y*m.Width+x] = 1
			}
		}
	}
	return m, nil
}

// Validate checks that the mask has a non-zero area and a buffer of the
// declared size.
func (m *BinaryMask) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil mask", ErrInvalidDimensions)
	}
	if m.Width <= 0 || m.Height <= 0 || len(m.Bits) != m.Width*m.Height {
		return fmt.Errorf("%w: mask %dx%d with %d bits", ErrInvalidDimensions, m.Width, m.Height, len(m.Bits))
	}
	return nil
}

// At returns the bit at (x, y).
func (m *BinaryMask) At(x, y int) uint8 {
	return m.Bits[y*m.Width+x]
}

// Set stores the low bit of v at (x, y).
func (m *BinaryMask) Set(x, y int, v uint8) {
	m.Bits[y*m.Width+x] = v & 1
}

// Equal reports whether both masks have the same size and bits.
func (m *BinaryMask) Equal(other *BinaryMask) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.Width != other.Width || m.Height != other.Height || len(m.Bits) != len(other.Bits) {
		return false
	}
	for i, b := range m.Bits {
		if b&1 != other.Bits[i]&1 {
			return false
		}
	}
	return true
}

// OnesRatio returns the fraction of bits set to 1.
func (m *BinaryMask) OnesRatio() float64 {
	if len(m.Bits) == 0 {
		return 0
	}
	ones := 0
	for _, b := range m.Bits {
		ones += int(b & 1)
	}
	return float64(ones) / float64(len(m.Bits))
}

// Render draws the mask as an intensity grid, using one for set bits and
// zero for clear bits.
func (m *BinaryMask) Render(one, zero uint8) *PixelGrid {
	out := &PixelGrid{
		Width:    m.Width,
		Height:   m.Height,
		Channels: IntensityChannels,
		Pix:      make([]uint8, len(m.Bits)),
	}
	for i, b := range m.Bits {
		if b&1 == 1 {
			out.Pix[i] = one
		} else {
			out.Pix[i] = zero
		}
	}
	return out
}
