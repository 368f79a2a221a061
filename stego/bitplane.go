package stego

import "fmt"

const (
	// PlaneCount is the number of bit-planes in an 8-bit channel.
	PlaneCount = 8

	// PlaneOn and PlaneOff are the rendered intensities of plane bits 1 and 0.
	PlaneOn  uint8 = 255
	PlaneOff uint8 = 0
)

// BitPlaneSet holds the 8 bit-planes of one channel, index 0 being the least
// significant bit.
type BitPlaneSet struct {
	Channel Channel
	Planes  [PlaneCount]*BinaryMask
}

// Plane returns plane b.
func (s *BitPlaneSet) Plane(b int) (*BinaryMask, error) {
	if b < 0 || b >= PlaneCount {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPlane, b)
	}
	return s.Planes[b], nil
}

// Render returns plane b as a grayscale image, set bits white.
func (s *BitPlaneSet) Render(b int) (*PixelGrid, error) {
	plane, err := s.Plane(b)
	if err != nil {
		return nil, err
	}
	return plane.Render(PlaneOn, PlaneOff), nil
}

// Compose ORs every plane back into its bit position, rebuilding the source
// channel as an intensity grid.
func (s *BitPlaneSet) Compose() (*PixelGrid, error) {
	for b, plane := range s.Planes {
		if err := plane.Validate(); err != nil {
			return nil, fmt.Errorf("plane %d: %w", b, err)
		}
	}

	first := s.Planes[0]
	out, err := NewIntensityGrid(first.Width, first.Height)
	if err != nil {
		return nil, err
	}
	for b, plane := range s.Planes {
		if plane.Width != first.Width || plane.Height != first.Height {
			return nil, fmt.Errorf("%w: plane %d is %dx%d", ErrDimensionMismatch, b, plane.Width, plane.Height)
		}
		for i, bit := range plane.Bits {
			out.Pix[i] |= (bit & 1) << b
		}
	}
	return out, nil
}

// Equal reports whether both sets come from the same channel and carry
// identical planes.
func (s *BitPlaneSet) Equal(other *BitPlaneSet) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.Channel != other.Channel {
		return false
	}
	for b := range s.Planes {
		if !s.Planes[b].Equal(other.Planes[b]) {
			return false
		}
	}
	return true
}

// Decompose splits channel of img into its 8 bit-planes. img is not modified.
func (lsb *LSBSteganography) Decompose(img *PixelGrid, channel Channel) (*BitPlaneSet, error) {
	if err := checkChannel(channel); err != nil {
		return nil, err
	}
	if err := checkRGB(img); err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}

	set := &BitPlaneSet{Channel: channel}
	for b := range set.Planes {
		plane, err := NewBinaryMask(img.Width, img.Height)
		if err != nil {
			return nil, err
		}
		set.Planes[b] = plane
	}

	ch := int(channel)
	lsb.forEachBand(img.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < img.Width; x++ {
				v := img.Pix[img.Offset(x, y)+ch]
				i := y*img.Width + x
				for b := range PlaneCount {
					set.Planes[b].Bits[i] = (v >> b) & 1
				}
			}
		}
	})
	return set, nil
}

// DecomposeAll decomposes the red, green and blue channels in that order.
func (lsb *LSBSteganography) DecomposeAll(img *PixelGrid) ([]*BitPlaneSet, error) {
	sets := make([]*BitPlaneSet, 0, RGBChannels)
	for _, ch := range AllChannels() {
		set, err := lsb.Decompose(img, ch)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}
