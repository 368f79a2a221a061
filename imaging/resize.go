package imaging

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"

	"golang.org/x/image/draw"

	"image-steganography/stego"
)

// ErrUnknownResample is returned for a resampling policy name that is not
// one of ResampleNames.
var ErrUnknownResample = errors.New("unknown resampling policy")

// DefaultResample keeps binary secrets crisp when they are scaled.
const DefaultResample = "nearest"

var interpolators = map[string]draw.Interpolator{
	"nearest":        draw.NearestNeighbor,
	"approxbilinear": draw.ApproxBiLinear,
	"bilinear":       draw.BiLinear,
	"catmullrom":     draw.CatmullRom,
}

// ResampleNames lists the accepted resampling policies.
func ResampleNames() []string {
	names := make([]string, 0, len(interpolators))
	for name := range interpolators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resizer implements stego.Resizer with an x/image/draw kernel. Every kernel
// is deterministic for a given input and size.
type Resizer struct {
	name   string
	kernel draw.Interpolator
}

// NewResizer returns the resizer for a policy name; "" selects DefaultResample.
func NewResizer(name string) (*Resizer, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultResample
	}
	kernel, ok := interpolators[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownResample, name, strings.Join(ResampleNames(), ", "))
	}
	return &Resizer{name: key, kernel: kernel}, nil
}

// Name returns the canonical policy name.
func (r *Resizer) Name() string {
	return r.name
}

// Resize scales src to width x height. Intensity grids stay single-channel;
// RGB grids stay RGB.
func (r *Resizer) Resize(src *stego.PixelGrid, width, height int) (*stego.PixelGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: target %dx%d", stego.ErrInvalidDimensions, width, height)
	}
	srcImg, err := ToImage(src)
	if err != nil {
		return nil, err
	}

	rect := image.Rect(0, 0, width, height)
	if src.Channels == stego.IntensityChannels {
		dst := image.NewGray(rect)
		r.kernel.Scale(dst, rect, srcImg, srcImg.Bounds(), draw.Src, nil)
		out, err := stego.NewIntensityGrid(width, height)
		if err != nil {
			return nil, err
		}
		copy(out.Pix, dst.Pix)
		return out, nil
	}

	dst := image.NewNRGBA(rect)
	r.kernel.Scale(dst, rect, srcImg, srcImg.Bounds(), draw.Src, nil)
	return FromImage(dst)
}
