// Package imaging converts between encoded image files and pixel grids
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"image-steganography/stego"
)

const (
	FormatPNG  = "png"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
)

var (
	// ErrUnsupportedFormat is returned for input that no registered decoder
	// recognises, or for an unknown output format name.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrLossyFormat is returned when asked to write a stego image with a
	// lossy codec, which would destroy the LSB plane.
	ErrLossyFormat = errors.New("lossy output format would destroy the embedded payload")
)

// ImageDecoder converts encoded images to and from pixel grids.
type ImageDecoder struct{}

// NewImageDecoder returns a decoder for every registered format.
func NewImageDecoder() *ImageDecoder {
	return &ImageDecoder{}
}

// Decode decodes PNG, JPEG, GIF, BMP, TIFF or WebP data into an RGB grid and
// returns the detected format name.
func (d *ImageDecoder) Decode(data []byte) (*stego.PixelGrid, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	grid, err := FromImage(img)
	if err != nil {
		return nil, "", err
	}
	return grid, format, nil
}

// DecodeReader is Decode for a stream.
func (d *ImageDecoder) DecodeReader(r io.Reader) (*stego.PixelGrid, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	return d.Decode(data)
}

// FromImage copies img into an RGB grid. Alpha is dropped without compositing:
// each pixel keeps its un-premultiplied colour.
func FromImage(img image.Image) (*stego.PixelGrid, error) {
	bounds := img.Bounds()
	grid, err := stego.NewPixelGrid(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			grid.Pix[i], grid.Pix[i+1], grid.Pix[i+2] = c.R, c.G, c.B
			i += stego.RGBChannels
		}
	}
	return grid, nil
}

// ToImage wraps a grid as an image: *image.Gray for intensity grids,
// opaque *image.NRGBA for RGB grids.
func ToImage(grid *stego.PixelGrid) (image.Image, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	rect := image.Rect(0, 0, grid.Width, grid.Height)
	if grid.Channels == stego.IntensityChannels {
		gray := image.NewGray(rect)
		copy(gray.Pix, grid.Pix)
		return gray, nil
	}
	if grid.Channels < stego.RGBChannels {
		return nil, fmt.Errorf("%w: cannot render %d channels", stego.ErrChannelCountMismatch, grid.Channels)
	}

	out := image.NewNRGBA(rect)
	for i, j := 0, 0; i < len(grid.Pix); i, j = i+grid.Channels, j+4 {
		out.Pix[j] = grid.Pix[i]
		out.Pix[j+1] = grid.Pix[i+1]
		out.Pix[j+2] = grid.Pix[i+2]
		out.Pix[j+3] = 0xFF
	}
	return out, nil
}

// ParseFormat normalises an output format name. JPEG is refused.
func ParseFormat(name string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "", "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	case "jpg", "jpeg":
		return "", fmt.Errorf("%w: %s", ErrLossyFormat, name)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Encode writes grid to w in the named lossless format.
func Encode(w io.Writer, grid *stego.PixelGrid, format string) error {
	format, err := ParseFormat(format)
	if err != nil {
		return err
	}
	img, err := ToImage(grid)
	if err != nil {
		return err
	}

	switch format {
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = png.Encode(w, img)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

// EncodeToBytes is Encode into a fresh buffer.
func EncodeToBytes(grid *stego.PixelGrid, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, grid, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ContentType returns the MIME type of a format accepted by ParseFormat.
func ContentType(format string) string {
	switch format {
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	}
	return "image/png"
}
