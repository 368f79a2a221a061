package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	exif "github.com/dsoprea/go-exif/v3"

	"image-steganography/models"
)

// ReadMetadata reports the format, size and colour model of encoded image
// data without decoding pixels, plus any EXIF tags it carries.
func (d *ImageDecoder) ReadMetadata(data []byte) (*models.ImageMetadata, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}

	return &models.ImageMetadata{
		Format:     format,
		Width:      cfg.Width,
		Height:     cfg.Height,
		ColorModel: colorModelName(cfg.ColorModel),
		TotalBytes: len(data),
		ExifTags:   readExifTags(data),
	}, nil
}

// readExifTags returns the flattened EXIF entries of data. A missing or
// unreadable EXIF block yields no tags.
func readExifTags(data []byte) []models.ExifTag {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return nil
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil
	}

	tags := make([]models.ExifTag, 0, len(entries))
	for _, entry := range entries {
		tags = append(tags, models.ExifTag{
			IFD:   entry.IfdPath,
			Name:  entry.TagName,
			Value: entry.Formatted,
		})
	}
	return tags
}

func colorModelName(m color.Model) string {
	switch m {
	case color.RGBAModel:
		return "RGBA"
	case color.RGBA64Model:
		return "RGBA64"
	case color.NRGBAModel:
		return "NRGBA"
	case color.NRGBA64Model:
		return "NRGBA64"
	case color.GrayModel:
		return "Gray"
	case color.Gray16Model:
		return "Gray16"
	case color.YCbCrModel:
		return "YCbCr"
	case color.CMYKModel:
		return "CMYK"
	}
	if _, ok := m.(color.Palette); ok {
		return "Paletted"
	}
	return "unknown"
}
