// Package models contain needed models
package models

// StegoConfig represents configuration for steganography operations
type StegoConfig struct {
	Channel  string
	Resample string
	Workers  int
}

// StegoResponse represents the response after an embed request fails
type StegoResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	PSNR    float64 `json:"psnr,omitempty"`
}

// PlaneImage is one rendered bit-plane
type PlaneImage struct {
	Bit       int     `json:"bit"`
	OnesRatio float64 `json:"ones_ratio"`
	PNG       string  `json:"png,omitempty"`
}

// PlanesResponse represents the response for a bit-plane view request
type PlanesResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Channel string       `json:"channel,omitempty"`
	Width   int          `json:"width,omitempty"`
	Height  int          `json:"height,omitempty"`
	Planes  []PlaneImage `json:"planes,omitempty"`
}

// ExtractResponse represents the response after extracting a secret image
type ExtractResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Channel        string `json:"channel,omitempty"`
	RecoveredCover string `json:"recovered_cover,omitempty"`
	Secret         string `json:"secret,omitempty"`
}

// ExifTag is a single flattened EXIF entry
type ExifTag struct {
	IFD   string `json:"ifd"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ImageMetadata represents metadata about an encoded image file
type ImageMetadata struct {
	Format     string
	Width      int
	Height     int
	ColorModel string
	TotalBytes int
	ExifTags   []ExifTag
}
