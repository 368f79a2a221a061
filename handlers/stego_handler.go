// Package handlers is made to handle requests
package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"image-steganography/config"
	"image-steganography/imaging"
	"image-steganography/models"
	"image-steganography/stego"
)

type StegoHandler struct {
	imageDecoder *imaging.ImageDecoder
	config       *config.Config
	logger       *slog.Logger
}

func NewStegoHandler(cfg *config.Config, logger *slog.Logger) *StegoHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StegoHandler{
		imageDecoder: imaging.NewImageDecoder(),
		config:       cfg,
		logger:       logger,
	}
}

// RegisterRoutes mounts the API under /api/v1.
func (h *StegoHandler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api/v1")
	{
		api.GET("/health", h.HealthCheck)
		api.POST("/planes", h.ViewPlanes)

		stegoRoutes := api.Group("/stego")
		{
			stegoRoutes.POST("/embed", h.HideSecret)
			stegoRoutes.POST("/extract", h.ExtractSecret)
		}
	}
}

func (h *StegoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Image steganography API is running",
		"version": "1.0.0",
	})
}

// ViewPlanes returns the 8 bit-planes of one channel as base64 PNGs.
func (h *StegoHandler) ViewPlanes(c *gin.Context) {
	if err := h.parseForm(c); err != nil {
		c.JSON(http.StatusBadRequest, models.PlanesResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to parse form: %v", err),
		})
		return
	}

	lsb, channel, err := h.newCodec(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.PlanesResponse{Success: false, Message: err.Error()})
		return
	}

	img, _, err := h.readImage(c, "image")
	if err != nil {
		c.JSON(statusFor(err), models.PlanesResponse{Success: false, Message: err.Error()})
		return
	}

	set, err := lsb.Decompose(img, channel)
	if err != nil {
		c.JSON(statusFor(err), models.PlanesResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to decompose image: %v", err),
		})
		return
	}

	planes := make([]models.PlaneImage, 0, stego.PlaneCount)
	for b := range stego.PlaneCount {
		rendered, err := set.Render(b)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.PlanesResponse{Success: false, Message: err.Error()})
			return
		}
		encoded, err := encodeBase64PNG(rendered)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.PlanesResponse{Success: false, Message: err.Error()})
			return
		}
		planes = append(planes, models.PlaneImage{
			Bit:       b,
			OnesRatio: set.Planes[b].OnesRatio(),
			PNG:       encoded,
		})
	}

	c.JSON(http.StatusOK, models.PlanesResponse{
		Success: true,
		Message: "Bit-planes extracted",
		Channel: channel.String(),
		Width:   img.Width,
		Height:  img.Height,
		Planes:  planes,
	})
}

// HideSecret embeds the uploaded secret into the uploaded cover and streams
// the stego image back as PNG.
func (h *StegoHandler) HideSecret(c *gin.Context) {
	if err := h.parseForm(c); err != nil {
		c.JSON(http.StatusBadRequest, models.StegoResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to parse form: %v", err),
		})
		return
	}

	lsb, channel, err := h.newCodec(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.StegoResponse{Success: false, Message: err.Error()})
		return
	}

	cover, coverName, err := h.readImage(c, "cover_file")
	if err != nil {
		c.JSON(statusFor(err), models.StegoResponse{Success: false, Message: err.Error()})
		return
	}

	secret, _, err := h.readImage(c, "secret_file")
	if err != nil {
		c.JSON(statusFor(err), models.StegoResponse{Success: false, Message: err.Error()})
		return
	}

	stegoImage, err := lsb.Embed(cover, secret, channel)
	if err != nil {
		c.JSON(statusFor(err), models.StegoResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to embed secret image: %v", err),
		})
		return
	}

	stegoData, err := imaging.EncodeToBytes(stegoImage, imaging.FormatPNG)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.StegoResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to encode stego image: %v", err),
		})
		return
	}

	psnr := imaging.CalculatePSNR(cover, stegoImage)
	channelPSNR := imaging.CalculateChannelPSNR(cover, stegoImage, channel)
	h.logger.Info("secret embedded",
		"channel", channel.String(),
		"width", stegoImage.Width,
		"height", stegoImage.Height,
		"psnr", psnr,
		"channel_psnr", channelPSNR,
	)
	if !imaging.ValidatePSNR(psnr, h.config.MinPSNR) {
		h.logger.Warn("stego image quality below threshold",
			"psnr", psnr,
			"min_psnr", h.config.MinPSNR,
		)
	}

	outputFilename := outputName(coverName, "stego")

	// Set headers for file download
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputFilename))
	c.Header("Content-Length", strconv.Itoa(len(stegoData)))

	// Include metadata about the steganography operation
	c.Header("X-Stego-Method", "Image LSB")
	c.Header("X-Stego-Channel", channel.String())
	c.Header("X-Stego-Width", strconv.Itoa(stegoImage.Width))
	c.Header("X-Stego-Height", strconv.Itoa(stegoImage.Height))
	c.Header("X-Stego-PSNR", imaging.FormatPSNR(psnr))
	c.Header("X-Stego-Channel-PSNR", imaging.FormatPSNR(channelPSNR))

	c.Data(http.StatusOK, imaging.ContentType(imaging.FormatPNG), stegoData)
}

// ExtractSecret returns the recovered cover and the rendered secret of an
// uploaded stego image as base64 PNGs.
func (h *StegoHandler) ExtractSecret(c *gin.Context) {
	if err := h.parseForm(c); err != nil {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to parse form: %v", err),
		})
		return
	}

	lsb, channel, err := h.newCodec(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{Success: false, Message: err.Error()})
		return
	}

	stegoImage, _, err := h.readImage(c, "stego_file")
	if err != nil {
		c.JSON(statusFor(err), models.ExtractResponse{Success: false, Message: err.Error()})
		return
	}

	extraction, err := lsb.Extract(stegoImage, channel)
	if err != nil {
		c.JSON(statusFor(err), models.ExtractResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to extract secret image: %v", err),
		})
		return
	}

	cover, err := encodeBase64PNG(extraction.RecoveredCover)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ExtractResponse{Success: false, Message: err.Error()})
		return
	}
	secret, err := encodeBase64PNG(extraction.SecretImage())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ExtractResponse{Success: false, Message: err.Error()})
		return
	}

	h.logger.Info("secret extracted",
		"channel", channel.String(),
		"width", stegoImage.Width,
		"height", stegoImage.Height,
	)

	c.JSON(http.StatusOK, models.ExtractResponse{
		Success:        true,
		Message:        "Secret image extracted",
		Channel:        channel.String(),
		RecoveredCover: cover,
		Secret:         secret,
	})
}

func (h *StegoHandler) parseForm(c *gin.Context) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.MaxUploadBytes)
	return c.Request.ParseMultipartForm(h.config.MaxUploadBytes)
}

// newCodec builds a codec from the configured defaults, overridden by the
// optional "channel" and "resample" form fields.
func (h *StegoHandler) newCodec(c *gin.Context) (*stego.LSBSteganography, stego.Channel, error) {
	stegoConfig := h.config.StegoConfig()
	if channel := c.PostForm("channel"); channel != "" {
		stegoConfig.Channel = channel
	}
	if resample := c.PostForm("resample"); resample != "" {
		stegoConfig.Resample = resample
	}

	resizer, err := imaging.NewResizer(stegoConfig.Resample)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid resample: %w", err)
	}

	lsb := stego.NewLSBSteganography(stegoConfig, resizer)
	channel, err := lsb.Channel()
	if err != nil {
		return nil, 0, fmt.Errorf("invalid channel: %w", err)
	}
	return lsb, channel, nil
}

// readImage decodes the uploaded file in field and returns it with its
// client-side filename.
func (h *StegoHandler) readImage(c *gin.Context, field string) (*stego.PixelGrid, string, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return nil, "", &requestError{msg: fmt.Sprintf("image file %q is required", field), err: err}
	}
	defer file.Close()

	grid, format, err := h.imageDecoder.DecodeReader(file)
	if err != nil {
		return nil, "", &requestError{msg: fmt.Sprintf("failed to decode %s: %v", field, err), err: err}
	}

	h.logger.Debug("image uploaded",
		"field", field,
		"filename", header.Filename,
		"format", format,
		"width", grid.Width,
		"height", grid.Height,
	)
	return grid, header.Filename, nil
}

// requestError marks a failure caused by the uploaded data.
type requestError struct {
	msg string
	err error
}

func (e *requestError) Error() string {
	return e.msg
}

func (e *requestError) Unwrap() error {
	return e.err
}

// statusFor maps codec and decoding failures caused by the uploaded data to
// 400 and anything else to 500.
func statusFor(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr),
		errors.Is(err, imaging.ErrUnsupportedFormat),
		errors.Is(err, stego.ErrInvalidDimensions),
		errors.Is(err, stego.ErrChannelCountMismatch),
		errors.Is(err, stego.ErrResizeFailure),
		errors.Is(err, stego.ErrDimensionMismatch),
		errors.Is(err, stego.ErrInvalidChannel):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func encodeBase64PNG(grid *stego.PixelGrid) (string, error) {
	data, err := imaging.EncodeToBytes(grid, imaging.FormatPNG)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func outputName(filename, suffix string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "image"
	}
	return fmt.Sprintf("%s_%s.png", base, suffix)
}
