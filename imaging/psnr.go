package imaging

import (
	"math"
	"strconv"

	"image-steganography/stego"
)

const maxSampleValue = 255.0

// DefaultMinPSNR is the quality floor below which an embed is reported as
// visibly degraded.
const DefaultMinPSNR = 40.0

// CalculatePSNR returns the peak signal-to-noise ratio in dB between two grids
// of the same shape, over every sample. Identical grids give +Inf; grids of
// different shape give 0.
func CalculatePSNR(original, stegoGrid *stego.PixelGrid) float64 {
	if !sameShape(original, stegoGrid) {
		return 0.0
	}

	var mse float64
	for i := range original.Pix {
		diff := float64(original.Pix[i]) - float64(stegoGrid.Pix[i])
		mse += diff * diff
	}
	mse /= float64(len(original.Pix))

	return psnrFromMSE(mse)
}

// CalculateChannelPSNR is CalculatePSNR restricted to one channel.
func CalculateChannelPSNR(original, stegoGrid *stego.PixelGrid, channel stego.Channel) float64 {
	if !sameShape(original, stegoGrid) || original.Channels < stego.RGBChannels || !channel.Valid() {
		return 0.0
	}

	var mse float64
	n := 0
	for i := int(channel); i < len(original.Pix); i += original.Channels {
		diff := float64(original.Pix[i]) - float64(stegoGrid.Pix[i])
		mse += diff * diff
		n++
	}
	mse /= float64(n)

	return psnrFromMSE(mse)
}

func psnrFromMSE(mse float64) float64 {
	// If MSE is 0, images are identical
	if mse == 0 {
		return math.Inf(1)
	}
	return 20 * math.Log10(maxSampleValue/math.Sqrt(mse))
}

func sameShape(a, b *stego.PixelGrid) bool {
	if a == nil || b == nil || len(a.Pix) == 0 {
		return false
	}
	return a.Width == b.Width && a.Height == b.Height && a.Channels == b.Channels && len(a.Pix) == len(b.Pix)
}

// ValidatePSNR reports whether psnr meets threshold. Identical grids always do.
func ValidatePSNR(psnr float64, threshold float64) bool {
	if math.IsInf(psnr, 1) {
		return true // Infinite PSNR is always good
	}
	return psnr >= threshold
}

// FormatPSNR renders psnr with two decimals, or "inf" for identical grids.
func FormatPSNR(psnr float64) string {
	if math.IsInf(psnr, 1) {
		return "inf"
	}
	return strconv.FormatFloat(psnr, 'f', 2, 64)
}
