package stego

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-steganography/models"
)

// uniformCover returns an RGB grid with every pixel set to (r, g, b).
func uniformCover(t *testing.T, width, height int, r, g, b uint8) *PixelGrid {
	t.Helper()
	grid, err := NewPixelGrid(width, height)
	require.NoError(t, err)
	for i := 0; i < len(grid.Pix); i += RGBChannels {
		grid.Pix[i], grid.Pix[i+1], grid.Pix[i+2] = r, g, b
	}
	return grid
}

// randomCover returns an RGB grid filled from a seeded source.
func randomCover(t *testing.T, width, height int, seed int64) *PixelGrid {
	t.Helper()
	grid, err := NewPixelGrid(width, height)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(seed))
	for i := range grid.Pix {
		grid.Pix[i] = uint8(rng.Intn(256))
	}
	return grid
}

func randomMask(t *testing.T, width, height int, seed int64) *BinaryMask {
	t.Helper()
	mask, err := NewBinaryMask(width, height)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(seed))
	for i := range mask.Bits {
		mask.Bits[i] = uint8(rng.Intn(2))
	}
	return mask
}

// scaleResizer is a nearest-neighbour Resizer for tests.
type scaleResizer struct{}

func (scaleResizer) Resize(src *PixelGrid, width, height int) (*PixelGrid, error) {
	out, err := NewIntensityGrid(width, height)
	if err != nil {
		return nil, err
	}
	for y := range height {
		for x := range width {
			out.Pix[y*width+x] = src.At(x*src.Width/width, y*src.Height/height, 0)
		}
	}
	return out, nil
}

type failingResizer struct{}

func (failingResizer) Resize(*PixelGrid, int, int) (*PixelGrid, error) {
	return nil, errors.New("kernel exploded")
}

func TestEmbedMaskScenario(t *testing.T) {
	t.Parallel()

	lsb := NewLSBSteganography(nil, nil)
	cover := uniformCover(t, 2, 2, 200, 150, 50)
	mask, err := MaskFromRows([][]uint8{{1, 0}, {0, 1}})
	require.NoError(t, err)

	stego, err := lsb.EmbedMask(cover, mask, Red)
	require.NoError(t, err)

	wantRed := [][]uint8{{201, 200}, {200, 201}}
	for y := range 2 {
		for x := range 2 {
			assert.Equal(t, wantRed[y][x], stego.At(x, y, 0), "red at (%d,%d)", x, y)
			assert.Equal(t, uint8(150), stego.At(x, y, 1), "green at (%d,%d)", x, y)
			assert.Equal(t, uint8(50), stego.At(x, y, 2), "blue at (%d,%d)", x, y)
		}
	}

	extraction, err := lsb.Extract(stego, Red)
	require.NoError(t, err)
	assert.True(t, extraction.Secret.Equal(mask))
	for y := range 2 {
		for x := range 2 {
			assert.Equal(t, uint8(200), extraction.RecoveredCover.At(x, y, 0))
		}
	}

	secretImage := extraction.SecretImage()
	assert.Equal(t, []uint8{0, 255, 255, 0}, secretImage.Pix)

	assert.Equal(t, uint8(200), cover.At(0, 0, 0), "cover must not be mutated")
}

func TestEmbedMaskProperties(t *testing.T) {
	t.Parallel()

	for _, channel := range AllChannels() {
		t.Run(channel.String(), func(t *testing.T) {
			t.Parallel()

			lsb := NewLSBSteganography(&models.StegoConfig{Workers: 4}, nil)
			cover := randomCover(t, 37, 151, 1)
			mask := randomMask(t, 37, 151, 2)

			stego, err := lsb.EmbedMask(cover, mask, channel)
			require.NoError(t, err)

			ch := int(channel)
			for y := range cover.Height {
				for x := range cover.Width {
					for c := range RGBChannels {
						if c == ch {
							assert.Equal(t, cover.At(x, y, c)&0xFE, stego.At(x, y, c)&0xFE)
							assert.Equal(t, mask.At(x, y), stego.At(x, y, c)&1)
							continue
						}
						assert.Equal(t, cover.At(x, y, c), stego.At(x, y, c))
					}
				}
			}

			extraction, err := lsb.Extract(stego, channel)
			require.NoError(t, err)
			assert.True(t, extraction.Secret.Equal(mask), "round trip must reproduce the mask")

			for y := range cover.Height {
				for x := range cover.Width {
					diff := int(extraction.RecoveredCover.At(x, y, ch)) - int(cover.At(x, y, ch))
					assert.LessOrEqual(t, diff*diff, 1)
					assert.Equal(t, uint8(0), extraction.RecoveredCover.At(x, y, ch)&1)
				}
			}
		})
	}
}

func TestWorkerCountDoesNotChangeResult(t *testing.T) {
	t.Parallel()

	cover := randomCover(t, 64, 513, 3)
	mask := randomMask(t, 64, 513, 4)

	serial, err := NewLSBSteganography(&models.StegoConfig{Workers: 1}, nil).EmbedMask(cover, mask, Green)
	require.NoError(t, err)
	parallel, err := NewLSBSteganography(&models.StegoConfig{Workers: 7}, nil).EmbedMask(cover, mask, Green)
	require.NoError(t, err)

	assert.Equal(t, serial.Pix, parallel.Pix)
}

func TestBinarize(t *testing.T) {
	t.Parallel()

	t.Run("dark pixels become 1", func(t *testing.T) {
		t.Parallel()
		secret, err := NewIntensityGrid(4, 1)
		require.NoError(t, err)
		copy(secret.Pix, []uint8{0, 127, 128, 255})

		mask, err := NewLSBSteganography(nil, nil).Binarize(secret, 4, 1)
		require.NoError(t, err)
		assert.Equal(t, []uint8{1, 1, 0, 0}, mask.Bits)
	})

	t.Run("colour secret uses luma", func(t *testing.T) {
		t.Parallel()
		secret := uniformCover(t, 1, 1, 255, 0, 0)

		mask, err := NewLSBSteganography(nil, nil).Binarize(secret, 1, 1)
		require.NoError(t, err)
		// luma of pure red is 76
		assert.Equal(t, []uint8{1}, mask.Bits)
	})

	t.Run("secret is resized to the target", func(t *testing.T) {
		t.Parallel()
		secret, err := MaskFromRows([][]uint8{{1, 0}, {0, 1}})
		require.NoError(t, err)

		mask, err := NewLSBSteganography(nil, scaleResizer{}).Binarize(secret.Render(0, 255), 4, 4)
		require.NoError(t, err)
		want, err := MaskFromRows([][]uint8{
			{1, 1, 0, 0},
			{1, 1, 0, 0},
			{0, 0, 1, 1},
			{0, 0, 1, 1},
		})
		require.NoError(t, err)
		assert.True(t, mask.Equal(want))
	})

	t.Run("missing resizer is a resize failure", func(t *testing.T) {
		t.Parallel()
		secret, err := NewIntensityGrid(2, 2)
		require.NoError(t, err)

		_, err = NewLSBSteganography(nil, nil).Binarize(secret, 4, 4)
		assert.ErrorIs(t, err, ErrResizeFailure)
	})

	t.Run("resizer error is a resize failure", func(t *testing.T) {
		t.Parallel()
		secret, err := NewIntensityGrid(2, 2)
		require.NoError(t, err)

		_, err = NewLSBSteganography(nil, failingResizer{}).Binarize(secret, 4, 4)
		assert.ErrorIs(t, err, ErrResizeFailure)
	})

	t.Run("degenerate target is a resize failure", func(t *testing.T) {
		t.Parallel()
		secret, err := NewIntensityGrid(2, 2)
		require.NoError(t, err)

		_, err = NewLSBSteganography(nil, scaleResizer{}).Binarize(secret, 0, 4)
		assert.ErrorIs(t, err, ErrResizeFailure)
	})
}

func TestEmbed(t *testing.T) {
	t.Parallel()

	lsb := NewLSBSteganography(&models.StegoConfig{Workers: 2}, scaleResizer{})
	cover := randomCover(t, 8, 8, 5)

	secret, err := MaskFromRows([][]uint8{{1, 0}, {0, 1}})
	require.NoError(t, err)

	stego, err := lsb.Embed(cover, secret.Render(SecretInk, SecretPaper), Red)
	require.NoError(t, err)

	extraction, err := lsb.Extract(stego, Red)
	require.NoError(t, err)
	for y := range 8 {
		for x := range 8 {
			want := uint8(0)
			if (x < 4) == (y < 4) {
				want = 1
			}
			assert.Equal(t, want, extraction.Secret.At(x, y), "bit at (%d,%d)", x, y)
		}
	}
}

func TestCodecErrors(t *testing.T) {
	t.Parallel()

	lsb := NewLSBSteganography(nil, scaleResizer{})
	cover := uniformCover(t, 2, 2, 1, 2, 3)
	mask, err := NewBinaryMask(2, 2)
	require.NoError(t, err)
	gray, err := NewIntensityGrid(2, 2)
	require.NoError(t, err)

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{
			name: "zero area cover",
			run: func() error {
				_, err := lsb.EmbedMask(&PixelGrid{Channels: 3}, mask, Red)
				return err
			},
			want: ErrInvalidDimensions,
		},
		{
			name: "nil cover",
			run: func() error {
				_, err := lsb.Embed(nil, gray, Red)
				return err
			},
			want: ErrInvalidDimensions,
		},
		{
			name: "short buffer",
			run: func() error {
				_, err := lsb.Extract(&PixelGrid{Width: 2, Height: 2, Channels: 3, Pix: make([]uint8, 3)}, Red)
				return err
			},
			want: ErrInvalidDimensions,
		},
		{
			name: "intensity cover",
			run: func() error {
				_, err := lsb.EmbedMask(gray, mask, Red)
				return err
			},
			want: ErrChannelCountMismatch,
		},
		{
			name: "intensity stego",
			run: func() error {
				_, err := lsb.Extract(gray, Red)
				return err
			},
			want: ErrChannelCountMismatch,
		},
		{
			name: "two channel secret",
			run: func() error {
				_, err := lsb.Embed(cover, &PixelGrid{Width: 1, Height: 1, Channels: 2, Pix: []uint8{0, 0}}, Red)
				return err
			},
			want: ErrChannelCountMismatch,
		},
		{
			name: "mask size mismatch",
			run: func() error {
				small, err := NewBinaryMask(1, 2)
				require.NoError(t, err)
				_, err = lsb.EmbedMask(cover, small, Red)
				return err
			},
			want: ErrDimensionMismatch,
		},
		{
			name: "unknown channel",
			run: func() error {
				_, err := lsb.Extract(cover, Channel(3))
				return err
			},
			want: ErrInvalidChannel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}
}

func TestConfiguredChannel(t *testing.T) {
	t.Parallel()

	ch, err := NewLSBSteganography(nil, nil).Channel()
	require.NoError(t, err)
	assert.Equal(t, Red, ch)

	ch, err = NewLSBSteganography(&models.StegoConfig{Channel: "Blue"}, nil).Channel()
	require.NoError(t, err)
	assert.Equal(t, Blue, ch)

	_, err = NewLSBSteganography(&models.StegoConfig{Channel: "alpha"}, nil).Channel()
	assert.ErrorIs(t, err, ErrInvalidChannel)
}
