package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-steganography/imaging"
	"image-steganography/stego"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// runCLI executes the root command with args and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCLIWithLogs(t, args...)
	return out, err
}

// runCLIWithLogs is runCLI that also returns what was logged to stderr.
func runCLIWithLogs(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), logs.String(), err
}

func writePNG(t *testing.T, path string, grid *stego.PixelGrid) {
	t.Helper()
	data, err := imaging.EncodeToBytes(grid, imaging.FormatPNG)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func loadGrid(t *testing.T, path string) *stego.PixelGrid {
	t.Helper()
	grid, err := readGrid(path)
	require.NoError(t, err)
	return grid
}

func testCover(t *testing.T, width, height int) *stego.PixelGrid {
	t.Helper()
	grid, err := stego.NewPixelGrid(width, height)
	require.NoError(t, err)
	for i := range grid.Pix {
		grid.Pix[i] = uint8(i*37 + 11)
	}
	return grid
}

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	assert.Equal(t, "stegano", cmd.Use)
	assert.True(t, cmd.SilenceUsage)

	for _, name := range []string{"embed", "extract", "planes", "inspect", "serve", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"verbose", "json-logs", "config"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
	assert.Equal(t, "v", cmd.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "stegano "+buildVersion())
	assert.Contains(t, out, "commit "+buildCommit())
}

func TestBuildCommit(t *testing.T) {
	t.Parallel()

	c := buildCommit()
	assert.NotEmpty(t, c)
	assert.LessOrEqual(t, len(c), shortCommitLen)
}

func TestEmbedExtractRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cover := testCover(t, 8, 6)
	mask, err := stego.MaskFromRows([][]uint8{
		{1, 0, 0, 1},
		{0, 1, 1, 0},
		{1, 1, 0, 0},
	})
	require.NoError(t, err)

	coverPath := filepath.Join(dir, "cover.png")
	secretPath := filepath.Join(dir, "secret.png")
	stegoPath := filepath.Join(dir, "out", "stego.bmp")
	writePNG(t, coverPath, cover)
	writePNG(t, secretPath, mask.Render(stego.SecretInk, stego.SecretPaper))

	out, err := runCLI(t, "embed",
		"--cover", coverPath, "--secret", secretPath, "--output", stegoPath, "--channel", "blue")
	require.NoError(t, err)
	assert.Contains(t, out, "PSNR")

	stegoGrid := loadGrid(t, stegoPath)
	require.Equal(t, cover.Width, stegoGrid.Width)
	require.Equal(t, cover.Height, stegoGrid.Height)

	secretOut := filepath.Join(dir, "extracted.png")
	coverOut := filepath.Join(dir, "recovered.tif")
	_, err = runCLI(t, "extract",
		"--input", stegoPath, "--secret-out", secretOut, "--cover-out", coverOut, "--channel", "b")
	require.NoError(t, err)

	secret := loadGrid(t, secretOut)
	recovered := loadGrid(t, coverOut)
	for y := range cover.Height {
		for x := range cover.Width {
			want := uint8(stego.SecretPaper)
			if mask.At(x/2, y/2) == 1 {
				want = stego.SecretInk
			}
			assert.Equal(t, want, secret.At(x, y, 0), "secret at (%d,%d)", x, y)

			assert.Equal(t, cover.At(x, y, 0), recovered.At(x, y, 0))
			assert.Equal(t, cover.At(x, y, 1), recovered.At(x, y, 1))
			assert.Equal(t, cover.At(x, y, 2)&0xFE, recovered.At(x, y, 2))
		}
	}
}

func TestEmbedErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	coverPath := filepath.Join(dir, "cover.png")
	writePNG(t, coverPath, testCover(t, 2, 2))

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "lossy output",
			args:    []string{"--output", filepath.Join(dir, "out.jpg")},
			wantErr: imaging.ErrLossyFormat,
		},
		{
			name:    "invalid channel",
			args:    []string{"--output", filepath.Join(dir, "out.png"), "--channel", "alpha"},
			wantErr: stego.ErrInvalidChannel,
		},
		{
			name:    "unknown resample",
			args:    []string{"--output", filepath.Join(dir, "out.png"), "--resample", "lanczos"},
			wantErr: imaging.ErrUnknownResample,
		},
		{
			name:    "all is only a planes channel",
			args:    []string{"--output", filepath.Join(dir, "out.png"), "--channel", "all"},
			wantErr: stego.ErrInvalidChannel,
		},
		{
			name:    "missing output flag",
			args:    nil,
			wantMsg: "output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := append([]string{"embed", "--cover", coverPath, "--secret", coverPath}, tt.args...)
			_, err := runCLI(t, args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestExtractRequiresOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "stego.png")
	writePNG(t, input, testCover(t, 2, 2))

	_, err := runCLI(t, "extract", "--input", input)
	require.Error(t, err)
}

func TestExtractRejectsAllChannels(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "stego.png")
	writePNG(t, input, testCover(t, 2, 2))

	_, err := runCLI(t, "extract", "--input", input,
		"--secret-out", filepath.Join(dir, "secret.png"), "--channel", "ALL")
	require.ErrorIs(t, err, stego.ErrInvalidChannel)
	assert.NoFileExists(t, filepath.Join(dir, "secret.png"))
}

func TestEmbedPlanesDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cover := testCover(t, 4, 4)
	mask, err := stego.MaskFromRows([][]uint8{
		{1, 1, 0, 0},
		{0, 1, 0, 1},
		{0, 0, 1, 1},
		{1, 0, 1, 0},
	})
	require.NoError(t, err)

	coverPath := filepath.Join(dir, "cover.png")
	secretPath := filepath.Join(dir, "secret.png")
	planesDir := filepath.Join(dir, "planes")
	writePNG(t, coverPath, cover)
	writePNG(t, secretPath, mask.Render(stego.SecretInk, stego.SecretPaper))

	out, err := runCLI(t, "embed", "--cover", coverPath, "--secret", secretPath,
		"--output", filepath.Join(dir, "stego.png"), "--channel", "green", "--planes-dir", planesDir)
	require.NoError(t, err)
	assert.Contains(t, out, "green channel PSNR")

	entries, err := os.ReadDir(planesDir)
	require.NoError(t, err)
	assert.Len(t, entries, stego.PlaneCount)

	// the LSB plane of the payload channel is the secret itself
	lsbPlane := loadGrid(t, filepath.Join(planesDir, "green_bit0.png"))
	for y := range mask.Height {
		for x := range mask.Width {
			want := uint8(stego.PlaneOff)
			if mask.At(x, y) == 1 {
				want = stego.PlaneOn
			}
			assert.Equal(t, want, lsbPlane.At(x, y, 0), "bit 0 at (%d,%d)", x, y)
		}
	}
}

func TestEmbedQualityWarning(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	coverPath := filepath.Join(dir, "cover.png")
	secretPath := filepath.Join(dir, "secret.png")
	writePNG(t, coverPath, testCover(t, 4, 4))
	ink, err := stego.MaskFromRows([][]uint8{{1, 1}, {1, 1}})
	require.NoError(t, err)
	writePNG(t, secretPath, ink.Render(stego.SecretInk, stego.SecretPaper))

	args := []string{"embed", "--cover", coverPath, "--secret", secretPath}

	_, logs, err := runCLIWithLogs(t, append(args, "--output", filepath.Join(dir, "a.png"))...)
	require.NoError(t, err)
	assert.NotContains(t, logs, "quality below threshold")

	_, logs, err = runCLIWithLogs(t, append(args, "--output", filepath.Join(dir, "b.png"), "--min-psnr", "1000")...)
	require.NoError(t, err)
	assert.Contains(t, logs, "quality below threshold")
}

func TestPlanesCmd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "img.png")
	cover := testCover(t, 3, 2)
	writePNG(t, input, cover)

	t.Run("single channel", func(t *testing.T) {
		t.Parallel()
		outDir := filepath.Join(dir, "green")
		out, err := runCLI(t, "planes", "--input", input, "--output-dir", outDir, "--channel", "green")
		require.NoError(t, err)
		assert.Len(t, strings.Fields(out), stego.PlaneCount)

		for b := range stego.PlaneCount {
			plane := loadGrid(t, filepath.Join(outDir, planeFileName(stego.Green, b, imaging.FormatPNG)))
			for y := range cover.Height {
				for x := range cover.Width {
					want := uint8(stego.PlaneOff)
					if (cover.At(x, y, 1)>>b)&1 == 1 {
						want = stego.PlaneOn
					}
					assert.Equal(t, want, plane.At(x, y, 0), "bit %d at (%d,%d)", b, x, y)
				}
			}
		}
	})

	t.Run("all channels", func(t *testing.T) {
		t.Parallel()
		outDir := filepath.Join(dir, "all")
		_, err := runCLI(t, "planes", "--input", input, "--output-dir", outDir, "--channel", "all")
		require.NoError(t, err)

		entries, err := os.ReadDir(outDir)
		require.NoError(t, err)
		assert.Len(t, entries, len(stego.AllChannels())*stego.PlaneCount)
		assert.FileExists(t, filepath.Join(outDir, "red_bit0.png"))
		assert.FileExists(t, filepath.Join(outDir, "blue_bit7.png"))
	})
}

func TestPlaneFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "red_bit0.png", planeFileName(stego.Red, 0, imaging.FormatPNG))
	assert.Equal(t, "blue_bit7.tif", planeFileName(stego.Blue, 7, imaging.FormatTIFF))
	assert.Equal(t, "green_bit3.bmp", planeFileName(stego.Green, 3, imaging.FormatBMP))
}

func TestInspectCmd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "img.png")
	writePNG(t, input, testCover(t, 4, 4))

	out, err := runCLI(t, "inspect", "--input", input)
	require.NoError(t, err)
	assert.Contains(t, out, "img.png")
	assert.Contains(t, out, "png")

	reportPath := filepath.Join(dir, "report.md")
	_, err = runCLI(t, "inspect", "--input", input, "--output", reportPath)
	require.NoError(t, err)
	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("channel: green\nresample: bilinear\n"), 0o600))

	cmd := NewEmbedCmd()
	cmd.Flags().String("config", path, "")
	cmd.Flags().Bool("verbose", false, "")
	cmd.Flags().Bool("json-logs", false, "")
	cmd.SetErr(io.Discard)
	require.NoError(t, cmd.Flags().Set("resample", "catmullrom"))

	cfg, logger, err := loadConfig(cmd)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Equal(t, "green", cfg.Channel)
	assert.Equal(t, "catmullrom", cfg.Resample)
	assert.Equal(t, path, cfg.ConfigFilePath)
}
