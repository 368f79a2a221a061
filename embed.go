package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"image-steganography/imaging"
	"image-steganography/stego"
)

// NewEmbedCmd creates the embed command.
func NewEmbedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Hide a secret image in the LSB of a cover image",
		Example: `  stegano embed --cover photo.png --secret logo.png --output stego.png
  stegano embed --cover photo.png --secret logo.png --output stego.bmp --channel blue
  stegano embed --cover photo.png --secret logo.png --output stego.png --planes-dir bit_layers`,
		Args: cobra.NoArgs,
		RunE: runEmbed,
	}

	cmd.Flags().String("cover", "", "Cover image (any supported format)")
	cmd.Flags().String("secret", "", "Secret image; binarised and resampled to the cover size")
	cmd.Flags().StringP("output", "o", "", "Path of the stego image")
	cmd.Flags().String("format", "", "Output format: png, bmp or tiff (default: from --output extension)")
	cmd.Flags().Float64("min-psnr", 0, "Warn when the stego PSNR falls below this many dB (default 40)")
	cmd.Flags().String("planes-dir", "", "Also write the 8 bit-planes of the payload channel of the stego image here")
	addCodecFlags(cmd)

	_ = cmd.MarkFlagRequired("cover")
	_ = cmd.MarkFlagRequired("secret")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runEmbed(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	coverPath, _ := cmd.Flags().GetString("cover")
	secretPath, _ := cmd.Flags().GetString("secret")
	outputPath, _ := cmd.Flags().GetString("output")

	format, err := formatFor(cmd, cfg, outputPath)
	if err != nil {
		return err
	}
	lsb, channel, err := newCodec(cfg)
	if err != nil {
		return err
	}

	cover, err := readGrid(coverPath)
	if err != nil {
		return err
	}
	secret, err := readGrid(secretPath)
	if err != nil {
		return err
	}
	logger.Debug("images decoded",
		"cover", coverPath, "cover_size", fmt.Sprintf("%dx%d", cover.Width, cover.Height),
		"secret", secretPath, "secret_size", fmt.Sprintf("%dx%d", secret.Width, secret.Height))

	stegoGrid, err := lsb.Embed(cover, secret, channel)
	if err != nil {
		return fmt.Errorf("failed to embed secret: %w", err)
	}
	if err := writeGrid(outputPath, stegoGrid, format); err != nil {
		return err
	}

	psnr := imaging.CalculatePSNR(cover, stegoGrid)
	channelPSNR := imaging.CalculateChannelPSNR(cover, stegoGrid, channel)
	logger.Info("secret embedded",
		"output", outputPath, "channel", channel.String(), "format", format, "resample", cfg.Resample)
	if !imaging.ValidatePSNR(psnr, cfg.MinPSNR) {
		logger.Warn("stego image quality below threshold", "psnr", psnr, "min_psnr", cfg.MinPSNR)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (channel %s, PSNR %s dB, %s channel PSNR %s dB)\n",
		outputPath, channel, imaging.FormatPSNR(psnr), channel, imaging.FormatPSNR(channelPSNR))

	planesDir, _ := cmd.Flags().GetString("planes-dir")
	if planesDir == "" {
		return nil
	}
	set, err := lsb.Decompose(stegoGrid, channel)
	if err != nil {
		return fmt.Errorf("failed to decompose stego image: %w", err)
	}
	paths, err := writePlanes(cmd, cfg, []*stego.BitPlaneSet{set}, planesDir, format)
	if err != nil {
		return err
	}
	logger.Info("bit-planes written", "dir", planesDir, "files", len(paths))
	return nil
}
