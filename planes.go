package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"image-steganography/config"
	"image-steganography/imaging"
	"image-steganography/stego"
)

const (
	planesCmdName = "planes"

	// allChannels selects every colour channel for the planes command.
	allChannels = "all"
)

// NewPlanesCmd creates the planes command.
func NewPlanesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   planesCmdName,
		Short: "Split an image into its 8 bit-planes per channel",
		Long: `Split an image into bit-planes. Each plane is written as a black and white
image named <channel>_bit<N>.<ext>, where bit 0 is the least significant bit.
A set bit is rendered white.`,
		Example: `  stegano planes --input stego.png --output-dir bit_layers
  stegano planes --input stego.png --output-dir bit_layers --channel all`,
		Args: cobra.NoArgs,
		RunE: runPlanes,
	}

	cmd.Flags().StringP("input", "i", "", "Image to decompose")
	cmd.Flags().String("output-dir", "bit_layers", "Directory for the plane images")
	cmd.Flags().String("format", "", "Output format: png, bmp or tiff")
	addCodecFlags(cmd)
	cmd.Flags().Lookup("channel").Usage = "Channel to decompose: red, green, blue or all"

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runPlanes(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	inputPath, _ := cmd.Flags().GetString("input")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	format, err := imaging.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return err
	}

	lsb, channel, err := newCodec(cfg)
	if err != nil {
		return err
	}
	img, err := readGrid(inputPath)
	if err != nil {
		return err
	}

	var sets []*stego.BitPlaneSet
	if name, _ := cmd.Flags().GetString("channel"); strings.EqualFold(name, allChannels) {
		sets, err = lsb.DecomposeAll(img)
	} else {
		var set *stego.BitPlaneSet
		set, err = lsb.Decompose(img, channel)
		sets = []*stego.BitPlaneSet{set}
	}
	if err != nil {
		return fmt.Errorf("failed to decompose %s: %w", inputPath, err)
	}

	paths, err := writePlanes(cmd, cfg, sets, outputDir, format)
	if err != nil {
		return err
	}

	logger.Info("bit-planes written", "input", inputPath, "dir", outputDir, "files", len(paths))
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

// writePlanes renders and writes every plane of sets concurrently and
// returns the written paths in channel then bit order.
func writePlanes(cmd *cobra.Command, cfg *config.Config, sets []*stego.BitPlaneSet, dir, format string) ([]string, error) {
	paths := make([]string, 0, len(sets)*stego.PlaneCount)
	for _, set := range sets {
		for b := range stego.PlaneCount {
			paths = append(paths, filepath.Join(dir, planeFileName(set.Channel, b, format)))
		}
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(cfg.Workers, 1))
	for i, set := range sets {
		for b := range stego.PlaneCount {
			path := paths[i*stego.PlaneCount+b]
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				grid, err := set.Render(b)
				if err != nil {
					return err
				}
				return writeGrid(path, grid, format)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func planeFileName(channel stego.Channel, bit int, format string) string {
	ext := format
	if format == imaging.FormatTIFF {
		ext = "tif"
	}
	return fmt.Sprintf("%s_bit%d.%s", channel, bit, ext)
}
