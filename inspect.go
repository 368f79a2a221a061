package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"image-steganography/imaging"
	"image-steganography/report"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Write a Markdown report of an image's metadata and bit-plane statistics",
		Example: `  stegano inspect --input stego.png
  stegano inspect --input photo.jpg --output report.md`,
		Args: cobra.NoArgs,
		RunE: runInspect,
	}

	cmd.Flags().StringP("input", "i", "", "Image to inspect")
	cmd.Flags().StringP("output", "o", "", "Report file (default: stdout)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runInspect(cmd *cobra.Command, _ []string) (err error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")

	data, err := os.ReadFile(inputPath) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}

	decoder := imaging.NewImageDecoder()
	meta, err := decoder.ReadMetadata(data)
	if err != nil {
		return fmt.Errorf("failed to read metadata of %s: %w", inputPath, err)
	}
	grid, _, err := decoder.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", inputPath, err)
	}

	lsb, _, err := newCodec(cfg)
	if err != nil {
		return err
	}
	analysis, err := report.Analyze(filepath.Base(inputPath), meta, grid, lsb)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		f, ferr := os.Create(outputPath) //nolint:gosec // User-provided output path is intentional
		if ferr != nil {
			return fmt.Errorf("failed to create %s: %w", outputPath, ferr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close %s: %w", outputPath, cerr)
			}
		}()
		out = f
	}

	if err := report.NewMarkdownWriter(out).Write(analysis); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	logger.Debug("report written", "input", inputPath, "exif_tags", len(meta.ExifTags))
	return nil
}
