// Package report renders image analysis results as Markdown.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"image-steganography/models"
	"image-steganography/stego"
)

// ChannelStats holds the fraction of set bits in each plane of one channel.
type ChannelStats struct {
	Channel   stego.Channel
	OnesRatio [stego.PlaneCount]float64
}

// Analysis is everything the inspect command reports about an image.
type Analysis struct {
	Source   string
	Metadata *models.ImageMetadata
	Channels []ChannelStats
}

// Analyze decomposes every channel of grid and collects per-plane statistics.
func Analyze(source string, meta *models.ImageMetadata, grid *stego.PixelGrid, lsb *stego.LSBSteganography) (*Analysis, error) {
	sets, err := lsb.DecomposeAll(grid)
	if err != nil {
		return nil, fmt.Errorf("failed to decompose %s: %w", source, err)
	}

	a := &Analysis{Source: source, Metadata: meta}
	for _, set := range sets {
		stats := ChannelStats{Channel: set.Channel}
		for b, plane := range set.Planes {
			stats.OnesRatio[b] = plane.OnesRatio()
		}
		a.Channels = append(a.Channels, stats)
	}
	return a, nil
}

// MarkdownWriter outputs analyses in GitHub Flavored Markdown.
type MarkdownWriter struct {
	output io.Writer
}

func NewMarkdownWriter(w io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: w}
}

// Write outputs the full analysis.
func (w *MarkdownWriter) Write(a *Analysis) error {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, a)
	w.writePlanes(md, a)
	w.writeExif(md, a)

	return md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, a *Analysis) {
	md.H1("Image Analysis")
	md.PlainText("")

	rows := [][]string{{"Source", "`" + a.Source + "`"}}
	if meta := a.Metadata; meta != nil {
		rows = append(rows,
			[]string{"Format", meta.Format},
			[]string{"Dimensions", fmt.Sprintf("%d x %d", meta.Width, meta.Height)},
			[]string{"Color Model", meta.ColorModel},
			[]string{"File Size", strconv.Itoa(meta.TotalBytes) + " bytes"},
		)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writePlanes(md *markdown.Markdown, a *Analysis) {
	md.H2("Bit-Plane Statistics")
	md.PlainText("")
	md.PlainText("Fraction of pixels with the bit set, per channel and bit position.")
	md.PlainText("")

	header := []string{"Channel"}
	for b := range stego.PlaneCount {
		header = append(header, "Bit "+strconv.Itoa(b))
	}

	rows := make([][]string, 0, len(a.Channels))
	for _, stats := range a.Channels {
		row := []string{stats.Channel.String()}
		for _, ratio := range stats.OnesRatio {
			row = append(row, strconv.FormatFloat(ratio, 'f', 3, 64))
		}
		rows = append(rows, row)
	}

	md.Table(markdown.TableSet{Header: header, Rows: rows})
	md.PlainText("")
	md.Note("Bit 0 is the plane that carries an embedded secret.")
	md.PlainText("")
}

func (w *MarkdownWriter) writeExif(md *markdown.Markdown, a *Analysis) {
	md.H2("EXIF Metadata")
	md.PlainText("")

	if a.Metadata == nil || len(a.Metadata.ExifTags) == 0 {
		md.PlainText("No EXIF metadata found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(a.Metadata.ExifTags))
	for _, tag := range a.Metadata.ExifTags {
		rows = append(rows, []string{tag.IFD, tag.Name, tag.Value})
	}
	md.Table(markdown.TableSet{
		Header: []string{"IFD", "Tag", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}
