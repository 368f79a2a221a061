package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stegano",
		Short: "LSB image steganography and bit-plane viewer",
		Long: `stegano hides a black-and-white secret image in the least significant bit
of one colour channel (red by default) of a cover image.

Dark secret pixels (intensity below 128) are stored as 1 and come back as
black when the secret is extracted. The recovered cover is the stego image
with that bit cleared, so it differs from the original by at most 1.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")
	cmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")

	cmd.AddCommand(NewEmbedCmd())
	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewPlanesCmd())
	cmd.AddCommand(NewInspectCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
