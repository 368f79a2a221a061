package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Release builds stamp these with
// -ldflags "-X main.version=v1.2.0 -X main.commit=abc1234".
var (
	version = ""
	commit  = ""
)

const shortCommitLen = 7

// buildVersion prefers the stamped version, then the module version the go
// tool recorded for `go install`, then "(devel)".
func buildVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// buildCommit returns the short VCS revision, or "unknown" for builds made
// outside a checkout.
func buildCommit() string {
	if commit != "" {
		return commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range info.Settings {
		if s.Key != "vcs.revision" {
			continue
		}
		return s.Value[:min(len(s.Value), shortCommitLen)]
	}
	return "unknown"
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the stegano version and commit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "stegano %s\n", buildVersion())
			fmt.Fprintf(out, "commit %s\n", buildCommit())
		},
	}
}
