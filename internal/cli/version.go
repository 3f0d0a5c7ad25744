package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/drblury/dbwait/internal/cli.Version=...".
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

// BuildInfo is the payload of the version command and the /version endpoint.
func BuildInfo() map[string]string {
	info := map[string]string{
		"name":      "dbwait",
		"version":   Version,
		"goVersion": runtime.Version(),
	}
	commit := Commit
	if commit == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range bi.Settings {
				if setting.Key == "vcs.revision" {
					commit = setting.Value
				}
			}
		}
	}
	if commit != "" {
		info["commit"] = commit
	}
	if BuildDate != "" {
		info["buildDate"] = BuildDate
	}
	return info
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := BuildInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "dbwait %s\n", info["version"])
			if commit := info["commit"]; commit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " - commit: %s\n", commit)
			}
			if date := info["buildDate"]; date != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " - built: %s\n", date)
			}
			fmt.Fprintf(cmd.OutOrStdout(), " - go: %s\n", info["goVersion"])
			return nil
		},
	}
}
