package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Overridden at link time with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version of carve and the toolchain it was built with",
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	info, _ := debug.ReadBuildInfo()
	v, c := resolveVersion(version, commit, info)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "carve %s\n", v)
	fmt.Fprintf(out, "Commit: %s\n", c)
	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}

// resolveVersion fills in whatever the linker left unset from the module
// build info.
func resolveVersion(version, commit string, info *debug.BuildInfo) (string, string) {
	if version != "dev" {
		version = "v" + version
	}
	if info == nil {
		return version, commit
	}

	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	if commit == "unknown" {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				commit = s.Value
				if len(commit) > 12 {
					commit = commit[:12]
				}
			}
		}
	}
	return version, commit
}
