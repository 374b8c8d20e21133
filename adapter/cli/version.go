package cli

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build metadata, overridden with -ldflags "-X".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var versionJSON bool

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// CurrentBuild returns the build metadata. Commit and date missing from the
// linker flags are taken from the VCS stamp of the module build.
func CurrentBuild() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "none":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.BuildDate == "unknown":
			info.BuildDate = s.Value
		}
	}
	return info
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := CurrentBuild()
		out := cmd.OutOrStdout()
		if versionJSON {
			return json.NewEncoder(out).Encode(info)
		}
		fmt.Fprintf(out, "slotwise %s (%s)\n", info.Version, info.GoVersion)
		fmt.Fprintf(out, "  commit: %s\n", info.Commit)
		fmt.Fprintf(out, "  built:  %s\n", info.BuildDate)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(versionCmd)
}
