package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Actual version and commit can be specified in build command:
// -ldflags "-X github.com/spigell/presta-matcher/cmd.version=... -X github.com/spigell/presta-matcher/cmd.commit=..."
var (
	version = "unknown"
	commit  = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s\n", app, fullVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func fullVersion() string {
	if commit == "" {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, commit)
}
