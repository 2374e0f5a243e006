package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X".
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show cindex version and build information",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("cindex %s\n", version)
		fmt.Printf("  commit:  %s\n", emptyAsNA(commit))
		fmt.Printf("  built:   %s\n", emptyAsNA(buildDate))
		fmt.Printf("  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func emptyAsNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
