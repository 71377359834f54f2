package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/spigell/match-advisor/internal/ai/gemini"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the default AI model",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s (%s, default model %s)\n", app, version, runtime.Version(), gemini.DefaultModel)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
