// compliance-review-service analyses video, image and text content for
// compliance risks and synthesizes leveled alerts.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "compliance-review-service",
	Short: "Multi-stage compliance risk analysis for video, image and text",
	Long: "compliance-review-service runs content through transcription, violation\n" +
		"detection, contextual re-judgment and music fingerprinting, and produces\n" +
		"severity-leveled alerts.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
