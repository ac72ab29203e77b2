package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"compliance-review-service/internal/app"
	"compliance-review-service/internal/models"
	"compliance-review-service/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	analyzeText       string
	analyzeImage      string
	analyzeBackground string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one analysis from the command line and print the result as JSON",
}

var analyzeVideoCmd = &cobra.Command{
	Use:   "video <path>",
	Short: "Analyze a video file, optionally combined with text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(orch *pipeline.Orchestrator) (any, error) {
			bg, err := backgroundFlag()
			if err != nil {
				return nil, err
			}
			if analyzeText != "" {
				return orch.AnalyzeCombined(cmd.Context(), args[0], analyzeText, bg)
			}
			return orch.AnalyzeVideo(cmd.Context(), args[0], bg)
		})
	},
}

var analyzeImageTextCmd = &cobra.Command{
	Use:   "image-text",
	Short: "Analyze an image together with text",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withOrchestrator(func(orch *pipeline.Orchestrator) (any, error) {
			bg, err := backgroundFlag()
			if err != nil {
				return nil, err
			}
			return orch.AnalyzeImageText(cmd.Context(), analyzeImage, analyzeText, bg)
		})
	},
}

var analyzeTextCmd = &cobra.Command{
	Use:   "text <text>",
	Short: "Analyze plain text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(func(orch *pipeline.Orchestrator) (any, error) {
			bg, err := backgroundFlag()
			if err != nil {
				return nil, err
			}
			return orch.AnalyzeTextOnly(cmd.Context(), args[0], bg)
		})
	},
}

func init() {
	analyzeVideoCmd.Flags().StringVar(&analyzeText, "text", "", "text to analyze alongside the video")
	analyzeImageTextCmd.Flags().StringVar(&analyzeImage, "image", "", "image file to analyze")
	analyzeImageTextCmd.Flags().StringVar(&analyzeText, "text", "", "text to analyze")
	for _, c := range []*cobra.Command{analyzeVideoCmd, analyzeImageTextCmd, analyzeTextCmd} {
		c.Flags().StringVar(&analyzeBackground, "background", "", "speaker background profile as JSON")
		analyzeCmd.AddCommand(c)
	}
}

// withOrchestrator builds the configured pipeline without the Kafka
// publisher, runs one analysis and prints the result.
func withOrchestrator(run func(*pipeline.Orchestrator) (any, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	application := app.New(cfg)
	defer application.Shutdown()

	providers, err := application.BuildProviders(context.Background())
	if err != nil {
		return err
	}

	orch := pipeline.New(providers, nil, cfg.Service.TempDir)

	result, err := run(orch)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func backgroundFlag() (*models.BackgroundProfile, error) {
	if analyzeBackground == "" {
		return nil, nil
	}
	var bg models.BackgroundProfile
	if err := json.Unmarshal([]byte(analyzeBackground), &bg); err != nil {
		return nil, fmt.Errorf("invalid --background: %w", err)
	}
	return &bg, nil
}
