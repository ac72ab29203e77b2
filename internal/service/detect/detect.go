// Package detect defines the interface for content-violation detectors.
package detect

import (
	"context"

	"compliance-review-service/internal/models"
)

// VideoDetection is the detector's structured output for one media or text
// source: the individual violations plus the source-level deep analysis the
// locator and synthesizer consume.
type VideoDetection struct {
	Violations []models.Violation `json:"violations"`
	Summary    string             `json:"summary"`
	Category   string             `json:"category"`
	Keywords   []string           `json:"keywords"`
	Risk       models.Severity    `json:"risk"`
	Snippet    string             `json:"snippet"`
}

// ImageTextViolation is one violation from the combined image/text call.
// Severity and context analysis are baked in; this path has no separate
// locator or re-judge stage.
type ImageTextViolation struct {
	Kind            models.ViolationKind `json:"kind"`
	Description     string               `json:"description"`
	Severity        models.Severity      `json:"severity"`
	Location        string               `json:"location,omitempty"`
	DetectedText    string               `json:"detected_text,omitempty"`
	ImageContent    string               `json:"image_content,omitempty"`
	ContextAnalysis string               `json:"context_analysis,omitempty"`
}

// ImageTextAnalysis is the full result of the combined image/text call.
type ImageTextAnalysis struct {
	Violations      []ImageTextViolation `json:"violations"`
	Summary         string               `json:"summary"`
	RiskLevel       models.Severity      `json:"risk_level"`
	Recommendations []string             `json:"recommendations"`
}

// Detector is the content-violation detection provider. All calls are
// blocking remote calls returning either a structured result or an error.
type Detector interface {
	// DetectVideo analyses a video together with its transcript.
	DetectVideo(ctx context.Context, videoPath string, transcript models.Transcript) (VideoDetection, error)

	// DetectText runs the same deep analysis on plain text.
	DetectText(ctx context.Context, text string, background *models.BackgroundProfile) (VideoDetection, error)

	// DetectImageText runs the combined multimodal analysis. At least one of
	// imagePath and text must be non-empty.
	DetectImageText(ctx context.Context, imagePath, text string, background *models.BackgroundProfile) (ImageTextAnalysis, error)
}
