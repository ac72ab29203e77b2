// Package mock provides a canned transcriber for tests and offline runs.
package mock

import (
	"context"

	"compliance-review-service/internal/models"
	"compliance-review-service/internal/service/transcribe"
)

// DefaultSegments is a small meeting excerpt used when no fixture is set.
var DefaultSegments = models.Transcript{
	{Start: 0.0, End: 4.2, Text: "Good morning everyone, let's get started with the weekly sync."},
	{Start: 4.2, End: 9.8, Text: "First item is the quarterly report, nothing unusual there."},
	{Start: 9.8, End: 15.1, Text: "By the way, I accidentally sent the customer list to the wrong vendor."},
	{Start: 15.1, End: 20.5, Text: "We should probably keep that between us for now."},
	{Start: 20.5, End: 25.0, Text: "Moving on, the release is on track for next Friday."},
}

// Adapter implements transcribe.Transcriber with fixed output.
type Adapter struct {
	Segments models.Transcript
	Err      error
}

// New creates a mock transcriber returning DefaultSegments.
func New() *Adapter {
	return &Adapter{Segments: DefaultSegments}
}

// Transcribe returns the configured segments, or the configured error.
func (a *Adapter) Transcribe(ctx context.Context, mediaPath string) (transcribe.Transcription, error) {
	if a.Err != nil {
		return transcribe.Transcription{}, a.Err
	}
	return transcribe.Transcription{
		Segments: a.Segments,
		FullText: a.Segments.PlainText(),
	}, nil
}
