// Package transcribe defines the interface for transcription providers.
package transcribe

import (
	"context"

	"compliance-review-service/internal/models"
)

// Transcription is the full output of one transcription call.
type Transcription struct {
	Segments models.Transcript
	FullText string
}

// Transcriber converts a media file into a timestamped transcript.
// Implementations are blocking calls to remote services; they either return
// a structured result or an error, never a partial transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) (Transcription, error)
}
