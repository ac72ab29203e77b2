// Package fingerprint defines the interface for music-fingerprint matchers.
package fingerprint

import (
	"context"

	"compliance-review-service/internal/models"
)

// Matcher identifies protected audio content within an audio file. A lookup
// that completes but finds nothing returns a zero-valued match with
// Detected=false and a nil error; errors mean the lookup itself failed.
type Matcher interface {
	Match(ctx context.Context, audioPath string) (models.FingerprintMatch, error)
}
