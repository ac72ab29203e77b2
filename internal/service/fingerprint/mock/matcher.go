// Package mock provides a canned fingerprint matcher for tests and offline
// runs.
package mock

import (
	"context"

	"compliance-review-service/internal/models"
)

// Matcher implements fingerprint.Matcher with fixed output. The zero value
// reports no match.
type Matcher struct {
	Result models.FingerprintMatch
	Err    error
}

// New creates a mock matcher that reports no match.
func New() *Matcher {
	return &Matcher{}
}

// Match returns the configured match, or the configured error.
func (m *Matcher) Match(ctx context.Context, audioPath string) (models.FingerprintMatch, error) {
	if m.Err != nil {
		return models.FingerprintMatch{}, m.Err
	}
	return m.Result, nil
}
