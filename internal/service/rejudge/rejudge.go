// Package rejudge defines the interface for contextual re-judgment
// providers.
package rejudge

import (
	"context"

	"compliance-review-service/internal/models"
)

// Judge evaluates the intent and nuance of a flagged statement from its
// surrounding context and optional speaker background, returning a risk
// modifier the synthesizer applies on top of the primary assessment.
type Judge interface {
	Judge(ctx context.Context, contextText string, incident models.IncidentDetails, background *models.BackgroundProfile) (models.ContextJudgement, error)
}
