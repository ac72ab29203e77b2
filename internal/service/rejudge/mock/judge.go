// Package mock provides a canned re-judge for tests and offline runs.
package mock

import (
	"context"

	"compliance-review-service/internal/models"
)

// Judge implements rejudge.Judge with fixed output.
type Judge struct {
	Judgement models.ContextJudgement
	Err       error
}

// New creates a mock judge returning a neutral judgement.
func New() *Judge {
	return &Judge{
		Judgement: models.ContextJudgement{
			ContextualIntent: "factual report, no irony detected",
			RiskAssessment:   "context neither amplifies nor mitigates the risk",
			RiskModifier:     models.ModifierNone,
		},
	}
}

// Judge returns the configured judgement, or the configured error.
func (j *Judge) Judge(ctx context.Context, contextText string, incident models.IncidentDetails, background *models.BackgroundProfile) (models.ContextJudgement, error) {
	if j.Err != nil {
		return models.ContextJudgement{}, j.Err
	}
	return j.Judgement, nil
}
