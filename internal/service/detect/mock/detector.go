// Package mock provides a deterministic keyword-driven detector for tests
// and offline runs.
package mock

import (
	"context"
	"strings"

	"compliance-review-service/internal/models"
	"compliance-review-service/internal/service/detect"
)

// sensitiveTerms maps trigger phrases to the risk tier each one carries.
var sensitiveTerms = []struct {
	term     string
	severity models.Severity
	category string
}{
	{"customer data leak", models.SeverityHigh, "information-security"},
	{"customer list", models.SeverityHigh, "information-security"},
	{"personal data leak", models.SeverityHigh, "information-security"},
	{"keep that between us", models.SeverityMedium, "information-security"},
	{"inappropriate remark", models.SeverityMedium, "harassment"},
	{"kickback", models.SeverityHigh, "bribery"},
	{"off the books", models.SeverityMedium, "financial-reporting"},
}

// Detector implements detect.Detector. When the fixture fields are set they
// are returned verbatim; otherwise results come from a keyword scan.
type Detector struct {
	Video     *detect.VideoDetection
	ImageText *detect.ImageTextAnalysis
	Err       error
}

// New creates a mock detector with keyword-scan behaviour.
func New() *Detector {
	return &Detector{}
}

// DetectVideo scans the transcript text for sensitive terms.
func (d *Detector) DetectVideo(ctx context.Context, videoPath string, transcript models.Transcript) (detect.VideoDetection, error) {
	if d.Err != nil {
		return detect.VideoDetection{}, d.Err
	}
	if d.Video != nil {
		return *d.Video, nil
	}
	return scan(transcript), nil
}

// DetectText scans plain text for sensitive terms.
func (d *Detector) DetectText(ctx context.Context, text string, background *models.BackgroundProfile) (detect.VideoDetection, error) {
	if d.Err != nil {
		return detect.VideoDetection{}, d.Err
	}
	if d.Video != nil {
		return *d.Video, nil
	}
	return scan(models.NewSentinelTranscript(text)), nil
}

// DetectImageText returns a fixture or a low-risk default.
func (d *Detector) DetectImageText(ctx context.Context, imagePath, text string, background *models.BackgroundProfile) (detect.ImageTextAnalysis, error) {
	if d.Err != nil {
		return detect.ImageTextAnalysis{}, d.Err
	}
	if d.ImageText != nil {
		return *d.ImageText, nil
	}
	det := scan(models.NewSentinelTranscript(text))
	out := detect.ImageTextAnalysis{
		Summary:   det.Summary,
		RiskLevel: det.Risk,
	}
	for _, v := range det.Violations {
		out.Violations = append(out.Violations, detect.ImageTextViolation{
			Kind:         v.Kind,
			Description:  v.Description,
			Severity:     v.Severity,
			DetectedText: v.RelatedText,
		})
	}
	if len(out.Violations) == 0 {
		out.Summary = "no issues found"
		out.RiskLevel = models.SeverityLow
		out.Recommendations = []string{"content looks safe to publish"}
	} else {
		out.Recommendations = []string{"review the flagged passages before publishing"}
	}
	return out, nil
}

func scan(transcript models.Transcript) detect.VideoDetection {
	out := detect.VideoDetection{Risk: models.SeverityLow, Summary: "no issues found"}
	for _, seg := range transcript {
		lower := strings.ToLower(seg.Text)
		for _, t := range sensitiveTerms {
			if !strings.Contains(lower, t.term) {
				continue
			}
			out.Violations = append(out.Violations, models.Violation{
				Kind:        models.ViolationSpeech,
				Description: "sensitive phrase detected: " + t.term,
				Start:       seg.Start,
				End:         seg.End,
				Severity:    t.severity,
				RelatedText: t.term,
			})
			out.Keywords = append(out.Keywords, t.term)
			if t.severity > out.Risk {
				out.Risk = t.severity
				out.Category = t.category
				out.Summary = "sensitive phrase detected: " + t.term
				out.Snippet = t.term
			}
		}
	}
	return out
}
