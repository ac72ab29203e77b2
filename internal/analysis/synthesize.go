package analysis

import (
	"fmt"
	"strings"

	"compliance-review-service/internal/models"
)

// Source identifies which input an alert was synthesized from.
type Source string

const (
	SourceVideo Source = "video"
	SourceText  Source = "text_input"
)

// Reason and placeholder strings emitted by the synthesizer.
const (
	NoConcernsReason = "no notable concerns identified"
	NonSpeechText    = "non-speech content (music segment, no transcript)"
)

// SynthesisInput is everything the synthesizer folds into one alert for a
// single source.
type SynthesisInput struct {
	Signal      ViolationSignal
	Incident    models.IncidentDetails
	Judgement   models.ContextJudgement
	Transcript  models.Transcript
	Fingerprint *models.FingerprintMatch
	Source      Source
}

// alertState is the fold state threaded through the rule chain. Rules return
// a new state; nothing outside the fold mutates it.
type alertState struct {
	level        models.Level
	reasons      []string
	timestamp    string
	originalText string
}

type rule func(in SynthesisInput, st alertState) alertState

// ruleChain is the fixed evaluation order. Later rules see the output of
// earlier ones; the order itself is part of the contract.
var ruleChain = []rule{
	fingerprintRule,
	primaryRiskRule,
	contextModifierRule,
	categoryOverrideRule,
}

// Synthesize folds one source's detector output, context judgement, and
// optional fingerprint match into a single leveled alert. The severity state
// starts at anticipated and every rule may move it up or down.
func Synthesize(in SynthesisInput) models.AlertRecord {
	st := alertState{
		level:        models.LevelAnticipated,
		timestamp:    initialTimestamp(in),
		originalText: resolveOriginalText(in),
	}
	for _, r := range ruleChain {
		st = r(in, st)
	}
	if len(st.reasons) == 0 {
		st.reasons = []string{NoConcernsReason}
	}
	return models.AlertRecord{
		Level:        st.level,
		Reasons:      st.reasons,
		Timestamp:    st.timestamp,
		OriginalText: st.originalText,
	}
}

func initialTimestamp(in SynthesisInput) string {
	label := in.Incident.TimestampLabel
	if in.Source == SourceText || label == "" || label == NoMatchLabel {
		return models.TimestampUnknown
	}
	return label
}

// resolveOriginalText picks the alert's original-text field. Text input uses
// the locator's context window verbatim; video resolves the transcript
// segment overlapping the located interval (half-open overlap test).
func resolveOriginalText(in SynthesisInput) string {
	if in.Source == SourceText {
		if in.Incident.ContextWindow != "" {
			return in.Incident.ContextWindow
		}
		return models.NoMatchingText
	}
	start, end, ok := parseRangeLabel(in.Incident.TimestampLabel)
	if !ok {
		return models.NoMatchingText
	}
	for _, s := range in.Transcript {
		if max64(s.Start, start) < min64(s.End, end) {
			return s.Text
		}
	}
	return models.NoMatchingText
}

// fingerprintRule fires first and independently of all text-based reasoning:
// a positively identified copyrighted match forces the level to severe and
// takes over the alert's timestamp and original-text fields.
func fingerprintRule(in SynthesisInput, st alertState) alertState {
	if in.Source != SourceVideo || in.Fingerprint == nil {
		return st
	}
	fp := in.Fingerprint
	if !fp.Detected || !fp.Copyrighted {
		return st
	}
	st.level = models.LevelSevere
	st.reasons = append(st.reasons, fmt.Sprintf(
		"copyrighted music detected: %q by %q", orUnknown(fp.Title), orUnknown(fp.Artist)))
	if fp.HasRange {
		st.timestamp = models.TimestampLabel(fp.Start, fp.End)
	}
	st.originalText = NonSpeechText
	return st
}

// primaryRiskRule applies the detector's own rating. High escalates straight
// to severe; medium lifts anticipated to medium but never touches severe.
func primaryRiskRule(in SynthesisInput, st alertState) alertState {
	switch in.Signal.Risk {
	case models.SeverityHigh:
		st.level = models.LevelSevere
		st.reasons = append(st.reasons, fmt.Sprintf(
			"primary assessment found a serious compliance risk: %s", orUnknown(in.Signal.Summary)))
	case models.SeverityMedium:
		if st.level == models.LevelAnticipated {
			st.level = models.LevelMedium
		}
		if st.level != models.LevelSevere {
			st.reasons = append(st.reasons, fmt.Sprintf(
				"primary assessment found a moderate compliance risk: %s", orUnknown(in.Signal.Summary)))
		}
	}
	return st
}

// contextModifierRule adjusts the level one step per call based on the
// re-judge's modifier. With no modifier, intent that signals serious or
// deliberate communication still escalates anticipated to medium, and a
// severe-sounding assessment lifts medium to severe.
func contextModifierRule(in SynthesisInput, st alertState) alertState {
	j := in.Judgement
	switch j.RiskModifier {
	case models.ModifierAmplify:
		switch st.level {
		case models.LevelAnticipated:
			st.level = models.LevelMedium
			st.reasons = append(st.reasons, fmt.Sprintf(
				"context review judged the statement to amplify the risk; intent: %s", j.ContextualIntent))
		case models.LevelMedium:
			st.level = models.LevelSevere
			st.reasons = append(st.reasons, fmt.Sprintf(
				"context review judged the statement to further amplify the risk; intent: %s", j.ContextualIntent))
		}
		if factor := meaningfulFactor(j.AdditionalRiskFactor); factor != "" {
			st.reasons = append(st.reasons, "additional risk factor: "+factor)
		}
	case models.ModifierMitigate:
		switch st.level {
		case models.LevelSevere:
			st.level = models.LevelMedium
			st.reasons = append(st.reasons, fmt.Sprintf(
				"context review suggests irony or misunderstanding; level adjusted down, manual review advised; intent: %s", j.ContextualIntent))
		case models.LevelMedium:
			st.level = models.LevelAnticipated
			st.reasons = append(st.reasons, fmt.Sprintf(
				"context review suggests irony or misunderstanding; level adjusted down, manual review advised; intent: %s", j.ContextualIntent))
		}
		if factor := meaningfulFactor(j.AdditionalRiskFactor); factor != "" {
			st.reasons = append(st.reasons, "mitigating factor: "+factor)
		}
	default:
		if seriousIntent(j.ContextualIntent) {
			if st.level == models.LevelAnticipated {
				st.level = models.LevelMedium
				st.reasons = append(st.reasons, "context review confirmed the statement as serious, deliberate communication")
			} else if st.level == models.LevelMedium && strings.Contains(strings.ToLower(j.RiskAssessment), "severe") {
				st.level = models.LevelSevere
				st.reasons = append(st.reasons, "context review indicates a more severe risk than initially assessed")
			}
		}
	}
	return st
}

// overrideKeywords are the detector keywords that, combined with an
// information-security category, force a severe alert regardless of the
// level earlier rules settled on.
var overrideKeywords = []string{
	"customer data leak",
	"inappropriate remark",
	"personal data leak",
}

const infoSecurityField = "information-security"

// categoryOverrideRule runs last and can re-escalate past any mitigation.
func categoryOverrideRule(in SynthesisInput, st alertState) alertState {
	field := strings.ToLower(in.Incident.RelevantField)
	if !strings.Contains(field, infoSecurityField) && !strings.Contains(field, "privacy") {
		return st
	}
	for _, kw := range in.Signal.Keywords {
		for _, override := range overrideKeywords {
			if strings.EqualFold(strings.TrimSpace(kw), override) {
				st.level = models.LevelSevere
				st.reasons = append(st.reasons, fmt.Sprintf(
					"category override: field %q matched condition %q, possible major compliance violation",
					in.Incident.RelevantField, override))
				return st
			}
		}
	}
	return st
}

func parseRangeLabel(label string) (start, end float64, ok bool) {
	parts := strings.Split(label, " - ")
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, ok = parseClock(parts[0])
	if !ok {
		return 0, 0, false
	}
	end, ok = parseClock(parts[1])
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

func parseClock(s string) (float64, bool) {
	var m, sec int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &m, &sec); err != nil {
		return 0, false
	}
	return float64(m*60 + sec), true
}

func seriousIntent(intent string) bool {
	lower := strings.ToLower(intent)
	return strings.Contains(lower, "serious") || strings.Contains(lower, "deliberate")
}

func meaningfulFactor(factor string) string {
	f := strings.TrimSpace(factor)
	if f == "" || strings.EqualFold(f, "none") || strings.EqualFold(f, "n/a") {
		return ""
	}
	return f
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
