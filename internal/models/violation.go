package models

import "strings"

// ViolationKind distinguishes what kind of content triggered a violation.
type ViolationKind string

const (
	ViolationAction ViolationKind = "action"
	ViolationSpeech ViolationKind = "speech"
)

// Severity is the detector's own rating of a single violation.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
)

// String returns the lower-case name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseSeverity maps a provider-supplied rating string onto a Severity.
// Unrecognised values come back as SeverityUnknown rather than guessing.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return SeverityHigh
	case "medium", "moderate":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityUnknown
	}
}

// Violation is one detected compliance-risk instance. Immutable once
// produced by the detector.
type Violation struct {
	Kind        ViolationKind `json:"kind"`
	Description string        `json:"description"`
	Start       float64       `json:"start"`
	End         float64       `json:"end"`
	Severity    Severity      `json:"severity"`
	RelatedText string        `json:"related_text,omitempty"`
}

// BackgroundProfile is optional caller-supplied speaker/author background.
// Purely advisory input to re-judgment; never mutated by the pipeline.
type BackgroundProfile struct {
	Name          string   `json:"name"`
	PastIncidents []string `json:"past_incidents,omitempty"`
	CharacterType string   `json:"character_type,omitempty"`
	UsualStyle    string   `json:"usual_style,omitempty"`
}

// RiskModifier is the signed adjustment the contextual re-judge applies.
type RiskModifier string

const (
	ModifierAmplify  RiskModifier = "amplify"
	ModifierMitigate RiskModifier = "mitigate"
	ModifierNone     RiskModifier = "none"
)

// ParseModifier maps a provider-supplied modifier string onto a RiskModifier.
func ParseModifier(s string) RiskModifier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "amplify", "amplified", "increase":
		return ModifierAmplify
	case "mitigate", "mitigated", "reduce":
		return ModifierMitigate
	default:
		return ModifierNone
	}
}

// ContextJudgement is the re-judge's intent and nuance assessment for one
// violation (or for the whole text in the simplified text path).
type ContextJudgement struct {
	ContextualIntent     string       `json:"contextual_intent"`
	RiskAssessment       string       `json:"risk_assessment"`
	AdditionalRiskFactor string       `json:"additional_risk_factor,omitempty"`
	RiskModifier         RiskModifier `json:"risk_modifier"`
	SpeakerContextImpact string       `json:"speaker_context_impact,omitempty"`
	FinalJudgment        string       `json:"final_judgment,omitempty"`
}

// IncidentDetails is the context locator's output: where in the transcript
// the incident sits and the bounded text window handed to the re-judge.
type IncidentDetails struct {
	TimestampLabel  string `json:"timestamp_label"`
	RelevantField   string `json:"relevant_field"`
	ShortAnnotation string `json:"short_annotation"`
	ContextWindow   string `json:"context_window"`
}

// FingerprintMatch is a music-fingerprint lookup result. HasRange reports
// whether the provider supplied its own time range for the match.
type FingerprintMatch struct {
	Detected    bool    `json:"detected"`
	Title       string  `json:"title,omitempty"`
	Artist      string  `json:"artist,omitempty"`
	Album       string  `json:"album,omitempty"`
	Genres      string  `json:"genres,omitempty"`
	Start       float64 `json:"start_time,omitempty"`
	End         float64 `json:"end_time,omitempty"`
	HasRange    bool    `json:"-"`
	Copyrighted bool    `json:"is_copyrighted"`
}
