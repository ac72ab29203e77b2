package models

import "encoding/json"

// Level is the ordered alert severity. The integer values define the total
// order used everywhere severities are compared; never compare by string.
type Level int

const (
	LevelUnknown Level = iota
	LevelAnticipated
	LevelMedium
	LevelSevere
)

// String returns the lower-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelAnticipated:
		return "anticipated"
	case LevelMedium:
		return "medium"
	case LevelSevere:
		return "severe"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the level by name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts the level by name; unrecognised names decode to
// LevelUnknown.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = ParseLevel(s)
	return nil
}

// ParseLevel maps a level name back onto a Level.
func ParseLevel(s string) Level {
	switch s {
	case "anticipated":
		return LevelAnticipated
	case "medium":
		return LevelMedium
	case "severe":
		return LevelSevere
	default:
		return LevelUnknown
	}
}

// MaxLevel returns the higher of two levels.
func MaxLevel(a, b Level) Level {
	if b > a {
		return b
	}
	return a
}

// LevelFromSeverity maps a detector severity onto an alert level. Low risk
// still yields an anticipated alert; only the unknown rating maps to unknown.
func LevelFromSeverity(s Severity) Level {
	switch s {
	case SeverityHigh:
		return LevelSevere
	case SeverityMedium:
		return LevelMedium
	case SeverityLow:
		return LevelAnticipated
	default:
		return LevelUnknown
	}
}

// Sentinel strings shared across the synthesizer and integrator.
const (
	// TimestampUnknown marks an alert with no resolvable media timestamp.
	TimestampUnknown = "unknown"
	// NoMatchingText is the original-text placeholder when nothing resolves.
	NoMatchingText = "no matching text"
)

// AlertRecord is one leveled compliance alert with its ordered reason trail.
// Value object: integration produces a new record, never mutates inputs.
type AlertRecord struct {
	Level        Level    `json:"level"`
	Reasons      []string `json:"reasons"`
	Timestamp    string   `json:"timestamp"`
	OriginalText string   `json:"original_text_segment"`
}
