package models

import (
	"encoding/json"
	"testing"
)

func TestLevelOrdering(t *testing.T) {
	// The integer order is the severity order the whole pipeline relies on.
	if !(LevelUnknown < LevelAnticipated && LevelAnticipated < LevelMedium && LevelMedium < LevelSevere) {
		t.Fatal("level ordering broken: want unknown < anticipated < medium < severe")
	}
}

func TestMaxLevel(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Level
		expected Level
	}{
		{"severe wins over medium", LevelMedium, LevelSevere, LevelSevere},
		{"order independent", LevelSevere, LevelMedium, LevelSevere},
		{"equal levels", LevelAnticipated, LevelAnticipated, LevelAnticipated},
		{"unknown never wins", LevelUnknown, LevelAnticipated, LevelAnticipated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxLevel(tt.a, tt.b); got != tt.expected {
				t.Errorf("MaxLevel(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestLevelStringRoundTrip(t *testing.T) {
	for _, l := range []Level{LevelUnknown, LevelAnticipated, LevelMedium, LevelSevere} {
		if got := ParseLevel(l.String()); got != l {
			t.Errorf("ParseLevel(%q) = %v, want %v", l.String(), got, l)
		}
	}
	if got := ParseLevel("catastrophic"); got != LevelUnknown {
		t.Errorf("ParseLevel of unrecognised name = %v, want LevelUnknown", got)
	}
}

func TestLevelJSON(t *testing.T) {
	record := AlertRecord{
		Level:        LevelSevere,
		Reasons:      []string{"a reason"},
		Timestamp:    "0:10 - 0:40",
		OriginalText: "some text",
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded AlertRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Level != LevelSevere {
		t.Errorf("round-tripped level = %v, want LevelSevere", decoded.Level)
	}
}

func TestLevelFromSeverity(t *testing.T) {
	tests := []struct {
		severity Severity
		expected Level
	}{
		{SeverityHigh, LevelSevere},
		{SeverityMedium, LevelMedium},
		{SeverityLow, LevelAnticipated},
		{SeverityUnknown, LevelUnknown},
	}

	for _, tt := range tests {
		if got := LevelFromSeverity(tt.severity); got != tt.expected {
			t.Errorf("LevelFromSeverity(%v) = %v, want %v", tt.severity, got, tt.expected)
		}
	}
}

func TestParseModifier(t *testing.T) {
	tests := []struct {
		input    string
		expected RiskModifier
	}{
		{"amplify", ModifierAmplify},
		{"AMPLIFY", ModifierAmplify},
		{" increase ", ModifierAmplify},
		{"mitigate", ModifierMitigate},
		{"reduce", ModifierMitigate},
		{"none", ModifierNone},
		{"", ModifierNone},
		{"gibberish", ModifierNone},
	}

	for _, tt := range tests {
		if got := ParseModifier(tt.input); got != tt.expected {
			t.Errorf("ParseModifier(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
