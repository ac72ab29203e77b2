// Package models defines the value objects that flow through the compliance
// review pipeline. All types here are passed by value between stages and are
// never mutated after creation.
package models

import (
	"fmt"
	"strings"
)

// Word is a single word with its own timing inside a segment.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is a timestamped span of transcribed speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Transcript is an ordered, chronological sequence of segments. Order is
// semantically meaningful: context windowing walks neighbouring segments.
type Transcript []Segment

// NewSentinelTranscript wraps plain-text input in the single zero-timestamp
// segment that marks a transcript as text-only. The sentinel timestamps are
// not valid media timestamps.
func NewSentinelTranscript(text string) Transcript {
	return Transcript{{Start: 0, End: 0, Text: text}}
}

// IsSentinel reports whether the transcript is the text-only sentinel:
// exactly one segment with start == end == 0 and non-empty text.
func (t Transcript) IsSentinel() bool {
	return len(t) == 1 && t[0].Start == 0 && t[0].End == 0 && t[0].Text != ""
}

// PlainText joins all segment texts into one space-separated string.
func (t Transcript) PlainText() string {
	parts := make([]string, 0, len(t))
	for _, s := range t {
		parts = append(parts, strings.TrimSpace(s.Text))
	}
	return strings.Join(parts, " ")
}

// TimestampLabel formats a second range as "M:SS - M:SS" with floor minutes
// and zero-padded seconds.
func TimestampLabel(start, end float64) string {
	return fmt.Sprintf("%s - %s", clockLabel(start), clockLabel(end))
}

func clockLabel(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
