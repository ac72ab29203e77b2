// Package analysis implements the evidence-fusion core of the pipeline:
// incident location within a transcript, the alert synthesis state machine,
// and multi-source alert integration.
package analysis

import (
	"fmt"
	"strings"

	"compliance-review-service/internal/models"
)

// ViolationSignal carries the detector-derived evidence for one violation:
// what to look for in the transcript and how risky the detector rated it.
type ViolationSignal struct {
	Risk     models.Severity
	Category string
	Keywords []string
	Summary  string
	Snippet  string
}

// NoMatchLabel is the timestamp label when no transcript segment matched.
const NoMatchLabel = "N/A (no matching segment)"

// contextRadius is the number of neighbouring segments included on each side
// of the matched segment in the context window.
const contextRadius = 3

// Locate finds the transcript segment best matching the violation signal and
// builds the bounded context window for re-judgment.
//
// Matching runs in two passes. The substring pass wins outright: the first
// segment containing the snippet is the match, and no keyword hit can
// displace it. Only when the snippet matches nowhere does the keyword pass
// run, where a strictly greater count of distinct matching keywords replaces
// the current best and ties keep the earlier segment.
func Locate(signal ViolationSignal, transcript models.Transcript) models.IncidentDetails {
	details := models.IncidentDetails{
		TimestampLabel:  models.TimestampUnknown,
		RelevantField:   signal.Category,
		ShortAnnotation: defaultAnnotation(signal),
	}
	if details.RelevantField == "" {
		details.RelevantField = "unknown"
	}

	if transcript.IsSentinel() {
		// Text-only input: the whole text is the context window and there
		// is no real timestamp to report.
		details.ContextWindow = transcript[0].Text
		return details
	}

	idx := matchSubstring(signal.Snippet, transcript)
	if idx < 0 {
		idx = matchKeywords(signal.Keywords, transcript)
	}
	if idx < 0 {
		details.TimestampLabel = NoMatchLabel
		details.ContextWindow = transcript.PlainText()
		return details
	}

	seg := transcript[idx]
	details.TimestampLabel = models.TimestampLabel(seg.Start, seg.End)
	details.ContextWindow = contextWindow(transcript, idx)
	return details
}

func matchSubstring(snippet string, transcript models.Transcript) int {
	if snippet == "" {
		return -1
	}
	for i, seg := range transcript {
		if strings.Contains(seg.Text, snippet) {
			return i
		}
	}
	return -1
}

func matchKeywords(keywords []string, transcript models.Transcript) int {
	best, bestCount := -1, 0
	for i, seg := range transcript {
		count := 0
		for _, kw := range keywords {
			if kw != "" && strings.Contains(seg.Text, kw) {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = i, count
		}
	}
	return best
}

func contextWindow(transcript models.Transcript, idx int) string {
	lo := idx - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := idx + contextRadius + 1
	if hi > len(transcript) {
		hi = len(transcript)
	}
	lines := make([]string, 0, hi-lo)
	for _, s := range transcript[lo:hi] {
		lines = append(lines, fmt.Sprintf("(%.2f-%.2f) %s", s.Start, s.End, strings.TrimSpace(s.Text)))
	}
	return strings.Join(lines, "\n")
}

func defaultAnnotation(signal ViolationSignal) string {
	switch {
	case signal.Snippet != "":
		return fmt.Sprintf("related text: %q", signal.Snippet)
	case signal.Summary != "":
		return signal.Summary
	case len(signal.Keywords) > 0:
		return fmt.Sprintf("event matching keywords: %s", strings.Join(signal.Keywords, ", "))
	default:
		return "unclassified compliance-relevant event"
	}
}
