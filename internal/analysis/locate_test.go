package analysis

import (
	"strings"
	"testing"

	"compliance-review-service/internal/models"
)

func meetingTranscript() models.Transcript {
	return models.Transcript{
		{Start: 0, End: 5, Text: "Good morning everyone, thanks for joining."},
		{Start: 5, End: 12, Text: "Let's review the quarterly numbers first."},
		{Start: 12, End: 20, Text: "I accidentally sent the customer list to the wrong vendor."},
		{Start: 20, End: 27, Text: "We should probably keep that between us for now."},
		{Start: 27, End: 33, Text: "Moving on, the marketing budget looks fine."},
		{Start: 33, End: 40, Text: "Any other business before we wrap up?"},
	}
}

func TestLocate_SubstringMatch(t *testing.T) {
	signal := ViolationSignal{
		Category: "information-security",
		Snippet:  "customer list",
		Keywords: []string{"wrap"},
	}

	details := Locate(signal, meetingTranscript())

	if details.TimestampLabel != "0:12 - 0:20" {
		t.Errorf("timestamp = %q, want %q", details.TimestampLabel, "0:12 - 0:20")
	}
	if !strings.Contains(details.ContextWindow, "customer list") {
		t.Errorf("context window missing matched text: %q", details.ContextWindow)
	}
}

// A snippet that matches a segment must win even when keywords would score a
// different segment.
func TestLocate_SubstringBeatsKeywords(t *testing.T) {
	signal := ViolationSignal{
		Snippet:  "customer list",
		Keywords: []string{"marketing", "budget"},
	}

	details := Locate(signal, meetingTranscript())

	if details.TimestampLabel != "0:12 - 0:20" {
		t.Errorf("timestamp = %q, want substring match segment %q", details.TimestampLabel, "0:12 - 0:20")
	}
}

func TestLocate_KeywordFallback(t *testing.T) {
	signal := ViolationSignal{
		Snippet:  "text that appears nowhere",
		Keywords: []string{"marketing", "budget"},
	}

	details := Locate(signal, meetingTranscript())

	if details.TimestampLabel != "0:27 - 0:33" {
		t.Errorf("timestamp = %q, want keyword match segment %q", details.TimestampLabel, "0:27 - 0:33")
	}
}

// Equal keyword counts keep the earlier segment.
func TestLocate_KeywordTieKeepsEarlier(t *testing.T) {
	transcript := models.Transcript{
		{Start: 0, End: 5, Text: "budget discussion one"},
		{Start: 5, End: 10, Text: "budget discussion two"},
	}
	signal := ViolationSignal{Keywords: []string{"budget"}}

	details := Locate(signal, transcript)

	if details.TimestampLabel != "0:00 - 0:05" {
		t.Errorf("timestamp = %q, want earlier segment %q", details.TimestampLabel, "0:00 - 0:05")
	}
}

func TestLocate_NoMatch(t *testing.T) {
	signal := ViolationSignal{
		Snippet:  "nothing like this",
		Keywords: []string{"absent"},
	}
	transcript := meetingTranscript()

	details := Locate(signal, transcript)

	if details.TimestampLabel != NoMatchLabel {
		t.Errorf("timestamp = %q, want %q", details.TimestampLabel, NoMatchLabel)
	}
	if details.ContextWindow != transcript.PlainText() {
		t.Errorf("context window should fall back to the full plain text")
	}
}

func TestLocate_SentinelTranscript(t *testing.T) {
	text := "this is a text-only submission"
	signal := ViolationSignal{Category: "harassment", Snippet: "text-only"}

	details := Locate(signal, models.NewSentinelTranscript(text))

	if details.TimestampLabel != models.TimestampUnknown {
		t.Errorf("timestamp = %q, want %q", details.TimestampLabel, models.TimestampUnknown)
	}
	if details.ContextWindow != text {
		t.Errorf("context window = %q, want the whole text", details.ContextWindow)
	}
	if details.RelevantField != "harassment" {
		t.Errorf("relevant field = %q, want %q", details.RelevantField, "harassment")
	}
}

func TestLocate_ContextWindowBounds(t *testing.T) {
	transcript := meetingTranscript()
	signal := ViolationSignal{Snippet: "Good morning"}

	details := Locate(signal, transcript)

	// Match at index 0: window is segments 0..3, each with its time prefix.
	lines := strings.Split(details.ContextWindow, "\n")
	if len(lines) != 4 {
		t.Fatalf("context window has %d lines, want 4: %q", len(lines), details.ContextWindow)
	}
	if !strings.HasPrefix(lines[0], "(0.00-5.00) ") {
		t.Errorf("first line missing time prefix: %q", lines[0])
	}
	if !strings.Contains(lines[3], "keep that between us") {
		t.Errorf("window should extend three segments forward, got %q", lines[3])
	}
}

func TestLocate_EmptyCategoryDefaults(t *testing.T) {
	details := Locate(ViolationSignal{Snippet: "customer list"}, meetingTranscript())
	if details.RelevantField != "unknown" {
		t.Errorf("relevant field = %q, want %q", details.RelevantField, "unknown")
	}
}
