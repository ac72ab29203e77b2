package analysis

import (
	"strings"
	"testing"

	"compliance-review-service/internal/models"

	"github.com/google/go-cmp/cmp"
)

func videoAlert() models.AlertRecord {
	return models.AlertRecord{
		Level:        models.LevelMedium,
		Reasons:      []string{"primary assessment found a moderate compliance risk: data exposure"},
		Timestamp:    "0:12 - 0:20",
		OriginalText: "I accidentally sent the customer list to the wrong vendor.",
	}
}

func textAlert() models.AlertRecord {
	return models.AlertRecord{
		Level:        models.LevelSevere,
		Reasons:      []string{"category override: field \"information-security\" matched condition \"customer data leak\", possible major compliance violation"},
		Timestamp:    models.TimestampUnknown,
		OriginalText: "we had a customer data leak last week",
	}
}

// Integration with a single present source must return that alert unchanged.
func TestIntegrate_SinglePresentIsIdentity(t *testing.T) {
	va := videoAlert()
	ta := textAlert()

	if diff := cmp.Diff(va, Integrate(&va, nil)); diff != "" {
		t.Errorf("Integrate(video, nil) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ta, Integrate(nil, &ta)); diff != "" {
		t.Errorf("Integrate(nil, text) mismatch (-want +got):\n%s", diff)
	}
}

func TestIntegrate_BothAbsent(t *testing.T) {
	alert := Integrate(nil, nil)

	want := models.AlertRecord{
		Level:        models.LevelAnticipated,
		Reasons:      []string{NoConcernsReason},
		Timestamp:    models.TimestampUnknown,
		OriginalText: models.NoMatchingText,
	}
	if diff := cmp.Diff(want, alert); diff != "" {
		t.Errorf("Integrate(nil, nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestIntegrate_BothPresent(t *testing.T) {
	va := videoAlert()
	ta := textAlert()

	alert := Integrate(&va, &ta)

	if alert.Level != models.LevelSevere {
		t.Errorf("level = %v, want the maximum across sources", alert.Level)
	}
	if len(alert.Reasons) != 2 {
		t.Fatalf("reasons = %v, want one per source", alert.Reasons)
	}
	if !strings.HasPrefix(alert.Reasons[0], ReasonPrefixVideo) {
		t.Errorf("first reason should carry the video label, got %q", alert.Reasons[0])
	}
	if !strings.HasPrefix(alert.Reasons[1], ReasonPrefixText) {
		t.Errorf("second reason should carry the text label, got %q", alert.Reasons[1])
	}
	if alert.Timestamp != "0:12 - 0:20" {
		t.Errorf("timestamp = %q, want the video timestamp", alert.Timestamp)
	}
	if alert.OriginalText != va.OriginalText {
		t.Errorf("original text = %q, want the video text", alert.OriginalText)
	}
}

func TestIntegrate_TextFieldsFillUnresolvableVideo(t *testing.T) {
	va := videoAlert()
	va.Timestamp = models.TimestampUnknown
	va.OriginalText = models.NoMatchingText
	ta := textAlert()

	alert := Integrate(&va, &ta)

	if alert.Timestamp != models.TimestampUnknown {
		t.Errorf("timestamp = %q, want unknown (text has no timestamp either)", alert.Timestamp)
	}
	if alert.OriginalText != ta.OriginalText {
		t.Errorf("original text = %q, want the text source's", alert.OriginalText)
	}
}

// Integration never mutates its inputs.
func TestIntegrate_InputsUntouched(t *testing.T) {
	va, vaCopy := videoAlert(), videoAlert()
	ta, taCopy := textAlert(), textAlert()

	Integrate(&va, &ta)

	if diff := cmp.Diff(vaCopy, va); diff != "" {
		t.Errorf("video alert mutated (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(taCopy, ta); diff != "" {
		t.Errorf("text alert mutated (-want +got):\n%s", diff)
	}
}

func TestMergeOrdered_Empty(t *testing.T) {
	alert := MergeOrdered(nil)
	if alert.Level != models.LevelAnticipated || len(alert.Reasons) != 1 || alert.Reasons[0] != NoConcernsReason {
		t.Errorf("merge of nothing = %+v, want the default anticipated alert", alert)
	}
}

func TestMergeOrdered_SingleIsIdentity(t *testing.T) {
	va := videoAlert()
	if diff := cmp.Diff(va, MergeOrdered([]models.AlertRecord{va})); diff != "" {
		t.Errorf("MergeOrdered single mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeOrdered_KeepsDetectionOrderAndMaxLevel(t *testing.T) {
	alerts := []models.AlertRecord{
		{
			Level:        models.LevelAnticipated,
			Reasons:      []string{"first finding"},
			Timestamp:    models.TimestampUnknown,
			OriginalText: models.NoMatchingText,
		},
		{
			Level:        models.LevelSevere,
			Reasons:      []string{"second finding"},
			Timestamp:    "0:12 - 0:20",
			OriginalText: "segment text",
		},
		{
			Level:        models.LevelMedium,
			Reasons:      []string{"third finding"},
			Timestamp:    "0:27 - 0:33",
			OriginalText: "other segment",
		},
	}

	merged := MergeOrdered(alerts)

	if merged.Level != models.LevelSevere {
		t.Errorf("level = %v, want severe", merged.Level)
	}
	want := []string{"first finding", "second finding", "third finding"}
	if diff := cmp.Diff(want, merged.Reasons); diff != "" {
		t.Errorf("reasons order mismatch (-want +got):\n%s", diff)
	}
	if merged.Timestamp != "0:12 - 0:20" {
		t.Errorf("timestamp = %q, want the first resolvable one", merged.Timestamp)
	}
	if merged.OriginalText != "segment text" {
		t.Errorf("original text = %q, want the first resolvable one", merged.OriginalText)
	}
}

func TestMergeOrdered_DropsNoConcernsNoise(t *testing.T) {
	alerts := []models.AlertRecord{
		{Level: models.LevelAnticipated, Reasons: []string{NoConcernsReason}, Timestamp: models.TimestampUnknown, OriginalText: models.NoMatchingText},
		{Level: models.LevelMedium, Reasons: []string{"real finding"}, Timestamp: models.TimestampUnknown, OriginalText: models.NoMatchingText},
	}

	merged := MergeOrdered(alerts)

	if len(merged.Reasons) != 1 || merged.Reasons[0] != "real finding" {
		t.Errorf("reasons = %v, want the no-concerns placeholder dropped", merged.Reasons)
	}
}
