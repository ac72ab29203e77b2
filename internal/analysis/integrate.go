package analysis

import "compliance-review-service/internal/models"

// Reason labels prepended when alerts from both sources are merged.
const (
	ReasonPrefixVideo = "[video analysis]: "
	ReasonPrefixText  = "[text analysis]: "
)

// Integrate merges the video-derived and text-derived alerts into one final
// alert. The final level is the maximum severity across whichever alerts are
// present. When both sources are present, reasons are concatenated in source
// order with their source label, never deduplicated or reordered; the video
// timestamp and original text win over the text source when resolvable.
// A single present alert passes through unchanged.
func Integrate(video, text *models.AlertRecord) models.AlertRecord {
	switch {
	case video == nil && text == nil:
		return models.AlertRecord{
			Level:        models.LevelAnticipated,
			Reasons:      []string{NoConcernsReason},
			Timestamp:    models.TimestampUnknown,
			OriginalText: models.NoMatchingText,
		}
	case text == nil:
		return *video
	case video == nil:
		return *text
	}

	out := models.AlertRecord{
		Level:        models.MaxLevel(video.Level, text.Level),
		Reasons:      make([]string, 0, len(video.Reasons)+len(text.Reasons)),
		Timestamp:    models.TimestampUnknown,
		OriginalText: models.NoMatchingText,
	}
	for _, r := range video.Reasons {
		out.Reasons = append(out.Reasons, ReasonPrefixVideo+r)
	}
	for _, r := range text.Reasons {
		out.Reasons = append(out.Reasons, ReasonPrefixText+r)
	}

	switch {
	case video.Timestamp != "" && video.Timestamp != models.TimestampUnknown:
		out.Timestamp = video.Timestamp
	case text.Timestamp != "" && text.Timestamp != models.TimestampUnknown:
		out.Timestamp = text.Timestamp
	}

	switch {
	case video.OriginalText != "" && video.OriginalText != models.NoMatchingText:
		out.OriginalText = video.OriginalText
	case text.OriginalText != "" && text.OriginalText != models.NoMatchingText:
		out.OriginalText = text.OriginalText
	}

	return out
}

// MergeOrdered folds per-violation alerts from one source into a single
// alert using the same ordered-reduction semantics as Integrate: maximum
// level wins, reasons concatenate in the original detection order, and the
// first resolvable timestamp and original text are kept.
func MergeOrdered(alerts []models.AlertRecord) models.AlertRecord {
	if len(alerts) == 0 {
		return models.AlertRecord{
			Level:        models.LevelAnticipated,
			Reasons:      []string{NoConcernsReason},
			Timestamp:    models.TimestampUnknown,
			OriginalText: models.NoMatchingText,
		}
	}
	if len(alerts) == 1 {
		return alerts[0]
	}

	out := models.AlertRecord{
		Level:        models.LevelUnknown,
		Timestamp:    models.TimestampUnknown,
		OriginalText: models.NoMatchingText,
	}
	for _, a := range alerts {
		out.Level = models.MaxLevel(out.Level, a.Level)
		for _, r := range a.Reasons {
			if r == NoConcernsReason {
				continue
			}
			out.Reasons = append(out.Reasons, r)
		}
		if out.Timestamp == models.TimestampUnknown && a.Timestamp != "" && a.Timestamp != models.TimestampUnknown {
			out.Timestamp = a.Timestamp
		}
		if out.OriginalText == models.NoMatchingText && a.OriginalText != "" && a.OriginalText != models.NoMatchingText {
			out.OriginalText = a.OriginalText
		}
	}
	if len(out.Reasons) == 0 {
		out.Reasons = []string{NoConcernsReason}
	}
	return out
}
