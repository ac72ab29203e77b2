// Package pipeline orchestrates the multi-stage compliance analysis flow:
// transcription, violation detection, context location, contextual
// re-judgment, music fingerprinting and alert synthesis.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"compliance-review-service/internal/analysis"
	"compliance-review-service/internal/events"
	"compliance-review-service/internal/models"
	"compliance-review-service/internal/observability/logging"
	"compliance-review-service/internal/observability/metrics"
	"compliance-review-service/internal/service/detect"
	"compliance-review-service/internal/service/fingerprint"
	"compliance-review-service/internal/service/media"
	"compliance-review-service/internal/service/rejudge"
	"compliance-review-service/internal/service/transcribe"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Providers bundles the external services the orchestrator drives. Only
// Transcriber, Detector and Judge are required; Fingerprint and Extractor
// may be nil, which disables music fingerprinting.
type Providers struct {
	Transcriber transcribe.Transcriber
	Detector    detect.Detector
	Judge       rejudge.Judge
	Fingerprint fingerprint.Matcher
	Extractor   media.Extractor
}

// VideoResult is the full output of a video analysis.
type VideoResult struct {
	AnalysisID string             `json:"analysis_id"`
	Logs       []string           `json:"logs"`
	Transcript models.Transcript  `json:"transcript"`
	Alert      models.AlertRecord `json:"alert"`
}

// ImageTextResult is the output of an image/text analysis.
type ImageTextResult struct {
	AnalysisID string                   `json:"analysis_id"`
	Logs       []string                 `json:"logs"`
	Analysis   detect.ImageTextAnalysis `json:"analysis"`
}

// CombinedResult is the output of a video+text analysis, with the two
// per-source alerts and the integrated one.
type CombinedResult struct {
	AnalysisID string              `json:"analysis_id"`
	Logs       []string            `json:"logs"`
	Transcript models.Transcript   `json:"transcript"`
	VideoAlert *models.AlertRecord `json:"video_alert,omitempty"`
	TextAlert  *models.AlertRecord `json:"text_alert,omitempty"`
	Alert      models.AlertRecord  `json:"alert"`
}

// Orchestrator runs the analysis flows end to end.
type Orchestrator struct {
	providers Providers
	publisher *events.Publisher
	metrics   *metrics.Metrics
	tempDir   string
	logger    zerolog.Logger
}

// New creates an orchestrator. tempDir is where extracted audio is staged;
// empty means the system temp dir.
func New(providers Providers, publisher *events.Publisher, tempDir string) *Orchestrator {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Orchestrator{
		providers: providers,
		publisher: publisher,
		metrics:   metrics.DefaultMetrics,
		tempDir:   tempDir,
		logger:    logging.WithComponent("pipeline"),
	}
}

// trail accumulates the ordered human-readable processing log returned with
// every result.
type trail struct {
	entries []string
}

func (t *trail) addf(format string, args ...any) {
	t.entries = append(t.entries, fmt.Sprintf(format, args...))
}

// AnalyzeVideo runs the full video flow: transcription, detection,
// per-violation location and re-judgment, fingerprinting and synthesis.
func (o *Orchestrator) AnalyzeVideo(ctx context.Context, videoPath string, background *models.BackgroundProfile) (VideoResult, error) {
	const op = "AnalyzeVideo"
	analysisID := uuid.NewString()
	logger := logging.WithAnalysis(analysisID, string(analysis.SourceVideo))
	start := time.Now()
	o.metrics.RecordAnalysisStart(string(analysis.SourceVideo))
	defer func() {
		o.metrics.RecordAnalysisEnd(string(analysis.SourceVideo), time.Since(start).Seconds())
	}()

	res := VideoResult{AnalysisID: analysisID}
	var tr trail

	if _, err := os.Stat(videoPath); err != nil {
		o.metrics.RecordAnalysisFailed(string(analysis.SourceVideo), KindNotFound.String())
		return res, notFoundErr(op, fmt.Errorf("video file %s: %w", videoPath, err))
	}

	tr.addf("analysis %s started for %s", analysisID, filepath.Base(videoPath))

	transcription, err := o.providers.Transcriber.Transcribe(ctx, videoPath)
	if err != nil {
		tr.addf("transcription failed: %v", err)
		res.Logs = tr.entries
		o.metrics.RecordAnalysisFailed(string(analysis.SourceVideo), KindProvider.String())
		return res, providerErr(op, fmt.Errorf("transcribe: %w", err))
	}
	res.Transcript = transcription.Segments
	tr.addf("transcription produced %d segments", len(transcription.Segments))

	detection, err := o.providers.Detector.DetectVideo(ctx, videoPath, transcription.Segments)
	if err != nil {
		tr.addf("violation detection failed: %v", err)
		res.Logs = tr.entries
		o.metrics.RecordAnalysisFailed(string(analysis.SourceVideo), KindProvider.String())
		return res, providerErr(op, fmt.Errorf("detect: %w", err))
	}
	tr.addf("detection found %d violations (category %q, risk %s)",
		len(detection.Violations), detection.Category, detection.Risk)
	o.metrics.RecordViolations(len(detection.Violations))

	fp := o.fingerprintSideCall(ctx, &tr, logger, analysisID, videoPath)

	alert, err := o.assessSource(ctx, &tr, assessment{
		transcript: transcription.Segments,
		detection:  detection,
		fp:         fp,
		background: background,
		source:     analysis.SourceVideo,
	})
	if err != nil {
		res.Logs = tr.entries
		o.metrics.RecordAnalysisFailed(string(analysis.SourceVideo), KindProvider.String())
		return res, providerErr(op, err)
	}
	res.Alert = alert
	tr.addf("alert synthesized at level %s", alert.Level)
	o.metrics.RecordAlert(alert.Level.String())

	o.publishAlert(ctx, &tr, logger, analysisID, string(analysis.SourceVideo), alert)

	res.Logs = tr.entries
	logger.Info().
		Str("level", alert.Level.String()).
		Int("violations", len(detection.Violations)).
		Msg("Video analysis completed")
	return res, nil
}

// AnalyzeImageText runs the combined multimodal analysis over an optional
// image and optional text. At least one must be present.
func (o *Orchestrator) AnalyzeImageText(ctx context.Context, imagePath, text string, background *models.BackgroundProfile) (ImageTextResult, error) {
	const op = "AnalyzeImageText"
	analysisID := uuid.NewString()
	logger := logging.WithAnalysis(analysisID, "image_text")
	start := time.Now()
	o.metrics.RecordAnalysisStart("image_text")
	defer func() {
		o.metrics.RecordAnalysisEnd("image_text", time.Since(start).Seconds())
	}()

	res := ImageTextResult{AnalysisID: analysisID}
	var tr trail

	if imagePath == "" && strings.TrimSpace(text) == "" {
		o.metrics.RecordAnalysisFailed("image_text", KindInput.String())
		return res, inputErr(op, errors.New("at least one of image and text is required"))
	}
	if imagePath != "" {
		if _, err := os.Stat(imagePath); err != nil {
			o.metrics.RecordAnalysisFailed("image_text", KindNotFound.String())
			return res, notFoundErr(op, fmt.Errorf("image file %s: %w", imagePath, err))
		}
	}

	tr.addf("analysis %s started (image=%t, text=%t)",
		analysisID, imagePath != "", strings.TrimSpace(text) != "")

	result, err := o.providers.Detector.DetectImageText(ctx, imagePath, text, background)
	if err != nil {
		tr.addf("image/text detection failed: %v", err)
		res.Logs = tr.entries
		o.metrics.RecordAnalysisFailed("image_text", KindProvider.String())
		return res, providerErr(op, fmt.Errorf("detect: %w", err))
	}
	tr.addf("detection found %d violations (risk %s)", len(result.Violations), result.RiskLevel)
	o.metrics.RecordViolations(len(result.Violations))

	res.Analysis = result
	res.Logs = tr.entries
	logger.Info().
		Int("violations", len(result.Violations)).
		Str("risk", result.RiskLevel.String()).
		Msg("Image/text analysis completed")
	return res, nil
}

// AnalyzeTextOnly runs the combined analysis with no image.
func (o *Orchestrator) AnalyzeTextOnly(ctx context.Context, text string, background *models.BackgroundProfile) (ImageTextResult, error) {
	if strings.TrimSpace(text) == "" {
		o.metrics.RecordAnalysisFailed("image_text", KindInput.String())
		return ImageTextResult{}, inputErr("AnalyzeTextOnly", errors.New("text is required"))
	}
	return o.AnalyzeImageText(ctx, "", text, background)
}

// AnalyzeCombined runs the video flow and the sentinel-transcript text flow
// and integrates the two alerts into one.
func (o *Orchestrator) AnalyzeCombined(ctx context.Context, videoPath, text string, background *models.BackgroundProfile) (CombinedResult, error) {
	const op = "AnalyzeCombined"
	analysisID := uuid.NewString()
	logger := logging.WithAnalysis(analysisID, "combined")
	start := time.Now()
	o.metrics.RecordAnalysisStart("combined")
	defer func() {
		o.metrics.RecordAnalysisEnd("combined", time.Since(start).Seconds())
	}()

	res := CombinedResult{AnalysisID: analysisID}
	var tr trail

	if videoPath == "" && strings.TrimSpace(text) == "" {
		o.metrics.RecordAnalysisFailed("combined", KindInput.String())
		return res, inputErr(op, errors.New("at least one of video and text is required"))
	}

	var videoAlert, textAlert *models.AlertRecord

	if videoPath != "" {
		if _, err := os.Stat(videoPath); err != nil {
			o.metrics.RecordAnalysisFailed("combined", KindNotFound.String())
			return res, notFoundErr(op, fmt.Errorf("video file %s: %w", videoPath, err))
		}

		transcription, err := o.providers.Transcriber.Transcribe(ctx, videoPath)
		if err != nil {
			tr.addf("transcription failed: %v", err)
			res.Logs = tr.entries
			o.metrics.RecordAnalysisFailed("combined", KindProvider.String())
			return res, providerErr(op, fmt.Errorf("transcribe: %w", err))
		}
		res.Transcript = transcription.Segments
		tr.addf("transcription produced %d segments", len(transcription.Segments))

		detection, err := o.providers.Detector.DetectVideo(ctx, videoPath, transcription.Segments)
		if err != nil {
			tr.addf("video violation detection failed: %v", err)
			res.Logs = tr.entries
			o.metrics.RecordAnalysisFailed("combined", KindProvider.String())
			return res, providerErr(op, fmt.Errorf("detect video: %w", err))
		}
		tr.addf("video detection found %d violations", len(detection.Violations))
		o.metrics.RecordViolations(len(detection.Violations))

		fp := o.fingerprintSideCall(ctx, &tr, logger, analysisID, videoPath)

		alert, err := o.assessSource(ctx, &tr, assessment{
			transcript: transcription.Segments,
			detection:  detection,
			fp:         fp,
			background: background,
			source:     analysis.SourceVideo,
		})
		if err != nil {
			res.Logs = tr.entries
			o.metrics.RecordAnalysisFailed("combined", KindProvider.String())
			return res, providerErr(op, err)
		}
		videoAlert = &alert
		tr.addf("video alert synthesized at level %s", alert.Level)
	}

	if strings.TrimSpace(text) != "" {
		sentinel := models.NewSentinelTranscript(text)

		detection, err := o.providers.Detector.DetectText(ctx, text, background)
		if err != nil {
			tr.addf("text violation detection failed: %v", err)
			res.Logs = tr.entries
			o.metrics.RecordAnalysisFailed("combined", KindProvider.String())
			return res, providerErr(op, fmt.Errorf("detect text: %w", err))
		}
		tr.addf("text detection found %d violations", len(detection.Violations))
		o.metrics.RecordViolations(len(detection.Violations))

		alert, err := o.assessSource(ctx, &tr, assessment{
			transcript: sentinel,
			detection:  detection,
			background: background,
			source:     analysis.SourceText,
		})
		if err != nil {
			res.Logs = tr.entries
			o.metrics.RecordAnalysisFailed("combined", KindProvider.String())
			return res, providerErr(op, err)
		}
		textAlert = &alert
		tr.addf("text alert synthesized at level %s", alert.Level)
	}

	res.VideoAlert = videoAlert
	res.TextAlert = textAlert
	res.Alert = analysis.Integrate(videoAlert, textAlert)
	tr.addf("integrated alert level %s", res.Alert.Level)
	o.metrics.RecordAlert(res.Alert.Level.String())

	o.publishAlert(ctx, &tr, logger, analysisID, "combined", res.Alert)

	res.Logs = tr.entries
	logger.Info().
		Str("level", res.Alert.Level.String()).
		Msg("Combined analysis completed")
	return res, nil
}

// assessment is one source's input to the locate/re-judge/synthesize stage.
type assessment struct {
	transcript models.Transcript
	detection  detect.VideoDetection
	fp         *models.FingerprintMatch
	background *models.BackgroundProfile
	source     analysis.Source
}

// assessSource runs location, re-judgment and synthesis for every violation
// of one source concurrently, then folds the per-violation alerts in
// detection order.
func (o *Orchestrator) assessSource(ctx context.Context, tr *trail, a assessment) (models.AlertRecord, error) {
	signals := violationSignals(a.detection)
	alerts := make([]models.AlertRecord, len(signals))

	g, gctx := errgroup.WithContext(ctx)
	for i, sig := range signals {
		g.Go(func() error {
			incident := analysis.Locate(sig, a.transcript)

			judgement, err := o.providers.Judge.Judge(gctx, incident.ContextWindow, incident, a.background)
			if err != nil {
				return fmt.Errorf("rejudge violation %d: %w", i, err)
			}

			in := analysis.SynthesisInput{
				Signal:     sig,
				Incident:   incident,
				Judgement:  judgement,
				Transcript: a.transcript,
				Source:     a.source,
			}
			// The fingerprint applies once per source, not once per violation.
			if i == 0 {
				in.Fingerprint = a.fp
			}
			alerts[i] = analysis.Synthesize(in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		tr.addf("contextual re-judgment failed: %v", err)
		return models.AlertRecord{}, err
	}

	tr.addf("re-judged %d violation(s) for source %s", len(signals), a.source)
	return analysis.MergeOrdered(alerts), nil
}

// violationSignals derives one locator signal per detected violation,
// falling back to the detection-level fields when a violation omits its
// own. A detection with no violations still yields one signal so the
// source-level assessment always runs.
func violationSignals(d detect.VideoDetection) []analysis.ViolationSignal {
	base := analysis.ViolationSignal{
		Risk:     d.Risk,
		Category: d.Category,
		Keywords: d.Keywords,
		Summary:  d.Summary,
		Snippet:  d.Snippet,
	}
	if len(d.Violations) == 0 {
		return []analysis.ViolationSignal{base}
	}

	signals := make([]analysis.ViolationSignal, 0, len(d.Violations))
	for _, v := range d.Violations {
		sig := base
		if v.RelatedText != "" {
			sig.Snippet = v.RelatedText
		}
		if v.Severity != models.SeverityUnknown {
			sig.Risk = v.Severity
		}
		if v.Description != "" {
			sig.Summary = v.Description
		}
		signals = append(signals, sig)
	}
	return signals
}

// fingerprintSideCall extracts the audio track and looks it up against the
// fingerprint catalog. Every failure here is a degraded feature, never an
// analysis failure.
func (o *Orchestrator) fingerprintSideCall(ctx context.Context, tr *trail, logger zerolog.Logger, analysisID, videoPath string) *models.FingerprintMatch {
	if o.providers.Fingerprint == nil {
		o.metrics.RecordFingerprintSkipped("disabled")
		return nil
	}
	if o.providers.Extractor == nil {
		tr.addf("fingerprint skipped: no audio extractor configured")
		o.metrics.RecordFingerprintSkipped("no_extractor")
		return nil
	}

	audioPath := filepath.Join(o.tempDir, "audio-"+analysisID+".mp3")
	defer os.Remove(audioPath)

	if !o.providers.Extractor.Extract(ctx, videoPath, audioPath) {
		tr.addf("fingerprint skipped: audio extraction failed")
		logger.Warn().Msg("Audio extraction failed, skipping fingerprint")
		o.metrics.RecordFingerprintSkipped("extract_failed")
		return nil
	}

	start := time.Now()
	match, err := o.providers.Fingerprint.Match(ctx, audioPath)
	o.metrics.RecordProviderCall("fingerprint", err, time.Since(start).Seconds())
	if err != nil {
		tr.addf("fingerprint lookup failed: %v", err)
		logger.Warn().Err(err).Msg("Fingerprint lookup failed, continuing without it")
		o.metrics.RecordFingerprintSkipped("lookup_failed")
		return nil
	}

	if match.Detected {
		tr.addf("fingerprint matched %q by %q", match.Title, match.Artist)
	} else {
		tr.addf("fingerprint found no match")
	}
	return &match
}

// publishAlert emits the alert event. Publish failures degrade to a log
// line; the analysis result is already complete at this point.
func (o *Orchestrator) publishAlert(ctx context.Context, tr *trail, logger zerolog.Logger, analysisID, source string, alert models.AlertRecord) {
	if o.publisher == nil {
		return
	}
	event := events.AlertEvent{
		EventType:  events.EventTypeAlert,
		AnalysisID: analysisID,
		Source:     source,
		Level:      alert.Level.String(),
		Reasons:    alert.Reasons,
		Timestamp:  alert.Timestamp,
		EmittedAt:  time.Now().UnixMilli(),
	}
	if err := o.publisher.Publish(ctx, analysisID, event); err != nil {
		tr.addf("alert event publish failed: %v", err)
		logger.Warn().Err(err).Msg("Alert event publish failed")
	}
}
