package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"compliance-review-service/internal/models"
	"compliance-review-service/internal/service/detect"
	detectmock "compliance-review-service/internal/service/detect/mock"
	fingerprintmock "compliance-review-service/internal/service/fingerprint/mock"
	"compliance-review-service/internal/service/media"
	rejudgemock "compliance-review-service/internal/service/rejudge/mock"
	transcribemock "compliance-review-service/internal/service/transcribe/mock"
)

func mockProviders() Providers {
	return Providers{
		Transcriber: transcribemock.New(),
		Detector:    detectmock.New(),
		Judge:       rejudgemock.New(),
	}
}

// writeTempVideo creates a placeholder video file; the mock providers never
// read its contents.
func writeTempVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.mp4")
	if err := os.WriteFile(path, []byte("not a real video"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAnalyzeVideo_FlagsSensitiveContent(t *testing.T) {
	orch := New(mockProviders(), nil, t.TempDir())

	result, err := orch.AnalyzeVideo(context.Background(), writeTempVideo(t), nil)
	if err != nil {
		t.Fatalf("AnalyzeVideo: %v", err)
	}

	// The default mock transcript mentions a leaked customer list, which the
	// mock detector rates high.
	if result.Alert.Level != models.LevelSevere {
		t.Errorf("level = %v, want severe", result.Alert.Level)
	}
	if len(result.Transcript) != len(transcribemock.DefaultSegments) {
		t.Errorf("transcript has %d segments, want %d", len(result.Transcript), len(transcribemock.DefaultSegments))
	}
	if result.Alert.Timestamp == models.TimestampUnknown {
		t.Errorf("timestamp should resolve to the matched segment, got %q", result.Alert.Timestamp)
	}
	if len(result.Logs) == 0 {
		t.Error("expected a non-empty processing log")
	}
	if result.AnalysisID == "" {
		t.Error("expected an analysis id")
	}
}

func TestAnalyzeVideo_MissingFile(t *testing.T) {
	orch := New(mockProviders(), nil, t.TempDir())

	_, err := orch.AnalyzeVideo(context.Background(), filepath.Join(t.TempDir(), "absent.mp4"), nil)
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if KindOf(err) != KindNotFound {
		t.Errorf("kind = %v, want KindNotFound", KindOf(err))
	}
}

func TestAnalyzeVideo_TranscriberFailure(t *testing.T) {
	providers := mockProviders()
	providers.Transcriber = &transcribemock.Adapter{Err: errors.New("stt unavailable")}
	orch := New(providers, nil, t.TempDir())

	_, err := orch.AnalyzeVideo(context.Background(), writeTempVideo(t), nil)
	if err == nil {
		t.Fatal("expected an error when transcription fails")
	}
	if KindOf(err) != KindProvider {
		t.Errorf("kind = %v, want KindProvider", KindOf(err))
	}
}

func TestAnalyzeVideo_JudgeFailure(t *testing.T) {
	providers := mockProviders()
	providers.Judge = &rejudgemock.Judge{Err: errors.New("llm timeout")}
	orch := New(providers, nil, t.TempDir())

	_, err := orch.AnalyzeVideo(context.Background(), writeTempVideo(t), nil)
	if err == nil {
		t.Fatal("expected an error when re-judgment fails")
	}
	if KindOf(err) != KindProvider {
		t.Errorf("kind = %v, want KindProvider", KindOf(err))
	}
}

// A fingerprint failure degrades the analysis instead of failing it.
func TestAnalyzeVideo_FingerprintDegradesGracefully(t *testing.T) {
	providers := mockProviders()
	providers.Fingerprint = &fingerprintmock.Matcher{Err: errors.New("catalog unreachable")}
	providers.Extractor = media.ExtractorFunc(func(ctx context.Context, videoPath, outPath string) bool {
		return true
	})
	orch := New(providers, nil, t.TempDir())

	result, err := orch.AnalyzeVideo(context.Background(), writeTempVideo(t), nil)
	if err != nil {
		t.Fatalf("AnalyzeVideo should succeed without fingerprinting: %v", err)
	}

	degraded := false
	for _, line := range result.Logs {
		if strings.Contains(line, "fingerprint lookup failed") {
			degraded = true
		}
	}
	if !degraded {
		t.Errorf("logs %v missing the degraded-fingerprint entry", result.Logs)
	}
}

func TestAnalyzeVideo_CopyrightedMusicForcesSevere(t *testing.T) {
	providers := mockProviders()
	providers.Fingerprint = &fingerprintmock.Matcher{Result: models.FingerprintMatch{
		Detected:    true,
		Copyrighted: true,
		Title:       "Moonlight Drive",
		Artist:      "The Examples",
		Start:       10,
		End:         40,
		HasRange:    true,
	}}
	providers.Extractor = media.ExtractorFunc(func(ctx context.Context, videoPath, outPath string) bool {
		return true
	})
	orch := New(providers, nil, t.TempDir())

	result, err := orch.AnalyzeVideo(context.Background(), writeTempVideo(t), nil)
	if err != nil {
		t.Fatalf("AnalyzeVideo: %v", err)
	}

	if result.Alert.Level != models.LevelSevere {
		t.Errorf("level = %v, want severe", result.Alert.Level)
	}
	found := false
	for _, r := range result.Alert.Reasons {
		if strings.Contains(r, "copyrighted music detected") {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons %v missing the fingerprint reason", result.Alert.Reasons)
	}
}

// The extracted audio staging file must not survive the analysis.
func TestAnalyzeVideo_TempAudioRemoved(t *testing.T) {
	tempDir := t.TempDir()
	providers := mockProviders()
	providers.Fingerprint = fingerprintmock.New()
	providers.Extractor = media.ExtractorFunc(func(ctx context.Context, videoPath, outPath string) bool {
		if err := os.WriteFile(outPath, []byte("audio"), 0o600); err != nil {
			t.Fatal(err)
		}
		return true
	})
	orch := New(providers, nil, tempDir)

	if _, err := orch.AnalyzeVideo(context.Background(), writeTempVideo(t), nil); err != nil {
		t.Fatalf("AnalyzeVideo: %v", err)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "audio-") {
			t.Errorf("staged audio file %s left behind", e.Name())
		}
	}
}

func TestAnalyzeImageText_RequiresInput(t *testing.T) {
	orch := New(mockProviders(), nil, t.TempDir())

	_, err := orch.AnalyzeImageText(context.Background(), "", "   ", nil)
	if err == nil {
		t.Fatal("expected an error with neither image nor text")
	}
	if KindOf(err) != KindInput {
		t.Errorf("kind = %v, want KindInput", KindOf(err))
	}
}

func TestAnalyzeTextOnly(t *testing.T) {
	orch := New(mockProviders(), nil, t.TempDir())

	result, err := orch.AnalyzeTextOnly(context.Background(), "someone made an inappropriate remark in the meeting", nil)
	if err != nil {
		t.Fatalf("AnalyzeTextOnly: %v", err)
	}

	if len(result.Analysis.Violations) != 1 {
		t.Fatalf("violations = %d, want 1", len(result.Analysis.Violations))
	}
	if result.Analysis.RiskLevel != models.SeverityMedium {
		t.Errorf("risk = %v, want medium", result.Analysis.RiskLevel)
	}
}

func TestAnalyzeTextOnly_EmptyText(t *testing.T) {
	orch := New(mockProviders(), nil, t.TempDir())

	_, err := orch.AnalyzeTextOnly(context.Background(), "  ", nil)
	if err == nil {
		t.Fatal("expected an error for empty text")
	}
	if KindOf(err) != KindInput {
		t.Errorf("kind = %v, want KindInput", KindOf(err))
	}
}

func TestAnalyzeCombined_IntegratesBothSources(t *testing.T) {
	orch := New(mockProviders(), nil, t.TempDir())

	result, err := orch.AnalyzeCombined(context.Background(), writeTempVideo(t),
		"we need to talk about the customer data leak", nil)
	if err != nil {
		t.Fatalf("AnalyzeCombined: %v", err)
	}

	if result.VideoAlert == nil || result.TextAlert == nil {
		t.Fatal("expected alerts from both sources")
	}
	if result.Alert.Level != models.LevelSevere {
		t.Errorf("integrated level = %v, want severe", result.Alert.Level)
	}

	var sawVideo, sawText bool
	for _, r := range result.Alert.Reasons {
		if strings.HasPrefix(r, "[video analysis]: ") {
			sawVideo = true
		}
		if strings.HasPrefix(r, "[text analysis]: ") {
			sawText = true
		}
	}
	if !sawVideo || !sawText {
		t.Errorf("reasons %v should carry both source labels", result.Alert.Reasons)
	}
}

func TestAnalyzeCombined_TextOnlyPassesThrough(t *testing.T) {
	orch := New(mockProviders(), nil, t.TempDir())

	result, err := orch.AnalyzeCombined(context.Background(), "",
		"we need to talk about the customer data leak", nil)
	if err != nil {
		t.Fatalf("AnalyzeCombined: %v", err)
	}

	if result.VideoAlert != nil {
		t.Error("no video was supplied, video alert should be nil")
	}
	if result.TextAlert == nil {
		t.Fatal("expected a text alert")
	}
	for _, r := range result.Alert.Reasons {
		if strings.HasPrefix(r, "[text analysis]: ") {
			t.Errorf("single-source integration must not label reasons, got %q", r)
		}
	}
}

func detectVideoFixture() detect.VideoDetection {
	return detect.VideoDetection{
		Risk:     models.SeverityMedium,
		Category: "information-security",
		Keywords: []string{"customer list"},
		Summary:  "detection summary",
		Snippet:  "detection snippet",
		Violations: []models.Violation{
			{
				Kind:        models.ViolationSpeech,
				Description: "own description",
				Severity:    models.SeverityHigh,
				RelatedText: "own snippet",
			},
			{
				Kind: models.ViolationSpeech,
			},
		},
	}
}

func TestViolationSignals_FallbackToDetectionFields(t *testing.T) {
	d := detectVideoFixture()

	signals := violationSignals(d)

	if len(signals) != 2 {
		t.Fatalf("signals = %d, want one per violation", len(signals))
	}
	if signals[0].Snippet != "own snippet" {
		t.Errorf("signal 0 snippet = %q, want the violation's own", signals[0].Snippet)
	}
	if signals[1].Snippet != "detection snippet" {
		t.Errorf("signal 1 snippet = %q, want the detection-level fallback", signals[1].Snippet)
	}
	if signals[1].Risk != models.SeverityMedium {
		t.Errorf("signal 1 risk = %v, want the detection-level rating", signals[1].Risk)
	}
}

func TestViolationSignals_NoViolationsStillAssessed(t *testing.T) {
	d := detectVideoFixture()
	d.Violations = nil

	signals := violationSignals(d)

	if len(signals) != 1 {
		t.Fatalf("signals = %d, want the single detection-level signal", len(signals))
	}
	if signals[0].Snippet != "detection snippet" {
		t.Errorf("signal snippet = %q, want the detection-level one", signals[0].Snippet)
	}
}
