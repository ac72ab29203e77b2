// Package gemini provides a content-violation detector backed by the
// Gemini generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"compliance-review-service/internal/models"
	"compliance-review-service/internal/service/detect"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Config holds the client configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client implements detect.Detector against the Gemini REST API.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

// New creates a new Gemini detector client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-pro"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		cfg:        cfg,
	}
}

const videoPrompt = `Analyse the following transcript for possible compliance violations and
organisational risk (inappropriate remarks, hints of data leaks, signs of
misconduct). Respond with JSON only, in this shape:
{
  "potential_issue": "summary of the main issue or risk",
  "incident_category": "compliance field, e.g. information-security, harassment, financial-reporting",
  "keywords": ["keyword", ...],
  "summary": "what was detected, its background and potential impact",
  "risk_assessment": "high | medium | low",
  "relevant_text_snippet": "verbatim excerpt of the problematic text (max ~200 chars)",
  "violations": [
    {"kind": "action|speech", "description": "...", "start": 0.0, "end": 0.0,
     "severity": "high|medium|low", "related_text": "..."}
  ]
}

Transcript:
%s`

const imageTextPrompt = `Analyse the following content for compliance risk. Respond with JSON only:
{
  "summary": "...",
  "risk_level": "high | medium | low",
  "recommendations": ["...", ...],
  "violations": [
    {"kind": "action|speech", "description": "...", "severity": "high|medium|low",
     "location": "...", "detected_text": "...", "image_content": "...",
     "context_analysis": "..."}
  ]
}
%s`

type generatePart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *generateInlineOf `json:"inline_data,omitempty"`
}

type generateInlineOf struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateRequest struct {
	Contents []struct {
		Parts []generatePart `json:"parts"`
	} `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type videoWire struct {
	PotentialIssue      string   `json:"potential_issue"`
	IncidentCategory    string   `json:"incident_category"`
	Keywords            []string `json:"keywords"`
	Summary             string   `json:"summary"`
	RiskAssessment      string   `json:"risk_assessment"`
	RelevantTextSnippet string   `json:"relevant_text_snippet"`
	Violations          []struct {
		Kind        string  `json:"kind"`
		Description string  `json:"description"`
		Start       float64 `json:"start"`
		End         float64 `json:"end"`
		Severity    string  `json:"severity"`
		RelatedText string  `json:"related_text"`
	} `json:"violations"`
}

type imageTextWire struct {
	Summary         string   `json:"summary"`
	RiskLevel       string   `json:"risk_level"`
	Recommendations []string `json:"recommendations"`
	Violations      []struct {
		Kind            string `json:"kind"`
		Description     string `json:"description"`
		Severity        string `json:"severity"`
		Location        string `json:"location"`
		DetectedText    string `json:"detected_text"`
		ImageContent    string `json:"image_content"`
		ContextAnalysis string `json:"context_analysis"`
	} `json:"violations"`
}

// DetectVideo analyses the transcript of a video.
func (c *Client) DetectVideo(ctx context.Context, videoPath string, transcript models.Transcript) (detect.VideoDetection, error) {
	return c.deepAnalyse(ctx, transcript.PlainText(), nil)
}

// DetectText runs the same deep analysis on plain text.
func (c *Client) DetectText(ctx context.Context, text string, background *models.BackgroundProfile) (detect.VideoDetection, error) {
	return c.deepAnalyse(ctx, text, background)
}

func (c *Client) deepAnalyse(ctx context.Context, text string, background *models.BackgroundProfile) (detect.VideoDetection, error) {
	prompt := fmt.Sprintf(videoPrompt, text)
	if background != nil {
		prompt += "\n\nSpeaker background: " + describeBackground(background)
	}

	raw, err := c.generate(ctx, []generatePart{{Text: prompt}})
	if err != nil {
		return detect.VideoDetection{}, err
	}

	var wire videoWire
	if err := json.Unmarshal(extractJSON(raw), &wire); err != nil {
		return detect.VideoDetection{}, fmt.Errorf("unparseable detector response: %w", err)
	}

	out := detect.VideoDetection{
		Summary:  firstNonEmpty(wire.Summary, wire.PotentialIssue),
		Category: wire.IncidentCategory,
		Keywords: wire.Keywords,
		Risk:     models.ParseSeverity(wire.RiskAssessment),
		Snippet:  wire.RelevantTextSnippet,
	}
	for _, v := range wire.Violations {
		out.Violations = append(out.Violations, models.Violation{
			Kind:        parseKind(v.Kind),
			Description: v.Description,
			Start:       v.Start,
			End:         v.End,
			Severity:    models.ParseSeverity(v.Severity),
			RelatedText: v.RelatedText,
		})
	}
	return out, nil
}

// DetectImageText runs the combined multimodal analysis.
func (c *Client) DetectImageText(ctx context.Context, imagePath, text string, background *models.BackgroundProfile) (detect.ImageTextAnalysis, error) {
	var parts []generatePart
	if imagePath != "" {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			return detect.ImageTextAnalysis{}, err
		}
		parts = append(parts, generatePart{InlineData: &generateInlineOf{
			MimeType: mimeForImage(imagePath),
			Data:     base64.StdEncoding.EncodeToString(data),
		}})
	}

	var sb strings.Builder
	if text != "" {
		sb.WriteString("\nAccompanying text:\n")
		sb.WriteString(text)
	}
	if background != nil {
		sb.WriteString("\nAuthor background: ")
		sb.WriteString(describeBackground(background))
	}
	parts = append(parts, generatePart{Text: fmt.Sprintf(imageTextPrompt, sb.String())})

	raw, err := c.generate(ctx, parts)
	if err != nil {
		return detect.ImageTextAnalysis{}, err
	}

	var wire imageTextWire
	if err := json.Unmarshal(extractJSON(raw), &wire); err != nil {
		return detect.ImageTextAnalysis{}, fmt.Errorf("unparseable detector response: %w", err)
	}

	out := detect.ImageTextAnalysis{
		Summary:         wire.Summary,
		RiskLevel:       models.ParseSeverity(wire.RiskLevel),
		Recommendations: wire.Recommendations,
	}
	for _, v := range wire.Violations {
		out.Violations = append(out.Violations, detect.ImageTextViolation{
			Kind:            parseKind(v.Kind),
			Description:     v.Description,
			Severity:        models.ParseSeverity(v.Severity),
			Location:        v.Location,
			DetectedText:    v.DetectedText,
			ImageContent:    v.ImageContent,
			ContextAnalysis: v.ContextAnalysis,
		})
	}
	return out, nil
}

func (c *Client) generate(ctx context.Context, parts []generatePart) (string, error) {
	var req generateRequest
	req.Contents = append(req.Contents, struct {
		Parts []generatePart `json:"parts"`
	}{Parts: parts})

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, c.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("detector request failed: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var gen generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return "", fmt.Errorf("decode detector response: %w", err)
	}
	if len(gen.Candidates) == 0 || len(gen.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("detector returned no candidates")
	}
	return gen.Candidates[0].Content.Parts[0].Text, nil
}

// extractJSON strips markdown fences and any surrounding prose, keeping the
// outermost JSON object.
func extractJSON(s string) []byte {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return []byte(s)
	}
	return []byte(s[start : end+1])
}

func parseKind(s string) models.ViolationKind {
	if strings.EqualFold(strings.TrimSpace(s), "action") {
		return models.ViolationAction
	}
	return models.ViolationSpeech
}

func describeBackground(bg *models.BackgroundProfile) string {
	parts := []string{"name: " + bg.Name}
	if bg.CharacterType != "" {
		parts = append(parts, "character: "+bg.CharacterType)
	}
	if bg.UsualStyle != "" {
		parts = append(parts, "usual style: "+bg.UsualStyle)
	}
	if len(bg.PastIncidents) > 0 {
		parts = append(parts, "past incidents: "+strings.Join(bg.PastIncidents, "; "))
	}
	return strings.Join(parts, ", ")
}

func mimeForImage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
