// Package openai provides a Whisper-style transcriber that talks to an
// OpenAI-compatible audio transcription endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"compliance-review-service/internal/models"
	"compliance-review-service/internal/service/transcribe"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Config holds the adapter configuration.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
}

// Adapter implements transcribe.Transcriber against the OpenAI audio API.
type Adapter struct {
	httpClient *http.Client
	cfg        Config
}

// New creates a new OpenAI transcriber.
func New(cfg Config) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	return &Adapter{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		cfg:        cfg,
	}
}

type wireWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type wireSegment struct {
	Start float64    `json:"start"`
	End   float64    `json:"end"`
	Text  string     `json:"text"`
	Words []wireWord `json:"words"`
}

type wireResponse struct {
	Text     string        `json:"text"`
	Segments []wireSegment `json:"segments"`
}

// Transcribe uploads the media file and decodes the verbose JSON response.
// A response without segment timing collapses to a single untimed segment
// carrying the full text.
func (a *Adapter) Transcribe(ctx context.Context, mediaPath string) (transcribe.Transcription, error) {
	f, err := os.Open(mediaPath)
	if err != nil {
		return transcribe.Transcription{}, err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(mediaPath))
	if err != nil {
		return transcribe.Transcription{}, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return transcribe.Transcription{}, err
	}
	_ = mw.WriteField("model", a.cfg.Model)
	_ = mw.WriteField("response_format", "verbose_json")
	if a.cfg.Language != "" {
		_ = mw.WriteField("language", a.cfg.Language)
	}
	if err := mw.Close(); err != nil {
		return transcribe.Transcription{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return transcribe.Transcription{}, err
	}
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return transcribe.Transcription{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return transcribe.Transcription{}, fmt.Errorf("transcription request failed: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return transcribe.Transcription{}, fmt.Errorf("decode transcription response: %w", err)
	}

	if len(wire.Segments) == 0 {
		return transcribe.Transcription{
			Segments: models.Transcript{{Start: 0, End: 0, Text: strings.TrimSpace(wire.Text)}},
			FullText: strings.TrimSpace(wire.Text),
		}, nil
	}

	var segments models.Transcript
	for _, s := range wire.Segments {
		seg := models.Segment{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)}
		for _, w := range s.Words {
			seg.Words = append(seg.Words, models.Word{Word: w.Word, Start: w.Start, End: w.End})
		}
		segments = append(segments, seg)
	}
	return transcribe.Transcription{Segments: segments, FullText: strings.TrimSpace(wire.Text)}, nil
}
