// Package openai provides a contextual re-judge backed by an
// OpenAI-compatible chat completions endpoint in JSON mode.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"compliance-review-service/internal/models"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Config holds the client configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client implements rejudge.Judge against the chat completions API.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

// New creates a new re-judge client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		cfg:        cfg,
	}
}

const systemPrompt = "You are an expert assessing compliance risk in meeting " +
	"records and public posts. Judge the intent of the flagged statement " +
	"strictly from the provided context."

const userPrompt = `The following text is an excerpt around timestamp %q with a potential
issue in the field %q. Judge the intent of the problematic statement (irony,
joke, serious communication, question, factual report) and whether the
context amplifies or mitigates the compliance risk. Respond with JSON only:
{
  "contextual_intent": "description of intent and nuance",
  "risk_assessment": "impact of the context on the compliance risk",
  "additional_risk_factor": "extra risk or mitigating factor, or 'none'",
  "risk_modifier": "amplify | mitigate | none",
  "speaker_context_impact": "how the speaker background changes the picture, or 'none'",
  "final_judgment": "one-line overall judgment"
}

Context:
%s%s`

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type judgementWire struct {
	ContextualIntent     string `json:"contextual_intent"`
	RiskAssessment       string `json:"risk_assessment"`
	AdditionalRiskFactor string `json:"additional_risk_factor"`
	RiskModifier         string `json:"risk_modifier"`
	SpeakerContextImpact string `json:"speaker_context_impact"`
	FinalJudgment        string `json:"final_judgment"`
}

// Judge sends the context window for assessment and decodes the structured
// judgement.
func (c *Client) Judge(ctx context.Context, contextText string, incident models.IncidentDetails, background *models.BackgroundProfile) (models.ContextJudgement, error) {
	var bg string
	if background != nil {
		bg = fmt.Sprintf("\n\nSpeaker background: name %s", background.Name)
		if background.CharacterType != "" {
			bg += ", character " + background.CharacterType
		}
		if len(background.PastIncidents) > 0 {
			bg += ", past incidents: " + strings.Join(background.PastIncidents, "; ")
		}
	}

	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPrompt, incident.TimestampLabel, incident.RelevantField, contextText, bg)},
		},
	}
	req.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(req)
	if err != nil {
		return models.ContextJudgement{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return models.ContextJudgement{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return models.ContextJudgement{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return models.ContextJudgement{}, fmt.Errorf("re-judge request failed: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return models.ContextJudgement{}, fmt.Errorf("decode re-judge response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return models.ContextJudgement{}, fmt.Errorf("re-judge returned no choices")
	}

	var wire judgementWire
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &wire); err != nil {
		return models.ContextJudgement{}, fmt.Errorf("unparseable re-judge response: %w", err)
	}

	return models.ContextJudgement{
		ContextualIntent:     wire.ContextualIntent,
		RiskAssessment:       wire.RiskAssessment,
		AdditionalRiskFactor: wire.AdditionalRiskFactor,
		RiskModifier:         models.ParseModifier(wire.RiskModifier),
		SpeakerContextImpact: wire.SpeakerContextImpact,
		FinalJudgment:        wire.FinalJudgment,
	}, nil
}
