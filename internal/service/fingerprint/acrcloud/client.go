// Package acrcloud provides a music-fingerprint matcher backed by the
// ACRCloud identification API.
package acrcloud

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"compliance-review-service/internal/models"
)

const identifyPath = "/v1/identify"

// Status codes from the ACRCloud API.
const (
	statusSuccess  = 0
	statusNoResult = 1001
)

// Config holds the matcher configuration.
type Config struct {
	Host         string
	AccessKey    string
	AccessSecret string
}

// Client implements fingerprint.Matcher against the ACRCloud API.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

// New creates a new ACRCloud matcher.
func New(cfg Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cfg:        cfg,
	}
}

type identifyResponse struct {
	Status struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"status"`
	Metadata struct {
		Music []struct {
			Title   string `json:"title"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name string `json:"name"`
			} `json:"album"`
			Genres []struct {
				Name string `json:"name"`
			} `json:"genres"`
			PlayOffsetMs int64 `json:"play_offset_ms"`
			DurationMs   int64 `json:"duration_ms"`
		} `json:"music"`
	} `json:"metadata"`
}

// Match uploads the audio sample and maps the first identified track. Any
// identified track is treated as copyrighted.
func (c *Client) Match(ctx context.Context, audioPath string) (models.FingerprintMatch, error) {
	sample, err := os.ReadFile(audioPath)
	if err != nil {
		return models.FingerprintMatch{}, err
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := c.sign(timestamp)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("sample", filepath.Base(audioPath))
	if err != nil {
		return models.FingerprintMatch{}, err
	}
	if _, err := part.Write(sample); err != nil {
		return models.FingerprintMatch{}, err
	}
	_ = mw.WriteField("access_key", c.cfg.AccessKey)
	_ = mw.WriteField("sample_bytes", strconv.Itoa(len(sample)))
	_ = mw.WriteField("timestamp", timestamp)
	_ = mw.WriteField("signature", signature)
	_ = mw.WriteField("data_type", "audio")
	_ = mw.WriteField("signature_version", "1")
	if err := mw.Close(); err != nil {
		return models.FingerprintMatch{}, err
	}

	url := "https://" + c.cfg.Host + identifyPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return models.FingerprintMatch{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.FingerprintMatch{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.FingerprintMatch{}, err
	}

	var id identifyResponse
	if err := json.Unmarshal(raw, &id); err != nil {
		return models.FingerprintMatch{}, fmt.Errorf("decode identify response: %w", err)
	}

	switch id.Status.Code {
	case statusSuccess:
	case statusNoResult:
		return models.FingerprintMatch{}, nil
	default:
		return models.FingerprintMatch{}, fmt.Errorf("identify failed: code=%d msg=%s", id.Status.Code, id.Status.Msg)
	}

	if len(id.Metadata.Music) == 0 {
		return models.FingerprintMatch{}, nil
	}

	music := id.Metadata.Music[0]
	artists := make([]string, 0, len(music.Artists))
	for _, a := range music.Artists {
		artists = append(artists, a.Name)
	}
	genres := make([]string, 0, len(music.Genres))
	for _, g := range music.Genres {
		genres = append(genres, g.Name)
	}

	return models.FingerprintMatch{
		Detected:    true,
		Title:       music.Title,
		Artist:      strings.Join(artists, ", "),
		Album:       music.Album.Name,
		Genres:      strings.Join(genres, ", "),
		Start:       float64(music.PlayOffsetMs) / 1000.0,
		End:         float64(music.PlayOffsetMs+music.DurationMs) / 1000.0,
		HasRange:    true,
		Copyrighted: true,
	}, nil
}

// sign builds the version-1 request signature.
func (c *Client) sign(timestamp string) string {
	toSign := strings.Join([]string{
		http.MethodPost, identifyPath, c.cfg.AccessKey, "audio", "1", timestamp,
	}, "\n")
	mac := hmac.New(sha1.New, []byte(c.cfg.AccessSecret))
	mac.Write([]byte(toSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
