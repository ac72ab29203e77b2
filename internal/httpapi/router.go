// Package httpapi exposes the analysis pipeline over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"compliance-review-service/internal/models"
	"compliance-review-service/internal/observability/logging"
	"compliance-review-service/internal/pipeline"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxUploadBytes caps multipart request memory and upload size.
const maxUploadBytes = 512 << 20

// Handler serves the analysis API.
type Handler struct {
	orch    *pipeline.Orchestrator
	tempDir string
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(orch *pipeline.Orchestrator, tempDir string) http.Handler {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	h := &Handler{orch: orch, tempDir: tempDir}

	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	r.Route("/api/analyze", func(r chi.Router) {
		r.Post("/video", h.analyzeVideo)
		r.Post("/image-text", h.analyzeImageText)
		r.Post("/text", h.analyzeText)
	})

	return r
}

func (h *Handler) analyzeVideo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart request: %v", err))
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "video file is required")
		return
	}
	defer file.Close()

	videoPath, err := h.saveUpload(file, header)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	defer os.Remove(videoPath)

	background, err := parseBackground(r.FormValue("speaker_background"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid speaker_background: %v", err))
		return
	}

	text := r.FormValue("text")
	if strings.TrimSpace(text) != "" {
		result, err := h.orch.AnalyzeCombined(r.Context(), videoPath, text, background)
		if err != nil {
			writePipelineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	result, err := h.orch.AnalyzeVideo(r.Context(), videoPath, background)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) analyzeImageText(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart request: %v", err))
		return
	}

	var imagePath string
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		imagePath, err = h.saveUpload(file, header)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "could not store upload")
			return
		}
		defer os.Remove(imagePath)
	}

	background, err := parseBackground(r.FormValue("speaker_background"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid speaker_background: %v", err))
		return
	}

	result, err := h.orch.AnalyzeImageText(r.Context(), imagePath, r.FormValue("text"), background)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type textRequest struct {
	Text              string                    `json:"text"`
	SpeakerBackground *models.BackgroundProfile `json:"speaker_background,omitempty"`
}

func (h *Handler) analyzeText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	result, err := h.orch.AnalyzeTextOnly(r.Context(), req.Text, req.SpeakerBackground)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// saveUpload streams a multipart file into a scoped temp file and returns
// its path. Callers own removal.
func (h *Handler) saveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := filepath.Ext(header.Filename)
	out, err := os.CreateTemp(h.tempDir, "upload-*"+ext)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

func parseBackground(raw string) (*models.BackgroundProfile, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var bg models.BackgroundProfile
	if err := json.Unmarshal([]byte(raw), &bg); err != nil {
		return nil, err
	}
	return &bg, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := logging.WithComponent("httpapi")
		logger.Error().Err(err).Msg("Response encode failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writePipelineError maps pipeline error kinds onto HTTP status codes.
func writePipelineError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch pipeline.KindOf(err) {
	case pipeline.KindInput:
		status = http.StatusBadRequest
	case pipeline.KindNotFound:
		status = http.StatusNotFound
	}

	var pe *pipeline.Error
	msg := "analysis failed"
	if errors.As(err, &pe) && pe.Err != nil {
		msg = pe.Err.Error()
	}
	writeError(w, status, msg)
}
