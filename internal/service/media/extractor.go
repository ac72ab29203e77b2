// Package media shells out to ffmpeg for audio extraction.
package media

import (
	"context"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// Extractor extracts the audio track of a video into a standalone file.
// A false return means the extraction failed; callers treat that as a
// degraded feature, not an error.
type Extractor interface {
	Extract(ctx context.Context, videoPath, outPath string) bool
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, videoPath, outPath string) bool

// Extract calls the wrapped function.
func (f ExtractorFunc) Extract(ctx context.Context, videoPath, outPath string) bool {
	return f(ctx, videoPath, outPath)
}

// FFmpeg implements Extractor by invoking the ffmpeg binary.
type FFmpeg struct {
	Path string
}

// NewFFmpeg creates an extractor using the given binary path, defaulting to
// "ffmpeg" on PATH.
func NewFFmpeg(path string) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{Path: path}
}

// Extract pulls the audio stream out of the video at high quality.
func (f *FFmpeg) Extract(ctx context.Context, videoPath, outPath string) bool {
	cmd := exec.CommandContext(ctx, f.Path,
		"-y",
		"-i", videoPath,
		"-q:a", "0",
		"-map", "a",
		outPath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		log.Warn().
			Err(err).
			Str("video", videoPath).
			Str("ffmpegOutput", tail(string(out), 512)).
			Msg("Audio extraction failed")
		return false
	}
	return true
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
