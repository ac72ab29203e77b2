// Package google provides a Google Cloud Speech-to-Text transcriber.
package google

import (
	"context"
	"fmt"
	"os"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/durationpb"

	"compliance-review-service/internal/models"
	"compliance-review-service/internal/service/transcribe"
)

// Adapter implements transcribe.Transcriber using Google Cloud
// Speech-to-Text batch recognition with word time offsets.
type Adapter struct {
	client       *speech.Client
	languageCode string
}

// New creates a new Google transcriber. With an empty credentialsFile the
// client falls back to GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, credentialsFile, languageCode string) (*Adapter, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	if languageCode == "" {
		languageCode = "en-US"
	}
	return &Adapter{client: c, languageCode: languageCode}, nil
}

// Transcribe runs batch recognition on the media file and maps each result
// to one segment, deriving segment timing from the word offsets.
func (a *Adapter) Transcribe(ctx context.Context, mediaPath string) (transcribe.Transcription, error) {
	data, err := os.ReadFile(mediaPath)
	if err != nil {
		return transcribe.Transcription{}, err
	}

	resp, err := a.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_ENCODING_UNSPECIFIED,
			LanguageCode:               a.languageCode,
			EnableWordTimeOffsets:      true,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: data},
		},
	})
	if err != nil {
		return transcribe.Transcription{}, fmt.Errorf("recognize: %w", err)
	}

	var segments models.Transcript
	var full []string
	for _, result := range resp.GetResults() {
		if len(result.GetAlternatives()) == 0 {
			continue
		}
		alt := result.GetAlternatives()[0]
		seg := models.Segment{Text: strings.TrimSpace(alt.GetTranscript())}
		for _, w := range alt.GetWords() {
			seg.Words = append(seg.Words, models.Word{
				Word:  w.GetWord(),
				Start: seconds(w.GetStartTime()),
				End:   seconds(w.GetEndTime()),
			})
		}
		if len(seg.Words) > 0 {
			seg.Start = seg.Words[0].Start
			seg.End = seg.Words[len(seg.Words)-1].End
		}
		if seg.Text == "" {
			continue
		}
		segments = append(segments, seg)
		full = append(full, seg.Text)
	}

	return transcribe.Transcription{
		Segments: segments,
		FullText: strings.Join(full, " "),
	}, nil
}

// Close releases the underlying client connection.
func (a *Adapter) Close() error {
	return a.client.Close()
}

func seconds(d *durationpb.Duration) float64 {
	if d == nil {
		return 0
	}
	return d.AsDuration().Seconds()
}
