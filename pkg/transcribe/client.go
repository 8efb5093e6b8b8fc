// Package transcribe calls an OpenAI-compatible speech-to-text endpoint
// and maps its verbose output to transcript segments.
package transcribe

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"clipforge/internal/types"
	apperrors "clipforge/pkg/errors"
	"clipforge/log"
)

const defaultModel = "whisper-1"

type Client struct {
	http  *resty.Client
	model string
}

func NewClient(baseUrl, apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}

	http := resty.New().
		SetBaseURL(strings.TrimRight(baseUrl, "/")).
		SetAuthToken(apiKey)

	return &Client{
		http:  http,
		model: model,
	}
}

type verboseResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Transcribe uploads an audio file and returns timed segments.
func (c *Client) Transcribe(ctx context.Context, audioFile string) ([]types.TranscriptSegment, error) {
	var result verboseResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetFile("file", audioFile).
		SetFormData(map[string]string{
			"model":           c.model,
			"response_format": "verbose_json",
		}).
		SetResult(&result).
		Post("/audio/transcriptions")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTranscribeFailed, "Transcription request failed", err)
	}
	if resp.IsError() {
		detail := resp.Status()
		if result.Error != nil {
			detail = result.Error.Message
		}
		return nil, apperrors.WrapWithDetail(apperrors.CodeTranscribeFailed,
			"Transcription request rejected", detail,
			fmt.Errorf("status %d", resp.StatusCode()))
	}

	segments := make([]types.TranscriptSegment, 0, len(result.Segments))
	for _, seg := range result.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, types.TranscriptSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  text,
		})
	}

	log.GetLogger().Info("transcription finished",
		zap.String("audio", audioFile),
		zap.Int("segments", len(segments)))

	return segments, nil
}
