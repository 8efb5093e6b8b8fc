package service

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"clipforge/internal/storage"
	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

const fallbackSegmentSeconds = 10.0

// GetOrCreateTranscript returns the transcript for a video. Stored
// segments win; otherwise the speech-to-text collaborator fills them in
// when configured, and fixed ten-second buckets are synthesized as the
// last resort so moment selection always has something to chew on.
func (s *Service) GetOrCreateTranscript(ctx context.Context, videoId string) ([]types.TranscriptSegment, error) {
	video, err := storage.GetVideo(videoId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "Video not found", err)
	}

	stored, err := storage.GetTranscript(videoId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "Failed to load transcript", err)
	}
	if len(stored) > 0 {
		return stored, nil
	}

	if s.Transcriber != nil {
		segments, err := s.transcribeVideo(ctx, video)
		if err == nil && len(segments) > 0 {
			if err := storage.SaveTranscript(videoId, segments); err != nil {
				log.GetLogger().Error("failed to store transcript",
					zap.String("video_id", videoId), zap.Error(err))
			}
			return segments, nil
		}
		log.GetLogger().Warn("transcription failed, synthesizing segments",
			zap.String("video_id", videoId), zap.Error(err))
	}

	segments := SynthesizeSegments(video.Duration)
	if err := storage.SaveTranscript(videoId, segments); err != nil {
		log.GetLogger().Error("failed to store synthesized transcript",
			zap.String("video_id", videoId), zap.Error(err))
	}
	return segments, nil
}

func (s *Service) transcribeVideo(ctx context.Context, video *types.Video) ([]types.TranscriptSegment, error) {
	audioPath, err := s.Invoker.ExtractAudio(ctx, video.Path)
	if err != nil {
		return nil, err
	}
	defer os.Remove(audioPath)

	return s.Transcriber.Transcribe(ctx, audioPath)
}

// SynthesizeSegments builds fixed ten-second buckets covering the whole
// duration, the last bucket truncated to the video end.
func SynthesizeSegments(duration float64) []types.TranscriptSegment {
	if duration <= 0 {
		return []types.TranscriptSegment{}
	}

	count := int(math.Ceil(duration / fallbackSegmentSeconds))
	segments := make([]types.TranscriptSegment, 0, count)
	for i := 0; i < count; i++ {
		start := float64(i) * fallbackSegmentSeconds
		end := math.Min(start+fallbackSegmentSeconds, duration)
		segments = append(segments, types.TranscriptSegment{
			Start: start,
			End:   end,
			Text:  fmt.Sprintf("Segment %d", i+1),
		})
	}
	return segments
}

// ImportSrtTranscript parses SRT content and stores it as the video's
// transcript, replacing whatever was there.
func (s *Service) ImportSrtTranscript(videoId, srtContent string) ([]types.TranscriptSegment, error) {
	if _, err := storage.GetVideo(videoId); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "Video not found", err)
	}

	segments := ParseSrt(srtContent)
	if len(segments) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidParams, "No usable segments in SRT content")
	}

	if err := storage.SaveTranscript(videoId, segments); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "Failed to store transcript", err)
	}
	return segments, nil
}

// ParseSrt converts SRT subtitle text into transcript segments, skipping
// malformed blocks.
func ParseSrt(content string) []types.TranscriptSegment {
	var segments []types.TranscriptSegment

	blocks := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n")
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 3 {
			continue
		}

		timeLine := lines[1]
		if !strings.Contains(timeLine, " --> ") {
			continue
		}
		parts := strings.SplitN(timeLine, " --> ", 2)
		start := srtTimeToSeconds(strings.TrimSpace(parts[0]))
		end := srtTimeToSeconds(strings.TrimSpace(parts[1]))
		if end <= start {
			continue
		}

		text := strings.TrimSpace(strings.Join(lines[2:], " "))
		if text == "" {
			continue
		}

		segments = append(segments, types.TranscriptSegment{
			Start: start,
			End:   end,
			Text:  text,
		})
	}

	return segments
}

// srtTimeToSeconds parses "00:01:23,456" (or with a dot) into seconds.
func srtTimeToSeconds(value string) float64 {
	value = strings.ReplaceAll(value, ",", ".")
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0
	}

	hours, _ := strconv.ParseFloat(parts[0], 64)
	minutes, _ := strconv.ParseFloat(parts[1], 64)
	seconds, _ := strconv.ParseFloat(parts[2], 64)
	return hours*3600 + minutes*60 + seconds
}
