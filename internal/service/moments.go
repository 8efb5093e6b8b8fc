package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"go.uber.org/zap"

	"clipforge/config"
	"clipforge/internal/storage"
	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
	"clipforge/pkg/util"
)

const momentSelectorSystemPrompt = "You are a video content analyzer that helps identify the most impactful moments for GIF creation."

// captionSimilarityThreshold is the normalized levenshtein similarity
// above which two captions count as duplicates.
const captionSimilarityThreshold = 0.85

// SuggestMoments asks the LLM for GIF-worthy spans of a video. Analysis
// is best-effort: when the model misbehaves the caller gets an empty
// slice, never junk suggestions.
func (s *Service) SuggestMoments(ctx context.Context, videoId string, maxResults int) ([]types.SuggestedMoment, error) {
	video, err := storage.GetVideo(videoId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "Video not found", err)
	}

	segments, err := s.GetOrCreateTranscript(ctx, videoId)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return []types.SuggestedMoment{}, nil
	}

	policy := config.Conf.Policy
	userPrompt := fmt.Sprintf(types.MomentSelectionPrompt,
		policy.MinClipSeconds, policy.MaxClipSeconds, policy.MaxCaptionLength,
		formatTranscript(segments))

	reply, err := s.ChatCompleter.ChatCompletion(momentSelectorSystemPrompt, userPrompt)
	if err != nil {
		log.GetLogger().Error("moment selection request failed",
			zap.String("video_id", videoId), zap.Error(err))
		return []types.SuggestedMoment{}, nil
	}

	var raw []types.SuggestedMoment
	if err := json.Unmarshal([]byte(util.ExtractJsonFromText(reply)), &raw); err != nil {
		log.GetLogger().Error("moment selection reply unparseable",
			zap.String("video_id", videoId), zap.Error(err))
		return []types.SuggestedMoment{}, nil
	}

	moments := ValidateMoments(raw, video.Duration)
	moments = dedupeCaptions(moments)

	if maxResults > 0 && len(moments) > maxResults {
		moments = moments[:maxResults]
	}

	log.GetLogger().Info("moment selection finished",
		zap.String("video_id", videoId),
		zap.Int("raw", len(raw)),
		zap.Int("accepted", len(moments)))
	return moments, nil
}

func formatTranscript(segments []types.TranscriptSegment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, fmt.Sprintf("[%.1f-%.1fs] %s", seg.Start, seg.End, seg.Text))
	}
	return strings.Join(lines, "\n")
}

// ValidateMoments drops every suggestion that violates policy: bad
// numbers, out-of-range duration, over-long caption, confidence outside
// [0,1], or a span past the end of the video. Survivors come back
// sorted by confidence, highest first.
func ValidateMoments(raw []types.SuggestedMoment, videoDuration float64) []types.SuggestedMoment {
	policy := config.Conf.Policy
	minDur := float64(policy.MinClipSeconds)
	maxDur := float64(policy.MaxClipSeconds)
	maxCaption := policy.MaxCaptionLength

	valid := make([]types.SuggestedMoment, 0, len(raw))
	for _, m := range raw {
		duration := m.EndTime - m.StartTime
		switch {
		case m.StartTime < 0:
		case m.EndTime <= m.StartTime:
		case duration < minDur || duration > maxDur:
		case len([]rune(m.Caption)) > maxCaption:
		case m.Confidence < 0 || m.Confidence > 1:
		case videoDuration > 0 && m.EndTime > videoDuration:
		default:
			m.Caption = strings.TrimSpace(m.Caption)
			valid = append(valid, m)
			continue
		}
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Confidence > valid[j].Confidence
	})
	return valid
}

// dedupeCaptions keeps the first (highest confidence) of any set of
// near-identical captions.
func dedupeCaptions(moments []types.SuggestedMoment) []types.SuggestedMoment {
	kept := make([]types.SuggestedMoment, 0, len(moments))
	for _, candidate := range moments {
		duplicate := false
		for _, existing := range kept {
			if captionSimilarity(candidate.Caption, existing.Caption) >= captionSimilarityThreshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, candidate)
		}
	}
	return kept
}

func captionSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	distance := levenshtein.DistanceForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	return 1 - float64(distance)/float64(longest)
}
