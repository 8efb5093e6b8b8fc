package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"clipforge/internal/types"
	apperrors "clipforge/pkg/errors"
)

// Limits are the policy bounds applied to probed uploads.
type Limits struct {
	MaxDuration float64 // seconds, 0 disables the check
	MaxHeight   int     // pixels, 0 disables the check
}

type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		Size       string `json:"size"`
	} `json:"format"`
}

// Probe inspects a media file and enforces the given limits. The same
// file always yields the same verdict; probing does not mutate anything.
func (i *Invoker) Probe(ctx context.Context, path string, limits Limits) (types.MediaMetadata, error) {
	var meta types.MediaMetadata

	if _, err := os.Stat(path); err != nil {
		return meta, apperrors.Wrap(apperrors.CodeFileNotFound, "File not found", err)
	}

	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}

	out, err := i.RunProbe(ctx, args)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return meta, apperrors.Wrap(apperrors.CodeProbeTimeout, "Media probe timed out", err)
		}
		return meta, apperrors.Wrap(apperrors.CodeProbeFailed, "Media probe failed", err)
	}

	return parseProbeOutput(out, limits)
}

// parseProbeOutput turns raw ffprobe JSON into metadata and applies the
// limits. Split out so the policy checks are testable without a binary.
func parseProbeOutput(out []byte, limits Limits) (types.MediaMetadata, error) {
	var meta types.MediaMetadata

	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return meta, apperrors.Wrap(apperrors.CodeProbeFailed, "Media probe output unreadable", err)
	}

	videoStream := -1
	for idx, stream := range parsed.Streams {
		if stream.CodecType == "video" {
			videoStream = idx
			break
		}
	}
	if videoStream == -1 {
		return meta, apperrors.ErrInvalidMedia
	}

	duration, err := strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil || duration <= 0 {
		return meta, apperrors.New(apperrors.CodeInvalidMedia, "Media has no valid duration")
	}
	size, _ := strconv.ParseInt(parsed.Format.Size, 10, 64)

	meta = types.MediaMetadata{
		Duration: duration,
		Width:    parsed.Streams[videoStream].Width,
		Height:   parsed.Streams[videoStream].Height,
		Format:   parsed.Format.FormatName,
		Size:     size,
	}

	if limits.MaxDuration > 0 && meta.Duration > limits.MaxDuration {
		return meta, apperrors.WrapWithDetail(
			apperrors.CodeDurationExceeded,
			"Video duration exceeds policy limit",
			fmt.Sprintf("duration %.1fs, limit %.0fs", meta.Duration, limits.MaxDuration),
			nil)
	}
	if limits.MaxHeight > 0 && meta.Height > limits.MaxHeight {
		return meta, apperrors.WrapWithDetail(
			apperrors.CodeResolutionExceeded,
			"Video resolution exceeds policy limit",
			fmt.Sprintf("height %dpx, limit %dpx", meta.Height, limits.MaxHeight),
			nil)
	}

	return meta, nil
}
