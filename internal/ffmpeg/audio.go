package ffmpeg

import (
	"context"
	"path/filepath"
	"strings"

	apperrors "clipforge/pkg/errors"
)

// ExtractAudio writes a mono 16kHz wav next to the video for the
// speech-to-text collaborator and returns its path.
func (i *Invoker) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	audioPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "_mono_16k.wav"

	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		audioPath,
	}

	tail, err := i.Run(ctx, args, nil)
	if err != nil {
		return "", apperrors.WrapWithDetail(apperrors.CodeTranscribeFailed,
			"Audio extraction failed", strings.Join(tail, "\n"), err)
	}
	return audioPath, nil
}
