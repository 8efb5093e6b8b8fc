package service

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clipforge/config"
	"clipforge/internal/ffmpeg"
	"clipforge/internal/storage"
	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

// RegisterVideo probes a stored upload against policy limits and
// persists its metadata. The file at path is removed when it fails the
// probe, so rejected uploads do not linger until the sweeper runs.
func (s *Service) RegisterVideo(ctx context.Context, path, filename string) (*types.Video, error) {
	policy := config.Conf.Policy

	probeCtx, cancel := context.WithTimeout(ctx, policy.ProbeTimeout())
	defer cancel()

	meta, err := s.Invoker.Probe(probeCtx, path, ffmpeg.Limits{
		MaxDuration: float64(policy.MaxSourceDurationSeconds),
		MaxHeight:   policy.MaxSourceHeight,
	})
	if err != nil {
		if removeErr := os.Remove(path); removeErr != nil {
			log.GetLogger().Warn("failed to remove rejected upload",
				zap.String("path", path), zap.Error(removeErr))
		}
		return nil, err
	}

	video := &types.Video{
		VideoId:    uuid.NewString(),
		Filename:   filename,
		Path:       path,
		Duration:   meta.Duration,
		Width:      meta.Width,
		Height:     meta.Height,
		Format:     meta.Format,
		Size:       meta.Size,
		CreateTime: time.Now().Unix(),
	}
	if err := storage.SaveVideo(video); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "Failed to save video", err)
	}

	log.GetLogger().Info("video registered",
		zap.String("video_id", video.VideoId),
		zap.String("filename", filename),
		zap.Float64("duration", meta.Duration))
	return video, nil
}

// GetVideo returns stored metadata for one video.
func (s *Service) GetVideo(videoId string) (*types.Video, error) {
	video, err := storage.GetVideo(videoId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "Video not found", err)
	}
	return video, nil
}
