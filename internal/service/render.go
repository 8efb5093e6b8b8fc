package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"clipforge/config"
	"clipforge/internal/dto"
	"clipforge/internal/ffmpeg"
	"clipforge/internal/storage"
	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

// CreateClipJob validates a clip request and persists it as a pending
// job. Execution happens separately via ProcessRenderJob.
func (s *Service) CreateClipJob(req dto.CreateClipReq) (*dto.CreateClipResData, error) {
	video, err := storage.GetVideo(req.VideoId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "Video not found", err)
	}

	if err := validateClipRequest(req, video.Duration); err != nil {
		return nil, err
	}

	job := &types.RenderJob{
		JobId:      uuid.NewString(),
		VideoId:    req.VideoId,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Quality:    req.Quality,
		FrameRate:  req.FrameRate,
		Scale:      req.Scale,
		Caption:    req.Caption,
		FontSize:   req.CaptionStyle.FontSize,
		FontColor:  req.CaptionStyle.FontColor,
		BoxColor:   req.CaptionStyle.BoxColor,
		CaptionPos: req.CaptionStyle.Position,
		Status:     types.JobStatusPending,
		CreateTime: time.Now().Unix(),
	}
	if job.Quality == "" {
		job.Quality = types.QualityMedium
	}

	if err := storage.SaveJob(job); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "Failed to save job", err)
	}

	log.GetLogger().Info("clip job created",
		zap.String("job_id", job.JobId),
		zap.String("video_id", job.VideoId),
		zap.Float64("start", job.StartTime),
		zap.Float64("end", job.EndTime))

	return &dto.CreateClipResData{JobId: job.JobId}, nil
}

func validateClipRequest(req dto.CreateClipReq, videoDuration float64) error {
	policy := config.Conf.Policy

	if req.StartTime < 0 {
		return apperrors.New(apperrors.CodeInvalidParams, "Clip start must not be negative")
	}
	if req.EndTime <= req.StartTime {
		return apperrors.New(apperrors.CodeInvalidParams, "Clip end must be after start")
	}

	duration := req.EndTime - req.StartTime
	if duration < float64(policy.MinClipSeconds) || duration > float64(policy.MaxClipSeconds) {
		return apperrors.WrapWithDetail(apperrors.CodeInvalidParams,
			"Clip duration outside allowed range",
			fmt.Sprintf("duration %.1fs, allowed %d-%ds", duration, policy.MinClipSeconds, policy.MaxClipSeconds),
			nil)
	}
	if req.EndTime > videoDuration {
		return apperrors.New(apperrors.CodeInvalidParams, "Clip extends past the end of the video")
	}
	if len([]rune(req.Caption)) > policy.MaxCaptionLength {
		return apperrors.WrapWithDetail(apperrors.CodeInvalidParams,
			"Caption too long",
			fmt.Sprintf("%d characters, limit %d", len([]rune(req.Caption)), policy.MaxCaptionLength),
			nil)
	}
	return nil
}

// ProcessRenderJob executes a persisted job: probe-validated input in,
// finished GIF out, with progress persisted and broadcast along the way.
// Every invocation leaves the job in a terminal state unless the process
// dies outright, which the startup stale-job sweep covers.
func (s *Service) ProcessRenderJob(jobId string) error {
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.GetLogger().Error("render job panic",
				zap.String("job_id", jobId),
				zap.Any("panic", r),
				zap.ByteString("stack", buf))
			s.failJob(jobId, fmt.Sprintf("internal error: %v", r))
		}
	}()

	job, err := storage.GetJob(jobId)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeNotFound, "Job not found", err)
	}
	if types.IsTerminalStatus(job.Status) {
		// Cancelled before a worker picked it up.
		return nil
	}

	video, err := storage.GetVideo(job.VideoId)
	if err != nil {
		s.failJob(jobId, "source video missing")
		return apperrors.Wrap(apperrors.CodeNotFound, "Video not found", err)
	}

	if err := storage.UpdateJobStatus(jobId, types.JobStatusProcessing, ""); err != nil {
		return err
	}
	s.publishProgress(jobId, types.JobStatusProcessing, 0, "")

	ctx, cancel := context.WithTimeout(context.Background(), config.Conf.Policy.RenderTimeout())
	defer cancel()
	s.registerJob(jobId, cancel)
	defer s.unregisterJob(jobId)

	outputPath := filepath.Join(s.ClipRoot, fmt.Sprintf("%s_%s.gif", job.VideoId, job.JobId))
	palettePath := filepath.Join(s.TempRoot, fmt.Sprintf("%s_palette.png", job.JobId))
	defer os.Remove(palettePath)

	opts := ffmpeg.RenderOptions{
		InputPath:   video.Path,
		OutputPath:  outputPath,
		PalettePath: palettePath,
		StartTime:   job.StartTime,
		EndTime:     job.EndTime,
		Settings:    types.ResolveTier(job.Quality, job.FrameRate, job.Scale),
		Caption:     job.Caption,
		Style:       job.CaptionStyle(),
		OnProgress: func(pct int) {
			if err := storage.UpdateJobProgress(jobId, pct); err != nil {
				log.GetLogger().Warn("failed to persist progress",
					zap.String("job_id", jobId), zap.Error(err))
			}
			s.publishProgress(jobId, types.JobStatusProcessing, pct, "")
		},
	}

	if err := s.Invoker.RenderGif(ctx, opts); err != nil {
		os.Remove(outputPath) // drop partial output
		reason := apperrors.GetMessage(err)
		if apperrors.Is(err, apperrors.CodeRenderCancelled) {
			reason = types.FailReasonCancelled
		}
		s.failJob(jobId, reason)
		log.GetLogger().Error("render job failed",
			zap.String("job_id", jobId), zap.Error(err))
		return err
	}

	var outputUrl string
	if s.Uploader != nil {
		url, err := s.Uploader.UploadClip(ctx, outputPath, filepath.Base(outputPath))
		if err != nil {
			// Upload is an optional handoff; local output still counts.
			log.GetLogger().Warn("clip upload failed",
				zap.String("job_id", jobId), zap.Error(err))
		} else {
			outputUrl = url
		}
	}

	if err := storage.SetJobOutput(jobId, outputPath, outputUrl); err != nil {
		return err
	}
	if err := storage.UpdateJobStatus(jobId, types.JobStatusCompleted, ""); err != nil {
		return err
	}
	s.publishProgress(jobId, types.JobStatusCompleted, 100, "")

	log.GetLogger().Info("render job completed",
		zap.String("job_id", jobId),
		zap.String("output", outputPath))
	return nil
}

// CancelJob cancels a job. Running renders are interrupted; pending jobs
// are failed directly. Terminal jobs cannot be cancelled.
func (s *Service) CancelJob(jobId string) error {
	job, err := storage.GetJob(jobId)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeNotFound, "Job not found", err)
	}
	if types.IsTerminalStatus(job.Status) {
		return apperrors.New(apperrors.CodeInvalidParams, "Job already finished")
	}

	if cancel := s.cancelFuncFor(jobId); cancel != nil {
		cancel()
		return nil
	}

	s.failJob(jobId, types.FailReasonCancelled)
	return nil
}

func (s *Service) failJob(jobId, reason string) {
	if reason == "" {
		reason = "render failed"
	}
	if err := storage.UpdateJobStatus(jobId, types.JobStatusFailed, reason); err != nil {
		log.GetLogger().Error("failed to mark job failed",
			zap.String("job_id", jobId), zap.Error(err))
		return
	}
	job, err := storage.GetJob(jobId)
	progress := 0
	if err == nil {
		progress = job.ProgressPct
	}
	s.publishProgress(jobId, types.JobStatusFailed, progress, reason)
}

func (s *Service) publishProgress(jobId string, status uint8, progress int, failReason string) {
	s.Broadcaster.Publish(types.ProgressEvent{
		JobId:      jobId,
		Status:     types.JobStatusName(status),
		Progress:   progress,
		FailReason: failReason,
	})
}

// GetJob returns the API view of one job.
func (s *Service) GetJob(jobId string) (*dto.JobStatusResData, error) {
	job, err := storage.GetJob(jobId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "Job not found", err)
	}
	data := jobToDto(*job)
	return &data, nil
}

// ListJobs returns recent jobs, optionally scoped to one video.
func (s *Service) ListJobs(videoId string, limit int) ([]dto.JobStatusResData, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	jobs, err := storage.ListJobs(videoId, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "Failed to list jobs", err)
	}
	return lo.Map(jobs, func(job types.RenderJob, _ int) dto.JobStatusResData {
		return jobToDto(job)
	}), nil
}

func jobToDto(job types.RenderJob) dto.JobStatusResData {
	return dto.JobStatusResData{
		JobId:        job.JobId,
		VideoId:      job.VideoId,
		Status:       types.JobStatusName(job.Status),
		ProgressPct:  job.ProgressPct,
		StartTime:    job.StartTime,
		EndTime:      job.EndTime,
		Quality:      job.Quality,
		Caption:      job.Caption,
		OutputUrl:    job.OutputUrl,
		FailReason:   job.FailReason,
		CreateTime:   job.CreateTime,
		CompleteTime: job.CompleteTime,
	}
}
