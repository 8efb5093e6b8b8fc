package handler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"clipforge/internal/cleanup"
	"clipforge/internal/response"
	"clipforge/internal/service"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

// Dispatcher hands a persisted job to an execution backend, either the
// in-process runner or the Redis queue.
type Dispatcher interface {
	Dispatch(jobId string) error
}

type Handler struct {
	Service    *service.Service
	Dispatcher Dispatcher
}

func NewHandler(svc *service.Service, dispatcher Dispatcher) *Handler {
	return &Handler{
		Service:    svc,
		Dispatcher: dispatcher,
	}
}

func (h *Handler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

// UploadVideo accepts a multipart video upload, probes it and registers
// it for clipping.
func (h *Handler) UploadVideo(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Missing file field", err))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".mp4"
	}

	if err := cleanup.EnsureDirs(h.Service.UploadRoot); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "Cannot prepare upload directory", err))
		return
	}

	storedPath := filepath.Join(h.Service.UploadRoot, uuid.NewString()+ext)
	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		log.GetLogger().Error("UploadVideo save failed", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "Failed to store upload", err))
		return
	}

	video, err := h.Service.RegisterVideo(c.Request.Context(), storedPath, file.Filename)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}

	response.Success(c, gin.H{
		"video_id": video.VideoId,
		"filename": video.Filename,
		"duration": video.Duration,
		"width":    video.Width,
		"height":   video.Height,
		"format":   video.Format,
		"size":     video.Size,
	})
}

// DownloadClip streams a finished GIF back to the client.
func (h *Handler) DownloadClip(c *gin.Context) {
	jobId := c.Param("jobId")

	job, err := h.Service.GetJob(jobId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	if job.Status != "completed" {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidParams, "Job has no finished output"))
		return
	}

	path := filepath.Join(h.Service.ClipRoot, filepath.Base(job.VideoId+"_"+job.JobId+".gif"))
	if _, err := os.Stat(path); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileNotFound, "Clip file not found", err))
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}
