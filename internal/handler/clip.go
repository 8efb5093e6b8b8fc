package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipforge/internal/dto"
	"clipforge/internal/response"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

// CreateClip validates and persists a render job, then hands it to the
// execution backend.
func (h *Handler) CreateClip(c *gin.Context) {
	var req dto.CreateClipReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("CreateClip ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	data, err := h.Service.CreateClipJob(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}

	if err := h.Dispatcher.Dispatch(data.JobId); err != nil {
		log.GetLogger().Error("CreateClip dispatch failed",
			zap.String("job_id", data.JobId), zap.Error(err))
		// The job was persisted but will never run; fail it now rather
		// than leaving a zombie for the startup sweep.
		_ = h.Service.CancelJob(data.JobId)
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeQueueFull, "Render queue is full", err))
		return
	}

	response.Success(c, data)
}

func (h *Handler) GetJob(c *gin.Context) {
	data, err := h.Service.GetJob(c.Param("jobId"))
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h *Handler) ListJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	data, err := h.Service.ListJobs(c.Query("video_id"), limit)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h *Handler) CancelJob(c *gin.Context) {
	if err := h.Service.CancelJob(c.Param("jobId")); err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, nil)
}
