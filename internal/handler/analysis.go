package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipforge/internal/dto"
	"clipforge/internal/response"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

// SuggestMoments runs the moment selector over a video's transcript.
func (h *Handler) SuggestMoments(c *gin.Context) {
	var req dto.SuggestMomentsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("SuggestMoments ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	data, err := h.Service.SuggestMoments(c.Request.Context(), req.VideoId, req.MaxResults)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

// GetTranscript returns the stored transcript, creating one (via the
// speech-to-text collaborator or synthesized buckets) when missing.
func (h *Handler) GetTranscript(c *gin.Context) {
	data, err := h.Service.GetOrCreateTranscript(c.Request.Context(), c.Param("videoId"))
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

// ImportTranscript replaces a video's transcript from an SRT body.
func (h *Handler) ImportTranscript(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 4<<20))
	if err != nil || len(body) == 0 {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidParams, "Missing SRT body"))
		return
	}

	data, err := h.Service.ImportSrtTranscript(c.Param("videoId"), string(body))
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}
