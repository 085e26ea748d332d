package http

import (
	"errors"
	"net/http"
	"strconv"

	"shorts-player/domain/dto"
	"shorts-player/infrastructure/logger"
	"shorts-player/infrastructure/metrics"
	"shorts-player/usecase"

	"github.com/gin-gonic/gin"
)

// IVideoHandler defines the HTTP handlers of the random video API
type IVideoHandler interface {
	GetRandomVideo(ctx *gin.Context)
	RefreshVideos(ctx *gin.Context)
}

type VideoHandler struct {
	videoUseCase usecase.IVideoUseCase
}

func NewVideoHandler(videoUseCase usecase.IVideoUseCase) IVideoHandler {
	return &VideoHandler{videoUseCase: videoUseCase}
}

// GetRandomVideo handles GET /api/videos/random
func (h *VideoHandler) GetRandomVideo(ctx *gin.Context) {
	video, err := h.videoUseCase.RandomVideo(ctx.Request.Context())
	switch {
	case errors.Is(err, usecase.ErrNoVideos):
		metrics.RandomRequests.WithLabelValues("not_found").Inc()
		ctx.JSON(http.StatusNotFound, dto.Res{Message: "No videos found"})
		return
	case err != nil:
		metrics.RandomRequests.WithLabelValues("error").Inc()
		logger.GetLogger().WithField("error", err).Error("Error fetching random video")
		ctx.JSON(http.StatusInternalServerError, dto.Res{Message: "Internal server error"})
		return
	}
	metrics.RandomRequests.WithLabelValues("ok").Inc()
	ctx.JSON(http.StatusOK, dto.NewRandomVideoResponse(video))
}

// RefreshVideos handles POST /api/videos/refresh?force=true
func (h *VideoHandler) RefreshVideos(ctx *gin.Context) {
	force, _ := strconv.ParseBool(ctx.DefaultQuery("force", "false"))

	res, err := h.videoUseCase.Refresh(ctx.Request.Context(), force)
	switch {
	case errors.Is(err, usecase.ErrQuotaExhausted):
		logger.GetLogger().WithField("error", err).Warn("Manual refresh refused")
		ctx.JSON(http.StatusTooManyRequests, dto.Res{Message: "Daily YouTube quota exhausted"})
		return
	case err != nil:
		logger.GetLogger().WithField("error", err).Error("Manual refresh failed")
		ctx.JSON(http.StatusBadGateway, dto.Res{Message: "Refresh failed"})
		return
	}
	ctx.JSON(http.StatusOK, res)
}
