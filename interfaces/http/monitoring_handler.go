package http

import (
	"net/http"

	"shorts-player/domain/dto"
	"shorts-player/infrastructure/logger"
	"shorts-player/usecase"

	"github.com/gin-gonic/gin"
)

type IMonitoringHandler interface {
	QuotaUsage(ctx *gin.Context)
	StoreStats(ctx *gin.Context)
	Healthz(ctx *gin.Context)
}

type MonitoringHandler struct {
	videoUseCase usecase.IVideoUseCase
}

func NewMonitoringHandler(videoUseCase usecase.IVideoUseCase) IMonitoringHandler {
	return &MonitoringHandler{videoUseCase: videoUseCase}
}

// QuotaUsage handles GET /api/monitoring/quota
func (h *MonitoringHandler) QuotaUsage(ctx *gin.Context) {
	usage, err := h.videoUseCase.QuotaUsage(ctx.Request.Context())
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error reading quota usage")
		ctx.JSON(http.StatusInternalServerError, dto.Res{Message: "Internal server error"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"date":           usage.Date,
		"quotaUsed":      usage.Used,
		"quotaLimit":     usage.Limit,
		"quotaRemaining": usage.Remaining(),
	})
}

// StoreStats handles GET /api/monitoring/stats
func (h *MonitoringHandler) StoreStats(ctx *gin.Context) {
	stats, err := h.videoUseCase.StoreStats(ctx.Request.Context())
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error reading store stats")
		ctx.JSON(http.StatusInternalServerError, dto.Res{Message: "Internal server error"})
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// Healthz returns OK for health checks
func (h *MonitoringHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
