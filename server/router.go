package server

import (
	"time"

	httpHandler "shorts-player/interfaces/http"
	"shorts-player/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func InitiateRouter(
	videoHandler httpHandler.IVideoHandler,
	monitoringHandler httpHandler.IMonitoringHandler,
	allowedOrigins []string,
	secretKey string,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", monitoringHandler.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/videos/random", videoHandler.GetRandomVideo)

	admin := api.Group("")
	admin.Use(middleware.Auth(secretKey))
	admin.POST("/videos/refresh", videoHandler.RefreshVideos)
	admin.GET("/monitoring/quota", monitoringHandler.QuotaUsage)
	admin.GET("/monitoring/stats", monitoringHandler.StoreStats)

	return router
}
