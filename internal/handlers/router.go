package handlers

import (
	"station_queue/internal/auth"
	"station_queue/internal/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterConfig — параметры маршрутизатора, не относящиеся к обработчикам.
type RouterConfig struct {
	CORSOrigins     []string
	AdminSecretHash []byte
}

// NewRouter собирает gin.Engine со всеми маршрутами сервиса.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(logger.GinLogger(h.log), logger.GinRecovery(h.log))

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Manager-Key", "X-Admin-Secret"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", h.Health)

	r.POST("/auth/participant", h.IssueParticipant)

	participant := auth.ParticipantMiddleware(h.tokens)
	admin := auth.AdminMiddleware(cfg.AdminSecretHash)

	stations := r.Group("/api/stations")
	{
		stations.GET("", h.ListStations)
		stations.POST("", admin, h.CreateStation)
		stations.DELETE("/:id", admin, h.DeleteStation)

		stations.POST("/:id/join", participant, h.Join)
		stations.POST("/:id/leave", participant, h.Leave)

		stations.GET("/:id/queue", h.ViewQueue)
		stations.POST("/:id/pop", h.Pop)
		stations.GET("/:id/ws", h.StationWebSocket)
	}

	me := r.Group("/api/me", participant)
	{
		me.GET("/queues", h.MyQueues)
		me.GET("/ws", h.ParticipantWebSocket)
	}

	return r
}
