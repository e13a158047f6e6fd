package handlers

import (
	"context"

	"station_queue/internal/auth"
	"station_queue/internal/queue"
	"station_queue/internal/response"
	"station_queue/internal/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler собирает зависимости HTTP-обработчиков.
type Handler struct {
	engine *queue.Engine
	tokens *auth.Issuer
	hub    *ws.Hub
	ping   func(ctx context.Context) error
	log    *zap.Logger
}

// Deps — зависимости, которые владелец процесса передаёт в NewHandler.
type Deps struct {
	Engine *queue.Engine
	Tokens *auth.Issuer
	Hub    *ws.Hub
	// Ping проверяет хранилище для /healthz; nil — всегда здоров.
	Ping func(ctx context.Context) error
	Log  *zap.Logger
}

func NewHandler(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		engine: d.Engine,
		tokens: d.Tokens,
		hub:    d.Hub,
		ping:   d.Ping,
		log:    log,
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, body := response.FromError(err)
	if status >= 500 {
		h.log.Error("ошибка хранилища", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, body)
}
