package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary	Проверка доступности хранилища
// @Tags		health
// @Produce	json
// @Success	200	{object}	response.SuccessResponse
// @Failure	503	{object}	response.ErrorResponse	"Хранилище недоступно (STORAGE_UNAVAILABLE)"
// @Router		/healthz [get]
func (h *Handler) Health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			h.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
