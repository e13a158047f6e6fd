package handlers

import (
	"net/http"

	"station_queue/internal/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IssueParticipant выдаёт новому участнику идентификатор и токен
// @Summary		Получение токена участника
// @Description	Создаёт анонимного участника и возвращает подписанный JWT
// @Tags			auth
// @Produce		json
// @Success		201	{object}	response.TokenResponse	"Идентификатор и токен участника"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка генерации токена (TOKEN_GENERATION_ERROR)"
// @Router			/auth/participant [post]
func (h *Handler) IssueParticipant(c *gin.Context) {
	participantID, token, err := h.tokens.NewParticipant()
	if err != nil {
		h.log.Error("ошибка генерации токена участника", zap.Error(err))
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "TOKEN_GENERATION_ERROR",
			Message: "Ошибка генерации токена",
		})
		return
	}

	c.JSON(http.StatusCreated, response.TokenResponse{
		ParticipantID: participantID,
		Token:         token,
	})
}
