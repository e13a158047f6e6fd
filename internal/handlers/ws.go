package handlers

import (
	"station_queue/internal/auth"
	"station_queue/internal/notify"

	"github.com/gin-gonic/gin"
)

// StationWebSocket подписывает оператора на обновления очереди станции
// @Summary		WebSocket очереди станции
// @Description	События queue-changed и popped. Ключ менеджера передаётся в параметре key.
// @Tags			station
// @Param			id	path	string	true	"ID станции"
// @Param			key	query	string	true	"Ключ менеджера"
// @Failure		403	{object}	response.ErrorResponse	"Неверный ключ (FORBIDDEN)"
// @Router			/api/stations/{id}/ws [get]
func (h *Handler) StationWebSocket(c *gin.Context) {
	stationID := c.Param("id")
	// Проверка ключа до апгрейда соединения.
	if _, err := h.engine.ViewQueue(c.Request.Context(), stationID, managerKey(c)); err != nil {
		h.fail(c, err)
		return
	}
	h.hub.Serve(c, notify.StationChannel(stationID), func() {
		h.engine.Resync(stationID)
	})
}

// ParticipantWebSocket подписывает участника на сводку его очередей
// @Summary		WebSocket участника
// @Description	Событие my-queues-changed. Токен передаётся в параметре token.
// @Tags			profile
// @Param			token	query	string	true	"Токен участника"
// @Failure		401		{object}	response.ErrorResponse	"Неверный токен (INVALID_TOKEN)"
// @Router			/api/me/ws [get]
func (h *Handler) ParticipantWebSocket(c *gin.Context) {
	participantID := auth.ParticipantID(c)
	h.hub.Serve(c, notify.ParticipantChannel(participantID), func() {
		h.engine.ResyncParticipant(participantID)
	})
}
