package handlers

import (
	"net/http"

	"station_queue/internal/auth"

	"github.com/gin-gonic/gin"
)

// JoinResponse — позиция (номер талона) и текущее место в очереди.
type JoinResponse struct {
	StationID string `json:"station_id"`
	Position  int64  `json:"position" example:"100"`
	// 0, если участника уже сняли с очереди
	Rank      int    `json:"rank" example:"1"`
}

// Participant — строка очереди станции.
type Participant struct {
	ParticipantID string `json:"participant_id"`
	Position      int64  `json:"position"`
	Rank          int    `json:"rank"`
}

// QueueResponse содержит очередь станции по возрастанию позиции.
type QueueResponse struct {
	StationID    string        `json:"station_id"`
	Participants []Participant `json:"participants"`
}

// PopResponse — результат снятия с начала очереди.
type PopResponse struct {
	Popped        bool   `json:"popped"`
	ParticipantID string `json:"participant_id,omitempty"`
	Position      int64  `json:"position,omitempty"`
}

// Join обрабатывает запрос на вступление в очередь
// @Summary		Вступление в очередь
// @Description	Ставит участника в очередь станции. Повторный вызов возвращает прежнюю позицию.
// @Tags			queue
// @Produce		json
// @Param			id	path		string	true	"ID станции"
// @Security		BearerAuth
// @Success		200	{object}	JoinResponse			"Позиция и место в очереди"
// @Failure		401	{object}	response.ErrorResponse	"Нет или неверный токен (NO_AUTH_HEADER, INVALID_TOKEN)"
// @Failure		404	{object}	response.ErrorResponse	"Станция не найдена (STATION_NOT_FOUND)"
// @Failure		409	{object}	response.ErrorResponse	"Конфликт записи, запрос можно повторить (STORAGE_CONFLICT)"
// @Failure		503	{object}	response.ErrorResponse	"Хранилище недоступно (STORAGE_UNAVAILABLE)"
// @Router			/api/stations/{id}/join [post]
func (h *Handler) Join(c *gin.Context) {
	stationID := c.Param("id")
	participantID := auth.ParticipantID(c)

	entry, err := h.engine.JoinRanked(c.Request.Context(), stationID, participantID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, JoinResponse{
		StationID: stationID,
		Position:  entry.Position,
		Rank:      entry.Rank,
	})
}

// Leave обрабатывает запрос на выход из очереди
// @Summary		Выход из очереди
// @Description	Убирает участника из очереди станции. Повторный вызов не является ошибкой.
// @Tags			queue
// @Produce		json
// @Param			id	path		string	true	"ID станции"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Участник вне очереди"
// @Failure		401	{object}	response.ErrorResponse		"Нет или неверный токен"
// @Failure		503	{object}	response.ErrorResponse		"Хранилище недоступно (STORAGE_UNAVAILABLE)"
// @Router			/api/stations/{id}/leave [post]
func (h *Handler) Leave(c *gin.Context) {
	if _, err := h.engine.Leave(c.Request.Context(), c.Param("id"), auth.ParticipantID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Вы вне очереди"})
}

// ViewQueue возвращает очередь станции оператору
// @Summary		Очередь станции
// @Description	Возвращает участников по возрастанию позиции. Требует ключ менеджера станции.
// @Tags			station
// @Produce		json
// @Param			id				path		string	true	"ID станции"
// @Param			X-Manager-Key	header		string	true	"Ключ менеджера"
// @Success		200				{object}	QueueResponse			"Очередь станции"
// @Failure		403				{object}	response.ErrorResponse	"Неверный ключ или станции нет (FORBIDDEN)"
// @Failure		503				{object}	response.ErrorResponse	"Хранилище недоступно (STORAGE_UNAVAILABLE)"
// @Router			/api/stations/{id}/queue [get]
func (h *Handler) ViewQueue(c *gin.Context) {
	stationID := c.Param("id")
	entries, err := h.engine.ViewQueue(c.Request.Context(), stationID, managerKey(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	participants := make([]Participant, 0, len(entries))
	for i, e := range entries {
		participants = append(participants, Participant{
			ParticipantID: e.ParticipantID,
			Position:      e.Position,
			Rank:          i + 1,
		})
	}
	c.JSON(http.StatusOK, QueueResponse{StationID: stationID, Participants: participants})
}

// Pop снимает первого участника с очереди
// @Summary		Снять с начала очереди
// @Description	Удаляет участника с наименьшей позицией. Пустая очередь возвращает popped=false.
// @Tags			station
// @Produce		json
// @Param			id				path		string	true	"ID станции"
// @Param			X-Manager-Key	header		string	true	"Ключ менеджера"
// @Success		200				{object}	PopResponse				"Результат"
// @Failure		403				{object}	response.ErrorResponse	"Неверный ключ или станции нет (FORBIDDEN)"
// @Failure		503				{object}	response.ErrorResponse	"Хранилище недоступно (STORAGE_UNAVAILABLE)"
// @Router			/api/stations/{id}/pop [post]
func (h *Handler) Pop(c *gin.Context) {
	entry, ok, err := h.engine.Pop(c.Request.Context(), c.Param("id"), managerKey(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, PopResponse{Popped: false})
		return
	}
	c.JSON(http.StatusOK, PopResponse{
		Popped:        true,
		ParticipantID: entry.ParticipantID,
		Position:      entry.Position,
	})
}

func managerKey(c *gin.Context) string {
	if key := c.GetHeader("X-Manager-Key"); key != "" {
		return key
	}
	return c.Query("key")
}
