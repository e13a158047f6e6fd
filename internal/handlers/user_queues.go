package handlers

import (
	"net/http"
	"time"

	"station_queue/internal/auth"

	"github.com/gin-gonic/gin"
)

// UserQueueItem represents one station the participant is queued at
type UserQueueItem struct {
	StationID   string `json:"station_id"`
	StationName string `json:"station_name"`
	Position    int64  `json:"position"`
	Rank        int    `json:"rank"`
	JoinedAt    string `json:"joined_at"`
}

// MyQueues godoc
// @Summary		Получение списка своих очередей
// @Description	Stations the participant is queued at, with the current rank computed per station
// @Tags			profile
// @Produce		json
// @Security		BearerAuth
// @Success		200	{array}		UserQueueItem			"List of queues the participant is part of"
// @Failure		401	{object}	response.ErrorResponse	"Missing or invalid token"
// @Failure		503	{object}	response.ErrorResponse	"Storage unavailable (STORAGE_UNAVAILABLE)"
// @Router			/api/me/queues [get]
func (h *Handler) MyQueues(c *gin.Context) {
	queues, err := h.engine.MyQueues(c.Request.Context(), auth.ParticipantID(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	result := make([]UserQueueItem, 0, len(queues))
	for _, q := range queues {
		result = append(result, UserQueueItem{
			StationID:   q.StationID,
			StationName: q.StationName,
			Position:    q.Position,
			Rank:        q.Rank,
			JoinedAt:    q.JoinedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, result)
}
