package handlers

import (
	"net/http"
	"time"

	"station_queue/internal/response"

	"github.com/gin-gonic/gin"
)

type CreateStationRequest struct {
	Name string `json:"name" binding:"required"`
}

// StationItem — публичное представление станции, без ключа менеджера.
type StationItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// CreatedStation возвращается один раз при создании: ключ менеджера больше не показывается.
type CreatedStation struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ManagerKey string `json:"manager_key"`
}

// @Summary		Список станций
// @Tags			station
// @Produce		json
// @Success		200	{array}		StationItem
// @Failure		503	{object}	response.ErrorResponse	"Хранилище недоступно (STORAGE_UNAVAILABLE)"
// @Router			/api/stations [get]
func (h *Handler) ListStations(c *gin.Context) {
	stations, err := h.engine.ListStations(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	items := make([]StationItem, 0, len(stations))
	for _, s := range stations {
		items = append(items, StationItem{
			ID:        s.ID,
			Name:      s.Name,
			CreatedAt: s.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, items)
}

// @Summary		Создание станции
// @Description	Создаёт станцию и возвращает ключ менеджера. Требует X-Admin-Secret.
// @Tags			admin
// @Accept			json
// @Produce		json
// @Param			X-Admin-Secret	header		string					true	"Секрет администратора"
// @Param			station			body		CreateStationRequest	true	"Название станции"
// @Success		201				{object}	CreatedStation
// @Failure		400				{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		403				{object}	response.ErrorResponse	"Неверный секрет (FORBIDDEN)"
// @Failure		503				{object}	response.ErrorResponse	"Хранилище недоступно (STORAGE_UNAVAILABLE)"
// @Router			/api/stations [post]
func (h *Handler) CreateStation(c *gin.Context) {
	var req CreateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	st, err := h.engine.CreateStation(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreatedStation{
		ID:         st.ID,
		Name:       st.Name,
		ManagerKey: st.ManagerKey,
	})
}

// @Summary		Удаление станции
// @Description	Удаляет станцию вместе с очередью и счётчиком позиций. Требует X-Admin-Secret.
// @Tags			admin
// @Produce		json
// @Param			id				path		string	true	"ID станции"
// @Param			X-Admin-Secret	header		string	true	"Секрет администратора"
// @Success		200				{object}	response.SuccessResponse
// @Failure		403				{object}	response.ErrorResponse	"Неверный секрет (FORBIDDEN)"
// @Failure		404				{object}	response.ErrorResponse	"Станция не найдена (STATION_NOT_FOUND)"
// @Failure		503				{object}	response.ErrorResponse	"Хранилище недоступно (STORAGE_UNAVAILABLE)"
// @Router			/api/stations/{id} [delete]
func (h *Handler) DeleteStation(c *gin.Context) {
	if err := h.engine.DeleteStation(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Станция удалена"})
}
