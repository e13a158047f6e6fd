package response

import (
	"errors"
	"net/http"

	"station_queue/internal/queue"
)

// SuccessResponse представляет успешный ответ API
type SuccessResponse struct {
	Message string `json:"message" example:"Операция успешно выполнена"`
}

// ErrorResponse представляет ответ с ошибкой API
type ErrorResponse struct {
	// Код ошибки для программной обработки
	// example: VALIDATION_ERROR
	Code string `json:"code"`

	// Человекочитаемое сообщение об ошибке
	// example: Ошибка валидации данных
	Message string `json:"message"`

	// Дополнительные детали об ошибке (опционально)
	// example: station name is empty
	Details string `json:"details,omitempty"`
}

// TokenResponse — идентификатор участника и его токен
type TokenResponse struct {
	ParticipantID string `json:"participant_id" example:"8f14e45f-ceea-467f-a0e6-0b4b8b2a3c1d"`

	// JWT токен участника
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	Token string `json:"token"`
}

// FromError сопоставляет ошибку движка HTTP-статусу и телу ответа.
func FromError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, queue.ErrStationNotFound):
		return http.StatusNotFound, ErrorResponse{
			Code:    "STATION_NOT_FOUND",
			Message: "Станция не найдена",
		}
	case errors.Is(err, queue.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "Доступ запрещён",
		}
	case errors.Is(err, queue.ErrInvalidInput):
		return http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		}
	case errors.Is(err, queue.ErrEntryNotFound):
		return http.StatusNotFound, ErrorResponse{
			Code:    "NOT_IN_QUEUE",
			Message: "Участник не состоит в этой очереди",
		}
	case errors.Is(err, queue.ErrStorageConflict):
		return http.StatusConflict, ErrorResponse{
			Code:    "STORAGE_CONFLICT",
			Message: "Конфликт при записи, повторите запрос",
		}
	default:
		return http.StatusServiceUnavailable, ErrorResponse{
			Code:    "STORAGE_UNAVAILABLE",
			Message: "Хранилище временно недоступно",
		}
	}
}
