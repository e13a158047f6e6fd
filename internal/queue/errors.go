package queue

import (
	"errors"
	"fmt"
)

var (
	// ErrStationNotFound — станция не существует.
	ErrStationNotFound = errors.New("queue: station not found")
	// ErrForbidden — неверный ключ менеджера или секрет администратора.
	// Для вызывающего без ключа неотличимо от отсутствующей станции.
	ErrForbidden = errors.New("queue: forbidden")
	// ErrInvalidInput — пустое или некорректное имя станции либо идентификатор.
	ErrInvalidInput = errors.New("queue: invalid input")

	// ErrStorageConflict — конфликт в хранилище, операцию можно повторить.
	ErrStorageConflict = errors.New("queue: storage conflict")
	// ErrStorageUnavailable — хранилище недоступно или не уложилось в таймаут.
	ErrStorageUnavailable = errors.New("queue: storage unavailable")

	// ErrEntryNotFound — участник не стоит в очереди станции.
	ErrEntryNotFound = errors.New("queue: entry not found")
	// ErrDuplicateEntry — запись (станция, участник) уже существует.
	ErrDuplicateEntry = fmt.Errorf("%w: entry already exists", ErrStorageConflict)
)

var sentinels = []error{
	ErrStationNotFound,
	ErrForbidden,
	ErrInvalidInput,
	ErrStorageConflict,
	ErrStorageUnavailable,
	ErrEntryNotFound,
}

// IsDomainError reports whether err already carries one of the package
// sentinels, so storage layers can pass it through untouched.
func IsDomainError(err error) bool {
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}
