package queue

import "context"

// Allocator выдаёт номера позиций для станции.
type Allocator interface {
	// NextPosition atomically increments the station counter and returns the
	// new value. The first value issued for a station equals the floor.
	NextPosition(ctx context.Context, stationID string) (int64, error)
}

// Store хранит записи очереди.
type Store interface {
	// Get returns ErrEntryNotFound when the participant is not queued.
	Get(ctx context.Context, stationID, participantID string) (Entry, error)
	// Insert returns ErrDuplicateEntry when the pair already exists.
	Insert(ctx context.Context, e Entry) error
	// ListByStation returns entries ascending by position.
	ListByStation(ctx context.Context, stationID string) ([]Entry, error)
	ListByParticipant(ctx context.Context, participantID string) ([]Entry, error)
	// Rank is 1 + the number of entries in the station with a smaller
	// position, read from current state.
	Rank(ctx context.Context, stationID, participantID string) (int, error)
	// DeleteFront removes the smallest-position entry. ok is false when the
	// station has no entries.
	DeleteFront(ctx context.Context, stationID string) (e Entry, ok bool, err error)
	DeleteByParticipant(ctx context.Context, stationID, participantID string) (bool, error)
	// DeleteAllForStation removes every entry and the position counter.
	DeleteAllForStation(ctx context.Context, stationID string) error
}

// StationStore хранит записи станций.
type StationStore interface {
	CreateStation(ctx context.Context, s Station) error
	// GetStation returns ErrStationNotFound when the station does not exist.
	GetStation(ctx context.Context, stationID string) (Station, error)
	ListStations(ctx context.Context) ([]Station, error)
	// DeleteStation removes only the station record; callers run it inside
	// Atomic together with DeleteAllForStation.
	DeleteStation(ctx context.Context, stationID string) error
}

// Backend — всё состояние очереди за одним интерфейсом.
type Backend interface {
	Allocator
	Store
	StationStore

	// Atomic runs fn as one unit of work: either every mutation made through
	// the passed Backend commits or none does.
	Atomic(ctx context.Context, fn func(tx Backend) error) error
}
