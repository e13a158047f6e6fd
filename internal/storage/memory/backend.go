// Package memory — хранилище очередей в памяти процесса. Используется в тестах
// и при DB_DRIVER=memory; данные теряются при перезапуске.
package memory

import (
	"context"
	"sort"
	"sync"

	"station_queue/internal/queue"
)

var _ queue.Backend = (*Backend)(nil)

// Backend хранит станции, записи и счётчики под одним мьютексом.
// Atomic держит мьютекс на всё время единицы работы и откатывает
// состояние при ошибке.
type Backend struct {
	mu    sync.Mutex
	state state
	floor int64
}

type state struct {
	stations map[string]queue.Station
	entries  map[string]map[string]queue.Entry // stationID -> participantID -> entry
	counters map[string]int64
}

func newState() state {
	return state{
		stations: make(map[string]queue.Station),
		entries:  make(map[string]map[string]queue.Entry),
		counters: make(map[string]int64),
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.stations {
		c.stations[k] = v
	}
	for st, m := range s.entries {
		cm := make(map[string]queue.Entry, len(m))
		for p, e := range m {
			cm[p] = e
		}
		c.entries[st] = cm
	}
	for k, v := range s.counters {
		c.counters[k] = v
	}
	return c
}

// New возвращает пустое хранилище; первая выданная позиция станции равна floor.
func New(floor int64) *Backend {
	return &Backend{state: newState(), floor: floor}
}

// Atomic выполняет fn под мьютексом хранилища.
func (b *Backend) Atomic(ctx context.Context, fn func(tx queue.Backend) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return queue.ErrStorageUnavailable
	}
	saved := b.state.clone()
	if err := fn(&tx{b: b}); err != nil {
		b.state = saved
		return err
	}
	return nil
}

func (b *Backend) NextPosition(ctx context.Context, stationID string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nextPosition(ctx, stationID)
}

func (b *Backend) Get(ctx context.Context, stationID, participantID string) (queue.Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.get(ctx, stationID, participantID)
}

func (b *Backend) Insert(ctx context.Context, e queue.Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.insert(ctx, e)
}

func (b *Backend) ListByStation(ctx context.Context, stationID string) ([]queue.Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listByStation(ctx, stationID)
}

func (b *Backend) ListByParticipant(ctx context.Context, participantID string) ([]queue.Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listByParticipant(ctx, participantID)
}

func (b *Backend) Rank(ctx context.Context, stationID, participantID string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rank(ctx, stationID, participantID)
}

func (b *Backend) DeleteFront(ctx context.Context, stationID string) (queue.Entry, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deleteFront(ctx, stationID)
}

func (b *Backend) DeleteByParticipant(ctx context.Context, stationID, participantID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deleteByParticipant(ctx, stationID, participantID)
}

func (b *Backend) DeleteAllForStation(ctx context.Context, stationID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deleteAllForStation(ctx, stationID)
}

func (b *Backend) CreateStation(ctx context.Context, s queue.Station) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createStation(ctx, s)
}

func (b *Backend) GetStation(ctx context.Context, stationID string) (queue.Station, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.getStation(ctx, stationID)
}

func (b *Backend) ListStations(ctx context.Context) ([]queue.Station, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listStations(ctx)
}

func (b *Backend) DeleteStation(ctx context.Context, stationID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deleteStation(ctx, stationID)
}

// Ниже — реализации без блокировки; вызываются с удерживаемым b.mu.

func checkCtx(ctx context.Context) error {
	if ctx.Err() != nil {
		return queue.ErrStorageUnavailable
	}
	return nil
}

func (b *Backend) nextPosition(ctx context.Context, stationID string) (int64, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	last, ok := b.state.counters[stationID]
	if !ok {
		last = b.floor - 1
	}
	last++
	b.state.counters[stationID] = last
	return last, nil
}

func (b *Backend) get(ctx context.Context, stationID, participantID string) (queue.Entry, error) {
	if err := checkCtx(ctx); err != nil {
		return queue.Entry{}, err
	}
	e, ok := b.state.entries[stationID][participantID]
	if !ok {
		return queue.Entry{}, queue.ErrEntryNotFound
	}
	return e, nil
}

func (b *Backend) insert(ctx context.Context, e queue.Entry) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if _, ok := b.state.stations[e.StationID]; !ok {
		return queue.ErrStationNotFound
	}
	m := b.state.entries[e.StationID]
	if m == nil {
		m = make(map[string]queue.Entry)
		b.state.entries[e.StationID] = m
	}
	if _, ok := m[e.ParticipantID]; ok {
		return queue.ErrDuplicateEntry
	}
	for _, other := range m {
		if other.Position == e.Position {
			return queue.ErrDuplicateEntry
		}
	}
	m[e.ParticipantID] = e
	return nil
}

func (b *Backend) listByStation(ctx context.Context, stationID string) ([]queue.Entry, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	m := b.state.entries[stationID]
	out := make([]queue.Entry, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (b *Backend) listByParticipant(ctx context.Context, participantID string) ([]queue.Entry, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	var out []queue.Entry
	for _, m := range b.state.entries {
		if e, ok := m[participantID]; ok {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].StationID < out[j].StationID
	})
	return out, nil
}

func (b *Backend) rank(ctx context.Context, stationID, participantID string) (int, error) {
	e, err := b.get(ctx, stationID, participantID)
	if err != nil {
		return 0, err
	}
	rank := 1
	for _, other := range b.state.entries[stationID] {
		if other.Position < e.Position {
			rank++
		}
	}
	return rank, nil
}

func (b *Backend) deleteFront(ctx context.Context, stationID string) (queue.Entry, bool, error) {
	if err := checkCtx(ctx); err != nil {
		return queue.Entry{}, false, err
	}
	var (
		front queue.Entry
		found bool
	)
	for _, e := range b.state.entries[stationID] {
		if !found || e.Position < front.Position {
			front, found = e, true
		}
	}
	if !found {
		return queue.Entry{}, false, nil
	}
	delete(b.state.entries[stationID], front.ParticipantID)
	return front, true, nil
}

func (b *Backend) deleteByParticipant(ctx context.Context, stationID, participantID string) (bool, error) {
	if err := checkCtx(ctx); err != nil {
		return false, err
	}
	m := b.state.entries[stationID]
	if _, ok := m[participantID]; !ok {
		return false, nil
	}
	delete(m, participantID)
	return true, nil
}

func (b *Backend) deleteAllForStation(ctx context.Context, stationID string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	delete(b.state.entries, stationID)
	delete(b.state.counters, stationID)
	return nil
}

func (b *Backend) createStation(ctx context.Context, s queue.Station) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if _, ok := b.state.stations[s.ID]; ok {
		return queue.ErrStorageConflict
	}
	b.state.stations[s.ID] = s
	return nil
}

func (b *Backend) getStation(ctx context.Context, stationID string) (queue.Station, error) {
	if err := checkCtx(ctx); err != nil {
		return queue.Station{}, err
	}
	s, ok := b.state.stations[stationID]
	if !ok {
		return queue.Station{}, queue.ErrStationNotFound
	}
	return s, nil
}

func (b *Backend) listStations(ctx context.Context) ([]queue.Station, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	out := make([]queue.Station, 0, len(b.state.stations))
	for _, s := range b.state.stations {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (b *Backend) deleteStation(ctx context.Context, stationID string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if _, ok := b.state.stations[stationID]; !ok {
		return queue.ErrStationNotFound
	}
	delete(b.state.stations, stationID)
	// каскад, как ON DELETE CASCADE в SQL-хранилище
	delete(b.state.entries, stationID)
	delete(b.state.counters, stationID)
	return nil
}

// tx — представление хранилища внутри Atomic: мьютекс уже захвачен.
type tx struct {
	b *Backend
}

func (t *tx) Atomic(ctx context.Context, fn func(queue.Backend) error) error {
	saved := t.b.state.clone()
	if err := fn(t); err != nil {
		t.b.state = saved
		return err
	}
	return nil
}

func (t *tx) NextPosition(ctx context.Context, stationID string) (int64, error) {
	return t.b.nextPosition(ctx, stationID)
}

func (t *tx) Get(ctx context.Context, stationID, participantID string) (queue.Entry, error) {
	return t.b.get(ctx, stationID, participantID)
}

func (t *tx) Insert(ctx context.Context, e queue.Entry) error { return t.b.insert(ctx, e) }

func (t *tx) ListByStation(ctx context.Context, stationID string) ([]queue.Entry, error) {
	return t.b.listByStation(ctx, stationID)
}

func (t *tx) ListByParticipant(ctx context.Context, participantID string) ([]queue.Entry, error) {
	return t.b.listByParticipant(ctx, participantID)
}

func (t *tx) Rank(ctx context.Context, stationID, participantID string) (int, error) {
	return t.b.rank(ctx, stationID, participantID)
}

func (t *tx) DeleteFront(ctx context.Context, stationID string) (queue.Entry, bool, error) {
	return t.b.deleteFront(ctx, stationID)
}

func (t *tx) DeleteByParticipant(ctx context.Context, stationID, participantID string) (bool, error) {
	return t.b.deleteByParticipant(ctx, stationID, participantID)
}

func (t *tx) DeleteAllForStation(ctx context.Context, stationID string) error {
	return t.b.deleteAllForStation(ctx, stationID)
}

func (t *tx) CreateStation(ctx context.Context, s queue.Station) error {
	return t.b.createStation(ctx, s)
}

func (t *tx) GetStation(ctx context.Context, stationID string) (queue.Station, error) {
	return t.b.getStation(ctx, stationID)
}

func (t *tx) ListStations(ctx context.Context) ([]queue.Station, error) {
	return t.b.listStations(ctx)
}

func (t *tx) DeleteStation(ctx context.Context, stationID string) error {
	return t.b.deleteStation(ctx, stationID)
}
