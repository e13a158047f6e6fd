package queue

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const managerKeyBytes = 24

// Engine — единственная точка изменения очередей и счётчиков позиций.
// Безопасен для конкурентного использования: вся сериализация выполняется
// транзакциями Backend.
type Engine struct {
	backend Backend
	emitter Emitter
	log     *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// Option настраивает Engine.
type Option func(*Engine)

// WithEmitter задаёт получателя событий после мутаций.
func WithEmitter(em Emitter) Option {
	return func(e *Engine) {
		if em != nil {
			e.emitter = em
		}
	}
}

// WithLogger задаёт логгер.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithTimeout ограничивает каждую операцию с хранилищем. Ноль — без ограничения.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithClock подменяет источник времени для CreatedAt и событий.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine создаёт движок поверх переданного хранилища.
func NewEngine(backend Backend, opts ...Option) *Engine {
	e := &Engine{
		backend: backend,
		emitter: nopEmitter{},
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

func (e *Engine) emit(kind EventKind, stationID, participantID string) {
	e.emitter.Emit(Event{
		Kind:          kind,
		StationID:     stationID,
		ParticipantID: participantID,
		At:            e.now().UTC(),
	})
}

// Join ставит участника в очередь станции и возвращает его запись.
// Повторный вызов возвращает существующую запись без изменений.
func (e *Engine) Join(ctx context.Context, stationID, participantID string) (Entry, error) {
	r, err := e.JoinRanked(ctx, stationID, participantID)
	return r.Entry, err
}

// JoinRanked делает то же, что Join, и возвращает место участника,
// прочитанное в той же транзакции. Rank равен 0, если участника сняли с
// очереди раньше, чем удалось прочитать место после проигранной гонки.
func (e *Engine) JoinRanked(ctx context.Context, stationID, participantID string) (RankedEntry, error) {
	if stationID == "" || participantID == "" {
		return RankedEntry{}, fmt.Errorf("%w: station and participant ids are required", ErrInvalidInput)
	}
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	var (
		entry   RankedEntry
		created bool
	)
	err := e.backend.Atomic(ctx, func(tx Backend) error {
		if _, err := tx.GetStation(ctx, stationID); err != nil {
			return err
		}
		existing, err := tx.Get(ctx, stationID, participantID)
		switch {
		case err == nil:
			entry.Entry = existing
		case errors.Is(err, ErrEntryNotFound):
			pos, err := tx.NextPosition(ctx, stationID)
			if err != nil {
				return err
			}
			entry.Entry = Entry{
				StationID:     stationID,
				ParticipantID: participantID,
				Position:      pos,
				CreatedAt:     e.now().UTC(),
			}
			if err := tx.Insert(ctx, entry.Entry); err != nil {
				return err
			}
			created = true
		default:
			return err
		}
		entry.Rank, err = tx.Rank(ctx, stationID, participantID)
		return err
	})
	if errors.Is(err, ErrDuplicateEntry) {
		// Конкурентный Join того же участника закоммитился раньше.
		winner, gerr := e.backend.Get(ctx, stationID, participantID)
		if gerr != nil {
			return RankedEntry{}, gerr
		}
		rank, rerr := e.backend.Rank(ctx, stationID, participantID)
		if rerr != nil && !errors.Is(rerr, ErrEntryNotFound) {
			return RankedEntry{}, rerr
		}
		return RankedEntry{Entry: winner, Rank: rank}, nil
	}
	if err != nil {
		return RankedEntry{}, err
	}

	if created {
		e.log.Debug("участник встал в очередь",
			zap.String("station_id", stationID),
			zap.String("participant_id", participantID),
			zap.Int64("position", entry.Position))
		e.emit(KindStationQueueChanged, stationID, "")
		e.emit(KindPersonalQueueChanged, stationID, participantID)
	}
	return entry, nil
}

// Leave убирает участника из очереди станции. Идемпотентна.
func (e *Engine) Leave(ctx context.Context, stationID, participantID string) (bool, error) {
	if stationID == "" || participantID == "" {
		return false, fmt.Errorf("%w: station and participant ids are required", ErrInvalidInput)
	}
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	removed, err := e.backend.DeleteByParticipant(ctx, stationID, participantID)
	if err != nil {
		return false, err
	}
	if removed {
		e.emit(KindStationQueueChanged, stationID, "")
		e.emit(KindPersonalQueueChanged, stationID, participantID)
		e.emit(KindStationMembersChanged, stationID, "")
	}
	return removed, nil
}

// authorize сравнивает ключ с ключом станции. Отсутствие станции и неверный
// ключ дают одну и ту же ошибку ErrForbidden.
func (e *Engine) authorize(ctx context.Context, stationID, managerKey string) error {
	st, err := e.backend.GetStation(ctx, stationID)
	if errors.Is(err, ErrStationNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if managerKey == "" || subtle.ConstantTimeCompare([]byte(st.ManagerKey), []byte(managerKey)) != 1 {
		return ErrForbidden
	}
	return nil
}

// ViewQueue возвращает очередь станции по возрастанию позиции.
func (e *Engine) ViewQueue(ctx context.Context, stationID, managerKey string) ([]Entry, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	if err := e.authorize(ctx, stationID, managerKey); err != nil {
		return nil, err
	}
	return e.backend.ListByStation(ctx, stationID)
}

// Pop снимает участника с начала очереди. Пустая очередь — не ошибка:
// возвращается ok == false.
func (e *Engine) Pop(ctx context.Context, stationID, managerKey string) (Entry, bool, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	if err := e.authorize(ctx, stationID, managerKey); err != nil {
		return Entry{}, false, err
	}
	popped, ok, err := e.backend.DeleteFront(ctx, stationID)
	if err != nil || !ok {
		return Entry{}, false, err
	}

	e.log.Debug("участник снят с очереди",
		zap.String("station_id", stationID),
		zap.String("participant_id", popped.ParticipantID),
		zap.Int64("position", popped.Position))
	e.emit(KindStationQueueChanged, stationID, "")
	e.emit(KindStationQueuePopped, stationID, popped.ParticipantID)
	e.emit(KindPersonalQueueChanged, stationID, popped.ParticipantID)
	e.emit(KindStationMembersChanged, stationID, "")
	return popped, true, nil
}

// Rank возвращает текущее место участника в очереди станции.
func (e *Engine) Rank(ctx context.Context, stationID, participantID string) (int, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.backend.Rank(ctx, stationID, participantID)
}

// MyQueues собирает сводку участника по всем станциям, где он стоит.
// Место считается заново для каждой станции.
func (e *Engine) MyQueues(ctx context.Context, participantID string) ([]MyQueue, error) {
	if participantID == "" {
		return nil, fmt.Errorf("%w: participant id is required", ErrInvalidInput)
	}
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	entries, err := e.backend.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	out := make([]MyQueue, 0, len(entries))
	for _, entry := range entries {
		st, err := e.backend.GetStation(ctx, entry.StationID)
		if errors.Is(err, ErrStationNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		rank, err := e.backend.Rank(ctx, entry.StationID, participantID)
		if errors.Is(err, ErrEntryNotFound) {
			// снят с очереди между чтениями
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, MyQueue{
			StationID:   st.ID,
			StationName: st.Name,
			Position:    entry.Position,
			Rank:        rank,
			JoinedAt:    entry.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].StationID < out[j].StationID
	})
	return out, nil
}

// StationQueue читает очередь станции без проверки ключа. Используется
// только для построения уведомлений.
func (e *Engine) StationQueue(ctx context.Context, stationID string) ([]Entry, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.backend.ListByStation(ctx, stationID)
}

// CreateStation создаёт станцию и возвращает её вместе с ключом менеджера.
func (e *Engine) CreateStation(ctx context.Context, name string) (Station, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Station{}, fmt.Errorf("%w: station name is empty", ErrInvalidInput)
	}
	key, err := newManagerKey()
	if err != nil {
		return Station{}, fmt.Errorf("generate manager key: %w", err)
	}
	st := Station{
		ID:         uuid.NewString(),
		Name:       name,
		ManagerKey: key,
		CreatedAt:  e.now().UTC(),
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	if err := e.backend.CreateStation(ctx, st); err != nil {
		return Station{}, err
	}
	e.log.Info("станция создана", zap.String("station_id", st.ID), zap.String("name", st.Name))
	return st, nil
}

// DeleteStation удаляет станцию, все её записи и счётчик одной транзакцией.
func (e *Engine) DeleteStation(ctx context.Context, stationID string) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	var members []Entry
	err := e.backend.Atomic(ctx, func(tx Backend) error {
		if _, err := tx.GetStation(ctx, stationID); err != nil {
			return err
		}
		var err error
		if members, err = tx.ListByStation(ctx, stationID); err != nil {
			return err
		}
		if err := tx.DeleteAllForStation(ctx, stationID); err != nil {
			return err
		}
		return tx.DeleteStation(ctx, stationID)
	})
	if err != nil {
		return err
	}

	e.log.Info("станция удалена", zap.String("station_id", stationID), zap.Int("entries", len(members)))
	e.emit(KindStationQueueChanged, stationID, "")
	for _, m := range members {
		e.emit(KindPersonalQueueChanged, stationID, m.ParticipantID)
	}
	return nil
}

// ListStations возвращает все станции.
func (e *Engine) ListStations(ctx context.Context) ([]Station, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.backend.ListStations(ctx)
}

// Resync повторно рассылает состояние станции и её участников, чтобы
// подписчики, пропустившие уведомление, догнали текущее состояние.
func (e *Engine) Resync(stationID string) {
	e.emit(KindStationQueueChanged, stationID, "")
	e.emit(KindStationMembersChanged, stationID, "")
}

// RefreshStation рассылает только состояние очереди станции, без сводок
// каждого участника. Используется периодической ресинхронизацией.
func (e *Engine) RefreshStation(stationID string) {
	e.emit(KindStationQueueChanged, stationID, "")
}

// ResyncParticipant повторно рассылает сводку участника.
func (e *Engine) ResyncParticipant(participantID string) {
	e.emit(KindPersonalQueueChanged, "", participantID)
}

func newManagerKey() (string, error) {
	b := make([]byte, managerKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
