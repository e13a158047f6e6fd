package storage

import (
	"context"
	"errors"
	"fmt"

	"station_queue/internal/models"
	"station_queue/internal/queue"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxRetries ограничивает повторы при гонках за счётчик или начало очереди.
const maxRetries = 5

var _ queue.Backend = (*Backend)(nil)

// Backend реализует queue.Backend поверх gorm. Внутри Atomic db — это
// транзакция, и все вызовы идут через неё.
type Backend struct {
	db    *gorm.DB
	floor int64
}

// NewBackend создаёт хранилище; первая позиция каждой станции равна floor.
func NewBackend(db *gorm.DB, floor int64) *Backend {
	return &Backend{db: db, floor: floor}
}

func (b *Backend) conn(ctx context.Context) *gorm.DB {
	return b.db.WithContext(ctx)
}

// Atomic выполняет fn в одной транзакции базы. Внутри уже открытой
// транзакции gorm использует SAVEPOINT.
func (b *Backend) Atomic(ctx context.Context, fn func(tx queue.Backend) error) error {
	err := b.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Backend{db: tx, floor: b.floor})
	})
	return translateError(err)
}

// NextPosition увеличивает счётчик станции. UPDATE берёт блокировку строки,
// поэтому конкурентные вызовы выстраиваются друг за другом до коммита.
func (b *Backend) NextPosition(ctx context.Context, stationID string) (int64, error) {
	var pos int64
	err := b.conn(ctx).Transaction(func(tx *gorm.DB) error {
		for attempt := 0; attempt < maxRetries; attempt++ {
			res := tx.Model(&models.StationCounter{}).
				Where("station_id = ?", stationID).
				UpdateColumn("last_issued", gorm.Expr("last_issued + 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var st models.Station
				if err := tx.Select("id").Where("id = ?", stationID).Take(&st).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return queue.ErrStationNotFound
					}
					return err
				}
				res = tx.Clauses(clause.OnConflict{DoNothing: true}).
					Omit(clause.Associations).
					Create(&models.StationCounter{StationID: stationID, LastIssued: b.floor})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					// счётчик создан конкурентной транзакцией
					continue
				}
				pos = b.floor
				return nil
			}

			var counter models.StationCounter
			if err := tx.Where("station_id = ?", stationID).Take(&counter).Error; err != nil {
				return err
			}
			pos = counter.LastIssued
			return nil
		}
		return fmt.Errorf("%w: position counter for station %s", queue.ErrStorageConflict, stationID)
	})
	if err != nil {
		return 0, translateError(err)
	}
	return pos, nil
}

func (b *Backend) Get(ctx context.Context, stationID, participantID string) (queue.Entry, error) {
	var row models.QueueEntry
	err := b.conn(ctx).
		Where("station_id = ? AND participant_id = ?", stationID, participantID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return queue.Entry{}, queue.ErrEntryNotFound
	}
	if err != nil {
		return queue.Entry{}, translateError(err)
	}
	return toEntry(row), nil
}

func (b *Backend) Insert(ctx context.Context, e queue.Entry) error {
	row := models.QueueEntry{
		StationID:     e.StationID,
		ParticipantID: e.ParticipantID,
		Position:      e.Position,
		CreatedAt:     e.CreatedAt,
	}
	return translateError(b.conn(ctx).Omit(clause.Associations).Create(&row).Error)
}

func (b *Backend) ListByStation(ctx context.Context, stationID string) ([]queue.Entry, error) {
	var rows []models.QueueEntry
	if err := b.conn(ctx).
		Where("station_id = ?", stationID).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return toEntries(rows), nil
}

func (b *Backend) ListByParticipant(ctx context.Context, participantID string) ([]queue.Entry, error) {
	var rows []models.QueueEntry
	if err := b.conn(ctx).
		Where("participant_id = ?", participantID).
		Order("created_at ASC").
		Order("station_id ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return toEntries(rows), nil
}

// Rank считает место участника одним запросом по текущему состоянию.
func (b *Backend) Rank(ctx context.Context, stationID, participantID string) (int, error) {
	e, err := b.Get(ctx, stationID, participantID)
	if err != nil {
		return 0, err
	}
	var ahead int64
	if err := b.conn(ctx).Model(&models.QueueEntry{}).
		Where("station_id = ? AND position < ?", stationID, e.Position).
		Count(&ahead).Error; err != nil {
		return 0, translateError(err)
	}
	return int(ahead) + 1, nil
}

// DeleteFront удаляет запись с минимальной позицией. Если конкурентный Pop
// успел удалить ту же запись, берётся следующая.
func (b *Backend) DeleteFront(ctx context.Context, stationID string) (queue.Entry, bool, error) {
	var (
		removed queue.Entry
		ok      bool
	)
	err := b.conn(ctx).Transaction(func(tx *gorm.DB) error {
		for attempt := 0; attempt < maxRetries; attempt++ {
			var front models.QueueEntry
			err := frontQuery(tx, stationID).Take(&front).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			res := tx.Where("station_id = ? AND participant_id = ? AND position = ?",
				front.StationID, front.ParticipantID, front.Position).
				Delete(&models.QueueEntry{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				removed, ok = toEntry(front), true
				return nil
			}
		}
		return fmt.Errorf("%w: front of station %s", queue.ErrStorageConflict, stationID)
	})
	if err != nil {
		return queue.Entry{}, false, translateError(err)
	}
	return removed, ok, nil
}

// frontQuery выбирает запись с минимальной позицией. В MySQL (REPEATABLE
// READ) обычный SELECT повторно видит снимок транзакции, поэтому там строка
// читается с FOR UPDATE: проигравший Pop дождётся коммита и увидит следующую
// запись. В postgres (READ COMMITTED) каждый SELECT берёт свежий снимок, а
// FOR UPDATE с LIMIT может вернуть пустой результат вместо следующей строки;
// sqlite сериализует запись сам.
func frontQuery(tx *gorm.DB, stationID string) *gorm.DB {
	q := tx.Where("station_id = ?", stationID).Order("position ASC")
	if tx.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (b *Backend) DeleteByParticipant(ctx context.Context, stationID, participantID string) (bool, error) {
	res := b.conn(ctx).
		Where("station_id = ? AND participant_id = ?", stationID, participantID).
		Delete(&models.QueueEntry{})
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (b *Backend) DeleteAllForStation(ctx context.Context, stationID string) error {
	return translateError(b.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("station_id = ?", stationID).Delete(&models.QueueEntry{}).Error; err != nil {
			return err
		}
		return tx.Where("station_id = ?", stationID).Delete(&models.StationCounter{}).Error
	}))
}

func (b *Backend) CreateStation(ctx context.Context, s queue.Station) error {
	row := models.Station{
		ID:         s.ID,
		Name:       s.Name,
		ManagerKey: s.ManagerKey,
		CreatedAt:  s.CreatedAt,
	}
	return translateError(b.conn(ctx).Create(&row).Error)
}

func (b *Backend) GetStation(ctx context.Context, stationID string) (queue.Station, error) {
	var row models.Station
	err := b.conn(ctx).Where("id = ?", stationID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return queue.Station{}, queue.ErrStationNotFound
	}
	if err != nil {
		return queue.Station{}, translateError(err)
	}
	return toStation(row), nil
}

func (b *Backend) ListStations(ctx context.Context) ([]queue.Station, error) {
	var rows []models.Station
	if err := b.conn(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	out := make([]queue.Station, 0, len(rows))
	for _, r := range rows {
		out = append(out, toStation(r))
	}
	return out, nil
}

func (b *Backend) DeleteStation(ctx context.Context, stationID string) error {
	res := b.conn(ctx).Where("id = ?", stationID).Delete(&models.Station{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return queue.ErrStationNotFound
	}
	return nil
}

// translateError сводит ошибки gorm и драйвера к ошибкам пакета queue.
// Ошибки, уже принадлежащие queue, проходят без изменений.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case queue.IsDomainError(err):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", queue.ErrDuplicateEntry, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return queue.ErrStationNotFound
	default:
		return fmt.Errorf("%w: %v", queue.ErrStorageUnavailable, err)
	}
}

func toEntry(r models.QueueEntry) queue.Entry {
	return queue.Entry{
		StationID:     r.StationID,
		ParticipantID: r.ParticipantID,
		Position:      r.Position,
		CreatedAt:     r.CreatedAt,
	}
}

func toEntries(rows []models.QueueEntry) []queue.Entry {
	out := make([]queue.Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, toEntry(r))
	}
	return out
}

func toStation(r models.Station) queue.Station {
	return queue.Station{
		ID:         r.ID,
		Name:       r.Name,
		ManagerKey: r.ManagerKey,
		CreatedAt:  r.CreatedAt,
	}
}
