package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"station_queue/internal/models"
	"station_queue/internal/queue"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const testFloor = 100

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "queue.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := Open(sqlite.Open(dsn), zap.NewNop())
	require.NoError(t, err, "Ошибка открытия тестовой базы")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db), "Ошибка при миграции")
	return db
}

func setupBackend(t *testing.T) (*Backend, *queue.Engine) {
	t.Helper()
	b := NewBackend(setupTestDB(t), testFloor)
	return b, queue.NewEngine(b)
}

func createStation(t *testing.T, e *queue.Engine) queue.Station {
	t.Helper()
	st, err := e.CreateStation(context.Background(), "Тестовая станция")
	require.NoError(t, err)
	return st
}

func TestGormNextPosition(t *testing.T) {
	b, e := setupBackend(t)
	ctx := context.Background()
	st := createStation(t, e)

	for want := int64(testFloor); want < testFloor+3; want++ {
		got, err := b.NextPosition(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	var counter models.StationCounter
	require.NoError(t, b.db.Where("station_id = ?", st.ID).Take(&counter).Error)
	assert.Equal(t, int64(testFloor+2), counter.LastIssued)
}

func TestGormNextPositionUnknownStation(t *testing.T) {
	b, _ := setupBackend(t)

	_, err := b.NextPosition(context.Background(), "missing")
	assert.ErrorIs(t, err, queue.ErrStationNotFound)
}

func TestGormInsertDuplicate(t *testing.T) {
	b, e := setupBackend(t)
	ctx := context.Background()
	st := createStation(t, e)

	entry := queue.Entry{StationID: st.ID, ParticipantID: "a", Position: 1, CreatedAt: time.Now().UTC()}
	require.NoError(t, b.Insert(ctx, entry))

	err := b.Insert(ctx, entry)
	assert.ErrorIs(t, err, queue.ErrDuplicateEntry)

	samePos := queue.Entry{StationID: st.ID, ParticipantID: "b", Position: 1, CreatedAt: time.Now().UTC()}
	assert.ErrorIs(t, b.Insert(ctx, samePos), queue.ErrStorageConflict)
}

func TestGormJoinPopFlow(t *testing.T) {
	b, e := setupBackend(t)
	ctx := context.Background()
	st := createStation(t, e)

	for i, p := range []string{"a", "b", "c"} {
		entry, err := e.Join(ctx, st.ID, p)
		require.NoError(t, err)
		assert.Equal(t, int64(testFloor+i), entry.Position)
	}

	again, err := e.Join(ctx, st.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(testFloor+1), again.Position)

	rank, err := b.Rank(ctx, st.ID, "c")
	require.NoError(t, err)
	assert.Equal(t, 3, rank)

	popped, ok, err := e.Pop(ctx, st.ID, st.ManagerKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", popped.ParticipantID)

	rank, err = b.Rank(ctx, st.ID, "c")
	require.NoError(t, err)
	assert.Equal(t, 2, rank)

	removed, err := e.Leave(ctx, st.ID, "b")
	require.NoError(t, err)
	assert.True(t, removed)

	entries, err := e.ViewQueue(ctx, st.ID, st.ManagerKey)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "c", entries[0].ParticipantID)

	entry, err := e.Join(ctx, st.ID, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(testFloor+3), entry.Position, "Позиция не должна переиспользоваться")
}

func TestGormPopEmpty(t *testing.T) {
	_, e := setupBackend(t)
	st := createStation(t, e)

	_, ok, err := e.Pop(context.Background(), st.ID, st.ManagerKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGormDeleteStationCascades(t *testing.T) {
	b, e := setupBackend(t)
	ctx := context.Background()
	st := createStation(t, e)

	for _, p := range []string{"a", "b"} {
		_, err := e.Join(ctx, st.ID, p)
		require.NoError(t, err)
	}
	require.NoError(t, e.DeleteStation(ctx, st.ID))

	var entries, counters int64
	require.NoError(t, b.db.Model(&models.QueueEntry{}).Where("station_id = ?", st.ID).Count(&entries).Error)
	require.NoError(t, b.db.Model(&models.StationCounter{}).Where("station_id = ?", st.ID).Count(&counters).Error)
	assert.Zero(t, entries)
	assert.Zero(t, counters)

	assert.ErrorIs(t, e.DeleteStation(ctx, st.ID), queue.ErrStationNotFound)
	_, err := e.Join(ctx, st.ID, "a")
	assert.ErrorIs(t, err, queue.ErrStationNotFound)
}

func TestGormForeignKeyCascade(t *testing.T) {
	b, e := setupBackend(t)
	ctx := context.Background()
	st := createStation(t, e)
	_, err := e.Join(ctx, st.ID, "a")
	require.NoError(t, err)

	// Удаление только строки станции: записи уходят по ON DELETE CASCADE.
	require.NoError(t, b.DeleteStation(ctx, st.ID))

	mine, err := b.ListByParticipant(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestGormMyQueues(t *testing.T) {
	_, e := setupBackend(t)
	ctx := context.Background()
	s1 := createStation(t, e)
	s2 := createStation(t, e)

	_, err := e.Join(ctx, s1.ID, "x")
	require.NoError(t, err)
	_, err = e.Join(ctx, s1.ID, "me")
	require.NoError(t, err)
	_, err = e.Join(ctx, s2.ID, "me")
	require.NoError(t, err)

	mine, err := e.MyQueues(ctx, "me")
	require.NoError(t, err)
	require.Len(t, mine, 2)

	ranks := map[string]int{}
	for _, q := range mine {
		ranks[q.StationID] = q.Rank
	}
	assert.Equal(t, map[string]int{s1.ID: 2, s2.ID: 1}, ranks)
}

func TestGormConcurrentJoins(t *testing.T) {
	_, e := setupBackend(t)
	ctx := context.Background()
	st := createStation(t, e)

	const n = 50
	positions := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry, err := e.Join(ctx, st.ID, fmt.Sprintf("p-%02d", i))
			assert.NoError(t, err)
			positions[i] = entry.Position
		}(i)
	}
	wg.Wait()

	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })
	for i, p := range positions {
		assert.Equal(t, int64(testFloor+i), p)
	}
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(gorm.ErrDuplicatedKey), queue.ErrDuplicateEntry)
	assert.ErrorIs(t, translateError(gorm.ErrForeignKeyViolated), queue.ErrStationNotFound)
	assert.ErrorIs(t, translateError(queue.ErrForbidden), queue.ErrForbidden)
	assert.ErrorIs(t, translateError(gorm.ErrInvalidDB), queue.ErrStorageUnavailable)
}

func dryRunSQL(t *testing.T, dialector gorm.Dialector) string {
	t.Helper()
	db, err := gorm.Open(dialector, &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	var row models.QueueEntry
	stmt := frontQuery(db, "s1").Take(&row).Statement
	return stmt.SQL.String()
}

func TestFrontQueryLocksRowOnMySQL(t *testing.T) {
	sql := dryRunSQL(t, mysql.New(mysql.Config{
		DSN:                       "u:p@tcp(127.0.0.1:3306)/queue?parseTime=true",
		SkipInitializeWithVersion: true,
	}))
	assert.Contains(t, sql, "FOR UPDATE")
	assert.Contains(t, sql, "ORDER BY position ASC")

	sql = dryRunSQL(t, postgres.New(postgres.Config{DSN: "host=127.0.0.1 user=u dbname=queue"}))
	assert.NotContains(t, sql, "FOR UPDATE")
}
