package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"station_queue/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, b *Backend, stationID string) {
	t.Helper()
	require.NoError(t, b.CreateStation(context.Background(), queue.Station{
		ID:         stationID,
		Name:       "Станция " + stationID,
		ManagerKey: "key-" + stationID,
		CreatedAt:  time.Now().UTC(),
	}))
}

func TestNextPositionStartsAtFloor(t *testing.T) {
	b := New(100)
	ctx := context.Background()

	for want := int64(100); want < 105; want++ {
		got, err := b.NextPosition(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	got, err := b.NextPosition(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, int64(100), got, "Счётчики станций независимы")
}

func TestInsertRejectsDuplicates(t *testing.T) {
	b := New(1)
	ctx := context.Background()
	seed(t, b, "s1")

	require.NoError(t, b.Insert(ctx, queue.Entry{StationID: "s1", ParticipantID: "a", Position: 1}))
	assert.ErrorIs(t, b.Insert(ctx, queue.Entry{StationID: "s1", ParticipantID: "a", Position: 2}), queue.ErrDuplicateEntry)
	assert.ErrorIs(t, b.Insert(ctx, queue.Entry{StationID: "s1", ParticipantID: "b", Position: 1}), queue.ErrStorageConflict)
	assert.ErrorIs(t, b.Insert(ctx, queue.Entry{StationID: "nope", ParticipantID: "a", Position: 1}), queue.ErrStationNotFound)
}

func TestListAndDeleteFront(t *testing.T) {
	b := New(1)
	ctx := context.Background()
	seed(t, b, "s1")

	for _, e := range []queue.Entry{
		{StationID: "s1", ParticipantID: "c", Position: 7},
		{StationID: "s1", ParticipantID: "a", Position: 3},
		{StationID: "s1", ParticipantID: "b", Position: 5},
	} {
		require.NoError(t, b.Insert(ctx, e))
	}

	list, err := b.ListByStation(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{3, 5, 7}, []int64{list[0].Position, list[1].Position, list[2].Position})

	rank, err := b.Rank(ctx, "s1", "c")
	require.NoError(t, err)
	assert.Equal(t, 3, rank)

	front, ok, err := b.DeleteFront(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", front.ParticipantID)

	removed, err := b.DeleteByParticipant(ctx, "s1", "c")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = b.DeleteByParticipant(ctx, "s1", "c")
	require.NoError(t, err)
	assert.False(t, removed)

	_, _, err = b.DeleteFront(ctx, "s1")
	require.NoError(t, err)
	_, ok, err = b.DeleteFront(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAtomicRollsBackOnError(t *testing.T) {
	b := New(100)
	ctx := context.Background()
	seed(t, b, "s1")

	boom := errors.New("boom")
	err := b.Atomic(ctx, func(tx queue.Backend) error {
		pos, err := tx.NextPosition(ctx, "s1")
		require.NoError(t, err)
		require.NoError(t, tx.Insert(ctx, queue.Entry{StationID: "s1", ParticipantID: "a", Position: pos}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = b.Get(ctx, "s1", "a")
	assert.ErrorIs(t, err, queue.ErrEntryNotFound)
	pos, err := b.NextPosition(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), pos, "Откат не должен оставлять пропуск в позициях")
}

func TestDeleteStationCascades(t *testing.T) {
	b := New(100)
	ctx := context.Background()
	seed(t, b, "s1")

	pos, err := b.NextPosition(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, b.Insert(ctx, queue.Entry{StationID: "s1", ParticipantID: "a", Position: pos}))

	require.NoError(t, b.DeleteStation(ctx, "s1"))
	assert.ErrorIs(t, b.DeleteStation(ctx, "s1"), queue.ErrStationNotFound)

	mine, err := b.ListByParticipant(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, mine)

	seed(t, b, "s1")
	pos, err = b.NextPosition(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), pos)
}

func TestCanceledContext(t *testing.T) {
	b := New(100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.NextPosition(ctx, "s1")
	assert.ErrorIs(t, err, queue.ErrStorageUnavailable)
	err = b.Atomic(ctx, func(queue.Backend) error { return nil })
	assert.ErrorIs(t, err, queue.ErrStorageUnavailable)
}
