package queue

import "time"

// Station — именованная очередь с ключом оператора.
type Station struct {
	ID         string
	Name       string
	ManagerKey string
	CreatedAt  time.Time
}

// Entry — запись участника в очереди станции. Position выдаётся один раз
// и никогда не переиспользуется в рамках станции.
type Entry struct {
	StationID     string
	ParticipantID string
	Position      int64
	CreatedAt     time.Time
}

// RankedEntry — запись вместе с текущим местом в очереди (с единицы).
type RankedEntry struct {
	Entry
	Rank int
}

// MyQueue — одна строка сводки участника по всем станциям.
type MyQueue struct {
	StationID   string
	StationName string
	Position    int64
	Rank        int
	JoinedAt    time.Time
}

// Ranked annotates entries ordered by ascending position with their rank.
func Ranked(entries []Entry) []RankedEntry {
	out := make([]RankedEntry, len(entries))
	for i, e := range entries {
		out[i] = RankedEntry{Entry: e, Rank: i + 1}
	}
	return out
}
