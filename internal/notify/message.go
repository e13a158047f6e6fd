package notify

import (
	"time"

	"station_queue/internal/queue"
)

// Имена событий, которые видят подписчики.
const (
	EventQueueChanged   = "queue-changed"
	EventPopped         = "popped"
	EventMyQueuesChange = "my-queues-changed"
)

// Message — одно уведомление для одного канала.
type Message struct {
	Channel string    `json:"channel"`
	Event   string    `json:"event"`
	Data    any       `json:"data"`
	SentAt  time.Time `json:"sent_at"`
}

// StationChannel — канал очереди станции.
func StationChannel(stationID string) string { return "station-" + stationID }

// ParticipantChannel — персональный канал участника.
func ParticipantChannel(participantID string) string { return "participant-" + participantID }

type QueueItem struct {
	ParticipantID string `json:"participant_id"`
	Position      int64  `json:"position"`
	Rank          int    `json:"rank"`
}

type StationQueuePayload struct {
	StationID string      `json:"station_id"`
	Queue     []QueueItem `json:"queue"`
}

type PoppedPayload struct {
	StationID     string `json:"station_id"`
	ParticipantID string `json:"participant_id"`
}

type MyQueueItem struct {
	StationID   string `json:"station_id"`
	StationName string `json:"station_name"`
	Position    int64  `json:"position"`
	Rank        int    `json:"rank"`
}

type MyQueuesPayload struct {
	ParticipantID string        `json:"participant_id"`
	Queues        []MyQueueItem `json:"queues"`
}

func stationQueuePayload(stationID string, entries []queue.Entry) StationQueuePayload {
	items := make([]QueueItem, 0, len(entries))
	for _, e := range queue.Ranked(entries) {
		items = append(items, QueueItem{ParticipantID: e.ParticipantID, Position: e.Position, Rank: e.Rank})
	}
	return StationQueuePayload{StationID: stationID, Queue: items}
}

func myQueuesPayload(participantID string, qs []queue.MyQueue) MyQueuesPayload {
	items := make([]MyQueueItem, 0, len(qs))
	for _, q := range qs {
		items = append(items, MyQueueItem{
			StationID:   q.StationID,
			StationName: q.StationName,
			Position:    q.Position,
			Rank:        q.Rank,
		})
	}
	return MyQueuesPayload{ParticipantID: participantID, Queues: items}
}
