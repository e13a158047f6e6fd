package queue

import "time"

// EventKind — тип уведомления после успешной мутации.
type EventKind string

const (
	// KindStationQueueChanged: полный упорядоченный список станции изменился.
	KindStationQueueChanged EventKind = "station_queue_changed"
	// KindStationQueuePopped: оператор снял участника с начала очереди.
	KindStationQueuePopped EventKind = "station_queue_popped"
	// KindPersonalQueueChanged: сводка участника по станциям изменилась.
	KindPersonalQueueChanged EventKind = "personal_queue_changed"
	// KindStationMembersChanged: места всех оставшихся участников станции
	// могли сдвинуться; получатель рассылает им персональные сводки.
	KindStationMembersChanged EventKind = "station_members_changed"
)

// Event несёт только идентификаторы: содержимое уведомления строится
// заново из текущего состояния в момент доставки.
type Event struct {
	Kind          EventKind
	StationID     string
	ParticipantID string
	At            time.Time
}

// Emitter принимает события. Emit не должен блокировать вызывающего.
type Emitter interface {
	Emit(evt Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Event)

func (f EmitterFunc) Emit(evt Event) { f(evt) }

type nopEmitter struct{}

func (nopEmitter) Emit(Event) {}
