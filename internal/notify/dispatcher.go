package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"station_queue/internal/queue"

	"go.uber.org/zap"
)

// Source — чтение текущего состояния для построения уведомлений.
// Реализуется queue.Engine.
type Source interface {
	StationQueue(ctx context.Context, stationID string) ([]queue.Entry, error)
	MyQueues(ctx context.Context, participantID string) ([]queue.MyQueue, error)
}

// Options настраивает Dispatcher.
type Options struct {
	Buffer      int
	Workers     int
	MaxAttempts int
	Backoff     Backoff
	// Timeout ограничивает одну попытку: чтение состояния и публикацию.
	Timeout time.Duration
}

func (o *Options) setDefaults() {
	if o.Buffer < 1 {
		o.Buffer = 1024
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 1
	}
	if o.Backoff == nil {
		o.Backoff = ExponentialJitter{Initial: 200 * time.Millisecond, Max: 10 * time.Second}
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
}

// Dispatcher принимает события движка через буферизированный канал и
// доставляет их в Sink из пула воркеров. Emit никогда не блокирует:
// при переполненном буфере событие отбрасывается с предупреждением.
type Dispatcher struct {
	sink Sink
	log  *zap.Logger
	opts Options

	mu      sync.RWMutex
	source  Source
	events  chan queue.Event
	stopped bool
	abort   chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	aborted sync.Once
}

var _ queue.Emitter = (*Dispatcher)(nil)

// NewDispatcher создаёт диспетчер. Воркеры запускаются в Start.
func NewDispatcher(sink Sink, log *zap.Logger, opts Options) *Dispatcher {
	opts.setDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		sink:   sink,
		log:    log,
		opts:   opts,
		events: make(chan queue.Event, opts.Buffer),
		abort:  make(chan struct{}),
	}
}

// Start запускает воркеры. Source передаётся отдельно, потому что движок
// создаётся уже с диспетчером в качестве Emitter.
func (d *Dispatcher) Start(source Source) {
	d.once.Do(func() {
		d.mu.Lock()
		d.source = source
		d.mu.Unlock()
		for i := 0; i < d.opts.Workers; i++ {
			d.wg.Add(1)
			go d.worker()
		}
	})
}

// Emit ставит событие в очередь доставки.
func (d *Dispatcher) Emit(evt queue.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.log.Warn("диспетчер остановлен, событие отброшено", eventFields(evt)...)
		return
	}
	select {
	case d.events <- evt:
	default:
		d.log.Warn("буфер уведомлений переполнен, событие отброшено", eventFields(evt)...)
	}
}

// Close прекращает приём событий и дожидается доставки оставшихся.
// Когда ctx истекает, повторы прерываются.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.events)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		d.aborted.Do(func() { close(d.abort) })
		<-done
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for evt := range d.events {
		d.handle(evt)
	}
}

func (d *Dispatcher) handle(evt queue.Event) {
	switch evt.Kind {
	case queue.KindStationQueueChanged:
		d.deliver(evt, func(ctx context.Context) error {
			entries, err := d.source.StationQueue(ctx, evt.StationID)
			if err != nil {
				return err
			}
			return d.sink.Publish(ctx, Message{
				Channel: StationChannel(evt.StationID),
				Event:   EventQueueChanged,
				Data:    stationQueuePayload(evt.StationID, entries),
				SentAt:  time.Now().UTC(),
			})
		})
	case queue.KindStationQueuePopped:
		d.deliver(evt, func(ctx context.Context) error {
			return d.sink.Publish(ctx, Message{
				Channel: StationChannel(evt.StationID),
				Event:   EventPopped,
				Data:    PoppedPayload{StationID: evt.StationID, ParticipantID: evt.ParticipantID},
				SentAt:  time.Now().UTC(),
			})
		})
	case queue.KindPersonalQueueChanged:
		d.deliverPersonal(evt, evt.ParticipantID)
	case queue.KindStationMembersChanged:
		d.fanOutMembers(evt)
	default:
		d.log.Warn("неизвестный тип события", eventFields(evt)...)
	}
}

func (d *Dispatcher) deliverPersonal(evt queue.Event, participantID string) {
	d.deliver(evt, func(ctx context.Context) error {
		qs, err := d.source.MyQueues(ctx, participantID)
		if err != nil {
			return err
		}
		return d.sink.Publish(ctx, Message{
			Channel: ParticipantChannel(participantID),
			Event:   EventMyQueuesChange,
			Data:    myQueuesPayload(participantID, qs),
			SentAt:  time.Now().UTC(),
		})
	})
}

// fanOutMembers рассылает персональные сводки всем, кто сейчас стоит в
// очереди станции. Список читается в момент доставки.
func (d *Dispatcher) fanOutMembers(evt queue.Event) {
	var members []queue.Entry
	ok := d.deliver(evt, func(ctx context.Context) error {
		var err error
		members, err = d.source.StationQueue(ctx, evt.StationID)
		return err
	})
	if !ok {
		return
	}
	for _, m := range members {
		personal := evt
		personal.Kind = queue.KindPersonalQueueChanged
		personal.ParticipantID = m.ParticipantID
		d.deliverPersonal(personal, m.ParticipantID)
	}
}

// deliver выполняет попытку с повторами и паузами. Исчерпанные попытки
// логируются, ошибка наружу не передаётся.
func (d *Dispatcher) deliver(evt queue.Event, attemptFn func(ctx context.Context) error) bool {
	var err error
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), d.opts.Timeout)
		err = attemptFn(ctx)
		cancel()
		if err == nil {
			return true
		}
		if attempt == d.opts.MaxAttempts {
			break
		}
		if !d.sleep(d.opts.Backoff.Delay(attempt)) {
			err = errors.Join(err, errors.New("notify: delivery aborted on shutdown"))
			break
		}
	}
	d.log.Warn("не удалось доставить уведомление",
		append(eventFields(evt), zap.Error(err))...)
	return false
}

func (d *Dispatcher) sleep(delay time.Duration) bool {
	if delay <= 0 {
		select {
		case <-d.abort:
			return false
		default:
			return true
		}
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-d.abort:
		return false
	}
}

func eventFields(evt queue.Event) []zap.Field {
	return []zap.Field{
		zap.String("kind", string(evt.Kind)),
		zap.String("station_id", evt.StationID),
		zap.String("participant_id", evt.ParticipantID),
	}
}
