package tasks

import (
	"context"
	"time"

	"station_queue/internal/queue"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const resyncTimeout = 30 * time.Second

// ResyncStations повторно рассылает состояние очереди всех станций, чтобы
// операторы, пропустившие уведомление, догнали текущее состояние. Сводки
// участников здесь не рассылаются: их догоняет подписка на личный канал.
func ResyncStations(ctx context.Context, engine *queue.Engine, log *zap.Logger) int {
	stations, err := engine.ListStations(ctx)
	if err != nil {
		log.Warn("ошибка получения списка станций для ресинхронизации", zap.Error(err))
		return 0
	}
	for _, st := range stations {
		engine.RefreshStation(st.ID)
	}
	log.Debug("ресинхронизация выполнена", zap.Int("stations", len(stations)))
	return len(stations)
}

// InitScheduler инициализирует планировщик cron-задач. Пустое расписание
// отключает ресинхронизацию и возвращает nil.
func InitScheduler(schedule string, engine *queue.Engine, log *zap.Logger) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), resyncTimeout)
		defer cancel()
		ResyncStations(ctx, engine, log)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Info("cron-планировщик запущен", zap.String("schedule", schedule))
	return c, nil
}
