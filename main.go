package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "station_queue/docs"
	"station_queue/internal/auth"
	"station_queue/internal/config"
	"station_queue/internal/handlers"
	"station_queue/internal/logger"
	"station_queue/internal/notify"
	"station_queue/internal/queue"
	"station_queue/internal/storage"
	"station_queue/internal/storage/memory"
	"station_queue/internal/tasks"
	"station_queue/internal/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// @Title						Очередь на станциях
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Ошибка конфигурации: ", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal("Ошибка создания логгера: ", err)
	}
	defer zlog.Sync()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("сервис остановлен с ошибкой", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, ping, err := openBackend(cfg, zlog)
	if err != nil {
		return err
	}

	hub := ws.NewHub(zlog.Named("ws"))
	go hub.Run(ctx)

	sinks := notify.Multi{hub, notify.NewLogSink(zlog.Named("notify"))}
	rdb, err := storage.InitRedis(ctx, cfg.Redis, zlog)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		sinks = append(sinks, notify.NewRedisSink(rdb, cfg.Redis.Prefix))
	}

	dispatcher := notify.NewDispatcher(sinks, zlog.Named("notify"), notify.Options{
		Buffer:      cfg.Notify.Buffer,
		Workers:     cfg.Notify.Workers,
		MaxAttempts: cfg.Notify.MaxAttempts,
		Backoff: notify.ExponentialJitter{
			Initial: cfg.Notify.BackoffInitial,
			Max:     cfg.Notify.BackoffMax,
		},
		Timeout: cfg.Notify.Timeout,
	})

	engine := queue.NewEngine(backend,
		queue.WithEmitter(dispatcher),
		queue.WithLogger(zlog.Named("queue")),
		queue.WithTimeout(cfg.Queue.StorageTimeout),
	)
	dispatcher.Start(engine)

	scheduler, err := tasks.InitScheduler(cfg.ResyncSchedule, engine, zlog.Named("tasks"))
	if err != nil {
		return fmt.Errorf("cron: %w", err)
	}

	secret := cfg.Auth.JWTSecret
	if len(secret) == 0 {
		zlog.Warn("JWT_SECRET не задан, используется случайный секрет; токены не переживут перезапуск")
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return err
		}
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handlers.NewHandler(handlers.Deps{
		Engine: engine,
		Tokens: auth.NewIssuer(secret, cfg.Auth.TokenTTL),
		Hub:    hub,
		Ping:   ping,
		Log:    zlog.Named("http"),
	})
	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: handlers.NewRouter(h, handlers.RouterConfig{
			CORSOrigins:     cfg.CORSOrigins,
			AdminSecretHash: cfg.Auth.AdminSecretHash,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("сервер запущен", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		zlog.Info("получен сигнал остановки")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("ошибка остановки HTTP-сервера", zap.Error(err))
	}
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		zlog.Warn("очередь уведомлений не доставлена полностью", zap.Error(err))
	}
	return nil
}

func openBackend(cfg *config.Config, zlog *zap.Logger) (queue.Backend, func(context.Context) error, error) {
	if cfg.DB.Driver == config.DriverMemory {
		zlog.Warn("используется хранилище в памяти, данные не сохраняются между запусками")
		return memory.New(cfg.Queue.PositionFloor), nil, nil
	}

	db, err := storage.ConnectDatabase(cfg.DB, zlog)
	if err != nil {
		return nil, nil, err
	}
	if err := storage.Migrate(db); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	ping := func(ctx context.Context) error { return pingDB(ctx, db) }
	return storage.NewBackend(db, cfg.Queue.PositionFloor), ping, nil
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	if err := storage.Ping(ctx, db); err != nil {
		return fmt.Errorf("%w: %v", queue.ErrStorageUnavailable, err)
	}
	return nil
}
