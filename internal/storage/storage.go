package storage

import (
	"context"
	"fmt"
	"time"

	"station_queue/internal/config"
	"station_queue/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDatabase открывает соединение с базой по настройкам DB_*.
func ConnectDatabase(cfg config.DBConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.PostgresDSN())
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.MySQLDSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLiteDSN())
	default:
		return nil, fmt.Errorf("storage: driver %q has no SQL dialector", cfg.Driver)
	}

	db, err := Open(dialector, log)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == config.DriverSQLite {
		// SQLite допускает одного писателя; одно соединение сериализует транзакции.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Info("подключение к базе данных успешно", zap.String("driver", cfg.Driver))
	return db, nil
}

// Open открывает gorm с переводом ошибок драйвера в ошибки gorm
// (ErrDuplicatedKey, ErrForeignKeyViolated).
// Запросы пишутся в log через NewGormLogger.
func Open(dialector gorm.Dialector, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         NewGormLogger(log, logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}
	return db, nil
}

// Migrate создаёт или обновляет таблицы stations, queue_entries, station_counters.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Station{}, &models.QueueEntry{}, &models.StationCounter{})
}

// Ping проверяет доступность базы.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// InitRedis создаёт клиент Redis. Пустой REDIS_ADDR отключает Redis: возвращается nil.
func InitRedis(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	if cfg.Addr == "" {
		log.Info("REDIS_ADDR не задан, публикация в Redis отключена")
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("storage: redis ping: %w", err)
	}
	log.Info("подключение к Redis успешно", zap.String("addr", cfg.Addr))
	return client, nil
}
