// Команда migrate создаёт или обновляет схему базы без запуска сервера.
package main

import (
	"log"

	"station_queue/internal/config"
	"station_queue/internal/logger"
	"station_queue/internal/storage"

	"go.uber.org/zap"
)

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

	if cfg.DB.Driver == config.DriverMemory {
		zlog.Info("хранилище в памяти не требует миграции")
		return
	}

	db, err := storage.ConnectDatabase(cfg.DB, zlog)
	if err != nil {
		zlog.Fatal("ошибка подключения к базе данных", zap.Error(err))
	}
	if err := storage.Migrate(db); err != nil {
		zlog.Fatal("ошибка при миграции", zap.Error(err))
	}
	zlog.Info("миграция выполнена")
}
