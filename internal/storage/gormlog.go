package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// GormLogger направляет журнал gorm в zap. ErrRecordNotFound не считается
// ошибкой: промах Get/GetStation — обычный путь Join и проверки ключа.
type GormLogger struct {
	log   *zap.Logger
	level logger.LogLevel
	slow  time.Duration
}

var _ logger.Interface = (*GormLogger)(nil)

func NewGormLogger(log *zap.Logger, level logger.LogLevel) *GormLogger {
	if log == nil {
		log = zap.NewNop()
	}
	return &GormLogger{log: log.Named("gorm"), level: level, slow: slowQueryThreshold}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *GormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.log.Error(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	fields := func() []zap.Field {
		sql, rows := fc()
		return []zap.Field{
			zap.String("sql", sql),
			zap.Int64("rows", rows),
			zap.Duration("elapsed", elapsed),
		}
	}

	switch {
	case err != nil && errors.Is(err, gorm.ErrRecordNotFound):
		// промах — не ошибка
	case err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated)):
		// конфликты разбираются в translateError
		if l.level >= logger.Info {
			l.log.Debug("конфликт ограничения", append(fields(), zap.Error(err))...)
		}
	case err != nil && l.level >= logger.Error:
		l.log.Error("ошибка запроса", append(fields(), zap.Error(err))...)
		return
	}
	if err == nil && l.slow > 0 && elapsed > l.slow && l.level >= logger.Warn {
		l.log.Warn("медленный запрос", fields()...)
		return
	}
	if err == nil && l.level >= logger.Info {
		l.log.Debug("запрос", fields()...)
	}
}
