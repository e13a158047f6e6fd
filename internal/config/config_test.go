package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, int64(100), cfg.Queue.PositionFloor)
	assert.Equal(t, 5*time.Second, cfg.Queue.StorageTimeout)
	assert.Equal(t, 4, cfg.Notify.Workers)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("POSITION_FLOOR", "1")
	t.Setenv("STORAGE_TIMEOUT", "250ms")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, []byte("s3cret"), cfg.Auth.JWTSecret)
	assert.Equal(t, int64(1), cfg.Queue.PositionFloor)
	assert.Equal(t, 250*time.Millisecond, cfg.Queue.StorageTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestFromEnvCollectsErrors(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("POSITION_FLOOR", "abc")
	t.Setenv("NOTIFY_TIMEOUT", "soon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSITION_FLOOR")
	assert.Contains(t, err.Error(), "NOTIFY_TIMEOUT")
}

func TestValidate(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "x")
	t.Setenv("POSITION_FLOOR", "-1")
	_, err = FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSITION_FLOOR")
}

func TestDSN(t *testing.T) {
	d := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "queue"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=queue sslmode=disable", d.PostgresDSN())
	assert.Equal(t, "u:p@tcp(db:5432)/queue?parseTime=true&charset=utf8mb4", d.MySQLDSN())
	assert.Contains(t, d.SQLiteDSN(), "foreign_keys(1)")

	d.DSN = "custom"
	assert.Equal(t, "custom", d.PostgresDSN())
	assert.Equal(t, "custom", d.SQLiteDSN())
}

func TestResyncSchedule(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "0 */1 * * * *", cfg.ResyncSchedule, "Незаданная переменная берёт расписание по умолчанию")

	t.Setenv("RESYNC_SCHEDULE", "")
	cfg, err = FromEnv()
	require.NoError(t, err)
	assert.Empty(t, cfg.ResyncSchedule, "Пустая переменная отключает ресинхронизацию")

	t.Setenv("RESYNC_SCHEDULE", "*/10 * * * * *")
	cfg, err = FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "*/10 * * * * *", cfg.ResyncSchedule)
}
