package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config собирает все настройки сервиса из окружения.
type Config struct {
	HTTPAddr    string
	CORSOrigins []string

	DB        DBConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Queue     QueueConfig
	Notify    NotifyConfig
	LogLevel  string
	LogFormat string

	ResyncSchedule string
}

type DBConfig struct {
	Driver   string // postgres, mysql, sqlite, memory
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	DSN      string // перекрывает собранный из частей DSN
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type AuthConfig struct {
	JWTSecret       []byte
	TokenTTL        time.Duration
	AdminSecretHash []byte
}

type QueueConfig struct {
	PositionFloor  int64
	StorageTimeout time.Duration
}

type NotifyConfig struct {
	Buffer         int
	Workers        int
	MaxAttempts    int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	Timeout        time.Duration
}

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Load читает .env (если ENV_CHEK не задан) и переменные окружения.
func Load() (*Config, error) {
	if os.Getenv("ENV_CHEK") == "" {
		// .env необязателен: в контейнере всё приходит через окружение
		_ = godotenv.Load()
	}
	return FromEnv()
}

// FromEnv собирает конфигурацию только из окружения.
func FromEnv() (*Config, error) {
	p := &parser{}
	cfg := &Config{
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		DB: DBConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			DSN:      os.Getenv("DB_DSN"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       p.getInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_CHANNEL_PREFIX", "station_queue:"),
		},
		Auth: AuthConfig{
			JWTSecret:       []byte(os.Getenv("JWT_SECRET")),
			TokenTTL:        p.getDuration("PARTICIPANT_TOKEN_TTL", 30*24*time.Hour),
			AdminSecretHash: []byte(os.Getenv("ADMIN_SECRET_HASH")),
		},
		Queue: QueueConfig{
			PositionFloor:  int64(p.getInt("POSITION_FLOOR", 100)),
			StorageTimeout: p.getDuration("STORAGE_TIMEOUT", 5*time.Second),
		},
		Notify: NotifyConfig{
			Buffer:         p.getInt("NOTIFY_BUFFER", 1024),
			Workers:        p.getInt("NOTIFY_WORKERS", 4),
			MaxAttempts:    p.getInt("NOTIFY_MAX_ATTEMPTS", 5),
			BackoffInitial: p.getDuration("NOTIFY_BACKOFF_INITIAL", 200*time.Millisecond),
			BackoffMax:     p.getDuration("NOTIFY_BACKOFF_MAX", 10*time.Second),
			Timeout:        p.getDuration("NOTIFY_TIMEOUT", 5*time.Second),
		},
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		ResyncSchedule: lookupEnv("RESYNC_SCHEDULE", "0 */1 * * * *"),
	}
	if cfg.DB.Port == "" {
		cfg.DB.Port = "5432"
		if cfg.DB.Driver == DriverMySQL {
			cfg.DB.Port = "3306"
		}
	}
	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	var errs []error
	switch c.DB.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER: unknown driver %q", c.DB.Driver))
	}
	if c.Queue.PositionFloor < 0 {
		errs = append(errs, errors.New("POSITION_FLOOR: must not be negative"))
	}
	if c.Notify.Workers < 1 {
		errs = append(errs, errors.New("NOTIFY_WORKERS: must be at least 1"))
	}
	if c.Notify.Buffer < 1 {
		errs = append(errs, errors.New("NOTIFY_BUFFER: must be at least 1"))
	}
	if c.Notify.MaxAttempts < 1 {
		errs = append(errs, errors.New("NOTIFY_MAX_ATTEMPTS: must be at least 1"))
	}
	if len(c.Auth.JWTSecret) == 0 && c.DB.Driver != DriverMemory {
		errs = append(errs, errors.New("JWT_SECRET: required"))
	}
	return errors.Join(errs...)
}

// PostgresDSN собирает DSN в формате, который ожидает gorm.io/driver/postgres.
func (d DBConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// MySQLDSN собирает DSN для go-sql-driver/mysql.
func (d DBConfig) MySQLDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// SQLiteDSN возвращает путь к файлу базы с включёнными внешними ключами.
func (d DBConfig) SQLiteDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return "station_queue.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// lookupEnv отличает пустую переменную от незаданной: пустое значение
// сохраняется, значение по умолчанию берётся только для незаданной.
func lookupEnv(key, def string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return strings.TrimSpace(v)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type parser struct {
	errs []error
}

func (p *parser) getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *parser) getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
