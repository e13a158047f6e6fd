package notify

import (
	"math"
	"math/rand"
	"time"
)

// Backoff вычисляет паузу перед повтором с номером attempt (с единицы).
type Backoff interface {
	Delay(attempt int) time.Duration
}

// ExponentialJitter — экспоненциальная пауза с полным джиттером:
// случайное значение в [0, min(Initial*2^(attempt-1), Max)].
type ExponentialJitter struct {
	Initial time.Duration
	Max     time.Duration
}

func (e ExponentialJitter) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := float64(e.Initial) * math.Pow(2, float64(attempt-1))
	if e.Max > 0 && base > float64(e.Max) {
		base = float64(e.Max)
	}
	return time.Duration(rand.Float64() * base) //nolint:gosec // джиттер не требует криптостойкости
}

// NoDelay повторяет без паузы.
type NoDelay struct{}

func (NoDelay) Delay(int) time.Duration { return 0 }
