package middleware

import (
	"time"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
)

// IdentityResolver сопоставляет токен с личностью
type IdentityResolver interface {
	Resolve(token string) (domain.Actor, error)
}

// HTTPMetrics метрики HTTP-запросов
type HTTPMetrics interface {
	ObserveHTTPRequest(method, route string, status int, d time.Duration)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
