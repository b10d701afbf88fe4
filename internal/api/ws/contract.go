package ws

import (
	"github.com/m04kA/SMC-TableReservation/internal/domain"
	"github.com/m04kA/SMC-TableReservation/internal/realtime"
)

// Registry реестр соединений
type Registry interface {
	Register(conn realtime.Conn, actor *domain.Actor) (string, error)
	Heartbeat(id string) bool
	Unregister(id string)
}

// IdentityResolver сопоставляет токен с личностью
type IdentityResolver interface {
	Resolve(token string) (domain.Actor, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
