package realtime

import "time"

// Conn транспорт одного клиента.
// Send не должен блокироваться надолго: ошибка отправки приводит к удалению соединения.
type Conn interface {
	Send(frame []byte) error
	Close() error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Metrics счетчики соединений и доставок
type Metrics interface {
	AddWSConnections(kind string, delta int)
	IncNotification(event, result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
