package broker

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel часть *amqp.Channel, используемая издателем
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Dialer открывает соединение с брокером и возвращает канал и функцию закрытия соединения
type Dialer func(url string) (Channel, func() error, error)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
