// Package broker публикует события жизненного цикла бронирований в RabbitMQ
// для внешних потребителей (рассылка писем, аналитика).
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
)

const exchangeKind = "topic"

// RoutingKey ключ маршрутизации события, например booking.new_booking
func RoutingKey(eventType domain.EventType) string {
	return "booking." + string(eventType)
}

// Publisher держит одно соединение и переподключается при следующей публикации после сбоя
type Publisher struct {
	url      string
	exchange string
	dial     Dialer
	logger   Logger

	mu        sync.Mutex
	channel   Channel
	closeConn func() error
	closed    bool
}

// NewPublisher создает издателя; соединение открывается лениво
func NewPublisher(url, exchange string, logger Logger) *Publisher {
	return NewPublisherWithDialer(url, exchange, DialAMQP, logger)
}

// NewPublisherWithDialer позволяет подменить подключение (для тестов)
func NewPublisherWithDialer(url, exchange string, dial Dialer, logger Logger) *Publisher {
	return &Publisher{
		url:      url,
		exchange: exchange,
		dial:     dial,
		logger:   logger,
	}
}

// DialAMQP подключение через amqp091-go
func DialAMQP(url string) (Channel, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return ch, conn.Close, nil
}

// Publish отправляет событие в exchange с ключом booking.<type>
func (p *Publisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", ErrPublish, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	if err := p.ensureChannel(); err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(event.Type),
		Body:         body,
	}

	if err := p.channel.PublishWithContext(ctx, p.exchange, RoutingKey(event.Type), false, false, msg); err != nil {
		p.resetLocked()
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	return nil
}

// Close закрывает канал и соединение
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	p.resetLocked()
	return nil
}

func (p *Publisher) ensureChannel() error {
	if p.channel != nil {
		return nil
	}

	ch, closeConn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("%w: dial: %v", ErrUnavailable, err)
	}

	if err := ch.ExchangeDeclare(p.exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		if closeConn != nil {
			_ = closeConn()
		}
		return fmt.Errorf("%w: declare exchange %s: %v", ErrUnavailable, p.exchange, err)
	}

	p.channel = ch
	p.closeConn = closeConn
	p.logger.Info("Broker: connected, exchange=%s", p.exchange)
	return nil
}

func (p *Publisher) resetLocked() {
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.closeConn != nil {
		_ = p.closeConn()
		p.closeConn = nil
	}
}

// NopPublisher используется, когда брокер выключен в конфигурации
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.BookingEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
