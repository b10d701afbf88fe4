// Package realtime хранит активные WebSocket-соединения и доставляет им события бронирований.
package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
)

// DefaultSweepInterval период проверки живости соединений
const DefaultSweepInterval = 30 * time.Second

// missedSweeps через сколько интервалов без сигналов соединение считается мертвым
const missedSweeps = 2

const (
	resultDelivered = "delivered"
	resultDropped   = "dropped"
)

type connection struct {
	id       string
	actor    domain.Actor
	conn     Conn
	lastSeen time.Time
}

// Registry реестр соединений, индексированный по идентификатору соединения
type Registry struct {
	mu            sync.RWMutex
	conns         map[string]*connection
	closed        bool
	sweepInterval time.Duration
	timeProvider  TimeProvider
	metrics       Metrics
	logger        Logger
}

// NewRegistry создает реестр. metrics может быть nil.
func NewRegistry(sweepInterval time.Duration, metrics Metrics, logger Logger) *Registry {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	return &Registry{
		conns:         make(map[string]*connection),
		sweepInterval: sweepInterval,
		timeProvider:  &RealTimeProvider{},
		metrics:       metrics,
		logger:        logger,
	}
}

// Register добавляет соединение с подтвержденной личностью и отправляет connection_established.
// Соединение без личности получает кадр ошибки и закрывается.
func (r *Registry) Register(conn Conn, actor *domain.Actor) (string, error) {
	if actor == nil || !actor.Kind.Valid() {
		_ = conn.Send(EncodeError("unauthenticated"))
		_ = conn.Close()
		r.logger.Warn("Realtime: rejected connection without verified identity")
		return "", ErrUnauthenticated
	}

	c := &connection{
		id:       uuid.NewString(),
		actor:    *actor,
		conn:     conn,
		lastSeen: r.timeProvider.Now(),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = conn.Close()
		return "", ErrRegistryClosed
	}
	r.conns[c.id] = c
	r.mu.Unlock()

	r.addGauge(c.actor.Kind, 1)
	r.logger.Info("Realtime: registered connection id=%s, %s=%d", c.id, c.actor.Kind, c.actor.ID)

	ack, _ := Encode(domain.EventConnectionEstablished, ConnectionEstablished{
		ConnectionID:   c.id,
		SubscriberID:   c.actor.ID,
		SubscriberKind: c.actor.Kind,
	})
	if err := conn.Send(ack); err != nil {
		r.evict(c.id, fmt.Sprintf("handshake send failed: %v", err))
		return "", fmt.Errorf("realtime: send handshake: %w", err)
	}

	return c.id, nil
}

// Notify доставляет событие всем соединениям получателя. Возвращает число доставок.
// Соединение, в которое не удалось отправить, удаляется без повторов.
func (r *Registry) Notify(targetID int64, targetKind domain.ActorKind, eventType domain.EventType, payload interface{}) int {
	data, err := Encode(eventType, payload)
	if err != nil {
		r.logger.Error("Realtime: failed to encode %s: %v", eventType, err)
		return 0
	}

	r.mu.RLock()
	targets := make([]*connection, 0)
	for _, c := range r.conns {
		if c.actor.ID == targetID && c.actor.Kind == targetKind {
			targets = append(targets, c)
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if err := c.conn.Send(data); err != nil {
			r.incNotification(eventType, resultDropped)
			r.evict(c.id, fmt.Sprintf("send %s failed: %v", eventType, err))
			continue
		}
		r.incNotification(eventType, resultDelivered)
		delivered++
	}

	return delivered
}

// Heartbeat обновляет время последнего сигнала. false, если соединение уже удалено.
func (r *Registry) Heartbeat(id string) bool {
	now := r.timeProvider.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[id]
	if !ok {
		return false
	}
	c.lastSeen = now
	return true
}

// Unregister удаляет и закрывает соединение. Повторный вызов ничего не делает.
func (r *Registry) Unregister(id string) {
	r.evict(id, "unregistered")
}

// Sweep закрывает соединения без сигналов дольше двух интервалов. Возвращает число удаленных.
func (r *Registry) Sweep() int {
	deadline := r.timeProvider.Now().Add(-missedSweeps * r.sweepInterval)

	r.mu.RLock()
	stale := make([]string, 0)
	for id, c := range r.conns {
		if c.lastSeen.Before(deadline) {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	evicted := 0
	for _, id := range stale {
		if r.evict(id, "missed heartbeat") {
			evicted++
		}
	}
	return evicted
}

// Run периодически вызывает Sweep до отмены контекста, затем закрывает все соединения
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("Realtime: sweep evicted %d stale connection(s)", n)
			}
		case <-ctx.Done():
			r.Close()
			return
		}
	}
}

// Close закрывает все соединения; последующие Register отклоняются
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	conns := r.conns
	r.conns = make(map[string]*connection)
	r.mu.Unlock()

	for _, c := range conns {
		_ = c.conn.Close()
		r.addGauge(c.actor.Kind, -1)
	}
	if len(conns) > 0 {
		r.logger.Info("Realtime: closed %d connection(s) on shutdown", len(conns))
	}
}

// Count число активных соединений
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) evict(id, reason string) bool {
	r.mu.Lock()
	c, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	_ = c.conn.Close()
	r.addGauge(c.actor.Kind, -1)
	r.logger.Info("Realtime: removed connection id=%s (%s)", id, reason)
	return true
}

func (r *Registry) addGauge(kind domain.ActorKind, delta int) {
	if r.metrics != nil {
		r.metrics.AddWSConnections(string(kind), delta)
	}
}

func (r *Registry) incNotification(eventType domain.EventType, result string) {
	if r.metrics != nil {
		r.metrics.IncNotification(string(eventType), result)
	}
}
