// Package ws точка /ws: рукопожатие с проверкой личности и разбор входящих кадров.
package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/m04kA/SMC-TableReservation/internal/api/middleware"
	"github.com/m04kA/SMC-TableReservation/internal/domain"
	"github.com/m04kA/SMC-TableReservation/internal/realtime"
)

// MessageType тип входящего кадра
type MessageType string

const (
	MessageHeartbeat MessageType = "heartbeat"
	MessageLogout    MessageType = "logout"
)

const (
	defaultSendBuffer   = 16
	defaultWriteTimeout = 10 * time.Second
	defaultPingInterval = 15 * time.Second
	maxMessageBytes     = 4 << 10

	msgMalformedFrame = "malformed message"
	msgUnknownType    = "unknown message type"
)

// inboundMessage входящий кадр { "type": string, "data"?: object }
type inboundMessage struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// session состояние одного соединения, доступное обработчикам кадров
type session struct {
	id     string
	actor  domain.Actor
	client *client
}

// messageHandler обработчик кадра; false завершает сессию
type messageHandler func(s *session, msg inboundMessage) bool

// Config параметры точки /ws
type Config struct {
	CookieName   string
	SendBuffer   int
	WriteTimeout time.Duration
	// PingInterval должен быть меньше интервала сборщика реестра
	PingInterval time.Duration
}

type Handler struct {
	upgrader websocket.Upgrader
	registry Registry
	resolver IdentityResolver
	cfg      Config
	routes   map[MessageType]messageHandler
	now      func() time.Time
	logger   Logger
}

func NewHandler(registry Registry, resolver IdentityResolver, cfg Config, logger Logger) *Handler {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}

	h := &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Личность проверяется токеном, а не источником страницы
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		registry: registry,
		resolver: resolver,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}

	h.routes = map[MessageType]messageHandler{
		MessageHeartbeat: h.handleHeartbeat,
		MessageLogout:    h.handleLogout,
	}

	return h
}

// ServeHTTP GET /ws?token=...
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r, h.cfg.CookieName)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("GET /ws - Upgrade failed: %v", err)
		return
	}
	conn.SetReadLimit(maxMessageBytes)

	c := newClient(conn, h.cfg.SendBuffer, h.cfg.WriteTimeout, h.cfg.PingInterval)
	go c.writePump()

	// Без личности реестр отправит кадр ошибки и закроет соединение
	var actor *domain.Actor
	if resolved, err := h.resolver.Resolve(token); err == nil {
		actor = &resolved
	} else {
		h.logger.Warn("GET /ws - Identity rejected: %v", err)
	}

	id, err := h.registry.Register(c, actor)
	if err != nil {
		return
	}

	s := &session{id: id, actor: *actor, client: c}
	// Ответ на ping из writePump
	conn.SetPongHandler(func(string) error {
		h.registry.Heartbeat(id)
		return nil
	})

	h.readLoop(conn, s)
}

func (h *Handler) readLoop(conn *websocket.Conn, s *session) {
	defer h.registry.Unregister(s.id)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("WS: connection id=%s read error: %v", s.id, err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			// Один испорченный кадр не закрывает сессию
			_ = s.client.Send(realtime.EncodeError(msgMalformedFrame))
			continue
		}

		handle, ok := h.routes[msg.Type]
		if !ok {
			_ = s.client.Send(realtime.EncodeError(msgUnknownType))
			continue
		}

		if !handle(s, msg) {
			return
		}
	}
}

func (h *Handler) handleHeartbeat(s *session, _ inboundMessage) bool {
	if !h.registry.Heartbeat(s.id) {
		// Соединение уже удалено сборщиком
		return false
	}
	_ = s.client.Send(realtime.EncodeHeartbeat(h.now()))
	return true
}

func (h *Handler) handleLogout(s *session, _ inboundMessage) bool {
	h.logger.Info("WS: logout from %s=%d, connection id=%s", s.actor.Kind, s.actor.ID, s.id)
	return false
}
