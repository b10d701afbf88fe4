package realtime

import (
	"encoding/json"
	"time"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
)

// Envelope формат всех кадров: { "type": string, "data"?: object }.
// Кадр ошибки вместо data содержит message.
type Envelope struct {
	Type    domain.EventType `json:"type"`
	Data    interface{}      `json:"data,omitempty"`
	Message string           `json:"message,omitempty"`
}

// ConnectionEstablished данные подтверждения рукопожатия
type ConnectionEstablished struct {
	ConnectionID   string           `json:"connectionId"`
	SubscriberID   int64            `json:"subscriberId"`
	SubscriberKind domain.ActorKind `json:"subscriberKind"`
}

// HeartbeatData данные эха heartbeat
type HeartbeatData struct {
	At time.Time `json:"at"`
}

// Encode сериализует кадр с данными
func Encode(eventType domain.EventType, data interface{}) ([]byte, error) {
	return json.Marshal(Envelope{Type: eventType, Data: data})
}

// EncodeError строит кадр {type:"error", message}
func EncodeError(message string) []byte {
	data, _ := json.Marshal(Envelope{Type: domain.EventError, Message: message})
	return data
}

// EncodeHeartbeat строит кадр {type:"heartbeat", data:{at}}
func EncodeHeartbeat(at time.Time) []byte {
	data, _ := Encode(domain.EventHeartbeat, HeartbeatData{At: at.UTC()})
	return data
}
