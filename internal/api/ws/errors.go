package ws

import "errors"

var (
	// ErrConnClosed соединение уже закрыто
	ErrConnClosed = errors.New("ws: connection closed")

	// ErrSendBufferFull клиент не успевает читать, кадр не поставлен в очередь
	ErrSendBufferFull = errors.New("ws: send buffer full")
)
