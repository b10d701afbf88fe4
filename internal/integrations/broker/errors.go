package broker

import "errors"

var (
	// ErrUnavailable брокер недоступен
	ErrUnavailable = errors.New("broker: unavailable")

	// ErrPublish ошибка публикации сообщения
	ErrPublish = errors.New("broker: publish failed")

	// ErrClosed издатель закрыт
	ErrClosed = errors.New("broker: publisher closed")
)
