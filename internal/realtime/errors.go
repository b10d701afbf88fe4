package realtime

import "errors"

var (
	// ErrUnauthenticated соединение без подтвержденной личности
	ErrUnauthenticated = errors.New("realtime: unauthenticated connection")

	// ErrRegistryClosed реестр уже остановлен
	ErrRegistryClosed = errors.New("realtime: registry closed")
)
