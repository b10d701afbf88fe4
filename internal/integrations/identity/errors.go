package identity

import "errors"

var (
	// ErrUnauthenticated токен отсутствует, подделан или истек
	ErrUnauthenticated = errors.New("identity: unauthenticated")

	// ErrInvalidClaims токен валиден, но не содержит id или kind
	ErrInvalidClaims = errors.New("identity: invalid token claims")
)
