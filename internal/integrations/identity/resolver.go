// Package identity сопоставляет учетные данные (JWT) с личностью {id, kind}.
// Токены выпускает сервис аутентификации; здесь только проверка подписи и разбор claims.
package identity

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
)

// Claims содержимое токена: sub - id пользователя или ресторана, kind - user | restaurant
type Claims struct {
	Kind domain.ActorKind `json:"kind"`
	jwt.RegisteredClaims
}

// Resolver проверяет HS256-токены общим секретом
type Resolver struct {
	secret []byte
}

func NewResolver(secret string) *Resolver {
	return &Resolver{secret: []byte(secret)}
}

// Resolve возвращает личность по токену
func (r *Resolver) Resolve(token string) (domain.Actor, error) {
	if token == "" {
		return domain.Actor{}, ErrUnauthenticated
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Actor{}, fmt.Errorf("%w: token expired", ErrUnauthenticated)
		}
		return domain.Actor{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.Actor{}, fmt.Errorf("%w: subject %q", ErrInvalidClaims, claims.Subject)
	}
	if !claims.Kind.Valid() {
		return domain.Actor{}, fmt.Errorf("%w: kind %q", ErrInvalidClaims, claims.Kind)
	}

	return domain.Actor{ID: id, Kind: claims.Kind}, nil
}

// IssueToken подписывает токен для личности. Используется в тестах и локальной отладке.
func (r *Resolver) IssueToken(actor domain.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Kind: actor.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(actor.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}
