package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-TableReservation/internal/api/handlers"
	"github.com/m04kA/SMC-TableReservation/internal/domain"
)

type contextKey string

const actorKey contextKey = "actor"

// TokenQueryParam параметр запроса с токеном, используется при рукопожатии WebSocket
const TokenQueryParam = "token"

const (
	msgUnauthenticated = "требуется аутентификация"
	msgForbiddenKind   = "операция недоступна для этого типа учетной записи"
)

// WithActor кладет личность в контекст запроса
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor извлекает личность, положенную middleware Auth
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

// ExtractToken ищет токен в заголовке Authorization, затем в параметре token, затем в cookie
func ExtractToken(r *http.Request, cookieName string) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if token := r.URL.Query().Get(TokenQueryParam); token != "" {
		return token
	}
	if cookieName != "" {
		if cookie, err := r.Cookie(cookieName); err == nil {
			return cookie.Value
		}
	}
	return ""
}

// Auth проверяет токен и кладет личность в контекст. Без валидного токена отвечает 401.
func Auth(resolver IdentityResolver, cookieName string, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := resolver.Resolve(ExtractToken(r, cookieName))
			if err != nil {
				logger.Warn("Auth: %s %s - rejected: %v", r.Method, r.URL.Path, err)
				handlers.RespondUnauthorized(w, msgUnauthenticated)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireKind пропускает только личности указанного типа. Ставится после Auth.
func RequireKind(kind domain.ActorKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r.Context())
			if !ok {
				handlers.RespondUnauthorized(w, msgUnauthenticated)
				return
			}
			if actor.Kind != kind {
				handlers.RespondForbidden(w, msgForbiddenKind)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
