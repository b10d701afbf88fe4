package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
)

func TestResolver_RoundTrip(t *testing.T) {
	r := NewResolver("secret")

	for _, actor := range []domain.Actor{
		{ID: 15, Kind: domain.ActorUser},
		{ID: 3, Kind: domain.ActorRestaurant},
	} {
		token, err := r.IssueToken(actor, time.Hour)
		require.NoError(t, err)

		got, err := r.Resolve(token)
		require.NoError(t, err)
		assert.Equal(t, actor, got)
	}
}

func TestResolver_Rejects(t *testing.T) {
	r := NewResolver("secret")

	foreign, err := NewResolver("other").IssueToken(domain.Actor{ID: 1, Kind: domain.ActorUser}, time.Hour)
	require.NoError(t, err)

	expired, err := r.IssueToken(domain.Actor{ID: 1, Kind: domain.ActorUser}, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", ErrUnauthenticated},
		{"garbage", "not-a-jwt", ErrUnauthenticated},
		{"wrong secret", foreign, ErrUnauthenticated},
		{"expired", expired, ErrUnauthenticated},
		{"unknown kind", signRaw(t, "secret", "1", "admin"), ErrInvalidClaims},
		{"non numeric subject", signRaw(t, "secret", "abc", "user"), ErrInvalidClaims},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func signRaw(t *testing.T, secret, sub, kind string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"kind": kind,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}
