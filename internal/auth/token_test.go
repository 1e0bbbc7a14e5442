package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maynagashev/booksearch/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newIssuer(t *testing.T, ttl time.Duration) *auth.TokenIssuer {
	t.Helper()
	issuer, err := auth.NewTokenIssuer(testSecret, ttl, "test-issuer")
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuer(t *testing.T) {
	t.Run("Пустой секрет", func(t *testing.T) {
		_, err := auth.NewTokenIssuer("", time.Hour, "")
		require.ErrorIs(t, err, auth.ErrEmptySecret)
	})

	t.Run("Значения по умолчанию", func(t *testing.T) {
		issuer, err := auth.NewTokenIssuer("secret", 0, "")
		require.NoError(t, err)
		assert.Equal(t, auth.DefaultTokenTTL, issuer.TTL())
	})
}

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := newIssuer(t, time.Hour)
	id := auth.Identity{UserID: "u-1", Username: "alice", Email: "alice@x.com"}

	token, err := issuer.Issue(id)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenIssuer_IssueAnonymous(t *testing.T) {
	issuer := newIssuer(t, time.Hour)

	_, err := issuer.Issue(auth.Anonymous)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenIssuer_VerifyRejects(t *testing.T) {
	issuer := newIssuer(t, time.Hour)
	valid, err := issuer.Issue(auth.Identity{UserID: "u-1", Username: "alice"})
	require.NoError(t, err)

	otherSecret, err := auth.NewTokenIssuer("other-secret", time.Hour, "test-issuer")
	require.NoError(t, err)
	foreign, err := otherSecret.Issue(auth.Identity{UserID: "u-1", Username: "alice"})
	require.NoError(t, err)

	otherIssuer, err := auth.NewTokenIssuer(testSecret, time.Hour, "someone-else")
	require.NoError(t, err)
	wrongIssuer, err := otherIssuer.Issue(auth.Identity{UserID: "u-1", Username: "alice"})
	require.NoError(t, err)

	// Подменяем полезную нагрузку, оставляя исходную подпись
	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	// Токен с алгоритмом none
	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": "u-1",
		"iss":     "test-issuer",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "Пустой токен", token: ""},
		{name: "Мусор", token: "not.a.jwt"},
		{name: "Чужой секрет", token: foreign},
		{name: "Чужой издатель", token: wrongIssuer},
		{name: "Подменённая нагрузка", token: tampered},
		{name: "Алгоритм none", token: noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := issuer.Verify(tt.token)
			require.ErrorIs(t, err, auth.ErrInvalidToken)
			assert.True(t, id.IsAnonymous())
		})
	}
}

func TestTokenIssuer_VerifyExpired(t *testing.T) {
	issuer := newIssuer(t, time.Hour)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u-1",
		"iss":     "test-issuer",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	id, err := issuer.Verify(expired)
	require.ErrorIs(t, err, auth.ErrTokenExpired)
	assert.True(t, id.IsAnonymous())
}

func TestIdentityFromContext(t *testing.T) {
	alice := auth.Identity{UserID: "u-1", Username: "alice"}

	tests := []struct {
		name     string
		ctx      context.Context
		expected auth.Identity
	}{
		{name: "Контекст с идентичностью", ctx: auth.WithIdentity(context.Background(), alice), expected: alice},
		{name: "Пустой контекст", ctx: context.Background(), expected: auth.Anonymous},
		{name: "Значение неверного типа", ctx: context.WithValue(context.Background(), "identity", "alice"), expected: auth.Anonymous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := auth.IdentityFromContext(tt.ctx)
			assert.Equal(t, tt.expected, got)
		})
	}
}
