package auth_test

import (
	"strings"
	"testing"

	"github.com/maynagashev/booksearch/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewPasswordHasher(t *testing.T) {
	tests := []struct {
		name         string
		cost         int
		expectedCost int
	}{
		{name: "Стоимость по умолчанию", cost: auth.DefaultPasswordCost, expectedCost: 10},
		{name: "Минимальная стоимость", cost: bcrypt.MinCost, expectedCost: bcrypt.MinCost},
		{name: "Слишком маленькая стоимость", cost: 1, expectedCost: bcrypt.DefaultCost},
		{name: "Слишком большая стоимость", cost: bcrypt.MaxCost + 1, expectedCost: bcrypt.DefaultCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := auth.NewPasswordHasher(tt.cost)
			assert.Equal(t, tt.expectedCost, h.Cost())
		})
	}
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := auth.NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw123")
	require.NoError(t, err)

	assert.NotEqual(t, "pw123", hash, "Хеш не должен совпадать с паролем")
	assert.True(t, h.Verify("pw123", hash))
	assert.False(t, h.Verify("wrong", hash))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestPasswordHasher_HashIsSalted(t *testing.T) {
	h := auth.NewPasswordHasher(bcrypt.MinCost)

	first, err := h.Hash("same-password")
	require.NoError(t, err)
	second, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "Повторное хеширование должно давать новый хеш")
	assert.True(t, h.Verify("same-password", first))
	assert.True(t, h.Verify("same-password", second))
}

func TestPasswordHasher_EmptyPassword(t *testing.T) {
	h := auth.NewPasswordHasher(bcrypt.MinCost)

	_, err := h.Hash("")
	require.ErrorIs(t, err, auth.ErrEmptyPassword)
}

func TestPasswordHasher_PasswordTooLong(t *testing.T) {
	h := auth.NewPasswordHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("p", auth.MaxPasswordLength+1))
	require.ErrorIs(t, err, auth.ErrPasswordTooLong)

	hash, err := h.Hash(strings.Repeat("p", auth.MaxPasswordLength))
	require.NoError(t, err)
	assert.True(t, h.Verify(strings.Repeat("p", auth.MaxPasswordLength), hash))
}

func TestPasswordHasher_VerifyMalformedHash(t *testing.T) {
	h := auth.NewPasswordHasher(bcrypt.MinCost)

	assert.False(t, h.Verify("pw123", ""))
	assert.False(t, h.Verify("pw123", "not-a-bcrypt-hash"))
}
