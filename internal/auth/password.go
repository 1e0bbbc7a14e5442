package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultPasswordCost совпадает с количеством раундов соли, которое использовалось исходно.
	DefaultPasswordCost = 10
	// MaxPasswordLength предел bcrypt в байтах.
	MaxPasswordLength = 72
)

// Ошибки хеширования пароля.
var (
	ErrEmptyPassword   = errors.New("пароль не может быть пустым")
	ErrPasswordTooLong = errors.New("пароль длиннее 72 байт")
)

// PasswordHasher хеширует и проверяет пароли с помощью bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher создает хешер с заданной стоимостью.
// Некорректная стоимость заменяется на bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Cost возвращает используемую стоимость bcrypt.
func (h *PasswordHasher) Cost() int {
	return h.cost
}

// Hash возвращает bcrypt-хеш пароля. Каждый вызов использует новую соль.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	return string(hashed), nil
}

// Verify сравнивает пароль с хешем. Сравнение выполняет bcrypt за постоянное время;
// любая ошибка (в том числе повреждённый хеш) означает несовпадение.
func (h *PasswordHasher) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
