// Package auth содержит примитивы аутентификации: хеширование паролей,
// выпуск и проверку JWT, а также идентичность вызывающего пользователя.
package auth

import "context"

// Identity описывает пользователя, от имени которого выполняется запрос.
// Нулевое значение соответствует анонимному вызову.
type Identity struct {
	UserID   string
	Username string
	Email    string
}

// Anonymous используется, когда в запросе нет валидного токена.
var Anonymous = Identity{}

// IsAnonymous возвращает true, если идентичность не установлена.
func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}

// Тип для ключа контекста.
type contextKey string

const identityKey contextKey = "identity"

// WithIdentity возвращает контекст с сохранённой идентичностью.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext извлекает идентичность из контекста запроса.
// Если её нет, возвращается Anonymous.
func IdentityFromContext(ctx context.Context) Identity {
	if ctx == nil {
		return Anonymous
	}
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok {
		return Anonymous
	}
	return id
}
