package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/maynagashev/booksearch/internal/auth"
)

// TokenVerifier проверяет токен и возвращает идентичность его владельца.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Identify определяет пользователя по заголовку Authorization и кладет его
// идентичность в контекст запроса. Запрос никогда не отклоняется: при отсутствии
// или дефекте токена обработчик получает анонимную идентичность, а решение об
// отказе принимает конкретная операция.
func Identify(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := identify(verifier, r.Header.Get("Authorization"))
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func identify(verifier TokenVerifier, authHeader string) auth.Identity {
	if authHeader == "" {
		return auth.Anonymous
	}

	// Проверяем формат "Bearer token"
	headerParts := strings.Fields(authHeader)
	if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
		log.Println("[AuthMiddleware] Неверный формат заголовка Authorization, запрос обрабатывается анонимно")
		return auth.Anonymous
	}

	id, err := verifier.Verify(headerParts[1])
	if err != nil {
		log.Printf("[AuthMiddleware] Токен не прошел проверку, запрос обрабатывается анонимно: %v", err)
		return auth.Anonymous
	}

	log.Printf("[AuthMiddleware] Пользователь %s успешно аутентифицирован", id.UserID)
	return id
}
