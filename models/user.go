package models

import "time"

// User представляет зарегистрированного пользователя и его список сохранённых книг.
// Тэги `db` используются для маппинга с полями БД с помощью sqlx.
// Тэги `json` используются для (де)сериализации JSON.
type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"` // Не отправляем хеш пароля в JSON
	SavedBooks   SavedBooks `db:"saved_books" json:"savedBooks"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// BookCount возвращает количество сохранённых книг.
func (u *User) BookCount() int {
	return len(u.SavedBooks)
}

// HasBook сообщает, есть ли книга с указанным bookId в списке пользователя.
func (u *User) HasBook(bookID string) bool {
	for _, b := range u.SavedBooks {
		if b.BookID == bookID {
			return true
		}
	}
	return false
}

// AuthPayload представляет ответ на успешную регистрацию или вход: токен и пользователь.
// Не сохраняется в хранилище.
type AuthPayload struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// RegisterRequest представляет тело запроса на регистрацию.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest представляет тело запроса на вход. Достаточно имени или email.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ErrorResponse представляет тело ответа с ошибкой REST API.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
