package repository

import (
	"context"
	"errors"

	"github.com/maynagashev/booksearch/models"
)

// UserRepository определяет методы для работы с документами пользователей в хранилище.
// Список сохранённых книг хранится внутри документа пользователя; AddBook и RemoveBook
// должны выполняться атомарно в пределах одного документа.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его с присвоенным ID.
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByID находит пользователя по ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUserByUsername находит пользователя по имени.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUserByEmail находит пользователя по email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByUsernameOrEmail находит пользователя, у которого совпадает имя или email.
	// Совпадение по имени имеет приоритет.
	GetUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	// AddBook добавляет книгу, только если в списке нет книги с тем же bookId.
	AddBook(ctx context.Context, userID string, book models.SavedBook) (*models.User, error)
	// RemoveBook удаляет из списка все книги с указанным bookId.
	RemoveBook(ctx context.Context, userID, bookID string) (*models.User, error)
	// UpdatePassword заменяет хеш пароля пользователя.
	UpdatePassword(ctx context.Context, userID, passwordHash string) (*models.User, error)
}

// Кастомные ошибки репозитория.
var (
	ErrUserNotFound  = errors.New("пользователь не найден")
	ErrUsernameTaken = errors.New("имя пользователя уже занято")
	ErrEmailTaken    = errors.New("email уже занят")
)
