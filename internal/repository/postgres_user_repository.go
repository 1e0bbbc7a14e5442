package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/maynagashev/booksearch/models"
)

// Коды ошибок PostgreSQL.
const (
	pgUniqueViolationCode  = "23505"
	pgInvalidTextReprCode  = "22P02"
	pgEmailUniqueConstrain = "users_email_key"
)

const userColumns = `id, username, email, password_hash, saved_books, created_at, updated_at`

// postgresUserRepository реализует UserRepository для PostgreSQL.
// Документ пользователя хранится строкой таблицы users, список книг в JSONB-массиве saved_books.
type postgresUserRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository создает новый экземпляр репозитория пользователей для PostgreSQL.
func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

// CreateUser создает нового пользователя в базе данных.
func (r *postgresUserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	query := `INSERT INTO users (id, username, email, password_hash, saved_books) VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`

	created := *user
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.SavedBooks == nil {
		created.SavedBooks = models.SavedBooks{}
	}

	err := r.db.QueryRowxContext(ctx, query,
		created.ID, created.Username, created.Email, created.PasswordHash, created.SavedBooks,
	).Scan(&created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		// Проверяем на ошибку нарушения уникальности (duplicate key)
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			if pgErr.Constraint == pgEmailUniqueConstrain {
				log.Printf("[Repo] Ошибка создания пользователя: email '%s' уже занят", user.Email)
				return nil, ErrEmailTaken
			}
			log.Printf("[Repo] Ошибка создания пользователя: имя пользователя '%s' уже занято", user.Username)
			return nil, ErrUsernameTaken
		}
		log.Printf("[Repo] Непредвиденная ошибка при создании пользователя '%s': %v", user.Username, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на создание пользователя: %w", err)
	}

	log.Printf("[Repo] Пользователь '%s' успешно создан с ID %s", created.Username, created.ID)
	return &created, nil
}

// GetUserByID находит пользователя по ID.
func (r *postgresUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.getOne(ctx, "id="+id, query, id)
}

// GetUserByUsername находит пользователя по его имени.
func (r *postgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return r.getOne(ctx, "username="+username, query, username)
}

// GetUserByEmail находит пользователя по email.
func (r *postgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.getOne(ctx, "email="+email, query, email)
}

// GetUserByUsernameOrEmail находит пользователя по имени или email.
func (r *postgresUserRepository) GetUserByUsernameOrEmail(
	ctx context.Context,
	username, email string,
) (*models.User, error) {
	if username == "" && email == "" {
		return nil, ErrUserNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE username=$1 OR email=$2 ORDER BY (username=$1) DESC LIMIT 1`
	return r.getOne(ctx, "username="+username+" email="+email, query, username, email)
}

// AddBook добавляет книгу в JSONB-массив, если там ещё нет книги с таким bookId.
// Один UPDATE берет блокировку строки, поэтому конкурентные вызовы не создают дублей.
func (r *postgresUserRepository) AddBook(
	ctx context.Context,
	userID string,
	book models.SavedBook,
) (*models.User, error) {
	query := `UPDATE users SET saved_books = CASE WHEN saved_books @> $3::jsonb THEN saved_books ELSE saved_books || $2::jsonb END, updated_at = NOW() WHERE id=$1 RETURNING ` + userColumns

	bookJSON, err := json.Marshal([]models.SavedBook{book})
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования книги: %w", err)
	}
	probeJSON, err := json.Marshal([]map[string]string{{"bookId": book.BookID}})
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования книги: %w", err)
	}

	user, err := r.getOne(ctx, "id="+userID, query, userID, string(bookJSON), string(probeJSON))
	if err != nil {
		return nil, err
	}
	log.Printf("[Repo] Книга '%s' сохранена у пользователя %s (всего: %d)", book.BookID, userID, user.BookCount())
	return user, nil
}

// RemoveBook удаляет из JSONB-массива все книги с указанным bookId.
func (r *postgresUserRepository) RemoveBook(ctx context.Context, userID, bookID string) (*models.User, error) {
	query := `UPDATE users SET saved_books = COALESCE((SELECT jsonb_agg(b) FROM jsonb_array_elements(saved_books) AS b WHERE b->>'bookId' <> $2), '[]'::jsonb), updated_at = NOW() WHERE id=$1 RETURNING ` + userColumns

	user, err := r.getOne(ctx, "id="+userID, query, userID, bookID)
	if err != nil {
		return nil, err
	}
	log.Printf("[Repo] Книга '%s' удалена у пользователя %s (осталось: %d)", bookID, userID, user.BookCount())
	return user, nil
}

// UpdatePassword заменяет хеш пароля пользователя.
func (r *postgresUserRepository) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) (*models.User, error) {
	query := `UPDATE users SET password_hash=$2, updated_at = NOW() WHERE id=$1 RETURNING ` + userColumns
	return r.getOne(ctx, "id="+userID, query, userID, passwordHash)
}

// getOne выполняет запрос, возвращающий одну строку users, и приводит ошибки к ошибкам репозитория.
func (r *postgresUserRepository) getOne(ctx context.Context, key, query string, args ...any) (*models.User, error) {
	var user models.User

	err := r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		var pgErr *pq.Error
		// Невалидный UUID означает, что такого пользователя быть не может
		if errors.Is(err, sql.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextReprCode) {
			log.Printf("[Repo] Пользователь (%s) не найден", key)
			return nil, ErrUserNotFound
		}
		log.Printf("[Repo] Ошибка при поиске пользователя (%s): %v", key, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователя: %w", err)
	}

	return &user, nil
}
