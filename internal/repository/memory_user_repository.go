package repository

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maynagashev/booksearch/models"
)

// memoryUserRepository хранит пользователей в памяти процесса.
// Используется для локального запуска и тестов.
type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
	now   func() time.Time
}

// NewMemoryUserRepository создает пустое хранилище пользователей в памяти.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		users: make(map[string]*models.User),
		now:   time.Now,
	}
}

func (r *memoryUserRepository) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			log.Printf("[Repo] Ошибка создания пользователя: имя пользователя '%s' уже занято", user.Username)
			return nil, ErrUsernameTaken
		}
		if u.Email == user.Email {
			log.Printf("[Repo] Ошибка создания пользователя: email '%s' уже занят", user.Email)
			return nil, ErrEmailTaken
		}
	}

	created := cloneUser(user)
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	now := r.now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now
	r.users[created.ID] = created

	log.Printf("[Repo] Пользователь '%s' успешно создан с ID %s", created.Username, created.ID)
	return cloneUser(created), nil
}

func (r *memoryUserRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *memoryUserRepository) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *memoryUserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *memoryUserRepository) GetUserByUsernameOrEmail(
	ctx context.Context,
	username, email string,
) (*models.User, error) {
	if username != "" {
		if u, err := r.GetUserByUsername(ctx, username); err == nil {
			return u, nil
		}
	}
	if email != "" {
		return r.GetUserByEmail(ctx, email)
	}
	return nil, ErrUserNotFound
}

func (r *memoryUserRepository) AddBook(_ context.Context, userID string, book models.SavedBook) (*models.User, error) {
	return r.update(userID, func(u *models.User) {
		if !u.HasBook(book.BookID) {
			u.SavedBooks = append(u.SavedBooks, cloneBook(book))
		}
	})
}

func (r *memoryUserRepository) RemoveBook(_ context.Context, userID, bookID string) (*models.User, error) {
	return r.update(userID, func(u *models.User) {
		kept := models.SavedBooks{}
		for _, b := range u.SavedBooks {
			if b.BookID != bookID {
				kept = append(kept, b)
			}
		}
		u.SavedBooks = kept
	})
}

func (r *memoryUserRepository) UpdatePassword(_ context.Context, userID, passwordHash string) (*models.User, error) {
	return r.update(userID, func(u *models.User) {
		u.PasswordHash = passwordHash
	})
}

func (r *memoryUserRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryUserRepository) update(userID string, mutate func(*models.User)) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	mutate(u)
	u.UpdatedAt = r.now().UTC()
	return cloneUser(u), nil
}

// cloneUser возвращает глубокую копию, чтобы вызывающий не мог изменить хранимые данные.
func cloneUser(u *models.User) *models.User {
	c := *u
	c.SavedBooks = make(models.SavedBooks, 0, len(u.SavedBooks))
	for _, b := range u.SavedBooks {
		c.SavedBooks = append(c.SavedBooks, cloneBook(b))
	}
	return &c
}

func cloneBook(b models.SavedBook) models.SavedBook {
	if b.Authors != nil {
		b.Authors = append([]string(nil), b.Authors...)
	}
	return b
}
