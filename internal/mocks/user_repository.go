// Package mocks содержит testify-моки интерфейсов сервера для тестов.
package mocks

import (
	"context"

	"github.com/maynagashev/booksearch/internal/repository"
	"github.com/maynagashev/booksearch/models"
	"github.com/stretchr/testify/mock"
)

// UserRepository мок для repository.UserRepository.
type UserRepository struct {
	mock.Mock
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserRepository) GetUserByUsernameOrEmail(
	ctx context.Context,
	username, email string,
) (*models.User, error) {
	args := m.Called(ctx, username, email)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserRepository) AddBook(ctx context.Context, userID string, book models.SavedBook) (*models.User, error) {
	args := m.Called(ctx, userID, book)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserRepository) RemoveBook(ctx context.Context, userID, bookID string) (*models.User, error) {
	args := m.Called(ctx, userID, bookID)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) (*models.User, error) {
	args := m.Called(ctx, userID, passwordHash)
	return userOrNil(args.Get(0)), args.Error(1)
}

func userOrNil(ret any) *models.User {
	if ret == nil {
		return nil
	}
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return ret.(*models.User)
}
