package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/maynagashev/booksearch/internal/auth"
	"github.com/maynagashev/booksearch/internal/mocks"
	"github.com/maynagashev/booksearch/internal/repository"
	"github.com/maynagashev/booksearch/internal/services"
	"github.com/maynagashev/booksearch/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var alice = auth.Identity{UserID: "u-1", Username: "alice", Email: "alice@x.com"}

func validBookInput() models.BookInput {
	return models.BookInput{
		BookID:      "b1",
		Title:       "Go in Action",
		Authors:     []string{"William Kennedy"},
		Description: "Go book",
		Image:       "https://img.example/b1.jpg",
		Link:        "https://books.example/b1",
	}
}

func TestBookService_SaveBook(t *testing.T) {
	ctx := context.Background()
	saved := &models.User{ID: "u-1", Username: "alice", SavedBooks: models.SavedBooks{validBookInput().ToSavedBook()}}

	tests := []struct {
		name        string
		caller      auth.Identity
		input       func() models.BookInput
		mockSetup   func(repo *mocks.UserRepository)
		expectedErr error
		expectedMsg string
	}{
		{
			name:   "Успешное сохранение",
			caller: alice,
			input:  validBookInput,
			mockSetup: func(repo *mocks.UserRepository) {
				repo.On("AddBook", ctx, "u-1", validBookInput().ToSavedBook()).Return(saved, nil).Once()
			},
		},
		{
			name:        "Анонимный вызов",
			caller:      auth.Anonymous,
			input:       validBookInput,
			mockSetup:   func(_ *mocks.UserRepository) {},
			expectedErr: services.ErrAuth,
			expectedMsg: services.MsgLoginToSave,
		},
		{
			name:   "Нет bookId",
			caller: alice,
			input: func() models.BookInput {
				in := validBookInput()
				in.BookID = ""
				return in
			},
			mockSetup:   func(_ *mocks.UserRepository) {},
			expectedErr: services.ErrValidation,
			expectedMsg: services.MsgBookIDRequired,
		},
		{
			name:   "Нет названия",
			caller: alice,
			input: func() models.BookInput {
				in := validBookInput()
				in.Title = "  "
				return in
			},
			mockSetup:   func(_ *mocks.UserRepository) {},
			expectedErr: services.ErrValidation,
			expectedMsg: services.MsgTitleRequired,
		},
		{
			name:   "Нет описания",
			caller: alice,
			input: func() models.BookInput {
				in := validBookInput()
				in.Description = ""
				return in
			},
			mockSetup:   func(_ *mocks.UserRepository) {},
			expectedErr: services.ErrValidation,
			expectedMsg: services.MsgDescriptionRequired,
		},
		{
			name:   "Невалидная ссылка на обложку",
			caller: alice,
			input: func() models.BookInput {
				in := validBookInput()
				in.Image = "ftp://img.example/b1.jpg"
				return in
			},
			mockSetup:   func(_ *mocks.UserRepository) {},
			expectedErr: services.ErrValidation,
			expectedMsg: services.MsgInvalidImageURL,
		},
		{
			name:   "Относительная ссылка на книгу",
			caller: alice,
			input: func() models.BookInput {
				in := validBookInput()
				in.Link = "/books/b1"
				return in
			},
			mockSetup:   func(_ *mocks.UserRepository) {},
			expectedErr: services.ErrValidation,
			expectedMsg: services.MsgInvalidLinkURL,
		},
		{
			name:   "Запись пользователя не найдена",
			caller: alice,
			input:  validBookInput,
			mockSetup: func(repo *mocks.UserRepository) {
				repo.On("AddBook", ctx, "u-1", mock.AnythingOfType("models.SavedBook")).
					Return(nil, repository.ErrUserNotFound).Once()
			},
			expectedErr: services.ErrNotFound,
			expectedMsg: services.MsgUserByID,
		},
		{
			name:   "Ошибка хранилища",
			caller: alice,
			input:  validBookInput,
			mockSetup: func(repo *mocks.UserRepository) {
				repo.On("AddBook", ctx, "u-1", mock.AnythingOfType("models.SavedBook")).
					Return(nil, errors.New("connection reset")).Once()
			},
			expectedErr: services.ErrInternal,
			expectedMsg: services.MsgInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.UserRepository)
			tt.mockSetup(repo)

			svc := services.NewBookService(repo, new(mocks.Searcher))
			user, err := svc.SaveBook(ctx, tt.caller, tt.input())

			if tt.expectedErr != nil {
				assertServiceError(t, err, tt.expectedErr, tt.expectedMsg)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, saved, user)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestBookService_DeleteBook(t *testing.T) {
	ctx := context.Background()
	empty := &models.User{ID: "u-1", Username: "alice", SavedBooks: models.SavedBooks{}}

	t.Run("Успешное удаление", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		repo.On("RemoveBook", ctx, "u-1", "b1").Return(empty, nil).Once()

		user, err := services.NewBookService(repo, nil).DeleteBook(ctx, alice, "b1")
		require.NoError(t, err)
		assert.Equal(t, 0, user.BookCount())
		repo.AssertExpectations(t)
	})

	t.Run("Анонимный вызов", func(t *testing.T) {
		repo := new(mocks.UserRepository)

		_, err := services.NewBookService(repo, nil).DeleteBook(ctx, auth.Anonymous, "b1")
		assertServiceError(t, err, services.ErrAuth, services.MsgLoginToDelete)
		repo.AssertNotCalled(t, "RemoveBook", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Пустой bookId ничего не удаляет", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		repo.On("RemoveBook", ctx, "u-1", "").Return(empty, nil).Once()

		user, err := services.NewBookService(repo, nil).DeleteBook(ctx, alice, "")
		require.NoError(t, err)
		assert.Equal(t, empty, user)
		repo.AssertExpectations(t)
	})

	t.Run("Запись пользователя не найдена", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		repo.On("RemoveBook", ctx, "u-1", "b1").Return(nil, repository.ErrUserNotFound).Once()

		_, err := services.NewBookService(repo, nil).DeleteBook(ctx, alice, "b1")
		assertServiceError(t, err, services.ErrNotFound, services.MsgUserByID)
	})
}

func TestBookService_GetSingleUser(t *testing.T) {
	ctx := context.Background()
	user := &models.User{ID: "u-1", Username: "alice"}
	other := &models.User{ID: "u-2", Username: "bob"}

	tests := []struct {
		name        string
		caller      auth.Identity
		id          string
		username    string
		mockSetup   func(repo *mocks.UserRepository)
		expected    *models.User
		expectedErr error
	}{
		{
			name:   "Явный ID имеет приоритет",
			caller: alice,
			id:     "u-2", username: "alice",
			mockSetup: func(repo *mocks.UserRepository) {
				repo.On("GetUserByID", ctx, "u-2").Return(other, nil).Once()
			},
			expected: other,
		},
		{
			name:   "ID вызывающего без аргументов",
			caller: alice,
			mockSetup: func(repo *mocks.UserRepository) {
				repo.On("GetUserByID", ctx, "u-1").Return(user, nil).Once()
			},
			expected: user,
		},
		{
			name:     "Вызывающий с чужим именем получает свою запись",
			caller:   alice,
			username: "bob",
			mockSetup: func(repo *mocks.UserRepository) {
				repo.On("GetUserByID", ctx, "u-1").Return(user, nil).Once()
			},
			expected: user,
		},
		{
			name:     "Анонимный поиск по имени",
			caller:   auth.Anonymous,
			username: "alice",
			mockSetup: func(repo *mocks.UserRepository) {
				repo.On("GetUserByUsername", ctx, "alice").Return(user, nil).Once()
			},
			expected: user,
		},
		{
			name:        "Анонимный вызов без ключа",
			caller:      auth.Anonymous,
			mockSetup:   func(_ *mocks.UserRepository) {},
			expectedErr: services.ErrNotFound,
		},
		{
			name:     "Пользователь не найден",
			caller:   auth.Anonymous,
			username: "ghost",
			mockSetup: func(repo *mocks.UserRepository) {
				repo.On("GetUserByUsername", ctx, "ghost").Return(nil, repository.ErrUserNotFound).Once()
			},
			expectedErr: services.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.UserRepository)
			tt.mockSetup(repo)

			got, err := services.NewBookService(repo, nil).GetSingleUser(ctx, tt.caller, tt.id, tt.username)

			if tt.expectedErr != nil {
				assertServiceError(t, err, tt.expectedErr, services.MsgUserByIDOrName)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, got)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestBookService_SavedBooksAndMe(t *testing.T) {
	ctx := context.Background()
	user := &models.User{
		ID: "u-1", Username: "alice",
		SavedBooks: models.SavedBooks{validBookInput().ToSavedBook()},
	}

	t.Run("Список книг читается из хранилища", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		repo.On("GetUserByID", ctx, "u-1").Return(user, nil).Once()

		books, err := services.NewBookService(repo, nil).SavedBooks(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, []models.SavedBook(user.SavedBooks), books)
		repo.AssertExpectations(t)
	})

	t.Run("Анонимный запрос списка", func(t *testing.T) {
		_, err := services.NewBookService(new(mocks.UserRepository), nil).SavedBooks(ctx, auth.Anonymous)
		assertServiceError(t, err, services.ErrAuth, services.MsgLoginToView)
	})

	t.Run("Запись пользователя не найдена", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		repo.On("GetUserByID", ctx, "u-1").Return(nil, repository.ErrUserNotFound).Once()

		_, err := services.NewBookService(repo, nil).SavedBooks(ctx, alice)
		assertServiceError(t, err, services.ErrNotFound, services.MsgUserByID)
	})

	t.Run("Me", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		repo.On("GetUserByID", ctx, "u-1").Return(user, nil).Once()

		got, err := services.NewBookService(repo, nil).Me(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("Me анонимно", func(t *testing.T) {
		_, err := services.NewBookService(new(mocks.UserRepository), nil).Me(ctx, auth.Anonymous)
		assertServiceError(t, err, services.ErrAuth, services.MsgLoginRequired)
	})
}

func TestBookService_SearchBooks(t *testing.T) {
	ctx := context.Background()
	found := []models.Book{{BookID: "b1", Title: "Go in Action", Authors: []string{}}}

	t.Run("Результаты передаются без изменений", func(t *testing.T) {
		searcher := new(mocks.Searcher)
		searcher.On("Search", ctx, "golang").Return(found, nil).Once()

		books, err := services.NewBookService(nil, searcher).SearchBooks(ctx, "golang")
		require.NoError(t, err)
		assert.Equal(t, found, books)
		searcher.AssertExpectations(t)
	})

	t.Run("Пустой запрос", func(t *testing.T) {
		searcher := new(mocks.Searcher)

		_, err := services.NewBookService(nil, searcher).SearchBooks(ctx, "   ")
		assertServiceError(t, err, services.ErrValidation, services.MsgSearchQueryRequired)
		searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})

	t.Run("Ошибка каталога", func(t *testing.T) {
		searcher := new(mocks.Searcher)
		searcher.On("Search", ctx, "golang").Return(nil, errors.New("quota exceeded")).Once()

		_, err := services.NewBookService(nil, searcher).SearchBooks(ctx, "golang")
		assertServiceError(t, err, services.ErrInternal, services.MsgSearchFailed)
	})
}

// Сценарий целиком на хранилище в памяти: регистрация, вход, сохранение и удаление книги.
func TestScenario_AliceSavesAndDeletesBook(t *testing.T) {
	ctx := context.Background()
	hasher, issuer := newHasherAndIssuer(t)
	repo := repository.NewMemoryUserRepository()
	authSvc := services.NewAuthService(repo, hasher, issuer)
	bookSvc := services.NewBookService(repo, new(mocks.Searcher))

	signup, err := authSvc.CreateUser(ctx, "alice", "alice@x.com", "pw123")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", signup.User.PasswordHash)
	assert.True(t, hasher.Verify("pw123", signup.User.PasswordHash))

	_, err = authSvc.CreateUser(ctx, "alice", "other@x.com", "pw123")
	assertServiceError(t, err, services.ErrValidation, services.MsgUsernameTaken)

	_, err = authSvc.Login(ctx, "alice", "", "wrong")
	assertServiceError(t, err, services.ErrAuth, services.MsgIncorrectPassword)

	login, err := authSvc.Login(ctx, "", "alice@x.com", "pw123")
	require.NoError(t, err)
	caller, err := issuer.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, caller.UserID)

	in := validBookInput()

	user, err := bookSvc.SaveBook(ctx, caller, in)
	require.NoError(t, err)
	assert.Equal(t, 1, user.BookCount())

	user, err = bookSvc.SaveBook(ctx, caller, in)
	require.NoError(t, err)
	assert.Equal(t, 1, user.BookCount(), "Повторное сохранение не должно создавать дубликат")

	user, err = bookSvc.DeleteBook(ctx, caller, "not-saved")
	require.NoError(t, err)
	assert.Equal(t, 1, user.BookCount())

	user, err = bookSvc.DeleteBook(ctx, caller, "b1")
	require.NoError(t, err)
	assert.Equal(t, 0, user.BookCount())

	books, err := bookSvc.SavedBooks(ctx, caller)
	require.NoError(t, err)
	assert.Empty(t, books)

	_, err = bookSvc.SaveBook(ctx, auth.Anonymous, in)
	require.ErrorIs(t, err, services.ErrAuth)
}
