package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/maynagashev/booksearch/internal/auth"
	"github.com/maynagashev/booksearch/internal/catalog"
	"github.com/maynagashev/booksearch/internal/repository"
	"github.com/maynagashev/booksearch/models"
)

// BookService определяет интерфейс для работы с пользователями и их списками книг.
// Все операции получают идентичность вызывающего явно.
type BookService interface {
	GetSingleUser(ctx context.Context, caller auth.Identity, id, username string) (*models.User, error)
	Me(ctx context.Context, caller auth.Identity) (*models.User, error)
	SavedBooks(ctx context.Context, caller auth.Identity) ([]models.SavedBook, error)
	SaveBook(ctx context.Context, caller auth.Identity, input models.BookInput) (*models.User, error)
	DeleteBook(ctx context.Context, caller auth.Identity, bookID string) (*models.User, error)
	SearchBooks(ctx context.Context, query string) ([]models.Book, error)
}

var _ BookService = (*bookService)(nil) // Проверка соответствия интерфейсу

type bookService struct {
	userRepo repository.UserRepository
	searcher catalog.Searcher
}

// NewBookService создает новый экземпляр сервиса книг.
func NewBookService(userRepo repository.UserRepository, searcher catalog.Searcher) BookService {
	return &bookService{userRepo: userRepo, searcher: searcher}
}

// GetSingleUser находит пользователя по явному ID, по ID вызывающего или по имени.
// Аутентифицированный вызывающий без явного ID всегда получает свою запись.
func (s *bookService) GetSingleUser(
	ctx context.Context,
	caller auth.Identity,
	id, username string,
) (*models.User, error) {
	var (
		user *models.User
		err  error
	)

	switch {
	case id != "":
		user, err = s.userRepo.GetUserByID(ctx, id)
	case !caller.IsAnonymous():
		user, err = s.userRepo.GetUserByID(ctx, caller.UserID)
	case username != "":
		user, err = s.userRepo.GetUserByUsername(ctx, username)
	default:
		return nil, notFoundError(MsgUserByIDOrName)
	}

	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFoundError(MsgUserByIDOrName)
		}
		return nil, internalError("BookService", "поиск пользователя", err)
	}
	return user, nil
}

// Me возвращает запись вызывающего пользователя.
func (s *bookService) Me(ctx context.Context, caller auth.Identity) (*models.User, error) {
	if caller.IsAnonymous() {
		return nil, authError(MsgLoginRequired)
	}
	return s.callerRecord(ctx, caller)
}

// SavedBooks возвращает актуальный список книг вызывающего из хранилища.
func (s *bookService) SavedBooks(ctx context.Context, caller auth.Identity) ([]models.SavedBook, error) {
	if caller.IsAnonymous() {
		return nil, authError(MsgLoginToView)
	}

	user, err := s.callerRecord(ctx, caller)
	if err != nil {
		return nil, err
	}
	return user.SavedBooks, nil
}

// SaveBook добавляет книгу в список вызывающего. Повторное сохранение не создает дубликат.
func (s *bookService) SaveBook(
	ctx context.Context,
	caller auth.Identity,
	input models.BookInput,
) (*models.User, error) {
	if caller.IsAnonymous() {
		return nil, authError(MsgLoginToSave)
	}
	if verr := validateBookInput(input); verr != nil {
		return nil, verr
	}

	user, err := s.userRepo.AddBook(ctx, caller.UserID, input.ToSavedBook())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("[BookService] Запись пользователя %s не найдена при сохранении книги", caller.UserID)
			return nil, notFoundError(MsgUserByID)
		}
		return nil, internalError("BookService", "сохранение книги", err)
	}

	log.Printf("[BookService] Пользователь %s сохранил книгу '%s'", caller.UserID, input.BookID)
	return user, nil
}

// DeleteBook удаляет книгу из списка вызывающего. Отсутствие книги не является ошибкой.
func (s *bookService) DeleteBook(ctx context.Context, caller auth.Identity, bookID string) (*models.User, error) {
	if caller.IsAnonymous() {
		return nil, authError(MsgLoginToDelete)
	}

	user, err := s.userRepo.RemoveBook(ctx, caller.UserID, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("[BookService] Запись пользователя %s не найдена при удалении книги", caller.UserID)
			return nil, notFoundError(MsgUserByID)
		}
		return nil, internalError("BookService", "удаление книги", err)
	}

	log.Printf("[BookService] Пользователь %s удалил книгу '%s'", caller.UserID, bookID)
	return user, nil
}

// SearchBooks передает запрос во внешний каталог.
func (s *bookService) SearchBooks(ctx context.Context, query string) ([]models.Book, error) {
	if strings.TrimSpace(query) == "" {
		return nil, validationError(MsgSearchQueryRequired)
	}

	result, err := s.searcher.Search(ctx, query)
	if err != nil {
		log.Printf("[BookService] Ошибка поиска книг (q=%q): %v", query, err)
		return nil, &Error{kind: ErrInternal, msg: MsgSearchFailed}
	}
	return result, nil
}

func (s *bookService) callerRecord(ctx context.Context, caller auth.Identity) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFoundError(MsgUserByID)
		}
		return nil, internalError("BookService", "поиск пользователя", err)
	}
	return user, nil
}
