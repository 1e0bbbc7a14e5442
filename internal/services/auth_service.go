package services

import (
	"context"
	"errors"
	"log"

	"github.com/maynagashev/booksearch/internal/auth"
	"github.com/maynagashev/booksearch/internal/repository"
	"github.com/maynagashev/booksearch/models"
)

// AuthService определяет интерфейс для сервиса аутентификации.
type AuthService interface {
	// CreateUser регистрирует пользователя и сразу выдает ему токен.
	CreateUser(ctx context.Context, username, email, password string) (*models.AuthPayload, error)
	// Login аутентифицирует пользователя по имени или email.
	Login(ctx context.Context, username, email, password string) (*models.AuthPayload, error)
	// ChangePassword меняет пароль вызывающего пользователя и выдает новый токен.
	ChangePassword(ctx context.Context, caller auth.Identity, currentPassword, newPassword string) (*models.AuthPayload, error)
}

// Убедимся, что authService удовлетворяет интерфейсу AuthService.
var _ AuthService = (*authService)(nil)

type authService struct {
	userRepo repository.UserRepository // Зависимость от репозитория пользователей
	hasher   *auth.PasswordHasher
	issuer   *auth.TokenIssuer
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
func NewAuthService(
	userRepo repository.UserRepository,
	hasher *auth.PasswordHasher,
	issuer *auth.TokenIssuer,
) AuthService {
	return &authService{userRepo: userRepo, hasher: hasher, issuer: issuer}
}

// CreateUser регистрирует нового пользователя.
func (s *authService) CreateUser(ctx context.Context, username, email, password string) (*models.AuthPayload, error) {
	if username == "" || email == "" || password == "" {
		return nil, validationError(MsgSignupFieldsRequired)
	}
	if !isValidEmail(email) {
		return nil, validationError(MsgInvalidEmail)
	}
	if len(password) > auth.MaxPasswordLength {
		return nil, validationError(MsgPasswordTooLong)
	}

	// Проверяем занятость заранее, индекс в хранилище подстрахует от гонки
	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	// Хешируем пароль
	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		return nil, internalError("AuthService", "хеширование пароля", err)
	}

	user, err := s.userRepo.CreateUser(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		SavedBooks:   models.SavedBooks{},
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			log.Printf("[AuthService] Попытка регистрации с занятым именем: %s", username)
			return nil, validationError(MsgUsernameTaken)
		case errors.Is(err, repository.ErrEmailTaken):
			log.Printf("[AuthService] Попытка регистрации с занятым email: %s", email)
			return nil, validationError(MsgEmailTaken)
		default:
			return nil, internalError("AuthService", "создание пользователя", err)
		}
	}

	payload, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	log.Printf("[AuthService] Пользователь '%s' успешно зарегистрирован", username)
	return payload, nil
}

// Login аутентифицирует пользователя и возвращает JWT токен.
func (s *authService) Login(ctx context.Context, username, email, password string) (*models.AuthPayload, error) {
	if username == "" && email == "" {
		return nil, validationError(MsgLoginFieldsRequired)
	}

	user, err := s.userRepo.GetUserByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("[AuthService] Попытка входа несуществующего пользователя: username=%q email=%q", username, email)
			return nil, notFoundError(MsgCannotFindUser)
		}
		return nil, internalError("AuthService", "поиск пользователя", err)
	}

	// Сравниваем предоставленный пароль с хешем из хранилища
	if !s.hasher.Verify(password, user.PasswordHash) {
		log.Printf("[AuthService] Неверный пароль для пользователя: %s", user.Username)
		return nil, authError(MsgIncorrectPassword)
	}

	payload, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	log.Printf("[AuthService] Пользователь '%s' успешно аутентифицирован", user.Username)
	return payload, nil
}

// ChangePassword проверяет текущий пароль и сохраняет хеш нового.
func (s *authService) ChangePassword(
	ctx context.Context,
	caller auth.Identity,
	currentPassword, newPassword string,
) (*models.AuthPayload, error) {
	if caller.IsAnonymous() {
		return nil, authError(MsgLoginRequired)
	}
	if newPassword == "" {
		return nil, validationError(MsgNewPasswordRequired)
	}
	if len(newPassword) > auth.MaxPasswordLength {
		return nil, validationError(MsgPasswordTooLong)
	}

	user, err := s.userRepo.GetUserByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFoundError(MsgUserByID)
		}
		return nil, internalError("AuthService", "поиск пользователя", err)
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		log.Printf("[AuthService] Неверный текущий пароль при смене пароля: %s", user.Username)
		return nil, authError(MsgIncorrectPassword)
	}

	hashedPassword, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, internalError("AuthService", "хеширование пароля", err)
	}

	updated, err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFoundError(MsgUserByID)
		}
		return nil, internalError("AuthService", "обновление пароля", err)
	}

	payload, err := s.issue(updated)
	if err != nil {
		return nil, err
	}

	log.Printf("[AuthService] Пользователь '%s' сменил пароль", updated.Username)
	return payload, nil
}

// ensureAvailable проверяет, что имя пользователя и email свободны.
func (s *authService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.userRepo.GetUserByUsername(ctx, username); err == nil {
		log.Printf("[AuthService] Попытка регистрации с занятым именем: %s", username)
		return validationError(MsgUsernameTaken)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return internalError("AuthService", "проверка имени пользователя", err)
	}

	if _, err := s.userRepo.GetUserByEmail(ctx, email); err == nil {
		log.Printf("[AuthService] Попытка регистрации с занятым email: %s", email)
		return validationError(MsgEmailTaken)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return internalError("AuthService", "проверка email", err)
	}

	return nil
}

// issue выпускает токен для пользователя и собирает ответ.
func (s *authService) issue(user *models.User) (*models.AuthPayload, error) {
	token, err := s.issuer.Issue(auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		return nil, internalError("AuthService", "генерация токена", err)
	}
	return &models.AuthPayload{Token: token, User: user}, nil
}
