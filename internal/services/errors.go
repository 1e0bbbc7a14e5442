package services

import (
	"errors"
	"log"
)

// Виды ошибок сервисного слоя. Проверяются через errors.Is.
var (
	ErrValidation = errors.New("ошибка валидации")
	ErrAuth       = errors.New("ошибка аутентификации")
	ErrNotFound   = errors.New("не найдено")
	ErrInternal   = errors.New("внутренняя ошибка сервера")
)

// Коды ошибок, отдаваемые клиенту в extensions.code.
const (
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// Сообщения об ошибках, которые видит клиент.
const (
	MsgLoginRequired        = "You must be logged in."
	MsgLoginToSave          = "You must be logged in to save books."
	MsgLoginToDelete        = "You must be logged in to delete books."
	MsgLoginToView          = "You must be logged in to view saved books."
	MsgCannotFindUser       = "Cannot find user."
	MsgIncorrectPassword    = "Incorrect password."
	MsgUserByIDOrName       = "Cannot find a user with this ID or username!"
	MsgUserByID             = "Could not find user with this ID."
	MsgInvalidEmail         = "Must use a valid email address"
	MsgUsernameTaken        = "A user with this username already exists."
	MsgEmailTaken           = "A user with this email already exists."
	MsgSignupFieldsRequired = "Username, email and password are required."
	MsgLoginFieldsRequired  = "Username or email is required."
	MsgNewPasswordRequired  = "New password is required."
	MsgPasswordTooLong      = "Password must be at most 72 bytes long."
	MsgBookIDRequired       = "Book ID is required."
	MsgTitleRequired        = "Title is required."
	MsgDescriptionRequired  = "Description is required."
	MsgInvalidImageURL      = "Image must be a valid http(s) URL."
	MsgInvalidLinkURL       = "Link must be a valid http(s) URL."
	MsgSearchQueryRequired  = "Search query is required."
	MsgSearchFailed         = "Could not search books. Please try again later."
	MsgInternal             = "Something went wrong. Please try again later."
)

// Error ошибка сервиса со стабильным сообщением для клиента.
// Unwrap возвращает вид ошибки (ErrValidation, ErrAuth, ErrNotFound, ErrInternal).
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.kind
}

// Code возвращает машиночитаемый код ошибки.
func (e *Error) Code() string {
	switch e.kind {
	case ErrValidation:
		return CodeBadUserInput
	case ErrAuth:
		return CodeUnauthenticated
	case ErrNotFound:
		return CodeNotFound
	default:
		return CodeInternal
	}
}

// Extensions добавляет код ошибки в ответ GraphQL.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code()}
}

func validationError(msg string) *Error {
	return &Error{kind: ErrValidation, msg: msg}
}

func authError(msg string) *Error {
	return &Error{kind: ErrAuth, msg: msg}
}

func notFoundError(msg string) *Error {
	return &Error{kind: ErrNotFound, msg: msg}
}

// internalError логирует исходную ошибку и скрывает её от клиента.
func internalError(component, op string, err error) *Error {
	log.Printf("[%s] Внутренняя ошибка (%s): %v", component, op, err)
	return &Error{kind: ErrInternal, msg: MsgInternal}
}
