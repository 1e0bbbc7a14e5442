package services

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/maynagashev/booksearch/models"
)

// emailPattern совпадает с проверкой формата email в схеме пользователя.
var emailPattern = regexp.MustCompile(`.+@.+\..+`)

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// isHTTPURL проверяет, что строка является абсолютным http(s) адресом.
func isHTTPURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// validateBookInput проверяет обязательные поля книги и формат ссылок.
func validateBookInput(in models.BookInput) *Error {
	switch {
	case strings.TrimSpace(in.BookID) == "":
		return validationError(MsgBookIDRequired)
	case strings.TrimSpace(in.Title) == "":
		return validationError(MsgTitleRequired)
	case strings.TrimSpace(in.Description) == "":
		return validationError(MsgDescriptionRequired)
	case in.Image != "" && !isHTTPURL(in.Image):
		return validationError(MsgInvalidImageURL)
	case in.Link != "" && !isHTTPURL(in.Link):
		return validationError(MsgInvalidLinkURL)
	}
	return nil
}
