package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SavedBook описывает книгу в списке пользователя. Не существует отдельно от User:
// хранится внутри документа пользователя и не имеет собственного идентификатора.
type SavedBook struct {
	BookID      string   `json:"bookId" bson:"bookId"`
	Title       string   `json:"title" bson:"title"`
	Authors     []string `json:"authors" bson:"authors"`
	Description string   `json:"description" bson:"description"`
	Image       string   `json:"image,omitempty" bson:"image,omitempty"`
	Link        string   `json:"link,omitempty" bson:"link,omitempty"`
}

// Book описывает результат поиска во внешнем каталоге. Формат совпадает с SavedBook.
type Book = SavedBook

// BookInput содержит данные книги, пришедшие от клиента (мутация saveBook или REST-запрос).
type BookInput struct {
	BookID      string   `json:"bookId"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Link        string   `json:"link"`
}

// ToSavedBook преобразует входные данные в элемент списка сохранённых книг.
func (in BookInput) ToSavedBook() SavedBook {
	authors := in.Authors
	if authors == nil {
		authors = []string{}
	}
	return SavedBook{
		BookID:      in.BookID,
		Title:       in.Title,
		Authors:     authors,
		Description: in.Description,
		Image:       in.Image,
		Link:        in.Link,
	}
}

// SavedBooks хранит список книг пользователя. В PostgreSQL это JSONB-массив.
type SavedBooks []SavedBook

// Value реализует driver.Valuer.
func (s SavedBooks) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan реализует sql.Scanner.
func (s *SavedBooks) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*s = SavedBooks{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("неподдерживаемый тип для SavedBooks: %T", src)
	}

	var books SavedBooks
	if err := json.Unmarshal(data, &books); err != nil {
		return fmt.Errorf("ошибка декодирования saved_books: %w", err)
	}
	if books == nil {
		books = SavedBooks{}
	}
	*s = books
	return nil
}
