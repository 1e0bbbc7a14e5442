// Package catalog выполняет поиск книг во внешнем каталоге Google Books.
package catalog

import (
	"context"
	"fmt"
	"log"

	"github.com/maynagashev/booksearch/models"
	books "google.golang.org/api/books/v1"
	"google.golang.org/api/option"
)

// DefaultMaxResults количество результатов поиска по умолчанию (максимум API равен 40).
const (
	DefaultMaxResults = 20
	maxAllowedResults = 40
)

// Searcher ищет книги во внешнем каталоге.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.Book, error)
}

// Config настройки клиента Google Books.
type Config struct {
	APIKey     string // Ключ API; без него запросы выполняются анонимно с более строгими квотами
	MaxResults int64
}

// GoogleBooks реализует Searcher поверх Google Books API.
type GoogleBooks struct {
	svc        *books.Service
	maxResults int64
}

var _ Searcher = (*GoogleBooks)(nil)

// NewGoogleBooks создает клиент Google Books. Дополнительные опции передаются в books.NewService.
func NewGoogleBooks(ctx context.Context, cfg Config, opts ...option.ClientOption) (*GoogleBooks, error) {
	clientOpts := make([]option.ClientOption, 0, len(opts)+1)
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	} else {
		clientOpts = append(clientOpts, option.WithoutAuthentication())
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := books.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента Google Books: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 || maxResults > maxAllowedResults {
		maxResults = DefaultMaxResults
	}

	return &GoogleBooks{svc: svc, maxResults: maxResults}, nil
}

// Search выполняет поиск томов по строке запроса и приводит их к models.Book.
func (g *GoogleBooks) Search(ctx context.Context, query string) ([]models.Book, error) {
	resp, err := g.svc.Volumes.List(query).MaxResults(g.maxResults).Context(ctx).Do()
	if err != nil {
		log.Printf("[Catalog] Ошибка запроса к Google Books (q=%q): %v", query, err)
		return nil, fmt.Errorf("ошибка запроса к Google Books: %w", err)
	}

	result := make([]models.Book, 0, len(resp.Items))
	for _, v := range resp.Items {
		if b, ok := volumeToBook(v); ok {
			result = append(result, b)
		}
	}

	log.Printf("[Catalog] Найдено %d книг по запросу %q", len(result), query)
	return result, nil
}

// volumeToBook преобразует том каталога в книгу. Тома без ID пропускаются.
func volumeToBook(v *books.Volume) (models.Book, bool) {
	if v == nil || v.Id == "" {
		return models.Book{}, false
	}

	b := models.Book{BookID: v.Id, Authors: []string{}}
	info := v.VolumeInfo
	if info == nil {
		return b, true
	}

	b.Title = info.Title
	b.Description = info.Description
	if info.Authors != nil {
		b.Authors = info.Authors
	}
	if info.ImageLinks != nil {
		b.Image = info.ImageLinks.Thumbnail
	}
	b.Link = info.InfoLink
	return b, true
}
