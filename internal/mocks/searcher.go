package mocks

import (
	"context"

	"github.com/maynagashev/booksearch/internal/catalog"
	"github.com/maynagashev/booksearch/models"
	"github.com/stretchr/testify/mock"
)

// Searcher мок для catalog.Searcher.
type Searcher struct {
	mock.Mock
}

var _ catalog.Searcher = (*Searcher)(nil)

func (m *Searcher) Search(ctx context.Context, query string) ([]models.Book, error) {
	args := m.Called(ctx, query)
	ret := args.Get(0)
	if ret == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return ret.([]models.Book), args.Error(1)
}
