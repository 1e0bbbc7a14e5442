package handlers

import (
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
)

// NewGraphQLHandler возвращает HTTP-обработчик GraphQL для GET и POST запросов.
// Контекст запроса, включая идентичность из middleware, передается резолверам.
func NewGraphQLHandler(schema *graphql.Schema, playground bool) http.Handler {
	return handler.New(&handler.Config{
		Schema:     schema,
		Pretty:     true,
		GraphiQL:   false,
		Playground: playground,
	})
}

// Ping отвечает на проверку доступности сервера.
func Ping(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("pong\n"))
}
