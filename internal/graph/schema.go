// Package graph описывает GraphQL-схему сервера и её резолверы.
// Резолверы читают идентичность из контекста один раз и передают её сервисам явно.
package graph

import (
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/maynagashev/booksearch/internal/auth"
	"github.com/maynagashev/booksearch/internal/services"
)

// Ошибки сервисов отдают код через extensions.
var _ gqlerrors.ExtendedError = (*services.Error)(nil)

// Resolver связывает поля схемы с сервисами.
type Resolver struct {
	auth  services.AuthService
	books services.BookService
}

// NewSchema строит схему с корневыми типами Query и Mutation.
func NewSchema(authSvc services.AuthService, bookSvc services.BookService) (graphql.Schema, error) {
	r := &Resolver{auth: authSvc, books: bookSvc}
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    r.queryType(),
		Mutation: r.mutationType(),
	})
}

func (r *Resolver) queryType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"getSingleUser": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"id":       &graphql.ArgumentConfig{Type: graphql.ID},
					"username": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.getSingleUser,
			},
			"searchBooks": &graphql.Field{
				Type: graphql.NewList(bookType),
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.searchBooks,
			},
			"savedBooks": &graphql.Field{
				Type:    graphql.NewList(bookType),
				Resolve: r.savedBooks,
			},
			"me": &graphql.Field{
				Type:    userType,
				Resolve: r.me,
			},
		},
	})
}

func (r *Resolver) mutationType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createUser": &graphql.Field{
				Type: authPayloadType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.createUser,
			},
			"login": &graphql.Field{
				Type: authPayloadType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.String},
					"email":    &graphql.ArgumentConfig{Type: graphql.String},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.login,
			},
			"changePassword": &graphql.Field{
				Type: authPayloadType,
				Args: graphql.FieldConfigArgument{
					"currentPassword": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"newPassword":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.changePassword,
			},
			"saveBook": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"bookInput": &graphql.ArgumentConfig{Type: graphql.NewNonNull(bookInputType)},
				},
				Resolve: r.saveBook,
			},
			"deleteBook": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"bookId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.deleteBook,
			},
		},
	})
}

func (r *Resolver) getSingleUser(p graphql.ResolveParams) (interface{}, error) {
	caller := auth.IdentityFromContext(p.Context)
	return r.books.GetSingleUser(p.Context, caller, stringArg(p.Args, "id"), stringArg(p.Args, "username"))
}

func (r *Resolver) searchBooks(p graphql.ResolveParams) (interface{}, error) {
	return r.books.SearchBooks(p.Context, stringArg(p.Args, "query"))
}

func (r *Resolver) savedBooks(p graphql.ResolveParams) (interface{}, error) {
	return r.books.SavedBooks(p.Context, auth.IdentityFromContext(p.Context))
}

func (r *Resolver) me(p graphql.ResolveParams) (interface{}, error) {
	return r.books.Me(p.Context, auth.IdentityFromContext(p.Context))
}

func (r *Resolver) createUser(p graphql.ResolveParams) (interface{}, error) {
	return r.auth.CreateUser(p.Context,
		stringArg(p.Args, "username"),
		stringArg(p.Args, "email"),
		stringArg(p.Args, "password"),
	)
}

func (r *Resolver) login(p graphql.ResolveParams) (interface{}, error) {
	return r.auth.Login(p.Context,
		stringArg(p.Args, "username"),
		stringArg(p.Args, "email"),
		stringArg(p.Args, "password"),
	)
}

func (r *Resolver) changePassword(p graphql.ResolveParams) (interface{}, error) {
	return r.auth.ChangePassword(p.Context, auth.IdentityFromContext(p.Context),
		stringArg(p.Args, "currentPassword"),
		stringArg(p.Args, "newPassword"),
	)
}

func (r *Resolver) saveBook(p graphql.ResolveParams) (interface{}, error) {
	caller := auth.IdentityFromContext(p.Context)
	return r.books.SaveBook(p.Context, caller, bookInputFromArgs(p.Args["bookInput"]))
}

func (r *Resolver) deleteBook(p graphql.ResolveParams) (interface{}, error) {
	caller := auth.IdentityFromContext(p.Context)
	return r.books.DeleteBook(p.Context, caller, stringArg(p.Args, "bookId"))
}
