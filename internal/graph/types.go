package graph

import (
	"github.com/graphql-go/graphql"
	"github.com/maynagashev/booksearch/models"
)

var bookType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Book",
	Fields: graphql.Fields{
		"bookId":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"title":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"authors":     &graphql.Field{Type: graphql.NewList(graphql.String)},
		"description": &graphql.Field{Type: graphql.String},
		"image":       &graphql.Field{Type: graphql.String},
		"link":        &graphql.Field{Type: graphql.String},
	},
})

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"username": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"email":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"savedBooks": &graphql.Field{
			Type: graphql.NewList(bookType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if u := userFromSource(p.Source); u != nil {
					return []models.SavedBook(u.SavedBooks), nil
				}
				return nil, nil
			},
		},
		// Количество книг вычисляется, а не хранится
		"bookCount": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if u := userFromSource(p.Source); u != nil {
					return u.BookCount(), nil
				}
				return 0, nil
			},
		},
	},
})

var authPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuthPayload",
	Fields: graphql.Fields{
		"token": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"user":  &graphql.Field{Type: userType},
	},
})

var bookInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "BookInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"bookId":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		"title":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"authors":     &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.String)},
		"author":      &graphql.InputObjectFieldConfig{Type: graphql.String, Description: "Устаревшее поле: один автор"},
		"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"image":       &graphql.InputObjectFieldConfig{Type: graphql.String},
		"link":        &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

func userFromSource(src interface{}) *models.User {
	switch u := src.(type) {
	case *models.User:
		return u
	case models.User:
		return &u
	}
	return nil
}

func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

// bookInputFromArgs собирает models.BookInput из аргумента bookInput.
// Устаревшее поле author добавляется к authors, если такого автора там ещё нет.
func bookInputFromArgs(raw interface{}) models.BookInput {
	fields, _ := raw.(map[string]interface{})

	in := models.BookInput{
		BookID:      stringArg(fields, "bookId"),
		Title:       stringArg(fields, "title"),
		Description: stringArg(fields, "description"),
		Image:       stringArg(fields, "image"),
		Link:        stringArg(fields, "link"),
	}

	if list, ok := fields["authors"].([]interface{}); ok {
		for _, a := range list {
			if s, isString := a.(string); isString {
				in.Authors = append(in.Authors, s)
			}
		}
	}

	if legacy := stringArg(fields, "author"); legacy != "" {
		known := false
		for _, a := range in.Authors {
			if a == legacy {
				known = true
				break
			}
		}
		if !known {
			in.Authors = append(in.Authors, legacy)
		}
	}

	return in
}
