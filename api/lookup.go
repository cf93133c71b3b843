package api

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

//customerStrategy resolves free text to a Customer, returning nil if it doesn't match
type customerStrategy struct {
	name    string
	resolve func(ctx context.Context, input string) (*Customer, error)
}

//customerStrategies are tried in order; the first match wins
var customerStrategies = []customerStrategy{
	{name: "id", resolve: customerByID},
	{name: "customer token", resolve: customerByToken},
	{name: "name", resolve: customerByName},
}

func customerByDigits(ctx context.Context, s string) (*Customer, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, nil
	}
	return ReadCustomer(ctx, id)
}

//customerByID matches input made only of digits, e.g. "3"
func customerByID(ctx context.Context, input string) (*Customer, error) {
	if !isDigits(input) {
		return nil, nil
	}
	return customerByDigits(ctx, input)
}

//customerByToken matches input like "Customer 3"
func customerByToken(ctx context.Context, input string) (*Customer, error) {
	lower := strings.ToLower(input)
	if !strings.Contains(lower, "customer") {
		return nil, nil
	}
	parts := strings.Fields(lower)
	if len(parts) < 2 || !isDigits(parts[1]) {
		return nil, nil
	}
	return customerByDigits(ctx, parts[1])
}

//customerByName matches a case-insensitive substring of the Customer's name
func customerByName(ctx context.Context, input string) (*Customer, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	c := new(Customer)
	row := tx.QueryRow("SELECT id, name, email FROM customers WHERE LOWER(name) LIKE ? ORDER BY id LIMIT 1;", "%"+strings.ToLower(input)+"%")
	err := row.Scan(&(c.ID), &(c.Name), &(c.Email))

	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, &Error{Description: fmt.Sprintf("Could not query Customer by name (%s)", input), Type: ErrorTypePersistence, Err: err}
	}

	return c, nil
}

//ResolveCustomer resolves a free-text customer reference (an id, "customer N", or part of a name)
func ResolveCustomer(ctx context.Context, input string) (*Customer, error) {
	for _, s := range customerStrategies {
		c, err := s.resolve(ctx, input)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return c, nil
		}
	}
	return nil, notFound("Customer '%s' not found", input)
}

//isbnStrategy resolves a title to its candidate Books, returning none if it doesn't match
type isbnStrategy struct {
	name    string
	resolve func(ctx context.Context, title string) ([]*Book, error)
}

//isbnStrategies are tried in order; the first strategy with any match wins
var isbnStrategies = []isbnStrategy{
	{name: "title substring", resolve: booksByTitle},
}

func booksByTitle(ctx context.Context, title string) ([]*Book, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	rows, err := tx.Query("SELECT isbn, title, author, price, stock FROM books WHERE LOWER(title) LIKE ? ORDER BY isbn;", "%"+strings.ToLower(title)+"%")
	if err != nil {
		return nil, &Error{Description: fmt.Sprintf("Could not query Books by title (%s)", title), Type: ErrorTypePersistence, Err: err}
	}

	return scanBooks(rows)
}

//ResolveISBNMatches returns every Book the first matching strategy finds for title, in ISBN order
func ResolveISBNMatches(ctx context.Context, title string) ([]*Book, error) {
	for _, s := range isbnStrategies {
		books, err := s.resolve(ctx, title)
		if err != nil {
			return nil, err
		}
		if len(books) > 0 {
			return books, nil
		}
	}
	return nil, notFound("Could not find ISBN for book '%s'", title)
}

//ResolveISBN returns the ISBN of the first Book matching title. When several Books match,
//the first is returned; callers that care use ResolveISBNMatches.
func ResolveISBN(ctx context.Context, title string) (string, error) {
	books, err := ResolveISBNMatches(ctx, title)
	if err != nil {
		return "", err
	}
	return books[0].ISBN, nil
}
