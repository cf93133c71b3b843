package api

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

//SearchField is a Book field that can be searched
type SearchField string

//SearchFields
const (
	SearchTitle  SearchField = "title"
	SearchAuthor SearchField = "author"
)

//ParseSearchField returns the SearchField for s, defaulting to SearchTitle for unknown values
func ParseSearchField(s string) SearchField {
	if SearchField(strings.ToLower(strings.TrimSpace(s))) == SearchAuthor {
		return SearchAuthor
	}
	return SearchTitle
}

//Book represents a title in the catalog
type Book struct {
	ISBN   string          `json:"isbn"`
	Title  string          `json:"title"`
	Author string          `json:"author"`
	Price  decimal.Decimal `json:"price"`
	Stock  int             `json:"stock"`
}

//StockStatus returns a short label for the Book's stock level
func (b *Book) StockStatus() string {
	switch {
	case b.Stock > 5:
		return "Good"
	case b.Stock > 0:
		return "Low"
	}
	return "Out"
}

//RestockResult is the result of restocking a Book
type RestockResult struct {
	ISBN     string `json:"isbn"`
	Title    string `json:"title"`
	OldStock int    `json:"old_stock"`
	NewStock int    `json:"new_stock"`
	Added    int    `json:"added"`
	Message  string `json:"message"`
}

//PriceChange is the result of updating a Book's price
type PriceChange struct {
	ISBN     string          `json:"isbn"`
	Title    string          `json:"title"`
	OldPrice decimal.Decimal `json:"old_price"`
	NewPrice decimal.Decimal `json:"new_price"`
	Message  string          `json:"message"`
}

func scanBooks(rows *sql.Rows) ([]*Book, error) {
	defer rows.Close()

	books := make([]*Book, 0)
	for rows.Next() {
		b := new(Book)
		if err := rows.Scan(&(b.ISBN), &(b.Title), &(b.Author), &(b.Price), &(b.Stock)); err != nil {
			return nil, &Error{Description: "Could not scan Book row", Type: ErrorTypePersistence, Err: err}
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, &Error{Description: "Could not scan Book rows", Type: ErrorTypePersistence, Err: err}
	}

	return books, nil
}

//FindBooks returns all Books whose field contains q, using the database's LIKE semantics.
//An empty result is not an error.
func FindBooks(ctx context.Context, q string, by SearchField) ([]*Book, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	column := "title"
	if by == SearchAuthor {
		column = "author"
	}

	rows, err := tx.Query(fmt.Sprintf("SELECT isbn, title, author, price, stock FROM books WHERE %s LIKE ? ORDER BY isbn;", column), "%"+q+"%")
	if err != nil {
		return nil, &Error{Description: fmt.Sprintf("Could not query Books by %s", column), Type: ErrorTypePersistence, Err: err}
	}

	return scanBooks(rows)
}

//ReadBook returns the Book with the given ISBN, or nil if it doesn't exist
func ReadBook(ctx context.Context, isbn string) (*Book, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	b := &Book{ISBN: isbn}

	row := tx.QueryRow("SELECT title, author, price, stock FROM books WHERE isbn=?;", isbn)
	err := row.Scan(&(b.Title), &(b.Author), &(b.Price), &(b.Stock))

	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, &Error{Description: fmt.Sprintf("Could not query Book(%s)", isbn), Type: ErrorTypePersistence, Err: err}
	}

	return b, nil
}

func readStock(tx *sql.Tx, isbn string) (int, error) {
	var stock int
	if err := tx.QueryRow("SELECT stock FROM books WHERE isbn=?;", isbn).Scan(&stock); err != nil {
		return 0, &Error{Description: fmt.Sprintf("Could not query Book(%s) stock", isbn), Type: ErrorTypePersistence, Err: err}
	}
	return stock, nil
}

//RestockBook adds qty copies to the Book's stock. qty is not bounded: a negative qty
//reduces stock, and the database rejects a result below zero.
func RestockBook(ctx context.Context, isbn string, qty int) (*RestockResult, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	book, err := ReadBook(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, notFound("Book with ISBN %s not found", isbn)
	}

	if _, err = tx.Exec("UPDATE books SET stock = stock + ? WHERE isbn=?;", qty, isbn); err != nil {
		return nil, &Error{Description: fmt.Sprintf("Could not restock Book(%s)", isbn), Type: ErrorTypePersistence, Err: err}
	}

	stock, err := readStock(tx, isbn)
	if err != nil {
		return nil, err
	}

	return &RestockResult{
		ISBN:     isbn,
		Title:    book.Title,
		OldStock: book.Stock,
		NewStock: stock,
		Added:    qty,
		Message:  fmt.Sprintf("Restocked %s by %d copies. New stock: %d", book.Title, qty, stock),
	}, nil
}

//MaxPrice is the exclusive upper bound on a price's magnitude, set by the price column's precision
var MaxPrice = decimal.New(1, 10)

//UpdatePrice replaces the Book's price. Zero and negative prices are accepted;
//prices the price column can't hold are a validation error.
func UpdatePrice(ctx context.Context, isbn string, price decimal.Decimal) (*PriceChange, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	if price.Abs().GreaterThanOrEqual(MaxPrice) {
		return nil, invalid("Price is out of range (must be less than %s)", MaxPrice.String())
	}

	book, err := ReadBook(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, notFound("Book with ISBN %s not found", isbn)
	}

	if _, err = tx.Exec("UPDATE books SET price=? WHERE isbn=?;", price, isbn); err != nil {
		return nil, &Error{Description: fmt.Sprintf("Could not update Book(%s) price", isbn), Type: ErrorTypePersistence, Err: err}
	}

	return &PriceChange{
		ISBN:     isbn,
		Title:    book.Title,
		OldPrice: book.Price,
		NewPrice: price,
		Message:  fmt.Sprintf("Updated price of %s from $%s to $%s", book.Title, book.Price.StringFixed(2), price.StringFixed(2)),
	}, nil
}
