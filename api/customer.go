package api

import (
	"context"
	"database/sql"
	"fmt"
)

//Customer represents a store customer. Customers are only created by seeding.
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

//ReadCustomer returns the Customer with the given id, or nil if it doesn't exist
func ReadCustomer(ctx context.Context, id int64) (*Customer, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	c := &Customer{ID: id}

	row := tx.QueryRow("SELECT name, email FROM customers WHERE id=?;", id)
	err := row.Scan(&(c.Name), &(c.Email))

	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, &Error{Description: fmt.Sprintf("Could not query Customer(%d)", id), Type: ErrorTypePersistence, Err: err}
	}

	return c, nil
}
