package api

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

var seedBooks = []*Book{
	{ISBN: "9780132350884", Title: "Clean Code", Author: "Robert C. Martin", Price: decimal.NewFromInt(40), Stock: 10},
	{ISBN: "9780201616224", Title: "The Pragmatic Programmer", Author: "Andrew Hunt", Price: decimal.NewFromInt(45), Stock: 5},
	{ISBN: "9780131103627", Title: "The C Programming Language", Author: "Brian Kernighan", Price: decimal.NewFromInt(35), Stock: 7},
	{ISBN: "9781491957660", Title: "Fluent Python", Author: "Luciano Ramalho", Price: decimal.NewFromInt(50), Stock: 6},
	{ISBN: "9780262033848", Title: "Introduction to Algorithms", Author: "Thomas H. Cormen", Price: decimal.NewFromInt(60), Stock: 4},
	{ISBN: "9780134685991", Title: "Effective Java", Author: "Joshua Bloch", Price: decimal.NewFromInt(42), Stock: 8},
	{ISBN: "9781492078005", Title: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", Price: decimal.NewFromInt(55), Stock: 3},
	{ISBN: "9780134494166", Title: "Clean Architecture", Author: "Robert C. Martin", Price: decimal.NewFromInt(38), Stock: 9},
	{ISBN: "9781617296086", Title: "Spring in Action", Author: "Craig Walls", Price: decimal.NewFromInt(47), Stock: 5},
	{ISBN: "9781492055020", Title: "Python Data Science Handbook", Author: "Jake VanderPlas", Price: decimal.NewFromInt(48), Stock: 6},
}

var seedCustomers = []*Customer{
	{Name: "Ahmad Mahmoud", Email: "ahmad@mail.com"},
	{Name: "Sara Khaled", Email: "sara@mail.com"},
	{Name: "Omar Hassan", Email: "omar@mail.com"},
	{Name: "Lina Youssef", Email: "lina@mail.com"},
	{Name: "Yousef Nasser", Email: "yousef@mail.com"},
	{Name: "Maya Adel", Email: "maya@mail.com"},
}

//seedOrders maps an order (by customer position) to its items. Seeded items do not reduce stock.
var seedOrders = []struct {
	customer int
	items    []*OrderItem
}{
	{0, []*OrderItem{{ISBN: "9780132350884", Qty: 2}, {ISBN: "9780134685991", Qty: 1}}},
	{1, []*OrderItem{{ISBN: "9780201616224", Qty: 1}, {ISBN: "9781492078005", Qty: 2}}},
	{2, []*OrderItem{{ISBN: "9780131103627", Qty: 1}}},
	{3, []*OrderItem{{ISBN: "9781491957660", Qty: 1}}},
}

//Seed inserts the demo catalog, customers, and orders if the books table is empty.
//It returns whether anything was inserted.
func Seed(ctx context.Context) (bool, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM books;").Scan(&count); err != nil {
		return false, &Error{Description: "Could not count Books", Type: ErrorTypePersistence, Err: err}
	}
	if count > 0 {
		return false, nil
	}

	for _, b := range seedBooks {
		if _, err := tx.Exec("INSERT INTO books(isbn, title, author, price, stock) VALUES(?, ?, ?, ?, ?);",
			b.ISBN, b.Title, b.Author, b.Price, b.Stock); err != nil {
			return false, &Error{Description: "Could not insert Book(" + b.ISBN + ")", Type: ErrorTypePersistence, Err: err}
		}
	}

	customerIDs := make([]int64, len(seedCustomers))
	for i, c := range seedCustomers {
		res, err := tx.Exec("INSERT INTO customers(name, email) VALUES(?, ?);", c.Name, c.Email)
		if err != nil {
			if isDuplicate(err) {
				row := tx.QueryRow("SELECT id FROM customers WHERE email=?;", c.Email)
				if err = row.Scan(&customerIDs[i]); err == nil {
					continue
				}
			}
			return false, &Error{Description: "Could not insert Customer(" + c.Email + ")", Type: ErrorTypePersistence, Err: err}
		}
		if customerIDs[i], err = res.LastInsertId(); err != nil {
			return false, &Error{Description: "Could not fetch Customer id", Type: ErrorTypePersistence, Err: err}
		}
	}

	for _, o := range seedOrders {
		res, err := tx.Exec("INSERT INTO orders(customer_id, status) VALUES(?, ?);", customerIDs[o.customer], OrderStatusCreated)
		if err != nil {
			return false, &Error{Description: "Could not insert Order", Type: ErrorTypePersistence, Err: err}
		}
		id, err := res.LastInsertId()
		if err != nil {
			return false, &Error{Description: "Could not fetch Order id", Type: ErrorTypePersistence, Err: err}
		}
		for _, item := range o.items {
			if _, err = tx.Exec("INSERT INTO order_items(order_id, isbn, qty) VALUES(?, ?, ?);", id, item.ISBN, item.Qty); err != nil {
				return false, &Error{Description: "Could not insert OrderItem", Type: ErrorTypePersistence, Err: err}
			}
		}
	}

	return true, nil
}
