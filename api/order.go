package api

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

//OrderStatusCreated is the status of a newly created Order
const OrderStatusCreated = "created"

//OrderItem is a requested order line
type OrderItem struct {
	ISBN string `json:"isbn"`
	Qty  int    `json:"qty"`
}

//StockChange records a Book's stock before and after an Order
type StockChange struct {
	Title    string `json:"title"`
	ISBN     string `json:"isbn"`
	OldStock int    `json:"old_stock"`
	NewStock int    `json:"new_stock"`
}

//OrderReceipt is the result of creating an Order
type OrderReceipt struct {
	OrderID      int64           `json:"order_id"`
	CustomerID   int64           `json:"customer_id"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       string          `json:"status"`
	Items        []*OrderItem    `json:"items"`
	StockChanges []*StockChange  `json:"stock_changes"`
	Message      string          `json:"message"`
}

//OrderLine is an Order line joined with its Book at the Book's current price
type OrderLine struct {
	ISBN     string          `json:"isbn"`
	Title    string          `json:"title"`
	Author   string          `json:"author"`
	Price    decimal.Decimal `json:"price"`
	Qty      int             `json:"qty"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

//OrderStatus is an Order header with its Customer and lines
type OrderStatus struct {
	OrderID       int64           `json:"order_id"`
	CustomerID    int64           `json:"customer_id"`
	Status        string          `json:"status"`
	CreatedAt     string          `json:"created_at"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []*OrderLine    `json:"items"`
	ItemCount     int             `json:"item_count"`
	TotalItems    int             `json:"total_items"`
}

//CreateOrder validates every item, then inserts one Order with its items and reduces stock.
//Nothing is written unless every item is valid. The total uses the Books' current prices.
func CreateOrder(ctx context.Context, customerID int64, items []*OrderItem) (*OrderReceipt, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	if len(items) == 0 {
		return nil, invalid("Order must contain at least one item")
	}

	customer, err := ReadCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, notFound("Customer with ID %d not found", customerID)
	}

	//requested totals per ISBN so repeated lines are checked against stock together
	requested := make(map[string]int)
	var changes []*StockChange
	for _, item := range items {
		if item == nil {
			return nil, invalid("Order item must not be empty")
		}
		if item.Qty <= 0 {
			return nil, invalid("Quantity for ISBN %s must be positive, got %d", item.ISBN, item.Qty)
		}

		book, err := ReadBook(ctx, item.ISBN)
		if err != nil {
			return nil, err
		}
		if book == nil {
			return nil, notFound("Book with ISBN %s not found", item.ISBN)
		}

		if _, ok := requested[item.ISBN]; !ok {
			changes = append(changes, &StockChange{Title: book.Title, ISBN: book.ISBN, OldStock: book.Stock})
		}
		requested[item.ISBN] += item.Qty

		if book.Stock < requested[item.ISBN] {
			return nil, invalid("Insufficient stock for '%s'. Available: %d, Requested: %d", book.Title, book.Stock, requested[item.ISBN])
		}
	}

	res, err := tx.Exec("INSERT INTO orders(customer_id, status) VALUES(?, ?);", customerID, OrderStatusCreated)
	if err != nil {
		return nil, &Error{Description: "Could not insert Order", Type: ErrorTypePersistence, Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, &Error{Description: "Could not fetch Order id", Type: ErrorTypePersistence, Err: err}
	}

	for _, item := range items {
		if _, err = tx.Exec("INSERT INTO order_items(order_id, isbn, qty) VALUES(?, ?, ?);", id, item.ISBN, item.Qty); err != nil {
			return nil, &Error{Description: fmt.Sprintf("Could not insert OrderItem(%d, %s)", id, item.ISBN), Type: ErrorTypePersistence, Err: err}
		}
		if _, err = tx.Exec("UPDATE books SET stock = stock - ? WHERE isbn=?;", item.Qty, item.ISBN); err != nil {
			return nil, &Error{Description: fmt.Sprintf("Could not reduce Book(%s) stock", item.ISBN), Type: ErrorTypePersistence, Err: err}
		}
	}

	total := decimal.Zero
	for _, item := range items {
		var price decimal.Decimal
		if err = tx.QueryRow("SELECT price FROM books WHERE isbn=?;", item.ISBN).Scan(&price); err != nil {
			return nil, &Error{Description: fmt.Sprintf("Could not query Book(%s) price", item.ISBN), Type: ErrorTypePersistence, Err: err}
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Qty))))
	}

	for _, c := range changes {
		if c.NewStock, err = readStock(tx, c.ISBN); err != nil {
			return nil, err
		}
	}

	return &OrderReceipt{
		OrderID:      id,
		CustomerID:   customerID,
		TotalAmount:  total,
		Status:       OrderStatusCreated,
		Items:        items,
		StockChanges: changes,
		Message:      fmt.Sprintf("Order #%d created successfully", id),
	}, nil
}

//ReadOrderStatus returns the Order with its Customer and lines, repriced at current Book prices
func ReadOrderStatus(ctx context.Context, id int64) (*OrderStatus, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	o := &OrderStatus{OrderID: id}

	row := tx.QueryRow(`SELECT o.customer_id, o.status, o.created_at, c.name, c.email
		FROM orders o JOIN customers c ON o.customer_id = c.id WHERE o.id=?;`, id)
	err := row.Scan(&(o.CustomerID), &(o.Status), &(o.CreatedAt), &(o.CustomerName), &(o.CustomerEmail))

	switch {
	case err == sql.ErrNoRows:
		return nil, notFound("Order with ID %d not found", id)
	case err != nil:
		return nil, &Error{Description: fmt.Sprintf("Could not query Order(%d)", id), Type: ErrorTypePersistence, Err: err}
	}

	rows, err := tx.Query(`SELECT b.isbn, b.title, b.author, b.price, oi.qty
		FROM order_items oi JOIN books b ON oi.isbn = b.isbn WHERE oi.order_id=? ORDER BY oi.id;`, id)
	if err != nil {
		return nil, &Error{Description: fmt.Sprintf("Could not query Order(%d) items", id), Type: ErrorTypePersistence, Err: err}
	}
	defer rows.Close()

	o.Items = make([]*OrderLine, 0)
	o.TotalAmount = decimal.Zero
	for rows.Next() {
		l := new(OrderLine)
		if err = rows.Scan(&(l.ISBN), &(l.Title), &(l.Author), &(l.Price), &(l.Qty)); err != nil {
			return nil, &Error{Description: "Could not scan OrderLine row", Type: ErrorTypePersistence, Err: err}
		}
		l.Subtotal = l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
		o.TotalAmount = o.TotalAmount.Add(l.Subtotal)
		o.TotalItems += l.Qty
		o.Items = append(o.Items, l)
	}

	if err = rows.Err(); err != nil {
		return nil, &Error{Description: "Could not scan OrderLine rows", Type: ErrorTypePersistence, Err: err}
	}

	o.ItemCount = len(o.Items)

	return o, nil
}
