package api

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

//DefaultLowStockThreshold is the low stock threshold used when none is given
const DefaultLowStockThreshold = 5

//InventorySummary represents inventory aggregates and the low stock list
type InventorySummary struct {
	TotalBooks          int             `json:"total_books"`
	TotalInventoryValue decimal.Decimal `json:"total_inventory_value"`
	LowStockThreshold   int             `json:"low_stock_threshold"`
	LowStockCount       int             `json:"low_stock_count"`
	OutOfStockCount     int             `json:"out_of_stock_count"`
	LowStockBooks       []*Book         `json:"low_stock_books"`
	Summary             string          `json:"summary"`
}

//ReadInventorySummary returns an InventorySummary. Books with stock at or below threshold
//are listed in ascending stock order. Any threshold is accepted.
func ReadInventorySummary(ctx context.Context, threshold int) (*InventorySummary, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	s := &InventorySummary{LowStockThreshold: threshold}

	//LowStockBooks
	rows, err := tx.Query("SELECT isbn, title, author, price, stock FROM books WHERE stock <= ? ORDER BY stock ASC, isbn ASC;", threshold)
	if err != nil {
		return nil, &Error{Description: "Could not query InventorySummary.LowStockBooks", Type: ErrorTypePersistence, Err: err}
	}
	if s.LowStockBooks, err = scanBooks(rows); err != nil {
		return nil, err
	}
	s.LowStockCount = len(s.LowStockBooks)

	//TotalInventoryValue
	var value decimal.NullDecimal
	if err = tx.QueryRow("SELECT SUM(price * stock) FROM books;").Scan(&value); err != nil {
		return nil, &Error{Description: "Could not query InventorySummary.TotalInventoryValue", Type: ErrorTypePersistence, Err: err}
	}
	s.TotalInventoryValue = decimal.Zero
	if value.Valid {
		s.TotalInventoryValue = value.Decimal.Round(2)
	}

	//TotalBooks
	if err = tx.QueryRow("SELECT COUNT(*) FROM books;").Scan(&(s.TotalBooks)); err != nil {
		return nil, &Error{Description: "Could not query InventorySummary.TotalBooks", Type: ErrorTypePersistence, Err: err}
	}

	//OutOfStockCount
	if err = tx.QueryRow("SELECT COUNT(*) FROM books WHERE stock = 0;").Scan(&(s.OutOfStockCount)); err != nil {
		return nil, &Error{Description: "Could not query InventorySummary.OutOfStockCount", Type: ErrorTypePersistence, Err: err}
	}

	s.Summary = fmt.Sprintf("Total %d books worth $%s, %d books below threshold (%d)",
		s.TotalBooks, s.TotalInventoryValue.StringFixed(2), s.LowStockCount, threshold)

	return s, nil
}
