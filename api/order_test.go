package api_test

import (
	"context"
	"testing"

	"github.com/korylprince/library-desk-server/api"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createOrder(t *testing.T, ctxDB func(func(context.Context) error) error, customerID int64, items ...*api.OrderItem) (*api.OrderReceipt, error) {
	t.Helper()
	var receipt *api.OrderReceipt
	err := ctxDB(func(ctx context.Context) (err error) {
		receipt, err = api.CreateOrder(ctx, customerID, items)
		return err
	})
	return receipt, err
}

func TestCreateOrderMultiItem(t *testing.T) {
	db := newTestDB(t)
	run := func(fn func(context.Context) error) error { return inTx(t, db, fn) }

	orders, lines := countRows(t, db, "orders"), countRows(t, db, "order_items")

	receipt, err := createOrder(t, run, 2,
		&api.OrderItem{ISBN: isbnCleanCode, Qty: 3},
		&api.OrderItem{ISBN: isbnFluentPy, Qty: 2},
	)
	require.NoError(t, err)

	assert.Equal(t, int64(2), receipt.CustomerID)
	assert.Equal(t, api.OrderStatusCreated, receipt.Status)
	assert.True(t, receipt.TotalAmount.Equal(decimal.NewFromInt(3*40+2*50)), receipt.TotalAmount.String())
	assert.Equal(t, "Order #5 created successfully", receipt.Message)
	assert.Equal(t, int64(5), receipt.OrderID)

	require.Len(t, receipt.StockChanges, 2)
	assert.Equal(t, api.StockChange{Title: "Clean Code", ISBN: isbnCleanCode, OldStock: 10, NewStock: 7}, *receipt.StockChanges[0])
	assert.Equal(t, api.StockChange{Title: "Fluent Python", ISBN: isbnFluentPy, OldStock: 6, NewStock: 4}, *receipt.StockChanges[1])

	assert.Equal(t, 7, stockOf(t, db, isbnCleanCode))
	assert.Equal(t, 4, stockOf(t, db, isbnFluentPy))
	assert.Equal(t, orders+1, countRows(t, db, "orders"))
	assert.Equal(t, lines+2, countRows(t, db, "order_items"))
}

func TestCreateOrderIsAtomic(t *testing.T) {
	tests := []struct {
		name    string
		items   []*api.OrderItem
		errType api.ErrorType
		message string
	}{
		{
			name:    "unknown isbn after valid line",
			items:   []*api.OrderItem{{ISBN: isbnCleanCode, Qty: 1}, {ISBN: "9999999999999", Qty: 1}},
			errType: api.ErrorTypeNotFound,
			message: "Book with ISBN 9999999999999 not found",
		},
		{
			name:    "insufficient stock after valid line",
			items:   []*api.OrderItem{{ISBN: isbnCleanCode, Qty: 1}, {ISBN: isbnDDIA, Qty: 4}},
			errType: api.ErrorTypeValidation,
			message: "Insufficient stock for 'Designing Data-Intensive Applications'. Available: 3, Requested: 4",
		},
		{
			name:    "repeated lines exceed stock together",
			items:   []*api.OrderItem{{ISBN: isbnDDIA, Qty: 2}, {ISBN: isbnDDIA, Qty: 2}},
			errType: api.ErrorTypeValidation,
			message: "Available: 3, Requested: 4",
		},
		{
			name:    "non-positive quantity",
			items:   []*api.OrderItem{{ISBN: isbnCleanCode, Qty: 0}},
			errType: api.ErrorTypeValidation,
			message: "must be positive",
		},
		{
			name:    "no items",
			items:   nil,
			errType: api.ErrorTypeValidation,
			message: "at least one item",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			db := newTestDB(t)
			run := func(fn func(context.Context) error) error { return inTx(t, db, fn) }

			stock := allStock(t, db)
			orders, lines := countRows(t, db, "orders"), countRows(t, db, "order_items")

			_, err := createOrder(t, run, 1, test.items...)
			require.Error(t, err)
			assert.Equal(t, test.errType, api.ErrorTypeOf(err))
			assert.Contains(t, err.Error(), test.message)

			assert.Equal(t, stock, allStock(t, db))
			assert.Equal(t, orders, countRows(t, db, "orders"))
			assert.Equal(t, lines, countRows(t, db, "order_items"))
		})
	}
}

func TestCreateOrderUnknownCustomer(t *testing.T) {
	db := newTestDB(t)
	run := func(fn func(context.Context) error) error { return inTx(t, db, fn) }

	_, err := createOrder(t, run, 99, &api.OrderItem{ISBN: isbnCleanCode, Qty: 1})
	require.Error(t, err)
	assert.Equal(t, api.ErrorTypeNotFound, api.ErrorTypeOf(err))
	assert.Equal(t, 10, stockOf(t, db, isbnCleanCode))
}

func TestRestockThenOversizedOrder(t *testing.T) {
	db := newTestDB(t)
	run := func(fn func(context.Context) error) error { return inTx(t, db, fn) }

	var res *api.RestockResult
	require.NoError(t, run(func(ctx context.Context) (err error) {
		res, err = api.RestockBook(ctx, isbnPragmatic, 10)
		return err
	}))
	assert.Equal(t, 5, res.OldStock)
	assert.Equal(t, 15, res.NewStock)

	orders := countRows(t, db, "orders")

	_, err := createOrder(t, run, 1, &api.OrderItem{ISBN: isbnPragmatic, Qty: 20})
	require.Error(t, err)
	assert.Equal(t, api.ErrorTypeValidation, api.ErrorTypeOf(err))
	assert.Equal(t, 15, stockOf(t, db, isbnPragmatic))
	assert.Equal(t, orders, countRows(t, db, "orders"))
}

func TestOrderStatusRoundTrip(t *testing.T) {
	db := newTestDB(t)
	run := func(fn func(context.Context) error) error { return inTx(t, db, fn) }

	receipt, err := createOrder(t, run, 3, &api.OrderItem{ISBN: isbnEffectiveJ, Qty: 2})
	require.NoError(t, err)

	var status *api.OrderStatus
	require.NoError(t, run(func(ctx context.Context) (err error) {
		status, err = api.ReadOrderStatus(ctx, receipt.OrderID)
		return err
	}))

	assert.Equal(t, receipt.OrderID, status.OrderID)
	assert.Equal(t, int64(3), status.CustomerID)
	assert.Equal(t, "Omar Hassan", status.CustomerName)
	assert.Equal(t, "omar@mail.com", status.CustomerEmail)
	assert.Equal(t, api.OrderStatusCreated, status.Status)
	assert.NotEmpty(t, status.CreatedAt)
	require.Len(t, status.Items, 1)
	assert.Equal(t, isbnEffectiveJ, status.Items[0].ISBN)
	assert.Equal(t, 2, status.Items[0].Qty)
	assert.True(t, status.TotalAmount.Equal(decimal.NewFromInt(84)), status.TotalAmount.String())
	assert.Equal(t, 1, status.ItemCount)
	assert.Equal(t, 2, status.TotalItems)
}

//Order totals are recomputed from current prices, so a price change reprices past orders.
func TestOrderStatusUsesCurrentPrice(t *testing.T) {
	db := newTestDB(t)
	run := func(fn func(context.Context) error) error { return inTx(t, db, fn) }

	read := func() *api.OrderStatus {
		var status *api.OrderStatus
		require.NoError(t, run(func(ctx context.Context) (err error) {
			status, err = api.ReadOrderStatus(ctx, 1)
			return err
		}))
		return status
	}

	//seeded order 1: 2 x Clean Code (40) + 1 x Effective Java (42)
	assert.True(t, read().TotalAmount.Equal(decimal.NewFromInt(122)))

	require.NoError(t, run(func(ctx context.Context) error {
		_, err := api.UpdatePrice(ctx, isbnCleanCode, decimal.NewFromInt(50))
		return err
	}))

	status := read()
	assert.True(t, status.TotalAmount.Equal(decimal.NewFromInt(142)), status.TotalAmount.String())
	assert.True(t, status.Items[0].Subtotal.Equal(decimal.NewFromInt(100)))
}

func TestOrderStatusNotFound(t *testing.T) {
	db := newTestDB(t)

	err := inTx(t, db, func(ctx context.Context) error {
		_, err := api.ReadOrderStatus(ctx, 404)
		return err
	})
	require.Error(t, err)
	assert.Equal(t, api.ErrorTypeNotFound, api.ErrorTypeOf(err))
	assert.Contains(t, err.Error(), "Order with ID 404 not found")
}
