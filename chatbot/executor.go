package chatbot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/korylprince/library-desk-server/api"
	"github.com/shopspring/decimal"
)

// ResultDivider separates the results of several tool calls in one reply
var ResultDivider = "\n" + strings.Repeat("═", 60) + "\n"

// Auditor records chat messages and tool calls for a session
type Auditor interface {
	Message(ctx context.Context, sessionID, role, content string)
	ToolCall(ctx context.Context, sessionID, name string, args, result interface{})
}

// toolHandler runs a tool inside a transaction. It returns a structured result for the
// audit log and the text shown to the operator.
type toolHandler func(ctx context.Context, args map[string]interface{}) (result interface{}, text string, err error)

// toolHandlers maps tool names to their handlers. Every tool in GetTools has an entry.
var toolHandlers = map[string]toolHandler{
	ToolFindBooks:        findBooks,
	ToolCreateOrder:      createOrder,
	ToolRestockBook:      restockBook,
	ToolUpdatePrice:      updatePrice,
	ToolOrderStatus:      orderStatus,
	ToolInventorySummary: inventorySummary,
}

// argError is a missing or malformed tool argument
type argError struct {
	msg string
}

func (e *argError) Error() string {
	return e.msg
}

// refusal is a tool outcome reported to the operator verbatim
type refusal string

func (r refusal) Error() string {
	return string(r)
}

// Dispatcher executes tool calls, each in its own transaction
type Dispatcher struct {
	db    *sql.DB
	audit Auditor
	log   *slog.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(db *sql.DB, audit Auditor, log *slog.Logger) *Dispatcher {
	return &Dispatcher{db: db, audit: audit, log: log}
}

// Execute runs a single tool call and returns its text result. Failures are reported in
// the returned text rather than as an error.
func (d *Dispatcher) Execute(ctx context.Context, sessionID, name, arguments string) (text string) {
	handler, ok := toolHandlers[name]
	if !ok {
		d.log.Warn("unknown tool requested", "session", sessionID, "tool", name)
		return fmt.Sprintf("Tool '%s' not available", name)
	}

	var args map[string]interface{}
	if strings.TrimSpace(arguments) != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			d.log.Warn("invalid tool arguments", "session", sessionID, "tool", name, "err", err)
			return fmt.Sprintf("Invalid arguments format: %v", err)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.Error("tool panicked", "session", sessionID, "tool", name, "panic", r)
			text = fmt.Sprintf("Error executing %s: %v", name, r)
		}
	}()

	var result interface{}
	err := api.WithTx(ctx, d.db, func(ctx context.Context) (err error) {
		result, text, err = handler(ctx, args)
		return err
	})

	if err != nil {
		text = errorText(name, err)
		result = map[string]string{"error": text}
		if rejected(err) {
			d.log.Info("tool rejected", "session", sessionID, "tool", name, "err", err)
		} else {
			d.log.Error("tool failed", "session", sessionID, "tool", name, "err", err)
		}
	}

	d.audit.ToolCall(ctx, sessionID, name, args, result)

	return text
}

// ExecuteAll runs each call independently and in order, joining the results with ResultDivider.
// No call sees another call's result.
func (d *Dispatcher) ExecuteAll(ctx context.Context, sessionID string, calls []ToolCall) string {
	results := make([]string, 0, len(calls))
	for _, call := range calls {
		results = append(results, d.Execute(ctx, sessionID, call.Function.Name, call.Function.Arguments))
	}
	return strings.Join(results, ResultDivider)
}

// rejected reports whether err is a refusal caused by the request rather than a storage failure
func rejected(err error) bool {
	var r refusal
	var aErr *argError
	if errors.As(err, &r) || errors.As(err, &aErr) {
		return true
	}
	return api.ErrorTypeOf(err) != api.ErrorTypePersistence
}

func errorText(name string, err error) string {
	var r refusal
	if errors.As(err, &r) {
		return string(r)
	}

	var aErr *argError
	if errors.As(err, &aErr) {
		return fmt.Sprintf("Error executing %s: %s", name, aErr.msg)
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) && (apiErr.Type == api.ErrorTypeNotFound || apiErr.Type == api.ErrorTypeValidation) {
		return "Error: " + apiErr.Description
	}

	return fmt.Sprintf("Error executing %s: %v", name, err)
}

func getString(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func requireString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", &argError{msg: key + " is required"}
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	}
	return "", &argError{msg: key + " must be a string"}
}

// getInt returns the integer argument for key, or def if it is absent. Numeric strings are accepted.
func getInt(args map[string]interface{}, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, &argError{msg: fmt.Sprintf("%s must be a whole number, got %v", key, n)}
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, &argError{msg: fmt.Sprintf("%s must be an integer, got %q", key, n)}
		}
		return i, nil
	}
	return 0, &argError{msg: key + " must be an integer"}
}

func requireInt(args map[string]interface{}, key string) (int, error) {
	if v, ok := args[key]; !ok || v == nil {
		return 0, &argError{msg: key + " is required"}
	}
	return getInt(args, key, 0)
}

func requireDecimal(args map[string]interface{}, key string) (decimal.Decimal, error) {
	switch n := args[key].(type) {
	case nil:
		return decimal.Zero, &argError{msg: key + " is required"}
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(n), "$"))
		if err != nil {
			return decimal.Zero, &argError{msg: fmt.Sprintf("%s must be a number, got %q", key, n)}
		}
		return d, nil
	}
	return decimal.Zero, &argError{msg: key + " must be a number"}
}

func findBooks(ctx context.Context, args map[string]interface{}) (interface{}, string, error) {
	q, err := requireString(args, "q")
	if err != nil {
		return nil, "", err
	}
	by := api.ParseSearchField(getString(args, "by"))

	books, err := api.FindBooks(ctx, q, by)
	if err != nil {
		return nil, "", err
	}

	return map[string]interface{}{"count": len(books)}, formatBooks(q, by, books), nil
}

func createOrder(ctx context.Context, args map[string]interface{}) (interface{}, string, error) {
	title, err := requireString(args, "book_title")
	if err != nil {
		return nil, "", err
	}
	customerInput, err := requireString(args, "customer_input")
	if err != nil {
		return nil, "", err
	}
	qty, err := getInt(args, "quantity", 1)
	if err != nil {
		return nil, "", err
	}

	books, err := api.FindBooks(ctx, title, api.SearchTitle)
	if err != nil {
		return nil, "", err
	}
	if len(books) == 0 {
		return nil, "", refusal(fmt.Sprintf("Book '%s' not found in inventory.", title))
	}
	if books[0].Stock < qty {
		return nil, "", refusal(fmt.Sprintf("Insufficient stock for '%s'. Available: %d, Requested: %d", title, books[0].Stock, qty))
	}

	customer, err := api.ResolveCustomer(ctx, customerInput)
	if err != nil {
		if api.ErrorTypeOf(err) == api.ErrorTypeNotFound {
			return nil, "", refusal(fmt.Sprintf("Customer '%s' not found. Please use customer ID 1-5.", customerInput))
		}
		return nil, "", err
	}

	matches, err := api.ResolveISBNMatches(ctx, title)
	if err != nil {
		if api.ErrorTypeOf(err) == api.ErrorTypeNotFound {
			return nil, "", refusal(fmt.Sprintf("Could not find ISBN for book '%s'.", title))
		}
		return nil, "", err
	}

	receipt, err := api.CreateOrder(ctx, customer.ID, []*api.OrderItem{{ISBN: matches[0].ISBN, Qty: qty}})
	if err != nil {
		return nil, "", err
	}

	return receipt, formatOrderReceipt(receipt, customer, matches), nil
}

func restockBook(ctx context.Context, args map[string]interface{}) (interface{}, string, error) {
	isbn, err := requireString(args, "isbn")
	if err != nil {
		return nil, "", err
	}
	qty, err := requireInt(args, "quantity")
	if err != nil {
		return nil, "", err
	}

	res, err := api.RestockBook(ctx, isbn, qty)
	if err != nil {
		return nil, "", err
	}

	summary, err := api.ReadInventorySummary(ctx, api.DefaultLowStockThreshold)
	if err != nil {
		return nil, "", err
	}

	return res, formatRestock(res, summary), nil
}

func updatePrice(ctx context.Context, args map[string]interface{}) (interface{}, string, error) {
	isbn, err := requireString(args, "isbn")
	if err != nil {
		return nil, "", err
	}
	price, err := requireDecimal(args, "new_price")
	if err != nil {
		return nil, "", err
	}

	change, err := api.UpdatePrice(ctx, isbn, price)
	if err != nil {
		return nil, "", err
	}

	book, err := api.ReadBook(ctx, isbn)
	if err != nil {
		return nil, "", err
	}

	summary, err := api.ReadInventorySummary(ctx, api.DefaultLowStockThreshold)
	if err != nil {
		return nil, "", err
	}

	return change, formatPriceChange(change, book, summary), nil
}

func orderStatus(ctx context.Context, args map[string]interface{}) (interface{}, string, error) {
	id, err := requireInt(args, "order_id")
	if err != nil {
		return nil, "", err
	}

	status, err := api.ReadOrderStatus(ctx, int64(id))
	if err != nil {
		return nil, "", err
	}

	stock := make(map[string]int, len(status.Items))
	for _, item := range status.Items {
		book, err := api.ReadBook(ctx, item.ISBN)
		if err != nil {
			return nil, "", err
		}
		if book != nil {
			stock[item.ISBN] = book.Stock
		}
	}

	return status, formatOrderStatus(status, stock), nil
}

func inventorySummary(ctx context.Context, args map[string]interface{}) (interface{}, string, error) {
	threshold, err := getInt(args, "threshold", api.DefaultLowStockThreshold)
	if err != nil {
		return nil, "", err
	}

	summary, err := api.ReadInventorySummary(ctx, threshold)
	if err != nil {
		return nil, "", err
	}

	return summary, formatInventorySummary(summary), nil
}
