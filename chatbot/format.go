package chatbot

import (
	"fmt"
	"strings"

	"github.com/korylprince/library-desk-server/api"
	"github.com/shopspring/decimal"
)

// lowStockHint is the stock level below which a restock is suggested
const lowStockHint = 3

var hundred = decimal.NewFromInt(100)

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func signedMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "+$" + d.StringFixed(2)
}

func signedPercent(part, whole decimal.Decimal) string {
	p := part.Div(whole).Mul(hundred)
	if p.IsNegative() {
		return p.StringFixed(1) + "%"
	}
	return "+" + p.StringFixed(1) + "%"
}

func formatBooks(q string, by api.SearchField, books []*api.Book) string {
	if len(books) == 0 {
		return fmt.Sprintf("No books found for '%s' (searching by %s).", q, by)
	}

	items := make([]string, 0, len(books))
	for i, b := range books {
		items = append(items, fmt.Sprintf("%d. %s by %s\n   ISBN: %s, Price: %s\n   Stock: %d copies (%s)",
			i+1, b.Title, b.Author, b.ISBN, money(b.Price), b.Stock, b.StockStatus()))
	}

	return fmt.Sprintf("Found %d book(s) for '%s' (searching by %s):\n\n", len(books), q, by) + strings.Join(items, "\n\n")
}

func formatOrderReceipt(r *api.OrderReceipt, c *api.Customer, matches []*api.Book) string {
	b := new(strings.Builder)
	book := matches[0]

	fmt.Fprintf(b, "Order #%d Created Successfully\n\n", r.OrderID)
	b.WriteString("Order Details:\n")
	fmt.Fprintf(b, "  - Order ID: %d\n", r.OrderID)
	fmt.Fprintf(b, "  - Customer: %s (ID %d)\n", c.Name, c.ID)
	fmt.Fprintf(b, "  - Book: %s\n", book.Title)
	fmt.Fprintf(b, "  - Quantity: %d\n", r.Items[0].Qty)
	fmt.Fprintf(b, "  - Total: %s\n", money(r.TotalAmount))
	fmt.Fprintf(b, "  - Status: %s\n", r.Status)

	for _, sc := range r.StockChanges {
		b.WriteString("\nStock Update:\n")
		fmt.Fprintf(b, "  - Book: %s\n", sc.Title)
		fmt.Fprintf(b, "  - Old stock: %d copies\n", sc.OldStock)
		fmt.Fprintf(b, "  - New stock: %d copies\n", sc.NewStock)
		fmt.Fprintf(b, "  - Reduction: %d copies\n", sc.OldStock-sc.NewStock)
	}

	if len(matches) > 1 {
		others := make([]string, 0, len(matches)-1)
		for _, m := range matches[1:] {
			others = append(others, fmt.Sprintf("%s (ISBN %s)", m.Title, m.ISBN))
		}
		fmt.Fprintf(b, "\nNote: the title matched %d books. Ordered %s (ISBN %s). Other matches: %s\n",
			len(matches), book.Title, book.ISBN, strings.Join(others, ", "))
	}

	b.WriteString("\nRelated Actions:\n")
	fmt.Fprintf(b, "  - Check order: order_status_tool(order_id=%d)\n", r.OrderID)
	b.WriteString("  - View inventory: inventory_summary_tool(threshold=5)\n")
	if len(r.StockChanges) > 0 && r.StockChanges[0].NewStock < lowStockHint {
		fmt.Fprintf(b, "  - Low stock! Consider: restock_book_tool(isbn='%s', quantity=10)\n", r.StockChanges[0].ISBN)
	}

	return b.String()
}

func formatRestock(r *api.RestockResult, s *api.InventorySummary) string {
	b := new(strings.Builder)

	b.WriteString("Successfully Restocked\n\n")
	b.WriteString("Restock Details:\n")
	fmt.Fprintf(b, "  - Book: %s\n", r.Title)
	fmt.Fprintf(b, "  - ISBN: %s\n", r.ISBN)
	fmt.Fprintf(b, "  - Added: %d copies\n", r.Added)
	fmt.Fprintf(b, "  - Old stock: %d copies\n", r.OldStock)
	fmt.Fprintf(b, "  - New stock: %d copies\n", r.NewStock)
	if r.OldStock > 0 {
		fmt.Fprintf(b, "  - Increase: %d copies (%s)\n", r.Added,
			signedPercent(decimal.NewFromInt(int64(r.Added)), decimal.NewFromInt(int64(r.OldStock))))
	} else {
		fmt.Fprintf(b, "  - Increase: %d copies\n", r.Added)
	}

	b.WriteString("\nInventory Impact:\n")
	fmt.Fprintf(b, "  - Total inventory value: %s\n", money(s.TotalInventoryValue))
	fmt.Fprintf(b, "  - Low stock items: %d\n", s.LowStockCount)

	return b.String()
}

func formatPriceChange(c *api.PriceChange, book *api.Book, s *api.InventorySummary) string {
	b := new(strings.Builder)
	delta := c.NewPrice.Sub(c.OldPrice)
	stock := decimal.NewFromInt(int64(book.Stock))

	b.WriteString("Price Updated Successfully\n\n")
	b.WriteString("Price Change Details:\n")
	fmt.Fprintf(b, "  - Book: %s\n", c.Title)
	fmt.Fprintf(b, "  - ISBN: %s\n", c.ISBN)
	fmt.Fprintf(b, "  - Old price: %s\n", money(c.OldPrice))
	fmt.Fprintf(b, "  - New price: %s\n", money(c.NewPrice))
	if c.OldPrice.IsPositive() {
		fmt.Fprintf(b, "  - Change: %s (%s)\n", signedMoney(delta), signedPercent(delta, c.OldPrice))
	} else {
		fmt.Fprintf(b, "  - Change: %s\n", signedMoney(delta))
	}
	fmt.Fprintf(b, "  - Current stock: %d copies\n", book.Stock)
	fmt.Fprintf(b, "  - Inventory value change: %s\n", signedMoney(delta.Mul(stock)))

	b.WriteString("\nInventory Impact:\n")
	fmt.Fprintf(b, "  - New total inventory value: %s\n", money(s.TotalInventoryValue))
	fmt.Fprintf(b, "  - Book's new total value: %s\n", money(c.NewPrice.Mul(stock)))

	b.WriteString("\nRelated Actions:\n")
	if delta.IsPositive() {
		fmt.Fprintf(b, "  - Consider restock: restock_book_tool(isbn='%s', quantity=10)\n", c.ISBN)
	}
	fmt.Fprintf(b, "  - Create order with new price: create_order_tool(book_title='%s', customer_input='1', quantity=1)\n", c.Title)
	fmt.Fprintf(b, "  - Check similar books: find_books_tool(q='%s', by='author')\n", book.Author)

	return b.String()
}

func formatOrderStatus(o *api.OrderStatus, stock map[string]int) string {
	b := new(strings.Builder)

	fmt.Fprintf(b, "Order #%d Status\n\n", o.OrderID)
	b.WriteString("Order Summary:\n")
	fmt.Fprintf(b, "  - Status: %s\n", o.Status)
	fmt.Fprintf(b, "  - Customer: %s\n", o.CustomerName)
	fmt.Fprintf(b, "  - Date: %s\n", o.CreatedAt)
	fmt.Fprintf(b, "  - Total Amount: %s\n", money(o.TotalAmount))
	fmt.Fprintf(b, "  - Items: %d\n", o.ItemCount)

	if len(o.Items) == 0 {
		return b.String()
	}

	b.WriteString("\nOrder Items:\n")
	for i, item := range o.Items {
		fmt.Fprintf(b, "  %d. %s by %s\n", i+1, item.Title, item.Author)
		fmt.Fprintf(b, "     Qty: %d, Price: %s, Subtotal: %s\n", item.Qty, money(item.Price), money(item.Subtotal))
	}

	var levels, suggestions strings.Builder
	for _, item := range o.Items {
		n, ok := stock[item.ISBN]
		if !ok {
			continue
		}
		fmt.Fprintf(&levels, "    - '%s': %d copies\n", item.Title, n)
		if n < lowStockHint {
			fmt.Fprintf(&suggestions, "    - '%s' is low! Restock: restock_book_tool(isbn='%s', quantity=10)\n", item.Title, item.ISBN)
		}
	}
	if levels.Len() > 0 {
		b.WriteString("\nCurrent Stock Levels:\n")
		b.WriteString(levels.String())
	}
	if suggestions.Len() > 0 {
		b.WriteString("\nInventory Suggestions:\n")
		b.WriteString(suggestions.String())
	}

	first := o.Items[0]
	b.WriteString("\nRelated Actions:\n")
	fmt.Fprintf(b, "  - Create similar order: create_order_tool(book_title='%s', customer_input='%d', quantity=1)\n", first.Title, o.CustomerID)
	b.WriteString("  - Check inventory: inventory_summary_tool(threshold=5)\n")
	fmt.Fprintf(b, "  - Find similar books: find_books_tool(q='%s', by='author')\n", first.Author)

	return b.String()
}

func formatInventorySummary(s *api.InventorySummary) string {
	b := new(strings.Builder)

	b.WriteString("Inventory Summary\n\n")
	b.WriteString("Overview:\n")
	fmt.Fprintf(b, "  - Total books: %d\n", s.TotalBooks)
	fmt.Fprintf(b, "  - Total inventory value: %s\n", money(s.TotalInventoryValue))
	fmt.Fprintf(b, "  - Out of stock: %d books\n", s.OutOfStockCount)
	fmt.Fprintf(b, "  - Low stock (<=%d): %d books\n", s.LowStockThreshold, s.LowStockCount)

	top := s.LowStockBooks
	if len(top) > 3 {
		top = top[:3]
	}

	if len(top) > 0 {
		b.WriteString("\nTop Low-Stock Books:\n")
		for i, book := range top {
			fmt.Fprintf(b, "  %d. %s by %s\n", i+1, book.Title, book.Author)
			fmt.Fprintf(b, "     ISBN: %s, Stock: %d, Price: %s\n", book.ISBN, book.Stock, money(book.Price))
		}
	}

	b.WriteString("\nInventory Health:\n")
	if s.OutOfStockCount > 0 {
		fmt.Fprintf(b, "  - %d book(s) are OUT OF STOCK. Urgent action needed!\n", s.OutOfStockCount)
	}
	if s.LowStockCount > 0 {
		fmt.Fprintf(b, "  - %d book(s) are running low. Consider restocking\n", s.LowStockCount)
	}
	if s.OutOfStockCount == 0 && s.LowStockCount == 0 {
		b.WriteString("  - All books are sufficiently stocked\n")
	}

	if len(top) > 0 {
		b.WriteString("\nRestock Suggestions:\n")
		for _, book := range top {
			fmt.Fprintf(b, "  - Restock '%s': restock_book_tool(isbn='%s', quantity=10)\n", book.Title, book.ISBN)
		}
	}

	return b.String()
}
