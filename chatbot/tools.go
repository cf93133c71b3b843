package chatbot

// Tool names
const (
	ToolFindBooks        = "find_books_tool"
	ToolCreateOrder      = "create_order_tool"
	ToolRestockBook      = "restock_book_tool"
	ToolUpdatePrice      = "update_price_tool"
	ToolOrderStatus      = "order_status_tool"
	ToolInventorySummary = "inventory_summary_tool"
)

// GetTools returns all available tool definitions for the AI
func GetTools() []Tool {
	return []Tool{
		{
			Type: "function",
			Function: ToolFunction{
				Name:        ToolFindBooks,
				Description: "Search for books by title or author. Use by='author' when searching for books by a specific author, by='title' for general searches. Returns each match with its ISBN, price, and stock.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"q": map[string]interface{}{
							"type":        "string",
							"description": "Search term (author name or part of a book title)",
						},
						"by": map[string]interface{}{
							"type":        "string",
							"enum":        []string{"title", "author"},
							"description": "'author' for author searches, 'title' for title searches (default: title)",
						},
					},
					"required": []string{"q"},
				},
			},
		},
		{
			Type: "function",
			Function: ToolFunction{
				Name:        ToolCreateOrder,
				Description: "Create a new order when a customer buys a book. Reduces stock automatically and fails if there is not enough stock.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"book_title": map[string]interface{}{
							"type":        "string",
							"description": "Book title or part of it (e.g. 'Clean Code', 'The Pragmatic Programmer')",
						},
						"customer_input": map[string]interface{}{
							"type":        "string",
							"description": "Customer ID (e.g. '1'), 'customer 1', or part of the customer's name",
						},
						"quantity": map[string]interface{}{
							"type":        "integer",
							"description": "Number of copies sold (default: 1)",
							"default":     1,
						},
					},
					"required": []string{"book_title", "customer_input"},
				},
			},
		},
		{
			Type: "function",
			Function: ToolFunction{
				Name:        ToolRestockBook,
				Description: "Add more copies of a book to inventory.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"isbn": map[string]interface{}{
							"type":        "string",
							"description": "Book ISBN (e.g. '9780201616224' for The Pragmatic Programmer)",
						},
						"quantity": map[string]interface{}{
							"type":        "integer",
							"description": "Number of copies to add",
						},
					},
					"required": []string{"isbn", "quantity"},
				},
			},
		},
		{
			Type: "function",
			Function: ToolFunction{
				Name:        ToolUpdatePrice,
				Description: "Update the price of a book.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"isbn": map[string]interface{}{
							"type":        "string",
							"description": "Book ISBN",
						},
						"new_price": map[string]interface{}{
							"type":        "number",
							"description": "New price in dollars",
						},
					},
					"required": []string{"isbn", "new_price"},
				},
			},
		},
		{
			Type: "function",
			Function: ToolFunction{
				Name:        ToolOrderStatus,
				Description: "Check the status and details of an order, including its customer, items, and total.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"order_id": map[string]interface{}{
							"type":        "integer",
							"description": "Order ID number",
						},
					},
					"required": []string{"order_id"},
				},
			},
		},
		{
			Type: "function",
			Function: ToolFunction{
				Name:        ToolInventorySummary,
				Description: "Get a summary of the inventory including total value and books at or below a low stock threshold.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"threshold": map[string]interface{}{
							"type":        "integer",
							"description": "Low stock threshold (default: 5)",
						},
					},
					"required": []string{},
				},
			},
		},
	}
}
