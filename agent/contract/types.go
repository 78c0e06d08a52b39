package contract

const (
	CapabilitySearchProducts = "search_products"
	CapabilityCreateOrder    = "create_order"
)

// ToolInvocation is one capability call requested by the assistant model.
// RawArgs keeps the argument text exactly as the model produced it; parsing
// happens once, at the router boundary.
type ToolInvocation struct {
	ID         string `json:"id"`
	Capability string `json:"capability"`
	RawArgs    string `json:"raw_args,omitempty"`
}

// ToolResult carries the outcome of one invocation. Payload is always a
// JSON-serializable value; failures are encoded inside it, never as a Go
// error.
type ToolResult struct {
	InvocationID string `json:"invocation_id"`
	Capability   string `json:"capability"`
	Payload      any    `json:"payload"`
}

type SearchRequest struct {
	Query      string `json:"query"`
	Category   string `json:"category,omitempty"`
	MaxResults int    `json:"max_results"`
}

type HitMetadata struct {
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	StockStatus string  `json:"stock_status"`
}

type SearchHit struct {
	Document string      `json:"document"`
	Metadata HitMetadata `json:"metadata"`
	Distance float64     `json:"distance"`
}

type OrderLineInput struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// OrderRequest is the pipeline input. OrderID is normally blank and gets
// generated; callers that supply one forgo conflict retries.
type OrderRequest struct {
	OrderID       string           `json:"order_id,omitempty"`
	Lines         []OrderLineInput `json:"lines"`
	CustomerName  string           `json:"customer_name,omitempty"`
	CustomerEmail string           `json:"customer_email,omitempty"`
	CustomerPhone string           `json:"customer_phone,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

type OrderReceipt struct {
	OrderID     string  `json:"order_id"`
	TotalAmount float64 `json:"total_amount"`
	ItemsCount  int     `json:"items_count"`
}
