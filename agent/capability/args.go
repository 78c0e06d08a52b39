package capability

import (
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
	searchx "github.com/Ade-Adeleke/SmartShopperAI/agent/search"
)

// SearchArgs is the parsed argument payload of search_products.
type SearchArgs struct {
	Query      string `json:"query"`
	Category   string `json:"category,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

// parseSearchArgs decodes and validates in one step; everything past this
// point works with trusted fields.
func parseSearchArgs(raw string) (SearchArgs, error) {
	var args SearchArgs
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return SearchArgs{}, fmt.Errorf("%w: malformed search arguments: %v", contractx.ErrValidation, err)
	}

	args.Query = strings.TrimSpace(args.Query)
	if args.Query == "" {
		return SearchArgs{}, fmt.Errorf("%w: query is required", contractx.ErrValidation)
	}

	args.Category = strings.TrimSpace(args.Category)
	if args.Category != "" {
		canonical, ok := canonicalCategory(args.Category)
		if !ok {
			return args, fmt.Errorf("%w: unknown category %q", contractx.ErrValidation, args.Category)
		}
		args.Category = canonical
	}

	if args.MaxResults <= 0 {
		args.MaxResults = searchx.DefaultMaxResults
	}
	return args, nil
}

// OrderLine is one product entry of create_order.
type OrderLine struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// CreateOrderArgs is the parsed argument payload of create_order.
type CreateOrderArgs struct {
	Products      []OrderLine `json:"products"`
	CustomerName  string      `json:"customer_name,omitempty"`
	CustomerEmail string      `json:"customer_email,omitempty"`
	CustomerPhone string      `json:"customer_phone,omitempty"`
	Notes         string      `json:"notes,omitempty"`
}

// parseCreateOrderArgs checks shape only. Quantity caps, price rounding, and
// duplicate detection belong to the order pipeline.
func parseCreateOrderArgs(raw string) (CreateOrderArgs, error) {
	var args CreateOrderArgs
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return CreateOrderArgs{}, fmt.Errorf("%w: malformed order arguments: %v", contractx.ErrValidation, err)
	}

	if len(args.Products) == 0 {
		return CreateOrderArgs{}, fmt.Errorf("%w: products must contain at least one entry", contractx.ErrValidation)
	}
	for i, line := range args.Products {
		if strings.TrimSpace(line.ProductID) == "" {
			return CreateOrderArgs{}, fmt.Errorf("%w: products[%d].product_id is required", contractx.ErrValidation, i)
		}
		if strings.TrimSpace(line.ProductName) == "" {
			return CreateOrderArgs{}, fmt.Errorf("%w: products[%d].product_name is required", contractx.ErrValidation, i)
		}
		if line.Quantity < 1 {
			return CreateOrderArgs{}, fmt.Errorf("%w: products[%d].quantity must be at least 1", contractx.ErrValidation, i)
		}
		if line.UnitPrice < 0 {
			return CreateOrderArgs{}, fmt.Errorf("%w: products[%d].unit_price must not be negative", contractx.ErrValidation, i)
		}
	}
	return args, nil
}
