package capability

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
	searchx "github.com/Ade-Adeleke/SmartShopperAI/agent/search"
)

/* -------------------------------- Payloads -------------------------------- */

// SearchOutcome is the payload fed back to the model for search_products.
// Products is never nil so an empty result serializes as [].
type SearchOutcome struct {
	Success    bool                     `json:"success"`
	Products   []searchx.ProductSummary `json:"products"`
	TotalFound int                      `json:"total_found"`
	Query      string                   `json:"query"`
	Error      string                   `json:"error,omitempty"`
}

// OrderOutcome is the payload fed back to the model for create_order.
type OrderOutcome struct {
	Success     bool    `json:"success"`
	OrderID     string  `json:"order_id,omitempty"`
	TotalAmount float64 `json:"total_amount,omitempty"`
	ItemsCount  int     `json:"items_count,omitempty"`
	Message     string  `json:"message"`
	Error       string  `json:"error,omitempty"`
}

// FailureOutcome is the payload for invocations the router cannot dispatch.
type FailureOutcome struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

/* --------------------------------- Router --------------------------------- */

// Router dispatches capability invocations to the search and order
// collaborators. Execute never returns a Go error: every failure is folded
// into the payload so the conversation continues and the model can apologize
// in its own words.
type Router struct {
	searcher contractx.ProductSearcher
	placer   contractx.OrderPlacer
}

var _ contractx.CapabilityGateway = (*Router)(nil)

func NewRouter(searcher contractx.ProductSearcher, placer contractx.OrderPlacer) (*Router, error) {
	if searcher == nil {
		return nil, errors.New("nil product searcher")
	}
	if placer == nil {
		return nil, errors.New("nil order placer")
	}
	return &Router{searcher: searcher, placer: placer}, nil
}

func (r *Router) Execute(ctx context.Context, inv contractx.ToolInvocation) contractx.ToolResult {
	result := contractx.ToolResult{InvocationID: inv.ID, Capability: inv.Capability}

	switch inv.Capability {
	case contractx.CapabilitySearchProducts:
		result.Payload = r.searchProducts(ctx, inv.RawArgs)
	case contractx.CapabilityCreateOrder:
		result.Payload = r.createOrder(ctx, inv.RawArgs)
	default:
		log.Warn().Str("capability", inv.Capability).Msg("unknown capability requested")
		result.Payload = FailureOutcome{Error: fmt.Sprintf("unknown capability: %s", inv.Capability)}
	}
	return result
}

func (r *Router) searchProducts(ctx context.Context, rawArgs string) SearchOutcome {
	args, err := parseSearchArgs(rawArgs)
	if err != nil {
		return SearchOutcome{
			Products: []searchx.ProductSummary{},
			Query:    args.Query,
			Error:    err.Error(),
		}
	}

	hits, err := r.searcher.Search(ctx, contractx.SearchRequest{
		Query:      args.Query,
		Category:   args.Category,
		MaxResults: args.MaxResults,
	})
	if err != nil {
		log.Warn().Err(err).Str("query", args.Query).Msg("product search failed")
		return SearchOutcome{
			Products: []searchx.ProductSummary{},
			Query:    args.Query,
			Error:    err.Error(),
		}
	}

	products := searchx.Aggregate(hits, args.MaxResults)
	log.Debug().
		Str("query", args.Query).
		Str("category", args.Category).
		Int("results", len(products)).
		Msg("product search completed")
	return SearchOutcome{
		Success:    true,
		Products:   products,
		TotalFound: len(products),
		Query:      args.Query,
	}
}

func (r *Router) createOrder(ctx context.Context, rawArgs string) OrderOutcome {
	args, err := parseCreateOrderArgs(rawArgs)
	if err != nil {
		return orderFailure(err)
	}

	req := contractx.OrderRequest{
		CustomerName:  args.CustomerName,
		CustomerEmail: args.CustomerEmail,
		CustomerPhone: args.CustomerPhone,
		Notes:         args.Notes,
	}
	for _, line := range args.Products {
		req.Lines = append(req.Lines, contractx.OrderLineInput{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	receipt, err := r.placer.PlaceOrder(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("order creation failed")
		return orderFailure(err)
	}

	return OrderOutcome{
		Success:     true,
		OrderID:     receipt.OrderID,
		TotalAmount: receipt.TotalAmount,
		ItemsCount:  receipt.ItemsCount,
		Message:     fmt.Sprintf("Order %s created successfully!", receipt.OrderID),
	}
}

func orderFailure(err error) OrderOutcome {
	return OrderOutcome{
		Message: fmt.Sprintf("Failed to create order: %v", err),
		Error:   err.Error(),
	}
}
