package contract

import "context"

type ProductSearcher interface {
	Search(ctx context.Context, req SearchRequest) ([]SearchHit, error)
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderReceipt, error)
}

type CapabilityGateway interface {
	Execute(ctx context.Context, inv ToolInvocation) ToolResult
}
