package search

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
	chromax "github.com/Ade-Adeleke/SmartShopperAI/pkg/chroma"
)

// Embedder turns query text into a vector in the same space the product
// index was built with.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorQuerier is the slice of the chroma client the retriever needs.
type VectorQuerier interface {
	Query(ctx context.Context, req chromax.QueryRequest) ([]chromax.QueryResult, error)
}

// Retriever implements contract.ProductSearcher over the vector index: embed
// the query, run a nearest-neighbour lookup with an optional category filter,
// map the returned chunks to search hits.
type Retriever struct {
	index    VectorQuerier
	embedder Embedder
}

var _ contractx.ProductSearcher = (*Retriever)(nil)

func NewRetriever(index VectorQuerier, embedder Embedder) (*Retriever, error) {
	if index == nil {
		return nil, errors.New("nil vector querier")
	}
	if embedder == nil {
		return nil, errors.New("nil embedder")
	}
	return &Retriever{index: index, embedder: embedder}, nil
}

func (r *Retriever) Search(ctx context.Context, req contractx.SearchRequest) ([]contractx.SearchHit, error) {
	embedding, err := r.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", contractx.ErrCapability, err)
	}

	topK := req.MaxResults
	if topK <= 0 {
		topK = DefaultMaxResults
	}
	query := chromax.QueryRequest{Embedding: embedding, TopK: topK}
	if req.Category != "" {
		query.Where = map[string]string{"category": req.Category}
	}

	results, err := r.index.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: vector query: %v", contractx.ErrCapability, err)
	}

	hits := make([]contractx.SearchHit, 0, len(results))
	for _, res := range results {
		hits = append(hits, contractx.SearchHit{
			Document: res.Document,
			Metadata: contractx.HitMetadata{
				ProductID:   metaString(res.Metadata, "product_id"),
				Name:        metaString(res.Metadata, "name"),
				Price:       metaFloat(res.Metadata, "price"),
				Category:    metaString(res.Metadata, "category"),
				StockStatus: metaString(res.Metadata, "stock_status"),
			},
			Distance: res.Distance,
		})
	}
	return hits, nil
}

func metaString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func metaFloat(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
