package search

import (
	"sort"

	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
)

// DefaultMaxResults caps a search payload when the caller does not ask for a
// specific count.
const DefaultMaxResults = 5

// ProductSummary is one ranked product in a search payload. RelevanceScore is
// 1 - distance of the product's best-ranked chunk.
type ProductSummary struct {
	ProductID      string  `json:"product_id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	Category       string  `json:"category"`
	StockStatus    string  `json:"stock_status"`
	RelevanceScore float64 `json:"relevance_score"`
	Content        string  `json:"content"`
}

// Aggregate collapses raw chunk hits into per-product summaries: one summary
// per product id keeping the first hit seen, ranked by relevance descending
// with ties staying in arrival order, truncated to maxResults. Hits without a
// product id are skipped.
func Aggregate(hits []contractx.SearchHit, maxResults int) []ProductSummary {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	summaries := make([]ProductSummary, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, hit := range hits {
		id := hit.Metadata.ProductID
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		summaries = append(summaries, ProductSummary{
			ProductID:      id,
			Name:           hit.Metadata.Name,
			Price:          hit.Metadata.Price,
			Category:       hit.Metadata.Category,
			StockStatus:    hit.Metadata.StockStatus,
			RelevanceScore: 1 - hit.Distance,
			Content:        hit.Document,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].RelevanceScore > summaries[j].RelevanceScore
	})
	if len(summaries) > maxResults {
		summaries = summaries[:maxResults]
	}
	return summaries
}
