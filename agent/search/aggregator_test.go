package search

import (
	"math"
	"testing"

	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
)

func chunkHit(productID, name string, distance float64) contractx.SearchHit {
	return contractx.SearchHit{
		Document: "Product: " + name,
		Metadata: contractx.HitMetadata{
			ProductID:   productID,
			Name:        name,
			Price:       99.99,
			Category:    "Audio",
			StockStatus: "in_stock",
		},
		Distance: distance,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregateDedupesChunksPerProduct(t *testing.T) {
	t.Parallel()

	hits := []contractx.SearchHit{
		chunkHit("A1", "Noise Cancelling Headphones", 0.1),
		chunkHit("A1", "Noise Cancelling Headphones", 0.2),
		chunkHit("A1", "Noise Cancelling Headphones", 0.3),
		chunkHit("B2", "Portable Speaker", 0.15),
	}

	products := Aggregate(hits, 2)
	if len(products) != 2 {
		t.Fatalf("product count = %d, want 2", len(products))
	}
	if products[0].ProductID != "A1" || !almostEqual(products[0].RelevanceScore, 0.9) {
		t.Fatalf("first product = %+v, want A1 with relevance 0.9", products[0])
	}
	if products[1].ProductID != "B2" || !almostEqual(products[1].RelevanceScore, 0.85) {
		t.Fatalf("second product = %+v, want B2 with relevance 0.85", products[1])
	}
}

func TestAggregateKeepsFirstOccurrence(t *testing.T) {
	t.Parallel()

	// Hits arrive distance-ordered from the index, so the first chunk of a
	// product is its best one; a later chunk never replaces it even when its
	// distance happens to be smaller.
	hits := []contractx.SearchHit{
		chunkHit("A1", "Headphones", 0.3),
		chunkHit("A1", "Headphones", 0.05),
	}

	products := Aggregate(hits, 5)
	if len(products) != 1 {
		t.Fatalf("product count = %d, want 1", len(products))
	}
	if !almostEqual(products[0].RelevanceScore, 0.7) {
		t.Fatalf("relevance = %v, want 0.7 from the first chunk", products[0].RelevanceScore)
	}
}

func TestAggregateEmptyHits(t *testing.T) {
	t.Parallel()

	if products := Aggregate(nil, 5); len(products) != 0 {
		t.Fatalf("products = %+v, want empty", products)
	}
}

func TestAggregateTruncatesAndDefaults(t *testing.T) {
	t.Parallel()

	hits := make([]contractx.SearchHit, 0, 7)
	ids := []string{"P1", "P2", "P3", "P4", "P5", "P6", "P7"}
	for i, id := range ids {
		hits = append(hits, chunkHit(id, "Product "+id, float64(i)*0.05))
	}

	if got := Aggregate(hits, 3); len(got) != 3 {
		t.Fatalf("truncated count = %d, want 3", len(got))
	}
	if got := Aggregate(hits, 0); len(got) != DefaultMaxResults {
		t.Fatalf("default count = %d, want %d", len(got), DefaultMaxResults)
	}
}

func TestAggregateTiesKeepArrivalOrder(t *testing.T) {
	t.Parallel()

	hits := []contractx.SearchHit{
		chunkHit("P1", "First", 0.2),
		chunkHit("P2", "Second", 0.2),
		chunkHit("P3", "Third", 0.2),
	}

	products := Aggregate(hits, 5)
	if len(products) != 3 {
		t.Fatalf("product count = %d, want 3", len(products))
	}
	for i, want := range []string{"P1", "P2", "P3"} {
		if products[i].ProductID != want {
			t.Fatalf("products[%d] = %s, want %s", i, products[i].ProductID, want)
		}
	}
}

func TestAggregateSkipsHitsWithoutProductID(t *testing.T) {
	t.Parallel()

	hits := []contractx.SearchHit{
		chunkHit("", "Corrupt", 0.1),
		chunkHit("P1", "Valid", 0.2),
	}

	products := Aggregate(hits, 5)
	if len(products) != 1 || products[0].ProductID != "P1" {
		t.Fatalf("products = %+v, want only P1", products)
	}
}
