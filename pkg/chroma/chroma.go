package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultCollection    = "products"
	defaultTimeout       = 15 * time.Second
	maxResponseSizeBytes = 2 << 20
)

type Config struct {
	URL        string        `envconfig:"URL" split_words:"true" required:"true"`
	Collection string        `envconfig:"COLLECTION" split_words:"true" default:"products"`
	Token      string        `envconfig:"TOKEN" split_words:"true"`
	Timeout    time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"15s"`
}

// Option customizes Client.
type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithCollection(name string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(name)
		if trimmed != "" {
			c.collection = trimmed
			c.collectionID = ""
		}
	}
}

// Client queries a Chroma server over REST.
type Client struct {
	baseURL    string
	token      string
	collection string
	httpClient *http.Client

	mu           sync.Mutex
	collectionID string
}

// QueryRequest is one nearest-neighbour lookup against the collection.
type QueryRequest struct {
	Embedding []float64
	TopK      int
	Where     map[string]string
}

// QueryResult is one matched chunk.
type QueryResult struct {
	Document string
	Metadata map[string]any
	Distance float64
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("chroma url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid chroma url: %w", err)
	}

	collection := strings.TrimSpace(cfg.Collection)
	if collection == "" {
		collection = defaultCollection
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		collection: collection,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	return client, nil
}

// Heartbeat checks server reachability. Useful as a startup probe.
func (c *Client) Heartbeat(ctx context.Context) error {
	_, err := c.exec(ctx, http.MethodGet, "/api/v1/heartbeat", nil)
	return err
}

type queryPayload struct {
	QueryEmbeddings [][]float64       `json:"query_embeddings"`
	NResults        int               `json:"n_results"`
	Where           map[string]string `json:"where,omitempty"`
	Include         []string          `json:"include"`
}

type queryResponse struct {
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

// Query runs a single-embedding nearest-neighbour search and zips the
// parallel response arrays into per-chunk results, best match first.
func (c *Client) Query(ctx context.Context, req QueryRequest) ([]QueryResult, error) {
	if len(req.Embedding) == 0 {
		return nil, errors.New("query embedding is empty")
	}
	if req.TopK <= 0 {
		return nil, errors.New("top k must be positive")
	}

	collectionID, err := c.resolveCollectionID(ctx)
	if err != nil {
		return nil, err
	}

	payload := queryPayload{
		QueryEmbeddings: [][]float64{req.Embedding},
		NResults:        req.TopK,
		Include:         []string{"documents", "metadatas", "distances"},
	}
	if len(req.Where) > 0 {
		payload.Where = req.Where
	}

	raw, err := c.exec(ctx, http.MethodPost, "/api/v1/collections/"+collectionID+"/query", payload)
	if err != nil {
		return nil, err
	}

	var parsed queryResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	if len(parsed.Documents) == 0 {
		return nil, nil
	}

	docs := parsed.Documents[0]
	results := make([]QueryResult, 0, len(docs))
	for i, doc := range docs {
		res := QueryResult{Document: doc}
		if len(parsed.Metadatas) > 0 && i < len(parsed.Metadatas[0]) {
			res.Metadata = parsed.Metadatas[0][i]
		}
		if len(parsed.Distances) > 0 && i < len(parsed.Distances[0]) {
			res.Distance = parsed.Distances[0][i]
		}
		results = append(results, res)
	}
	return results, nil
}

// resolveCollectionID maps the configured collection name to its server-side
// id. Ids are stable for the life of a collection, so the first lookup is
// cached.
func (c *Client) resolveCollectionID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.collectionID != "" {
		return c.collectionID, nil
	}

	raw, err := c.exec(ctx, http.MethodGet, "/api/v1/collections/"+url.PathEscape(c.collection), nil)
	if err != nil {
		return "", fmt.Errorf("resolve collection %s: %w", c.collection, err)
	}

	var parsed struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode collection response: %w", err)
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("collection %s has no id in response", c.collection)
	}

	c.collectionID = parsed.ID
	return c.collectionID, nil
}

func (c *Client) exec(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if c == nil {
		return nil, errors.New("nil client")
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal chroma request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build chroma request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute chroma request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read chroma response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("chroma http status=%d body=%s", resp.StatusCode, string(raw))
	}

	return raw, nil
}
