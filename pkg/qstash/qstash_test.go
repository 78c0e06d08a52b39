package qstash

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPublishPostsToDestination(t *testing.T) {
	t.Parallel()

	var (
		gotPath string
		gotAuth string
		gotBody map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode publish body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"messageId": "msg_1"})
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{URL: server.URL, Token: "tok"}, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	payload := map[string]any{"event": "order.created", "order_id": "ORD-1"}
	if err := client.Publish(context.Background(), "https://hooks.example.com/orders", payload); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if gotPath != "/v2/publish/https://hooks.example.com/orders" {
		t.Fatalf("publish path = %q", gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	if gotBody["order_id"] != "ORD-1" {
		t.Fatalf("publish body = %v", gotBody)
	}
}

func TestPublishSurfacesHTTPErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{URL: server.URL, Token: "tok"}, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	err = client.Publish(context.Background(), "https://hooks.example.com/orders", map[string]string{"k": "v"})
	if err == nil || !strings.Contains(err.Error(), "status=401") {
		t.Fatalf("Publish error = %v, want http status error", err)
	}
}

func TestPublishValidatesDestination(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{URL: "https://qstash.upstash.io", Token: "tok"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := client.Publish(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty destination")
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{URL: "", Token: "tok"}); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := NewClient(Config{URL: "https://qstash.upstash.io"}); err == nil {
		t.Fatal("expected error for empty token")
	}
}
