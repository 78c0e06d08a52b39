package order

import (
	"context"
	"errors"
	"strings"
	"time"

	qstashx "github.com/Ade-Adeleke/SmartShopperAI/pkg/qstash"
)

// orderCreatedEvent is the webhook payload for a newly stored order.
type orderCreatedEvent struct {
	Event       string    `json:"event"`
	OrderID     string    `json:"order_id"`
	TotalAmount float64   `json:"total_amount"`
	ItemsCount  int       `json:"items_count"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// WebhookNotifier publishes order events to a destination URL through
// QStash.
type WebhookNotifier struct {
	client      *qstashx.Client
	destination string
}

var _ Notifier = (*WebhookNotifier)(nil)

func NewWebhookNotifier(client *qstashx.Client, destination string) (*WebhookNotifier, error) {
	if client == nil {
		return nil, errors.New("nil qstash client")
	}
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, errors.New("webhook destination is empty")
	}
	return &WebhookNotifier{client: client, destination: destination}, nil
}

func (n *WebhookNotifier) OrderCreated(ctx context.Context, o *Order) error {
	return n.client.Publish(ctx, n.destination, orderCreatedEvent{
		Event:       "order.created",
		OrderID:     o.ID,
		TotalAmount: o.TotalAmount,
		ItemsCount:  len(o.Items),
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
	})
}
