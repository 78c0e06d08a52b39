package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
)

// createAttempts caps how many times a generated order id is retried when it
// collides with a stored one.
const createAttempts = 3

// Notifier is told about orders after they are durably stored.
type Notifier interface {
	OrderCreated(ctx context.Context, o *Order) error
}

// PipelineOption customizes Pipeline.
type PipelineOption func(*Pipeline)

func WithNotifier(n Notifier) PipelineOption {
	return func(p *Pipeline) {
		if n != nil {
			p.notifier = n
		}
	}
}

func WithNow(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

func WithIDGenerator(gen func(time.Time) string) PipelineOption {
	return func(p *Pipeline) {
		if gen != nil {
			p.newID = gen
		}
	}
}

// Pipeline turns order requests into stored orders: validate the lines,
// attach customer info when any was shared, stamp an id, persist atomically,
// announce the result.
type Pipeline struct {
	store    Store
	notifier Notifier
	now      func() time.Time
	newID    func(time.Time) string
}

var _ contractx.OrderPlacer = (*Pipeline)(nil)

func NewPipeline(store Store, opts ...PipelineOption) (*Pipeline, error) {
	if store == nil {
		return nil, errors.New("nil order store")
	}
	p := &Pipeline{
		store:    store,
		notifier: noopNotifier{},
		now:      time.Now,
		newID:    NewID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// PlaceOrder runs the transaction pipeline for one request. Generated ids
// are regenerated on conflict up to a small bound; caller-supplied ids are
// not retried, the conflict surfaces instead.
func (p *Pipeline) PlaceOrder(ctx context.Context, req contractx.OrderRequest) (contractx.OrderReceipt, error) {
	o, err := p.assemble(req)
	if err != nil {
		return contractx.OrderReceipt{}, err
	}

	suppliedID := strings.TrimSpace(req.OrderID) != ""
	for attempt := 1; ; attempt++ {
		err = p.store.Create(ctx, o)
		if err == nil {
			break
		}
		if suppliedID || attempt >= createAttempts || !errors.Is(err, contractx.ErrConflict) {
			return contractx.OrderReceipt{}, err
		}
		log.Warn().Str("order_id", o.ID).Int("attempt", attempt).Msg("order id collision, regenerating")
		o.ID = p.newID(p.now())
	}

	log.Info().
		Str("order_id", o.ID).
		Float64("total_amount", o.TotalAmount).
		Int("items", len(o.Items)).
		Msg("order created")

	if err := p.notifier.OrderCreated(ctx, o); err != nil {
		log.Warn().Err(err).Str("order_id", o.ID).Msg("order event publish failed")
	}

	return contractx.OrderReceipt{
		OrderID:     o.ID,
		TotalAmount: o.TotalAmount,
		ItemsCount:  len(o.Items),
	}, nil
}

func (p *Pipeline) assemble(req contractx.OrderRequest) (*Order, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: order request has no products", contractx.ErrValidation)
	}

	items := make([]LineItem, 0, len(req.Lines))
	for _, line := range req.Lines {
		item, err := NewLineItem(line.ProductID, line.ProductName, line.Quantity, line.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	now := p.now().UTC()
	o := &Order{
		ID:        strings.TrimSpace(req.OrderID),
		Items:     items,
		Status:    StatusConfirmed,
		CreatedAt: now,
		Notes:     strings.TrimSpace(req.Notes),
	}
	o.TotalAmount = o.CalculateTotal()

	customer := CustomerInfo{
		Name:  strings.TrimSpace(req.CustomerName),
		Email: strings.TrimSpace(req.CustomerEmail),
		Phone: strings.TrimSpace(req.CustomerPhone),
	}
	if !customer.Empty() {
		o.Customer = &customer
	}

	if o.ID == "" {
		o.ID = p.newID(now)
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateStatus moves an order along its lifecycle. Unlike the raw store
// update, this enforces the transition table.
func (p *Pipeline) UpdateStatus(ctx context.Context, id string, next Status) error {
	current, err := p.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !current.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: order %s cannot move from %s to %s", contractx.ErrValidation, id, current.Status, next)
	}
	return p.store.UpdateStatus(ctx, id, next)
}

type noopNotifier struct{}

func (noopNotifier) OrderCreated(context.Context, *Order) error { return nil }
