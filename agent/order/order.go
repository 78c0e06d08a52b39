package order

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
)

const (
	maxItems       = 20
	maxQuantity    = 100
	maxNameLen     = 200
	maxNotesLen    = 1000
	totalTolerance = 0.01
)

// Status tracks an order through its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// statusTransitions is the forward lifecycle. Cancellation is reachable only
// before processing starts; delivered and cancelled are terminal.
var statusTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown order status %q", contractx.ErrValidation, raw)
	}
	return s, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal lifecycle step from s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

/* ------------------------------- Line items ------------------------------ */

type LineItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// NewLineItem validates the inputs and computes the rounded line total.
func NewLineItem(productID, productName string, quantity int, unitPrice float64) (LineItem, error) {
	item := LineItem{
		ProductID:   strings.TrimSpace(productID),
		ProductName: strings.TrimSpace(productName),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalPrice:  Round2(float64(quantity) * unitPrice),
	}
	if err := item.Validate(); err != nil {
		return LineItem{}, err
	}
	return item, nil
}

func (li LineItem) Validate() error {
	if li.ProductID == "" {
		return fmt.Errorf("%w: line item product id is empty", contractx.ErrValidation)
	}
	if li.ProductName == "" || len(li.ProductName) > maxNameLen {
		return fmt.Errorf("%w: product name must be 1..%d chars", contractx.ErrValidation, maxNameLen)
	}
	if li.Quantity < 1 || li.Quantity > maxQuantity {
		return fmt.Errorf("%w: quantity %d outside 1..%d", contractx.ErrValidation, li.Quantity, maxQuantity)
	}
	if li.UnitPrice <= 0 {
		return fmt.Errorf("%w: unit price must be positive", contractx.ErrValidation)
	}
	if li.TotalPrice <= 0 || math.Abs(li.TotalPrice-Round2(float64(li.Quantity)*li.UnitPrice)) > totalTolerance {
		return fmt.Errorf("%w: line total %.2f does not match quantity x unit price", contractx.ErrValidation, li.TotalPrice)
	}
	return nil
}

/* ----------------------------- Customer info ------------------------------ */

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nonDigitPattern = regexp.MustCompile(`\D`)
)

// CustomerInfo is attached to an order only when the customer shared at
// least one field; each present field is validated on its own.
type CustomerInfo struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

func (c CustomerInfo) Empty() bool {
	return c.Name == "" && c.Email == "" && c.Phone == "" && c.Address == ""
}

func (c CustomerInfo) Validate() error {
	if c.Name != "" {
		name := strings.TrimSpace(c.Name)
		if len(name) < 2 || len(name) > 100 {
			return fmt.Errorf("%w: customer name must be 2..100 chars", contractx.ErrValidation)
		}
	}
	if c.Email != "" && !emailPattern.MatchString(c.Email) {
		return fmt.Errorf("%w: customer email %q is malformed", contractx.ErrValidation, c.Email)
	}
	if c.Phone != "" {
		if len(c.Phone) > 20 {
			return fmt.Errorf("%w: customer phone exceeds 20 chars", contractx.ErrValidation)
		}
		if digits := nonDigitPattern.ReplaceAllString(c.Phone, ""); len(digits) < 10 {
			return fmt.Errorf("%w: customer phone needs at least 10 digits", contractx.ErrValidation)
		}
	}
	if c.Address != "" {
		if len(c.Address) < 10 || len(c.Address) > 500 {
			return fmt.Errorf("%w: customer address must be 10..500 chars", contractx.ErrValidation)
		}
	}
	return nil
}

/* --------------------------------- Orders -------------------------------- */

type Order struct {
	ID          string        `json:"order_id"`
	Items       []LineItem    `json:"items"`
	Customer    *CustomerInfo `json:"customer_info,omitempty"`
	TotalAmount float64       `json:"total_amount"`
	Status      Status        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	Notes       string        `json:"notes,omitempty"`
}

// CalculateTotal sums the line totals at cent precision.
func (o *Order) CalculateTotal() float64 {
	var sum float64
	for _, item := range o.Items {
		sum += item.TotalPrice
	}
	return Round2(sum)
}

func (o *Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("%w: order id is empty", contractx.ErrValidation)
	}
	if len(o.Items) == 0 || len(o.Items) > maxItems {
		return fmt.Errorf("%w: order must contain 1..%d items", contractx.ErrValidation, maxItems)
	}
	seen := make(map[string]struct{}, len(o.Items))
	for _, item := range o.Items {
		if err := item.Validate(); err != nil {
			return err
		}
		if _, ok := seen[item.ProductID]; ok {
			return fmt.Errorf("%w: duplicate product id %s", contractx.ErrValidation, item.ProductID)
		}
		seen[item.ProductID] = struct{}{}
	}
	if o.Customer != nil {
		if err := o.Customer.Validate(); err != nil {
			return err
		}
	}
	if o.TotalAmount <= 0 || math.Abs(o.TotalAmount-o.CalculateTotal()) > totalTolerance {
		return fmt.Errorf("%w: order total %.2f does not match item totals", contractx.ErrValidation, o.TotalAmount)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("%w: unknown order status %q", contractx.ErrValidation, o.Status)
	}
	if len(o.Notes) > maxNotesLen {
		return fmt.Errorf("%w: notes exceed %d chars", contractx.ErrValidation, maxNotesLen)
	}
	return nil
}

// Round2 rounds to cents, the precision money is stored at.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
