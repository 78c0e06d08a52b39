package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
)

const defaultRecentLimit = 5

// Store is the persistence contract for orders.
type Store interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByStatus(ctx context.Context, status Status) ([]*Order, error)
	ListRecent(ctx context.Context, limit int) ([]*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
	Statistics(ctx context.Context) (Statistics, error)
}

// Statistics summarizes the order book. Revenue figures exclude cancelled
// orders.
type Statistics struct {
	TotalOrders       int            `json:"total_orders"`
	StatusCounts      map[Status]int `json:"status_counts"`
	TotalRevenue      float64        `json:"total_revenue"`
	AverageOrderValue float64        `json:"average_order_value"`
}

type orderRow struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	OrderID         string    `bun:"order_id,pk"`
	CustomerName    string    `bun:"customer_name,nullzero"`
	CustomerEmail   string    `bun:"customer_email,nullzero"`
	CustomerPhone   string    `bun:"customer_phone,nullzero"`
	CustomerAddress string    `bun:"customer_address,nullzero"`
	TotalAmount     float64   `bun:"total_amount,notnull"`
	Status          string    `bun:"status,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
	Notes           string    `bun:"notes,nullzero"`
	ItemsJSON       string    `bun:"items_json,notnull"`
}

type orderItemRow struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID          int64   `bun:"id,pk,autoincrement"`
	OrderID     string  `bun:"order_id,notnull"`
	ProductID   string  `bun:"product_id,notnull"`
	ProductName string  `bun:"product_name,notnull"`
	Quantity    int     `bun:"quantity,notnull"`
	UnitPrice   float64 `bun:"unit_price,notnull"`
	TotalPrice  float64 `bun:"total_price,notnull"`
}

// BunStore persists orders in SQL via bun. Each order is written twice in
// one transaction: the header row keeps a denormalized JSON copy of the
// items for single-row reads, the order_items rows keep them queryable. Id
// uniqueness rides on the primary-key constraint; there is no pre-insert
// existence check to race against.
type BunStore struct {
	db *bun.DB
}

var _ Store = (*BunStore)(nil)

func NewBunStore(db *bun.DB) (*BunStore, error) {
	if db == nil {
		return nil, errors.New("nil bun db")
	}
	return &BunStore{db: db}, nil
}

// Init creates the tables and indexes when missing.
func (s *BunStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*orderRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("%w: create orders table: %v", contractx.ErrPersistence, err)
	}
	if _, err := s.db.NewCreateTable().Model((*orderItemRow)(nil)).IfNotExists().
		ForeignKey(`("order_id") REFERENCES "orders" ("order_id")`).
		Exec(ctx); err != nil {
		return fmt.Errorf("%w: create order_items table: %v", contractx.ErrPersistence, err)
	}

	indexes := []struct {
		name   string
		model  any
		column string
	}{
		{"idx_orders_created_at", (*orderRow)(nil), "created_at"},
		{"idx_orders_status", (*orderRow)(nil), "status"},
		{"idx_order_items_order_id", (*orderItemRow)(nil), "order_id"},
	}
	for _, idx := range indexes {
		if _, err := s.db.NewCreateIndex().Model(idx.model).IfNotExists().Index(idx.name).Column(idx.column).Exec(ctx); err != nil {
			return fmt.Errorf("%w: create index %s: %v", contractx.ErrPersistence, idx.name, err)
		}
	}
	return nil
}

func (s *BunStore) Create(ctx context.Context, o *Order) error {
	if o == nil {
		return fmt.Errorf("%w: nil order", contractx.ErrValidation)
	}
	if err := o.Validate(); err != nil {
		return err
	}

	row, itemRows, err := toRows(o)
	if err != nil {
		return err
	}

	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(&itemRows).Exec(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: order id %s", contractx.ErrConflict, o.ID)
		}
		return fmt.Errorf("%w: create order %s: %v", contractx.ErrPersistence, o.ID, err)
	}
	return nil
}

func (s *BunStore) GetByID(ctx context.Context, id string) (*Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: order id is empty", contractx.ErrValidation)
	}

	row := new(orderRow)
	err := s.db.NewSelect().Model(row).Where("order_id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %s", contractx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: load order %s: %v", contractx.ErrPersistence, id, err)
	}
	return fromRow(row)
}

func (s *BunStore) ListByStatus(ctx context.Context, status Status) ([]*Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", contractx.ErrValidation, status)
	}

	var rows []orderRow
	err := s.db.NewSelect().Model(&rows).
		Where("status = ?", string(status)).
		OrderExpr("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders by status %s: %v", contractx.ErrPersistence, status, err)
	}
	return fromRows(rows)
}

func (s *BunStore) ListRecent(ctx context.Context, limit int) ([]*Order, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	var rows []orderRow
	err := s.db.NewSelect().Model(&rows).
		OrderExpr("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list recent orders: %v", contractx.ErrPersistence, err)
	}
	return fromRows(rows)
}

// UpdateStatus overwrites the status unconditionally; lifecycle rules live a
// layer up in the pipeline.
func (s *BunStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: order id is empty", contractx.ErrValidation)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown order status %q", contractx.ErrValidation, status)
	}

	res, err := s.db.NewUpdate().Model((*orderRow)(nil)).
		Set("status = ?", string(status)).
		Where("order_id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: update status of order %s: %v", contractx.ErrPersistence, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update status of order %s: %v", contractx.ErrPersistence, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: order %s", contractx.ErrNotFound, id)
	}
	return nil
}

func (s *BunStore) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: order id is empty", contractx.ErrValidation)
	}

	var affected int64
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*orderItemRow)(nil)).Where("order_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*orderRow)(nil)).Where("order_id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: delete order %s: %v", contractx.ErrPersistence, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: order %s", contractx.ErrNotFound, id)
	}
	return nil
}

func (s *BunStore) Statistics(ctx context.Context) (Statistics, error) {
	stats := Statistics{StatusCounts: make(map[Status]int, 6)}

	total, err := s.db.NewSelect().Model((*orderRow)(nil)).Count(ctx)
	if err != nil {
		return Statistics{}, fmt.Errorf("%w: count orders: %v", contractx.ErrPersistence, err)
	}
	stats.TotalOrders = total

	var counts []struct {
		Status string `bun:"status"`
		Count  int    `bun:"count"`
	}
	err = s.db.NewSelect().Model((*orderRow)(nil)).
		ColumnExpr("status").
		ColumnExpr("count(*) AS count").
		GroupExpr("status").
		Scan(ctx, &counts)
	if err != nil {
		return Statistics{}, fmt.Errorf("%w: count orders by status: %v", contractx.ErrPersistence, err)
	}
	for _, c := range counts {
		stats.StatusCounts[Status(c.Status)] = c.Count
	}

	var revenue struct {
		Total   sql.NullFloat64 `bun:"total"`
		Average sql.NullFloat64 `bun:"average"`
	}
	err = s.db.NewSelect().Model((*orderRow)(nil)).
		ColumnExpr("sum(total_amount) AS total").
		ColumnExpr("avg(total_amount) AS average").
		Where("status != ?", string(StatusCancelled)).
		Scan(ctx, &revenue)
	if err != nil {
		return Statistics{}, fmt.Errorf("%w: sum order revenue: %v", contractx.ErrPersistence, err)
	}
	stats.TotalRevenue = Round2(revenue.Total.Float64)
	stats.AverageOrderValue = Round2(revenue.Average.Float64)

	return stats, nil
}

/* ------------------------------ Row mapping ------------------------------- */

func toRows(o *Order) (*orderRow, []orderItemRow, error) {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: encode items of order %s: %v", contractx.ErrPersistence, o.ID, err)
	}

	row := &orderRow{
		OrderID:     o.ID,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt.UTC(),
		Notes:       o.Notes,
		ItemsJSON:   string(itemsJSON),
	}
	if o.Customer != nil {
		row.CustomerName = o.Customer.Name
		row.CustomerEmail = o.Customer.Email
		row.CustomerPhone = o.Customer.Phone
		row.CustomerAddress = o.Customer.Address
	}

	items := make([]orderItemRow, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemRow{
			OrderID:     o.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return row, items, nil
}

func fromRow(row *orderRow) (*Order, error) {
	var items []LineItem
	if err := json.Unmarshal([]byte(row.ItemsJSON), &items); err != nil {
		return nil, fmt.Errorf("%w: decode items of order %s: %v", contractx.ErrPersistence, row.OrderID, err)
	}

	o := &Order{
		ID:          row.OrderID,
		Items:       items,
		TotalAmount: row.TotalAmount,
		Status:      Status(row.Status),
		CreatedAt:   row.CreatedAt,
		Notes:       row.Notes,
	}
	customer := CustomerInfo{
		Name:    row.CustomerName,
		Email:   row.CustomerEmail,
		Phone:   row.CustomerPhone,
		Address: row.CustomerAddress,
	}
	if !customer.Empty() {
		o.Customer = &customer
	}
	return o, nil
}

func fromRows(rows []orderRow) ([]*Order, error) {
	orders := make([]*Order, 0, len(rows))
	for i := range rows {
		o, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// isUniqueViolation recognizes primary-key violations from both supported
// drivers: SQLSTATE 23505 on Postgres, the constraint message on SQLite.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
