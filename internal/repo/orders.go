package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Order is a persisted, validated wholesale order. All money fields are in
// centavos and are stored exactly as computed at checkout time.
type Order struct {
	ID              uuid.UUID
	CartID          string
	Status          string
	Region          string
	TotalQty        int
	Subtotal        int64
	DiscountApplied int64
	BracketBps      int
	TotalValue      int64
	ShippingValue   int64
	ShippingDays    int
	FinalValue      int64
	CreatedAt       time.Time
}

// OrderItem is a frozen line of a persisted order.
type OrderItem struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Name      string
	Qty       int
	UnitPrice int64
	IsSpecial bool
	LineTotal int64
}

// Order statuses.
const (
	OrderStatusConfirmed = "confirmed"
	OrderStatusCancelled = "cancelled"
)

// Orders reads and writes the orders and order_items tables.
type Orders struct {
	Pool *pgxpool.Pool
}

const orderColumns = `id, cart_id, status, region, total_qty, subtotal, discount_applied, bracket_bps, total_value, shipping_value, shipping_days, final_value, created_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CartID, &o.Status, &o.Region, &o.TotalQty, &o.Subtotal,
		&o.DiscountApplied, &o.BracketBps, &o.TotalValue, &o.ShippingValue, &o.ShippingDays,
		&o.FinalValue, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("scan order: %w", err)
	}
	return o, nil
}

// Create persists the order and its items atomically.
func (r Orders) Create(ctx context.Context, order Order, items []OrderItem) (Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := scanOrder(tx.QueryRow(ctx,
		`INSERT INTO orders (id, cart_id, status, region, total_qty, subtotal, discount_applied, bracket_bps, total_value, shipping_value, shipping_days, final_value)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+orderColumns,
		order.ID, order.CartID, order.Status, order.Region, order.TotalQty, order.Subtotal,
		order.DiscountApplied, order.BracketBps, order.TotalValue, order.ShippingValue,
		order.ShippingDays, order.FinalValue))
	if err != nil {
		return Order{}, err
	}
	for _, item := range items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO order_items (order_id, product_id, name, qty, unit_price, is_special, line_total)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			created.ID, item.ProductID, item.Name, item.Qty, item.UnitPrice, item.IsSpecial, item.LineTotal); err != nil {
			return Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// GetByID returns an order by ID.
func (r Orders) GetByID(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(r.Pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

// Items returns the frozen lines of an order.
func (r Orders) Items(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT order_id, product_id, name, qty, unit_price, is_special, line_total
		 FROM order_items WHERE order_id = $1 ORDER BY name`, orderID)
	if err != nil {
		return nil, fmt.Errorf("order items: %w", err)
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.OrderID, &it.ProductID, &it.Name, &it.Qty, &it.UnitPrice, &it.IsSpecial, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// List returns recent orders, newest first.
func (r Orders) List(ctx context.Context, limit, offset int) ([]Order, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
