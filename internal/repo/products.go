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

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("repo: not found")

// Product is the catalog row for a wholesale product. Prices are in centavos.
type Product struct {
	ID                 uuid.UUID
	Slug               string
	Name               string
	Description        string
	NormalPrice        int64
	SpecialPrice       int64
	SpecialPriceMinQty int
	Stock              int
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Products reads and writes the products table.
type Products struct {
	Pool *pgxpool.Pool
}

const productColumns = `id, slug, name, description, normal_price, special_price, special_price_min_qty, stock, active, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.NormalPrice, &p.SpecialPrice,
		&p.SpecialPriceMinQty, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}

// List returns active products ordered by name.
func (r Products) List(ctx context.Context, limit, offset int) ([]Product, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE active ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the number of active products.
func (r Products) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// GetByID returns a product by its ID, active or not.
func (r Products) GetByID(ctx context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(r.Pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

// GetBySlug returns an active product by its slug.
func (r Products) GetBySlug(ctx context.Context, slug string) (Product, error) {
	return scanProduct(r.Pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1 AND active`, slug))
}

// GetMany returns the products for the given IDs. Missing IDs are simply
// absent from the result; the caller decides whether that is an error.
func (r Products) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]Product{}, nil
	}
	rows, err := r.Pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// Create inserts a new product and returns the stored row.
func (r Products) Create(ctx context.Context, p Product) (Product, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return scanProduct(r.Pool.QueryRow(ctx,
		`INSERT INTO products (id, slug, name, description, normal_price, special_price, special_price_min_qty, stock, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+productColumns,
		p.ID, p.Slug, p.Name, p.Description, p.NormalPrice, p.SpecialPrice, p.SpecialPriceMinQty, p.Stock, p.Active))
}

// Deactivate soft-deletes a product by slug. Deactivated products stay
// referenced by past orders but disappear from the catalog and from carts.
func (r Products) Deactivate(ctx context.Context, slug string) error {
	tag, err := r.Pool.Exec(ctx,
		`UPDATE products SET active = false, updated_at = now() WHERE slug = $1 AND active`, slug)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Update rewrites the mutable fields of a product.
func (r Products) Update(ctx context.Context, p Product) (Product, error) {
	return scanProduct(r.Pool.QueryRow(ctx,
		`UPDATE products
		 SET slug = $2, name = $3, description = $4, normal_price = $5, special_price = $6,
		     special_price_min_qty = $7, stock = $8, active = $9, updated_at = now()
		 WHERE id = $1
		 RETURNING `+productColumns,
		p.ID, p.Slug, p.Name, p.Description, p.NormalPrice, p.SpecialPrice, p.SpecialPriceMinQty, p.Stock, p.Active))
}
