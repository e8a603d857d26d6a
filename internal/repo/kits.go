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

// Kit is a promotional bundle row. Discount is an absolute amount in centavos.
type Kit struct {
	ID        uuid.UUID
	Slug      string
	Name      string
	Discount  int64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KitComponent links a kit to a product with a fixed quantity.
type KitComponent struct {
	KitID     uuid.UUID
	ProductID uuid.UUID
	Qty       int
}

// Kits reads and writes the kits and kit_components tables.
type Kits struct {
	Pool *pgxpool.Pool
}

const kitColumns = `id, slug, name, discount, active, created_at, updated_at`

func scanKit(row pgx.Row) (Kit, error) {
	var k Kit
	err := row.Scan(&k.ID, &k.Slug, &k.Name, &k.Discount, &k.Active, &k.CreatedAt, &k.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Kit{}, ErrNotFound
	}
	if err != nil {
		return Kit{}, fmt.Errorf("scan kit: %w", err)
	}
	return k, nil
}

// List returns active kits ordered by name.
func (r Kits) List(ctx context.Context) ([]Kit, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+kitColumns+` FROM kits WHERE active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list kits: %w", err)
	}
	defer rows.Close()

	var out []Kit
	for rows.Next() {
		k, err := scanKit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// GetByID returns a kit by ID.
func (r Kits) GetByID(ctx context.Context, id uuid.UUID) (Kit, error) {
	return scanKit(r.Pool.QueryRow(ctx,
		`SELECT `+kitColumns+` FROM kits WHERE id = $1`, id))
}

// GetBySlug returns an active kit by slug.
func (r Kits) GetBySlug(ctx context.Context, slug string) (Kit, error) {
	return scanKit(r.Pool.QueryRow(ctx,
		`SELECT `+kitColumns+` FROM kits WHERE slug = $1 AND active`, slug))
}

// Components returns the component list of a kit.
func (r Kits) Components(ctx context.Context, kitID uuid.UUID) ([]KitComponent, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT kit_id, product_id, qty FROM kit_components WHERE kit_id = $1 ORDER BY product_id`, kitID)
	if err != nil {
		return nil, fmt.Errorf("kit components: %w", err)
	}
	defer rows.Close()

	var out []KitComponent
	for rows.Next() {
		var c KitComponent
		if err := rows.Scan(&c.KitID, &c.ProductID, &c.Qty); err != nil {
			return nil, fmt.Errorf("scan kit component: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create inserts a kit together with its components in one transaction.
func (r Kits) Create(ctx context.Context, kit Kit, components []KitComponent) (Kit, error) {
	if kit.ID == uuid.Nil {
		kit.ID = uuid.New()
	}
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return Kit{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := scanKit(tx.QueryRow(ctx,
		`INSERT INTO kits (id, slug, name, discount, active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+kitColumns,
		kit.ID, kit.Slug, kit.Name, kit.Discount, kit.Active))
	if err != nil {
		return Kit{}, err
	}
	for _, c := range components {
		if _, err := tx.Exec(ctx,
			`INSERT INTO kit_components (kit_id, product_id, qty) VALUES ($1, $2, $3)`,
			created.ID, c.ProductID, c.Qty); err != nil {
			return Kit{}, fmt.Errorf("insert kit component: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Kit{}, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}
