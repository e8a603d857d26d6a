package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart not found")

// StoredLine is a product reference held in a cart document. Only the
// product ID and quantity are stored; prices are resolved from the catalog
// on every read so a stale cart can never lock in an old price.
type StoredLine struct {
	ProductID uuid.UUID `json:"productId"`
	Qty       int       `json:"qty"`
}

// StoredKit is a kit held in a cart document. Unlike product lines, the kit
// price is frozen at the moment it was added.
type StoredKit struct {
	KitID          uuid.UUID `json:"kitId"`
	Name           string    `json:"name"`
	Sets           int       `json:"sets"`
	UnitsPerSet    int       `json:"unitsPerSet"`
	SellPrice      int64     `json:"sellPrice"`
	DiscountAmount int64     `json:"discountAmount"`
}

// Doc is the persisted cart document.
type Doc struct {
	ID        string       `json:"id"`
	Region    string       `json:"region,omitempty"`
	Lines     []StoredLine `json:"lines"`
	Kits      []StoredKit  `json:"kits"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Store keeps cart documents in Redis with a sliding TTL.
type Store struct {
	R   *redis.Client
	TTL time.Duration
	Now func() time.Time
}

func (s *Store) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func (s *Store) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cartKey(id string) string {
	return "cart:" + id
}

// Create persists a fresh empty cart and returns it.
func (s *Store) Create(ctx context.Context) (Doc, error) {
	if s == nil || s.R == nil {
		return Doc{}, errors.New("cart store not configured")
	}
	now := s.now()
	doc := Doc{
		ID:        uuid.NewString(),
		Lines:     []StoredLine{},
		Kits:      []StoredKit{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.write(ctx, doc); err != nil {
		return Doc{}, err
	}
	return doc, nil
}

// Get loads a cart document. Expired or unknown carts return ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Doc, error) {
	if s == nil || s.R == nil {
		return Doc{}, errors.New("cart store not configured")
	}
	data, err := s.R.Get(ctx, cartKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Doc{}, ErrNotFound
		}
		return Doc{}, fmt.Errorf("load cart: %w", err)
	}
	var doc Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Doc{}, fmt.Errorf("decode cart: %w", err)
	}
	return doc, nil
}

// Save rewrites the document and slides its TTL forward.
func (s *Store) Save(ctx context.Context, doc Doc) error {
	if s == nil || s.R == nil {
		return errors.New("cart store not configured")
	}
	doc.UpdatedAt = s.now()
	return s.write(ctx, doc)
}

// Delete removes a cart, typically after a successful checkout.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s == nil || s.R == nil {
		return errors.New("cart store not configured")
	}
	return s.R.Del(ctx, cartKey(id)).Err()
}

func (s *Store) write(ctx context.Context, doc Doc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.R.Set(ctx, cartKey(doc.ID), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("store cart: %w", err)
	}
	return nil
}
