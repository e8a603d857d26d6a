package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-atacado/internal/cart"
)

func newTestStore(t *testing.T) (*cart.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &cart.Store{R: client, TTL: time.Hour}, mr
}

func TestStoreCreateAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	doc, err := store.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, doc.ID)
	require.Empty(t, doc.Lines)
	require.Empty(t, doc.Kits)

	loaded, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, doc.ID, loaded.ID)
}

func TestStoreSaveRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	doc, err := store.Create(ctx)
	require.NoError(t, err)

	productID := uuid.New()
	doc.Lines = append(doc.Lines, cart.StoredLine{ProductID: productID, Qty: 30})
	doc.Region = "sudeste"
	require.NoError(t, store.Save(ctx, doc))

	loaded, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
	require.Equal(t, productID, loaded.Lines[0].ProductID)
	require.Equal(t, 30, loaded.Lines[0].Qty)
	require.Equal(t, "sudeste", loaded.Region)
}

func TestStoreExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	doc, err := store.Create(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = store.Get(ctx, doc.ID)
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestStoreDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	doc, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, doc.ID))

	_, err = store.Get(ctx, doc.ID)
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestStoreGetUnknown(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Get(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, cart.ErrNotFound)
}
