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
	"github.com/noah-isme/backend-atacado/internal/kit"
	"github.com/noah-isme/backend-atacado/internal/pricing"
	"github.com/noah-isme/backend-atacado/internal/repo"
)

type fakeProducts struct {
	products map[uuid.UUID]repo.Product
}

func (f *fakeProducts) GetMany(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]repo.Product, error) {
	out := make(map[uuid.UUID]repo.Product, len(ids))
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeKits struct {
	views map[uuid.UUID]kit.View
}

func (f *fakeKits) GetByID(_ context.Context, id uuid.UUID) (kit.View, error) {
	if v, ok := f.views[id]; ok {
		return v, nil
	}
	return kit.View{}, repo.ErrNotFound
}

var (
	capinhaID  = uuid.New()
	peliculaID = uuid.New()
	kitID      = uuid.New()
)

func newTestService(t *testing.T) *cart.Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	products := &fakeProducts{products: map[uuid.UUID]repo.Product{
		capinhaID:  {ID: capinhaID, Name: "Capinha transparente", NormalPrice: 1000, SpecialPrice: 700, SpecialPriceMinQty: 50},
		peliculaID: {ID: peliculaID, Name: "Película 3D", NormalPrice: 500, SpecialPrice: 350, SpecialPriceMinQty: 100},
	}}
	kits := &fakeKits{views: map[uuid.UUID]kit.View{
		kitID: {
			ID:             kitID.String(),
			Name:           "Kit Revenda Inicial",
			TotalQty:       20,
			SellPrice:      12000,
			DiscountAmount: 3000,
		},
	}}
	return &cart.Service{
		Store:    &cart.Store{R: client, TTL: time.Hour},
		Products: products,
		Kits:     kits,
		Limits:   pricing.DefaultLimits(),
		Brackets: pricing.DefaultBracketTable(),
	}
}

func TestServiceAddItemAndValidate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	require.False(t, view.IsValid, "empty cart fails the minimums")

	view, err = svc.AddItem(ctx, view.ID, capinhaID, 29)
	require.NoError(t, err)
	require.Equal(t, 29, view.TotalQty)
	require.False(t, view.IsValid)
	require.Contains(t, view.Errors, "adicione mais 1 peça para atingir o pedido mínimo de 30 peças")

	// Adding to the same product merges lines instead of duplicating.
	view, err = svc.AddItem(ctx, view.ID, capinhaID, 31)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.Equal(t, 60, view.TotalQty)
	require.True(t, view.IsValid)
	require.True(t, view.Items[0].IsSpecial)
	require.Equal(t, int64(700), view.Items[0].UnitPrice)
	require.Equal(t, 500, view.BracketDiscountBps)
}

func TestServiceUpdateAndRemove(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	cartID := view.ID

	_, err = svc.AddItem(ctx, cartID, capinhaID, 10)
	require.NoError(t, err)

	view, err = svc.UpdateQty(ctx, cartID, capinhaID, 55)
	require.NoError(t, err)
	require.Equal(t, 55, view.TotalQty)

	_, err = svc.UpdateQty(ctx, cartID, capinhaID, 0)
	require.ErrorIs(t, err, cart.ErrInvalidInput)

	_, err = svc.UpdateQty(ctx, cartID, peliculaID, 5)
	require.ErrorIs(t, err, cart.ErrNotFound)

	view, err = svc.RemoveItem(ctx, cartID, capinhaID)
	require.NoError(t, err)
	require.Empty(t, view.Items)
}

func TestServiceAddKitFreezesPrice(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx)
	require.NoError(t, err)

	view, err = svc.AddKit(ctx, view.ID, kitID, 2)
	require.NoError(t, err)
	require.Len(t, view.Kits, 1)
	require.Equal(t, 2, view.Kits[0].Sets)
	require.Equal(t, int64(12000), view.Kits[0].SellPrice)
	require.Equal(t, int64(24000), view.Kits[0].LineTotal)
	require.Equal(t, 40, view.TotalQty)
	// 2 sets * 3000 kit discount counts toward savings.
	require.Equal(t, int64(6000), view.TotalSavings)

	// Adding the same kit again only bumps the set count.
	view, err = svc.AddKit(ctx, view.ID, kitID, 1)
	require.NoError(t, err)
	require.Len(t, view.Kits, 1)
	require.Equal(t, 3, view.Kits[0].Sets)
}

func TestServiceSetRegion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx)
	require.NoError(t, err)

	view, err = svc.SetRegion(ctx, view.ID, "nordeste")
	require.NoError(t, err)
	require.Equal(t, "nordeste", view.Region)
}

func TestServiceSnapshotMatchesView(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, view.ID, capinhaID, 60)
	require.NoError(t, err)

	engineCart, doc, err := svc.Snapshot(ctx, view.ID)
	require.NoError(t, err)
	require.Equal(t, view.ID, doc.ID)
	require.Len(t, engineCart.Lines, 1)
	require.Equal(t, 60, engineCart.Lines[0].Qty)

	res := pricing.Validate(engineCart, svc.Limits, svc.Brackets)
	require.True(t, res.IsValid)
	require.Equal(t, pricing.Money(39900), res.TotalValue)
}
