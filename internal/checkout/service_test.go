package checkout_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-atacado/internal/cart"
	"github.com/noah-isme/backend-atacado/internal/checkout"
	"github.com/noah-isme/backend-atacado/internal/common"
	"github.com/noah-isme/backend-atacado/internal/events"
	"github.com/noah-isme/backend-atacado/internal/pricing"
	"github.com/noah-isme/backend-atacado/internal/repo"
	"github.com/noah-isme/backend-atacado/internal/shipping"
)

var capinhaID = uuid.New()

type fakeProducts struct{}

func (fakeProducts) GetMany(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]repo.Product, error) {
	out := map[uuid.UUID]repo.Product{}
	for _, id := range ids {
		if id == capinhaID {
			out[id] = repo.Product{
				ID:                 capinhaID,
				Name:               "Capinha transparente",
				NormalPrice:        1000,
				SpecialPrice:       700,
				SpecialPriceMinQty: 50,
			}
		}
	}
	return out, nil
}

type fakeOrders struct {
	created []repo.Order
	items   [][]repo.OrderItem
}

func (f *fakeOrders) Create(_ context.Context, order repo.Order, items []repo.OrderItem) (repo.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now()
	f.created = append(f.created, order)
	f.items = append(f.items, items)
	return order, nil
}

type memoryEventStore struct {
	events []repo.DomainEvent
}

func (m *memoryEventStore) Insert(_ context.Context, topic string, aggregateID uuid.UUID, payload []byte) (repo.DomainEvent, error) {
	ev := repo.DomainEvent{ID: uuid.New(), Topic: topic, AggregateID: aggregateID, Payload: payload, OccurredAt: time.Now()}
	m.events = append(m.events, ev)
	return ev, nil
}

func newCheckout(t *testing.T) (*checkout.Service, *cart.Service, *fakeOrders, *memoryEventStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cartSvc := &cart.Service{
		Store:    &cart.Store{R: client, TTL: time.Hour},
		Products: fakeProducts{},
		Limits:   pricing.DefaultLimits(),
		Brackets: pricing.DefaultBracketTable(),
	}
	orders := &fakeOrders{}
	store := &memoryEventStore{}
	svc := &checkout.Service{
		CartSvc:  cartSvc,
		Orders:   orders,
		Rates:    shipping.DefaultRateTable(),
		Limits:   pricing.DefaultLimits(),
		Brackets: pricing.DefaultBracketTable(),
		Events:   &events.Bus{Store: store},
	}
	return svc, cartSvc, orders, store
}

func TestCheckoutCreatesOrder(t *testing.T) {
	svc, cartSvc, orders, store := newCheckout(t)
	ctx := context.Background()

	view, err := cartSvc.Create(ctx)
	require.NoError(t, err)
	_, err = cartSvc.AddItem(ctx, view.ID, capinhaID, 60)
	require.NoError(t, err)

	out, err := svc.Create(ctx, checkout.Input{CartID: view.ID, Region: "sudeste"})
	require.NoError(t, err)

	require.Equal(t, repo.OrderStatusConfirmed, out.Status)
	require.Equal(t, 60, out.TotalQty)
	// 60*700 minus the 5% bracket.
	require.Equal(t, int64(39900), out.TotalValue)
	require.False(t, out.Shipping.IsFree)
	// 8% of 39900.
	require.Equal(t, int64(3192), out.Shipping.Value)
	require.Equal(t, int64(43092), out.FinalValue)

	require.Len(t, orders.created, 1)
	require.Equal(t, int64(43092), orders.created[0].FinalValue)
	require.Len(t, orders.items[0], 1)
	require.True(t, orders.items[0][0].IsSpecial)

	require.Len(t, store.events, 1)
	require.Equal(t, events.TopicOrderCreated, store.events[0].Topic)

	// The cart session is gone after a successful checkout.
	_, err = cartSvc.Get(ctx, view.ID)
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestCheckoutRejectsInvalidCart(t *testing.T) {
	svc, cartSvc, orders, store := newCheckout(t)
	ctx := context.Background()

	view, err := cartSvc.Create(ctx)
	require.NoError(t, err)
	_, err = cartSvc.AddItem(ctx, view.ID, capinhaID, 10)
	require.NoError(t, err)

	_, err = svc.Create(ctx, checkout.Input{CartID: view.ID, Region: "sul"})
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "ORDER_INVALID", appErr.Code)
	require.Equal(t, 422, appErr.HTTPStatus)

	require.Empty(t, orders.created, "rejected checkout must not persist an order")
	require.Len(t, store.events, 1)
	require.Equal(t, events.TopicOrderRejected, store.events[0].Topic)

	// The cart survives a rejected checkout.
	_, err = cartSvc.Get(ctx, view.ID)
	require.NoError(t, err)
}

func TestCheckoutUnknownCart(t *testing.T) {
	svc, _, _, _ := newCheckout(t)

	_, err := svc.Create(context.Background(), checkout.Input{CartID: uuid.NewString()})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestCheckoutPreviewDoesNotPersist(t *testing.T) {
	svc, cartSvc, orders, _ := newCheckout(t)
	ctx := context.Background()

	view, err := cartSvc.Create(ctx)
	require.NoError(t, err)
	_, err = cartSvc.AddItem(ctx, view.ID, capinhaID, 500)
	require.NoError(t, err)

	summary, err := svc.Preview(ctx, checkout.Input{CartID: view.ID, Region: "norte"})
	require.NoError(t, err)
	require.True(t, summary.Validation.IsValid)
	// 500*700 minus 20% = 280000, above the free shipping threshold.
	require.True(t, summary.Shipping.IsFree)
	require.Equal(t, pricing.Money(280000), summary.FinalValue)

	require.Empty(t, orders.created)
	_, err = cartSvc.Get(ctx, view.ID)
	require.NoError(t, err, "preview must not consume the cart")
}
