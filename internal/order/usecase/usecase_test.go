package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/order"
	"github.com/fekuna/omnipos-storefront-service/internal/order/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/order/events"
	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCarts struct {
	mu       sync.Mutex
	contents cart.Contents
	cleared  int
}

func (s *stubCarts) Checkout(_ context.Context, _ string, place func(*cart.Contents) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.contents
	c.CartItems = append([]model.LineItem(nil), s.contents.CartItems...)
	if err := place(&c); err != nil {
		return err
	}
	s.cleared++
	s.contents.CartItems = nil
	return nil
}

func readyCart() *stubCarts {
	c := cart.New(cart.DefaultRules())
	_ = c.AddItem(model.LineItem{ProductID: "whey", SKU: "WHEY-CHOCO-2LB", Price: 35, Qty: 2})
	c.SetShippingAddress(model.ShippingAddress{Address: "1 Main St", City: "NY", PostalCode: "10001", Country: "US"})
	return &stubCarts{contents: c.Contents()}
}

var (
	buyer = auth.UserContext{UserID: "u1", Role: model.RoleWholesale}
	admin = auth.UserContext{UserID: "a1", Role: model.RoleAdmin}
	other = auth.UserContext{UserID: "u2", Role: model.RoleRetail}

	completed = dto.PaymentCapture{ID: "CAP-1", Status: "COMPLETED", UpdateTime: "2026-10-15T10:00:00Z", Payer: dto.Payer{EmailAddress: "buyer@example.com"}}
)

type fixture struct {
	repo      *memOrders
	carts     *stubCarts
	publisher *recordingPublisher
	uc        order.UseCase
}

func newFixture() *fixture {
	f := &fixture{repo: newMemOrders(), carts: readyCart(), publisher: &recordingPublisher{}}
	f.uc = NewOrderUseCase(f.repo, f.carts, order.NewStatusVerifier(), f.publisher, logger.NewNop())
	return f
}

func (f *fixture) place(t *testing.T) *model.Order {
	t.Helper()
	o, err := f.uc.PlaceOrder(context.Background(), &dto.PlaceOrderInput{UserID: "u1", CartOwner: "user:u1"})
	require.NoError(t, err)
	return o
}

func TestPlaceOrderCopiesCartVerbatim(t *testing.T) {
	f := newFixture()
	want := f.carts.contents

	o := f.place(t)

	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, model.LineItems(want.CartItems), o.OrderItems)
	assert.Equal(t, want.ShippingAddress, o.ShippingAddress)
	assert.Equal(t, "PayPal", o.PaymentMethod)
	assert.Equal(t, 70.0, o.ItemsPrice)
	assert.Equal(t, want.TotalPrice, o.TotalPrice)
	assert.False(t, o.IsPaid)
	assert.False(t, o.IsDelivered)
	assert.Equal(t, 1, f.carts.cleared)
	assert.Equal(t, []string{events.TypeOrderPlaced}, f.publisher.events)
}

func TestPlacedOrderIsFrozen(t *testing.T) {
	f := newFixture()
	o := f.place(t)

	// Whatever happens to the cart or catalog afterwards, the stored order
	// keeps its prices.
	f.carts.contents.CartItems = []model.LineItem{{SKU: "WHEY-CHOCO-2LB", Price: 99, Qty: 2}}
	stored, err := f.uc.GetOrder(context.Background(), buyer, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 35.0, stored.OrderItems[0].Price)
	assert.Equal(t, o.TotalPrice, stored.TotalPrice)
}

func TestPlaceOrderPreconditions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *cart.Contents)
		want   error
	}{
		{"empty cart", func(c *cart.Contents) { c.CartItems = nil }, servererrors.ErrEmptyCart},
		{"no address", func(c *cart.Contents) { c.ShippingAddress = model.ShippingAddress{} }, servererrors.ErrMissingShippingAddress},
		{"no payment method", func(c *cart.Contents) { c.PaymentMethod = "" }, servererrors.ErrMissingPaymentMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.mutate(&f.carts.contents)

			_, err := f.uc.PlaceOrder(context.Background(), &dto.PlaceOrderInput{UserID: "u1", CartOwner: "user:u1"})
			assert.True(t, errors.Is(err, tt.want))
			assert.Equal(t, servererrors.KindValidation, servererrors.KindOf(err))
			assert.Zero(t, f.carts.cleared)
			assert.Empty(t, f.repo.orders)
		})
	}
}

func TestPlaceOrderPersistenceFailureKeepsCart(t *testing.T) {
	f := newFixture()
	f.repo.createErr = errors.New("connection reset")

	_, err := f.uc.PlaceOrder(context.Background(), &dto.PlaceOrderInput{UserID: "u1", CartOwner: "user:u1"})
	assert.Equal(t, servererrors.KindPersistence, servererrors.KindOf(err))
	assert.Zero(t, f.carts.cleared)
	assert.Len(t, f.carts.contents.CartItems, 1)
	assert.Empty(t, f.publisher.events)
}

func TestPayRequiresCompletedCapture(t *testing.T) {
	f := newFixture()
	o := f.place(t)

	failed := completed
	failed.Status = "DECLINED"
	_, err := f.uc.Pay(context.Background(), buyer, &dto.PayInput{OrderID: o.ID, Capture: failed})
	assert.True(t, errors.Is(err, servererrors.ErrPaymentNotCompleted))
	assert.Equal(t, servererrors.KindExternalProvider, servererrors.KindOf(err))

	noID := completed
	noID.ID = ""
	_, err = f.uc.Pay(context.Background(), buyer, &dto.PayInput{OrderID: o.ID, Capture: noID})
	assert.True(t, errors.Is(err, servererrors.ErrMissingTransactionID))

	stored, err := f.uc.GetOrder(context.Background(), buyer, o.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPaid)
	assert.Nil(t, stored.PaidAt)
}

func TestPayIsIdempotent(t *testing.T) {
	f := newFixture()
	o := f.place(t)

	paid, err := f.uc.Pay(context.Background(), buyer, &dto.PayInput{OrderID: o.ID, Capture: completed})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, "buyer@example.com", paid.PaymentResult.EmailAddress)

	again := completed
	again.ID = "CAP-2"
	repeat, err := f.uc.Pay(context.Background(), buyer, &dto.PayInput{OrderID: o.ID, Capture: again})
	require.NoError(t, err)
	assert.Equal(t, "CAP-1", repeat.PaymentResult.ID)
	assert.Equal(t, *paid.PaidAt, *repeat.PaidAt)
	assert.Equal(t, []string{events.TypeOrderPlaced, events.TypeOrderPaid}, f.publisher.events)
}

func TestConcurrentPayMarksOnce(t *testing.T) {
	f := newFixture()
	o := f.place(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := f.uc.Pay(context.Background(), buyer, &dto.PayInput{OrderID: o.ID, Capture: completed})
			assert.NoError(t, err)
			assert.True(t, got.IsPaid)
		}()
	}
	wg.Wait()

	paidEvents := 0
	for _, e := range f.publisher.events {
		if e == events.TypeOrderPaid {
			paidEvents++
		}
	}
	assert.Equal(t, 1, paidEvents)
}

func TestPayAuthorization(t *testing.T) {
	f := newFixture()
	o := f.place(t)

	_, err := f.uc.Pay(context.Background(), other, &dto.PayInput{OrderID: o.ID, Capture: completed})
	assert.True(t, errors.Is(err, servererrors.ErrNotOrderOwner))
	assert.Equal(t, servererrors.KindForbidden, servererrors.KindOf(err))

	_, err = f.uc.Pay(context.Background(), admin, &dto.PayInput{OrderID: o.ID, Capture: completed})
	assert.NoError(t, err)

	_, err = f.uc.Pay(context.Background(), buyer, &dto.PayInput{OrderID: "missing", Capture: completed})
	assert.Equal(t, servererrors.KindNotFound, servererrors.KindOf(err))
}

func TestDeliverRequiresPayment(t *testing.T) {
	f := newFixture()
	o := f.place(t)

	_, err := f.uc.Deliver(context.Background(), o.ID)
	assert.True(t, errors.Is(err, servererrors.ErrOrderNotPaid))

	_, err = f.uc.Pay(context.Background(), buyer, &dto.PayInput{OrderID: o.ID, Capture: completed})
	require.NoError(t, err)

	delivered, err := f.uc.Deliver(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	require.NotNil(t, delivered.DeliveredAt)

	again, err := f.uc.Deliver(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, *delivered.DeliveredAt, *again.DeliveredAt)
	assert.Equal(t, model.OrderStatusDelivered, again.Status())
}

func TestGetOrderAuthorization(t *testing.T) {
	f := newFixture()
	o := f.place(t)

	_, err := f.uc.GetOrder(context.Background(), other, o.ID)
	assert.Equal(t, servererrors.KindForbidden, servererrors.KindOf(err))

	got, err := f.uc.GetOrder(context.Background(), admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestListing(t *testing.T) {
	f := newFixture()
	f.place(t)

	mine, err := f.uc.ListMine(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	none, err := f.uc.ListMine(context.Background(), "u2")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	page, err := f.uc.ListAll(context.Background(), &dto.OrderFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.Pages)
	assert.Equal(t, 1, page.Page)
}

func TestNowIsInjectable(t *testing.T) {
	f := newFixture()
	fixed := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	f.uc.(*orderUseCase).now = func() time.Time { return fixed }

	o := f.place(t)
	assert.Equal(t, fixed, o.CreatedAt)

	paid, err := f.uc.Pay(context.Background(), buyer, &dto.PayInput{OrderID: o.ID, Capture: completed})
	require.NoError(t, err)
	assert.Equal(t, fixed, *paid.PaidAt)
}
