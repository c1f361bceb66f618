package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cucumber/godog"
	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	cartdto "github.com/fekuna/omnipos-storefront-service/internal/cart/dto"
	cartrepo "github.com/fekuna/omnipos-storefront-service/internal/cart/repository"
	cartusecase "github.com/fekuna/omnipos-storefront-service/internal/cart/usecase"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/order"
	"github.com/fekuna/omnipos-storefront-service/internal/order/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type catalogStub map[string]*model.Product

func (c catalogStub) GetProduct(_ context.Context, id string) (*model.Product, error) {
	if p, ok := c[id]; ok {
		return p, nil
	}
	return nil, servererrors.NotFound(servererrors.ErrProductNotFound)
}

type checkoutContext struct {
	mr      *miniredis.Miniredis
	catalog catalogStub
	carts   cart.UseCase
	orders  order.UseCase
	buyer   auth.UserContext
	order   *model.Order
	err     error
}

func (c *checkoutContext) reset() error {
	mr, err := miniredis.Run()
	if err != nil {
		return err
	}
	c.mr = mr
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	log := logger.NewNop()

	c.catalog = catalogStub{}
	c.carts = cartusecase.NewCartUseCase(cartrepo.NewRedisRepository(rc, time.Hour), cart.NewMemoryUIStore(), c.catalog, rc, cart.DefaultRules(), log)
	c.orders = NewOrderUseCase(newMemOrders(), c.carts, order.NewStatusVerifier(), &recordingPublisher{}, log)
	c.buyer = auth.UserContext{}
	c.order = nil
	c.err = nil
	return nil
}

func (c *checkoutContext) owner() string {
	return "user:" + c.buyer.UserID
}

func parseSelection(s string) model.Selection {
	m := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		if k, v, ok := strings.Cut(pair, "="); ok {
			m[k] = v
		}
	}
	return model.NewSelection(m)
}

func (c *checkoutContext) theCatalogHasProduct(productID, sku, attrs string, retail, wholesale float64) error {
	sel := parseSelection(attrs)
	options := make(model.Options, 0, len(sel))
	for _, p := range sel {
		options = append(options, model.Option{Name: p.Name, Values: []string{p.Value}})
	}
	c.catalog[productID] = &model.Product{
		BaseModel:          model.BaseModel{ID: productID},
		Name:               productID,
		BasePriceRetail:    retail,
		BasePriceWholesale: wholesale,
		Options:            options,
		Variants: []model.Variant{{
			SKU:            sku,
			Attributes:     sel,
			PriceRetail:    retail,
			PriceWholesale: wholesale,
			CountInStock:   10,
		}},
	}
	return nil
}

func (c *checkoutContext) iAmTheBuyer(role, userID string) error {
	c.buyer = auth.UserContext{UserID: userID, Role: model.Role(role)}
	return nil
}

func (c *checkoutContext) iAddToMyCart(qty int, productID, attrs string) error {
	_, err := c.carts.AddItem(context.Background(), &cartdto.AddItemInput{
		Owner:           c.owner(),
		BuyerClass:      model.BuyerClassFor(c.buyer.Role),
		ProductID:       productID,
		SelectedOptions: parseSelection(attrs),
		Qty:             qty,
	})
	return err
}

func (c *checkoutContext) theCartItemsPriceIs(want float64) error {
	view, err := c.carts.GetCart(context.Background(), c.owner())
	if err != nil {
		return err
	}
	if view.ItemsPrice != want {
		return fmt.Errorf("expected items price %.2f, got %.2f", want, view.ItemsPrice)
	}
	return nil
}

func (c *checkoutContext) iShipTo(address, city, postalCode, country string) error {
	_, err := c.carts.SetShippingAddress(context.Background(), c.owner(), model.ShippingAddress{
		Address: address, City: city, PostalCode: postalCode, Country: country,
	})
	return err
}

func (c *checkoutContext) iChooseThePaymentMethod(method string) error {
	_, err := c.carts.SetPaymentMethod(context.Background(), c.owner(), method)
	return err
}

func (c *checkoutContext) iPlaceTheOrder() error {
	c.order, c.err = c.orders.PlaceOrder(context.Background(), &dto.PlaceOrderInput{UserID: c.buyer.UserID, CartOwner: c.owner()})
	return nil
}

func (c *checkoutContext) theOrderHasLineItems(n int) error {
	if c.order == nil {
		return fmt.Errorf("no order was placed: %v", c.err)
	}
	if len(c.order.OrderItems) != n {
		return fmt.Errorf("expected %d line items, got %d", n, len(c.order.OrderItems))
	}
	return nil
}

func (c *checkoutContext) theOrderTotalIsAtLeast(min float64) error {
	if c.order.TotalPrice < min {
		return fmt.Errorf("expected total >= %.2f, got %.2f", min, c.order.TotalPrice)
	}
	return nil
}

func (c *checkoutContext) reload() (*model.Order, error) {
	if c.order == nil {
		return nil, fmt.Errorf("no order was placed: %v", c.err)
	}
	return c.orders.GetOrder(context.Background(), c.buyer, c.order.ID)
}

func (c *checkoutContext) theOrderIsNotPaid() error {
	o, err := c.reload()
	if err != nil {
		return err
	}
	if o.IsPaid || o.PaidAt != nil {
		return fmt.Errorf("expected unpaid order, got paid at %v", o.PaidAt)
	}
	return nil
}

func (c *checkoutContext) theOrderIsPaid() error {
	o, err := c.reload()
	if err != nil {
		return err
	}
	if !o.IsPaid || o.PaidAt == nil {
		return fmt.Errorf("expected a paid order")
	}
	return nil
}

func (c *checkoutContext) theOrderIsDelivered() error {
	o, err := c.reload()
	if err != nil {
		return err
	}
	if !o.IsDelivered || o.DeliveredAt == nil {
		return fmt.Errorf("expected a delivered order")
	}
	return nil
}

func (c *checkoutContext) theOrderIsNotDelivered() error {
	o, err := c.reload()
	if err != nil {
		return err
	}
	if o.IsDelivered {
		return fmt.Errorf("expected an undelivered order")
	}
	return nil
}

func (c *checkoutContext) myCartHasLineItems(n int) error {
	view, err := c.carts.GetCart(context.Background(), c.owner())
	if err != nil {
		return err
	}
	if len(view.CartItems) != n {
		return fmt.Errorf("expected %d cart items, got %d", n, len(view.CartItems))
	}
	return nil
}

func (c *checkoutContext) myCartIsEmpty() error {
	return c.myCartHasLineItems(0)
}

func (c *checkoutContext) theProviderConfirmsCapture(id, status string) error {
	if c.order == nil {
		return fmt.Errorf("no order was placed: %v", c.err)
	}
	_, c.err = c.orders.Pay(context.Background(), c.buyer, &dto.PayInput{
		OrderID: c.order.ID,
		Capture: dto.PaymentCapture{ID: id, Status: status, Payer: dto.Payer{EmailAddress: "buyer@example.com"}},
	})
	return nil
}

func (c *checkoutContext) anAdminDeliversTheOrder() error {
	if c.order == nil {
		return fmt.Errorf("no order was placed: %v", c.err)
	}
	_, c.err = c.orders.Deliver(context.Background(), c.order.ID)
	return nil
}

func (c *checkoutContext) theRequestFailsWith(kind string) error {
	if c.err == nil {
		return fmt.Errorf("expected a %s error, got none", kind)
	}
	if got := servererrors.KindOf(c.err).String(); got != kind {
		return fmt.Errorf("expected a %s error, got %s (%v)", kind, got, c.err)
	}
	return nil
}

func InitializeCheckoutScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, tc.reset()
	})
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc.mr.Close()
		return ctx, nil
	})

	// Given
	ctx.Step(`^the catalog has product "([^"]*)" with variant "([^"]*)" for "([^"]*)" priced (\d+\.\d+) retail and (\d+\.\d+) wholesale$`, tc.theCatalogHasProduct)
	ctx.Step(`^I am the "([^"]*)" buyer "([^"]*)"$`, tc.iAmTheBuyer)

	// When
	ctx.Step(`^I add (\d+) of "([^"]*)" with "([^"]*)" to my cart$`, tc.iAddToMyCart)
	ctx.Step(`^I ship to "([^"]*)", "([^"]*)", "([^"]*)", "([^"]*)"$`, tc.iShipTo)
	ctx.Step(`^I choose the payment method "([^"]*)"$`, tc.iChooseThePaymentMethod)
	ctx.Step(`^I place the order$`, tc.iPlaceTheOrder)
	ctx.Step(`^the payment provider confirms capture "([^"]*)" with status "([^"]*)"$`, tc.theProviderConfirmsCapture)
	ctx.Step(`^an admin delivers the order$`, tc.anAdminDeliversTheOrder)

	// Then
	ctx.Step(`^the cart items price is (\d+\.\d+)$`, tc.theCartItemsPriceIs)
	ctx.Step(`^the order has (\d+) line items?$`, tc.theOrderHasLineItems)
	ctx.Step(`^the order total is at least (\d+\.\d+)$`, tc.theOrderTotalIsAtLeast)
	ctx.Step(`^the order is not paid$`, tc.theOrderIsNotPaid)
	ctx.Step(`^the order is paid$`, tc.theOrderIsPaid)
	ctx.Step(`^the order is delivered$`, tc.theOrderIsDelivered)
	ctx.Step(`^the order is not delivered$`, tc.theOrderIsNotDelivered)
	ctx.Step(`^my cart is empty$`, tc.myCartIsEmpty)
	ctx.Step(`^my cart has (\d+) line items?$`, tc.myCartHasLineItems)
	ctx.Step(`^the request fails with "([^"]*)"$`, tc.theRequestFailsWith)
}

func TestCheckoutFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeCheckoutScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
