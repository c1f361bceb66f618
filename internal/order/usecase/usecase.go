package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/order"
	"github.com/fekuna/omnipos-storefront-service/internal/order/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/order/events"
	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartStore is the part of the cart the checkout needs.
type CartStore interface {
	Checkout(ctx context.Context, owner string, place func(contents *cart.Contents) error) error
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, o *model.Order)
}

type orderUseCase struct {
	repo      order.Repository
	carts     CartStore
	verifier  order.PaymentVerifier
	publisher EventPublisher
	logger    logger.ZapLogger
	now       func() time.Time
}

func NewOrderUseCase(repo order.Repository, carts CartStore, verifier order.PaymentVerifier, publisher EventPublisher, log logger.ZapLogger) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		carts:     carts,
		verifier:  verifier,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

// PlaceOrder reads, records and clears the cart under the cart lock, so two
// concurrent checkouts of one cart cannot both create an order.
func (uc *orderUseCase) PlaceOrder(ctx context.Context, input *dto.PlaceOrderInput) (*model.Order, error) {
	var o *model.Order
	err := uc.carts.Checkout(ctx, input.CartOwner, func(contents *cart.Contents) error {
		if err := checkCheckout(contents); err != nil {
			return err
		}

		now := uc.now()
		items := make(model.LineItems, len(contents.CartItems))
		copy(items, contents.CartItems)

		placed := &model.Order{
			BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			UserID:          input.UserID,
			OrderItems:      items,
			ShippingAddress: contents.ShippingAddress,
			PaymentMethod:   contents.PaymentMethod,
			ItemsPrice:      contents.ItemsPrice,
			ShippingPrice:   contents.ShippingPrice,
			TaxPrice:        contents.TaxPrice,
			TotalPrice:      contents.TotalPrice,
		}
		if err := uc.repo.Create(ctx, placed); err != nil {
			return servererrors.Persistence(err)
		}
		o = placed
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("user_id", o.UserID),
		zap.Int("items", len(o.OrderItems)),
		zap.Float64("total_price", o.TotalPrice),
	)
	uc.publisher.Publish(ctx, events.TypeOrderPlaced, o)
	return o, nil
}

func checkCheckout(c *cart.Contents) error {
	if len(c.CartItems) == 0 {
		return servererrors.Validation(servererrors.ErrEmptyCart, nil)
	}
	if strings.TrimSpace(c.ShippingAddress.Address) == "" {
		return servererrors.Validation(servererrors.ErrMissingShippingAddress, map[string]string{"shippingAddress": "is required"})
	}
	if strings.TrimSpace(c.PaymentMethod) == "" {
		return servererrors.Validation(servererrors.ErrMissingPaymentMethod, map[string]string{"paymentMethod": "is required"})
	}
	return nil
}

func (uc *orderUseCase) find(ctx context.Context, id string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, servererrors.Persistence(err)
	}
	if o == nil {
		return nil, servererrors.NotFound(servererrors.ErrOrderNotFound)
	}
	return o, nil
}

func authorize(actor auth.UserContext, o *model.Order) error {
	if actor.IsAdmin() || (actor.UserID != "" && actor.UserID == o.UserID) {
		return nil
	}
	return servererrors.Forbidden(servererrors.ErrNotOrderOwner)
}

func (uc *orderUseCase) GetOrder(ctx context.Context, actor auth.UserContext, id string) (*model.Order, error) {
	o, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *orderUseCase) ListMine(ctx context.Context, userID string) ([]model.Order, error) {
	orders, _, err := uc.repo.FindAll(ctx, &dto.OrderFilters{UserID: userID})
	if err != nil {
		return nil, servererrors.Persistence(err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (uc *orderUseCase) ListAll(ctx context.Context, filters *dto.OrderFilters) (*dto.OrderPage, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}

	orders, total, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, servererrors.Persistence(err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return &dto.OrderPage{
		Orders: orders,
		Page:   filters.Page,
		Pages:  (total + filters.PageSize - 1) / filters.PageSize,
		Total:  total,
	}, nil
}

func (uc *orderUseCase) Pay(ctx context.Context, actor auth.UserContext, input *dto.PayInput) (*model.Order, error) {
	o, err := uc.find(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, o); err != nil {
		return nil, err
	}

	result, err := uc.verifier.Verify(ctx, o, input.Capture)
	if err != nil {
		uc.logger.Warn("payment capture rejected",
			zap.String("order_id", o.ID),
			zap.String("capture_status", input.Capture.Status),
			zap.Error(err),
		)
		return nil, err
	}

	if o.IsPaid {
		return o, nil
	}

	paid, err := uc.repo.MarkPaid(ctx, o.ID, result, uc.now())
	if err != nil {
		return nil, servererrors.Persistence(err)
	}
	if paid == nil {
		// Lost a race with a concurrent capture; report the winner's state.
		return uc.find(ctx, o.ID)
	}

	uc.logger.Info("order paid", zap.String("order_id", paid.ID), zap.String("transaction_id", result.ID))
	uc.publisher.Publish(ctx, events.TypeOrderPaid, paid)
	return paid, nil
}

func (uc *orderUseCase) Deliver(ctx context.Context, id string) (*model.Order, error) {
	o, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.IsPaid {
		return nil, servererrors.Validation(servererrors.ErrOrderNotPaid, nil)
	}
	if o.IsDelivered {
		return o, nil
	}

	delivered, err := uc.repo.MarkDelivered(ctx, id, uc.now())
	if err != nil {
		return nil, servererrors.Persistence(err)
	}
	if delivered == nil {
		return uc.find(ctx, id)
	}

	uc.logger.Info("order delivered", zap.String("order_id", delivered.ID))
	uc.publisher.Publish(ctx, events.TypeOrderDelivered, delivered)
	return delivered, nil
}
