package order

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/order/dto"
)

type UseCase interface {
	// PlaceOrder freezes the stored cart into an order and clears the cart
	// once the order is persisted.
	PlaceOrder(ctx context.Context, input *dto.PlaceOrderInput) (*model.Order, error)

	GetOrder(ctx context.Context, actor auth.UserContext, id string) (*model.Order, error)
	ListMine(ctx context.Context, userID string) ([]model.Order, error)
	ListAll(ctx context.Context, filters *dto.OrderFilters) (*dto.OrderPage, error)

	// Pay and Deliver are idempotent. Repeating either on an order already in
	// the target state returns it unchanged.
	Pay(ctx context.Context, actor auth.UserContext, input *dto.PayInput) (*model.Order, error)
	Deliver(ctx context.Context, id string) (*model.Order, error)
}
