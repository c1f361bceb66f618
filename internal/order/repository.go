package order

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/order/dto"
)

type Repository interface {
	Create(ctx context.Context, order *model.Order) error

	// FindByID returns nil when the order does not exist.
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)

	// MarkPaid and MarkDelivered are compare-and-set updates. They return nil
	// without error when the row was not in the expected prior state.
	MarkPaid(ctx context.Context, id string, result model.PaymentResult, at time.Time) (*model.Order, error)
	MarkDelivered(ctx context.Context, id string, at time.Time) (*model.Order, error)
}
