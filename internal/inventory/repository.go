package inventory

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

type Repository interface {
	// GetStock returns nil when sku is neither a variant nor a variant-less
	// product.
	GetStock(ctx context.Context, sku string) (*model.StockLevel, error)
	ListLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]model.StockLevel, int, error)

	// AdjustStockWithMovement applies movement.QuantityChange with a guard
	// that keeps stock non-negative and logs the movement in the same
	// transaction. applied is false when the movement was already recorded.
	AdjustStockWithMovement(ctx context.Context, movement *model.StockMovement) (applied bool, err error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
