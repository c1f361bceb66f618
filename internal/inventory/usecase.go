package inventory

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

type UseCase interface {
	GetStock(ctx context.Context, sku string) (*model.StockLevel, error)
	ListLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]model.StockLevel, int, error)
	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.StockLevel, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
