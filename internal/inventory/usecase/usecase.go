package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/inventory"
	"github.com/fekuna/omnipos-storefront-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	repo   inventory.Repository
	cache  *cache.RedisClient
	logger logger.ZapLogger
}

// NewInventoryUseCase builds the stock service. cache may be nil, in which
// case adjustments rely on the conditional update alone.
func NewInventoryUseCase(repo inventory.Repository, cache *cache.RedisClient, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

func (uc *inventoryUseCase) GetStock(ctx context.Context, sku string) (*model.StockLevel, error) {
	level, err := uc.repo.GetStock(ctx, sku)
	if err != nil {
		return nil, servererrors.Persistence(err)
	}
	if level == nil {
		return nil, servererrors.NotFound(servererrors.ErrStockNotFound)
	}
	return level, nil
}

func (uc *inventoryUseCase) ListLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]model.StockLevel, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 50
	}
	items, total, err := uc.repo.ListLowStock(ctx, filters)
	if err != nil {
		return nil, 0, servererrors.Persistence(err)
	}
	if items == nil {
		items = []model.StockLevel{}
	}
	return items, total, nil
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.StockLevel, error) {
	// 0. Per-SKU lock so manual adjustments and order events queue up.
	lockKey := "lock:inventory:" + input.SKU
	lockValue := uuid.New().String()
	if uc.cache != nil {
		acquired := false
		for i := 0; i < 3; i++ {
			ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
			if err != nil {
				uc.logger.Error("failed to acquire inventory lock", zap.String("sku", input.SKU), zap.Error(err))
			}
			if ok {
				acquired = true
				break
			}
			time.Sleep(100 * time.Millisecond)
		}
		if !acquired {
			return nil, servererrors.Conflict(servererrors.ErrSystemBusy)
		}
		defer uc.cache.ReleaseLock(context.Background(), lockKey, lockValue)
	}

	// 1. The SKU must exist.
	if _, err := uc.GetStock(ctx, input.SKU); err != nil {
		return nil, err
	}

	movementType := input.MovementType
	if movementType == "" {
		movementType = model.MovementAdjustment
	}
	referenceType, referenceID := input.ReferenceType, input.ReferenceID
	if referenceID == "" {
		referenceType, referenceID = "manual", uuid.New().String()
	}

	movement := &model.StockMovement{
		ID:             uuid.New().String(),
		SKU:            input.SKU,
		MovementType:   movementType,
		QuantityChange: input.QuantityChange,
		ReferenceType:  referenceType,
		ReferenceID:    referenceID,
		Notes:          input.Notes,
		CreatedBy:      input.UserID,
		CreatedAt:      time.Now(),
	}

	// 2. Apply and log.
	applied, err := uc.repo.AdjustStockWithMovement(ctx, movement)
	if err != nil {
		if errors.Is(err, servererrors.ErrInsufficientStock) {
			return nil, servererrors.Conflict(servererrors.ErrInsufficientStock)
		}
		return nil, servererrors.Persistence(err)
	}

	if applied {
		uc.logger.Info("stock adjusted",
			zap.String("sku", input.SKU),
			zap.Int("change", movement.QuantityChange),
			zap.Int("after", movement.QuantityAfter),
			zap.String("reference", referenceType+":"+referenceID),
		)
	} else {
		uc.logger.Info("stock movement already applied",
			zap.String("sku", input.SKU),
			zap.String("reference", referenceType+":"+referenceID),
		)
	}

	return uc.GetStock(ctx, input.SKU)
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 50
	}
	items, total, err := uc.repo.ListMovements(ctx, filters)
	if err != nil {
		return nil, 0, servererrors.Persistence(err)
	}
	if items == nil {
		items = []model.StockMovement{}
	}
	return items, total, nil
}
