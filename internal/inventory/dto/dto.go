package dto

import "github.com/fekuna/omnipos-storefront-service/internal/model"

type LowStockFilters struct {
	Threshold int
	Page      int
	PageSize  int
}

type MovementFilters struct {
	SKU          string
	MovementType model.MovementType
	Page         int
	PageSize     int
}

type AdjustStockInput struct {
	SKU            string             `json:"sku" validate:"required"`
	QuantityChange int                `json:"quantityChange" validate:"ne=0"`
	MovementType   model.MovementType `json:"movementType" validate:"omitempty,oneof=sale adjustment restock"`
	Notes          string             `json:"notes" validate:"max=500"`
	ReferenceType  string             `json:"-"`
	ReferenceID    string             `json:"-"`
	UserID         string             `json:"-"`
}
