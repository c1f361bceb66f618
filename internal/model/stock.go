package model

import "time"

type MovementType string

const (
	MovementSale       MovementType = "sale"
	MovementAdjustment MovementType = "adjustment"
	MovementRestock    MovementType = "restock"
)

// StockMovement is the audit row for one change to a SKU's count_in_stock.
// (reference_type, reference_id, sku) is unique, so replaying the same order
// event does not decrement twice.
type StockMovement struct {
	ID             string       `db:"id" json:"id"`
	SKU            string       `db:"sku" json:"sku"`
	MovementType   MovementType `db:"movement_type" json:"movementType"`
	QuantityChange int          `db:"quantity_change" json:"quantityChange"`
	QuantityBefore int          `db:"quantity_before" json:"quantityBefore"`
	QuantityAfter  int          `db:"quantity_after" json:"quantityAfter"`
	ReferenceType  string       `db:"reference_type" json:"referenceType"`
	ReferenceID    string       `db:"reference_id" json:"referenceId"`
	Notes          string       `db:"notes" json:"notes"`
	CreatedBy      string       `db:"created_by" json:"createdBy"`
	CreatedAt      time.Time    `db:"created_at" json:"createdAt"`
}

// StockLevel is the stock of one purchasable SKU. Products without variants
// are listed under their product id.
type StockLevel struct {
	ProductID    string `db:"product_id" json:"productId"`
	ProductName  string `db:"product_name" json:"productName"`
	SKU          string `db:"sku" json:"sku"`
	CountInStock int    `db:"count_in_stock" json:"countInStock"`
}
