package model

import (
	"database/sql/driver"
	"time"
)

type ShippingAddress struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

func (a ShippingAddress) Value() (driver.Value, error) { return jsonValue(a) }
func (a *ShippingAddress) Scan(src any) error          { return scanJSON(src, a) }

// LineItem is one SKU in a cart or order with its unit price frozen at the
// time it was added.
type LineItem struct {
	ProductID       string    `json:"product"`
	SKU             string    `json:"sku"`
	Name            string    `json:"name"`
	Image           string    `json:"image"`
	Price           float64   `json:"price"`
	CountInStock    int       `json:"countInStock"`
	Qty             int       `json:"qty"`
	SelectedOptions Selection `json:"selectedOptions"`
}

type LineItems []LineItem

func (l LineItems) Value() (driver.Value, error) { return jsonValue(l) }
func (l *LineItems) Scan(src any) error          { return scanJSON(src, l) }

// PaymentResult is what the payment provider reported on capture.
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"updateTime"`
	EmailAddress string `json:"emailAddress"`
}

func (p PaymentResult) Value() (driver.Value, error) { return jsonValue(p) }
func (p *PaymentResult) Scan(src any) error          { return scanJSON(src, p) }

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusDelivered OrderStatus = "delivered"
)

type Order struct {
	BaseModel
	UserID          string          `db:"user_id" json:"user"`
	OrderItems      LineItems       `db:"order_items" json:"orderItems"`
	ShippingAddress ShippingAddress `db:"shipping_address" json:"shippingAddress"`
	PaymentMethod   string          `db:"payment_method" json:"paymentMethod"`
	PaymentResult   PaymentResult   `db:"payment_result" json:"paymentResult"`
	ItemsPrice      float64         `db:"items_price" json:"itemsPrice"`
	ShippingPrice   float64         `db:"shipping_price" json:"shippingPrice"`
	TaxPrice        float64         `db:"tax_price" json:"taxPrice"`
	TotalPrice      float64         `db:"total_price" json:"totalPrice"`
	IsPaid          bool            `db:"is_paid" json:"isPaid"`
	PaidAt          *time.Time      `db:"paid_at" json:"paidAt,omitempty"`
	IsDelivered     bool            `db:"is_delivered" json:"isDelivered"`
	DeliveredAt     *time.Time      `db:"delivered_at" json:"deliveredAt,omitempty"`
}

func (o *Order) Status() OrderStatus {
	switch {
	case o.IsDelivered:
		return OrderStatusDelivered
	case o.IsPaid:
		return OrderStatusPaid
	default:
		return OrderStatusCreated
	}
}
