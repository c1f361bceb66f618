package dto

import "github.com/fekuna/omnipos-storefront-service/internal/model"

type PlaceOrderInput struct {
	UserID    string
	CartOwner string
}

// PaymentCapture is the confirmation the payment provider's client SDK hands
// back after a capture.
type PaymentCapture struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	Payer      Payer  `json:"payer"`
}

type Payer struct {
	EmailAddress string `json:"email_address"`
}

type PayInput struct {
	OrderID string
	Capture PaymentCapture
}

type OrderFilters struct {
	UserID   string
	Page     int
	PageSize int
}

type OrderPage struct {
	Orders []model.Order `json:"orders"`
	Page   int           `json:"page"`
	Pages  int           `json:"pages"`
	Total  int           `json:"total"`
}
