package dto

import "github.com/fekuna/omnipos-storefront-service/internal/model"

type AddItemInput struct {
	Owner           string
	BuyerClass      model.BuyerClass
	ProductID       string
	SelectedOptions model.Selection
	Qty             int
}
