package dto

import "github.com/fekuna/omnipos-storefront-service/internal/model"

type VariantInput struct {
	SKU            string          `json:"sku" validate:"required"`
	Attributes     model.Selection `json:"attributes"`
	PriceRetail    float64         `json:"priceRetail" validate:"gte=0"`
	PriceWholesale float64         `json:"priceWholesale" validate:"gte=0"`
	CountInStock   int             `json:"countInStock" validate:"gte=0"`
	Image          string          `json:"image"`
}

type CreateProductInput struct {
	Name               string         `json:"name" validate:"required,max=200"`
	Slug               string         `json:"slug"`
	Brand              string         `json:"brand" validate:"required"`
	Category           string         `json:"category" validate:"required"`
	SubCategory        string         `json:"subCategory"`
	Description        string         `json:"description" validate:"required"`
	Images             []string       `json:"images"`
	BasePriceRetail    float64        `json:"basePriceRetail" validate:"gte=0"`
	BasePriceWholesale float64        `json:"basePriceWholesale" validate:"gte=0"`
	CountInStock       int            `json:"countInStock" validate:"gte=0"`
	Options            []model.Option `json:"options" validate:"dive"`
	Variants           []VariantInput `json:"variants" validate:"dive"`
	IsFeatured         bool           `json:"isFeatured"`
}

type UpdateProductInput struct {
	ID string `json:"-"`
	CreateProductInput
	IsArchived bool `json:"isArchived"`
}
