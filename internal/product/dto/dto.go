package dto

import "github.com/fekuna/omnipos-storefront-service/internal/model"

type ProductFilters struct {
	Keyword         string `json:"keyword"`
	Category        string `json:"category"`
	FeaturedOnly    bool   `json:"featuredOnly"`
	IncludeArchived bool   `json:"includeArchived"`
	Page            int    `json:"page"`
	PageSize        int    `json:"pageSize"`
}

type ProductPage struct {
	Products []model.Product `json:"products"`
	Page     int             `json:"page"`
	Pages    int             `json:"pages"`
	Total    int             `json:"total"`
}
