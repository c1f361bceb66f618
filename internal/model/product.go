package model

import "database/sql/driver"

type Option struct {
	Name   string   `json:"name" validate:"required"`
	Values []string `json:"values" validate:"required,min=1,dive,required"`
}

type Options []Option

func (o Options) Value() (driver.Value, error) { return jsonValue(o) }
func (o *Options) Scan(src any) error          { return scanJSON(src, o) }

// Defaults picks the first value of every option.
func (o Options) Defaults() Selection {
	m := make(map[string]string, len(o))
	for _, opt := range o {
		if len(opt.Values) > 0 {
			m[opt.Name] = opt.Values[0]
		}
	}
	return NewSelection(m)
}

type StringList []string

func (l StringList) Value() (driver.Value, error) { return jsonValue(l) }
func (l *StringList) Scan(src any) error          { return scanJSON(src, l) }

type Product struct {
	BaseModel
	Slug               string     `db:"slug" json:"slug"`
	Name               string     `db:"name" json:"name"`
	Brand              string     `db:"brand" json:"brand"`
	Category           string     `db:"category" json:"category"`
	SubCategory        string     `db:"sub_category" json:"subCategory"`
	Description        string     `db:"description" json:"description"`
	Images             StringList `db:"images" json:"images"`
	BasePriceRetail    float64    `db:"base_price_retail" json:"basePriceRetail"`
	BasePriceWholesale float64    `db:"base_price_wholesale" json:"basePriceWholesale"`
	CountInStock       int        `db:"count_in_stock" json:"countInStock"` // used when there are no variants
	Options            Options    `db:"options" json:"options"`
	Variants           []Variant  `db:"-" json:"variants"`
	Rating             float64    `db:"rating" json:"rating"`
	NumReviews         int        `db:"num_reviews" json:"numReviews"`
	IsFeatured         bool       `db:"is_featured" json:"isFeatured"`
	IsArchived         bool       `db:"is_archived" json:"isArchived"`
}

func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

type Variant struct {
	ID             string    `db:"id" json:"-"`
	ProductID      string    `db:"product_id" json:"-"`
	SKU            string    `db:"sku" json:"sku"`
	Attributes     Selection `db:"attributes" json:"attributes"`
	PriceRetail    float64   `db:"price_retail" json:"priceRetail"`
	PriceWholesale float64   `db:"price_wholesale" json:"priceWholesale"`
	CountInStock   int       `db:"count_in_stock" json:"countInStock"`
	Image          *string   `db:"image" json:"image,omitempty"`
	Position       int       `db:"position" json:"-"`
}
