package catalog

import (
	"fmt"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
)

// UnitPrice picks the variant price when a variant is resolved and the base
// price otherwise, in the column that matches the buyer class.
func UnitPrice(p *model.Product, v *model.Variant, class model.BuyerClass) float64 {
	if v != nil {
		if class == model.BuyerWholesale {
			return v.PriceWholesale
		}
		return v.PriceRetail
	}
	if class == model.BuyerWholesale {
		return p.BasePriceWholesale
	}
	return p.BasePriceRetail
}

func otherClass(class model.BuyerClass) model.BuyerClass {
	if class == model.BuyerWholesale {
		return model.BuyerRetail
	}
	return model.BuyerWholesale
}

type Quote struct {
	ProductID      string           `json:"productId"`
	SKU            string           `json:"sku"`
	Selection      model.Selection  `json:"selectedOptions"`
	BuyerClass     model.BuyerClass `json:"buyerClass"`
	UnitPrice      float64          `json:"unitPrice"`
	AlternatePrice float64          `json:"alternatePrice"`
	PriceRetail    float64          `json:"priceRetail"`
	PriceWholesale float64          `json:"priceWholesale"`
	CountInStock   int              `json:"countInStock"`
	Image          string           `json:"image"`
}

// NewQuote resolves selected against p and prices it for class. An empty
// selection on a product with options falls back to the first value of each
// option. Products without variants quote the base price and base stock under
// the product id as SKU.
func NewQuote(p *model.Product, selected model.Selection, class model.BuyerClass) (*Quote, error) {
	q := &Quote{
		ProductID:  p.ID,
		BuyerClass: class,
		Image:      p.PrimaryImage(),
	}

	if !p.HasVariants() {
		q.SKU = p.ID
		q.Selection = model.Selection{}
		q.PriceRetail = p.BasePriceRetail
		q.PriceWholesale = p.BasePriceWholesale
		q.CountInStock = p.CountInStock
	} else {
		if len(selected) == 0 {
			selected = p.Options.Defaults()
		}
		v := ResolveVariant(p, selected)
		if v == nil {
			return nil, servererrors.Validation(
				fmt.Errorf("%w: %v", servererrors.ErrNoMatchingVariant, selected.Map()),
				nil,
			)
		}
		q.SKU = v.SKU
		q.Selection = selected
		q.PriceRetail = v.PriceRetail
		q.PriceWholesale = v.PriceWholesale
		q.CountInStock = v.CountInStock
		if v.Image != nil && *v.Image != "" {
			q.Image = *v.Image
		}
	}

	if class == model.BuyerWholesale {
		q.UnitPrice, q.AlternatePrice = q.PriceWholesale, q.PriceRetail
	} else {
		q.UnitPrice, q.AlternatePrice = q.PriceRetail, q.PriceWholesale
	}
	return q, nil
}

// LineItem snapshots the quote into a cart line for qty units.
func (q *Quote) LineItem(p *model.Product, qty int) model.LineItem {
	return model.LineItem{
		ProductID:       p.ID,
		SKU:             q.SKU,
		Name:            p.Name,
		Image:           q.Image,
		Price:           q.UnitPrice,
		CountInStock:    q.CountInStock,
		Qty:             qty,
		SelectedOptions: q.Selection,
	}
}
