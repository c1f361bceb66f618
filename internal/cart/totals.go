package cart

import (
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/shopspring/decimal"
)

type Totals struct {
	ItemsPrice    float64 `json:"itemsPrice"`
	ShippingPrice float64 `json:"shippingPrice"`
	TaxPrice      float64 `json:"taxPrice"`
	TotalPrice    float64 `json:"totalPrice"`
}

// ShippingRule and TaxRule take the rounded items price.
type ShippingRule func(itemsPrice decimal.Decimal) decimal.Decimal
type TaxRule func(itemsPrice decimal.Decimal) decimal.Decimal

type Rules struct {
	Shipping ShippingRule
	Tax      TaxRule
}

// FlatShippingOver charges fee unless items exceed threshold. An empty cart
// ships for free.
func FlatShippingOver(threshold, fee float64) ShippingRule {
	t := decimal.NewFromFloat(threshold)
	f := decimal.NewFromFloat(fee)
	return func(items decimal.Decimal) decimal.Decimal {
		if items.IsZero() || items.GreaterThan(t) {
			return decimal.Zero
		}
		return f
	}
}

func PercentTax(rate float64) TaxRule {
	r := decimal.NewFromFloat(rate)
	return func(items decimal.Decimal) decimal.Decimal {
		return items.Mul(r)
	}
}

func DefaultRules() Rules {
	return Rules{
		Shipping: FlatShippingOver(100, 10),
		Tax:      PercentTax(0.15),
	}
}

// ComputeTotals derives all four money fields from items alone.
func ComputeTotals(items []model.LineItem, rules Rules) Totals {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	itemsPrice := sum.Round(2)

	shipping := decimal.Zero
	if rules.Shipping != nil {
		shipping = rules.Shipping(itemsPrice).Round(2)
	}
	tax := decimal.Zero
	if rules.Tax != nil {
		tax = rules.Tax(itemsPrice).Round(2)
	}

	return Totals{
		ItemsPrice:    itemsPrice.InexactFloat64(),
		ShippingPrice: shipping.InexactFloat64(),
		TaxPrice:      tax.InexactFloat64(),
		TotalPrice:    itemsPrice.Add(shipping).Add(tax).Round(2).InexactFloat64(),
	}
}
