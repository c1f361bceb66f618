// Package catalog resolves a product option selection to a purchasable SKU
// and prices it for a buyer class. Everything here is a pure function of its
// inputs; the product page quote and cart insertion both go through Quote.
package catalog

import "github.com/fekuna/omnipos-storefront-service/internal/model"

// ResolveVariant returns the first variant whose attributes carry every pair
// in selected, or nil when nothing matches or selected is empty.
func ResolveVariant(p *model.Product, selected model.Selection) *model.Variant {
	if len(selected) == 0 {
		return nil
	}
	for i := range p.Variants {
		if p.Variants[i].Attributes.Covers(selected) {
			return &p.Variants[i]
		}
	}
	return nil
}

// FindVariantBySKU is used when a caller already knows the SKU.
func FindVariantBySKU(p *model.Product, sku string) *model.Variant {
	for i := range p.Variants {
		if p.Variants[i].SKU == sku {
			return &p.Variants[i]
		}
	}
	return nil
}
