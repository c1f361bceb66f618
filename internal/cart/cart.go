package cart

import (
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
)

const DefaultPaymentMethod = "PayPal"

// Contents is the durable part of a cart. It is what gets serialized.
type Contents struct {
	CartItems       []model.LineItem      `json:"cartItems"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	Totals
}

// UIState never leaves the process.
type UIState struct {
	IsCartOpen bool `json:"isCartOpen"`
}

// View is what clients see: contents plus the drawer flag.
type View struct {
	Contents
	UIState
}

// Cart is the aggregate. Every content mutation recomputes the totals.
type Cart struct {
	contents Contents
	rules    Rules
}

func New(rules Rules) *Cart {
	c := &Cart{
		contents: Contents{
			CartItems:     []model.LineItem{},
			PaymentMethod: DefaultPaymentMethod,
		},
		rules: rules,
	}
	c.recompute()
	return c
}

// Restore takes persisted contents as they are.
func Restore(contents Contents, rules Rules) *Cart {
	if contents.CartItems == nil {
		contents.CartItems = []model.LineItem{}
	}
	return &Cart{contents: contents, rules: rules}
}

// Contents returns a copy that shares nothing with the aggregate.
func (c *Cart) Contents() Contents {
	out := c.contents
	out.CartItems = make([]model.LineItem, len(c.contents.CartItems))
	copy(out.CartItems, c.contents.CartItems)
	return out
}

func (c *Cart) Items() []model.LineItem {
	return c.Contents().CartItems
}

func (c *Cart) Find(sku string) (model.LineItem, bool) {
	for _, it := range c.contents.CartItems {
		if it.SKU == sku {
			return it, true
		}
	}
	return model.LineItem{}, false
}

// AddItem replaces the line with the same SKU in place, or appends. It never
// adds quantities together.
func (c *Cart) AddItem(item model.LineItem) error {
	if item.SKU == "" {
		return servererrors.Validation(servererrors.ErrMissingSKU, nil)
	}
	if item.Qty < 1 {
		return servererrors.Validation(servererrors.ErrInvalidQuantity, nil)
	}

	replaced := false
	for i := range c.contents.CartItems {
		if c.contents.CartItems[i].SKU == item.SKU {
			c.contents.CartItems[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		c.contents.CartItems = append(c.contents.CartItems, item)
	}

	c.recompute()
	return nil
}

// RemoveItem drops the line with sku. Unknown SKUs are ignored.
func (c *Cart) RemoveItem(sku string) {
	kept := c.contents.CartItems[:0:0]
	for _, it := range c.contents.CartItems {
		if it.SKU != sku {
			kept = append(kept, it)
		}
	}
	c.contents.CartItems = kept
	c.recompute()
}

// Clear empties the items. Shipping address and payment method stay for the
// next checkout.
func (c *Cart) Clear() {
	c.contents.CartItems = []model.LineItem{}
	c.recompute()
}

func (c *Cart) SetShippingAddress(addr model.ShippingAddress) {
	c.contents.ShippingAddress = addr
	c.recompute()
}

func (c *Cart) SetPaymentMethod(method string) {
	c.contents.PaymentMethod = method
	c.recompute()
}

func (c *Cart) recompute() {
	c.contents.Totals = ComputeTotals(c.contents.CartItems, c.rules)
}
