package cart

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/cart/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

type UseCase interface {
	GetCart(ctx context.Context, owner string) (*View, error)
	AddItem(ctx context.Context, input *dto.AddItemInput) (*View, error)
	RemoveItem(ctx context.Context, owner, sku string) (*View, error)
	Clear(ctx context.Context, owner string) (*View, error)
	SetShippingAddress(ctx context.Context, owner string, addr model.ShippingAddress) (*View, error)
	SetPaymentMethod(ctx context.Context, owner, method string) (*View, error)
	SetDrawer(ctx context.Context, owner string, open *bool) (*View, error)

	// Checkout hands a copy of the contents to place while holding the cart
	// lock, and clears the items only when place succeeds.
	Checkout(ctx context.Context, owner string, place func(contents *Contents) error) error

	// AdoptSession moves the anonymous cart stored under session into owner's
	// cart, repricing every line for class, and deletes the session cart.
	AdoptSession(ctx context.Context, session, owner string, class model.BuyerClass) error
}
