package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/cart/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/catalog"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
}

type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

type cartUseCase struct {
	repo     cart.Repository
	ui       cart.UIStore
	products ProductReader
	locker   Locker
	rules    cart.Rules
	logger   logger.ZapLogger
}

func NewCartUseCase(repo cart.Repository, ui cart.UIStore, products ProductReader, locker Locker, rules cart.Rules, log logger.ZapLogger) cart.UseCase {
	return &cartUseCase{
		repo:     repo,
		ui:       ui,
		products: products,
		locker:   locker,
		rules:    rules,
		logger:   log,
	}
}

func (uc *cartUseCase) load(ctx context.Context, owner string) (*cart.Cart, error) {
	if owner == "" {
		return nil, servererrors.Validation(servererrors.ErrMissingCartSession, nil)
	}
	contents, err := uc.repo.Load(ctx, owner)
	if err != nil {
		return nil, servererrors.Persistence(err)
	}
	if contents == nil {
		return cart.New(uc.rules), nil
	}
	return cart.Restore(*contents, uc.rules), nil
}

func (uc *cartUseCase) view(owner string, c *cart.Cart) *cart.View {
	return &cart.View{
		Contents: c.Contents(),
		UIState:  uc.ui.Get(owner),
	}
}

// withLock runs fn while holding the per-owner cart lock.
func (uc *cartUseCase) withLock(ctx context.Context, owner string, fn func() error) error {
	if owner == "" {
		return servererrors.Validation(servererrors.ErrMissingCartSession, nil)
	}

	lockKey := "lock:cart:" + owner
	lockValue := uuid.New().String()
	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.locker.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire cart lock", zap.String("owner", owner), zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return servererrors.Wrap(servererrors.KindConflict, servererrors.ErrSystemBusy)
	}
	defer func() {
		if err := uc.locker.ReleaseLock(context.Background(), lockKey, lockValue); err != nil {
			uc.logger.Warn("failed to release cart lock", zap.String("owner", owner), zap.Error(err))
		}
	}()

	return fn()
}

// mutate loads the cart under the owner's lock, applies fn and persists the
// result. Nothing is written when fn fails.
func (uc *cartUseCase) mutate(ctx context.Context, owner string, fn func(c *cart.Cart) error) (*cart.Cart, error) {
	var c *cart.Cart
	err := uc.withLock(ctx, owner, func() error {
		var err error
		c, err = uc.mutateLocked(ctx, owner, fn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *cartUseCase) mutateLocked(ctx context.Context, owner string, fn func(c *cart.Cart) error) (*cart.Cart, error) {
	c, err := uc.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}

	contents := c.Contents()
	if err := uc.repo.Save(ctx, owner, &contents); err != nil {
		return nil, servererrors.Persistence(err)
	}
	return c, nil
}

func (uc *cartUseCase) GetCart(ctx context.Context, owner string) (*cart.View, error) {
	c, err := uc.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return uc.view(owner, c), nil
}

func (uc *cartUseCase) AddItem(ctx context.Context, input *dto.AddItemInput) (*cart.View, error) {
	if input.Qty < 1 {
		return nil, servererrors.Validation(servererrors.ErrInvalidQuantity, nil)
	}

	p, err := uc.products.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if p.IsArchived {
		return nil, servererrors.Validation(servererrors.ErrProductArchived, nil)
	}

	quote, err := catalog.NewQuote(p, input.SelectedOptions, input.BuyerClass)
	if err != nil {
		return nil, err
	}
	if input.Qty > quote.CountInStock {
		return nil, servererrors.Validation(servererrors.ErrQuantityExceedsStock, map[string]int{
			"countInStock": quote.CountInStock,
		})
	}

	item := quote.LineItem(p, input.Qty)
	c, err := uc.mutate(ctx, input.Owner, func(c *cart.Cart) error {
		return c.AddItem(item)
	})
	if err != nil {
		return nil, err
	}

	uc.ui.Set(input.Owner, cart.UIState{IsCartOpen: true})
	uc.logger.Debug("cart item added",
		zap.String("owner", input.Owner),
		zap.String("sku", item.SKU),
		zap.Int("qty", item.Qty),
		zap.Float64("price", item.Price),
	)
	return uc.view(input.Owner, c), nil
}

func (uc *cartUseCase) RemoveItem(ctx context.Context, owner, sku string) (*cart.View, error) {
	c, err := uc.mutate(ctx, owner, func(c *cart.Cart) error {
		c.RemoveItem(sku)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.view(owner, c), nil
}

func (uc *cartUseCase) Clear(ctx context.Context, owner string) (*cart.View, error) {
	c, err := uc.mutate(ctx, owner, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.ui.Reset(owner)
	return uc.view(owner, c), nil
}

func (uc *cartUseCase) Checkout(ctx context.Context, owner string, place func(contents *cart.Contents) error) error {
	return uc.withLock(ctx, owner, func() error {
		c, err := uc.load(ctx, owner)
		if err != nil {
			return err
		}
		contents := c.Contents()
		if err := place(&contents); err != nil {
			return err
		}

		// The order is durable at this point, so a failed clear only leaves a
		// stale cart behind.
		c.Clear()
		cleared := c.Contents()
		if err := uc.repo.Save(ctx, owner, &cleared); err != nil {
			uc.logger.Warn("failed to clear cart after checkout", zap.String("owner", owner), zap.Error(err))
		}
		uc.ui.Reset(owner)
		return nil
	})
}

// AdoptSession replays the session's lines into owner's cart. Session lines
// are the latest choice, so they replace owner lines with the same SKU, and a
// shipping address or non-default payment method chosen in the session wins
// over the stored one. Lines
// whose product is gone, archived or sold out are dropped; quantities above
// the current stock are capped.
func (uc *cartUseCase) AdoptSession(ctx context.Context, session, owner string, class model.BuyerClass) error {
	if session == "" || owner == "" || session == owner {
		return nil
	}

	stored, err := uc.repo.Load(ctx, session)
	if err != nil {
		return servererrors.Persistence(err)
	}
	if stored == nil {
		return nil
	}

	return uc.withLock(ctx, session, func() error {
		// Another request may have adopted it while we waited.
		stored, err := uc.repo.Load(ctx, session)
		if err != nil {
			return servererrors.Persistence(err)
		}
		if stored == nil {
			return nil
		}

		items := make([]model.LineItem, 0, len(stored.CartItems))
		for _, it := range stored.CartItems {
			item, ok, err := uc.requote(ctx, it, class)
			if err != nil {
				return err
			}
			if ok {
				items = append(items, item)
			}
		}

		_, err = uc.mutate(ctx, owner, func(c *cart.Cart) error {
			for _, item := range items {
				if err := c.AddItem(item); err != nil {
					return err
				}
			}
			if stored.ShippingAddress.Address != "" {
				c.SetShippingAddress(stored.ShippingAddress)
			}
			if stored.PaymentMethod != "" && stored.PaymentMethod != cart.DefaultPaymentMethod {
				c.SetPaymentMethod(stored.PaymentMethod)
			}
			return nil
		})
		if err != nil {
			return err
		}

		if err := uc.repo.Delete(ctx, session); err != nil {
			return servererrors.Persistence(err)
		}
		uc.ui.Reset(session)

		uc.logger.Info("session cart adopted",
			zap.String("session", session),
			zap.String("owner", owner),
			zap.Int("items", len(items)),
			zap.Int("dropped", len(stored.CartItems)-len(items)),
		)
		return nil
	})
}

// requote prices a stored line again for class. ok is false when the line can
// no longer be bought.
func (uc *cartUseCase) requote(ctx context.Context, it model.LineItem, class model.BuyerClass) (model.LineItem, bool, error) {
	p, err := uc.products.GetProduct(ctx, it.ProductID)
	if err != nil {
		if servererrors.KindOf(err) == servererrors.KindNotFound {
			return model.LineItem{}, false, nil
		}
		return model.LineItem{}, false, err
	}
	if p.IsArchived {
		return model.LineItem{}, false, nil
	}

	quote, err := catalog.NewQuote(p, it.SelectedOptions, class)
	if err != nil || quote.CountInStock < 1 {
		return model.LineItem{}, false, nil
	}

	qty := it.Qty
	if qty > quote.CountInStock {
		qty = quote.CountInStock
	}
	return quote.LineItem(p, qty), true, nil
}

func (uc *cartUseCase) SetShippingAddress(ctx context.Context, owner string, addr model.ShippingAddress) (*cart.View, error) {
	c, err := uc.mutate(ctx, owner, func(c *cart.Cart) error {
		c.SetShippingAddress(addr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.view(owner, c), nil
}

func (uc *cartUseCase) SetPaymentMethod(ctx context.Context, owner, method string) (*cart.View, error) {
	if method == "" {
		return nil, servererrors.Validation(servererrors.ErrMissingPaymentMethod, nil)
	}
	c, err := uc.mutate(ctx, owner, func(c *cart.Cart) error {
		c.SetPaymentMethod(method)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.view(owner, c), nil
}

// SetDrawer sets the drawer flag, or toggles it when open is nil. It does not
// touch the stored contents.
func (uc *cartUseCase) SetDrawer(ctx context.Context, owner string, open *bool) (*cart.View, error) {
	c, err := uc.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	state := uc.ui.Get(owner)
	if open != nil {
		state.IsCartOpen = *open
	} else {
		state.IsCartOpen = !state.IsCartOpen
	}
	uc.ui.Set(owner, state)

	return uc.view(owner, c), nil
}
