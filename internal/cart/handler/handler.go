package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/cart/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/handlerutils"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
	"github.com/fekuna/omnipos-storefront-service/internal/validate"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

// SessionHeader carries the anonymous cart id. It is minted and echoed back
// when a request without a token or session arrives.
const SessionHeader = "X-Cart-Session"

const requestTimeout = 10 * time.Second

type CartHandler struct {
	uc     cart.UseCase
	logger logger.ZapLogger
}

func NewCartHandler(uc cart.UseCase, log logger.ZapLogger) *CartHandler {
	return &CartHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Route("/cart", func(r chi.Router) {
		r.Get("/", handlerutils.MakeHandler(h.GetCart, h.logger))
		r.Delete("/", handlerutils.MakeHandler(h.Clear, h.logger))
		r.Post("/items", handlerutils.MakeHandler(h.AddItem, h.logger))
		r.Delete("/items/{sku}", handlerutils.MakeHandler(h.RemoveItem, h.logger))
		r.Put("/shipping", handlerutils.MakeHandler(h.SetShippingAddress, h.logger))
		r.Put("/payment-method", handlerutils.MakeHandler(h.SetPaymentMethod, h.logger))
		r.Put("/drawer", handlerutils.MakeHandler(h.SetDrawer, h.logger))
	})
}

// OwnerKey names the cart a request works on: the user when authenticated,
// else the anonymous session.
func OwnerKey(r *http.Request) string {
	if u, ok := auth.GetUser(r.Context()); ok {
		return "user:" + u.UserID
	}
	if s := r.Header.Get(SessionHeader); s != "" {
		return "session:" + s
	}
	return ""
}

// AdoptSession merges the anonymous cart into the user's cart on the first
// authenticated request that still carries the session header. It runs after
// Authenticate.
func (h *CartHandler) AdoptSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.GetUser(r.Context())
		session := r.Header.Get(SessionHeader)
		if !ok || session == "" {
			next.ServeHTTP(w, r)
			return
		}

		adopt := func(w http.ResponseWriter, r *http.Request) error {
			ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
			defer cancel()
			if err := h.uc.AdoptSession(ctx, "session:"+session, "user:"+u.UserID, auth.GetBuyerClass(r.Context())); err != nil {
				return err
			}
			next.ServeHTTP(w, r)
			return nil
		}
		handlerutils.MakeHandler(adopt, h.logger).ServeHTTP(w, r)
	})
}

func owner(w http.ResponseWriter, r *http.Request) string {
	key := OwnerKey(r)
	if key == "" {
		session := uuid.New().String()
		w.Header().Set(SessionHeader, session)
		key = "session:" + session
	}
	return key
}

type addItemRequest struct {
	ProductID       string          `json:"productId" validate:"required"`
	SelectedOptions model.Selection `json:"selectedOptions"`
	Qty             int             `json:"qty" validate:"gte=1"`
}

type paymentMethodRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

type drawerRequest struct {
	IsCartOpen *bool `json:"isCartOpen"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) error {
	view, err := h.uc.GetCart(r.Context(), owner(w, r))
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "cart retrieved", view)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	defer r.Body.Close()

	var req addItemRequest
	if err := handlerutils.ParseJSON(r, &req); err != nil {
		return err
	}
	if err := validate.StructFields(&req); err != nil {
		return servererrors.Validation(servererrors.ErrValidationFailed, err)
	}

	view, err := h.uc.AddItem(ctx, &dto.AddItemInput{
		Owner:           owner(w, r),
		BuyerClass:      auth.GetBuyerClass(ctx),
		ProductID:       req.ProductID,
		SelectedOptions: req.SelectedOptions,
		Qty:             req.Qty,
	})
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "item added", view)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) error {
	view, err := h.uc.RemoveItem(r.Context(), owner(w, r), chi.URLParam(r, "sku"))
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "item removed", view)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) error {
	view, err := h.uc.Clear(r.Context(), owner(w, r))
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "cart cleared", view)
}

func (h *CartHandler) SetShippingAddress(w http.ResponseWriter, r *http.Request) error {
	defer r.Body.Close()

	var addr model.ShippingAddress
	if err := handlerutils.ParseJSON(r, &addr); err != nil {
		return err
	}
	if err := validate.StructFields(&addr); err != nil {
		return servererrors.Validation(servererrors.ErrMissingShippingAddress, err)
	}

	view, err := h.uc.SetShippingAddress(r.Context(), owner(w, r), addr)
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "shipping address saved", view)
}

func (h *CartHandler) SetPaymentMethod(w http.ResponseWriter, r *http.Request) error {
	defer r.Body.Close()

	var req paymentMethodRequest
	if err := handlerutils.ParseJSON(r, &req); err != nil {
		return err
	}
	if err := validate.StructFields(&req); err != nil {
		return servererrors.Validation(servererrors.ErrMissingPaymentMethod, err)
	}

	view, err := h.uc.SetPaymentMethod(r.Context(), owner(w, r), req.PaymentMethod)
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "payment method saved", view)
}

// SetDrawer sets the drawer flag, or toggles it when the body omits it.
func (h *CartHandler) SetDrawer(w http.ResponseWriter, r *http.Request) error {
	var req drawerRequest
	if r.ContentLength != 0 {
		defer r.Body.Close()
		if err := handlerutils.ParseJSON(r, &req); err != nil {
			return err
		}
	}

	view, err := h.uc.SetDrawer(r.Context(), owner(w, r), req.IsCartOpen)
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "drawer updated", view)
}
