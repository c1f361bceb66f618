package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	carthandler "github.com/fekuna/omnipos-storefront-service/internal/cart/handler"
	"github.com/fekuna/omnipos-storefront-service/internal/handlerutils"
	"github.com/fekuna/omnipos-storefront-service/internal/order"
	"github.com/fekuna/omnipos-storefront-service/internal/order/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/go-chi/chi"
)

const requestTimeout = 30 * time.Second

type guard interface {
	RequireUser(h handlerutils.APIHandler) handlerutils.APIHandler
	RequireAdmin(h handlerutils.APIHandler) handlerutils.APIHandler
}

type OrderHandler struct {
	uc             order.UseCase
	guard          guard
	paypalClientID string
	logger         logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, guard guard, paypalClientID string, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:             uc,
		guard:          guard,
		paypalClientID: paypalClientID,
		logger:         log,
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Get("/config/paypal", handlerutils.MakeHandler(h.PayPalConfig, h.logger))

	router.Post("/orders", handlerutils.MakeHandler(h.guard.RequireUser(h.PlaceOrder), h.logger))
	router.Get("/orders/mine", handlerutils.MakeHandler(h.guard.RequireUser(h.ListMine), h.logger))
	router.Get("/orders/{orderID}", handlerutils.MakeHandler(h.guard.RequireUser(h.GetOrder), h.logger))
	router.Put("/orders/{orderID}/pay", handlerutils.MakeHandler(h.guard.RequireUser(h.Pay), h.logger))

	// admin
	router.Get("/orders", handlerutils.MakeHandler(h.guard.RequireAdmin(h.ListAll), h.logger))
	router.Put("/orders/{orderID}/deliver", handlerutils.MakeHandler(h.guard.RequireAdmin(h.Deliver), h.logger))
}

func (h *OrderHandler) PayPalConfig(w http.ResponseWriter, r *http.Request) error {
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "paypal config", map[string]string{
		"clientId": h.paypalClientID,
	})
}

func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	u, _ := auth.GetUser(ctx)
	o, err := h.uc.PlaceOrder(ctx, &dto.PlaceOrderInput{
		UserID:    u.UserID,
		CartOwner: carthandler.OwnerKey(r),
	})
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusCreated, "order placed", o)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) error {
	u, _ := auth.GetUser(r.Context())
	o, err := h.uc.GetOrder(r.Context(), u, chi.URLParam(r, "orderID"))
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "order retrieved", o)
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) error {
	u, _ := auth.GetUser(r.Context())
	orders, err := h.uc.ListMine(r.Context(), u.UserID)
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "orders retrieved", orders)
}

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	filters := &dto.OrderFilters{Page: 1, PageSize: 20}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return servererrors.New(http.StatusBadRequest, servererrors.ErrURLQueryParams.Error(), map[string]string{"page": "must be a positive integer"})
		}
		filters.Page = n
	}
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return servererrors.New(http.StatusBadRequest, servererrors.ErrURLQueryParams.Error(), map[string]string{"pageSize": "must be a positive integer"})
		}
		filters.PageSize = n
	}
	filters.UserID = q.Get("user")

	page, err := h.uc.ListAll(r.Context(), filters)
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "orders retrieved", page)
}

func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	defer r.Body.Close()

	var capture dto.PaymentCapture
	if err := handlerutils.ParseProviderJSON(r, &capture); err != nil {
		return err
	}

	u, _ := auth.GetUser(ctx)
	o, err := h.uc.Pay(ctx, u, &dto.PayInput{
		OrderID: chi.URLParam(r, "orderID"),
		Capture: capture,
	})
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "order paid", o)
}

func (h *OrderHandler) Deliver(w http.ResponseWriter, r *http.Request) error {
	o, err := h.uc.Deliver(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "order delivered", o)
}
