package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/handlerutils"
	"github.com/fekuna/omnipos-storefront-service/internal/inventory"
	"github.com/fekuna/omnipos-storefront-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
	"github.com/fekuna/omnipos-storefront-service/internal/validate"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/go-chi/chi"
)

const defaultLowStockThreshold = 5

type guard interface {
	RequireAdmin(h handlerutils.APIHandler) handlerutils.APIHandler
}

type InventoryHandler struct {
	uc     inventory.UseCase
	guard  guard
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, guard guard, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		guard:  guard,
		logger: log,
	}
}

// RegisterRoutes mounts the admin stock endpoints.
func (h *InventoryHandler) RegisterRoutes(router chi.Router) {
	router.Route("/inventory", func(r chi.Router) {
		r.Get("/low-stock", handlerutils.MakeHandler(h.guard.RequireAdmin(h.ListLowStock), h.logger))
		r.Get("/movements", handlerutils.MakeHandler(h.guard.RequireAdmin(h.ListMovements), h.logger))
		r.Post("/adjust", handlerutils.MakeHandler(h.guard.RequireAdmin(h.AdjustStock), h.logger))
		r.Get("/{sku}", handlerutils.MakeHandler(h.guard.RequireAdmin(h.GetStock), h.logger))
	})
}

type page struct {
	Items any `json:"items"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}

func newPage(items any, p, size, total int) page {
	return page{Items: items, Page: p, Pages: (total + size - 1) / size, Total: total}
}

func (h *InventoryHandler) GetStock(w http.ResponseWriter, r *http.Request) error {
	level, err := h.uc.GetStock(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "stock retrieved", level)
}

func (h *InventoryHandler) ListLowStock(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	threshold, err := intParam(q.Get("threshold"), defaultLowStockThreshold, "threshold", 0)
	if err != nil {
		return err
	}
	p, err := intParam(q.Get("page"), 1, "page", 1)
	if err != nil {
		return err
	}
	size, err := intParam(q.Get("pageSize"), 50, "pageSize", 1)
	if err != nil {
		return err
	}

	filters := &dto.LowStockFilters{Threshold: threshold, Page: p, PageSize: size}
	items, total, err := h.uc.ListLowStock(r.Context(), filters)
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "low stock retrieved", newPage(items, filters.Page, filters.PageSize, total))
}

func (h *InventoryHandler) ListMovements(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	p, err := intParam(q.Get("page"), 1, "page", 1)
	if err != nil {
		return err
	}
	size, err := intParam(q.Get("pageSize"), 50, "pageSize", 1)
	if err != nil {
		return err
	}

	filters := &dto.MovementFilters{
		SKU:          q.Get("sku"),
		MovementType: model.MovementType(q.Get("type")),
		Page:         p,
		PageSize:     size,
	}
	items, total, err := h.uc.ListMovements(r.Context(), filters)
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "movements retrieved", newPage(items, filters.Page, filters.PageSize, total))
}

func (h *InventoryHandler) AdjustStock(w http.ResponseWriter, r *http.Request) error {
	defer r.Body.Close()

	var input dto.AdjustStockInput
	if err := handlerutils.ParseJSON(r, &input); err != nil {
		return err
	}
	if err := validate.StructFields(&input); err != nil {
		return servererrors.Validation(servererrors.ErrValidationFailed, err)
	}
	u, _ := auth.GetUser(r.Context())
	input.UserID = u.UserID

	level, err := h.uc.AdjustStock(r.Context(), &input)
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "stock adjusted", level)
}

func intParam(raw string, def int, name string, min int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		return 0, servererrors.New(http.StatusBadRequest, servererrors.ErrURLQueryParams.Error(), map[string]string{
			name: "must be an integer >= " + strconv.Itoa(min),
		})
	}
	return n, nil
}
