package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/handlerutils"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
	"github.com/fekuna/omnipos-storefront-service/internal/validate"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/go-chi/chi"
)

const requestTimeout = 30 * time.Second

type guard interface {
	RequireAdmin(h handlerutils.APIHandler) handlerutils.APIHandler
}

type ProductHandler struct {
	uc     product.UseCase
	guard  guard
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, guard guard, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		guard:  guard,
		logger: log,
	}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", handlerutils.MakeHandler(h.ListProducts, h.logger))
	router.Get("/products/featured", handlerutils.MakeHandler(h.ListFeatured, h.logger))
	router.Get("/products/categories", handlerutils.MakeHandler(h.ListCategories, h.logger))
	router.Get("/products/slug/{slug}", handlerutils.MakeHandler(h.GetProductBySlug, h.logger))
	router.Get("/products/{productID}", handlerutils.MakeHandler(h.GetProduct, h.logger))
	router.Get("/products/{productID}/quote", handlerutils.MakeHandler(h.QuoteProduct, h.logger))

	// admin
	router.Post("/products", handlerutils.MakeHandler(h.guard.RequireAdmin(h.CreateProduct), h.logger))
	router.Put("/products/{productID}", handlerutils.MakeHandler(h.guard.RequireAdmin(h.UpdateProduct), h.logger))
	router.Put("/products/{productID}/archive", handlerutils.MakeHandler(h.guard.RequireAdmin(h.ArchiveProduct), h.logger))
	router.Delete("/products/{productID}", handlerutils.MakeHandler(h.guard.RequireAdmin(h.DeleteProduct), h.logger))
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	filters, err := parseFilters(r)
	if err != nil {
		return err
	}

	page, err := h.uc.ListProducts(ctx, filters)
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "products retrieved", page)
}

func (h *ProductHandler) ListFeatured(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	page, err := h.uc.ListProducts(ctx, &dto.ProductFilters{FeaturedOnly: true, Page: 1, PageSize: 10})
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "featured products retrieved", page.Products)
}

func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) error {
	categories, err := h.uc.ListCategories(r.Context())
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "categories retrieved", categories)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) error {
	p, err := h.uc.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		return err
	}
	if p.IsArchived && !isAdmin(r) {
		return servererrors.NotFound(servererrors.ErrProductNotFound)
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "product retrieved", p)
}

func (h *ProductHandler) GetProductBySlug(w http.ResponseWriter, r *http.Request) error {
	p, err := h.uc.GetProductBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return err
	}
	if p.IsArchived && !isAdmin(r) {
		return servererrors.NotFound(servererrors.ErrProductNotFound)
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "product retrieved", p)
}

// QuoteProduct treats every query parameter as an option selection, e.g.
// ?Size=2LB&Flavor=Chocolate.
func (h *ProductHandler) QuoteProduct(w http.ResponseWriter, r *http.Request) error {
	selected := make(map[string]string)
	for name, values := range r.URL.Query() {
		if len(values) > 0 {
			selected[name] = values[0]
		}
	}

	q, err := h.uc.QuoteProduct(r.Context(), chi.URLParam(r, "productID"), model.NewSelection(selected), auth.GetBuyerClass(r.Context()))
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "quote", q)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	defer r.Body.Close()

	var input dto.CreateProductInput
	if err := handlerutils.ParseJSON(r, &input); err != nil {
		return err
	}
	if err := validate.StructFields(&input); err != nil {
		return servererrors.Validation(servererrors.ErrValidationFailed, err)
	}

	p, err := h.uc.CreateProduct(ctx, &input)
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusCreated, "product created", p)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	defer r.Body.Close()

	var input dto.UpdateProductInput
	if err := handlerutils.ParseJSON(r, &input); err != nil {
		return err
	}
	input.ID = chi.URLParam(r, "productID")
	if err := validate.StructFields(&input); err != nil {
		return servererrors.Validation(servererrors.ErrValidationFailed, err)
	}

	p, err := h.uc.UpdateProduct(ctx, &input)
	if err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "product updated", p)
}

func (h *ProductHandler) ArchiveProduct(w http.ResponseWriter, r *http.Request) error {
	if err := h.uc.ArchiveProduct(r.Context(), chi.URLParam(r, "productID")); err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "product archived", nil)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) error {
	if err := h.uc.DeleteProduct(r.Context(), chi.URLParam(r, "productID")); err != nil {
		return err
	}
	return handlerutils.WriteSuccessJSON(w, http.StatusOK, "product deleted", nil)
}

func parseFilters(r *http.Request) (*dto.ProductFilters, error) {
	q := r.URL.Query()
	filters := &dto.ProductFilters{
		Keyword:  q.Get("keyword"),
		Category: q.Get("category"),
		Page:     1,
		PageSize: 12,
	}

	var err error
	if v := q.Get("page"); v != "" {
		if filters.Page, err = strconv.Atoi(v); err != nil || filters.Page < 1 {
			return nil, servererrors.New(http.StatusBadRequest, servererrors.ErrURLQueryParams.Error(), map[string]string{"page": "must be a positive integer"})
		}
	}
	if v := q.Get("pageSize"); v != "" {
		if filters.PageSize, err = strconv.Atoi(v); err != nil || filters.PageSize < 1 {
			return nil, servererrors.New(http.StatusBadRequest, servererrors.ErrURLQueryParams.Error(), map[string]string{"pageSize": "must be a positive integer"})
		}
	}
	if isAdminQuery := q.Get("includeArchived"); isAdminQuery == "true" && isAdmin(r) {
		filters.IncludeArchived = true
	}
	return filters, nil
}

func isAdmin(r *http.Request) bool {
	u, ok := auth.GetUser(r.Context())
	return ok && u.IsAdmin()
}
