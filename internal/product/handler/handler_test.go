package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/catalog"
	"github.com/fekuna/omnipos-storefront-service/internal/middlewares"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCatalog serves a fixed set of products and records what reached it.
type stubCatalog struct {
	mu       sync.Mutex
	products map[string]*model.Product
	filters  *dto.ProductFilters
	classes  []model.BuyerClass
	archived []string
	created  int
}

func (s *stubCatalog) find(id string) (*model.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, servererrors.NotFound(servererrors.ErrProductNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *stubCatalog) CreateProduct(_ context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created++
	return &model.Product{Name: input.Name}, nil
}

func (s *stubCatalog) GetProduct(_ context.Context, id string) (*model.Product, error) {
	return s.find(id)
}

func (s *stubCatalog) GetProductBySlug(_ context.Context, slug string) (*model.Product, error) {
	for id, p := range s.products {
		if p.Slug == slug {
			return s.find(id)
		}
	}
	return nil, servererrors.NotFound(servererrors.ErrProductNotFound)
}

func (s *stubCatalog) ListProducts(_ context.Context, filters *dto.ProductFilters) (*dto.ProductPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = filters
	page := &dto.ProductPage{Products: []model.Product{}, Page: filters.Page, Pages: 1}
	for _, p := range s.products {
		if p.IsArchived && !filters.IncludeArchived {
			continue
		}
		page.Products = append(page.Products, *p)
	}
	page.Total = len(page.Products)
	return page, nil
}

func (s *stubCatalog) ListCategories(context.Context) ([]string, error) {
	return []string{"Supplements"}, nil
}

func (s *stubCatalog) UpdateProduct(_ context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	return s.find(input.ID)
}

func (s *stubCatalog) ArchiveProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return servererrors.NotFound(servererrors.ErrProductNotFound)
	}
	s.archived = append(s.archived, id)
	return nil
}

func (s *stubCatalog) DeleteProduct(_ context.Context, id string) error {
	_, err := s.find(id)
	return err
}

func (s *stubCatalog) QuoteProduct(_ context.Context, id string, selected model.Selection, class model.BuyerClass) (*catalog.Quote, error) {
	s.mu.Lock()
	s.classes = append(s.classes, class)
	s.mu.Unlock()

	p, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return catalog.NewQuote(p, selected, class)
}

func whey() *model.Product {
	return &model.Product{
		BaseModel:          model.BaseModel{ID: "whey"},
		Name:               "Whey Protein",
		Slug:               "whey-protein",
		BasePriceRetail:    40,
		BasePriceWholesale: 30,
		Options:            model.Options{{Name: "Size", Values: []string{"2LB", "5LB"}}},
		Variants: []model.Variant{
			{SKU: "WHEY-2LB", Attributes: model.NewSelection(map[string]string{"Size": "2LB"}), PriceRetail: 45, PriceWholesale: 35, CountInStock: 10},
			{SKU: "WHEY-5LB", Attributes: model.NewSelection(map[string]string{"Size": "5LB"}), PriceRetail: 90, PriceWholesale: 70, CountInStock: 4},
		},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

type testServer struct {
	router  http.Handler
	tokens  *auth.TokenService
	catalog *stubCatalog
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewNop()

	old := whey()
	old.ID = "old"
	old.Slug = "old-whey"
	old.IsArchived = true
	stub := &stubCatalog{products: map[string]*model.Product{"whey": whey(), "old": old}}

	tokens := auth.NewTokenService("test-secret", time.Hour)
	mw := middlewares.NewMiddleware(tokens, log)

	r := chi.NewRouter()
	r.Use(mw.Authenticate)
	NewProductHandler(stub, mw, log).RegisterRoutes(r)

	return &testServer{router: r, tokens: tokens, catalog: stub}
}

func (s *testServer) bearer(t *testing.T, role model.Role) string {
	t.Helper()
	token, err := s.tokens.Issue("u-"+string(role), role)
	require.NoError(t, err)
	return "Bearer " + token
}

func (s *testServer) do(t *testing.T, method, path, body, authorization string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestListProducts(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/products?keyword=whey&page=2&pageSize=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var page dto.ProductPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "whey", s.catalog.filters.Keyword)
	assert.Equal(t, 2, s.catalog.filters.Page)
	assert.Equal(t, 5, s.catalog.filters.PageSize)
}

func TestListProductsIncludeArchivedNeedsAdmin(t *testing.T) {
	s := newTestServer(t)

	_, env := s.do(t, http.MethodGet, "/products?includeArchived=true", "", s.bearer(t, model.RoleRetail))
	var page dto.ProductPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 1, page.Total)

	_, env = s.do(t, http.MethodGet, "/products?includeArchived=true", "", s.bearer(t, model.RoleAdmin))
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 2, page.Total)
}

func TestListProductsBadPaging(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/products?page=0", "/products?page=abc", "/products?pageSize=-3"} {
		t.Run(path, func(t *testing.T) {
			rec, env := s.do(t, http.MethodGet, path, "", "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, servererrors.ErrURLQueryParams.Error(), env.Message)
		})
	}
}

func TestGetProduct(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/products/whey", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p model.Product
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Whey Protein", p.Name)

	rec, _ = s.do(t, http.MethodGet, "/products/slug/whey-protein", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/products/missing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestArchivedProductHiddenFromShoppers(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/products/old", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, servererrors.ErrProductNotFound.Error(), env.Message)

	rec, _ = s.do(t, http.MethodGet, "/products/slug/old-whey", "", s.bearer(t, model.RoleWholesale))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/products/old", "", s.bearer(t, model.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQuoteUsesBuyerClassFromToken(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/products/whey/quote?Size=5LB", "", "")
	require.Equal(t, http.StatusOK, rec.Code, string(env.Errors))
	var q catalog.Quote
	require.NoError(t, json.Unmarshal(env.Data, &q))
	assert.Equal(t, "WHEY-5LB", q.SKU)
	assert.Equal(t, 90.0, q.UnitPrice)

	rec, env = s.do(t, http.MethodGet, "/products/whey/quote?Size=5LB", "", s.bearer(t, model.RoleWholesale))
	require.Equal(t, http.StatusOK, rec.Code, string(env.Errors))
	require.NoError(t, json.Unmarshal(env.Data, &q))
	assert.Equal(t, 70.0, q.UnitPrice)

	assert.Equal(t, []model.BuyerClass{model.BuyerRetail, model.BuyerWholesale}, s.catalog.classes)
}

func TestQuoteUnknownCombination(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/products/whey/quote?Size=10LB", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, env.Success)
}

func TestAdminRoutesAreGuarded(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/products", `{"name":"Creatine"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/products", `{"name":"Creatine"}`, s.bearer(t, model.RoleRetail))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodPut, "/products/whey/archive", "", s.bearer(t, model.RoleWholesale))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/products/whey", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Zero(t, s.catalog.created)
	assert.Empty(t, s.catalog.archived)

	rec, _ = s.do(t, http.MethodPut, "/products/whey/archive", "", s.bearer(t, model.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"whey"}, s.catalog.archived)
}

func TestCreateProductRejectsUnknownFields(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/products", `{"name":"Creatine","colour":"red"}`, s.bearer(t, model.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, servererrors.ErrInvalidRequestPayload.Error(), env.Message)
	assert.Zero(t, s.catalog.created)
}
