package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/catalog"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/fekuna/omnipos-storefront-service/pkg/search"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	indexName     = "products"
	listCacheTTL  = 5 * time.Minute
	listKeyPrefix = "products:list:"
	maxPageSize   = 100
)

type productUseCase struct {
	repo   product.Repository
	cache  *cache.RedisClient
	es     *search.Client
	logger logger.ZapLogger
}

// NewProductUseCase wires the catalog. cache and es may be nil, in which case
// listing always reads Postgres.
func NewProductUseCase(repo product.Repository, cache *cache.RedisClient, es *search.Client, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		logger: log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	now := time.Now()
	p := &model.Product{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
	}
	applyInput(p, input)

	if err := uc.checkWritable(ctx, p, ""); err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, servererrors.Persistence(err)
	}

	uc.logger.Info("product created", zap.String("product_id", p.ID), zap.String("slug", p.Slug), zap.Int("variants", len(p.Variants)))
	uc.afterWrite(p)
	return p, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	applyInput(p, &input.CreateProductInput)
	p.IsArchived = input.IsArchived
	p.UpdatedAt = time.Now()

	if err := uc.checkWritable(ctx, p, p.ID); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, servererrors.Persistence(err)
	}

	uc.logger.Info("product updated", zap.String("product_id", p.ID))
	uc.afterWrite(p)
	return p, nil
}

func applyInput(p *model.Product, input *dto.CreateProductInput) {
	p.Name = strings.TrimSpace(input.Name)
	p.Slug = input.Slug
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	p.Brand = input.Brand
	p.Category = input.Category
	p.SubCategory = input.SubCategory
	p.Description = strings.TrimSpace(input.Description)
	p.Images = model.StringList(input.Images)
	if p.Images == nil {
		p.Images = model.StringList{}
	}
	p.BasePriceRetail = input.BasePriceRetail
	p.BasePriceWholesale = input.BasePriceWholesale
	p.CountInStock = input.CountInStock
	p.Options = model.Options(input.Options)
	if p.Options == nil {
		p.Options = model.Options{}
	}
	p.IsFeatured = input.IsFeatured

	p.Variants = make([]model.Variant, len(input.Variants))
	for i, v := range input.Variants {
		var image *string
		if v.Image != "" {
			img := v.Image
			image = &img
		}
		p.Variants[i] = model.Variant{
			ID:             uuid.New().String(),
			ProductID:      p.ID,
			SKU:            strings.TrimSpace(v.SKU),
			Attributes:     v.Attributes,
			PriceRetail:    v.PriceRetail,
			PriceWholesale: v.PriceWholesale,
			CountInStock:   v.CountInStock,
			Image:          image,
			Position:       i,
		}
	}
}

// checkWritable rejects malformed option/variant matrices and slug or SKU
// collisions with other products.
func (uc *productUseCase) checkWritable(ctx context.Context, p *model.Product, excludeID string) error {
	if err := catalog.CheckVariants(p.Options, p.Variants); err != nil {
		return err
	}

	if !slugPattern.MatchString(p.Slug) {
		return servererrors.Validation(servererrors.ErrValidationFailed, map[string]string{"slug": "must be lower case letters, digits and dashes"})
	}
	unique, err := uc.repo.IsSlugUnique(ctx, p.Slug, excludeID)
	if err != nil {
		return servererrors.Persistence(err)
	}
	if !unique {
		return servererrors.Conflict(servererrors.ErrSlugAlreadyExists)
	}

	skus := make([]string, len(p.Variants))
	for i, v := range p.Variants {
		skus[i] = v.SKU
	}
	unique, err = uc.repo.IsSKUUnique(ctx, skus, p.ID)
	if err != nil {
		return servererrors.Persistence(err)
	}
	if !unique {
		return servererrors.Conflict(servererrors.ErrSKUAlreadyExists)
	}
	return nil
}

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

func Slugify(name string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

func (uc *productUseCase) afterWrite(p *model.Product) {
	go uc.invalidateProductCache(context.Background())
	go uc.syncToElastic(context.Background(), p)
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, servererrors.Persistence(err)
	}
	if p == nil {
		return nil, servererrors.NotFound(servererrors.ErrProductNotFound)
	}
	return p, nil
}

func (uc *productUseCase) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	p, err := uc.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, servererrors.Persistence(err)
	}
	if p == nil {
		return nil, servererrors.NotFound(servererrors.ErrProductNotFound)
	}
	return p, nil
}

// QuoteProduct refuses archived products the same way adding them to a cart
// does.
func (uc *productUseCase) QuoteProduct(ctx context.Context, id string, selected model.Selection, class model.BuyerClass) (*catalog.Quote, error) {
	p, err := uc.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsArchived {
		return nil, servererrors.Validation(servererrors.ErrProductArchived, nil)
	}
	return catalog.NewQuote(p, selected, class)
}

func (uc *productUseCase) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := uc.repo.ListCategories(ctx)
	if err != nil {
		return nil, servererrors.Persistence(err)
	}
	return categories, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) (*dto.ProductPage, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > maxPageSize {
		filters.PageSize = 12
	}

	cacheKey, err := uc.generateCacheKey(filters)
	if err == nil && uc.cache != nil {
		val, err := uc.cache.Client.Get(ctx, cacheKey).Result()
		if err == nil {
			var page dto.ProductPage
			if err := json.Unmarshal([]byte(val), &page); err == nil {
				return &page, nil
			}
		}
	}

	products, count, err := uc.searchOrFind(ctx, filters)
	if err != nil {
		return nil, servererrors.Persistence(err)
	}
	if products == nil {
		products = []model.Product{}
	}

	page := &dto.ProductPage{
		Products: products,
		Page:     filters.Page,
		Pages:    (count + filters.PageSize - 1) / filters.PageSize,
		Total:    count,
	}

	if cacheKey != "" && uc.cache != nil {
		if data, err := json.Marshal(page); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, listCacheTTL)
		}
	}
	return page, nil
}

// searchOrFind uses Elasticsearch for keyword queries and falls back to SQL
// when the index is unavailable.
func (uc *productUseCase) searchOrFind(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	if filters.Keyword != "" && uc.es != nil {
		products, total, err := uc.searchElastic(ctx, filters)
		if err == nil {
			return products, total, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *productUseCase) searchElastic(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	must := []map[string]interface{}{
		{
			"multi_match": map[string]interface{}{
				"query":     filters.Keyword,
				"fields":    []string{"name^3", "brand^2", "category", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	filter := []map[string]interface{}{}
	if !filters.IncludeArchived {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"isArchived": false}})
	}
	if filters.Category != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"category": filters.Category}})
	}
	if filters.FeaturedOnly {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"isFeatured": true}})
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"from": (filters.Page - 1) * filters.PageSize,
		"size": filters.PageSize,
	}

	res, err := uc.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, 0, err
	}

	products := make([]model.Product, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var p model.Product
		if err := json.Unmarshal(hit.Source, &p); err == nil {
			products = append(products, p)
		}
	}
	return products, res.Hits.Total.Value, nil
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}

	mapping := `{
		"mappings": {
			"properties": {
				"name": { "type": "text" },
				"brand": { "type": "text" },
				"description": { "type": "text" },
				"category": { "type": "keyword" },
				"slug": { "type": "keyword" },
				"isArchived": { "type": "boolean" },
				"isFeatured": { "type": "boolean" },
				"basePriceRetail": { "type": "double" },
				"createdAt": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, indexName, mapping)

	if err := uc.es.Index(ctx, indexName, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (uc *productUseCase) generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%x", listKeyPrefix, md5.Sum(data)), nil
}

func (uc *productUseCase) invalidateProductCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	keys, err := uc.cache.Client.Keys(ctx, listKeyPrefix+"*").Result()
	if err == nil && len(keys) > 0 {
		uc.cache.Client.Del(ctx, keys...)
	}
}

func (uc *productUseCase) ArchiveProduct(ctx context.Context, id string) error {
	p, err := uc.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Archive(ctx, id); err != nil {
		return servererrors.Persistence(err)
	}

	p.IsArchived = true
	uc.logger.Info("product archived", zap.String("product_id", id))
	uc.afterWrite(p)
	return nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return servererrors.Persistence(err)
	}
	if p == nil {
		return servererrors.NotFound(servererrors.ErrProductNotFound)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return servererrors.Persistence(err)
	}

	uc.logger.Warn("product deleted", zap.String("product_id", id))
	go uc.invalidateProductCache(context.Background())
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), indexName, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.Error(err))
			}
		}()
	}
	return nil
}
