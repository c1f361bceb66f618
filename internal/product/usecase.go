package product

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/catalog"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) (*dto.ProductPage, error)
	ListCategories(ctx context.Context) ([]string, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	ArchiveProduct(ctx context.Context, id string) error
	DeleteProduct(ctx context.Context, id string) error

	// QuoteProduct resolves selected to a SKU and prices it for class.
	QuoteProduct(ctx context.Context, id string, selected model.Selection, class model.BuyerClass) (*catalog.Quote, error)
}
