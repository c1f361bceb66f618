package product

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
)

type Repository interface {
	// Create and Update write the product row and its variants in one
	// transaction. Update replaces the variant list as a whole.
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error

	// FindByID and FindBySlug return nil when nothing matches.
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	ListCategories(ctx context.Context) ([]string, error)

	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error

	IsSlugUnique(ctx context.Context, slug, excludeID string) (bool, error)
	// IsSKUUnique reports whether none of skus is used by another product.
	IsSKUUnique(ctx context.Context, skus []string, excludeID string) (bool, error)
}
