package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertProductQuery = `
    INSERT INTO products (
        id, slug, name, brand, category, sub_category, description, images,
        base_price_retail, base_price_wholesale, count_in_stock, options,
        rating, num_reviews, is_featured, is_archived, created_at, updated_at
    )
    VALUES (
        :id, :slug, :name, :brand, :category, :sub_category, :description, :images,
        :base_price_retail, :base_price_wholesale, :count_in_stock, :options,
        :rating, :num_reviews, :is_featured, :is_archived, :created_at, :updated_at
    )
`

const insertVariantQuery = `
    INSERT INTO product_variants (
        id, product_id, sku, attributes, price_retail, price_wholesale,
        count_in_stock, image, position
    )
    VALUES (
        :id, :product_id, :sku, :attributes, :price_retail, :price_wholesale,
        :count_in_stock, :image, :position
    )
`

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertProductQuery, p); err != nil {
		return errors.Wrap(err, "insert product")
	}
	if err := insertVariants(ctx, tx, p); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "commit product")
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	query := `
        UPDATE products
        SET slug = :slug,
            name = :name,
            brand = :brand,
            category = :category,
            sub_category = :sub_category,
            description = :description,
            images = :images,
            base_price_retail = :base_price_retail,
            base_price_wholesale = :base_price_wholesale,
            count_in_stock = :count_in_stock,
            options = :options,
            is_featured = :is_featured,
            is_archived = :is_archived,
            updated_at = :updated_at
        WHERE id = :id
    `
	if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
		return errors.Wrap(err, "update product")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_variants WHERE product_id = $1`, p.ID); err != nil {
		return errors.Wrap(err, "delete variants")
	}
	if err := insertVariants(ctx, tx, p); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "commit product")
}

func insertVariants(ctx context.Context, tx *sqlx.Tx, p *model.Product) error {
	for i := range p.Variants {
		v := &p.Variants[i]
		v.ProductID = p.ID
		v.Position = i
		if _, err := tx.NamedExecContext(ctx, insertVariantQuery, v); err != nil {
			return errors.Wrapf(err, "insert variant %s", v.SKU)
		}
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return r.findOne(ctx, `SELECT * FROM products WHERE id = $1 LIMIT 1`, id)
}

func (r *PGRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return r.findOne(ctx, `SELECT * FROM products WHERE slug = $1 LIMIT 1`, slug)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg any) (*model.Product, error) {
	var product model.Product
	err := r.DB.GetContext(ctx, &product, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find product")
	}

	products := []model.Product{product}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// attachVariants loads the variants of all products with one query.
func (r *PGRepository) attachVariants(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	query, args, err := sqlx.In(`
        SELECT * FROM product_variants
        WHERE product_id IN (?)
        ORDER BY product_id, position
    `, ids)
	if err != nil {
		return errors.Wrap(err, "build variants query")
	}
	query = r.DB.Rebind(query)

	var variants []model.Variant
	if err := r.DB.SelectContext(ctx, &variants, query, args...); err != nil {
		return errors.Wrap(err, "select variants")
	}

	byProduct := make(map[string][]model.Variant, len(products))
	for _, v := range variants {
		byProduct[v.ProductID] = append(byProduct[v.ProductID], v)
	}
	for i := range products {
		products[i].Variants = byProduct[products[i].ID]
		if products[i].Variants == nil {
			products[i].Variants = []model.Variant{}
		}
	}
	return nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	var products []model.Product
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if !f.IncludeArchived {
		conditions = append(conditions, "is_archived = false")
	}
	if f.Category != "" {
		conditions = append(conditions, "category = :category")
		args["category"] = f.Category
	}
	if f.FeaturedOnly {
		conditions = append(conditions, "is_featured = true")
	}
	if f.Keyword != "" {
		conditions = append(conditions, "(name ILIKE :keyword OR brand ILIKE :keyword)")
		args["keyword"] = "%" + f.Keyword + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM products" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			rows.Close()
			return nil, 0, errors.Wrap(err, "scan count")
		}
	}
	rows.Close()

	query := fmt.Sprintf("SELECT * FROM products%s ORDER BY created_at DESC", whereClause)
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "prepare products query")
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &products, args); err != nil {
		return nil, 0, errors.Wrap(err, "select products")
	}

	if err := r.attachVariants(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, count, nil
}

func (r *PGRepository) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.DB.SelectContext(ctx, &categories,
		`SELECT DISTINCT category FROM products WHERE is_archived = false ORDER BY category`)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return categories, nil
}

func (r *PGRepository) Archive(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE products SET is_archived = true, updated_at = NOW() WHERE id = $1`, id)
	return errors.Wrap(err, "archive product")
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	// product_variants rows go with ON DELETE CASCADE
	_, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	return errors.Wrap(err, "delete product")
}

func (r *PGRepository) IsSlugUnique(ctx context.Context, slug, excludeID string) (bool, error) {
	var count int
	query := `SELECT count(*) FROM products WHERE slug = $1`
	args := []interface{}{slug}
	if excludeID != "" {
		query += ` AND id != $2`
		args = append(args, excludeID)
	}

	if err := r.DB.GetContext(ctx, &count, query, args...); err != nil {
		return false, errors.Wrap(err, "check slug")
	}
	return count == 0, nil
}

func (r *PGRepository) IsSKUUnique(ctx context.Context, skus []string, excludeID string) (bool, error) {
	if len(skus) == 0 {
		return true, nil
	}

	query, args, err := sqlx.In(`SELECT count(*) FROM product_variants WHERE sku IN (?) AND product_id != ?`, skus, excludeID)
	if err != nil {
		return false, errors.Wrap(err, "build sku query")
	}

	var count int
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(query), args...); err != nil {
		return false, errors.Wrap(err, "check sku")
	}
	return count == 0, nil
}
