package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// stockLevels lists every purchasable SKU: variants, plus products that have
// none under their own id.
const stockLevels = `
    SELECT v.product_id, p.name AS product_name, v.sku, v.count_in_stock
    FROM product_variants v
    JOIN products p ON p.id = v.product_id
    WHERE p.is_archived = false
    UNION ALL
    SELECT p.id AS product_id, p.name AS product_name, p.id AS sku, p.count_in_stock
    FROM products p
    WHERE p.is_archived = false
      AND NOT EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id)
`

func (r *PGRepository) GetStock(ctx context.Context, sku string) (*model.StockLevel, error) {
	var level model.StockLevel
	query := `SELECT * FROM (` + stockLevels + `) s WHERE s.sku = $1 LIMIT 1`

	err := r.DB.GetContext(ctx, &level, query, sku)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get stock")
	}
	return &level, nil
}

func (r *PGRepository) ListLowStock(ctx context.Context, f *dto.LowStockFilters) ([]model.StockLevel, int, error) {
	var items []model.StockLevel
	var count int

	base := `FROM (` + stockLevels + `) s WHERE s.count_in_stock <= $1`

	if err := r.DB.GetContext(ctx, &count, "SELECT count(*) "+base, f.Threshold); err != nil {
		return nil, 0, errors.Wrap(err, "count low stock")
	}

	query := "SELECT * " + base + " ORDER BY s.count_in_stock ASC, s.sku ASC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	if err := r.DB.SelectContext(ctx, &items, query, f.Threshold); err != nil {
		return nil, 0, errors.Wrap(err, "list low stock")
	}
	return items, count, nil
}

func (r *PGRepository) AdjustStockWithMovement(ctx context.Context, m *model.StockMovement) (bool, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return false, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	// 1. Guarded update; variants first, then variant-less products.
	var after int
	err = tx.GetContext(ctx, &after, `
        UPDATE product_variants
        SET count_in_stock = count_in_stock + $2
        WHERE sku = $1 AND count_in_stock + $2 >= 0
        RETURNING count_in_stock
    `, m.SKU, m.QuantityChange)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.GetContext(ctx, &after, `
            UPDATE products
            SET count_in_stock = count_in_stock + $2, updated_at = NOW()
            WHERE id = $1 AND count_in_stock + $2 >= 0
              AND NOT EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = products.id)
            RETURNING count_in_stock
        `, m.SKU, m.QuantityChange)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, servererrors.ErrInsufficientStock
		}
		return false, errors.Wrap(err, "update stock")
	}

	m.QuantityAfter = after
	m.QuantityBefore = after - m.QuantityChange

	// 2. Log movement; a duplicate reference means this was already applied.
	res, err := tx.NamedExecContext(ctx, `
        INSERT INTO stock_movements (
            id, sku, movement_type, quantity_change, quantity_before, quantity_after,
            reference_type, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :sku, :movement_type, :quantity_change, :quantity_before, :quantity_after,
            :reference_type, :reference_id, :notes, :created_by, :created_at
        )
        ON CONFLICT (reference_type, reference_id, sku) DO NOTHING
    `, m)
	if err != nil {
		return false, errors.Wrap(err, "log movement")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "log movement")
	}
	if n == 0 {
		return false, nil
	}

	return true, errors.Wrap(tx.Commit(), "commit stock")
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	var items []model.StockMovement
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.SKU != "" {
		conditions = append(conditions, "sku = :sku")
		args["sku"] = f.SKU
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	rows, err := r.DB.NamedQueryContext(ctx, "SELECT count(*) FROM stock_movements"+whereClause, args)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count movements")
	}
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			rows.Close()
			return nil, 0, errors.Wrap(err, "scan count")
		}
	}
	rows.Close()

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "prepare movements query")
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, 0, errors.Wrap(err, "select movements")
	}
	return items, count, nil
}
