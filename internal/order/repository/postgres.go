package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/order/dto"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order) error {
	query := `
        INSERT INTO orders (
            id, user_id, order_items, shipping_address, payment_method, payment_result,
            items_price, shipping_price, tax_price, total_price,
            is_paid, paid_at, is_delivered, delivered_at, created_at, updated_at
        )
        VALUES (
            :id, :user_id, :order_items, :shipping_address, :payment_method, :payment_result,
            :items_price, :shipping_price, :tax_price, :total_price,
            :is_paid, :paid_at, :is_delivered, :delivered_at, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, o)
	return errors.Wrap(err, "insert order")
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find order")
	}
	return &o, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	var orders []model.Order
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.UserID != "" {
		conditions = append(conditions, "user_id = :user_id")
		args["user_id"] = f.UserID
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	rows, err := r.DB.NamedQueryContext(ctx, "SELECT count(*) FROM orders"+whereClause, args)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count orders")
	}
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			rows.Close()
			return nil, 0, errors.Wrap(err, "scan count")
		}
	}
	rows.Close()

	query := "SELECT * FROM orders" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "prepare orders query")
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &orders, args); err != nil {
		return nil, 0, errors.Wrap(err, "select orders")
	}
	return orders, count, nil
}

func (r *PGRepository) MarkPaid(ctx context.Context, id string, result model.PaymentResult, at time.Time) (*model.Order, error) {
	query := `
        UPDATE orders
        SET is_paid = true,
            paid_at = $2,
            payment_result = $3,
            updated_at = $2
        WHERE id = $1 AND is_paid = false
        RETURNING *
    `
	return r.transition(ctx, "mark order paid", query, id, at, result)
}

func (r *PGRepository) MarkDelivered(ctx context.Context, id string, at time.Time) (*model.Order, error) {
	query := `
        UPDATE orders
        SET is_delivered = true,
            delivered_at = $2,
            updated_at = $2
        WHERE id = $1 AND is_paid = true AND is_delivered = false
        RETURNING *
    `
	return r.transition(ctx, "mark order delivered", query, id, at)
}

// transition runs a conditional UPDATE ... RETURNING. No returned row means
// the guard did not hold.
func (r *PGRepository) transition(ctx context.Context, op, query string, args ...any) (*model.Order, error) {
	var o model.Order
	if err := r.DB.GetContext(ctx, &o, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, op)
	}
	return &o, nil
}
