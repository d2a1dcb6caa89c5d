package postgres

import (
	"context"
	"errors"
	"fmt"

	"zelora-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type couponRepository struct {
	db *pgxpool.Pool
}

func NewCouponRepository(db *pgxpool.Pool) domain.CouponRepository {
	return &couponRepository{db: db}
}

const couponColumns = `id, code, type, value, min_order_amount, max_discount_amount, valid_from, valid_until, usage_limit, used_count, is_active, created_at, updated_at`

func scanCoupon(row pgx.Row) (*domain.Coupon, error) {
	var c domain.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.Type, &c.Value, &c.MinOrderAmount, &c.MaxDiscountAmount,
		&c.ValidFrom, &c.ValidUntil, &c.UsageLimit, &c.UsedCount, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: coupon", domain.ErrCouponNotFound)
		}
		return nil, err
	}
	return &c, nil
}

func (r *couponRepository) Create(ctx context.Context, c *domain.Coupon) error {
	q := dbtx(ctx, r.db)
	return q.QueryRow(ctx, `
		INSERT INTO coupons (code, type, value, min_order_amount, max_discount_amount, valid_from, valid_until, usage_limit, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, used_count, created_at, updated_at`,
		c.Code, c.Type, c.Value, c.MinOrderAmount, c.MaxDiscountAmount, c.ValidFrom, c.ValidUntil, c.UsageLimit, c.IsActive,
	).Scan(&c.ID, &c.UsedCount, &c.CreatedAt, &c.UpdatedAt)
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	q := dbtx(ctx, r.db)
	return scanCoupon(q.QueryRow(ctx, `
		SELECT `+couponColumns+` FROM coupons WHERE code = $1 AND deleted_at IS NULL`, code))
}

func (r *couponRepository) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	q := dbtx(ctx, r.db)
	return scanCoupon(q.QueryRow(ctx, `
		SELECT `+couponColumns+` FROM coupons WHERE id = $1 AND deleted_at IS NULL`, id))
}

func (r *couponRepository) List(ctx context.Context, limit, offset int) ([]domain.Coupon, int64, error) {
	q := dbtx(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT `+couponColumns+`
		FROM coupons
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, 0, err
		}
		coupons = append(coupons, *c)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	var count int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM coupons WHERE deleted_at IS NULL`).Scan(&count); err != nil {
		return nil, 0, err
	}
	return coupons, count, nil
}

func (r *couponRepository) Update(ctx context.Context, c *domain.Coupon) error {
	q := dbtx(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE coupons
		SET code = $2, type = $3, value = $4, min_order_amount = $5, max_discount_amount = $6,
		    valid_from = $7, valid_until = $8, usage_limit = $9, is_active = $10, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		c.ID, c.Code, c.Type, c.Value, c.MinOrderAmount, c.MaxDiscountAmount, c.ValidFrom, c.ValidUntil, c.UsageLimit, c.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: coupon", domain.ErrCouponNotFound)
	}
	return nil
}

func (r *couponRepository) Delete(ctx context.Context, id string) error {
	q := dbtx(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE coupons SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: coupon", domain.ErrCouponNotFound)
	}
	return nil
}

// IncrementUsageIfBelowLimit runs at order-confirmation time, not at
// apply-to-cart time. The WHERE clause is the guard against a concurrent
// confirmation pushing used_count past usage_limit.
func (r *couponRepository) IncrementUsageIfBelowLimit(ctx context.Context, id string) (bool, error) {
	q := dbtx(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE coupons
		SET used_count = used_count + 1, updated_at = now()
		WHERE id = $1 AND is_active AND (usage_limit = 0 OR used_count < usage_limit)`,
		id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
