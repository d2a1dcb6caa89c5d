package postgres

import (
	"context"
	"errors"
	"fmt"

	"zelora-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type cartRepository struct {
	db *pgxpool.Pool
}

func NewCartRepository(db *pgxpool.Pool) domain.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	q := dbtx(ctx, r.db)

	var cart domain.Cart
	err := q.QueryRow(ctx, `
		SELECT id, user_id, coupon_code, created_at, updated_at
		FROM carts WHERE user_id = $1`,
		userID,
	).Scan(&cart.ID, &cart.UserID, &cart.CouponCode, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: cart", domain.ErrNotFound)
		}
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.size, ci.color
		FROM cart_items ci
		WHERE ci.cart_id = $1
		ORDER BY ci.id`,
		cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.Size, &item.Color); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return &cart, nil
}

func (r *cartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	q := dbtx(ctx, r.db)
	return q.QueryRow(ctx, `
		INSERT INTO carts (user_id) VALUES ($1)
		RETURNING id, created_at, updated_at`,
		cart.UserID,
	).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
}

// SaveItems rewrites the cart's lines wholesale. Mutations and dangling
// line pruning both go through here, so the persisted cart always matches
// what was returned to the caller.
func (r *cartRepository) SaveItems(ctx context.Context, cartID string, items []domain.CartItem) error {
	q := dbtx(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}

	for i := range items {
		item := &items[i]
		err := q.QueryRow(ctx, `
			INSERT INTO cart_items (cart_id, product_id, quantity, size, color)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			cartID, item.ProductID, item.Quantity, item.Size, item.Color,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
		item.CartID = cartID
	}

	_, err := q.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	return err
}

func (r *cartRepository) SetCoupon(ctx context.Context, cartID string, code *string) error {
	q := dbtx(ctx, r.db)
	_, err := q.Exec(ctx, `UPDATE carts SET coupon_code = $2, updated_at = now() WHERE id = $1`, cartID, code)
	return err
}

func (r *cartRepository) Clear(ctx context.Context, cartID string) error {
	q := dbtx(ctx, r.db)
	if _, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `UPDATE carts SET coupon_code = NULL, updated_at = now() WHERE id = $1`, cartID)
	return err
}
