package postgres

import (
	"context"
	"errors"
	"fmt"

	"zelora-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) domain.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, slug, description, price, sale_price, stock, images, sizes, colors, category, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.SalePrice, &p.Stock,
		&p.Images, &p.Sizes, &p.Colors, &p.Category, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product", domain.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := dbtx(ctx, r.db)
	return scanProduct(q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND is_active`, id))
}

func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	q := dbtx(ctx, r.db)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	var category, search *string
	if filter.Category != "" {
		category = &filter.Category
	}
	if filter.Search != "" {
		search = &filter.Search
	}

	rows, err := q.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE is_active
		  AND ($1::text IS NULL OR category = $1)
		  AND ($2::text IS NULL OR name ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		category, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	var count int64
	err = q.QueryRow(ctx, `
		SELECT count(*) FROM products
		WHERE is_active
		  AND ($1::text IS NULL OR category = $1)
		  AND ($2::text IS NULL OR name ILIKE '%' || $2 || '%')`,
		category, search,
	).Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	return products, count, nil
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	q := dbtx(ctx, r.db)
	return q.QueryRow(ctx, `
		INSERT INTO products (name, slug, description, price, sale_price, stock, images, sizes, colors, category, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		p.Name, p.Slug, p.Description, p.Price, p.SalePrice, p.Stock, p.Images, p.Sizes, p.Colors, p.Category, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	q := dbtx(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE products
		SET name = $2, slug = $3, description = $4, price = $5, sale_price = $6, stock = $7,
		    images = $8, sizes = $9, colors = $10, category = $11, is_active = $12, updated_at = now()
		WHERE id = $1`,
		p.ID, p.Name, p.Slug, p.Description, p.Price, p.SalePrice, p.Stock, p.Images, p.Sizes, p.Colors, p.Category, p.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product", domain.ErrNotFound)
	}
	return nil
}

// DecrementStockIfSufficient is the conditional decrement used at
// checkout: two concurrent orders for the last unit cannot both see a
// row-affected result.
func (r *productRepository) DecrementStockIfSufficient(ctx context.Context, id string, qty int) (bool, error) {
	q := dbtx(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`,
		id, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *productRepository) RestoreStock(ctx context.Context, id string, qty int) error {
	q := dbtx(ctx, r.db)
	_, err := q.Exec(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`,
		id, qty)
	return err
}

// --- Reviews ---

func (r *productRepository) CreateReview(ctx context.Context, review *domain.Review) error {
	q := dbtx(ctx, r.db)
	return q.QueryRow(ctx, `
		INSERT INTO reviews (product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		review.ProductID, review.UserID, review.Rating, review.Comment,
	).Scan(&review.ID, &review.CreatedAt)
}

func (r *productRepository) GetReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	q := dbtx(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT rv.id, rv.product_id, rv.user_id, u.first_name || ' ' || u.last_name, rv.rating, rv.comment, rv.created_at
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.product_id = $1
		ORDER BY rv.created_at DESC`,
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
