package usecase

import (
	"context"
	"fmt"
	"strings"

	"zelora-backend/config"
	"zelora-backend/internal/domain"
	"zelora-backend/pkg/cache"
	"zelora-backend/pkg/utils"
)

type CatalogUsecase struct {
	productRepo domain.ProductRepository
	orderRepo   domain.OrderRepository
	cache       cache.CacheService
	cfg         *config.Config
}

func NewCatalogUsecase(
	productRepo domain.ProductRepository,
	orderRepo domain.OrderRepository,
	cacheSvc cache.CacheService,
	cfg *config.Config,
) *CatalogUsecase {
	return &CatalogUsecase{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		cache:       cacheSvc,
		cfg:         cfg,
	}
}

func productCacheKey(id string) string {
	return "product:" + id
}

func (u *CatalogUsecase) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if cached, ok := u.cache.Get(productCacheKey(id)); ok {
		if p, ok := cached.(*domain.Product); ok {
			return p, nil
		}
	}

	product, err := u.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.cache.Set(productCacheKey(id), product, u.cfg.CacheProductTTL)
	return product, nil
}

func (u *CatalogUsecase) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	return u.productRepo.List(ctx, filter)
}

type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	SalePrice   *float64 `json:"salePrice"`
	Stock       int      `json:"stock"`
	Images      []string `json:"images"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	Category    string   `json:"category"`
	IsActive    *bool    `json:"isActive"`
}

func (in *ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if in.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	if in.SalePrice != nil && (*in.SalePrice <= 0 || *in.SalePrice >= in.Price) {
		return fmt.Errorf("%w: sale price must be positive and below the regular price", domain.ErrValidation)
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", domain.ErrValidation)
	}
	return nil
}

func (u *CatalogUsecase) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	product := &domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Slug:        utils.GenerateSlug(in.Name),
		Description: in.Description,
		Price:       in.Price,
		SalePrice:   in.SalePrice,
		Stock:       in.Stock,
		Images:      in.Images,
		Sizes:       in.Sizes,
		Colors:      in.Colors,
		Category:    in.Category,
		IsActive:    active,
	}
	if err := u.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (u *CatalogUsecase) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product, err := u.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(in.Name)
	product.Slug = utils.GenerateSlug(in.Name)
	product.Description = in.Description
	product.Price = in.Price
	product.SalePrice = in.SalePrice
	product.Stock = in.Stock
	product.Images = in.Images
	product.Sizes = in.Sizes
	product.Colors = in.Colors
	product.Category = in.Category
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}

	if err := u.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	u.cache.Delete(productCacheKey(id))
	return product, nil
}

// AddReview accepts reviews only from buyers with a delivered order
// containing the product.
func (u *CatalogUsecase) AddReview(ctx context.Context, userID, productID string, rating int, comment string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}

	if _, err := u.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	purchased, err := u.orderRepo.HasPurchasedProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, fmt.Errorf("%w: only verified buyers can review this product", domain.ErrUnauthorized)
	}

	review := &domain.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := u.productRepo.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (u *CatalogUsecase) GetReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	return u.productRepo.GetReviews(ctx, productID)
}
