package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zelora-backend/config"
	"zelora-backend/internal/domain"
	"zelora-backend/pkg/logger"
	"zelora-backend/pkg/utils"
)

type CartUsecase struct {
	cartRepo    domain.CartRepository
	productRepo domain.ProductRepository
	couponRepo  domain.CouponRepository
	cfg         *config.Config
}

func NewCartUsecase(
	cartRepo domain.CartRepository,
	productRepo domain.ProductRepository,
	couponRepo domain.CouponRepository,
	cfg *config.Config,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		cfg:         cfg,
	}
}

func (u *CartUsecase) getOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := u.cartRepo.GetByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	cart = &domain.Cart{UserID: userID}
	if err := u.cartRepo.Create(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// resolve hydrates cart lines against the live catalog. Lines whose
// product has been removed or deactivated are pruned and the pruned cart
// is persisted, so the caller always sees a cart it could check out.
func (u *CartUsecase) resolve(ctx context.Context, cart *domain.Cart) error {
	kept := cart.Items[:0]
	pruned := false

	for _, item := range cart.Items {
		product, err := u.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				pruned = true
				continue
			}
			return err
		}
		item.Product = *product
		item.Price = product.EffectivePrice()
		kept = append(kept, item)
	}
	cart.Items = kept

	if pruned {
		if err := u.cartRepo.SaveItems(ctx, cart.ID, cart.Items); err != nil {
			return err
		}
	}

	return u.computeTotals(ctx, cart)
}

func (u *CartUsecase) computeTotals(ctx context.Context, cart *domain.Cart) error {
	var subtotal float64
	for _, item := range cart.Items {
		subtotal += item.Price * float64(item.Quantity)
	}

	var discount float64
	if cart.CouponCode != nil && len(cart.Items) > 0 {
		coupon, err := u.couponRepo.GetByCode(ctx, *cart.CouponCode)
		switch {
		case err != nil && !errors.Is(err, domain.ErrCouponNotFound):
			return err
		case err == nil && coupon.Usable(time.Now()) && subtotal >= coupon.MinOrderAmount:
			discount = coupon.DiscountFor(subtotal)
		default:
			// Stale coupon: contributes no discount but stays attached so
			// the client can show why and let the user replace it.
			logger.Debug().Str("code", *cart.CouponCode).Msg("Cart: attached coupon no longer applicable")
		}
	}

	var delivery float64
	if len(cart.Items) > 0 && subtotal < u.cfg.FreeDeliveryThreshold {
		delivery = u.cfg.DeliveryCharge
	}

	total := subtotal - discount + delivery
	if total < 0 {
		total = 0
	}

	cart.Totals = domain.CartTotals{
		Subtotal:       subtotal,
		Discount:       discount,
		DeliveryCharge: delivery,
		Total:          total,
	}
	return nil
}

func (u *CartUsecase) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := u.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.resolve(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (u *CartUsecase) AddItem(ctx context.Context, userID, productID string, quantity int, size, color string) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}
	if quantity > u.cfg.MaxCartQuantity {
		return nil, fmt.Errorf("%w: quantity exceeds limit of %d", domain.ErrValidation, u.cfg.MaxCartQuantity)
	}

	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if size != "" && len(product.Sizes) > 0 && !contains(product.Sizes, size) {
		return nil, fmt.Errorf("%w: size %q not available", domain.ErrValidation, size)
	}
	if color != "" && len(product.Colors) > 0 && !contains(product.Colors, color) {
		return nil, fmt.Errorf("%w: color %q not available", domain.ErrValidation, color)
	}

	cart, err := u.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Same (product, size, color) merges into the existing line; the stock
	// check covers the combined quantity.
	merged := false
	for i := range cart.Items {
		if cart.Items[i].Matches(productID, size, color) {
			newQty := cart.Items[i].Quantity + quantity
			if product.Stock < newQty {
				return nil, fmt.Errorf("%w: %s", domain.ErrOutOfStock, product.Name)
			}
			cart.Items[i].Quantity = newQty
			merged = true
			break
		}
	}
	if !merged {
		if product.Stock < quantity {
			return nil, fmt.Errorf("%w: %s", domain.ErrOutOfStock, product.Name)
		}
		cart.Items = append(cart.Items, domain.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
			Size:      size,
			Color:     color,
		})
	}

	if err := u.cartRepo.SaveItems(ctx, cart.ID, cart.Items); err != nil {
		return nil, err
	}
	if err := u.resolve(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID, productID string, quantity int, size, color string) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}
	if quantity > u.cfg.MaxCartQuantity {
		return nil, fmt.Errorf("%w: quantity exceeds limit of %d", domain.ErrValidation, u.cfg.MaxCartQuantity)
	}

	cart, err := u.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].Matches(productID, size, color) {
			product, err := u.productRepo.GetByID(ctx, productID)
			if err != nil {
				return nil, err
			}
			if product.Stock < quantity {
				return nil, fmt.Errorf("%w: %s", domain.ErrOutOfStock, product.Name)
			}
			cart.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, domain.ErrItemNotFound
	}

	if err := u.cartRepo.SaveItems(ctx, cart.ID, cart.Items); err != nil {
		return nil, err
	}
	if err := u.resolve(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (u *CartUsecase) RemoveItem(ctx context.Context, userID, productID, size, color string) (*domain.Cart, error) {
	cart, err := u.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].Matches(productID, size, color) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, domain.ErrItemNotFound
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	if err := u.cartRepo.SaveItems(ctx, cart.ID, cart.Items); err != nil {
		return nil, err
	}
	if err := u.resolve(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ApplyCoupon validates and associates the coupon with the cart. Usage is
// NOT consumed here; the counter moves only at order confirmation.
func (u *CartUsecase) ApplyCoupon(ctx context.Context, userID, code string) (*domain.Cart, error) {
	code = utils.NormalizeCouponCode(code)
	if code == "" {
		return nil, fmt.Errorf("%w: coupon code is required", domain.ErrValidation)
	}

	coupon, err := u.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !coupon.Usable(time.Now()) {
		return nil, domain.ErrCouponExpired
	}

	cart, err := u.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.resolve(ctx, cart); err != nil {
		return nil, err
	}
	if cart.Totals.Subtotal < coupon.MinOrderAmount {
		return nil, fmt.Errorf("%w: requires a minimum order of %.2f", domain.ErrMinimumOrderNotMet, coupon.MinOrderAmount)
	}

	if err := u.cartRepo.SetCoupon(ctx, cart.ID, &code); err != nil {
		return nil, err
	}
	cart.CouponCode = &code
	if err := u.computeTotals(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (u *CartUsecase) RemoveCoupon(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := u.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.cartRepo.SetCoupon(ctx, cart.ID, nil); err != nil {
		return nil, err
	}
	cart.CouponCode = nil
	if err := u.resolve(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
