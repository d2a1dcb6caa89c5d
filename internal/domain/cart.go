package domain

import (
	"context"
	"time"
)

// --- Cart Entities ---

// Cart is owned 1:1 by a user. Line items are keyed by
// (product, size, color); no two lines may share that triple.
type Cart struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Items      []CartItem `json:"items"`
	CouponCode *string    `json:"couponCode,omitempty"`
	Totals     CartTotals `json:"totals"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type CartItem struct {
	ID        string  `json:"id"`
	CartID    string  `json:"cartId"`
	ProductID string  `json:"productId"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
	Price     float64 `json:"price"` // Effective (live) price at read time
}

// CartTotals is the monetary breakdown computed at read time.
// Total = max(0, Subtotal - Discount + DeliveryCharge).
type CartTotals struct {
	Subtotal       float64 `json:"subtotal"`
	Discount       float64 `json:"discount"`
	DeliveryCharge float64 `json:"deliveryCharge"`
	Total          float64 `json:"total"`
}

// Matches reports whether the line identifies the same
// (product, size, color) triple.
func (i *CartItem) Matches(productID, size, color string) bool {
	return i.ProductID == productID && i.Size == size && i.Color == color
}

type CartRepository interface {
	GetByUserID(ctx context.Context, userID string) (*Cart, error)
	Create(ctx context.Context, cart *Cart) error
	// SaveItems replaces the cart's line items wholesale; used both for
	// mutations and for soft-consistency pruning of dangling lines.
	SaveItems(ctx context.Context, cartID string, items []CartItem) error
	SetCoupon(ctx context.Context, cartID string, code *string) error
	Clear(ctx context.Context, cartID string) error
}
