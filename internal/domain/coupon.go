package domain

import (
	"context"
	"time"
)

type Coupon struct {
	ID                string     `json:"id"`
	Code              string     `json:"code"` // stored upper-cased
	Type              string     `json:"type"` // percentage, fixed
	Value             float64    `json:"value"`
	MinOrderAmount    float64    `json:"minOrderAmount"`
	MaxDiscountAmount *float64   `json:"maxDiscountAmount,omitempty"` // percentage type only
	ValidFrom         time.Time  `json:"validFrom"`
	ValidUntil        time.Time  `json:"validUntil"`
	UsageLimit        int        `json:"usageLimit"` // 0 = unlimited
	UsedCount         int        `json:"usedCount"`
	IsActive          bool       `json:"isActive"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	DeletedAt         *time.Time `json:"-"`
}

// Usable reports whether the coupon may be applied at the given instant:
// active, inside [ValidFrom, ValidUntil], and under its usage cap.
func (c *Coupon) Usable(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return false
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return false
	}
	return true
}

// DiscountFor computes the discount against a subtotal. Percentage coupons
// are capped at MaxDiscountAmount when set; fixed coupons return their
// value and the caller clamps at total computation.
func (c *Coupon) DiscountFor(subtotal float64) float64 {
	if c.Type == CouponTypePercentage {
		discount := subtotal * c.Value / 100
		if c.MaxDiscountAmount != nil && discount > *c.MaxDiscountAmount {
			discount = *c.MaxDiscountAmount
		}
		return discount
	}
	return c.Value
}

type CouponRepository interface {
	Create(ctx context.Context, coupon *Coupon) error
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	GetByID(ctx context.Context, id string) (*Coupon, error)
	List(ctx context.Context, limit, offset int) ([]Coupon, int64, error)
	Update(ctx context.Context, coupon *Coupon) error
	Delete(ctx context.Context, id string) error

	// IncrementUsageIfBelowLimit atomically bumps used_count and reports
	// whether the increment happened; false means the cap was reached by
	// a concurrent confirmation.
	IncrementUsageIfBelowLimit(ctx context.Context, id string) (bool, error)
}
