package usecase

import (
	"context"
	"fmt"
	"time"

	"zelora-backend/internal/domain"
	"zelora-backend/pkg/utils"
)

type CouponUsecase struct {
	couponRepo domain.CouponRepository
}

func NewCouponUsecase(couponRepo domain.CouponRepository) *CouponUsecase {
	return &CouponUsecase{couponRepo: couponRepo}
}

type CouponInput struct {
	Code              string     `json:"code"`
	Type              string     `json:"type"`
	Value             float64    `json:"value"`
	MinOrderAmount    float64    `json:"minOrderAmount"`
	MaxDiscountAmount *float64   `json:"maxDiscountAmount"`
	ValidFrom         *time.Time `json:"validFrom"`
	ValidUntil        *time.Time `json:"validUntil"`
	UsageLimit        int        `json:"usageLimit"`
	IsActive          *bool      `json:"isActive"`
}

func (in *CouponInput) validate() error {
	if utils.NormalizeCouponCode(in.Code) == "" {
		return fmt.Errorf("%w: code is required", domain.ErrValidation)
	}
	if in.Type != domain.CouponTypePercentage && in.Type != domain.CouponTypeFixed {
		return fmt.Errorf("%w: type must be percentage or fixed", domain.ErrValidation)
	}
	if in.Value <= 0 {
		return fmt.Errorf("%w: value must be positive", domain.ErrValidation)
	}
	if in.Type == domain.CouponTypePercentage && in.Value > 100 {
		return fmt.Errorf("%w: percentage value cannot exceed 100", domain.ErrValidation)
	}
	if in.MinOrderAmount < 0 || in.UsageLimit < 0 {
		return fmt.Errorf("%w: negative amounts not allowed", domain.ErrValidation)
	}
	if in.ValidFrom != nil && in.ValidUntil != nil && in.ValidUntil.Before(*in.ValidFrom) {
		return fmt.Errorf("%w: validUntil precedes validFrom", domain.ErrValidation)
	}
	return nil
}

func (u *CouponUsecase) Create(ctx context.Context, in CouponInput) (*domain.Coupon, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	from, until := now, now.AddDate(0, 1, 0)
	if in.ValidFrom != nil {
		from = *in.ValidFrom
	}
	if in.ValidUntil != nil {
		until = *in.ValidUntil
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	coupon := &domain.Coupon{
		Code:              utils.NormalizeCouponCode(in.Code),
		Type:              in.Type,
		Value:             in.Value,
		MinOrderAmount:    in.MinOrderAmount,
		MaxDiscountAmount: in.MaxDiscountAmount,
		ValidFrom:         from,
		ValidUntil:        until,
		UsageLimit:        in.UsageLimit,
		IsActive:          active,
	}
	if err := u.couponRepo.Create(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (u *CouponUsecase) Get(ctx context.Context, id string) (*domain.Coupon, error) {
	return u.couponRepo.GetByID(ctx, id)
}

func (u *CouponUsecase) List(ctx context.Context, page, limit int) ([]domain.Coupon, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return u.couponRepo.List(ctx, limit, (page-1)*limit)
}

func (u *CouponUsecase) Update(ctx context.Context, id string, in CouponInput) (*domain.Coupon, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	coupon, err := u.couponRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	coupon.Code = utils.NormalizeCouponCode(in.Code)
	coupon.Type = in.Type
	coupon.Value = in.Value
	coupon.MinOrderAmount = in.MinOrderAmount
	coupon.MaxDiscountAmount = in.MaxDiscountAmount
	if in.ValidFrom != nil {
		coupon.ValidFrom = *in.ValidFrom
	}
	if in.ValidUntil != nil {
		coupon.ValidUntil = *in.ValidUntil
	}
	coupon.UsageLimit = in.UsageLimit
	if in.IsActive != nil {
		coupon.IsActive = *in.IsActive
	}

	if err := u.couponRepo.Update(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (u *CouponUsecase) Delete(ctx context.Context, id string) error {
	return u.couponRepo.Delete(ctx, id)
}
