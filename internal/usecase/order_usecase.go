package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"zelora-backend/config"
	"zelora-backend/internal/domain"
	"zelora-backend/pkg/logger"
)

type OrderUsecase struct {
	orderRepo   domain.OrderRepository
	productRepo domain.ProductRepository
	txManager   domain.TransactionManager
	notifier    domain.NotificationEmitter
	cfg         *config.Config
}

func NewOrderUsecase(
	orderRepo domain.OrderRepository,
	productRepo domain.ProductRepository,
	txManager domain.TransactionManager,
	notifier domain.NotificationEmitter,
	cfg *config.Config,
) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		txManager:   txManager,
		notifier:    notifier,
		cfg:         cfg,
	}
}

func (u *OrderUsecase) GetMyOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return u.orderRepo.GetByUserID(ctx, userID)
}

// Get returns the order if the caller owns it or is an admin.
func (u *OrderUsecase) Get(ctx context.Context, userID, role, orderID string) (*domain.Order, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID && role != "admin" {
		return nil, fmt.Errorf("%w: not your order", domain.ErrUnauthorized)
	}
	return order, nil
}

func (u *OrderUsecase) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	return u.orderRepo.GetAll(ctx, filter)
}

// Cancel stops an order that has not yet shipped. Stock goes back, and a
// prepaid order is flagged for bank details so the refund can be wired;
// the payment status moves to refund_requested only once those details
// arrive.
func (u *OrderUsecase) Cancel(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: not your order", domain.ErrUnauthorized)
	}
	if !order.Status.Cancellable() {
		return nil, fmt.Errorf("%w: order is %s", domain.ErrCancellationWindowClosed, order.Status)
	}

	needsBankDetails := order.PaymentMethod == domain.PaymentMethodOnline &&
		order.PaymentStatus == domain.PaymentStatusPaid

	err = u.txManager.Do(ctx, func(ctx context.Context) error {
		if err := u.orderRepo.UpdateStatus(ctx, orderID, domain.OrderStatusCancelled); err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := u.productRepo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if needsBankDetails {
			return u.orderRepo.SetRequiresBankDetails(ctx, orderID, true)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	msg := "Your order has been cancelled."
	if needsBankDetails {
		msg = "Your order has been cancelled. Please submit bank details to receive your refund."
	}
	u.notifier.Emit(ctx, userID, domain.NotificationTypeOrder, "Order cancelled", msg, &orderID)

	logger.Info().Str("order_id", orderID).Bool("refund_pending", needsBankDetails).Msg("Order: cancelled by buyer")

	return u.orderRepo.GetByID(ctx, orderID)
}

// SubmitRefundBankDetails records where a prepaid refund should be wired
// and moves the payment into refund_requested.
func (u *OrderUsecase) SubmitRefundBankDetails(ctx context.Context, userID, orderID string, details domain.BankDetails) (*domain.Order, error) {
	if strings.TrimSpace(details.AccountHolder) == "" ||
		strings.TrimSpace(details.AccountNumber) == "" ||
		strings.TrimSpace(details.BankName) == "" {
		return nil, fmt.Errorf("%w: account holder, account number and bank name are required", domain.ErrValidation)
	}

	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: not your order", domain.ErrUnauthorized)
	}
	if !order.RequiresBankDetails {
		return nil, fmt.Errorf("%w: order is not awaiting bank details", domain.ErrInvalidState)
	}

	now := time.Now()
	refund := domain.PaymentRefund{
		State:       domain.RefundStateRequested,
		BankDetails: &details,
		Amount:      order.Total,
		InitiatedAt: &now,
	}

	err = u.txManager.Do(ctx, func(ctx context.Context) error {
		if err := u.orderRepo.SaveRefund(ctx, orderID, refund); err != nil {
			return err
		}
		if err := u.orderRepo.UpdatePaymentStatus(ctx, orderID, domain.PaymentStatusRefundRequested); err != nil {
			return err
		}
		return u.orderRepo.SetRequiresBankDetails(ctx, orderID, false)
	})
	if err != nil {
		return nil, err
	}

	u.notifier.Emit(ctx, userID, domain.NotificationTypePayment,
		"Refund requested",
		fmt.Sprintf("Your refund of %.2f has been initiated.", order.Total),
		&orderID)

	return u.orderRepo.GetByID(ctx, orderID)
}

// UpdateStatus is the admin transition. Every legal move appends a
// delivery-log entry; Delivered stamps the delivery time and settles a
// pending COD payment.
func (u *OrderUsecase) UpdateStatus(ctx context.Context, orderID, status, location, description string) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	next := domain.OrderStatus(status)

	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidState, order.Status, next)
	}

	if description == "" {
		description = fmt.Sprintf("Order %s", strings.ReplaceAll(status, "_", " "))
	}

	err = u.txManager.Do(ctx, func(ctx context.Context) error {
		if err := u.orderRepo.UpdateStatus(ctx, orderID, next); err != nil {
			return err
		}
		if err := u.orderRepo.AddDeliveryUpdate(ctx, &domain.DeliveryUpdate{
			OrderID:     orderID,
			Status:      status,
			Location:    location,
			Description: description,
		}); err != nil {
			return err
		}

		switch next {
		case domain.OrderStatusDelivered:
			if err := u.orderRepo.MarkDelivered(ctx, orderID, time.Now()); err != nil {
				return err
			}
			if order.PaymentMethod == domain.PaymentMethodCOD && order.PaymentStatus == domain.PaymentStatusPending {
				return u.orderRepo.UpdatePaymentStatus(ctx, orderID, domain.PaymentStatusPaid)
			}
		case domain.OrderStatusCancelled:
			for _, item := range order.Items {
				if err := u.productRepo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.notifier.Emit(ctx, order.UserID, domain.NotificationTypeOrder,
		"Order update",
		fmt.Sprintf("Your order is now %s.", strings.ReplaceAll(status, "_", " ")),
		&orderID)

	logger.Info().
		Str("order_id", orderID).
		Str("from", string(order.Status)).
		Str("to", status).
		Msg("Order: status updated")

	return u.orderRepo.GetByID(ctx, orderID)
}

// adminPaymentStatuses limits direct admin edits; refund_requested is
// reachable only through the bank-details flow.
var adminPaymentStatuses = map[domain.PaymentStatus]bool{
	domain.PaymentStatusPending:  true,
	domain.PaymentStatusPaid:     true,
	domain.PaymentStatusFailed:   true,
	domain.PaymentStatusRefunded: true,
}

func (u *OrderUsecase) UpdatePaymentStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	if !domain.ValidPaymentStatus(status) || !adminPaymentStatuses[domain.PaymentStatus(status)] {
		return nil, fmt.Errorf("%w: payment status %q not allowed", domain.ErrValidation, status)
	}

	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := u.orderRepo.UpdatePaymentStatus(ctx, orderID, domain.PaymentStatus(status)); err != nil {
		return nil, err
	}

	u.notifier.Emit(ctx, order.UserID, domain.NotificationTypePayment,
		"Payment update",
		fmt.Sprintf("Payment for your order is now %s.", strings.ReplaceAll(status, "_", " ")),
		&orderID)

	return u.orderRepo.GetByID(ctx, orderID)
}

// AddDeliveryUpdate appends a free-form tracking entry without moving the
// order status.
func (u *OrderUsecase) AddDeliveryUpdate(ctx context.Context, orderID, status, location, description string) (*domain.DeliveryUpdate, error) {
	if strings.TrimSpace(status) == "" {
		return nil, fmt.Errorf("%w: status is required", domain.ErrValidation)
	}
	if _, err := u.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}

	update := &domain.DeliveryUpdate{
		OrderID:     orderID,
		Status:      status,
		Location:    location,
		Description: description,
	}
	if err := u.orderRepo.AddDeliveryUpdate(ctx, update); err != nil {
		return nil, err
	}
	return update, nil
}
