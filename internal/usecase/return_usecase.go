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

type ReturnUsecase struct {
	returnRepo domain.ReturnRepository
	orderRepo  domain.OrderRepository
	txManager  domain.TransactionManager
	notifier   domain.NotificationEmitter
	cfg        *config.Config
}

func NewReturnUsecase(
	returnRepo domain.ReturnRepository,
	orderRepo domain.OrderRepository,
	txManager domain.TransactionManager,
	notifier domain.NotificationEmitter,
	cfg *config.Config,
) *ReturnUsecase {
	return &ReturnUsecase{
		returnRepo: returnRepo,
		orderRepo:  orderRepo,
		txManager:  txManager,
		notifier:   notifier,
		cfg:        cfg,
	}
}

type ReturnItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Reason    string `json:"reason"`
}

type CreateReturnInput struct {
	OrderID      string              `json:"orderId"`
	Items        []ReturnItemInput   `json:"items"`
	Reason       string              `json:"reason"`
	RefundMethod string              `json:"refundMethod"`
	BankDetails  *domain.BankDetails `json:"bankDetails"`
}

// Create opens a return for a delivered order. The whole-day count since
// delivery must not exceed the window: day 7 is still eligible, day 8 is
// not. The order flips to Returned in the same transaction.
func (u *ReturnUsecase) Create(ctx context.Context, userID string, input CreateReturnInput) (*domain.ReturnRequest, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", domain.ErrValidation)
	}
	if !domain.ValidRefundMethod(input.RefundMethod) {
		return nil, fmt.Errorf("%w: unknown refund method %q", domain.ErrValidation, input.RefundMethod)
	}
	if input.RefundMethod == domain.RefundMethodBankTransfer {
		if input.BankDetails == nil ||
			strings.TrimSpace(input.BankDetails.AccountHolder) == "" ||
			strings.TrimSpace(input.BankDetails.AccountNumber) == "" ||
			strings.TrimSpace(input.BankDetails.BankName) == "" {
			return nil, fmt.Errorf("%w: bank details are required for bank transfer refunds", domain.ErrValidation)
		}
	} else {
		input.BankDetails = nil
	}

	order, err := u.orderRepo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: not your order", domain.ErrUnauthorized)
	}
	if order.Status != domain.OrderStatusDelivered {
		return nil, fmt.Errorf("%w: order is %s, returns need a delivered order", domain.ErrInvalidState, order.Status)
	}

	days := int(time.Since(order.DeliveryDate()).Hours() / 24)
	if days > u.cfg.ReturnWindowDays {
		return nil, fmt.Errorf("%w: delivered %d days ago, window is %d days", domain.ErrReturnWindowExpired, days, u.cfg.ReturnWindowDays)
	}

	req := &domain.ReturnRequest{
		OrderID:      order.ID,
		UserID:       userID,
		Reason:       input.Reason,
		RefundMethod: input.RefundMethod,
		BankDetails:  input.BankDetails,
		Status:       domain.ReturnStatusPending,
	}

	// Returned items must be lines of the order; name and price come from
	// the order snapshot, not the live catalog.
	for _, in := range input.Items {
		if in.Quantity < 1 {
			return nil, fmt.Errorf("%w: item quantity must be at least 1", domain.ErrValidation)
		}
		var matched *domain.OrderItem
		for i := range order.Items {
			oi := &order.Items[i]
			if oi.ProductID == in.ProductID && oi.Size == in.Size && oi.Color == in.Color {
				matched = oi
				break
			}
		}
		if matched == nil {
			return nil, fmt.Errorf("%w: product %s is not part of this order", domain.ErrValidation, in.ProductID)
		}
		if in.Quantity > matched.Quantity {
			return nil, fmt.Errorf("%w: cannot return more than the %d ordered", domain.ErrValidation, matched.Quantity)
		}

		req.Items = append(req.Items, domain.ReturnItem{
			ProductID: matched.ProductID,
			Name:      matched.Name,
			Price:     matched.Price,
			Quantity:  in.Quantity,
			Size:      matched.Size,
			Color:     matched.Color,
			Reason:    in.Reason,
		})
		req.RefundAmount += matched.Price * float64(in.Quantity)
	}

	err = u.txManager.Do(ctx, func(ctx context.Context) error {
		if err := u.returnRepo.Create(ctx, req); err != nil {
			return err
		}
		return u.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusReturned)
	})
	if err != nil {
		return nil, err
	}

	u.notifier.Emit(ctx, userID, domain.NotificationTypeReturn,
		"Return request received",
		fmt.Sprintf("Your return request for %.2f is pending review.", req.RefundAmount),
		&order.ID)

	logger.Info().
		Str("return_id", req.ID).
		Str("order_id", order.ID).
		Float64("refund_amount", req.RefundAmount).
		Msg("Return: request created")

	return req, nil
}

func (u *ReturnUsecase) GetMyReturns(ctx context.Context, userID string) ([]domain.ReturnRequest, error) {
	return u.returnRepo.GetByUserID(ctx, userID)
}

func (u *ReturnUsecase) Get(ctx context.Context, userID, role, id string) (*domain.ReturnRequest, error) {
	req, err := u.returnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID && role != "admin" {
		return nil, fmt.Errorf("%w: not your return request", domain.ErrUnauthorized)
	}
	return req, nil
}

func (u *ReturnUsecase) List(ctx context.Context, filter domain.ReturnFilter) ([]domain.ReturnRequest, int64, error) {
	return u.returnRepo.GetAll(ctx, filter)
}

type UpdateReturnInput struct {
	Status          string `json:"status"`
	AdminNotes      string `json:"adminNotes"`
	RejectionReason string `json:"rejectionReason"`
	TransactionID   string `json:"transactionId"`
}

var returnStatusDescriptions = map[domain.ReturnStatus]string{
	domain.ReturnStatusApproved:         "Return request approved",
	domain.ReturnStatusRejected:         "Return request rejected",
	domain.ReturnStatusPickupScheduled:  "Pickup scheduled",
	domain.ReturnStatusItemReceived:     "Item received at warehouse",
	domain.ReturnStatusRefundProcessing: "Refund is being processed",
	domain.ReturnStatusRefundCompleted:  "Refund completed",
}

// UpdateStatus is the admin-side return transition. A rejection needs a
// reason and reverts the order to Delivered; refund completion settles
// the parent order's payment.
func (u *ReturnUsecase) UpdateStatus(ctx context.Context, id string, input UpdateReturnInput) (*domain.ReturnRequest, error) {
	if !domain.ValidReturnStatus(input.Status) {
		return nil, fmt.Errorf("%w: unknown return status %q", domain.ErrValidation, input.Status)
	}
	next := domain.ReturnStatus(input.Status)

	req, err := u.returnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidState, req.Status, next)
	}
	if next == domain.ReturnStatusRejected && strings.TrimSpace(input.RejectionReason) == "" {
		return nil, fmt.Errorf("%w: a rejection reason is required", domain.ErrValidation)
	}

	description := returnStatusDescriptions[next]

	err = u.txManager.Do(ctx, func(ctx context.Context) error {
		if err := u.returnRepo.Transition(ctx, id, next, description); err != nil {
			return err
		}
		if input.AdminNotes != "" {
			if err := u.returnRepo.SetAdminNotes(ctx, id, input.AdminNotes); err != nil {
				return err
			}
		}

		switch next {
		case domain.ReturnStatusRejected:
			if err := u.returnRepo.SetRejectionReason(ctx, id, input.RejectionReason); err != nil {
				return err
			}
			// The return machine owns the Returned -> Delivered revert.
			return u.orderRepo.UpdateStatus(ctx, req.OrderID, domain.OrderStatusDelivered)
		case domain.ReturnStatusRefundCompleted:
			now := time.Now()
			refund := domain.PaymentRefund{
				State:         domain.RefundStateCompleted,
				Amount:        req.RefundAmount,
				TransactionID: input.TransactionID,
				CompletedAt:   &now,
			}
			if err := u.orderRepo.SaveRefund(ctx, req.OrderID, refund); err != nil {
				return err
			}
			return u.orderRepo.UpdatePaymentStatus(ctx, req.OrderID, domain.PaymentStatusRefunded)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	title := "Return update"
	message := description + "."
	if next == domain.ReturnStatusRejected {
		message = "Your return request was rejected: " + input.RejectionReason
	}
	if next == domain.ReturnStatusRefundCompleted {
		title = "Refund completed"
		message = fmt.Sprintf("Your refund of %.2f has been completed.", req.RefundAmount)
	}
	u.notifier.Emit(ctx, req.UserID, domain.NotificationTypeReturn, title, message, &req.OrderID)

	logger.Info().
		Str("return_id", id).
		Str("from", string(req.Status)).
		Str("to", input.Status).
		Msg("Return: status updated")

	return u.returnRepo.GetByID(ctx, id)
}

// Cancel withdraws a still-pending return and puts the order back to
// Delivered, so the buyer can open a fresh request within the window.
func (u *ReturnUsecase) Cancel(ctx context.Context, userID, id string) error {
	req, err := u.returnRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req.UserID != userID {
		return fmt.Errorf("%w: not your return request", domain.ErrUnauthorized)
	}
	if req.Status != domain.ReturnStatusPending {
		return fmt.Errorf("%w: only pending requests can be cancelled", domain.ErrInvalidState)
	}

	return u.txManager.Do(ctx, func(ctx context.Context) error {
		if err := u.returnRepo.Delete(ctx, id); err != nil {
			return err
		}
		return u.orderRepo.UpdateStatus(ctx, req.OrderID, domain.OrderStatusDelivered)
	})
}
