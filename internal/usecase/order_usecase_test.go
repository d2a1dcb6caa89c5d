package usecase

import (
	"context"
	"testing"
	"time"

	"zelora-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orderStore keeps one order in memory and applies repo writes to it, so
// tests can assert the combined effect of a transition.
type orderStore struct {
	*mockOrderRepo
	order *domain.Order
}

func newOrderStore(order *domain.Order) *orderStore {
	s := &orderStore{order: order, mockOrderRepo: &mockOrderRepo{}}
	s.GetByIDFn = func(ctx context.Context, id string) (*domain.Order, error) {
		if id != order.ID {
			return nil, domain.ErrNotFound
		}
		copied := *order
		return &copied, nil
	}
	s.UpdateStatusFn = func(ctx context.Context, id string, status domain.OrderStatus) error {
		order.Status = status
		return nil
	}
	s.UpdatePaymentStatusFn = func(ctx context.Context, id string, status domain.PaymentStatus) error {
		order.PaymentStatus = status
		return nil
	}
	s.MarkDeliveredFn = func(ctx context.Context, id string, at time.Time) error {
		order.DeliveredAt = &at
		return nil
	}
	s.SetRequiresBankDetailsFn = func(ctx context.Context, id string, v bool) error {
		order.RequiresBankDetails = v
		return nil
	}
	s.SaveRefundFn = func(ctx context.Context, id string, refund domain.PaymentRefund) error {
		order.Refund = refund
		return nil
	}
	s.AddDeliveryUpdateFn = func(ctx context.Context, update *domain.DeliveryUpdate) error {
		update.ID = "du-1"
		order.DeliveryUpdates = append(order.DeliveryUpdates, *update)
		return nil
	}
	return s
}

func baseOrder(status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:            "order-1",
		UserID:        "user-1",
		Status:        status,
		PaymentMethod: domain.PaymentMethodCOD,
		PaymentStatus: domain.PaymentStatusPending,
		Total:         500,
		Items: []domain.OrderItem{
			{ID: "oi1", OrderID: "order-1", ProductID: "p1", Name: "Tee", Price: 250, Quantity: 2},
		},
	}
}

func newOrderUsecase(store *orderStore) (*OrderUsecase, *mockNotifier) {
	notifier := &mockNotifier{}
	uc := NewOrderUsecase(store, &mockProductRepo{}, &mockTxManager{}, notifier, testConfig())
	return uc, notifier
}

func TestOrderUpdateStatus_LegalAndIllegalMoves(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.OrderStatus
		to      string
		wantErr error
	}{
		{name: "placed to confirmed", from: domain.OrderStatusPlaced, to: "confirmed"},
		{name: "confirmed to processing", from: domain.OrderStatusConfirmed, to: "processing"},
		{name: "shipped to out for delivery", from: domain.OrderStatusShipped, to: "out_for_delivery"},
		{name: "out for delivery to delivered", from: domain.OrderStatusOutForDelivery, to: "delivered"},
		{name: "placed cannot skip to shipped", from: domain.OrderStatusPlaced, to: "shipped", wantErr: domain.ErrInvalidState},
		{name: "shipped cannot cancel", from: domain.OrderStatusShipped, to: "cancelled", wantErr: domain.ErrInvalidState},
		{name: "delivered cannot regress", from: domain.OrderStatusDelivered, to: "processing", wantErr: domain.ErrInvalidState},
		{name: "cancelled is terminal", from: domain.OrderStatusCancelled, to: "confirmed", wantErr: domain.ErrInvalidState},
		{name: "unknown status", from: domain.OrderStatusPlaced, to: "teleported", wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newOrderStore(baseOrder(tt.from))
			uc, notifier := newOrderUsecase(store)

			got, err := uc.UpdateStatus(context.Background(), "order-1", tt.to, "", "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, store.order.Status, "status must be unchanged on a rejected move")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.OrderStatus(tt.to), got.Status)
			require.Len(t, store.order.DeliveryUpdates, 1, "transition appends a delivery-log entry")
			assert.Equal(t, tt.to, store.order.DeliveryUpdates[0].Status)
			assert.Len(t, notifier.Emitted, 1)
		})
	}
}

func TestOrderUpdateStatus_DeliveredStampsAndSettlesCOD(t *testing.T) {
	store := newOrderStore(baseOrder(domain.OrderStatusOutForDelivery))
	uc, _ := newOrderUsecase(store)

	got, err := uc.UpdateStatus(context.Background(), "order-1", "delivered", "", "")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusDelivered, got.Status)
	require.NotNil(t, got.DeliveredAt)
	assert.Equal(t, domain.PaymentStatusPaid, got.PaymentStatus, "COD settles on delivery")
}

func TestOrderUpdateStatus_DeliveredKeepsOnlinePaymentUntouched(t *testing.T) {
	order := baseOrder(domain.OrderStatusOutForDelivery)
	order.PaymentMethod = domain.PaymentMethodOnline
	order.PaymentStatus = domain.PaymentStatusPaid
	store := newOrderStore(order)
	uc, _ := newOrderUsecase(store)

	got, err := uc.UpdateStatus(context.Background(), "order-1", "delivered", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, got.PaymentStatus)
}

func TestOrderCancel_WindowAndStockRestore(t *testing.T) {
	cancellable := []domain.OrderStatus{
		domain.OrderStatusPlaced,
		domain.OrderStatusConfirmed,
		domain.OrderStatusProcessing,
	}
	for _, status := range cancellable {
		t.Run(string(status), func(t *testing.T) {
			store := newOrderStore(baseOrder(status))
			restored := map[string]int{}
			products := &mockProductRepo{
				RestoreStockFn: func(ctx context.Context, id string, qty int) error {
					restored[id] += qty
					return nil
				},
			}
			notifier := &mockNotifier{}
			uc := NewOrderUsecase(store, products, &mockTxManager{}, notifier, testConfig())

			got, err := uc.Cancel(context.Background(), "user-1", "order-1")
			require.NoError(t, err)
			assert.Equal(t, domain.OrderStatusCancelled, got.Status)
			assert.Equal(t, 2, restored["p1"])
		})
	}

	closed := []domain.OrderStatus{
		domain.OrderStatusShipped,
		domain.OrderStatusOutForDelivery,
		domain.OrderStatusDelivered,
		domain.OrderStatusCancelled,
		domain.OrderStatusReturned,
	}
	for _, status := range closed {
		t.Run(string(status)+" closed", func(t *testing.T) {
			store := newOrderStore(baseOrder(status))
			uc, _ := newOrderUsecase(store)

			_, err := uc.Cancel(context.Background(), "user-1", "order-1")
			assert.ErrorIs(t, err, domain.ErrCancellationWindowClosed)
		})
	}
}

func TestOrderCancel_OwnershipEnforced(t *testing.T) {
	store := newOrderStore(baseOrder(domain.OrderStatusPlaced))
	uc, _ := newOrderUsecase(store)

	_, err := uc.Cancel(context.Background(), "someone-else", "order-1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestOrderCancel_PrepaidFlagsBankDetails(t *testing.T) {
	order := baseOrder(domain.OrderStatusConfirmed)
	order.PaymentMethod = domain.PaymentMethodOnline
	order.PaymentStatus = domain.PaymentStatusPaid
	store := newOrderStore(order)
	uc, _ := newOrderUsecase(store)

	got, err := uc.Cancel(context.Background(), "user-1", "order-1")
	require.NoError(t, err)
	assert.True(t, got.RequiresBankDetails)
	// Payment stays Paid until bank details arrive.
	assert.Equal(t, domain.PaymentStatusPaid, got.PaymentStatus)
}

func TestOrderCancel_CODNeedsNoBankDetails(t *testing.T) {
	store := newOrderStore(baseOrder(domain.OrderStatusPlaced))
	uc, _ := newOrderUsecase(store)

	got, err := uc.Cancel(context.Background(), "user-1", "order-1")
	require.NoError(t, err)
	assert.False(t, got.RequiresBankDetails)
	assert.Equal(t, domain.PaymentStatusPending, got.PaymentStatus)
}

func TestSubmitRefundBankDetails(t *testing.T) {
	order := baseOrder(domain.OrderStatusCancelled)
	order.PaymentMethod = domain.PaymentMethodOnline
	order.PaymentStatus = domain.PaymentStatusPaid
	order.RequiresBankDetails = true
	store := newOrderStore(order)
	uc, notifier := newOrderUsecase(store)

	got, err := uc.SubmitRefundBankDetails(context.Background(), "user-1", "order-1", domain.BankDetails{
		AccountHolder: "A Customer",
		AccountNumber: "1234567890",
		BankName:      "Test Bank",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusRefundRequested, got.PaymentStatus)
	assert.Equal(t, domain.RefundStateRequested, got.Refund.State)
	require.NotNil(t, got.Refund.BankDetails)
	assert.Equal(t, 500.0, got.Refund.Amount)
	assert.NotNil(t, got.Refund.InitiatedAt)
	assert.False(t, got.RequiresBankDetails)
	assert.Len(t, notifier.Emitted, 1)
}

func TestSubmitRefundBankDetails_Gating(t *testing.T) {
	t.Run("missing fields rejected", func(t *testing.T) {
		store := newOrderStore(baseOrder(domain.OrderStatusCancelled))
		uc, _ := newOrderUsecase(store)

		_, err := uc.SubmitRefundBankDetails(context.Background(), "user-1", "order-1", domain.BankDetails{
			AccountHolder: "A Customer",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("order not awaiting details", func(t *testing.T) {
		store := newOrderStore(baseOrder(domain.OrderStatusCancelled))
		uc, _ := newOrderUsecase(store)

		_, err := uc.SubmitRefundBankDetails(context.Background(), "user-1", "order-1", domain.BankDetails{
			AccountHolder: "A Customer",
			AccountNumber: "1234567890",
			BankName:      "Test Bank",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestOrderGet_OwnerOrAdmin(t *testing.T) {
	store := newOrderStore(baseOrder(domain.OrderStatusPlaced))
	uc, _ := newOrderUsecase(store)

	_, err := uc.Get(context.Background(), "user-1", "customer", "order-1")
	assert.NoError(t, err)

	_, err = uc.Get(context.Background(), "admin-9", "admin", "order-1")
	assert.NoError(t, err)

	_, err = uc.Get(context.Background(), "someone-else", "customer", "order-1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestOrderUpdatePaymentStatus_AdminSetRestricted(t *testing.T) {
	store := newOrderStore(baseOrder(domain.OrderStatusPlaced))
	uc, _ := newOrderUsecase(store)

	got, err := uc.UpdatePaymentStatus(context.Background(), "order-1", "paid")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, got.PaymentStatus)

	_, err = uc.UpdatePaymentStatus(context.Background(), "order-1", "refund_requested")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.UpdatePaymentStatus(context.Background(), "order-1", "nonsense")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
