package usecase

import (
	"context"
	"sync"
	"time"

	"zelora-backend/internal/domain"
)

// Func-field mocks: tests override only the methods they care about;
// everything else returns zero values.

type mockCartRepo struct {
	GetByUserIDFn func(ctx context.Context, userID string) (*domain.Cart, error)
	CreateFn      func(ctx context.Context, cart *domain.Cart) error
	SaveItemsFn   func(ctx context.Context, cartID string, items []domain.CartItem) error
	SetCouponFn   func(ctx context.Context, cartID string, code *string) error
	ClearFn       func(ctx context.Context, cartID string) error
}

func (m *mockCartRepo) GetByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockCartRepo) Create(ctx context.Context, cart *domain.Cart) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, cart)
	}
	cart.ID = "cart-1"
	return nil
}

func (m *mockCartRepo) SaveItems(ctx context.Context, cartID string, items []domain.CartItem) error {
	if m.SaveItemsFn != nil {
		return m.SaveItemsFn(ctx, cartID, items)
	}
	return nil
}

func (m *mockCartRepo) SetCoupon(ctx context.Context, cartID string, code *string) error {
	if m.SetCouponFn != nil {
		return m.SetCouponFn(ctx, cartID, code)
	}
	return nil
}

func (m *mockCartRepo) Clear(ctx context.Context, cartID string) error {
	if m.ClearFn != nil {
		return m.ClearFn(ctx, cartID)
	}
	return nil
}

type mockProductRepo struct {
	GetByIDFn                    func(ctx context.Context, id string) (*domain.Product, error)
	ListFn                       func(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error)
	CreateFn                     func(ctx context.Context, p *domain.Product) error
	UpdateFn                     func(ctx context.Context, p *domain.Product) error
	DecrementStockIfSufficientFn func(ctx context.Context, id string, qty int) (bool, error)
	RestoreStockFn               func(ctx context.Context, id string, qty int) error
	CreateReviewFn               func(ctx context.Context, review *domain.Review) error
	GetReviewsFn                 func(ctx context.Context, productID string) ([]domain.Review, error)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockProductRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *mockProductRepo) Update(ctx context.Context, p *domain.Product) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, p)
	}
	return nil
}

func (m *mockProductRepo) DecrementStockIfSufficient(ctx context.Context, id string, qty int) (bool, error) {
	if m.DecrementStockIfSufficientFn != nil {
		return m.DecrementStockIfSufficientFn(ctx, id, qty)
	}
	return true, nil
}

func (m *mockProductRepo) RestoreStock(ctx context.Context, id string, qty int) error {
	if m.RestoreStockFn != nil {
		return m.RestoreStockFn(ctx, id, qty)
	}
	return nil
}

func (m *mockProductRepo) CreateReview(ctx context.Context, review *domain.Review) error {
	if m.CreateReviewFn != nil {
		return m.CreateReviewFn(ctx, review)
	}
	return nil
}

func (m *mockProductRepo) GetReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	if m.GetReviewsFn != nil {
		return m.GetReviewsFn(ctx, productID)
	}
	return nil, nil
}

type mockCouponRepo struct {
	CreateFn                    func(ctx context.Context, coupon *domain.Coupon) error
	GetByCodeFn                 func(ctx context.Context, code string) (*domain.Coupon, error)
	GetByIDFn                   func(ctx context.Context, id string) (*domain.Coupon, error)
	ListFn                      func(ctx context.Context, limit, offset int) ([]domain.Coupon, int64, error)
	UpdateFn                    func(ctx context.Context, coupon *domain.Coupon) error
	DeleteFn                    func(ctx context.Context, id string) error
	IncrementUsageIfBelowLimitFn func(ctx context.Context, id string) (bool, error)
}

func (m *mockCouponRepo) Create(ctx context.Context, coupon *domain.Coupon) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, coupon)
	}
	return nil
}

func (m *mockCouponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	if m.GetByCodeFn != nil {
		return m.GetByCodeFn(ctx, code)
	}
	return nil, domain.ErrCouponNotFound
}

func (m *mockCouponRepo) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrCouponNotFound
}

func (m *mockCouponRepo) List(ctx context.Context, limit, offset int) ([]domain.Coupon, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockCouponRepo) Update(ctx context.Context, coupon *domain.Coupon) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, coupon)
	}
	return nil
}

func (m *mockCouponRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *mockCouponRepo) IncrementUsageIfBelowLimit(ctx context.Context, id string) (bool, error) {
	if m.IncrementUsageIfBelowLimitFn != nil {
		return m.IncrementUsageIfBelowLimitFn(ctx, id)
	}
	return true, nil
}

type mockOrderRepo struct {
	CreateFn                 func(ctx context.Context, order *domain.Order) error
	GetByIDFn                func(ctx context.Context, id string) (*domain.Order, error)
	GetByUserIDFn            func(ctx context.Context, userID string) ([]domain.Order, error)
	GetAllFn                 func(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error)
	UpdateStatusFn           func(ctx context.Context, id string, status domain.OrderStatus) error
	UpdatePaymentStatusFn    func(ctx context.Context, id string, status domain.PaymentStatus) error
	MarkDeliveredFn          func(ctx context.Context, id string, at time.Time) error
	SetRequiresBankDetailsFn func(ctx context.Context, id string, v bool) error
	SaveRefundFn             func(ctx context.Context, id string, refund domain.PaymentRefund) error
	AddDeliveryUpdateFn      func(ctx context.Context, update *domain.DeliveryUpdate) error
	GetDeliveryUpdatesFn     func(ctx context.Context, orderID string) ([]domain.DeliveryUpdate, error)
	HasPurchasedProductFn    func(ctx context.Context, userID, productID string) (bool, error)
}

func (m *mockOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, order)
	}
	order.ID = "order-1"
	return nil
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockOrderRepo) GetByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockOrderRepo) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockOrderRepo) UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	if m.UpdatePaymentStatusFn != nil {
		return m.UpdatePaymentStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockOrderRepo) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	if m.MarkDeliveredFn != nil {
		return m.MarkDeliveredFn(ctx, id, at)
	}
	return nil
}

func (m *mockOrderRepo) SetRequiresBankDetails(ctx context.Context, id string, v bool) error {
	if m.SetRequiresBankDetailsFn != nil {
		return m.SetRequiresBankDetailsFn(ctx, id, v)
	}
	return nil
}

func (m *mockOrderRepo) SaveRefund(ctx context.Context, id string, refund domain.PaymentRefund) error {
	if m.SaveRefundFn != nil {
		return m.SaveRefundFn(ctx, id, refund)
	}
	return nil
}

func (m *mockOrderRepo) AddDeliveryUpdate(ctx context.Context, update *domain.DeliveryUpdate) error {
	if m.AddDeliveryUpdateFn != nil {
		return m.AddDeliveryUpdateFn(ctx, update)
	}
	return nil
}

func (m *mockOrderRepo) GetDeliveryUpdates(ctx context.Context, orderID string) ([]domain.DeliveryUpdate, error) {
	if m.GetDeliveryUpdatesFn != nil {
		return m.GetDeliveryUpdatesFn(ctx, orderID)
	}
	return nil, nil
}

func (m *mockOrderRepo) HasPurchasedProduct(ctx context.Context, userID, productID string) (bool, error) {
	if m.HasPurchasedProductFn != nil {
		return m.HasPurchasedProductFn(ctx, userID, productID)
	}
	return false, nil
}

type mockReturnRepo struct {
	CreateFn             func(ctx context.Context, req *domain.ReturnRequest) error
	GetByIDFn            func(ctx context.Context, id string) (*domain.ReturnRequest, error)
	GetByOrderIDFn       func(ctx context.Context, orderID string) (*domain.ReturnRequest, error)
	GetByUserIDFn        func(ctx context.Context, userID string) ([]domain.ReturnRequest, error)
	GetAllFn             func(ctx context.Context, filter domain.ReturnFilter) ([]domain.ReturnRequest, int64, error)
	TransitionFn         func(ctx context.Context, id string, status domain.ReturnStatus, description string) error
	SetAdminNotesFn      func(ctx context.Context, id, notes string) error
	SetRejectionReasonFn func(ctx context.Context, id, reason string) error
	DeleteFn             func(ctx context.Context, id string) error
}

func (m *mockReturnRepo) Create(ctx context.Context, req *domain.ReturnRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, req)
	}
	req.ID = "return-1"
	return nil
}

func (m *mockReturnRepo) GetByID(ctx context.Context, id string) (*domain.ReturnRequest, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockReturnRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.ReturnRequest, error) {
	if m.GetByOrderIDFn != nil {
		return m.GetByOrderIDFn(ctx, orderID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockReturnRepo) GetByUserID(ctx context.Context, userID string) ([]domain.ReturnRequest, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockReturnRepo) GetAll(ctx context.Context, filter domain.ReturnFilter) ([]domain.ReturnRequest, int64, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockReturnRepo) Transition(ctx context.Context, id string, status domain.ReturnStatus, description string) error {
	if m.TransitionFn != nil {
		return m.TransitionFn(ctx, id, status, description)
	}
	return nil
}

func (m *mockReturnRepo) SetAdminNotes(ctx context.Context, id, notes string) error {
	if m.SetAdminNotesFn != nil {
		return m.SetAdminNotesFn(ctx, id, notes)
	}
	return nil
}

func (m *mockReturnRepo) SetRejectionReason(ctx context.Context, id, reason string) error {
	if m.SetRejectionReasonFn != nil {
		return m.SetRejectionReasonFn(ctx, id, reason)
	}
	return nil
}

func (m *mockReturnRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

type mockUserRepo struct {
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	GetByIDFn    func(ctx context.Context, id string) (*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	user.ID = "user-1"
	return nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

// mockTxManager runs the callback directly; failure propagation stands in
// for a rollback.
type mockTxManager struct{}

func (m *mockTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockGateway struct {
	CreateRemoteOrderFn func(ctx context.Context, amountMinorUnits int64, currency, receipt string) (*domain.RemoteOrder, error)
	VerifySignatureFn   func(gatewayOrderID, paymentID, signature string) bool
}

func (m *mockGateway) CreateRemoteOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (*domain.RemoteOrder, error) {
	if m.CreateRemoteOrderFn != nil {
		return m.CreateRemoteOrderFn(ctx, amountMinorUnits, currency, receipt)
	}
	return &domain.RemoteOrder{GatewayOrderID: "gw-1", Amount: amountMinorUnits, Currency: currency}, nil
}

func (m *mockGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	if m.VerifySignatureFn != nil {
		return m.VerifySignatureFn(gatewayOrderID, paymentID, signature)
	}
	return true
}

type emittedNotification struct {
	UserID  string
	Type    string
	Title   string
	Message string
	OrderID *string
}

// mockNotifier records emissions synchronously.
type mockNotifier struct {
	mu      sync.Mutex
	Emitted []emittedNotification
}

func (m *mockNotifier) Emit(ctx context.Context, userID, ntype, title, message string, orderID *string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Emitted = append(m.Emitted, emittedNotification{
		UserID:  userID,
		Type:    ntype,
		Title:   title,
		Message: message,
		OrderID: orderID,
	})
}

type mockEmailSender struct {
	SendFn func(ctx context.Context, to, subject, body string) error
}

func (m *mockEmailSender) Send(ctx context.Context, to, subject, body string) error {
	if m.SendFn != nil {
		return m.SendFn(ctx, to, subject, body)
	}
	return nil
}
