package usecase

import (
	"context"
	"testing"
	"time"

	"zelora-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckoutFixture(cart *domain.Cart, products *mockProductRepo, coupons *mockCouponRepo, orders *mockOrderRepo, gateway *mockGateway) (*CheckoutUsecase, *mockNotifier, *mockCartRepo) {
	cfg := testConfig()
	cartRepo := staticCart(cart)
	notifier := &mockNotifier{}
	cartUC := NewCartUsecase(cartRepo, products, coupons, cfg)
	uc := NewCheckoutUsecase(
		cartUC, cartRepo, products, coupons, orders,
		&mockUserRepo{}, gateway, &mockTxManager{}, notifier, &mockEmailSender{}, cfg,
	)
	return uc, notifier, cartRepo
}

func fixtureCart() *domain.Cart {
	return &domain.Cart{
		ID:     "cart-1",
		UserID: "user-1",
		Items: []domain.CartItem{
			{ID: "i1", CartID: "cart-1", ProductID: "p1", Quantity: 2, Size: "M"},
		},
	}
}

func fixtureProducts() *mockProductRepo {
	return productCatalog(domain.Product{
		ID: "p1", Name: "Tee", Price: 150, Stock: 10, IsActive: true,
		Images: []string{"tee.jpg"}, Sizes: []string{"M"},
	})
}

func TestPlaceOrder_COD(t *testing.T) {
	var created *domain.Order
	orders := &mockOrderRepo{
		CreateFn: func(ctx context.Context, order *domain.Order) error {
			order.ID = "order-1"
			created = order
			return nil
		},
	}

	uc, notifier, cartRepo := newCheckoutFixture(fixtureCart(), fixtureProducts(), &mockCouponRepo{}, orders, &mockGateway{})

	var cleared bool
	cartRepo.ClearFn = func(ctx context.Context, cartID string) error {
		cleared = true
		return nil
	}

	order, err := uc.PlaceOrder(context.Background(), "user-1", PlaceOrderInput{
		ShippingAddress: domain.JSONB{"city": "Pune"},
		PaymentMethod:   domain.PaymentMethodCOD,
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, domain.OrderStatusPlaced, order.Status)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, 300.0, order.Subtotal)
	assert.Equal(t, 0.0, order.DeliveryCharge)
	assert.Equal(t, 300.0, order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Tee", order.Items[0].Name)
	assert.Equal(t, 150.0, order.Items[0].Price)
	assert.Equal(t, "tee.jpg", order.Items[0].Image)
	assert.True(t, cleared, "cart must be cleared on success")
	assert.Len(t, notifier.Emitted, 1)
}

func TestPlaceOrder_OnlineRequiresValidSignature(t *testing.T) {
	gateway := &mockGateway{
		VerifySignatureFn: func(gatewayOrderID, paymentID, signature string) bool {
			return signature == "good"
		},
	}

	uc, _, _ := newCheckoutFixture(fixtureCart(), fixtureProducts(), &mockCouponRepo{}, &mockOrderRepo{}, gateway)

	_, err := uc.PlaceOrder(context.Background(), "user-1", PlaceOrderInput{
		ShippingAddress:  domain.JSONB{"city": "Pune"},
		PaymentMethod:    domain.PaymentMethodOnline,
		GatewayOrderID:   "gw-1",
		GatewayPaymentID: "pay-1",
		Signature:        "tampered",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentSignature)

	order, err := uc.PlaceOrder(context.Background(), "user-1", PlaceOrderInput{
		ShippingAddress:  domain.JSONB{"city": "Pune"},
		PaymentMethod:    domain.PaymentMethodOnline,
		GatewayOrderID:   "gw-1",
		GatewayPaymentID: "pay-1",
		Signature:        "good",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, "gw-1", order.GatewayOrderID)
	assert.Equal(t, "pay-1", order.GatewayPaymentID)
}

func TestPlaceOrder_InsufficientStockAborts(t *testing.T) {
	products := fixtureProducts()
	products.DecrementStockIfSufficientFn = func(ctx context.Context, id string, qty int) (bool, error) {
		return false, nil
	}

	var orderCreated, cartCleared bool
	orders := &mockOrderRepo{
		CreateFn: func(ctx context.Context, order *domain.Order) error {
			orderCreated = true
			return nil
		},
	}

	uc, notifier, cartRepo := newCheckoutFixture(fixtureCart(), products, &mockCouponRepo{}, orders, &mockGateway{})
	cartRepo.ClearFn = func(ctx context.Context, cartID string) error {
		cartCleared = true
		return nil
	}

	_, err := uc.PlaceOrder(context.Background(), "user-1", PlaceOrderInput{
		ShippingAddress: domain.JSONB{"city": "Pune"},
		PaymentMethod:   domain.PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.False(t, orderCreated, "order must not be created when a decrement fails")
	assert.False(t, cartCleared, "cart must survive a failed checkout")
	assert.Empty(t, notifier.Emitted)
}

func TestPlaceOrder_CouponExhaustedAtConfirmation(t *testing.T) {
	code := "WELCOME"
	cart := fixtureCart()
	cart.CouponCode = &code

	now := time.Now()
	coupons := &mockCouponRepo{
		GetByCodeFn: func(ctx context.Context, c string) (*domain.Coupon, error) {
			return &domain.Coupon{
				ID: "c1", Code: code, Type: domain.CouponTypeFixed, Value: 50,
				ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(time.Hour), IsActive: true,
			}, nil
		},
		IncrementUsageIfBelowLimitFn: func(ctx context.Context, id string) (bool, error) {
			return false, nil
		},
	}

	uc, _, _ := newCheckoutFixture(cart, fixtureProducts(), coupons, &mockOrderRepo{}, &mockGateway{})

	_, err := uc.PlaceOrder(context.Background(), "user-1", PlaceOrderInput{
		ShippingAddress: domain.JSONB{"city": "Pune"},
		PaymentMethod:   domain.PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, domain.ErrCouponExpired)
}

func TestPlaceOrder_EmptyCartRejected(t *testing.T) {
	cart := &domain.Cart{ID: "cart-1", UserID: "user-1"}
	uc, _, _ := newCheckoutFixture(cart, productCatalog(), &mockCouponRepo{}, &mockOrderRepo{}, &mockGateway{})

	_, err := uc.PlaceOrder(context.Background(), "user-1", PlaceOrderInput{
		ShippingAddress: domain.JSONB{"city": "Pune"},
		PaymentMethod:   domain.PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreatePaymentOrder_AmountInMinorUnits(t *testing.T) {
	var gotAmount int64
	var gotReceipt string
	gateway := &mockGateway{
		CreateRemoteOrderFn: func(ctx context.Context, amountMinorUnits int64, currency, receipt string) (*domain.RemoteOrder, error) {
			gotAmount = amountMinorUnits
			gotReceipt = receipt
			return &domain.RemoteOrder{GatewayOrderID: "gw-9", Amount: amountMinorUnits, Currency: currency}, nil
		},
	}

	uc, _, _ := newCheckoutFixture(fixtureCart(), fixtureProducts(), &mockCouponRepo{}, &mockOrderRepo{}, gateway)

	remote, err := uc.CreatePaymentOrder(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "gw-9", remote.GatewayOrderID)
	// Subtotal 300, free delivery: 300.00 -> 30000 paise.
	assert.Equal(t, int64(30000), gotAmount)
	assert.NotEmpty(t, gotReceipt)
}

func TestVerifyPayment(t *testing.T) {
	gateway := &mockGateway{
		VerifySignatureFn: func(gatewayOrderID, paymentID, signature string) bool {
			return signature == "good"
		},
	}
	uc, _, _ := newCheckoutFixture(fixtureCart(), fixtureProducts(), &mockCouponRepo{}, &mockOrderRepo{}, gateway)

	assert.NoError(t, uc.VerifyPayment("gw-1", "pay-1", "good"))
	assert.ErrorIs(t, uc.VerifyPayment("gw-1", "pay-1", "bad"), domain.ErrInvalidPaymentSignature)
	assert.ErrorIs(t, uc.VerifyPayment("", "pay-1", "good"), domain.ErrValidation)
}
