package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"zelora-backend/config"
	"zelora-backend/internal/domain"
	"zelora-backend/pkg/logger"

	"github.com/google/uuid"
)

type CheckoutUsecase struct {
	cartUC      *CartUsecase
	cartRepo    domain.CartRepository
	productRepo domain.ProductRepository
	couponRepo  domain.CouponRepository
	orderRepo   domain.OrderRepository
	userRepo    domain.UserRepository
	gateway     domain.PaymentGateway
	txManager   domain.TransactionManager
	notifier    domain.NotificationEmitter
	emailSender domain.EmailSender
	cfg         *config.Config
}

func NewCheckoutUsecase(
	cartUC *CartUsecase,
	cartRepo domain.CartRepository,
	productRepo domain.ProductRepository,
	couponRepo domain.CouponRepository,
	orderRepo domain.OrderRepository,
	userRepo domain.UserRepository,
	gateway domain.PaymentGateway,
	txManager domain.TransactionManager,
	notifier domain.NotificationEmitter,
	emailSender domain.EmailSender,
	cfg *config.Config,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		cartUC:      cartUC,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		txManager:   txManager,
		notifier:    notifier,
		emailSender: emailSender,
		cfg:         cfg,
	}
}

// CreatePaymentOrder registers the cart total with the payment gateway
// and returns the remote order handle for the client-side capture flow.
func (u *CheckoutUsecase) CreatePaymentOrder(ctx context.Context, userID string) (*domain.RemoteOrder, error) {
	cart, err := u.cartUC.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}

	amount := int64(math.Round(cart.Totals.Total * 100))
	receipt := "rcpt_" + uuid.NewString()

	remote, err := u.gateway.CreateRemoteOrder(ctx, amount, u.cfg.GatewayCurrency, receipt)
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}
	return remote, nil
}

// VerifyPayment checks the gateway callback signature.
func (u *CheckoutUsecase) VerifyPayment(gatewayOrderID, paymentID, signature string) error {
	if gatewayOrderID == "" || paymentID == "" || signature == "" {
		return fmt.Errorf("%w: missing payment fields", domain.ErrValidation)
	}
	if !u.gateway.VerifySignature(gatewayOrderID, paymentID, signature) {
		return domain.ErrInvalidPaymentSignature
	}
	return nil
}

type PlaceOrderInput struct {
	ShippingAddress  domain.JSONB `json:"shippingAddress"`
	PaymentMethod    string       `json:"paymentMethod"`
	GatewayOrderID   string       `json:"gatewayOrderId"`
	GatewayPaymentID string       `json:"gatewayPaymentId"`
	Signature        string       `json:"signature"`
}

// PlaceOrder converts the cart into an order. Stock decrements, coupon
// consumption, order insertion and cart clearing all commit or roll back
// as one transaction; the notification and email go out only after the
// commit.
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*domain.Order, error) {
	if !domain.ValidPaymentMethod(input.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, input.PaymentMethod)
	}
	if len(input.ShippingAddress) == 0 {
		return nil, fmt.Errorf("%w: shipping address is required", domain.ErrValidation)
	}
	if input.PaymentMethod == domain.PaymentMethodOnline {
		if err := u.VerifyPayment(input.GatewayOrderID, input.GatewayPaymentID, input.Signature); err != nil {
			return nil, err
		}
	}

	cart, err := u.cartUC.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}

	paymentStatus := domain.PaymentStatusPending
	if input.PaymentMethod == domain.PaymentMethodOnline {
		paymentStatus = domain.PaymentStatusPaid
	}

	order := &domain.Order{
		UserID:           userID,
		ShippingAddress:  input.ShippingAddress,
		PaymentMethod:    input.PaymentMethod,
		PaymentStatus:    paymentStatus,
		Status:           domain.OrderStatusPlaced,
		Subtotal:         cart.Totals.Subtotal,
		Discount:         cart.Totals.Discount,
		DeliveryCharge:   cart.Totals.DeliveryCharge,
		Total:            cart.Totals.Total,
		CouponCode:       cart.CouponCode,
		GatewayOrderID:   input.GatewayOrderID,
		GatewayPaymentID: input.GatewayPaymentID,
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Price:     item.Price,
			Image:     item.Product.MainImage(),
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		})
	}

	err = u.txManager.Do(ctx, func(ctx context.Context) error {
		for _, item := range cart.Items {
			ok, err := u.productRepo.DecrementStockIfSufficient(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, item.Product.Name)
			}
		}

		if cart.CouponCode != nil && cart.Totals.Discount > 0 {
			coupon, err := u.couponRepo.GetByCode(ctx, *cart.CouponCode)
			if err != nil {
				return err
			}
			ok, err := u.couponRepo.IncrementUsageIfBelowLimit(ctx, coupon.ID)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrCouponExpired
			}
		}

		if err := u.orderRepo.Create(ctx, order); err != nil {
			return err
		}
		return u.cartRepo.Clear(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	u.notifier.Emit(ctx, userID, domain.NotificationTypeOrder,
		"Order placed",
		fmt.Sprintf("Your order for %.2f has been placed.", order.Total),
		&order.ID)
	u.sendConfirmationEmail(ctx, userID, order)

	logger.Info().
		Str("order_id", order.ID).
		Str("user_id", userID).
		Str("payment_method", order.PaymentMethod).
		Float64("total", order.Total).
		Msg("Checkout: order placed")

	return order, nil
}

func (u *CheckoutUsecase) sendConfirmationEmail(ctx context.Context, userID string, order *domain.Order) {
	detached := context.WithoutCancel(ctx)
	go func() {
		c, cancel := context.WithTimeout(detached, 15*time.Second)
		defer cancel()

		user, err := u.userRepo.GetByID(c, userID)
		if err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("Checkout: skipping confirmation email")
			return
		}

		body := fmt.Sprintf(
			"Hi %s,\n\nThanks for your order! We have received it and will confirm it shortly.\n\nOrder total: %.2f\nPayment method: %s\n",
			user.FirstName, order.Total, order.PaymentMethod)
		if err := u.emailSender.Send(c, user.Email, "Order confirmation", body); err != nil {
			logger.Warn().Err(err).Str("order_id", order.ID).Msg("Checkout: confirmation email failed")
		}
	}()
}
