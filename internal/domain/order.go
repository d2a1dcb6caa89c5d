package domain

import (
	"context"
	"time"
)

type OrderFilter struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
	Search        string
}

// --- Order Entities ---

// Order is created once from a cart at checkout. Item snapshots are
// decoupled from the live catalog: later price or name edits must not
// change an existing order.
type Order struct {
	ID                  string           `json:"id"`
	UserID              string           `json:"userId"`
	Items               []OrderItem      `json:"items"`
	ShippingAddress     JSONB            `json:"shippingAddress"`
	PaymentMethod       string           `json:"paymentMethod"` // cod, online
	PaymentStatus       PaymentStatus    `json:"paymentStatus"`
	Status              OrderStatus      `json:"status"`
	Subtotal            float64          `json:"subtotal"`
	Discount            float64          `json:"discount"`
	DeliveryCharge      float64          `json:"deliveryCharge"`
	Total               float64          `json:"total"`
	CouponCode          *string          `json:"couponCode,omitempty"`
	GatewayOrderID      string           `json:"gatewayOrderId,omitempty"`
	GatewayPaymentID    string           `json:"gatewayPaymentId,omitempty"`
	RequiresBankDetails bool             `json:"requiresBankDetails"`
	Refund              PaymentRefund    `json:"refund"`
	DeliveryUpdates     []DeliveryUpdate `json:"deliveryUpdates,omitempty"`
	DeliveredAt         *time.Time       `json:"deliveredAt,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

type OrderItem struct {
	ID        string  `json:"id"`
	OrderID   string  `json:"orderId"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`  // snapshot at order time
	Price     float64 `json:"price"` // snapshot at order time
	Image     string  `json:"image"` // snapshot at order time
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
}

// DeliveryUpdate is one entry of the append-only delivery log.
type DeliveryUpdate struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"orderId"`
	Status      string    `json:"status"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RefundState tags the refund sub-record variant.
type RefundState string

const (
	RefundStateNone      RefundState = "none"
	RefundStateRequested RefundState = "requested"
	RefundStateCompleted RefundState = "completed"
)

type BankDetails struct {
	AccountHolder string `json:"accountHolder"`
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
	IFSCCode      string `json:"ifscCode,omitempty"`
	UPIID         string `json:"upiId,omitempty"`
}

// PaymentRefund is a tagged variant: None, Requested (bank details held),
// or Completed (settlement recorded). Fields outside the active state are
// zero-valued, never a half-populated sub-record.
type PaymentRefund struct {
	State         RefundState  `json:"state"`
	BankDetails   *BankDetails `json:"bankDetails,omitempty"`
	Amount        float64      `json:"amount,omitempty"`
	TransactionID string       `json:"transactionId,omitempty"`
	InitiatedAt   *time.Time   `json:"initiatedAt,omitempty"`
	CompletedAt   *time.Time   `json:"completedAt,omitempty"`
}

// DeliveryDate resolves the reference date for the return window:
// DeliveredAt when stamped, falling back to UpdatedAt, then CreatedAt.
func (o *Order) DeliveryDate() time.Time {
	if o.DeliveredAt != nil {
		return *o.DeliveredAt
	}
	if !o.UpdatedAt.IsZero() {
		return o.UpdatedAt
	}
	return o.CreatedAt
}

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByUserID(ctx context.Context, userID string) ([]Order, error)
	GetAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)

	UpdateStatus(ctx context.Context, id string, status OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id string, status PaymentStatus) error
	MarkDelivered(ctx context.Context, id string, at time.Time) error
	SetRequiresBankDetails(ctx context.Context, id string, v bool) error
	SaveRefund(ctx context.Context, id string, refund PaymentRefund) error

	AddDeliveryUpdate(ctx context.Context, update *DeliveryUpdate) error
	GetDeliveryUpdates(ctx context.Context, orderID string) ([]DeliveryUpdate, error)

	HasPurchasedProduct(ctx context.Context, userID, productID string) (bool, error)
}
