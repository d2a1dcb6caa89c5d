package domain

// OrderStatus is the closed set of order lifecycle states.
type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "placed"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
	OrderStatusReturned       OrderStatus = "returned"
)

// PaymentStatus is the closed set of payment states.
type PaymentStatus string

const (
	PaymentStatusPending         PaymentStatus = "pending"
	PaymentStatusPaid            PaymentStatus = "paid"
	PaymentStatusFailed          PaymentStatus = "failed"
	PaymentStatusRefundRequested PaymentStatus = "refund_requested"
	PaymentStatusRefunded        PaymentStatus = "refunded"
)

// ReturnStatus is the closed set of return request states.
type ReturnStatus string

const (
	ReturnStatusPending          ReturnStatus = "pending"
	ReturnStatusApproved         ReturnStatus = "approved"
	ReturnStatusRejected         ReturnStatus = "rejected"
	ReturnStatusPickupScheduled  ReturnStatus = "pickup_scheduled"
	ReturnStatusItemReceived     ReturnStatus = "item_received"
	ReturnStatusRefundProcessing ReturnStatus = "refund_processing"
	ReturnStatusRefundCompleted  ReturnStatus = "refund_completed"
)

// Payment Methods
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
)

// Refund Methods
const (
	RefundMethodOriginal     = "original_payment_method"
	RefundMethodBankTransfer = "bank_transfer"
	RefundMethodStoreCredit  = "store_credit"
)

// Coupon Types
const (
	CouponTypePercentage = "percentage"
	CouponTypeFixed      = "fixed"
)

// Notification Types
const (
	NotificationTypeOrder   = "order"
	NotificationTypePayment = "payment"
	NotificationTypeReturn  = "return"
)

// orderTransitions is the single source of truth for legal order-status
// moves. Delivered -> Returned is reachable only through the return
// sub-machine, which also owns the Returned -> Delivered revert on cancel.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:         {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:      {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing:     {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:        {OrderStatusOutForDelivery},
	OrderStatusOutForDelivery: {OrderStatusDelivered},
	OrderStatusDelivered:      {OrderStatusReturned},
	OrderStatusCancelled:      {},
	OrderStatusReturned:       {},
}

var returnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnStatusPending:          {ReturnStatusApproved, ReturnStatusRejected},
	ReturnStatusApproved:         {ReturnStatusPickupScheduled},
	ReturnStatusPickupScheduled:  {ReturnStatusItemReceived},
	ReturnStatusItemReceived:     {ReturnStatusRefundProcessing},
	ReturnStatusRefundProcessing: {ReturnStatusRefundCompleted},
	ReturnStatusRejected:         {},
	ReturnStatusRefundCompleted:  {},
}

// CanTransition reports whether moving to the given status is legal.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// Cancellable reports whether the buyer may still cancel from this state.
// Once shipped, the order must go through delivery and the return flow.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPlaced || s == OrderStatusConfirmed || s == OrderStatusProcessing
}

func (s ReturnStatus) CanTransition(to ReturnStatus) bool {
	for _, next := range returnTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s ReturnStatus) IsTerminal() bool {
	return len(returnTransitions[s]) == 0
}

// List Exports for API
var OrderStatuses = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
}

var PaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusRefundRequested,
	PaymentStatusRefunded,
}

var ReturnStatuses = []ReturnStatus{
	ReturnStatusPending,
	ReturnStatusApproved,
	ReturnStatusRejected,
	ReturnStatusPickupScheduled,
	ReturnStatusItemReceived,
	ReturnStatusRefundProcessing,
	ReturnStatusRefundCompleted,
}

var PaymentMethods = []string{PaymentMethodCOD, PaymentMethodOnline}

var RefundMethods = []string{RefundMethodOriginal, RefundMethodBankTransfer, RefundMethodStoreCredit}

// ValidOrderStatus reports whether the string names a known order status.
func ValidOrderStatus(s string) bool {
	_, ok := orderTransitions[OrderStatus(s)]
	return ok
}

func ValidPaymentStatus(s string) bool {
	for _, p := range PaymentStatuses {
		if p == PaymentStatus(s) {
			return true
		}
	}
	return false
}

func ValidReturnStatus(s string) bool {
	_, ok := returnTransitions[ReturnStatus(s)]
	return ok
}

func ValidPaymentMethod(s string) bool {
	return s == PaymentMethodCOD || s == PaymentMethodOnline
}

func ValidRefundMethod(s string) bool {
	for _, m := range RefundMethods {
		if m == s {
			return true
		}
	}
	return false
}
