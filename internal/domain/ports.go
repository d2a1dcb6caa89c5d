package domain

import "context"

// TransactionManager runs fn inside a database transaction. Repositories
// called with the wrapped context join the same transaction.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// RemoteOrder is the payment gateway's handle for a pending capture.
type RemoteOrder struct {
	GatewayOrderID string `json:"gatewayOrderId"`
	Amount         int64  `json:"amount"` // minor units
	Currency       string `json:"currency"`
}

// PaymentGateway creates remote payment orders and verifies callback
// signatures locally (HMAC over "orderID|paymentID").
type PaymentGateway interface {
	CreateRemoteOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (*RemoteOrder, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

// EmailSender delivers transactional mail. Failures are logged by callers
// and never abort the triggering transaction.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
