package domain

import (
	"context"
	"time"
)

// --- Return Entities ---

// ReturnRequest is created only from a Delivered order, at most one per
// order (enforced by a uniqueness constraint on OrderID, not a prior read).
type ReturnRequest struct {
	ID              string                `json:"id"`
	OrderID         string                `json:"orderId"`
	UserID          string                `json:"userId"`
	Items           []ReturnItem          `json:"items"`
	Reason          string                `json:"reason"`
	RefundMethod    string                `json:"refundMethod"` // original_payment_method, bank_transfer, store_credit
	BankDetails     *BankDetails          `json:"bankDetails,omitempty"`
	RefundAmount    float64               `json:"refundAmount"`
	Status          ReturnStatus          `json:"status"`
	Timeline        []ReturnTimelineEntry `json:"timeline"`
	AdminNotes      string                `json:"adminNotes,omitempty"`
	RejectionReason string                `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// ReturnItem is one order line the buyer chose to send back.
type ReturnItem struct {
	ID        string  `json:"id"`
	ReturnID  string  `json:"returnId"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"` // order-time snapshot price
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
	Reason    string  `json:"reason"`
}

type ReturnTimelineEntry struct {
	ID          string       `json:"id"`
	ReturnID    string       `json:"returnId"`
	Status      ReturnStatus `json:"status"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type ReturnFilter struct {
	Page   int
	Limit  int
	Status string
}

type ReturnRepository interface {
	// Create inserts the request with its items and first timeline entry.
	// A second request for the same order fails with ErrDuplicateReturn.
	Create(ctx context.Context, req *ReturnRequest) error
	GetByID(ctx context.Context, id string) (*ReturnRequest, error)
	GetByOrderID(ctx context.Context, orderID string) (*ReturnRequest, error)
	GetByUserID(ctx context.Context, userID string) ([]ReturnRequest, error)
	GetAll(ctx context.Context, filter ReturnFilter) ([]ReturnRequest, int64, error)

	// Transition atomically writes the new status and appends the
	// matching timeline entry; history is never written separately.
	Transition(ctx context.Context, id string, status ReturnStatus, description string) error
	SetAdminNotes(ctx context.Context, id, notes string) error
	SetRejectionReason(ctx context.Context, id, reason string) error
	Delete(ctx context.Context, id string) error
}
