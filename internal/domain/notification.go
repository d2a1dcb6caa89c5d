package domain

import (
	"context"
	"time"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"` // order, payment, return
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	OrderID   *string   `json:"orderId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]Notification, int64, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// NotificationEmitter is the fire-and-forget sink for lifecycle events.
// Emit failures must never roll back the transition that triggered them.
type NotificationEmitter interface {
	Emit(ctx context.Context, userID, ntype, title, message string, orderID *string)
}
