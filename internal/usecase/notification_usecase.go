package usecase

import (
	"context"
	"time"

	"zelora-backend/internal/domain"
	"zelora-backend/pkg/logger"
)

type NotificationUsecase struct {
	notifRepo domain.NotificationRepository
}

func NewNotificationUsecase(notifRepo domain.NotificationRepository) *NotificationUsecase {
	return &NotificationUsecase{notifRepo: notifRepo}
}

// Emit persists the notification asynchronously. The write is detached
// from the caller's context so a committed transition still notifies even
// if the request context has been cancelled; a failed write is logged and
// dropped, never surfaced to the caller.
func (u *NotificationUsecase) Emit(ctx context.Context, userID, ntype, title, message string, orderID *string) {
	detached := context.WithoutCancel(ctx)
	go func() {
		c, cancel := context.WithTimeout(detached, 5*time.Second)
		defer cancel()

		n := &domain.Notification{
			UserID:  userID,
			Type:    ntype,
			Title:   title,
			Message: message,
			OrderID: orderID,
		}
		if err := u.notifRepo.Create(c, n); err != nil {
			logger.Error().Err(err).
				Str("user_id", userID).
				Str("type", ntype).
				Msg("Notification: emit failed")
		}
	}()
}

func (u *NotificationUsecase) List(ctx context.Context, userID string, page, limit int) ([]domain.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return u.notifRepo.GetByUserID(ctx, userID, limit, (page-1)*limit)
}

func (u *NotificationUsecase) MarkRead(ctx context.Context, id, userID string) error {
	return u.notifRepo.MarkRead(ctx, id, userID)
}

func (u *NotificationUsecase) MarkAllRead(ctx context.Context, userID string) error {
	return u.notifRepo.MarkAllRead(ctx, userID)
}
