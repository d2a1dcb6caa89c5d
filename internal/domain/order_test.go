package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderDeliveryDate(t *testing.T) {
	created := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	delivered := time.Date(2026, 1, 6, 18, 0, 0, 0, time.UTC)

	t.Run("stamped delivery wins", func(t *testing.T) {
		o := Order{CreatedAt: created, UpdatedAt: updated, DeliveredAt: &delivered}
		assert.Equal(t, delivered, o.DeliveryDate())
	})

	t.Run("falls back to updated at", func(t *testing.T) {
		o := Order{CreatedAt: created, UpdatedAt: updated}
		assert.Equal(t, updated, o.DeliveryDate())
	})

	t.Run("falls back to created at", func(t *testing.T) {
		o := Order{CreatedAt: created}
		assert.Equal(t, created, o.DeliveryDate())
	})
}
