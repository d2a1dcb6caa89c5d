package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"zelora-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type orderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, user_id, shipping_address, payment_method, payment_status, status,
	subtotal, discount, delivery_charge, total, coupon_code, gateway_order_id, gateway_payment_id,
	requires_bank_details, refund_state, refund_bank_details, refund_amount, refund_transaction_id,
	refund_initiated_at, refund_completed_at, delivered_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o           domain.Order
		addrBytes   []byte
		refundBytes []byte
	)
	err := row.Scan(&o.ID, &o.UserID, &addrBytes, &o.PaymentMethod, &o.PaymentStatus, &o.Status,
		&o.Subtotal, &o.Discount, &o.DeliveryCharge, &o.Total, &o.CouponCode, &o.GatewayOrderID, &o.GatewayPaymentID,
		&o.RequiresBankDetails, &o.Refund.State, &refundBytes, &o.Refund.Amount, &o.Refund.TransactionID,
		&o.Refund.InitiatedAt, &o.Refund.CompletedAt, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order", domain.ErrNotFound)
		}
		return nil, err
	}

	if len(addrBytes) > 0 {
		var addr domain.JSONB
		if err := json.Unmarshal(addrBytes, &addr); err == nil {
			o.ShippingAddress = addr
		}
	}
	if len(refundBytes) > 0 {
		var bd domain.BankDetails
		if err := json.Unmarshal(refundBytes, &bd); err == nil {
			o.Refund.BankDetails = &bd
		}
	}
	return &o, nil
}

func (r *orderRepository) loadItems(ctx context.Context, q DBTX, orderID string) ([]domain.OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, name, price, image, quantity, size, color
		FROM order_items WHERE order_id = $1 ORDER BY id`,
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Price, &it.Image, &it.Quantity, &it.Size, &it.Color); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	q := dbtx(ctx, r.db)

	addrBytes, _ := json.Marshal(order.ShippingAddress)

	err := q.QueryRow(ctx, `
		INSERT INTO orders (user_id, shipping_address, payment_method, payment_status, status,
			subtotal, discount, delivery_charge, total, coupon_code, gateway_order_id, gateway_payment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, refund_state, created_at, updated_at`,
		order.UserID, addrBytes, order.PaymentMethod, order.PaymentStatus, order.Status,
		order.Subtotal, order.Discount, order.DeliveryCharge, order.Total, order.CouponCode,
		order.GatewayOrderID, order.GatewayPaymentID,
	).Scan(&order.ID, &order.Refund.State, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range order.Items {
		item := &order.Items[i]
		err := q.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, name, price, image, quantity, size, color)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			order.ID, item.ProductID, item.Name, item.Price, item.Image, item.Quantity, item.Size, item.Color,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
		item.OrderID = order.ID
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	q := dbtx(ctx, r.db)

	order, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	if order.Items, err = r.loadItems(ctx, q, order.ID); err != nil {
		return nil, err
	}
	if order.DeliveryUpdates, err = r.GetDeliveryUpdates(ctx, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	q := dbtx(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range orders {
		if orders[i].Items, err = r.loadItems(ctx, q, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	q := dbtx(ctx, r.db)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	var status, paymentStatus, search *string
	if filter.Status != "" {
		status = &filter.Status
	}
	if filter.PaymentStatus != "" {
		paymentStatus = &filter.PaymentStatus
	}
	if filter.Search != "" {
		search = &filter.Search
	}

	rows, err := q.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR payment_status = $2)
		  AND ($3::text IS NULL OR id::text ILIKE '%' || $3 || '%')
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`,
		status, paymentStatus, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	var count int64
	err = q.QueryRow(ctx, `
		SELECT count(*) FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR payment_status = $2)
		  AND ($3::text IS NULL OR id::text ILIKE '%' || $3 || '%')`,
		status, paymentStatus, search,
	).Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	return orders, count, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	q := dbtx(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order", domain.ErrNotFound)
	}
	return nil
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	q := dbtx(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE orders SET payment_status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order", domain.ErrNotFound)
	}
	return nil
}

func (r *orderRepository) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	q := dbtx(ctx, r.db)
	_, err := q.Exec(ctx, `UPDATE orders SET delivered_at = $2, updated_at = now() WHERE id = $1`, id, at)
	return err
}

func (r *orderRepository) SetRequiresBankDetails(ctx context.Context, id string, v bool) error {
	q := dbtx(ctx, r.db)
	_, err := q.Exec(ctx, `UPDATE orders SET requires_bank_details = $2, updated_at = now() WHERE id = $1`, id, v)
	return err
}

func (r *orderRepository) SaveRefund(ctx context.Context, id string, refund domain.PaymentRefund) error {
	q := dbtx(ctx, r.db)

	var bdBytes []byte
	if refund.BankDetails != nil {
		bdBytes, _ = json.Marshal(refund.BankDetails)
	}

	_, err := q.Exec(ctx, `
		UPDATE orders
		SET refund_state = $2, refund_bank_details = $3, refund_amount = $4,
		    refund_transaction_id = $5, refund_initiated_at = $6, refund_completed_at = $7,
		    updated_at = now()
		WHERE id = $1`,
		id, refund.State, bdBytes, refund.Amount, refund.TransactionID, refund.InitiatedAt, refund.CompletedAt)
	return err
}

func (r *orderRepository) AddDeliveryUpdate(ctx context.Context, update *domain.DeliveryUpdate) error {
	q := dbtx(ctx, r.db)
	return q.QueryRow(ctx, `
		INSERT INTO delivery_updates (order_id, status, location, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		update.OrderID, update.Status, update.Location, update.Description,
	).Scan(&update.ID, &update.CreatedAt)
}

func (r *orderRepository) GetDeliveryUpdates(ctx context.Context, orderID string) ([]domain.DeliveryUpdate, error) {
	q := dbtx(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT id, order_id, status, location, description, created_at
		FROM delivery_updates WHERE order_id = $1 ORDER BY created_at`,
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var updates []domain.DeliveryUpdate
	for rows.Next() {
		var u domain.DeliveryUpdate
		if err := rows.Scan(&u.ID, &u.OrderID, &u.Status, &u.Location, &u.Description, &u.CreatedAt); err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

func (r *orderRepository) HasPurchasedProduct(ctx context.Context, userID, productID string) (bool, error) {
	q := dbtx(ctx, r.db)
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.user_id = $1 AND oi.product_id = $2 AND o.status = $3
		)`,
		userID, productID, domain.OrderStatusDelivered,
	).Scan(&exists)
	return exists, err
}
