package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"zelora-backend/internal/domain"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type returnRepository struct {
	db *pgxpool.Pool
}

func NewReturnRepository(db *pgxpool.Pool) domain.ReturnRepository {
	return &returnRepository{db: db}
}

const returnColumns = `id, order_id, user_id, reason, refund_method, bank_details, refund_amount,
	status, admin_notes, rejection_reason, created_at, updated_at`

func scanReturn(row pgx.Row) (*domain.ReturnRequest, error) {
	var (
		req     domain.ReturnRequest
		bdBytes []byte
	)
	err := row.Scan(&req.ID, &req.OrderID, &req.UserID, &req.Reason, &req.RefundMethod, &bdBytes,
		&req.RefundAmount, &req.Status, &req.AdminNotes, &req.RejectionReason, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: return request", domain.ErrNotFound)
		}
		return nil, err
	}
	if len(bdBytes) > 0 {
		var bd domain.BankDetails
		if err := json.Unmarshal(bdBytes, &bd); err == nil {
			req.BankDetails = &bd
		}
	}
	return &req, nil
}

func (r *returnRepository) Create(ctx context.Context, req *domain.ReturnRequest) error {
	q := dbtx(ctx, r.db)

	var bdBytes []byte
	if req.BankDetails != nil {
		bdBytes, _ = json.Marshal(req.BankDetails)
	}

	err := q.QueryRow(ctx, `
		INSERT INTO return_requests (order_id, user_id, reason, refund_method, bank_details, refund_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		req.OrderID, req.UserID, req.Reason, req.RefundMethod, bdBytes, req.RefundAmount, req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrDuplicateReturn
		}
		return err
	}

	for i := range req.Items {
		item := &req.Items[i]
		err := q.QueryRow(ctx, `
			INSERT INTO return_items (return_id, product_id, name, price, quantity, size, color, reason)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			req.ID, item.ProductID, item.Name, item.Price, item.Quantity, item.Size, item.Color, item.Reason,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
		item.ReturnID = req.ID
	}

	var entry domain.ReturnTimelineEntry
	err = q.QueryRow(ctx, `
		INSERT INTO return_timeline (return_id, status, description)
		VALUES ($1, $2, $3)
		RETURNING id, return_id, status, description, created_at`,
		req.ID, req.Status, "Return request submitted",
	).Scan(&entry.ID, &entry.ReturnID, &entry.Status, &entry.Description, &entry.CreatedAt)
	if err != nil {
		return err
	}
	req.Timeline = append(req.Timeline, entry)

	return nil
}

func (r *returnRepository) loadDetails(ctx context.Context, q DBTX, req *domain.ReturnRequest) error {
	rows, err := q.Query(ctx, `
		SELECT id, return_id, product_id, name, price, quantity, size, color, reason
		FROM return_items WHERE return_id = $1 ORDER BY id`,
		req.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.ReturnItem
		if err := rows.Scan(&it.ID, &it.ReturnID, &it.ProductID, &it.Name, &it.Price, &it.Quantity, &it.Size, &it.Color, &it.Reason); err != nil {
			return err
		}
		req.Items = append(req.Items, it)
	}
	if rows.Err() != nil {
		return rows.Err()
	}

	tlRows, err := q.Query(ctx, `
		SELECT id, return_id, status, description, created_at
		FROM return_timeline WHERE return_id = $1 ORDER BY created_at, id`,
		req.ID)
	if err != nil {
		return err
	}
	defer tlRows.Close()

	for tlRows.Next() {
		var e domain.ReturnTimelineEntry
		if err := tlRows.Scan(&e.ID, &e.ReturnID, &e.Status, &e.Description, &e.CreatedAt); err != nil {
			return err
		}
		req.Timeline = append(req.Timeline, e)
	}
	return tlRows.Err()
}

func (r *returnRepository) GetByID(ctx context.Context, id string) (*domain.ReturnRequest, error) {
	q := dbtx(ctx, r.db)
	req, err := scanReturn(q.QueryRow(ctx, `SELECT `+returnColumns+` FROM return_requests WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadDetails(ctx, q, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *returnRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.ReturnRequest, error) {
	q := dbtx(ctx, r.db)
	req, err := scanReturn(q.QueryRow(ctx, `SELECT `+returnColumns+` FROM return_requests WHERE order_id = $1`, orderID))
	if err != nil {
		return nil, err
	}
	if err := r.loadDetails(ctx, q, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *returnRepository) GetByUserID(ctx context.Context, userID string) ([]domain.ReturnRequest, error) {
	q := dbtx(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT `+returnColumns+` FROM return_requests WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.ReturnRequest
	for rows.Next() {
		req, err := scanReturn(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range requests {
		if err := r.loadDetails(ctx, q, &requests[i]); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

func (r *returnRepository) GetAll(ctx context.Context, filter domain.ReturnFilter) ([]domain.ReturnRequest, int64, error) {
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

	var status *string
	if filter.Status != "" {
		status = &filter.Status
	}

	rows, err := q.Query(ctx, `
		SELECT `+returnColumns+`
		FROM return_requests
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var requests []domain.ReturnRequest
	for rows.Next() {
		req, err := scanReturn(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, *req)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	for i := range requests {
		if err := r.loadDetails(ctx, q, &requests[i]); err != nil {
			return nil, 0, err
		}
	}

	var count int64
	err = q.QueryRow(ctx, `
		SELECT count(*) FROM return_requests WHERE ($1::text IS NULL OR status = $1)`,
		status,
	).Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	return requests, count, nil
}

func (r *returnRepository) Transition(ctx context.Context, id string, status domain.ReturnStatus, description string) error {
	q := dbtx(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE return_requests SET status = $2, updated_at = now() WHERE id = $1`,
		id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: return request", domain.ErrNotFound)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO return_timeline (return_id, status, description) VALUES ($1, $2, $3)`,
		id, status, description)
	return err
}

func (r *returnRepository) SetAdminNotes(ctx context.Context, id, notes string) error {
	q := dbtx(ctx, r.db)
	_, err := q.Exec(ctx, `
		UPDATE return_requests SET admin_notes = $2, updated_at = now() WHERE id = $1`,
		id, notes)
	return err
}

func (r *returnRepository) SetRejectionReason(ctx context.Context, id, reason string) error {
	q := dbtx(ctx, r.db)
	_, err := q.Exec(ctx, `
		UPDATE return_requests SET rejection_reason = $2, updated_at = now() WHERE id = $1`,
		id, reason)
	return err
}

func (r *returnRepository) Delete(ctx context.Context, id string) error {
	q := dbtx(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM return_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: return request", domain.ErrNotFound)
	}
	return nil
}
