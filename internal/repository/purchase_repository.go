package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rtagency/mocktest-backend/internal/model"
)

// PurchaseRepository handles payment order data access.
type PurchaseRepository struct {
	pool *pgxpool.Pool
}

// NewPurchaseRepository creates a new PurchaseRepository.
func NewPurchaseRepository(pool *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{pool: pool}
}

// GetByID retrieves a purchase by ID.
func (r *PurchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	p := &model.Purchase{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, pack_id, razorpay_order_id, payment_id, amount_paise, status, created_at, paid_at
		 FROM purchases WHERE id = $1`, id,
	).Scan(&p.ID, &p.UserID, &p.PackID, &p.RazorpayOrderID, &p.PaymentID, &p.AmountPaise, &p.Status, &p.CreatedAt, &p.PaidAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new purchase in CREATED status.
func (r *PurchaseRepository) Create(ctx context.Context, p *model.Purchase) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO purchases (id, user_id, pack_id, razorpay_order_id, amount_paise, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		p.ID, p.UserID, p.PackID, p.RazorpayOrderID, p.AmountPaise, model.PurchaseStatusCreated,
	).Scan(&p.CreatedAt)
}

// MarkPaid records a successful payment. The status guard makes the capture
// idempotent: replaying the same capture changes nothing.
func (r *PurchaseRepository) MarkPaid(ctx context.Context, id uuid.UUID, paymentID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE purchases
		 SET status = $1, payment_id = $2, paid_at = NOW()
		 WHERE id = $3 AND status = $4`,
		model.PurchaseStatusPaid, paymentID, id, model.PurchaseStatusCreated,
	)
	return err
}

// HasPaidPack reports whether the user owns a paid purchase for the pack.
func (r *PurchaseRepository) HasPaidPack(ctx context.Context, userID int, packID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM purchases
			WHERE user_id = $1 AND pack_id = $2 AND status = $3
		)`, userID, packID, model.PurchaseStatusPaid,
	).Scan(&exists)
	return exists, err
}

// ListByUser retrieves a user's purchases, newest first.
func (r *PurchaseRepository) ListByUser(ctx context.Context, userID int) ([]model.Purchase, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, pack_id, razorpay_order_id, payment_id, amount_paise, status, created_at, paid_at
		 FROM purchases WHERE user_id = $1
		 ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []model.Purchase
	for rows.Next() {
		var p model.Purchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.PackID, &p.RazorpayOrderID, &p.PaymentID, &p.AmountPaise, &p.Status, &p.CreatedAt, &p.PaidAt); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	if purchases == nil {
		purchases = []model.Purchase{}
	}
	return purchases, rows.Err()
}
