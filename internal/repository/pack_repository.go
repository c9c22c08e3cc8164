package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rtagency/mocktest-backend/internal/model"
)

// PackRepository handles test pack data access.
type PackRepository struct {
	pool *pgxpool.Pool
}

// NewPackRepository creates a new PackRepository.
func NewPackRepository(pool *pgxpool.Pool) *PackRepository {
	return &PackRepository{pool: pool}
}

// GetByID retrieves a pack by ID.
func (r *PackRepository) GetByID(ctx context.Context, id int64) (*model.TestPack, error) {
	p := &model.TestPack{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, exam_type, price_paise, active, created_at, updated_at
		 FROM test_packs WHERE id = $1`, id,
	).Scan(&p.ID, &p.Title, &p.Description, &p.ExamType, &p.PricePaise, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List retrieves packs ordered by creation time. When activeOnly is set,
// deactivated packs are hidden; the storefront always passes true.
func (r *PackRepository) List(ctx context.Context, activeOnly bool) ([]model.TestPack, error) {
	query := `SELECT id, title, description, exam_type, price_paise, active, created_at, updated_at
	          FROM test_packs`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packs []model.TestPack
	for rows.Next() {
		var p model.TestPack
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.ExamType, &p.PricePaise, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		packs = append(packs, p)
	}
	if packs == nil {
		packs = []model.TestPack{}
	}
	return packs, rows.Err()
}

// Create inserts a new pack.
func (r *PackRepository) Create(ctx context.Context, p *model.TestPack) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO test_packs (title, description, exam_type, price_paise, active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		p.Title, p.Description, p.ExamType, p.PricePaise, p.Active,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update modifies a pack.
func (r *PackRepository) Update(ctx context.Context, p *model.TestPack) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE test_packs
		 SET title = $1, description = $2, price_paise = $3, active = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5`,
		p.Title, p.Description, p.PricePaise, p.Active, p.ID,
	)
	return err
}

// Delete removes a pack by ID.
func (r *PackRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM test_packs WHERE id = $1`, id)
	return err
}
