package reward

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Repository defines reward catalog data access
type Repository interface {
	Create(ctx context.Context, rw *Reward) error
	GetByID(ctx context.Context, id int64) (*Reward, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*AvailableReward, error)
	Update(ctx context.Context, rw *Reward) error
	SetImageURL(ctx context.Context, id int64, imageURL string) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates reward repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rw *Reward) error {
	query := `
		INSERT INTO rewards (course_id, name, cost, quantity_limit, active, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		rw.CourseID,
		rw.Name,
		rw.Cost,
		rw.QuantityLimit,
		rw.Active,
		rw.ImageURL,
		rw.CreatedAt,
	).Scan(&rw.ID)
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Reward, error) {
	query := `
		SELECT id, course_id, name, cost, quantity_limit, active, image_url, created_at
		FROM rewards
		WHERE id = $1
	`
	var rw Reward
	err := r.db.GetContext(ctx, &rw, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rw, nil
}

func (r *repository) ListByCourse(ctx context.Context, courseID int64) ([]*AvailableReward, error) {
	query := `
		SELECT
			rw.id, rw.course_id, rw.name, rw.cost, rw.quantity_limit,
			rw.active, rw.image_url, rw.created_at,
			COUNT(rd.id) FILTER (WHERE rd.status != 'rejected') AS redeemed
		FROM rewards rw
		LEFT JOIN redemptions rd ON rd.reward_id = rw.id
		WHERE rw.course_id = $1
		GROUP BY rw.id
		ORDER BY rw.cost, rw.id
	`
	var rewards []*AvailableReward
	if err := r.db.SelectContext(ctx, &rewards, query, courseID); err != nil {
		return nil, err
	}
	return rewards, nil
}

func (r *repository) Update(ctx context.Context, rw *Reward) error {
	query := `
		UPDATE rewards SET
			name = $2, cost = $3, quantity_limit = $4, active = $5
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		rw.ID,
		rw.Name,
		rw.Cost,
		rw.QuantityLimit,
		rw.Active,
	)
	return err
}

func (r *repository) SetImageURL(ctx context.Context, id int64, imageURL string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE rewards SET image_url = $2 WHERE id = $1`, id, imageURL)
	return err
}
