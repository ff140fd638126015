package redemption

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campusquest/campusquest-api/internal/domain/ledger"
)

// PostgresStore implements Store on PostgreSQL. The per-reward lock is the
// reward row itself (SELECT ... FOR UPDATE); the per-student lock is a
// transaction-scoped advisory lock on the student key.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates the Postgres-backed redemption store
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

func (s *PostgresStore) GroupedByCourse(ctx context.Context, studentID string, courseID int64) ([]GroupedRow, error) {
	query := `
		SELECT rd.reward_id, rw.name AS reward_name, rd.status, COUNT(*) AS quantity
		FROM redemptions rd
		JOIN rewards rw ON rw.id = rd.reward_id
		WHERE rd.student_id = $1 AND rw.course_id = $2
		GROUP BY rd.reward_id, rw.name, rd.status
		ORDER BY rd.reward_id, rd.status
	`
	rows := []GroupedRow{}
	if err := s.db.SelectContext(ctx, &rows, query, studentID, courseID); err != nil {
		return nil, err
	}
	return rows, nil
}

type pgTx struct {
	tx *sqlx.Tx
}

type rewardRow struct {
	ID            int64         `db:"id"`
	CourseID      int64         `db:"course_id"`
	Name          string        `db:"name"`
	Cost          int64         `db:"cost"`
	QuantityLimit sql.NullInt64 `db:"quantity_limit"`
	Active        bool          `db:"active"`
}

func (r *rewardRow) reserved(redeemed int64) *ReservedReward {
	rr := &ReservedReward{
		ID:       r.ID,
		CourseID: r.CourseID,
		Name:     r.Name,
		Cost:     r.Cost,
		Active:   r.Active,
		Redeemed: redeemed,
	}
	if r.QuantityLimit.Valid {
		limit := r.QuantityLimit.Int64
		rr.QuantityLimit = &limit
	}
	return rr
}

func (t *pgTx) ReserveReward(ctx context.Context, rewardID int64) (*ReservedReward, error) {
	var row rewardRow
	err := t.tx.GetContext(ctx, &row, `
		SELECT id, course_id, name, cost, quantity_limit, active
		FROM rewards
		WHERE id = $1
		FOR UPDATE
	`, rewardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	redeemed, err := t.countRedeemed(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	return row.reserved(redeemed), nil
}

func (t *pgTx) countRedeemed(ctx context.Context, rewardID int64) (int64, error) {
	var redeemed int64
	err := t.tx.GetContext(ctx, &redeemed, `
		SELECT COUNT(*)
		FROM redemptions
		WHERE reward_id = $1 AND status != 'rejected'
	`, rewardID)
	return redeemed, err
}

func (t *pgTx) StudentBalance(ctx context.Context, studentID string) (int64, error) {
	// Serialize concurrent spends by the same student across rewards.
	// The lock is released automatically at commit or rollback.
	if _, err := t.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext('ledger:' || $1))`, studentID); err != nil {
		return 0, err
	}

	var balance int64
	err := t.tx.GetContext(ctx, &balance, `
		SELECT COALESCE(SUM(points_delta), 0)
		FROM ledger_entries
		WHERE student_id = $1
	`, studentID)
	return balance, err
}

func (t *pgTx) InsertRedemption(ctx context.Context, r *Redemption) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO redemptions (id, student_id, reward_id, status, redeemed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.ID, r.StudentID, r.RewardID, r.Status, r.RedeemedAt, r.UpdatedAt)
	return err
}

func (t *pgTx) InsertLedgerEntry(ctx context.Context, e *ledger.Entry) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, student_id, points_delta, redemption_id, quest_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.StudentID, e.PointsDelta, e.RedemptionID, e.QuestID, e.Description, e.CreatedAt)
	return err
}

func (t *pgTx) RedemptionForUpdate(ctx context.Context, id uuid.UUID) (*Redemption, *ReservedReward, error) {
	var rd Redemption
	err := t.tx.GetContext(ctx, &rd, `
		SELECT id, student_id, reward_id, status, redeemed_at, updated_at
		FROM redemptions
		WHERE id = $1
		FOR UPDATE
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	// Lock the reward too: rejecting releases a stock unit, which races
	// with concurrent purchases of the same reward. Purchases never lock
	// redemption rows, so the redemption-then-reward order here cannot
	// form a cycle with the purchase path.
	var row rewardRow
	err = t.tx.GetContext(ctx, &row, `
		SELECT id, course_id, name, cost, quantity_limit, active
		FROM rewards
		WHERE id = $1
		FOR UPDATE
	`, rd.RewardID)
	if err != nil {
		return nil, nil, err
	}

	redeemed, err := t.countRedeemed(ctx, rd.RewardID)
	if err != nil {
		return nil, nil, err
	}
	return &rd, row.reserved(redeemed), nil
}

func (t *pgTx) UpdateRedemptionStatus(ctx context.Context, id uuid.UUID, status Status) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE redemptions SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	return err
}

func (t *pgTx) SpendEntry(ctx context.Context, redemptionID uuid.UUID) (*ledger.Entry, error) {
	var e ledger.Entry
	err := t.tx.GetContext(ctx, &e, `
		SELECT id, student_id, points_delta, redemption_id, quest_id, description, created_at
		FROM ledger_entries
		WHERE redemption_id = $1 AND points_delta <= 0
	`, redemptionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (t *pgTx) Commit() error   { return t.tx.Commit() }
func (t *pgTx) Rollback() error { return t.tx.Rollback() }

// IsSerializationFailure reports whether err is a transient conflict worth
// retrying (serialization failure or deadlock detected).
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}
