package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	leaderboardCacheKey = "points:leaderboard:%d"
	leaderboardCacheTTL = 60 * time.Second
)

// Service is the read surface of the points ledger plus the earn path.
// Spend entries are never written here; they are created only inside the
// redemption transaction so that debit and redemption commit together.
type Service struct {
	repo  Repository
	redis *redis.Client
}

// NewService creates ledger service. The Redis client may be nil.
func NewService(repo Repository, redisClient *redis.Client) *Service {
	return &Service{repo: repo, redis: redisClient}
}

// Balance returns the student's spendable balance: the sum of all ledger
// entries at call time. Never cached; always reflects committed state.
func (s *Service) Balance(ctx context.Context, studentID string) (int64, error) {
	return s.repo.Balance(ctx, studentID)
}

// Credit appends a positive earn entry (quest award, instructor grant)
func (s *Service) Credit(ctx context.Context, studentID string, points int64, questID *int64, description string) (*Entry, error) {
	if points <= 0 {
		return nil, ErrNonPositiveCredit
	}

	entry := &Entry{
		ID:          uuid.New(),
		StudentID:   studentID,
		PointsDelta: points,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if questID != nil {
		entry.QuestID = sql.NullInt64{Int64: *questID, Valid: true}
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// History returns the student's entries, newest first
func (s *Service) History(ctx context.Context, studentID string) ([]*Entry, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

// Leaderboard returns the top earners by total earned points.
// Results are cached in Redis briefly; the cache is display-only and is
// never consulted for spend decisions.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	key := fmt.Sprintf(leaderboardCacheKey, limit)
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key).Bytes(); err == nil {
			var rows []LeaderboardRow
			if err := json.Unmarshal(cached, &rows); err == nil {
				return rows, nil
			}
		}
	}

	rows, err := s.repo.TopEarners(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(rows); err == nil {
			if err := s.redis.Set(ctx, key, data, leaderboardCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("Failed to cache leaderboard")
			}
		}
	}

	return rows, nil
}
