package services

import (
	"context"
	"fmt"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/caching"
	"github.com/coney-counter/coney-counter-api/internal/logging"
	"github.com/coney-counter/coney-counter-api/internal/models"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type BoardKind string

const (
	BoardConeys  BoardKind = "coneys"
	BoardMonthly BoardKind = "monthly"
	BoardXP      BoardKind = "xp"
	BoardBrand   BoardKind = "brand"
	BoardClicker BoardKind = "clicker"
)

var BoardKinds = []BoardKind{BoardConeys, BoardMonthly, BoardXP, BoardBrand, BoardClicker}

type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	UserID   uint    `json:"user_id"`
	Username string  `json:"username"`
	Image    string  `json:"image,omitempty"`
	Level    int     `json:"level"`
	Score    float64 `json:"score"`
}

type boardRow struct {
	UserID       uint
	Username     string
	Name         string
	Email        string
	Image        string
	CurrentLevel int
	Score        float64
}

type LeaderboardService struct {
	db     *gorm.DB
	cache  caching.Cache
	ttl    time.Duration
	limit  int
	logger *logrus.Logger
	now    func() time.Time
}

func NewLeaderboardService(db *gorm.DB, cache caching.Cache, ttl time.Duration, limit int, logger *logrus.Logger) *LeaderboardService {
	if limit <= 0 {
		limit = 25
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &LeaderboardService{db: db, cache: cache, ttl: ttl, limit: limit, logger: logger, now: time.Now}
}

func boardKey(kind BoardKind, brand string) string {
	if kind == BoardBrand {
		return fmt.Sprintf("leaderboard:%s:%s", kind, models.BrandSlug(brand))
	}
	return fmt.Sprintf("leaderboard:%s", kind)
}

// Get returns a ranked board. brand is required for BoardBrand only.
func (s *LeaderboardService) Get(ctx context.Context, kind BoardKind, brand string) ([]LeaderboardEntry, error) {
	switch kind {
	case BoardConeys, BoardMonthly, BoardXP, BoardClicker:
	case BoardBrand:
		if !models.IsBrand(brand) {
			return nil, fmt.Errorf("%w: unknown brand %q", ErrInvalidInput, brand)
		}
	default:
		return nil, fmt.Errorf("%w: unknown leaderboard %q", ErrInvalidInput, kind)
	}

	var computeErr error
	entries, err := caching.UseCache(ctx, s.cache, boardKey(kind, brand), s.ttl, func() ([]LeaderboardEntry, error) {
		entries, err := s.compute(ctx, kind, brand)
		computeErr = err
		return entries, err
	})
	if err != nil && computeErr == nil {
		// a broken cache should not take the board down
		logging.LogError(s.logger, "services", "LeaderboardService.Get", "cache", boardKey(kind, brand), err)
		return s.compute(ctx, kind, brand)
	}
	return entries, err
}

func (s *LeaderboardService) compute(ctx context.Context, kind BoardKind, brand string) ([]LeaderboardEntry, error) {
	ctx, span := tracer.Start(ctx, "leaderboard.compute", trace.WithAttributes(
		attribute.String("board.kind", string(kind)),
		attribute.String("board.brand", brand),
	))
	defer span.End()

	db := s.db.WithContext(ctx)
	var rows []boardRow
	userCols := "users.id AS user_id, users.username, users.name, users.email, users.image, users.current_level"
	groupCols := "users.id, users.username, users.name, users.email, users.image, users.current_level"

	var q *gorm.DB
	switch kind {
	case BoardXP:
		q = db.Model(&models.User{}).
			Select(userCols+", users.total_xp AS score").
			Where("users.total_xp > 0").
			Order("users.total_xp DESC")
	case BoardClicker:
		q = db.Model(&models.ClickerState{}).
			Select(userCols+", clicker_states.lifetime_earned AS score").
			Joins("JOIN users ON users.id = clicker_states.user_id AND users.deleted_at IS NULL").
			Where("clicker_states.lifetime_earned > 0").
			Order("clicker_states.lifetime_earned DESC")
	default:
		q = db.Model(&models.ConeyLog{}).
			Select(userCols+", SUM(coney_logs.quantity) AS score").
			Joins("JOIN users ON users.id = coney_logs.user_id AND users.deleted_at IS NULL").
			Group(groupCols).
			Order("score DESC")
		if kind == BoardMonthly {
			now := s.now().UTC()
			monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
			q = q.Where("coney_logs.created_at >= ?", monthStart)
		}
		if kind == BoardBrand {
			q = q.Where("coney_logs.brand = ?", brand)
		}
	}

	err := q.Where("users.is_banned = ?", false).
		Order("users.id ASC").
		Limit(s.limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("compute %s leaderboard: %w", kind, err)
	}
	return rankRows(rows), nil
}

// rankRows assigns standard competition ranks (1, 2, 2, 4).
func rankRows(rows []boardRow) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(rows))
	for i, r := range rows {
		rank := i + 1
		if i > 0 && r.Score == rows[i-1].Score {
			rank = entries[i-1].Rank
		}
		user := models.User{Username: r.Username, Name: r.Name, Email: r.Email}
		entries = append(entries, LeaderboardEntry{
			Rank:     rank,
			UserID:   r.UserID,
			Username: user.DisplayName(),
			Image:    r.Image,
			Level:    r.CurrentLevel,
			Score:    r.Score,
		})
	}
	return entries
}

// Invalidate drops every cached board fed by coney logs or XP.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	keys := []string{boardKey(BoardConeys, ""), boardKey(BoardMonthly, ""), boardKey(BoardXP, "")}
	for _, b := range models.Brands {
		keys = append(keys, boardKey(BoardBrand, b))
	}
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			logging.LogError(s.logger, "services", "LeaderboardService.Invalidate", "delete", key, err)
		}
	}
}

// Warm recomputes and stores the non-brand boards.
func (s *LeaderboardService) Warm(ctx context.Context) error {
	for _, kind := range []BoardKind{BoardConeys, BoardMonthly, BoardXP, BoardClicker} {
		entries, err := s.compute(ctx, kind, "")
		if err != nil {
			return err
		}
		if s.cache == nil {
			continue
		}
		if err := s.cache.Set(ctx, boardKey(kind, ""), entries, s.ttl); err != nil {
			logging.LogError(s.logger, "services", "LeaderboardService.Warm", "set", kind, err)
		}
	}
	return nil
}
