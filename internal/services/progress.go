package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/achievements"
	"github.com/coney-counter/coney-counter-api/internal/logging"
	"github.com/coney-counter/coney-counter-api/internal/models"
	"github.com/coney-counter/coney-counter-api/internal/notifier"
	"github.com/coney-counter/coney-counter-api/internal/xp"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("coney-counter")

// NewConeyLog is a log submission.
type NewConeyLog struct {
	Brand            string           `validate:"required,brand"`
	Quantity         int              `validate:"min=1,max=100"`
	Location         *models.Location `validate:"omitempty"`
	IsReceiptScanned bool
	ReceiptImageKey  string `validate:"max=255"`
	// TimezoneOffset is the browser's getTimezoneOffset() in minutes.
	TimezoneOffset int `validate:"min=-840,max=840"`
}

type LogResult struct {
	Log             models.ConeyLog
	XPGained        int
	NewAchievements []achievements.Definition
	PreviousLevel   int
	Level           xp.Level
}

func (r LogResult) LeveledUp() bool {
	return r.Level.Level > r.PreviousLevel
}

// boardInvalidator drops cached leaderboards after log writes.
type boardInvalidator interface {
	Invalidate(ctx context.Context)
}

type ProgressService struct {
	db       *gorm.DB
	notifier notifier.Notifier
	boards   boardInvalidator
	logger   *logrus.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewProgressService(db *gorm.DB, n notifier.Notifier, boards *LeaderboardService, logger *logrus.Logger) *ProgressService {
	if n == nil {
		n = notifier.Noop{}
	}
	s := &ProgressService{
		db:       db,
		notifier: n,
		logger:   logger,
		validate: NewValidator(),
		now:      time.Now,
	}
	if boards != nil {
		s.boards = boards
	}
	return s
}

func checkCanWrite(user models.User) error {
	if user.IsBanned {
		return ErrBanned
	}
	if !user.IsApproved {
		return ErrNotApproved
	}
	return nil
}

// RecordLog stores a log, awards XP for it and for every achievement it
// unlocks, all in one transaction. Notifications and cache invalidation
// happen after commit and never fail the call.
func (s *ProgressService) RecordLog(ctx context.Context, userID uint, in NewConeyLog) (*LogResult, error) {
	if in.Location != nil {
		in.Location.Name = strings.TrimSpace(in.Location.Name)
		in.Location.Address = strings.TrimSpace(in.Location.Address)
		if in.Location.Name == "" && in.Location.Address == "" {
			in.Location = nil
		}
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	var result LogResult
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := checkCanWrite(user); err != nil {
			return err
		}
		result.PreviousLevel = user.CurrentLevel

		result.Log = models.ConeyLog{
			UserID:           userID,
			Brand:            in.Brand,
			Quantity:         in.Quantity,
			Location:         in.Location,
			IsReceiptScanned: in.IsReceiptScanned,
			ReceiptImageKey:  in.ReceiptImageKey,
			TimezoneOffset:   &in.TimezoneOffset,
		}
		result.Log.CreatedAt = s.now()
		if err := tx.Create(&result.Log).Error; err != nil {
			return fmt.Errorf("create log: %w", err)
		}
		if err := rememberOffset(tx, &user, in.TimezoneOffset); err != nil {
			return err
		}

		unlocked, err := s.unlockAchievements(ctx, tx, userID, in.TimezoneOffset)
		if err != nil {
			return err
		}
		result.NewAchievements = unlocked

		result.XPGained = xp.XPForConeys(in.Quantity)
		for _, d := range unlocked {
			result.XPGained += achievements.XPReward(d.ID)
		}

		updated, level, err := awardXP(tx, userID, result.XPGained)
		if err != nil {
			return err
		}
		user = updated
		result.Level = level
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterProgress(ctx, user, result.NewAchievements, result.PreviousLevel, result.Level.Level)
	return &result, nil
}

// SyncAchievements re-runs the evaluator over the user's history without a
// new log and awards anything newly earned. tzOffset is remembered as the
// user's last known offset.
func (s *ProgressService) SyncAchievements(ctx context.Context, userID uint, tzOffset int) ([]achievements.Definition, error) {
	return s.syncAchievements(ctx, userID, &tzOffset)
}

// ResyncUser is SyncAchievements using the user's last known offset.
func (s *ProgressService) ResyncUser(ctx context.Context, userID uint) ([]achievements.Definition, error) {
	return s.syncAchievements(ctx, userID, nil)
}

func (s *ProgressService) syncAchievements(ctx context.Context, userID uint, tzOffset *int) ([]achievements.Definition, error) {
	var user models.User
	var unlocked []achievements.Definition
	previousLevel, newLevel := 0, 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := checkCanWrite(user); err != nil {
			return err
		}
		previousLevel = user.CurrentLevel

		offset := user.TimezoneOffset
		if tzOffset != nil {
			offset = *tzOffset
			if err := rememberOffset(tx, &user, offset); err != nil {
				return err
			}
		}

		var err error
		unlocked, err = s.unlockAchievements(ctx, tx, userID, offset)
		if err != nil {
			return err
		}

		updated, level, err := awardXP(tx, userID, achievements.TotalXPReward(definitionIDs(unlocked)))
		if err != nil {
			return err
		}
		user = updated
		newLevel = level.Level
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterProgress(ctx, user, unlocked, previousLevel, newLevel)
	return unlocked, nil
}

func rememberOffset(tx *gorm.DB, user *models.User, offset int) error {
	if user.TimezoneOffset == offset {
		return nil
	}
	if err := tx.Model(user).UpdateColumn("timezone_offset", offset).Error; err != nil {
		return fmt.Errorf("store timezone offset: %w", err)
	}
	user.TimezoneOffset = offset
	return nil
}

// unlockAchievements evaluates the full history and inserts each new unlock
// in its own savepoint, so a concurrent duplicate is skipped instead of
// aborting the transaction. Only rows actually inserted are returned.
func (s *ProgressService) unlockAchievements(ctx context.Context, tx *gorm.DB, userID uint, tzOffset int) ([]achievements.Definition, error) {
	var logs []models.ConeyLog
	if err := tx.Where("user_id = ?", userID).Order("created_at ASC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("load logs: %w", err)
	}
	var have []string
	if err := tx.Model(&models.UserAchievement{}).Where("user_id = ?", userID).Pluck("achievement_id", &have).Error; err != nil {
		return nil, fmt.Errorf("load unlocked achievements: %w", err)
	}

	_, span := tracer.Start(ctx, "achievements.Evaluate")
	newIDs := achievements.Evaluate(logs, have, tzOffset)
	span.SetAttributes(
		attribute.Int("coney.logs", len(logs)),
		attribute.Int("coney.unlocked", len(have)),
		attribute.Int("coney.new", len(newIDs)),
	)
	span.End()

	now := s.now()
	var inserted []achievements.Definition
	for _, id := range newIDs {
		created, err := insertUnlock(tx, models.UserAchievement{UserID: userID, AchievementID: id, UnlockedAt: now})
		if err != nil {
			return nil, fmt.Errorf("unlock %s: %w", id, err)
		}
		if !created {
			continue
		}
		if d, ok := achievements.Get(id); ok {
			inserted = append(inserted, d)
		}
	}
	return inserted, nil
}

// insertUnlock inserts ua inside a savepoint. It reports false without error
// when the user already has the achievement.
func insertUnlock(tx *gorm.DB, ua models.UserAchievement) (bool, error) {
	err := tx.Transaction(func(sp *gorm.DB) error {
		return sp.Create(&ua).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	return err == nil, err
}

// awardXP adds amount to the user's total and re-derives the level fields.
func awardXP(tx *gorm.DB, userID uint, amount int) (models.User, xp.Level, error) {
	var user models.User
	if amount > 0 {
		err := tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("total_xp", gorm.Expr("total_xp + ?", amount)).Error
		if err != nil {
			return user, xp.Level{}, fmt.Errorf("award xp: %w", err)
		}
	}
	if err := tx.First(&user, userID).Error; err != nil {
		return user, xp.Level{}, err
	}

	level := xp.CalculateLevelFromXP(user.TotalXP)
	if err := applyLevel(tx, &user, level); err != nil {
		return user, level, err
	}
	return user, level, nil
}

func applyLevel(tx *gorm.DB, user *models.User, level xp.Level) error {
	if user.CurrentLevel == level.Level && user.CurrentLevelXP == level.CurrentLevelXP && user.NextLevelXP == level.NextLevelXP {
		return nil
	}
	err := tx.Model(user).UpdateColumns(map[string]any{
		"current_level":    level.Level,
		"current_level_xp": level.CurrentLevelXP,
		"next_level_xp":    level.NextLevelXP,
	}).Error
	if err != nil {
		return fmt.Errorf("update level: %w", err)
	}
	user.CurrentLevel = level.Level
	user.CurrentLevelXP = level.CurrentLevelXP
	user.NextLevelXP = level.NextLevelXP
	return nil
}

func (s *ProgressService) afterProgress(ctx context.Context, user models.User, unlocked []achievements.Definition, previousLevel, level int) {
	if s.boards != nil {
		s.boards.Invalidate(ctx)
	}
	if len(unlocked) > 0 {
		if err := s.notifier.NotifyAchievements(user, unlocked); err != nil {
			logging.LogError(s.logger, "services", "afterProgress", "notify achievements", user.ID, err)
		}
	}
	if level > previousLevel && previousLevel > 0 {
		if err := s.notifier.NotifyLevelUp(user, level); err != nil {
			logging.LogError(s.logger, "services", "afterProgress", "notify level up", user.ID, err)
		}
	}
}

// DeleteLog soft deletes a log. Owners may delete their own logs, admins any.
// XP and achievements earned from the log are kept.
func (s *ProgressService) DeleteLog(ctx context.Context, actor models.User, logID uint) error {
	var log models.ConeyLog
	if err := s.db.WithContext(ctx).First(&log, logID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if log.UserID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}
	if err := s.db.WithContext(ctx).Delete(&log).Error; err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	if s.boards != nil {
		s.boards.Invalidate(ctx)
	}
	return nil
}

// RecalculateLevel re-derives the stored level fields from total XP.
func (s *ProgressService) RecalculateLevel(ctx context.Context, userID uint) (xp.Level, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xp.Level{}, ErrNotFound
		}
		return xp.Level{}, err
	}
	level := xp.CalculateLevelFromXP(user.TotalXP)
	return level, applyLevel(s.db.WithContext(ctx), &user, level)
}

// RecalculateAll syncs achievements and levels for every approved, unbanned
// user and returns how many achievements were newly unlocked. Each user is
// evaluated in their last known timezone.
func (s *ProgressService) RecalculateAll(ctx context.Context) (int, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("is_approved = ? AND is_banned = ?", true, false).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	total := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		unlocked, err := s.ResyncUser(ctx, id)
		if err != nil {
			logging.LogError(s.logger, "services", "RecalculateAll", "sync achievements", id, err)
			continue
		}
		total += len(unlocked)
		if _, err := s.RecalculateLevel(ctx, id); err != nil {
			logging.LogError(s.logger, "services", "RecalculateAll", "recalculate level", id, err)
		}
	}
	return total, nil
}

func definitionIDs(defs []achievements.Definition) []string {
	ids := make([]string, 0, len(defs))
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	return ids
}
