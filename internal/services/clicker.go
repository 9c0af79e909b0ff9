package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/clicker"
	"github.com/coney-counter/coney-counter-api/internal/locking"
	"github.com/coney-counter/coney-counter-api/internal/logging"
	"github.com/coney-counter/coney-counter-api/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const clickerLockTTL = 10 * time.Second

type ClickerView struct {
	State        clicker.State         `json:"state"`
	Totals       clicker.Totals        `json:"totals"`
	Upgrades     []clicker.UpgradeView `json:"upgrades"`
	LastSyncedAt time.Time             `json:"last_synced_at"`
}

// SyncRequest carries what the client earned since its last sync.
type SyncRequest struct {
	Earned float64 `validate:"min=0"`
	Clicks int64   `validate:"min=0"`
}

type SyncResult struct {
	View     ClickerView
	Accepted float64
	Clamped  bool
}

type PurchaseResult struct {
	View  ClickerView
	Price int64
}

type ClickerService struct {
	db       *gorm.DB
	locker   locking.Locker
	logger   *logrus.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewClickerService(db *gorm.DB, locker locking.Locker, logger *logrus.Logger) *ClickerService {
	if locker == nil {
		locker = locking.NewLocalLocker()
	}
	return &ClickerService{db: db, locker: locker, logger: logger, validate: NewValidator(), now: time.Now}
}

func toState(m models.ClickerState) clicker.State {
	owned := m.Upgrades
	if owned == nil {
		owned = map[string]int{}
	}
	return clicker.State{
		Coneys:         m.Coneys,
		LifetimeEarned: m.LifetimeEarned,
		TotalClicks:    m.TotalClicks,
		Owned:          owned,
	}
}

func viewOf(m models.ClickerState) ClickerView {
	st := toState(m)
	return ClickerView{
		State:        st,
		Totals:       clicker.ComputeTotals(st.Owned),
		Upgrades:     st.Catalogue(),
		LastSyncedAt: m.LastSyncedAt,
	}
}

func (s *ClickerService) load(tx *gorm.DB, userID uint) (models.ClickerState, error) {
	var st models.ClickerState
	err := tx.Where(models.ClickerState{UserID: userID}).
		Attrs(models.ClickerState{Upgrades: map[string]int{}, LastSyncedAt: s.now()}).
		FirstOrCreate(&st).Error
	return st, err
}

// State returns the user's save, creating an empty one on first visit.
func (s *ClickerService) State(ctx context.Context, userID uint) (*ClickerView, error) {
	st, err := s.load(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, fmt.Errorf("load clicker state: %w", err)
	}
	view := viewOf(st)
	return &view, nil
}

func (s *ClickerService) withLock(ctx context.Context, userID uint, fn func() error) error {
	release, err := s.locker.Obtain(ctx, fmt.Sprintf("clicker:%d", userID), clickerLockTTL)
	if errors.Is(err, locking.ErrNotObtained) {
		return ErrBusy
	}
	if err != nil {
		return fmt.Errorf("obtain clicker lock: %w", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logging.LogError(s.logger, "services", "ClickerService.withLock", "release", userID, err)
		}
	}()
	return fn()
}

// Sync credits what the client reports, capped by what the owned upgrades
// could have produced since the previous sync.
func (s *ClickerService) Sync(ctx context.Context, userID uint, req SyncRequest) (*SyncResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if math.IsNaN(req.Earned) || math.IsInf(req.Earned, 0) {
		return nil, fmt.Errorf("%w: earned must be a finite number", ErrInvalidInput)
	}

	var result SyncResult
	err := s.withLock(ctx, userID, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			st, err := s.load(tx, userID)
			if err != nil {
				return err
			}

			now := s.now()
			elapsed := now.Sub(st.LastSyncedAt)
			totals := clicker.ComputeTotals(toState(st).Owned)
			limit := clicker.MaxEarnable(totals, elapsed, req.Clicks)

			accepted := req.Earned
			if accepted > limit {
				accepted = limit
				result.Clamped = true
			}
			result.Accepted = accepted

			st.Coneys += accepted
			st.LifetimeEarned += accepted
			st.TotalClicks += clicker.ClampClicks(elapsed, req.Clicks)
			st.LastSyncedAt = now
			if err := tx.Save(&st).Error; err != nil {
				return fmt.Errorf("save clicker state: %w", err)
			}
			result.View = viewOf(st)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Purchase buys one upgrade. Errors from the clicker package are returned
// as is so callers can match them.
func (s *ClickerService) Purchase(ctx context.Context, userID uint, upgradeID string) (*PurchaseResult, error) {
	var result PurchaseResult
	err := s.withLock(ctx, userID, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			st, err := s.load(tx, userID)
			if err != nil {
				return err
			}

			next, price, err := clicker.Purchase(toState(st), upgradeID)
			if err != nil {
				return err
			}

			st.Coneys = next.Coneys
			st.Upgrades = next.Owned
			if err := tx.Save(&st).Error; err != nil {
				return fmt.Errorf("save clicker state: %w", err)
			}
			result.View = viewOf(st)
			result.Price = price
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
