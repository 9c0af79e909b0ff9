package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/clicker"
	"github.com/coney-counter/coney-counter-api/internal/logging"
	"github.com/coney-counter/coney-counter-api/internal/models"
	"github.com/coney-counter/coney-counter-api/internal/testutil"
)

func TestClickerService(t *testing.T) {
	db := testutil.OpenDB(t)
	user := testutil.CreateUser(t, db, "clicker@example.com")
	s := NewClickerService(db, nil, logging.Discard())

	now := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	view, err := s.State(ctx, user.ID)
	if err != nil {
		t.Fatalf("State returned error: %v", err)
	}
	if view.State.Coneys != 0 || view.Totals.ClickValue != 1 || len(view.Upgrades) != len(clicker.Upgrades) {
		t.Errorf("unexpected initial view %+v", view)
	}

	t.Run("SyncAccepted", func(t *testing.T) {
		now = now.Add(10 * time.Second)
		res, err := s.Sync(ctx, user.ID, SyncRequest{Earned: 30, Clicks: 30})
		if err != nil {
			t.Fatalf("Sync returned error: %v", err)
		}
		if res.Clamped || res.Accepted != 30 {
			t.Errorf("expected 30 accepted, got %+v", res)
		}
		if res.View.State.TotalClicks != 30 {
			t.Errorf("expected 30 clicks, got %d", res.View.State.TotalClicks)
		}
	})

	t.Run("SyncClamped", func(t *testing.T) {
		now = now.Add(time.Second)
		res, err := s.Sync(ctx, user.ID, SyncRequest{Earned: 1e6, Clicks: 1000})
		if err != nil {
			t.Fatalf("Sync returned error: %v", err)
		}
		if !res.Clamped || res.Accepted != clicker.MaxClicksPerSecond {
			t.Errorf("expected clamp to %d, got %+v", clicker.MaxClicksPerSecond, res)
		}
		if res.View.State.Coneys != 50 || res.View.State.LifetimeEarned != 50 {
			t.Errorf("expected 50 coneys, got %+v", res.View.State)
		}
	})

	t.Run("RapidSyncsShareOneSecond", func(t *testing.T) {
		before, err := s.State(ctx, user.ID)
		if err != nil {
			t.Fatalf("State returned error: %v", err)
		}
		var accepted float64
		for i := 0; i < 10; i++ {
			now = now.Add(100 * time.Millisecond)
			res, err := s.Sync(ctx, user.ID, SyncRequest{Earned: 1000, Clicks: 1000})
			if err != nil {
				t.Fatalf("Sync %d returned error: %v", i, err)
			}
			accepted += res.Accepted
		}
		if accepted < 19.99 || accepted > 20.01 {
			t.Errorf("expected one second of clicks (20) across rapid syncs, got %v", accepted)
		}
		after, _ := s.State(ctx, user.ID)
		if clicks := after.State.TotalClicks - before.State.TotalClicks; clicks != clicker.MaxClicksPerSecond {
			t.Errorf("expected %d clicks recorded, got %d", clicker.MaxClicksPerSecond, clicks)
		}
		// refund so the purchase steps below see the same balance
		db.Model(&models.ClickerState{}).Where("user_id = ?", user.ID).
			UpdateColumns(map[string]any{"coneys": before.State.Coneys, "lifetime_earned": before.State.LifetimeEarned})
	})

	t.Run("SyncInvalid", func(t *testing.T) {
		if _, err := s.Sync(ctx, user.ID, SyncRequest{Earned: -1}); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Purchase", func(t *testing.T) {
		res, err := s.Purchase(ctx, user.ID, "line-cook")
		if err != nil {
			t.Fatalf("Purchase returned error: %v", err)
		}
		if res.Price != 15 || res.View.State.Coneys != 35 || res.View.State.Owned["line-cook"] != 1 {
			t.Errorf("unexpected purchase result %+v", res)
		}

		var stored models.ClickerState
		db.Where("user_id = ?", user.ID).First(&stored)
		if stored.Upgrades["line-cook"] != 1 || stored.Coneys != 35 {
			t.Errorf("expected purchase to be persisted, got %+v", stored)
		}
	})

	t.Run("PurchaseErrors", func(t *testing.T) {
		if _, err := s.Purchase(ctx, user.ID, "chili-pot"); !errors.Is(err, clicker.ErrInsufficientFunds) {
			t.Errorf("expected ErrInsufficientFunds, got %v", err)
		}
		if _, err := s.Purchase(ctx, user.ID, "chili-empire"); !errors.Is(err, clicker.ErrLocked) {
			t.Errorf("expected ErrLocked, got %v", err)
		}
		if _, err := s.Purchase(ctx, user.ID, "nope"); !errors.Is(err, clicker.ErrUnknownUpgrade) {
			t.Errorf("expected ErrUnknownUpgrade, got %v", err)
		}
	})

	t.Run("GeneratorIncome", func(t *testing.T) {
		now = now.Add(100 * time.Second)
		// one line cook makes 0.1/s, so 100s allow 10 coneys plus clicks
		res, err := s.Sync(ctx, user.ID, SyncRequest{Earned: 1000})
		if err != nil {
			t.Fatalf("Sync returned error: %v", err)
		}
		if !res.Clamped || res.Accepted < 9.99 || res.Accepted > 10.01 {
			t.Errorf("expected about 10 accepted, got %+v", res)
		}
	})
}
