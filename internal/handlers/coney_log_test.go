package handlers

import (
	"net/http"
	"testing"

	"github.com/coney-counter/coney-counter-api/internal/models"
	"github.com/coney-counter/coney-counter-api/internal/testutil"
)

func createInput(brand string, quantity int) *CreateConeyLogInput {
	in := &CreateConeyLogInput{}
	in.Body.Brand = brand
	in.Body.Quantity = quantity
	return in
}

func TestHandleCreateConeyLog(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "eater@example.com")
	handler := NewConeyLogHandler(env.db, env.authHandler, env.progress, env.logger)

	in := createInput(models.BrandGoldStar, 2)
	in.Body.Location = &models.Location{Name: "Gold Star Clifton"}
	resp, err := handler.HandleCreate(as(user.ID), in)
	if err != nil {
		t.Fatalf("HandleCreate returned error: %v", err)
	}
	if resp.Body.Log.Brand != models.BrandGoldStar || resp.Body.Log.Quantity != 2 {
		t.Errorf("unexpected log %+v", resp.Body.Log)
	}
	if resp.Body.XPGained < 20 {
		t.Errorf("expected at least 20 XP for 2 coneys, got %d", resp.Body.XPGained)
	}
	if !resp.Body.LeveledUp {
		t.Error("expected the first log to level the user up")
	}

	var stored models.User
	env.db.First(&stored, user.ID)
	if stored.TotalXP != resp.Body.XPGained {
		t.Errorf("expected total XP %d, got %d", resp.Body.XPGained, stored.TotalXP)
	}
	if stored.CurrentLevel != resp.Body.Level.Level {
		t.Errorf("expected level %d, got %d", resp.Body.Level.Level, stored.CurrentLevel)
	}
}

func TestHandleCreateConeyLogRejected(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "eater@example.com")
	handler := NewConeyLogHandler(env.db, env.authHandler, env.progress, env.logger)

	t.Run("UnknownBrand", func(t *testing.T) {
		_, err := handler.HandleCreate(as(user.ID), createInput("Taco Bell", 1))
		if statusOf(err) != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %v", err)
		}
	})

	t.Run("NotApproved", func(t *testing.T) {
		pending := testutil.CreateUser(t, env.db, "pending@example.com")
		env.db.Model(&pending).Update("is_approved", false)
		_, err := handler.HandleCreate(as(pending.ID), createInput(models.BrandSkyline, 1))
		if statusOf(err) != http.StatusForbidden {
			t.Fatalf("expected 403, got %v", err)
		}
	})

	t.Run("Anonymous", func(t *testing.T) {
		_, err := handler.HandleCreate(as(0), createInput(models.BrandSkyline, 1))
		if statusOf(err) != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %v", err)
		}
	})

	var count int64
	env.db.Model(&models.ConeyLog{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no logs, got %d", count)
	}
}

func TestHandleListAndDeleteConeyLogs(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner@example.com")
	other := testutil.CreateUser(t, env.db, "other@example.com")
	handler := NewConeyLogHandler(env.db, env.authHandler, env.progress, env.logger)

	var ids []uint
	for _, brand := range []string{models.BrandSkyline, models.BrandEmpress, models.BrandDixie} {
		resp, err := handler.HandleCreate(as(owner.ID), createInput(brand, 1))
		if err != nil {
			t.Fatalf("HandleCreate returned error: %v", err)
		}
		ids = append(ids, resp.Body.Log.ID)
	}

	list, err := handler.HandleList(as(owner.ID), &ListConeyLogsInput{Limit: 2})
	if err != nil {
		t.Fatalf("HandleList returned error: %v", err)
	}
	if list.Body.Total != 3 || len(list.Body.Logs) != 2 {
		t.Fatalf("expected 2 of 3 logs, got %d of %d", len(list.Body.Logs), list.Body.Total)
	}
	if list.Body.Logs[0].ID != ids[2] {
		t.Errorf("expected newest log first, got %d", list.Body.Logs[0].ID)
	}

	if _, err := handler.HandleDelete(as(other.ID), &DeleteConeyLogInput{ID: ids[0]}); statusOf(err) != http.StatusForbidden {
		t.Fatalf("expected 403 deleting someone else's log, got %v", err)
	}
	if _, err := handler.HandleDelete(as(owner.ID), &DeleteConeyLogInput{ID: 9999}); statusOf(err) != http.StatusNotFound {
		t.Fatalf("expected 404 for a missing log, got %v", err)
	}
	if _, err := handler.HandleDelete(as(owner.ID), &DeleteConeyLogInput{ID: ids[0]}); err != nil {
		t.Fatalf("HandleDelete returned error: %v", err)
	}

	list, err = handler.HandleList(as(owner.ID), &ListConeyLogsInput{Limit: 50})
	if err != nil {
		t.Fatalf("HandleList returned error: %v", err)
	}
	if list.Body.Total != 2 {
		t.Errorf("expected 2 logs after delete, got %d", list.Body.Total)
	}

	stats, err := handler.HandleStats(as(owner.ID), &StatsInput{})
	if err != nil {
		t.Fatalf("HandleStats returned error: %v", err)
	}
	if stats.Body.TotalConeys != 2 || stats.Body.DistinctBrands != 2 {
		t.Errorf("unexpected stats %+v", stats.Body)
	}
}
