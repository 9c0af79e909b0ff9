package handlers

import (
	"net/http"
	"testing"

	"github.com/coney-counter/coney-counter-api/internal/services"
	"github.com/coney-counter/coney-counter-api/internal/testutil"
)

func TestClickerHandlers(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "clicker@example.com")
	handler := NewClickerHandler(env.authHandler, services.NewClickerService(env.db, nil, env.logger), env.logger)
	ctx := as(user.ID)

	state, err := handler.HandleState(ctx, &ClickerStateInput{})
	if err != nil {
		t.Fatalf("HandleState returned error: %v", err)
	}
	if state.Body.State.Coneys != 0 || state.Body.Totals.ClickValue != 1 {
		t.Errorf("unexpected initial state %+v", state.Body)
	}

	sync := func(earned float64, clicks int64) *ClickerSyncOutput {
		t.Helper()
		in := &ClickerSyncInput{}
		in.Body.Earned = earned
		in.Body.Clicks = clicks
		out, err := handler.HandleSync(ctx, in)
		if err != nil {
			t.Fatalf("HandleSync returned error: %v", err)
		}
		return out
	}
	purchase := func(id string) (*ClickerPurchaseOutput, error) {
		in := &ClickerPurchaseInput{}
		in.Body.UpgradeID = id
		return handler.HandlePurchase(ctx, in)
	}

	if out := sync(10, 10); out.Body.Accepted != 10 || out.Body.Clamped {
		t.Errorf("expected 10 accepted, got %+v", out.Body)
	}
	if _, err := purchase("extra-cheese"); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for insufficient coneys, got %v", err)
	}

	sync(10, 10)
	bought, err := purchase("extra-cheese")
	if err != nil {
		t.Fatalf("HandlePurchase returned error: %v", err)
	}
	if bought.Body.Price != 15 || bought.Body.State.Coneys != 5 {
		t.Errorf("expected to pay 15 and keep 5, got %+v", bought.Body)
	}
	if bought.Body.Totals.ClickValue != 2 {
		t.Errorf("expected click value 2, got %v", bought.Body.Totals.ClickValue)
	}

	if _, err := purchase("extra-cheese"); statusOf(err) != http.StatusConflict {
		t.Fatalf("expected 409 buying a one-time upgrade twice, got %v", err)
	}
	if _, err := purchase("chili-empire"); statusOf(err) != http.StatusConflict {
		t.Fatalf("expected 409 for a locked upgrade, got %v", err)
	}
	if _, err := purchase("free-coneys"); statusOf(err) != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown upgrade, got %v", err)
	}
}
