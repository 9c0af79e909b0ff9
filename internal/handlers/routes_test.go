package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coney-counter/coney-counter-api/internal/models"
	"github.com/coney-counter/coney-counter-api/internal/services"
	"github.com/coney-counter/coney-counter-api/internal/testutil"
	"github.com/go-chi/chi/v5"
)

func newTestRouter(t *testing.T, env *testEnv) *chi.Mux {
	t.Helper()
	h := &Handlers{
		Profile:         NewProfileHandler(env.db, env.authHandler, env.logger),
		ConeyLogs:       NewConeyLogHandler(env.db, env.authHandler, env.progress, env.logger),
		Achievement:     NewAchievementHandler(env.db, env.authHandler, env.progress, env.logger),
		Leaderboard:     NewLeaderboardHandler(env.authHandler, env.boards, env.logger),
		Clicker:         NewClickerHandler(env.authHandler, services.NewClickerService(env.db, nil, env.logger), env.logger),
		Receipts:        NewReceiptHandler(env.authHandler, &fakeExtractor{}, &memoryStore{}, nil, env.logger),
		APIKeys:         NewAPIKeyHandler(env.db, env.authHandler, env.logger),
		Admin:           newAdminHandler(env, nil),
		MaxReceiptBytes: 1 << 20,
		UploadsDir:      t.TempDir(),
	}
	r := chi.NewRouter()
	RegisterRoutes(r, env.authHandler, h)
	return r
}

func TestRoutes(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "router@example.com")
	router := newTestRouter(t, env)

	token, err := env.authHandler.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	cookie := "auth_token=" + token

	do := func(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
		t.Helper()
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("Health", func(t *testing.T) {
		rr := do(http.MethodGet, "/health", "", nil)
		if rr.Code != http.StatusOK || rr.Body.String() != "OK" {
			t.Fatalf("unexpected health response %d %q", rr.Code, rr.Body.String())
		}
	})

	t.Run("MeAnonymous", func(t *testing.T) {
		rr := do(http.MethodGet, "/api/me", "", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("MeWithCookie", func(t *testing.T) {
		rr := do(http.MethodGet, "/api/me", "", map[string]string{"Cookie": cookie})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var profile Profile
		if err := json.Unmarshal(rr.Body.Bytes(), &profile); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if profile.Email != user.Email {
			t.Errorf("expected %s, got %s", user.Email, profile.Email)
		}
	})

	t.Run("LogConeyWithAPIKey", func(t *testing.T) {
		key := models.APIKey{UserID: user.ID, Key: "router-test-key", Name: "test"}
		if err := env.db.Create(&key).Error; err != nil {
			t.Fatalf("failed to create key: %v", err)
		}
		rr := do(http.MethodPost, "/api/coney-logs", `{"brand":"Skyline Chili","quantity":2}`,
			map[string]string{"X-API-KEY": key.Key})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var out struct {
			XPGained int `json:"xp_gained"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if out.XPGained < 20 {
			t.Errorf("expected XP for 2 coneys, got %d", out.XPGained)
		}
	})

	t.Run("LogConeyValidation", func(t *testing.T) {
		rr := do(http.MethodPost, "/api/coney-logs", `{"brand":"Skyline Chili","quantity":0}`,
			map[string]string{"Cookie": cookie})
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("ExportRequiresLogin", func(t *testing.T) {
		rr := do(http.MethodGet, "/api/admin/export", "", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("ExportRequiresAdmin", func(t *testing.T) {
		rr := do(http.MethodGet, "/api/admin/export", "", map[string]string{"Cookie": cookie})
		if rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rr.Code)
		}
	})

	t.Run("OpenAPI", func(t *testing.T) {
		rr := do(http.MethodGet, "/openapi.json", "", nil)
		if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "/api/receipts/scan") {
			t.Fatalf("expected the OpenAPI document to list the receipt route, got %d", rr.Code)
		}
	})
}
