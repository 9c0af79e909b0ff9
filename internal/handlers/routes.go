package handlers

import (
	"net/http"

	"github.com/coney-counter/coney-counter-api/internal/auth"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers groups every API handler RegisterRoutes mounts.
type Handlers struct {
	Profile     *ProfileHandler
	ConeyLogs   *ConeyLogHandler
	Achievement *AchievementHandler
	Leaderboard *LeaderboardHandler
	Clicker     *ClickerHandler
	Receipts    *ReceiptHandler
	APIKeys     *APIKeyHandler
	Admin       *AdminHandler

	// MaxReceiptBytes caps the receipt upload body.
	MaxReceiptBytes int64
	// UploadsDir is served under /uploads when receipts are stored locally.
	UploadsDir string
}

var secured = func(o *huma.Operation) {
	o.Security = []map[string][]string{{"cookieAuth": {}}, {"apiKeyAuth": {}}}
}

func RegisterRoutes(r *chi.Mux, authHandler *auth.AuthHandler, h *Handlers) huma.API {
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(authHandler.SessionMiddleware)

	config := huma.DefaultConfig("Coney Counter API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, config)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Get("/auth/google/login", authHandler.HandleLogin)
	r.Get("/auth/google/callback", authHandler.HandleCallback)
	r.Post("/auth/logout", authHandler.HandleLogout)

	huma.Get(api, "/api/me", h.Profile.HandleMe, secured)
	huma.Put(api, "/api/me", h.Profile.HandleUpdateMe, secured)
	huma.Get(api, "/api/users/{username}", h.Profile.HandlePublicProfile, secured)

	huma.Get(api, "/api/coney-logs", h.ConeyLogs.HandleList, secured)
	huma.Post(api, "/api/coney-logs", h.ConeyLogs.HandleCreate, secured)
	huma.Delete(api, "/api/coney-logs/{id}", h.ConeyLogs.HandleDelete, secured)
	huma.Get(api, "/api/stats", h.ConeyLogs.HandleStats, secured)

	huma.Get(api, "/api/achievements", h.Achievement.HandleList, secured)
	huma.Post(api, "/api/achievements/sync", h.Achievement.HandleSync, secured)
	huma.Get(api, "/api/titles", h.Achievement.HandleTitles, secured)

	huma.Get(api, "/api/leaderboard", h.Leaderboard.HandleGet, secured)

	huma.Get(api, "/api/coneyclicker", h.Clicker.HandleState, secured)
	huma.Post(api, "/api/coneyclicker/sync", h.Clicker.HandleSync, secured)
	huma.Post(api, "/api/coneyclicker/purchase", h.Clicker.HandlePurchase, secured)

	scan := huma.Operation{
		OperationID:  "scan-receipt",
		Method:       http.MethodPost,
		Path:         "/api/receipts/scan",
		Summary:      "Scan a receipt image",
		MaxBodyBytes: h.MaxReceiptBytes,
	}
	secured(&scan)
	huma.Register(api, scan, h.Receipts.HandleScan)

	huma.Get(api, "/api/api-keys", h.APIKeys.HandleList, secured)
	huma.Post(api, "/api/api-keys", h.APIKeys.HandleCreate, secured)
	huma.Delete(api, "/api/api-keys/{id}", h.APIKeys.HandleDelete, secured)

	huma.Get(api, "/api/admin/users", h.Admin.HandleListUsers, secured)
	huma.Patch(api, "/api/admin/users/{id}", h.Admin.HandleUpdateUser, secured)
	huma.Get(api, "/api/admin/stats", h.Admin.HandleStats, secured)
	r.With(authHandler.AuthMiddleware).Get("/api/admin/export", h.Admin.HandleExport)

	if h.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.UploadsDir)))
		r.With(authHandler.AuthMiddleware).Get("/uploads/*", fs.ServeHTTP)
	}

	return api
}
