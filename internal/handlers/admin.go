package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/auth"
	"github.com/coney-counter/coney-counter-api/internal/logging"
	"github.com/coney-counter/coney-counter-api/internal/models"
	"github.com/coney-counter/coney-counter-api/internal/notifier"
	"github.com/coney-counter/coney-counter-api/internal/services"
	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ApprovalMailer emails a user once their account is approved.
type ApprovalMailer interface {
	SendApproval(user models.User) error
}

type AdminHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	notifier    notifier.Notifier
	mailer      ApprovalMailer
	boards      *services.LeaderboardService
	export      *services.ExportService
	logger      *logrus.Logger
}

func NewAdminHandler(db *gorm.DB, authHandler *auth.AuthHandler, n notifier.Notifier, mailer ApprovalMailer, boards *services.LeaderboardService, export *services.ExportService, logger *logrus.Logger) *AdminHandler {
	if n == nil {
		n = notifier.Noop{}
	}
	return &AdminHandler{db: db, authHandler: authHandler, notifier: n, mailer: mailer, boards: boards, export: export, logger: logger}
}

type AdminUsersInput struct {
	auth.AuthInput
	Status string `query:"status" default:"all" enum:"all,pending,approved,banned"`
	Query  string `query:"q" doc:"Matches username, name or email"`
}

type AdminUsersOutput struct {
	Body struct {
		Users []models.User `json:"users"`
	}
}

func (h *AdminHandler) HandleListUsers(ctx context.Context, input *AdminUsersInput) (*AdminUsersOutput, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	q := h.db.WithContext(ctx).Model(&models.User{})
	switch input.Status {
	case "pending":
		q = q.Where("is_approved = ? AND is_banned = ?", false, false)
	case "approved":
		q = q.Where("is_approved = ? AND is_banned = ?", true, false)
	case "banned":
		q = q.Where("is_banned = ?", true)
	}
	if term := strings.TrimSpace(input.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(username) LIKE ? OR LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	out := &AdminUsersOutput{}
	out.Body.Users = []models.User{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&out.Body.Users).Error; err != nil {
		return nil, serviceError(h.logger, "AdminHandler.HandleListUsers", err)
	}
	return out, nil
}

type AdminUpdateUserInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		IsApproved *bool   `json:"is_approved,omitempty"`
		IsBanned   *bool   `json:"is_banned,omitempty"`
		Role       *string `json:"role,omitempty" enum:"user,admin"`
	}
}

type AdminUpdateUserOutput struct {
	Body models.User
}

func (h *AdminHandler) HandleUpdateUser(ctx context.Context, input *AdminUpdateUserInput) (*AdminUpdateUserOutput, error) {
	admin, err := h.authHandler.RequireAdmin(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if admin.ID == input.ID {
		if input.Body.IsBanned != nil && *input.Body.IsBanned {
			return nil, huma.Error400BadRequest("You cannot ban yourself")
		}
		if input.Body.Role != nil && *input.Body.Role != models.RoleAdmin {
			return nil, huma.Error400BadRequest("You cannot remove your own admin role")
		}
	}

	var user models.User
	if err := h.db.WithContext(ctx).First(&user, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("User not found")
		}
		return nil, serviceError(h.logger, "AdminHandler.HandleUpdateUser", err)
	}

	wasApproved, wasBanned := user.IsApproved, user.IsBanned
	updates := map[string]any{}
	if input.Body.IsApproved != nil {
		updates["is_approved"] = *input.Body.IsApproved
		user.IsApproved = *input.Body.IsApproved
	}
	if input.Body.IsBanned != nil {
		updates["is_banned"] = *input.Body.IsBanned
		user.IsBanned = *input.Body.IsBanned
	}
	if input.Body.Role != nil {
		updates["role"] = *input.Body.Role
		user.Role = *input.Body.Role
	}
	if len(updates) == 0 {
		return &AdminUpdateUserOutput{Body: user}, nil
	}

	if err := h.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return nil, serviceError(h.logger, "AdminHandler.HandleUpdateUser", err)
	}
	h.logger.WithFields(logrus.Fields{"admin": admin.ID, "user": user.ID, "updates": updates}).Info("user updated by admin")

	if wasBanned != user.IsBanned && h.boards != nil {
		h.boards.Invalidate(ctx)
	}
	if !wasApproved && user.IsApproved {
		h.announceApproval(user)
	}
	return &AdminUpdateUserOutput{Body: user}, nil
}

// announceApproval tells the user and the community channel. Failures are
// logged only.
func (h *AdminHandler) announceApproval(user models.User) {
	if err := h.notifier.NotifyApproval(user); err != nil {
		logging.LogError(h.logger, "handlers", "AdminHandler.announceApproval", "discord", user.ID, err)
	}
	if h.mailer == nil {
		return
	}
	if err := h.mailer.SendApproval(user); err != nil && !errors.Is(err, notifier.ErrEmailNotConfigured) {
		logging.LogError(h.logger, "handlers", "AdminHandler.announceApproval", "email", user.ID, err)
	}
}

type AdminStatsInput struct {
	auth.AuthInput
}

type BrandTotal struct {
	Brand    string `json:"brand"`
	Logs     int64  `json:"logs"`
	Quantity int64  `json:"quantity"`
}

type AdminStatsOutput struct {
	Body struct {
		Users                int64        `json:"users"`
		ApprovedUsers        int64        `json:"approved_users"`
		PendingUsers         int64        `json:"pending_users"`
		BannedUsers          int64        `json:"banned_users"`
		Logs                 int64        `json:"logs"`
		Coneys               int64        `json:"coneys"`
		ConeysPerUser        string       `json:"coneys_per_user"`
		UnlockedAchievements int64        `json:"unlocked_achievements"`
		LogsLast7Days        int64        `json:"logs_last_7_days"`
		Brands               []BrandTotal `json:"brands"`
	}
}

func (h *AdminHandler) HandleStats(ctx context.Context, input *AdminStatsInput) (*AdminStatsOutput, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	db := h.db.WithContext(ctx)
	out := &AdminStatsOutput{}
	b := &out.Body
	counts := []struct {
		dst   *int64
		model any
		where string
		args  []any
	}{
		{&b.Users, &models.User{}, "", nil},
		{&b.ApprovedUsers, &models.User{}, "is_approved = ? AND is_banned = ?", []any{true, false}},
		{&b.PendingUsers, &models.User{}, "is_approved = ? AND is_banned = ?", []any{false, false}},
		{&b.BannedUsers, &models.User{}, "is_banned = ?", []any{true}},
		{&b.Logs, &models.ConeyLog{}, "", nil},
		{&b.UnlockedAchievements, &models.UserAchievement{}, "", nil},
		{&b.LogsLast7Days, &models.ConeyLog{}, "created_at >= ?", []any{time.Now().AddDate(0, 0, -7)}},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, serviceError(h.logger, "AdminHandler.HandleStats", err)
		}
	}

	if err := db.Model(&models.ConeyLog{}).Select("COALESCE(SUM(quantity), 0)").Scan(&b.Coneys).Error; err != nil {
		return nil, serviceError(h.logger, "AdminHandler.HandleStats", err)
	}
	b.ConeysPerUser = "0.00"
	if b.Users > 0 {
		b.ConeysPerUser = decimal.NewFromInt(b.Coneys).Div(decimal.NewFromInt(b.Users)).StringFixed(2)
	}

	b.Brands = []BrandTotal{}
	if err := db.Model(&models.ConeyLog{}).
		Select("brand, COUNT(*) AS logs, COALESCE(SUM(quantity), 0) AS quantity").
		Group("brand").Order("quantity DESC").Order("brand").
		Scan(&b.Brands).Error; err != nil {
		return nil, serviceError(h.logger, "AdminHandler.HandleStats", err)
	}
	return out, nil
}

// HandleExport streams every log and user as an XLSX workbook. It is a plain
// chi handler behind AuthMiddleware so the browser can download the file.
func (h *AdminHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var user models.User
	if err := h.db.WithContext(r.Context()).First(&user, userID).Error; err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if user.IsBanned || !user.IsAdmin() {
		http.Error(w, "Admin access required", http.StatusForbidden)
		return
	}

	filename := fmt.Sprintf("coney-counter-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := h.export.WriteWorkbook(r.Context(), w); err != nil {
		logging.LogError(h.logger, "handlers", "AdminHandler.HandleExport", "write workbook", user.ID, err)
		w.Header().Del("Content-Disposition")
		http.Error(w, "Export failed", http.StatusInternalServerError)
	}
}
