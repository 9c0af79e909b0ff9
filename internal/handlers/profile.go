package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/achievements"
	"github.com/coney-counter/coney-counter-api/internal/auth"
	"github.com/coney-counter/coney-counter-api/internal/models"
	"github.com/coney-counter/coney-counter-api/internal/xp"
	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ProfileHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	logger      *logrus.Logger
}

func NewProfileHandler(db *gorm.DB, authHandler *auth.AuthHandler, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{db: db, authHandler: authHandler, logger: logger}
}

type Profile struct {
	ID             uint      `json:"id"`
	Email          string    `json:"email,omitempty"`
	Name           string    `json:"name"`
	Username       string    `json:"username"`
	Image          string    `json:"image"`
	Role           string    `json:"role,omitempty"`
	IsApproved     bool      `json:"is_approved"`
	TotalXP        int       `json:"total_xp"`
	Level          xp.Level  `json:"level"`
	Progress       float64   `json:"progress" doc:"Percent of the way to the next level"`
	SelectedAvatar string    `json:"selected_avatar"`
	SelectedTitle  string    `json:"selected_title"`
	Achievements   int       `json:"achievements" doc:"Number of unlocked achievements"`
	JoinedAt       time.Time `json:"joined_at"`
}

func profileOf(user models.User, unlocked int, private bool) Profile {
	p := Profile{
		ID:             user.ID,
		Name:           user.Name,
		Username:       user.Username,
		Image:          user.Image,
		IsApproved:     user.IsApproved,
		TotalXP:        user.TotalXP,
		Level:          xp.CalculateLevelFromXP(user.TotalXP),
		Progress:       xp.Progress(user.TotalXP),
		SelectedAvatar: user.SelectedAvatar,
		SelectedTitle:  user.SelectedTitle,
		Achievements:   unlocked,
		JoinedAt:       user.CreatedAt,
	}
	if private {
		p.Email = user.Email
		p.Role = user.Role
	}
	return p
}

func unlockedAchievements(ctx context.Context, db *gorm.DB, userID uint) ([]models.UserAchievement, error) {
	var rows []models.UserAchievement
	err := db.WithContext(ctx).Where("user_id = ?", userID).Order("unlocked_at ASC, id ASC").Find(&rows).Error
	return rows, err
}

func unlockedSet(rows []models.UserAchievement) map[string]bool {
	m := make(map[string]bool, len(rows))
	for _, r := range rows {
		m[r.AchievementID] = true
	}
	return m
}

type MeInput struct {
	auth.AuthInput
}

type MeOutput struct {
	Body Profile
}

func (h *ProfileHandler) HandleMe(ctx context.Context, input *MeInput) (*MeOutput, error) {
	user, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	var count int64
	if err := h.db.WithContext(ctx).Model(&models.UserAchievement{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		return nil, serviceError(h.logger, "ProfileHandler.HandleMe", err)
	}
	return &MeOutput{Body: profileOf(*user, int(count), true)}, nil
}

type UpdateMeInput struct {
	auth.AuthInput
	Body struct {
		Username       *string `json:"username,omitempty" minLength:"3" maxLength:"32" pattern:"^[A-Za-z0-9_.-]+$"`
		SelectedTitle  *string `json:"selected_title,omitempty" doc:"Title id, empty to clear"`
		SelectedAvatar *string `json:"selected_avatar,omitempty" doc:"Avatar id, empty to clear"`
	}
}

func (h *ProfileHandler) HandleUpdateMe(ctx context.Context, input *UpdateMeInput) (*MeOutput, error) {
	user, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	rows, err := unlockedAchievements(ctx, h.db, user.ID)
	if err != nil {
		return nil, serviceError(h.logger, "ProfileHandler.HandleUpdateMe", err)
	}
	unlocked := unlockedSet(rows)

	updates := map[string]any{}
	if input.Body.Username != nil {
		username := strings.TrimSpace(*input.Body.Username)
		var taken int64
		err := h.db.WithContext(ctx).Model(&models.User{}).
			Where("LOWER(username) = ? AND id <> ?", strings.ToLower(username), user.ID).
			Count(&taken).Error
		if err != nil {
			return nil, serviceError(h.logger, "ProfileHandler.HandleUpdateMe", err)
		}
		if taken > 0 {
			return nil, huma.Error409Conflict("Username is already taken")
		}
		updates["username"] = username
		user.Username = username
	}
	if input.Body.SelectedTitle != nil {
		id := *input.Body.SelectedTitle
		if id != "" {
			title, ok := achievements.FindTitle(id)
			if !ok {
				return nil, huma.Error422UnprocessableEntity("Unknown title")
			}
			if !achievements.TitleUnlocked(title, user.CurrentLevel, unlocked) {
				return nil, huma.Error403Forbidden("Title is still locked")
			}
		}
		updates["selected_title"] = id
		user.SelectedTitle = id
	}
	if input.Body.SelectedAvatar != nil {
		id := *input.Body.SelectedAvatar
		if id != "" && !achievements.AvatarUnlocked(id, user.CurrentLevel) {
			return nil, huma.Error403Forbidden("Avatar is unknown or still locked")
		}
		updates["selected_avatar"] = id
		user.SelectedAvatar = id
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return nil, serviceError(h.logger, "ProfileHandler.HandleUpdateMe", err)
		}
	}
	return &MeOutput{Body: profileOf(*user, len(rows), true)}, nil
}

type PublicProfileInput struct {
	auth.AuthInput
	Username string `path:"username"`
}

type UnlockedAchievement struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Icon       string            `json:"icon"`
	Tier       achievements.Tier `json:"tier"`
	UnlockedAt time.Time         `json:"unlocked_at"`
}

type PublicProfileOutput struct {
	Body struct {
		Profile      Profile               `json:"profile"`
		Stats        achievements.Stats    `json:"stats"`
		Achievements []UnlockedAchievement `json:"achievements"`
	}
}

func (h *ProfileHandler) HandlePublicProfile(ctx context.Context, input *PublicProfileInput) (*PublicProfileOutput, error) {
	if _, err := h.authHandler.Authorize(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	var user models.User
	err := h.db.WithContext(ctx).Where("username = ? AND is_banned = ?", input.Username, false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, huma.Error404NotFound("User not found")
	}
	if err != nil {
		return nil, serviceError(h.logger, "ProfileHandler.HandlePublicProfile", err)
	}

	rows, err := unlockedAchievements(ctx, h.db, user.ID)
	if err != nil {
		return nil, serviceError(h.logger, "ProfileHandler.HandlePublicProfile", err)
	}
	var logs []models.ConeyLog
	if err := h.db.WithContext(ctx).Where("user_id = ?", user.ID).Order("created_at ASC").Find(&logs).Error; err != nil {
		return nil, serviceError(h.logger, "ProfileHandler.HandlePublicProfile", err)
	}

	out := &PublicProfileOutput{}
	out.Body.Profile = profileOf(user, len(rows), false)
	out.Body.Stats = achievements.ComputeStats(logs, 0, time.Now())
	out.Body.Achievements = make([]UnlockedAchievement, 0, len(rows))
	for _, r := range rows {
		d, ok := achievements.Get(r.AchievementID)
		if !ok {
			continue
		}
		out.Body.Achievements = append(out.Body.Achievements, UnlockedAchievement{
			ID:         d.ID,
			Title:      d.Title,
			Icon:       d.Icon,
			Tier:       achievements.TierOf(d.ID),
			UnlockedAt: r.UnlockedAt,
		})
	}
	return out, nil
}
