package handlers

import (
	"context"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/achievements"
	"github.com/coney-counter/coney-counter-api/internal/auth"
	"github.com/coney-counter/coney-counter-api/internal/services"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AchievementHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	progress    *services.ProgressService
	logger      *logrus.Logger
}

func NewAchievementHandler(db *gorm.DB, authHandler *auth.AuthHandler, progress *services.ProgressService, logger *logrus.Logger) *AchievementHandler {
	return &AchievementHandler{db: db, authHandler: authHandler, progress: progress, logger: logger}
}

type AchievementView struct {
	achievements.Definition
	Tier       achievements.Tier `json:"tier"`
	XPReward   int               `json:"xp_reward"`
	Unlocked   bool              `json:"unlocked"`
	UnlockedAt *time.Time        `json:"unlocked_at,omitempty"`
}

type ListAchievementsInput struct {
	auth.AuthInput
}

type ListAchievementsOutput struct {
	Body struct {
		Achievements []AchievementView `json:"achievements"`
		Unlocked     int               `json:"unlocked"`
		Total        int               `json:"total"`
	}
}

func (h *AchievementHandler) HandleList(ctx context.Context, input *ListAchievementsInput) (*ListAchievementsOutput, error) {
	user, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	rows, err := unlockedAchievements(ctx, h.db, user.ID)
	if err != nil {
		return nil, serviceError(h.logger, "AchievementHandler.HandleList", err)
	}
	unlockedAt := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		unlockedAt[r.AchievementID] = r.UnlockedAt
	}

	out := &ListAchievementsOutput{}
	out.Body.Achievements = make([]AchievementView, 0, len(achievements.Definitions))
	for _, d := range achievements.Definitions {
		view := AchievementView{Definition: d, Tier: achievements.TierOf(d.ID), XPReward: achievements.XPReward(d.ID)}
		if at, ok := unlockedAt[d.ID]; ok {
			at := at
			view.Unlocked = true
			view.UnlockedAt = &at
			out.Body.Unlocked++
		}
		out.Body.Achievements = append(out.Body.Achievements, view)
	}
	out.Body.Total = len(achievements.Definitions)
	return out, nil
}

type SyncAchievementsInput struct {
	auth.AuthInput
	Body struct {
		TimezoneOffset int `json:"timezone_offset,omitempty" minimum:"-840" maximum:"840" required:"false"`
	}
}

type SyncAchievementsOutput struct {
	Body struct {
		NewAchievements []achievements.Definition `json:"new_achievements"`
	}
}

// HandleSync re-checks the caller's history, picking up achievements added
// to the catalogue after their logs were written.
func (h *AchievementHandler) HandleSync(ctx context.Context, input *SyncAchievementsInput) (*SyncAchievementsOutput, error) {
	user, err := h.authHandler.RequireApproved(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	unlocked, err := h.progress.SyncAchievements(ctx, user.ID, input.Body.TimezoneOffset)
	if err != nil {
		return nil, serviceError(h.logger, "AchievementHandler.HandleSync", err)
	}
	out := &SyncAchievementsOutput{}
	out.Body.NewAchievements = unlocked
	if out.Body.NewAchievements == nil {
		out.Body.NewAchievements = []achievements.Definition{}
	}
	return out, nil
}

type TitleView struct {
	achievements.Title
	Unlocked bool `json:"unlocked"`
	Selected bool `json:"selected"`
}

type AvatarView struct {
	achievements.Avatar
	Unlocked bool `json:"unlocked"`
	Selected bool `json:"selected"`
}

type ListTitlesOutput struct {
	Body struct {
		Titles  []TitleView  `json:"titles"`
		Avatars []AvatarView `json:"avatars"`
	}
}

func (h *AchievementHandler) HandleTitles(ctx context.Context, input *ListAchievementsInput) (*ListTitlesOutput, error) {
	user, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	rows, err := unlockedAchievements(ctx, h.db, user.ID)
	if err != nil {
		return nil, serviceError(h.logger, "AchievementHandler.HandleTitles", err)
	}
	unlocked := unlockedSet(rows)

	out := &ListTitlesOutput{}
	for _, t := range achievements.Titles {
		out.Body.Titles = append(out.Body.Titles, TitleView{
			Title:    t,
			Unlocked: achievements.TitleUnlocked(t, user.CurrentLevel, unlocked),
			Selected: user.SelectedTitle == t.ID,
		})
	}
	for _, a := range achievements.Avatars {
		out.Body.Avatars = append(out.Body.Avatars, AvatarView{
			Avatar:   a,
			Unlocked: achievements.AvatarUnlocked(a.ID, user.CurrentLevel),
			Selected: user.SelectedAvatar == a.ID,
		})
	}
	return out, nil
}
