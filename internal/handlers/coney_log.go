package handlers

import (
	"context"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/achievements"
	"github.com/coney-counter/coney-counter-api/internal/auth"
	"github.com/coney-counter/coney-counter-api/internal/models"
	"github.com/coney-counter/coney-counter-api/internal/services"
	"github.com/coney-counter/coney-counter-api/internal/xp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ConeyLogHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	progress    *services.ProgressService
	logger      *logrus.Logger
}

func NewConeyLogHandler(db *gorm.DB, authHandler *auth.AuthHandler, progress *services.ProgressService, logger *logrus.Logger) *ConeyLogHandler {
	return &ConeyLogHandler{db: db, authHandler: authHandler, progress: progress, logger: logger}
}

type ListConeyLogsInput struct {
	auth.AuthInput
	Limit  int `query:"limit" default:"50" minimum:"1" maximum:"200"`
	Offset int `query:"offset" default:"0" minimum:"0"`
}

type ListConeyLogsOutput struct {
	Body struct {
		Logs  []models.ConeyLog `json:"logs"`
		Total int64             `json:"total"`
	}
}

func (h *ConeyLogHandler) HandleList(ctx context.Context, input *ListConeyLogsInput) (*ListConeyLogsOutput, error) {
	user, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	out := &ListConeyLogsOutput{}
	q := h.db.WithContext(ctx).Model(&models.ConeyLog{}).Where("user_id = ?", user.ID)
	if err := q.Count(&out.Body.Total).Error; err != nil {
		return nil, serviceError(h.logger, "ConeyLogHandler.HandleList", err)
	}
	out.Body.Logs = []models.ConeyLog{}
	err = h.db.WithContext(ctx).Where("user_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Limit(input.Limit).Offset(input.Offset).
		Find(&out.Body.Logs).Error
	if err != nil {
		return nil, serviceError(h.logger, "ConeyLogHandler.HandleList", err)
	}
	return out, nil
}

type CreateConeyLogInput struct {
	auth.AuthInput
	Body struct {
		Brand            string           `json:"brand" doc:"Chili parlor brand" required:"true"`
		Quantity         int              `json:"quantity" minimum:"1" maximum:"100" required:"true"`
		Location         *models.Location `json:"location,omitempty" required:"false"`
		IsReceiptScanned bool             `json:"is_receipt_scanned,omitempty" required:"false"`
		ReceiptImageKey  string           `json:"receipt_image_key,omitempty" required:"false"`
		TimezoneOffset   int              `json:"timezone_offset,omitempty" required:"false" doc:"Browser getTimezoneOffset() in minutes"`
	}
}

type CreateConeyLogOutput struct {
	Body struct {
		Log             models.ConeyLog           `json:"log"`
		XPGained        int                       `json:"xp_gained"`
		NewAchievements []achievements.Definition `json:"new_achievements"`
		Level           xp.Level                  `json:"level"`
		LeveledUp       bool                      `json:"leveled_up"`
	}
}

func (h *ConeyLogHandler) HandleCreate(ctx context.Context, input *CreateConeyLogInput) (*CreateConeyLogOutput, error) {
	user, err := h.authHandler.RequireApproved(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	res, err := h.progress.RecordLog(ctx, user.ID, services.NewConeyLog{
		Brand:            input.Body.Brand,
		Quantity:         input.Body.Quantity,
		Location:         input.Body.Location,
		IsReceiptScanned: input.Body.IsReceiptScanned,
		ReceiptImageKey:  input.Body.ReceiptImageKey,
		TimezoneOffset:   input.Body.TimezoneOffset,
	})
	if err != nil {
		return nil, serviceError(h.logger, "ConeyLogHandler.HandleCreate", err)
	}

	out := &CreateConeyLogOutput{}
	out.Body.Log = res.Log
	out.Body.XPGained = res.XPGained
	out.Body.NewAchievements = res.NewAchievements
	if out.Body.NewAchievements == nil {
		out.Body.NewAchievements = []achievements.Definition{}
	}
	out.Body.Level = res.Level
	out.Body.LeveledUp = res.LeveledUp()
	return out, nil
}

type DeleteConeyLogInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *ConeyLogHandler) HandleDelete(ctx context.Context, input *DeleteConeyLogInput) (*struct{}, error) {
	user, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if err := h.progress.DeleteLog(ctx, *user, input.ID); err != nil {
		return nil, serviceError(h.logger, "ConeyLogHandler.HandleDelete", err)
	}
	return nil, nil
}

type StatsInput struct {
	auth.AuthInput
	TimezoneOffset int `query:"timezone_offset" default:"0" minimum:"-840" maximum:"840"`
}

type StatsOutput struct {
	Body achievements.Stats
}

func (h *ConeyLogHandler) HandleStats(ctx context.Context, input *StatsInput) (*StatsOutput, error) {
	user, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	var logs []models.ConeyLog
	if err := h.db.WithContext(ctx).Where("user_id = ?", user.ID).Order("created_at ASC").Find(&logs).Error; err != nil {
		return nil, serviceError(h.logger, "ConeyLogHandler.HandleStats", err)
	}
	return &StatsOutput{Body: achievements.ComputeStats(logs, input.TimezoneOffset, time.Now())}, nil
}
