package handlers

import (
	"context"

	"github.com/coney-counter/coney-counter-api/internal/auth"
	"github.com/coney-counter/coney-counter-api/internal/services"
	"github.com/sirupsen/logrus"
)

type ClickerHandler struct {
	authHandler *auth.AuthHandler
	clicker     *services.ClickerService
	logger      *logrus.Logger
}

func NewClickerHandler(authHandler *auth.AuthHandler, clicker *services.ClickerService, logger *logrus.Logger) *ClickerHandler {
	return &ClickerHandler{authHandler: authHandler, clicker: clicker, logger: logger}
}

type ClickerStateInput struct {
	auth.AuthInput
}

type ClickerStateOutput struct {
	Body services.ClickerView
}

func (h *ClickerHandler) HandleState(ctx context.Context, input *ClickerStateInput) (*ClickerStateOutput, error) {
	user, err := h.authHandler.RequireApproved(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	view, err := h.clicker.State(ctx, user.ID)
	if err != nil {
		return nil, serviceError(h.logger, "ClickerHandler.HandleState", err)
	}
	return &ClickerStateOutput{Body: *view}, nil
}

type ClickerSyncInput struct {
	auth.AuthInput
	Body struct {
		Earned float64 `json:"earned" minimum:"0" doc:"Coneys earned since the last sync"`
		Clicks int64   `json:"clicks" minimum:"0" doc:"Clicks since the last sync"`
	}
}

type ClickerSyncOutput struct {
	Body struct {
		services.ClickerView
		Accepted float64 `json:"accepted"`
		Clamped  bool    `json:"clamped"`
	}
}

func (h *ClickerHandler) HandleSync(ctx context.Context, input *ClickerSyncInput) (*ClickerSyncOutput, error) {
	user, err := h.authHandler.RequireApproved(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	res, err := h.clicker.Sync(ctx, user.ID, services.SyncRequest{Earned: input.Body.Earned, Clicks: input.Body.Clicks})
	if err != nil {
		return nil, serviceError(h.logger, "ClickerHandler.HandleSync", err)
	}
	out := &ClickerSyncOutput{}
	out.Body.ClickerView = res.View
	out.Body.Accepted = res.Accepted
	out.Body.Clamped = res.Clamped
	return out, nil
}

type ClickerPurchaseInput struct {
	auth.AuthInput
	Body struct {
		UpgradeID string `json:"upgrade_id" minLength:"1"`
	}
}

type ClickerPurchaseOutput struct {
	Body struct {
		services.ClickerView
		Price int64 `json:"price"`
	}
}

func (h *ClickerHandler) HandlePurchase(ctx context.Context, input *ClickerPurchaseInput) (*ClickerPurchaseOutput, error) {
	user, err := h.authHandler.RequireApproved(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	res, err := h.clicker.Purchase(ctx, user.ID, input.Body.UpgradeID)
	if err != nil {
		return nil, serviceError(h.logger, "ClickerHandler.HandlePurchase", err)
	}
	out := &ClickerPurchaseOutput{}
	out.Body.ClickerView = res.View
	out.Body.Price = res.Price
	return out, nil
}
