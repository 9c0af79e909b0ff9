package handlers

import (
	"context"

	"github.com/coney-counter/coney-counter-api/internal/auth"
	"github.com/coney-counter/coney-counter-api/internal/services"
	"github.com/sirupsen/logrus"
)

type LeaderboardHandler struct {
	authHandler *auth.AuthHandler
	boards      *services.LeaderboardService
	logger      *logrus.Logger
}

func NewLeaderboardHandler(authHandler *auth.AuthHandler, boards *services.LeaderboardService, logger *logrus.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{authHandler: authHandler, boards: boards, logger: logger}
}

type LeaderboardInput struct {
	auth.AuthInput
	Kind  string `query:"kind" default:"coneys" enum:"coneys,monthly,xp,brand,clicker"`
	Brand string `query:"brand" doc:"Required when kind is brand"`
}

type LeaderboardOutput struct {
	Body struct {
		Kind    string                      `json:"kind"`
		Brand   string                      `json:"brand,omitempty"`
		Entries []services.LeaderboardEntry `json:"entries"`
	}
}

func (h *LeaderboardHandler) HandleGet(ctx context.Context, input *LeaderboardInput) (*LeaderboardOutput, error) {
	if _, err := h.authHandler.Authorize(ctx, input.AuthInput); err != nil {
		return nil, err
	}
	entries, err := h.boards.Get(ctx, services.BoardKind(input.Kind), input.Brand)
	if err != nil {
		return nil, serviceError(h.logger, "LeaderboardHandler.HandleGet", err)
	}

	out := &LeaderboardOutput{}
	out.Body.Kind = input.Kind
	if input.Kind == string(services.BoardBrand) {
		out.Body.Brand = input.Brand
	}
	out.Body.Entries = entries
	if out.Body.Entries == nil {
		out.Body.Entries = []services.LeaderboardEntry{}
	}
	return out, nil
}
