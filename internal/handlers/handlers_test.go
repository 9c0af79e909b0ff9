package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/achievements"
	"github.com/coney-counter/coney-counter-api/internal/auth"
	"github.com/coney-counter/coney-counter-api/internal/config"
	"github.com/coney-counter/coney-counter-api/internal/logging"
	"github.com/coney-counter/coney-counter-api/internal/models"
	"github.com/coney-counter/coney-counter-api/internal/services"
	"github.com/coney-counter/coney-counter-api/internal/testutil"
	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	notifier    *recordingNotifier
	boards      *services.LeaderboardService
	progress    *services.ProgressService
	logger      *logrus.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.OpenDB(t)
	logger := logging.Discard()
	n := &recordingNotifier{}
	boards := services.NewLeaderboardService(db, nil, time.Minute, 10, logger)
	return &testEnv{
		db:          db,
		authHandler: auth.NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, db, logger),
		notifier:    n,
		boards:      boards,
		progress:    services.NewProgressService(db, n, boards, logger),
		logger:      logger,
	}
}

// as returns a context carrying userID, the way SessionMiddleware does.
func as(userID uint) context.Context {
	return context.WithValue(context.Background(), auth.UserIDKey, userID)
}

func statusOf(err error) int {
	var se huma.StatusError
	if errors.As(err, &se) {
		return se.GetStatus()
	}
	return 0
}

func makeAdmin(t *testing.T, db *gorm.DB, user *models.User) {
	t.Helper()
	user.Role = models.RoleAdmin
	if err := db.Model(user).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("failed to promote user: %v", err)
	}
}

type recordingNotifier struct {
	approvals    []uint
	achievements int
	levels       []int
}

func (n *recordingNotifier) NotifyAchievements(_ models.User, defs []achievements.Definition) error {
	n.achievements += len(defs)
	return nil
}

func (n *recordingNotifier) NotifyLevelUp(_ models.User, level int) error {
	n.levels = append(n.levels, level)
	return nil
}

func (n *recordingNotifier) NotifyApproval(user models.User) error {
	n.approvals = append(n.approvals, user.ID)
	return nil
}
