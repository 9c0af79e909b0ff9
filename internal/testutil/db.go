package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/coney-counter/coney-counter-api/internal/database"
	"github.com/coney-counter/coney-counter-api/internal/models"
	"gorm.io/gorm"
)

var dbCounter atomic.Int64

// OpenDB opens a migrated in-memory sqlite database private to the test.
// A named shared-cache database lets every pooled connection see the same data.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbCounter.Add(1))

	db, err := database.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// CreateUser inserts an approved user with the given email.
func CreateUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		Username:     strings.Split(email, "@")[0],
		Role:         models.RoleUser,
		IsApproved:   true,
		CurrentLevel: 1,
		NextLevelXP:  20,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}
