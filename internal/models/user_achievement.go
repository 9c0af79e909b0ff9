package models

import (
	"time"
)

// UserAchievement is append-only: rows are never updated or deleted.
type UserAchievement struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	UserID        uint      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"user_id"`
	AchievementID string    `gorm:"uniqueIndex:idx_user_achievement;size:64;not null" json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
