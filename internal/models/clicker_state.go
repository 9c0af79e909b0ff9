package models

import (
	"time"
)

type ClickerState struct {
	ID             uint           `gorm:"primarykey" json:"-"`
	UserID         uint           `gorm:"uniqueIndex" json:"user_id"`
	Coneys         float64        `json:"coneys"`
	LifetimeEarned float64        `json:"lifetime_earned"`
	TotalClicks    int64          `json:"total_clicks"`
	Upgrades       map[string]int `gorm:"serializer:json" json:"upgrades"`
	LastSyncedAt   time.Time      `json:"last_synced_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
