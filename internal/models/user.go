package models

import (
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	GoogleID       string `gorm:"index" json:"-"`
	Email          string `gorm:"uniqueIndex" json:"email"`
	Name           string `json:"name"`
	Username       string `gorm:"index" json:"username"`
	Image          string `json:"image"`
	Role           string `gorm:"default:user" json:"role"`
	IsApproved     bool   `json:"is_approved"`
	IsBanned       bool   `json:"is_banned"`
	TotalXP        int    `json:"total_xp"`
	CurrentLevel   int    `gorm:"default:1" json:"current_level"`
	CurrentLevelXP int    `json:"current_level_xp"`
	NextLevelXP    int    `gorm:"default:20" json:"next_level_xp"`
	SelectedAvatar string `json:"selected_avatar"`
	SelectedTitle  string `json:"selected_title"`
	// TimezoneOffset is the last offset the user's client reported.
	TimezoneOffset int    `json:"-"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName prefers the chosen username over the OAuth profile name.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
