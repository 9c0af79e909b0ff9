package models

import (
	"strings"

	"gorm.io/gorm"
)

// MaxQuantity is the most coneys a single log may record.
const MaxQuantity = 100

type Location struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// Key identifies a location for distinct-location counting. Empty when the
// location carries no name.
func (l *Location) Key() string {
	if l == nil {
		return ""
	}
	name := strings.ToLower(strings.TrimSpace(l.Name))
	if name == "" {
		return ""
	}
	return name + "|" + strings.ToLower(strings.TrimSpace(l.Address))
}

type ConeyLog struct {
	gorm.Model
	UserID           uint      `gorm:"index" json:"user_id"`
	User             User      `json:"-"`
	Brand            string    `gorm:"index" json:"brand"`
	Quantity         int       `json:"quantity"`
	Location         *Location `gorm:"serializer:json" json:"location,omitempty"`
	IsReceiptScanned bool      `json:"is_receipt_scanned"`
	ReceiptImageKey  string    `json:"receipt_image_key,omitempty"`
	// TimezoneOffset is the submitting client's offset in minutes. Nil on
	// rows written before offsets were stored.
	TimezoneOffset   *int      `json:"timezone_offset,omitempty"`
}
