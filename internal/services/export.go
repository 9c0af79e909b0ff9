package services

import (
	"context"
	"fmt"
	"io"

	"github.com/coney-counter/coney-counter-api/internal/models"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	logsSheet  = "Coney Logs"
	usersSheet = "Users"

	exportTimeFormat = "2006-01-02 15:04:05"
)

type ExportService struct {
	db *gorm.DB
}

func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{db: db}
}

// WriteWorkbook writes every log and user as an XLSX workbook.
func (s *ExportService) WriteWorkbook(ctx context.Context, w io.Writer) error {
	var logs []models.ConeyLog
	if err := s.db.WithContext(ctx).Preload("User").Order("created_at ASC").Find(&logs).Error; err != nil {
		return fmt.Errorf("load logs: %w", err)
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", logsSheet); err != nil {
		return err
	}
	if err := writeRows(f, logsSheet,
		[]any{"ID", "User", "Email", "Brand", "Quantity", "Location", "Address", "Receipt Scanned", "Logged At"},
		len(logs), func(i int) []any {
			l := logs[i]
			var name, address string
			if l.Location != nil {
				name, address = l.Location.Name, l.Location.Address
			}
			return []any{l.ID, l.User.DisplayName(), l.User.Email, l.Brand, l.Quantity, name, address,
				l.IsReceiptScanned, l.CreatedAt.UTC().Format(exportTimeFormat)}
		}); err != nil {
		return err
	}

	if _, err := f.NewSheet(usersSheet); err != nil {
		return err
	}
	if err := writeRows(f, usersSheet,
		[]any{"ID", "Username", "Name", "Email", "Role", "Approved", "Banned", "Total XP", "Level", "Joined"},
		len(users), func(i int) []any {
			u := users[i]
			return []any{u.ID, u.Username, u.Name, u.Email, u.Role, u.IsApproved, u.IsBanned,
				u.TotalXP, u.CurrentLevel, u.CreatedAt.UTC().Format(exportTimeFormat)}
		}); err != nil {
		return err
	}

	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, header []any, n int, row func(i int) []any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(i)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
