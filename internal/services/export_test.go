package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/models"
	"github.com/coney-counter/coney-counter-api/internal/testutil"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	db := testutil.OpenDB(t)
	user := testutil.CreateUser(t, db, "export@example.com")
	l := models.ConeyLog{
		UserID:   user.ID,
		Brand:    models.BrandCampWashington,
		Quantity: 4,
		Location: &models.Location{Name: "Camp Washington", Address: "3005 Colerain Ave"},
	}
	l.CreatedAt = time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
	db.Create(&l)

	var buf bytes.Buffer
	if err := NewExportService(db).WriteWorkbook(context.Background(), &buf); err != nil {
		t.Fatalf("WriteWorkbook returned error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	logRows, err := f.GetRows(logsSheet)
	if err != nil {
		t.Fatalf("GetRows(%s): %v", logsSheet, err)
	}
	if len(logRows) != 2 {
		t.Fatalf("expected header and one log row, got %v", logRows)
	}
	row := logRows[1]
	if row[1] != "export" || row[3] != models.BrandCampWashington || row[4] != "4" || row[6] != "3005 Colerain Ave" {
		t.Errorf("unexpected log row %v", row)
	}
	if row[8] != "2024-01-02 03:04:05" {
		t.Errorf("unexpected timestamp %s", row[8])
	}

	userRows, err := f.GetRows(usersSheet)
	if err != nil {
		t.Fatalf("GetRows(%s): %v", usersSheet, err)
	}
	if len(userRows) != 2 || userRows[1][3] != "export@example.com" {
		t.Errorf("unexpected user rows %v", userRows)
	}
}
