package achievements

import (
	"testing"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/models"
)

func TestComputeStats(t *testing.T) {
	logs := threeDayHistory()
	logs = append(logs, logAt(models.BrandEmpress, 4, logs[2].CreatedAt.Add(time.Hour)))

	now := logs[2].CreatedAt.Add(20 * time.Hour)
	stats := ComputeStats(logs, 0, now)

	if stats.TotalConeys != 10 || stats.TotalVisits != 4 {
		t.Errorf("expected 10 coneys over 4 visits, got %d/%d", stats.TotalConeys, stats.TotalVisits)
	}
	if stats.FavoriteBrand != models.BrandEmpress {
		t.Errorf("expected favorite brand %s, got %s", models.BrandEmpress, stats.FavoriteBrand)
	}
	if stats.DistinctBrands != 3 {
		t.Errorf("expected 3 brands, got %d", stats.DistinctBrands)
	}
	if stats.LongestStreak != 3 || stats.CurrentStreak != 3 {
		t.Errorf("expected streaks 3/3, got longest %d current %d", stats.LongestStreak, stats.CurrentStreak)
	}

	later := ComputeStats(logs, 0, now.Add(72*time.Hour))
	if later.CurrentStreak != 0 {
		t.Errorf("expected broken current streak, got %d", later.CurrentStreak)
	}
	if later.LongestStreak != 3 {
		t.Errorf("longest streak must survive a break, got %d", later.LongestStreak)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil, 0, time.Now())
	if stats.TotalConeys != 0 || stats.CurrentStreak != 0 || stats.FavoriteBrand != "" {
		t.Errorf("expected zero stats, got %+v", stats)
	}
	if stats.Brands == nil {
		t.Error("expected empty, non-nil brand breakdown")
	}
}
