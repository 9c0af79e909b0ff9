package achievements

import (
	"sort"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/models"
)

type BrandStat struct {
	Brand    string `json:"brand"`
	Quantity int    `json:"quantity"`
	Visits   int    `json:"visits"`
}

type Stats struct {
	TotalConeys       int         `json:"total_coneys"`
	TotalVisits       int         `json:"total_visits"`
	DistinctBrands    int         `json:"distinct_brands"`
	DistinctLocations int         `json:"distinct_locations"`
	FavoriteBrand     string      `json:"favorite_brand,omitempty"`
	Brands            []BrandStat `json:"brands"`
	CurrentStreak     int         `json:"current_streak"`
	LongestStreak     int         `json:"longest_streak"`
	ReceiptScans      int         `json:"receipt_scans"`
}

// ComputeStats aggregates a user's history for the stats page. The current
// streak only counts if its last day is today or yesterday in local time.
func ComputeStats(logs []models.ConeyLog, offsetMinutes int, now time.Time) Stats {
	s := summarize(logs, offsetMinutes)

	stats := Stats{
		TotalConeys:       s.totalQuantity,
		TotalVisits:       len(logs),
		DistinctBrands:    len(s.brands),
		DistinctLocations: len(s.locations),
		LongestStreak:     s.longestStreak,
		ReceiptScans:      s.receiptScans,
		Brands:            []BrandStat{},
	}

	for brand, qty := range s.brandQuantity {
		stats.Brands = append(stats.Brands, BrandStat{Brand: brand, Quantity: qty, Visits: s.brandVisits[brand]})
	}
	sort.Slice(stats.Brands, func(i, j int) bool {
		if stats.Brands[i].Quantity != stats.Brands[j].Quantity {
			return stats.Brands[i].Quantity > stats.Brands[j].Quantity
		}
		return stats.Brands[i].Brand < stats.Brands[j].Brand
	})
	if len(stats.Brands) > 0 {
		stats.FavoriteBrand = stats.Brands[0].Brand
	}

	stats.CurrentStreak = currentRun(s.days, dayNumber(LocalTime(now, offsetMinutes)))
	return stats
}

func currentRun(days []int64, today int64) int {
	if len(days) == 0 {
		return 0
	}
	last := days[len(days)-1]
	if last != today && last != today-1 {
		return 0
	}
	run := 1
	for i := len(days) - 1; i > 0; i-- {
		if days[i-1] != days[i]-1 {
			break
		}
		run++
	}
	return run
}
