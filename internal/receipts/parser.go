package receipts

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/models"
)

type Scan struct {
	Brand    string           `json:"brand,omitempty"`
	Quantity int              `json:"quantity"`
	Date     *time.Time       `json:"date,omitempty"`
	Location *models.Location `json:"location,omitempty"`
	RawText  string           `json:"raw_text"`
}

var brandKeywords = []struct {
	keyword string
	brand   string
}{
	{"SKYLINE", models.BrandSkyline},
	{"GOLD STAR", models.BrandGoldStar},
	{"GOLDSTAR", models.BrandGoldStar},
	{"CAMP WASHINGTON", models.BrandCampWashington},
	{"EMPRESS", models.BrandEmpress},
	{"DIXIE", models.BrandDixie},
	{"BLUE ASH", models.BrandBlueAsh},
	{"PRICE HILL", models.BrandPriceHill},
	{"PLEASANT RIDGE", models.BrandPleasantRidge},
}

var (
	// "2 CHEESE CONEY", "2X CONEY", "3 @ CONEYS"
	leadingQty = regexp.MustCompile(`(?i)^\s*(\d{1,2})\s*(?:x|@|-)?\s*(?:[a-z]+\s+){0,2}con(?:e)?ys?\b`)
	// "CHEESE CONEY x3", "CONEY QTY 2"
	trailingQty = regexp.MustCompile(`(?i)\bcon(?:e)?ys?\b\s*(?:x|qty:?|@)\s*(\d{1,2})\b`)
	coneyWord   = regexp.MustCompile(`(?i)\bcon(?:e)?ys?\b`)
	dateRe      = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})\b`)
	addressRe   = regexp.MustCompile(`(?i)^\s*\d{1,6}\s+[a-z0-9 .'-]+\b(st|street|ave|avenue|rd|road|blvd|pike|dr|drive|hwy|highway|ln|lane|pkwy|way)\b\.?`)
)

// Parse extracts what it can from OCR text. Fields it cannot find are left
// empty; Quantity is 0 when no coney line is present and never exceeds
// models.MaxQuantity.
func Parse(text string) Scan {
	scan := Scan{RawText: text}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	brandLine := -1
	for i, line := range lines {
		upper := strings.ToUpper(line)
		if scan.Brand == "" {
			for _, bk := range brandKeywords {
				if strings.Contains(upper, bk.keyword) {
					scan.Brand = bk.brand
					brandLine = i
					break
				}
			}
		}

		scan.Quantity += lineQuantity(line)

		if scan.Date == nil {
			scan.Date = parseDate(line)
		}

		if scan.Location == nil && addressRe.MatchString(line) {
			scan.Location = &models.Location{Address: strings.TrimSpace(line)}
		}
	}

	scan.Quantity = min(scan.Quantity, models.MaxQuantity)

	if scan.Location != nil && brandLine >= 0 {
		scan.Location.Name = strings.TrimSpace(lines[brandLine])
	}
	return scan
}

func lineQuantity(line string) int {
	if m := leadingQty.FindStringSubmatch(line); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := trailingQty.FindStringSubmatch(line); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if coneyWord.MatchString(line) && !strings.Contains(strings.ToUpper(line), "TOTAL") {
		return 1
	}
	return 0
}

func parseDate(line string) *time.Time {
	m := dateRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return nil
	}
	return &t
}
