package achievements

import (
	"fmt"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/models"
)

type Category string

const (
	CategoryMilestones Category = "milestones"
	CategoryBrands     Category = "brands"
	CategoryLocations  Category = "locations"
	CategoryStreaks    Category = "streaks"
	CategoryTiming     Category = "timing"
	CategoryLoyalty    Category = "loyalty"
	CategorySpecial    Category = "special"
	CategoryReceipts   Category = "receipts"
)

type RuleKind string

const (
	RuleTotalQuantity     RuleKind = "total_quantity"
	RuleDistinctBrands    RuleKind = "distinct_brands"
	RuleDistinctLocations RuleKind = "distinct_locations"
	RuleSameDayBrands     RuleKind = "same_day_brands"
	RuleStreak            RuleKind = "streak"
	RuleDayOfWeek         RuleKind = "day_of_week"
	RuleHourWindow        RuleKind = "hour_window"
	RuleBrandVisits       RuleKind = "brand_visits"
	RuleBrandQuantity     RuleKind = "brand_quantity"
	RuleSingleLog         RuleKind = "single_log_quantity"
	RuleReceiptScans      RuleKind = "receipt_scans"
)

// Rule is the predicate an achievement unlocks on. Only the fields relevant to
// Kind are set.
type Rule struct {
	Kind      RuleKind     `json:"kind"`
	Brand     string       `json:"brand,omitempty"`
	Weekday   time.Weekday `json:"weekday,omitempty"`
	StartHour int          `json:"start_hour,omitempty"`
	EndHour   int          `json:"end_hour,omitempty"`
}

type Definition struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Requirement int      `json:"requirement"`
	Icon        string   `json:"icon"`
	Rule        Rule     `json:"rule"`
}

var milestones = []struct {
	id, title, icon string
	n               int
}{
	{"first-coney", "First Bite", "🌭", 1},
	{"coney-5", "Getting Hooked", "🧀", 5},
	{"coney-10", "Double Digits", "🔟", 10},
	{"coney-25", "Quarter Century", "🥉", 25},
	{"coney-50", "Half Hundred", "🥈", 50},
	{"coney-75", "Diamond Dog", "💎", 75},
	{"coney-centurion", "Coney Centurion", "💯", 100},
	{"coney-150", "Chili Veteran", "🎖️", 150},
	{"coney-200", "Two Hundred Club", "🏅", 200},
	{"coney-250", "Cheddar Champion", "🏆", 250},
	{"coney-300", "Three Hundred Strong", "💪", 300},
	{"coney-400", "Four Hundred Feast", "🍽️", 400},
	{"coney-500", "Coney Legend", "👑", 500},
	{"coney-750", "Chili Titan", "🗿", 750},
	{"coney-1000", "The Thousand", "🚀", 1000},
	{"coney-1500", "Bottomless Bowl", "🥣", 1500},
	{"coney-2000", "Queen City Royalty", "🏰", 2000},
	{"coney-2500", "Mythical Muncher", "🐉", 2500},
	{"coney-5000", "Chili Deity", "🌋", 5000},
	{"coney-10000", "Ten Thousand Dogs", "🌌", 10000},
}

var brandCounts = []struct {
	id, title, description, icon string
	n                            int
}{
	{"brand-explorer", "Brand Explorer", "Eat coneys from 2 different chili parlors", "🧭", 2},
	{"brand-adventurer", "Brand Adventurer", "Eat coneys from 3 different chili parlors", "🗺️", 3},
	{"brand-connoisseur", "Brand Connoisseur", "Eat coneys from 5 different chili parlors", "🍷", 5},
	{"chili-cartographer", "Chili Cartographer", "Eat coneys from every chili parlor", "📍", len(models.ParlorBrands())},
}

var locationCounts = []struct {
	id, title, icon string
	n               int
}{
	{"location-2", "Parlor Hopper", "🚶", 2},
	{"location-5", "Neighborhood Regular", "🏘️", 5},
	{"location-10", "City Slicker", "🏙️", 10},
	{"location-25", "Road Tripper", "🚗", 25},
	{"location-50", "Tri-State Trekker", "🛣️", 50},
}

var streaks = []struct {
	id, title, icon string
	n               int
}{
	{"daily-warrior", "Daily Warrior", "⚔️", 2},
	{"three-peat", "Three-Peat", "🔥", 3},
	{"high-five", "High Five", "🖐️", 5},
	{"week-of-coneys", "Week of Coneys", "📅", 7},
	{"fortnight-feast", "Fortnight Feast", "🗓️", 14},
	{"month-of-coneys", "Month of Coneys", "🌙", 30},
	{"season-of-chili", "Season of Chili", "🍂", 90},
	{"year-of-coneys", "Year of Coneys", "🎆", 365},
}

var weekdays = []struct {
	id, title, icon string
	day             time.Weekday
}{
	{"sunday-funday", "Sunday Funday", "☀️", time.Sunday},
	{"monday-motivation", "Monday Motivation", "💼", time.Monday},
	{"taco-tuesday-rebel", "Taco Tuesday Rebel", "🌮", time.Tuesday},
	{"hump-day-hotdog", "Hump Day Hot Dog", "🐪", time.Wednesday},
	{"thirsty-thursday", "Thirsty Thursday", "🥤", time.Thursday},
	{"friday-feast", "Friday Feast", "🎉", time.Friday},
	{"saturday-special", "Saturday Special", "🛋️", time.Saturday},
}

var hourWindows = []struct {
	id, title, description, icon string
	start, end                   int
}{
	{"early-bird", "Early Bird", "Log a coney between 5 AM and 9 AM", "🐦", 5, 9},
	{"lunch-rush", "Lunch Rush", "Log a coney between 11 AM and 2 PM", "🕛", 11, 14},
	{"happy-hour", "Happy Hour", "Log a coney between 4 PM and 6 PM", "🍻", 16, 18},
	{"night-owl", "Night Owl", "Log a coney between 10 PM and 4 AM", "🦉", 22, 4},
	{"midnight-snack", "Midnight Snack", "Log a coney between midnight and 2 AM", "🌃", 0, 2},
}

var singleLogs = []struct {
	id, title, icon string
	n               int
}{
	{"big-appetite", "Big Appetite", "😋", 3},
	{"coney-crusher", "Coney Crusher", "🦾", 5},
	{"bottomless-pit", "Bottomless Pit", "🕳️", 10},
}

var receiptScans = []struct {
	id, title, icon string
	n               int
}{
	{"receipt-rookie", "Receipt Rookie", "🧾", 1},
	{"paper-trail", "Paper Trail", "📜", 10},
	{"auditor", "Chili Auditor", "🔍", 50},
}

// Definitions is the static achievement catalogue, in evaluation order.
var Definitions = buildDefinitions()

var byID = indexDefinitions(Definitions)

func buildDefinitions() []Definition {
	var defs []Definition

	for _, m := range milestones {
		description := fmt.Sprintf("Eat %d coneys", m.n)
		if m.n == 1 {
			description = "Log your very first coney"
		}
		defs = append(defs, Definition{
			ID: m.id, Title: m.title, Description: description, Category: CategoryMilestones,
			Requirement: m.n, Icon: m.icon, Rule: Rule{Kind: RuleTotalQuantity},
		})
	}

	for _, b := range brandCounts {
		defs = append(defs, Definition{
			ID: b.id, Title: b.title, Description: b.description, Category: CategoryBrands,
			Requirement: b.n, Icon: b.icon, Rule: Rule{Kind: RuleDistinctBrands},
		})
	}

	for _, l := range locationCounts {
		defs = append(defs, Definition{
			ID: l.id, Title: l.title, Description: fmt.Sprintf("Eat coneys at %d different locations", l.n),
			Category: CategoryLocations, Requirement: l.n, Icon: l.icon, Rule: Rule{Kind: RuleDistinctLocations},
		})
	}

	for _, s := range streaks {
		defs = append(defs, Definition{
			ID: s.id, Title: s.title, Description: fmt.Sprintf("Eat coneys %d days in a row", s.n),
			Category: CategoryStreaks, Requirement: s.n, Icon: s.icon, Rule: Rule{Kind: RuleStreak},
		})
	}

	for _, w := range weekdays {
		defs = append(defs, Definition{
			ID: w.id, Title: w.title, Description: fmt.Sprintf("Eat a coney on a %s", w.day),
			Category: CategoryTiming, Requirement: 1, Icon: w.icon, Rule: Rule{Kind: RuleDayOfWeek, Weekday: w.day},
		})
	}

	for _, h := range hourWindows {
		defs = append(defs, Definition{
			ID: h.id, Title: h.title, Description: h.description, Category: CategoryTiming,
			Requirement: 1, Icon: h.icon, Rule: Rule{Kind: RuleHourWindow, StartHour: h.start, EndHour: h.end},
		})
	}

	for _, brand := range models.ParlorBrands() {
		slug := models.BrandSlug(brand)
		defs = append(defs,
			Definition{
				ID: slug + "-first-visit", Title: brand + " Rookie",
				Description: fmt.Sprintf("Log your first visit to %s", brand),
				Category:    CategoryLoyalty, Requirement: 1, Icon: "🏠",
				Rule: Rule{Kind: RuleBrandVisits, Brand: brand},
			},
			Definition{
				ID: slug + "-regular", Title: brand + " Regular",
				Description: fmt.Sprintf("Visit %s 10 times", brand),
				Category:    CategoryLoyalty, Requirement: 10, Icon: "🪑",
				Rule: Rule{Kind: RuleBrandVisits, Brand: brand},
			},
			Definition{
				ID: slug + "-fan", Title: brand + " Fan",
				Description: fmt.Sprintf("Eat 50 coneys at %s", brand),
				Category:    CategoryLoyalty, Requirement: 50, Icon: "📣",
				Rule: Rule{Kind: RuleBrandQuantity, Brand: brand},
			},
			Definition{
				ID: slug + "-devotee", Title: brand + " Devotee",
				Description: fmt.Sprintf("Eat 100 coneys at %s", brand),
				Category:    CategoryLoyalty, Requirement: 100, Icon: "🙏",
				Rule: Rule{Kind: RuleBrandQuantity, Brand: brand},
			},
		)
	}

	defs = append(defs,
		Definition{
			ID: "double-dipper", Title: "Double Dipper", Description: "Eat coneys from 2 different parlors on the same day",
			Category: CategorySpecial, Requirement: 2, Icon: "🥢", Rule: Rule{Kind: RuleSameDayBrands},
		},
		Definition{
			ID: "chili-crawl", Title: "Chili Crawl", Description: "Eat coneys from 3 different parlors on the same day",
			Category: CategorySpecial, Requirement: 3, Icon: "🐛", Rule: Rule{Kind: RuleSameDayBrands},
		},
	)

	for _, s := range singleLogs {
		defs = append(defs, Definition{
			ID: s.id, Title: s.title, Description: fmt.Sprintf("Log %d or more coneys at once", s.n),
			Category: CategorySpecial, Requirement: s.n, Icon: s.icon, Rule: Rule{Kind: RuleSingleLog},
		})
	}

	for _, r := range receiptScans {
		description := fmt.Sprintf("Log %d visits from scanned receipts", r.n)
		if r.n == 1 {
			description = "Log a visit from a scanned receipt"
		}
		defs = append(defs, Definition{
			ID: r.id, Title: r.title, Description: description, Category: CategoryReceipts,
			Requirement: r.n, Icon: r.icon, Rule: Rule{Kind: RuleReceiptScans},
		})
	}

	return defs
}

func indexDefinitions(defs []Definition) map[string]Definition {
	m := make(map[string]Definition, len(defs))
	for _, d := range defs {
		m[d.ID] = d
	}
	return m
}

// Get looks up a definition by id.
func Get(id string) (Definition, bool) {
	d, ok := byID[id]
	return d, ok
}
