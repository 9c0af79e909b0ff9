package achievements

import (
	"sort"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/models"
)

// LocalTime converts t to the client's wall clock. offsetMinutes follows the
// browser convention: minutes to add to local time to get UTC, so UTC-5 is 300.
func LocalTime(t time.Time, offsetMinutes int) time.Time {
	return t.UTC().Add(-time.Duration(offsetMinutes) * time.Minute)
}

// dayNumber counts days since the Unix epoch for the calendar date of t.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// summary holds every aggregate a rule can be checked against.
type summary struct {
	totalQuantity    int
	brands           map[string]struct{}
	locations        map[string]struct{}
	maxSameDayBrands int
	longestStreak    int
	weekdays         map[time.Weekday]struct{}
	hours            map[int]struct{}
	brandVisits      map[string]int
	brandQuantity    map[string]int
	maxSingleLog     int
	receiptScans     int
	days             []int64
}

func summarize(logs []models.ConeyLog, offsetMinutes int) summary {
	s := summary{
		brands:        map[string]struct{}{},
		locations:     map[string]struct{}{},
		weekdays:      map[time.Weekday]struct{}{},
		hours:         map[int]struct{}{},
		brandVisits:   map[string]int{},
		brandQuantity: map[string]int{},
	}
	brandsByDay := map[int64]map[string]struct{}{}

	for _, l := range logs {
		offset := offsetMinutes
		if l.TimezoneOffset != nil {
			offset = *l.TimezoneOffset
		}
		local := LocalTime(l.CreatedAt, offset)
		day := dayNumber(local)

		s.totalQuantity += l.Quantity
		s.brands[l.Brand] = struct{}{}
		if key := l.Location.Key(); key != "" {
			s.locations[key] = struct{}{}
		}
		s.weekdays[local.Weekday()] = struct{}{}
		s.hours[local.Hour()] = struct{}{}
		s.brandVisits[l.Brand]++
		s.brandQuantity[l.Brand] += l.Quantity
		if l.Quantity > s.maxSingleLog {
			s.maxSingleLog = l.Quantity
		}
		if l.IsReceiptScanned {
			s.receiptScans++
		}

		if brandsByDay[day] == nil {
			brandsByDay[day] = map[string]struct{}{}
		}
		brandsByDay[day][l.Brand] = struct{}{}
	}

	for day, brands := range brandsByDay {
		s.days = append(s.days, day)
		if len(brands) > s.maxSameDayBrands {
			s.maxSameDayBrands = len(brands)
		}
	}
	sort.Slice(s.days, func(i, j int) bool { return s.days[i] < s.days[j] })
	s.longestStreak = longestRun(s.days)

	return s
}

// longestRun returns the longest run of consecutive values in sorted days.
func longestRun(days []int64) int {
	longest, run := 0, 0
	for i, d := range days {
		if i > 0 && d == days[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func inWindow(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

func (s summary) satisfies(d Definition) bool {
	switch d.Rule.Kind {
	case RuleTotalQuantity:
		return s.totalQuantity >= d.Requirement
	case RuleDistinctBrands:
		return len(s.brands) >= d.Requirement
	case RuleDistinctLocations:
		return len(s.locations) >= d.Requirement
	case RuleSameDayBrands:
		return s.maxSameDayBrands >= d.Requirement
	case RuleStreak:
		return s.longestStreak >= d.Requirement
	case RuleDayOfWeek:
		_, ok := s.weekdays[d.Rule.Weekday]
		return ok
	case RuleHourWindow:
		for h := range s.hours {
			if inWindow(h, d.Rule.StartHour, d.Rule.EndHour) {
				return true
			}
		}
		return false
	case RuleBrandVisits:
		return s.brandVisits[d.Rule.Brand] >= d.Requirement
	case RuleBrandQuantity:
		return s.brandQuantity[d.Rule.Brand] >= d.Requirement
	case RuleSingleLog:
		return s.maxSingleLog >= d.Requirement
	case RuleReceiptScans:
		return s.receiptScans >= d.Requirement
	}
	return false
}

// Evaluate returns the ids of achievements the log history qualifies for that
// are not already in unlocked, in catalogue order. Each log is read in the
// offset stored with it; offsetMinutes applies to logs without one. It has no
// side effects.
func Evaluate(logs []models.ConeyLog, unlocked []string, offsetMinutes int) []string {
	have := make(map[string]struct{}, len(unlocked))
	for _, id := range unlocked {
		have[id] = struct{}{}
	}

	s := summarize(logs, offsetMinutes)

	var newly []string
	for _, d := range Definitions {
		if _, ok := have[d.ID]; ok {
			continue
		}
		if s.satisfies(d) {
			newly = append(newly, d.ID)
		}
	}
	return newly
}
