// Package xp maps accumulated experience points to levels.
//
// Level 1 starts at 0 XP. Reaching levels 2 through 11 costs 20, 25, ... 65 XP
// respectively; every level from 12 on costs a flat 70 XP.
package xp

const (
	// XPPerConey is awarded for every coney logged.
	XPPerConey = 10

	baseRequirement = 20
	requirementStep = 5
	flatLevel       = 12
	flatRequirement = 70
)

type Level struct {
	Level          int `json:"level"`
	CurrentLevelXP int `json:"current_level_xp"`
	NextLevelXP    int `json:"next_level_xp"`
	TotalXP        int `json:"total_xp"`
}

// RequiredXPForLevel is the XP needed to go from level-1 to level.
func RequiredXPForLevel(level int) int {
	switch {
	case level <= 1:
		return 0
	case level < flatLevel:
		return baseRequirement + requirementStep*(level-2)
	default:
		return flatRequirement
	}
}

// TotalXPForLevel is the cumulative XP at which level is reached.
func TotalXPForLevel(level int) int {
	total := 0
	for l := 2; l <= level && l < flatLevel; l++ {
		total += RequiredXPForLevel(l)
	}
	if level >= flatLevel {
		total += (level - flatLevel + 1) * flatRequirement
	}
	return total
}

// CalculateLevelFromXP walks the level table until the next level is out of
// reach. The flat-rate tail is resolved with a division.
func CalculateLevelFromXP(totalXP int) Level {
	if totalXP < 0 {
		totalXP = 0
	}

	level := 1
	spent := 0
	for level+1 < flatLevel {
		next := RequiredXPForLevel(level + 1)
		if totalXP < spent+next {
			return Level{
				Level:          level,
				CurrentLevelXP: totalXP - spent,
				NextLevelXP:    next,
				TotalXP:        totalXP,
			}
		}
		spent += next
		level++
	}

	remaining := totalXP - spent
	level += remaining / flatRequirement
	return Level{
		Level:          level,
		CurrentLevelXP: remaining % flatRequirement,
		NextLevelXP:    flatRequirement,
		TotalXP:        totalXP,
	}
}

func XPForConeys(quantity int) int {
	if quantity < 0 {
		return 0
	}
	return quantity * XPPerConey
}

// Progress returns how far into the current level totalXP is, in percent.
func Progress(totalXP int) float64 {
	l := CalculateLevelFromXP(totalXP)
	if l.NextLevelXP == 0 {
		return 0
	}
	return float64(l.CurrentLevelXP) * 100 / float64(l.NextLevelXP)
}
