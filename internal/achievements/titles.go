package achievements

// Title is a cosmetic label a user can display next to their name. It unlocks
// either at a level or with an achievement, never both.
type Title struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Level         int    `json:"level,omitempty"`
	AchievementID string `json:"achievement_id,omitempty"`
}

var Titles = []Title{
	{ID: "coney-newbie", Name: "Coney Newbie", Level: 1},
	{ID: "chili-apprentice", Name: "Chili Apprentice", Level: 5},
	{ID: "cheese-enthusiast", Name: "Cheese Enthusiast", Level: 10},
	{ID: "coney-connoisseur", Name: "Coney Connoisseur", Level: 20},
	{ID: "chili-master", Name: "Chili Master", Level: 30},
	{ID: "coney-legend", Name: "Coney Legend", Level: 50},
	{ID: "cincinnati-royalty", Name: "Cincinnati Royalty", Level: 75},
	{ID: "brand-ambassador", Name: "Brand Ambassador", AchievementID: "chili-cartographer"},
	{ID: "streak-keeper", Name: "Streak Keeper", AchievementID: "month-of-coneys"},
	{ID: "creature-of-the-night", Name: "Creature of the Night", AchievementID: "night-owl"},
	{ID: "centurion", Name: "Centurion", AchievementID: "coney-centurion"},
	{ID: "crawler", Name: "Chili Crawler", AchievementID: "chili-crawl"},
	{ID: "bookkeeper", Name: "Bookkeeper", AchievementID: "paper-trail"},
}

type Avatar struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

var Avatars = []Avatar{
	{ID: "classic-coney", Name: "Classic Coney", Level: 1},
	{ID: "cheese-coney", Name: "Cheese Coney", Level: 3},
	{ID: "chili-bowl", Name: "Chili Bowl", Level: 5},
	{ID: "three-way", Name: "Three-Way", Level: 10},
	{ID: "four-way", Name: "Four-Way", Level: 15},
	{ID: "five-way", Name: "Five-Way", Level: 25},
	{ID: "oyster-crackers", Name: "Oyster Crackers", Level: 35},
	{ID: "golden-coney", Name: "Golden Coney", Level: 50},
}

func FindTitle(id string) (Title, bool) {
	for _, t := range Titles {
		if t.ID == id {
			return t, true
		}
	}
	return Title{}, false
}

// TitleUnlocked reports whether title t is available at level with the given
// achievements unlocked.
func TitleUnlocked(t Title, level int, unlocked map[string]bool) bool {
	if t.AchievementID != "" {
		return unlocked[t.AchievementID]
	}
	return level >= t.Level
}

func UnlockedTitles(level int, unlocked map[string]bool) []Title {
	out := []Title{}
	for _, t := range Titles {
		if TitleUnlocked(t, level, unlocked) {
			out = append(out, t)
		}
	}
	return out
}

// AvatarUnlocked reports whether avatar id exists and is available at level.
func AvatarUnlocked(id string, level int) bool {
	for _, a := range Avatars {
		if a.ID == id {
			return level >= a.Level
		}
	}
	return false
}
