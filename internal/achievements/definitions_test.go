package achievements

import "testing"

func TestDefinitions_UniqueAndTiered(t *testing.T) {
	if len(Definitions) < 80 {
		t.Fatalf("expected a full catalogue, got %d definitions", len(Definitions))
	}
	seen := map[string]bool{}
	for _, d := range Definitions {
		if seen[d.ID] {
			t.Errorf("duplicate achievement id %s", d.ID)
		}
		seen[d.ID] = true
		if _, ok := rewardTiers[d.ID]; !ok {
			t.Errorf("achievement %s has no reward tier", d.ID)
		}
		if d.Requirement <= 0 {
			t.Errorf("achievement %s has non-positive requirement", d.ID)
		}
	}
	for id := range rewardTiers {
		if !seen[id] {
			t.Errorf("reward tier defined for unknown achievement %s", id)
		}
	}
}

func TestXPReward(t *testing.T) {
	tests := map[string]int{
		"first-coney":      25,
		"brand-adventurer": 50,
		"coney-centurion":  100,
		"coney-500":        250,
		"coney-1000":       500,
		"no-such-thing":    25,
	}
	for id, want := range tests {
		if got := XPReward(id); got != want {
			t.Errorf("XPReward(%s) = %d, want %d", id, got, want)
		}
	}
	if got := TotalXPReward([]string{"first-coney", "coney-centurion"}); got != 125 {
		t.Errorf("expected 125 total XP, got %d", got)
	}
}

func TestTitles(t *testing.T) {
	for _, title := range Titles {
		if title.AchievementID != "" {
			if _, ok := Get(title.AchievementID); !ok {
				t.Errorf("title %s references unknown achievement %s", title.ID, title.AchievementID)
			}
		}
	}

	unlocked := map[string]bool{"night-owl": true}
	titles := UnlockedTitles(5, unlocked)
	ids := map[string]bool{}
	for _, tt := range titles {
		ids[tt.ID] = true
	}
	for _, want := range []string{"coney-newbie", "chili-apprentice", "creature-of-the-night"} {
		if !ids[want] {
			t.Errorf("expected title %s unlocked", want)
		}
	}
	if ids["cheese-enthusiast"] || ids["centurion"] {
		t.Errorf("unexpected titles unlocked: %v", ids)
	}

	if !AvatarUnlocked("chili-bowl", 5) || AvatarUnlocked("golden-coney", 49) || AvatarUnlocked("missing", 99) {
		t.Error("avatar unlock levels not honored")
	}
}
