package xp

import "testing"

func TestCalculateLevelFromXP_Zero(t *testing.T) {
	got := CalculateLevelFromXP(0)
	want := Level{Level: 1, CurrentLevelXP: 0, NextLevelXP: 20, TotalXP: 0}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestCalculateLevelFromXP_FlatRateBoundary(t *testing.T) {
	total := TotalXPForLevel(12)
	if total != 495 {
		t.Fatalf("expected level 12 at 495 XP, got %d", total)
	}
	got := CalculateLevelFromXP(total)
	if got.Level != 12 || got.CurrentLevelXP != 0 || got.NextLevelXP != 70 {
		t.Errorf("expected level 12 with 0/70, got %+v", got)
	}

	before := CalculateLevelFromXP(total - 1)
	if before.Level != 11 || before.CurrentLevelXP != 69 || before.NextLevelXP != 70 {
		t.Errorf("expected level 11 with 69/70 just before the boundary, got %+v", before)
	}
}

func TestCalculateLevelFromXP_Table(t *testing.T) {
	tests := []struct {
		xp      int
		level   int
		current int
		next    int
	}{
		{19, 1, 19, 20},
		{20, 2, 0, 25},
		{44, 2, 24, 25},
		{45, 3, 0, 30},
		{425, 11, 0, 70},
		{565, 13, 0, 70},
		{600, 13, 35, 70},
		{-5, 1, 0, 20},
	}
	for _, tt := range tests {
		got := CalculateLevelFromXP(tt.xp)
		if got.Level != tt.level || got.CurrentLevelXP != tt.current || got.NextLevelXP != tt.next {
			t.Errorf("CalculateLevelFromXP(%d) = %+v, want level %d %d/%d", tt.xp, got, tt.level, tt.current, tt.next)
		}
	}
}

func TestTotalXPForLevel_Monotonic(t *testing.T) {
	prev := TotalXPForLevel(1)
	if prev != 0 {
		t.Fatalf("expected level 1 at 0 XP, got %d", prev)
	}
	for level := 2; level <= 200; level++ {
		cur := TotalXPForLevel(level)
		if cur <= prev {
			t.Fatalf("TotalXPForLevel(%d)=%d not greater than level %d (%d)", level, cur, level-1, prev)
		}
		prev = cur
	}
}

func TestRoundTrip(t *testing.T) {
	for level := 1; level <= 150; level++ {
		got := CalculateLevelFromXP(TotalXPForLevel(level))
		if got.Level != level || got.CurrentLevelXP != 0 {
			t.Fatalf("level %d round-tripped to %+v", level, got)
		}
	}
}

func TestRequiredXPForLevel(t *testing.T) {
	want := map[int]int{1: 0, 2: 20, 3: 25, 11: 65, 12: 70, 40: 70}
	for level, xp := range want {
		if got := RequiredXPForLevel(level); got != xp {
			t.Errorf("RequiredXPForLevel(%d) = %d, want %d", level, got, xp)
		}
	}
}

func TestProgress(t *testing.T) {
	if got := Progress(10); got != 50 {
		t.Errorf("expected 50%% progress at 10 XP, got %v", got)
	}
	if got := XPForConeys(3); got != 30 {
		t.Errorf("expected 30 XP for 3 coneys, got %d", got)
	}
}
