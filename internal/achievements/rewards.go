package achievements

import "github.com/coney-counter/coney-counter-api/internal/models"

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
)

var tierXP = map[Tier]int{
	TierBronze:   25,
	TierSilver:   50,
	TierGold:     100,
	TierPlatinum: 250,
	TierDiamond:  500,
}

var rewardTiers = func() map[string]Tier {
	m := map[string]Tier{
		"first-coney":     TierBronze,
		"coney-5":         TierBronze,
		"coney-10":        TierBronze,
		"coney-25":        TierSilver,
		"coney-50":        TierSilver,
		"coney-75":        TierSilver,
		"coney-centurion": TierGold,
		"coney-150":       TierGold,
		"coney-200":       TierGold,
		"coney-250":       TierGold,
		"coney-300":       TierPlatinum,
		"coney-400":       TierPlatinum,
		"coney-500":       TierPlatinum,
		"coney-750":       TierPlatinum,
		"coney-1000":      TierDiamond,
		"coney-1500":      TierDiamond,
		"coney-2000":      TierDiamond,
		"coney-2500":      TierDiamond,
		"coney-5000":      TierDiamond,
		"coney-10000":     TierDiamond,

		"brand-explorer":     TierBronze,
		"brand-adventurer":   TierSilver,
		"brand-connoisseur":  TierGold,
		"chili-cartographer": TierPlatinum,

		"location-2":  TierBronze,
		"location-5":  TierSilver,
		"location-10": TierGold,
		"location-25": TierPlatinum,
		"location-50": TierDiamond,

		"daily-warrior":   TierBronze,
		"three-peat":      TierBronze,
		"high-five":       TierSilver,
		"week-of-coneys":  TierGold,
		"fortnight-feast": TierGold,
		"month-of-coneys": TierPlatinum,
		"season-of-chili": TierDiamond,
		"year-of-coneys":  TierDiamond,

		"sunday-funday":      TierBronze,
		"monday-motivation":  TierBronze,
		"taco-tuesday-rebel": TierBronze,
		"hump-day-hotdog":    TierBronze,
		"thirsty-thursday":   TierBronze,
		"friday-feast":       TierBronze,
		"saturday-special":   TierBronze,

		"early-bird":     TierSilver,
		"lunch-rush":     TierBronze,
		"happy-hour":     TierBronze,
		"night-owl":      TierSilver,
		"midnight-snack": TierSilver,

		"double-dipper": TierSilver,
		"chili-crawl":   TierGold,

		"big-appetite":   TierBronze,
		"coney-crusher":  TierSilver,
		"bottomless-pit": TierGold,

		"receipt-rookie": TierBronze,
		"paper-trail":    TierSilver,
		"auditor":        TierGold,
	}
	for _, brand := range models.ParlorBrands() {
		slug := models.BrandSlug(brand)
		m[slug+"-first-visit"] = TierBronze
		m[slug+"-regular"] = TierSilver
		m[slug+"-fan"] = TierGold
		m[slug+"-devotee"] = TierPlatinum
	}
	return m
}()

// TierOf returns the reward tier for an achievement id. Unknown ids are bronze.
func TierOf(id string) Tier {
	if t, ok := rewardTiers[id]; ok {
		return t
	}
	return TierBronze
}

// XPReward is the XP granted when id unlocks.
func XPReward(id string) int {
	return tierXP[TierOf(id)]
}

// TotalXPReward sums XPReward over ids.
func TotalXPReward(ids []string) int {
	total := 0
	for _, id := range ids {
		total += XPReward(id)
	}
	return total
}
