// Package clicker holds the Coney Clicker upgrade catalogue and economy rules.
package clicker

import (
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryClick      Category = "click"
	CategoryGenerator  Category = "generator"
	CategoryMultiplier Category = "multiplier"
	CategorySpecial    Category = "special"
)

// Target says what a multiplier applies to.
type Target string

const (
	TargetClick Target = "click"
	TargetCPS   Target = "cps"
	TargetAll   Target = "all"
)

const (
	SpecialAutoSpoon    = "auto-spoon"
	SpecialFiveWayCombo = "five-way-combo"
	SpecialBulkDiscount = "bulk-discount"
)

// PriceGrowth is the factor a repeatable upgrade's price grows by per purchase.
var PriceGrowth = decimal.RequireFromString("1.15")

type Upgrade struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	BasePrice   int64    `json:"base_price"`
	ClickBonus  float64  `json:"click_bonus,omitempty"`
	CPS         float64  `json:"cps,omitempty"`
	Multiplier  float64  `json:"multiplier,omitempty"`
	Target      Target   `json:"target,omitempty"`
	UnlockAt    float64  `json:"unlock_at,omitempty"`
}

// Repeatable reports whether the upgrade can be bought more than once.
func (u Upgrade) Repeatable() bool {
	return u.Category == CategoryGenerator
}

var Upgrades = []Upgrade{
	{ID: "extra-cheese", Name: "Extra Cheese", Description: "+1 coney per click", Category: CategoryClick, BasePrice: 15, ClickBonus: 1},
	{ID: "double-onions", Name: "Double Onions", Description: "+2 coneys per click", Category: CategoryClick, BasePrice: 100, ClickBonus: 2},
	{ID: "mustard-squeeze", Name: "Mustard Squeeze", Description: "+5 coneys per click", Category: CategoryClick, BasePrice: 500, ClickBonus: 5, UnlockAt: 200},
	{ID: "oyster-crackers", Name: "Oyster Crackers", Description: "+10 coneys per click", Category: CategoryClick, BasePrice: 2000, ClickBonus: 10, UnlockAt: 1000},
	{ID: "hot-sauce", Name: "Hot Sauce", Description: "+25 coneys per click", Category: CategoryClick, BasePrice: 10000, ClickBonus: 25, UnlockAt: 5000},

	{ID: "line-cook", Name: "Line Cook", Description: "Steams 0.1 coneys per second", Category: CategoryGenerator, BasePrice: 15, CPS: 0.1},
	{ID: "chili-pot", Name: "Chili Pot", Description: "Simmers 1 coney per second", Category: CategoryGenerator, BasePrice: 100, CPS: 1},
	{ID: "steamer-cabinet", Name: "Steamer Cabinet", Description: "Warms 8 coneys per second", Category: CategoryGenerator, BasePrice: 1100, CPS: 8},
	{ID: "drive-thru", Name: "Drive-Thru", Description: "Serves 47 coneys per second", Category: CategoryGenerator, BasePrice: 12000, CPS: 47, UnlockAt: 5000},
	{ID: "chili-parlor", Name: "Chili Parlor", Description: "Serves 260 coneys per second", Category: CategoryGenerator, BasePrice: 130000, CPS: 260, UnlockAt: 50000},
	{ID: "chili-factory", Name: "Chili Factory", Description: "Cans 1,400 coneys per second", Category: CategoryGenerator, BasePrice: 1400000, CPS: 1400, UnlockAt: 500000},
	{ID: "coney-franchise", Name: "Coney Franchise", Description: "Franchises 7,800 coneys per second", Category: CategoryGenerator, BasePrice: 20000000, CPS: 7800, UnlockAt: 5000000},

	{ID: "secret-recipe", Name: "Secret Recipe", Description: "Generators produce twice as much", Category: CategoryMultiplier, BasePrice: 5000, Multiplier: 2, Target: TargetCPS, UnlockAt: 2500},
	{ID: "cheese-avalanche", Name: "Cheese Avalanche", Description: "Clicks are worth twice as much", Category: CategoryMultiplier, BasePrice: 7500, Multiplier: 2, Target: TargetClick, UnlockAt: 3000},
	{ID: "family-recipe", Name: "Family Recipe", Description: "Generators produce twice as much again", Category: CategoryMultiplier, BasePrice: 50000, Multiplier: 2, Target: TargetCPS, UnlockAt: 25000},
	{ID: "golden-ladle", Name: "Golden Ladle", Description: "Clicks are worth three times as much", Category: CategoryMultiplier, BasePrice: 100000, Multiplier: 3, Target: TargetClick, UnlockAt: 50000},
	{ID: "chili-empire", Name: "Chili Empire", Description: "Everything earns 50% more", Category: CategoryMultiplier, BasePrice: 1000000, Multiplier: 1.5, Target: TargetAll, UnlockAt: 500000},

	{ID: SpecialAutoSpoon, Name: "Auto Spoon", Description: "Each click also earns 1% of your coneys per second", Category: CategorySpecial, BasePrice: 25000, UnlockAt: 10000},
	{ID: SpecialBulkDiscount, Name: "Bulk Discount", Description: "Generators cost 10% less", Category: CategorySpecial, BasePrice: 75000, UnlockAt: 30000},
	{ID: SpecialFiveWayCombo, Name: "Five-Way Combo", Description: "+5% coneys per second for every kind of generator owned", Category: CategorySpecial, BasePrice: 250000, UnlockAt: 100000},
}

var upgradesByID = func() map[string]Upgrade {
	m := make(map[string]Upgrade, len(Upgrades))
	for _, u := range Upgrades {
		m[u.ID] = u
	}
	return m
}()

func Find(id string) (Upgrade, bool) {
	u, ok := upgradesByID[id]
	return u, ok
}

// RawPrice is base × 1.15^owned for repeatable upgrades, unrounded.
// One-time upgrades always cost their base price.
func RawPrice(u Upgrade, owned int) decimal.Decimal {
	base := decimal.NewFromInt(u.BasePrice)
	if !u.Repeatable() || owned <= 0 {
		return base
	}
	return base.Mul(PriceGrowth.Pow(decimal.NewFromInt(int64(owned))))
}

// Price is RawPrice rounded down to whole coneys.
func Price(u Upgrade, owned int) int64 {
	return RawPrice(u, owned).Floor().IntPart()
}
