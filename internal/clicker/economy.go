package clicker

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownUpgrade    = errors.New("unknown upgrade")
	ErrLocked            = errors.New("upgrade is still locked")
	ErrAlreadyOwned      = errors.New("upgrade already owned")
	ErrInsufficientFunds = errors.New("not enough coneys")
)

const (
	autoSpoonShare     = 0.01
	comboBonusPerKind  = 0.05
	bulkDiscountFactor = "0.9"

	// MaxClicksPerSecond bounds how many clicks a sync may claim.
	MaxClicksPerSecond = 20
	// MaxSyncWindow bounds how much generator time a single sync may claim.
	MaxSyncWindow = 15 * time.Minute
)

type State struct {
	Coneys         float64        `json:"coneys"`
	LifetimeEarned float64        `json:"lifetime_earned"`
	TotalClicks    int64          `json:"total_clicks"`
	Owned          map[string]int `json:"owned"`
}

type Totals struct {
	ClickValue float64 `json:"click_value"`
	CPS        float64 `json:"cps"`
}

// ComputeTotals derives click value and coneys per second from the owned
// upgrades. CPS applies generator output, then cps multipliers, then global
// multipliers, then specials. Click value applies the base click plus flat
// bonuses, then click multipliers, then global multipliers, then auto-spoon.
func ComputeTotals(owned map[string]int) Totals {
	var cps float64
	clickValue := 1.0
	cpsMult, clickMult, allMult := 1.0, 1.0, 1.0
	generatorKinds := 0

	for _, u := range Upgrades {
		n := owned[u.ID]
		if n <= 0 {
			continue
		}
		switch u.Category {
		case CategoryGenerator:
			cps += float64(n) * u.CPS
			generatorKinds++
		case CategoryClick:
			clickValue += u.ClickBonus
		case CategoryMultiplier:
			switch u.Target {
			case TargetCPS:
				cpsMult *= u.Multiplier
			case TargetClick:
				clickMult *= u.Multiplier
			case TargetAll:
				allMult *= u.Multiplier
			}
		}
	}

	cps *= cpsMult
	cps *= allMult
	if owned[SpecialFiveWayCombo] > 0 {
		cps *= 1 + comboBonusPerKind*float64(generatorKinds)
	}

	clickValue *= clickMult
	clickValue *= allMult
	if owned[SpecialAutoSpoon] > 0 {
		clickValue += cps * autoSpoonShare
	}

	return Totals{ClickValue: clickValue, CPS: cps}
}

func (s State) owned(id string) int {
	if s.Owned == nil {
		return 0
	}
	return s.Owned[id]
}

// PriceOf is the current price of an upgrade for this state, with discounts.
func (s State) PriceOf(u Upgrade) int64 {
	raw := RawPrice(u, s.owned(u.ID))
	if u.Category == CategoryGenerator && s.owned(SpecialBulkDiscount) > 0 {
		raw = raw.Mul(decimal.RequireFromString(bulkDiscountFactor))
	}
	return raw.Floor().IntPart()
}

// Available reports whether lifetime earnings have reached the upgrade's gate.
func (s State) Available(u Upgrade) bool {
	return s.LifetimeEarned >= u.UnlockAt
}

func (s State) CanAfford(u Upgrade) bool {
	return s.Coneys >= float64(s.PriceOf(u))
}

// Purchase buys upgrade id and returns the resulting state and the price paid.
// The input state is not modified.
func Purchase(s State, id string) (State, int64, error) {
	u, ok := Find(id)
	if !ok {
		return s, 0, fmt.Errorf("%w: %s", ErrUnknownUpgrade, id)
	}
	if !s.Available(u) {
		return s, 0, ErrLocked
	}
	if !u.Repeatable() && s.owned(id) > 0 {
		return s, 0, ErrAlreadyOwned
	}
	price := s.PriceOf(u)
	if s.Coneys < float64(price) {
		return s, 0, ErrInsufficientFunds
	}

	next := s
	next.Owned = make(map[string]int, len(s.Owned)+1)
	for k, v := range s.Owned {
		next.Owned[k] = v
	}
	next.Owned[id]++
	next.Coneys -= float64(price)
	return next, price, nil
}

// ClampElapsed bounds the generator time a sync may claim to [0, MaxSyncWindow].
func ClampElapsed(elapsed time.Duration) time.Duration {
	if elapsed < 0 {
		return 0
	}
	if elapsed > MaxSyncWindow {
		return MaxSyncWindow
	}
	return elapsed
}

// ClampClicks bounds clicks to MaxClicksPerSecond over the clamped elapsed
// time. Syncs closer together than a click get no click budget.
func ClampClicks(elapsed time.Duration, clicks int64) int64 {
	seconds := ClampElapsed(elapsed).Seconds()
	maxClicks := int64(math.Floor(seconds * MaxClicksPerSecond))
	if clicks > maxClicks {
		return maxClicks
	}
	if clicks < 0 {
		return 0
	}
	return clicks
}

// MaxEarnable is the most a client could have earned over elapsed with the
// given totals and number of clicks, after clamping both.
func MaxEarnable(t Totals, elapsed time.Duration, clicks int64) float64 {
	seconds := ClampElapsed(elapsed).Seconds()
	return seconds*t.CPS + float64(ClampClicks(elapsed, clicks))*t.ClickValue
}

// UpgradeView is an upgrade with its price and flags for one state.
type UpgradeView struct {
	Upgrade
	Owned      int   `json:"owned"`
	Price      int64 `json:"price"`
	Available  bool  `json:"available"`
	Affordable bool  `json:"affordable"`
}

func (s State) Catalogue() []UpgradeView {
	views := make([]UpgradeView, 0, len(Upgrades))
	for _, u := range Upgrades {
		views = append(views, UpgradeView{
			Upgrade:    u,
			Owned:      s.owned(u.ID),
			Price:      s.PriceOf(u),
			Available:  s.Available(u),
			Affordable: s.Available(u) && s.CanAfford(u),
		})
	}
	return views
}
