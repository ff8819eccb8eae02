// Package recommendation contains the cascading preference filter and
// the weighted recommendation scorer.
package recommendation

import (
	"github.com/neighbourhood/backend/internal/domain/atm"
	"github.com/neighbourhood/backend/internal/domain/geo"
	"github.com/neighbourhood/backend/internal/domain/preference"
)

// supportedCurrency is the only currency the mirrored fleet dispenses.
const supportedCurrency = "JMD"

type predicate func(c *atm.ATM) bool

// tier is one fallback rule set of the cascading filter
type tier struct {
	name  string
	match predicate
}

// Filter applies the cascading preference tiers and returns the first
// non-empty subset. Tiers never merge; with no tier matching, the full
// candidate set comes back unchanged, so a non-empty input always
// yields a non-empty result.
func Filter(candidates []atm.ATM, prefs *preference.Preferences, position *geo.Coordinates) []atm.ATM {
	subset, _ := FilterWithTier(candidates, prefs, position)
	return subset
}

// FilterWithTier is Filter plus the name of the tier that produced the
// result, for logging and diagnostics.
func FilterWithTier(candidates []atm.ATM, prefs *preference.Preferences, position *geo.Coordinates) ([]atm.ATM, string) {
	if len(candidates) == 0 {
		return candidates, "empty"
	}
	prefs.Normalize()

	bank := func(c *atm.ATM) bool { return prefs.PreferredBanks.Matches(c.Bank()) }
	txType := func(c *atm.ATM) bool { return prefs.TransactionTypes.Matches(c) }
	radius := func(c *atm.ATM) bool { return withinRadius(c, position, prefs.MaxRadiusKm) }
	currency := func(c *atm.ATM) bool { return currencyMatches(prefs.PreferredCurrency) }

	tiers := []tier{
		{"bank+type+radius+currency", all(bank, txType, radius, currency)},
		{"bank+radius", all(bank, radius)},
		{"bank+type", all(bank, txType)},
		{"bank", bank},
		{"radius", radius},
	}

	for _, t := range tiers {
		if subset := apply(candidates, t.match); len(subset) > 0 {
			return subset, t.name
		}
	}
	return candidates, "all"
}

func apply(candidates []atm.ATM, match predicate) []atm.ATM {
	var out []atm.ATM
	for i := range candidates {
		if match(&candidates[i]) {
			out = append(out, candidates[i])
		}
	}
	return out
}

func all(preds ...predicate) predicate {
	return func(c *atm.ATM) bool {
		for _, p := range preds {
			if !p(c) {
				return false
			}
		}
		return true
	}
}

// withinRadius treats a missing position or missing candidate
// coordinates as a pass: a candidate is never excluded for missing
// data.
func withinRadius(c *atm.ATM, position *geo.Coordinates, maxRadiusKm int) bool {
	if position == nil || !c.HasCoordinates() {
		return true
	}
	return position.DistanceKm(*c.Coordinates) <= float64(maxRadiusKm)
}

func currencyMatches(preferred string) bool {
	return preferred == "" || preferred == supportedCurrency
}
