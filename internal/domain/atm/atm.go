// Package atm holds the ATM record entity, the canonical bank inference
// and the provider status vocabulary.
package atm

import (
	"strconv"
	"strings"
	"time"

	"github.com/neighbourhood/backend/internal/domain/geo"
)

// ProviderPrefix tags stored location names with their source. It is a
// storage-layer disambiguator only and never appears in geocoding queries
// or bank inference.
const ProviderPrefix = "sbj_"

// ATM is a locally mirrored provider record, keyed by the provider's own
// identifier rather than a surrogate UUID.
type ATM struct {
	ID               string
	Location         string // stored with ProviderPrefix
	Parish           string
	DepositAvailable bool
	Status           Status
	LastUsed         string // provider time-of-day, HH:MM:SS
	Timestamp        time.Time
	Coordinates      *geo.Coordinates
	GeocodingFailed  bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// StripProviderPrefix returns the location without the provider tag.
func StripProviderPrefix(location string) string {
	return strings.TrimPrefix(location, ProviderPrefix)
}

// PrefixLocation returns the location with the provider tag applied,
// idempotently.
func PrefixLocation(location string) string {
	if strings.HasPrefix(location, ProviderPrefix) {
		return location
	}
	return ProviderPrefix + location
}

// PlaceName returns the physical place name without the provider prefix.
func (a *ATM) PlaceName() string {
	return StripProviderPrefix(a.Location)
}

// Bank returns the operating institution inferred from the location name.
func (a *ATM) Bank() Bank {
	return InferBank(a.Location)
}

// IsFunctional reports whether the machine was last seen WORKING.
func (a *ATM) IsFunctional() bool {
	return a.Status == StatusWorking
}

// HasCoordinates reports whether the record carries a resolved position.
func (a *ATM) HasCoordinates() bool {
	return a.Coordinates != nil
}

// MinutesSinceLastUse interprets LastUsed as a time of day on the current
// date and returns the elapsed minutes relative to now. The second return
// is false when LastUsed is absent or unparsable.
func (a *ATM) MinutesSinceLastUse(now time.Time) (float64, bool) {
	h, m, s, ok := splitClock(a.LastUsed)
	if !ok {
		return 0, false
	}
	lastUsed := time.Date(now.Year(), now.Month(), now.Day(), h, m, s, 0, now.Location())
	return now.Sub(lastUsed).Minutes(), true
}

// LowOnCash flags machines likely running low. The heuristic reads the
// LastUsed clock value itself, not elapsed time: any value past 02:00:00
// trips the flag, whatever the current time is.
func (a *ATM) LowOnCash() bool {
	h, m, _, ok := splitClock(a.LastUsed)
	if !ok {
		return false
	}
	return h*60+m > 120
}

func splitClock(v string) (h, m, s int, ok bool) {
	parts := strings.Split(v, ":")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	var err error
	if h, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, false
	}
	if m, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, false
	}
	if s, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, false
	}
	return h, m, s, true
}
