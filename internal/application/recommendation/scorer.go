package recommendation

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/neighbourhood/backend/internal/domain/atm"
	"github.com/neighbourhood/backend/internal/domain/geo"
	"github.com/neighbourhood/backend/internal/domain/preference"
)

// Component weights, summing to 1.0.
const (
	weightDistance   = 0.30
	weightBank       = 0.25
	weightFunctional = 0.20
	weightDeposit    = 0.15
	weightWait       = 0.10
)

// maxScoringDistanceKm is where the distance score decays to zero.
const maxScoringDistanceKm = 15.0

// nonPreferredBankScore keeps a non-preferred bank usable as a
// fallback instead of zeroing it out.
const nonPreferredBankScore = 0.3

// maxQueueSize caps the simulated queue used by the wait estimate.
const maxQueueSize = 5

// Score is the component breakdown for one candidate
type Score struct {
	Total               float64
	Distance            float64
	BankPreference      float64
	Functionality       float64
	DepositAvailability float64
	WaitTime            float64

	DistanceKm          float64
	EstimatedWaitPeople int
	Bank                atm.Bank
	Reasons             []string
}

// Scorer computes weighted multi-factor scores. The clock is injectable
// so wait estimation is deterministic under test.
type Scorer struct {
	now func() time.Time
}

// NewScorer creates a Scorer using the wall clock
func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// NewScorerWithClock creates a Scorer with a fixed clock
func NewScorerWithClock(now func() time.Time) *Scorer {
	return &Scorer{now: now}
}

// Score computes the weighted score of one candidate for a user at the
// given position. The second return is false when the candidate has no
// usable coordinates and cannot be scored at all.
func (s *Scorer) Score(c *atm.ATM, user geo.Coordinates, prefs *preference.Preferences) (Score, bool) {
	if !c.HasCoordinates() {
		return Score{}, false
	}
	prefs.Normalize()

	score := Score{Bank: c.Bank()}
	score.DistanceKm = user.DistanceKm(*c.Coordinates)

	// Linear decay to zero at the 15 km horizon, never negative.
	if score.DistanceKm <= maxScoringDistanceKm {
		score.Distance = 1.0 - score.DistanceKm/maxScoringDistanceKm
	}

	if prefs.PreferredBanks.Matches(score.Bank) {
		score.BankPreference = 1.0
		score.Reasons = append(score.Reasons, fmt.Sprintf("Matches preferred bank (%s)", score.Bank))
	} else {
		score.BankPreference = nonPreferredBankScore
	}

	if c.IsFunctional() {
		score.Functionality = 1.0
		score.Reasons = append(score.Reasons, "ATM is functional")
	} else {
		score.Reasons = append(score.Reasons, "ATM may not be working")
	}

	if !prefs.TransactionTypes.RequiresDeposit() {
		score.DepositAvailability = 1.0
	} else if c.DepositAvailable {
		score.DepositAvailability = 1.0
		score.Reasons = append(score.Reasons, "Supports deposits")
	} else {
		score.Reasons = append(score.Reasons, "Does not support deposits")
	}

	score.EstimatedWaitPeople = s.estimateQueue(c)
	score.WaitTime = 1.0 - float64(score.EstimatedWaitPeople)/maxQueueSize
	switch {
	case score.EstimatedWaitPeople == 0:
		score.Reasons = append(score.Reasons, "No expected wait time")
	case score.EstimatedWaitPeople <= 2:
		score.Reasons = append(score.Reasons, fmt.Sprintf("Short wait (~%d people)", score.EstimatedWaitPeople))
	default:
		score.Reasons = append(score.Reasons, fmt.Sprintf("Longer wait (~%d people)", score.EstimatedWaitPeople))
	}

	total := score.Distance*weightDistance +
		score.BankPreference*weightBank +
		score.Functionality*weightFunctional +
		score.DepositAvailability*weightDeposit +
		score.WaitTime*weightWait
	score.Total = round3(total)

	return score, true
}

// estimateQueue buckets the minutes since last recorded use into a
// coarse simulated queue size: recent use means an active machine.
func (s *Scorer) estimateQueue(c *atm.ATM) int {
	minutes, ok := c.MinutesSinceLastUse(s.now())
	if !ok {
		return 0
	}
	switch {
	case minutes <= 10:
		return 5
	case minutes <= 30:
		return 3
	case minutes <= 60:
		return 1
	default:
		return 0
	}
}

// Ranked is one scored candidate in rank order
type Ranked struct {
	ATM   atm.ATM
	Score Score
}

// Rank scores every usable candidate and returns the top k by
// descending total, ties broken by ascending distance. Candidates
// without coordinates are excluded entirely.
func (s *Scorer) Rank(candidates []atm.ATM, user geo.Coordinates, prefs *preference.Preferences, k int) []Ranked {
	ranked := make([]Ranked, 0, len(candidates))
	for i := range candidates {
		score, ok := s.Score(&candidates[i], user, prefs)
		if !ok {
			continue
		}
		ranked = append(ranked, Ranked{ATM: candidates[i], Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score.Total != ranked[j].Score.Total {
			return ranked[i].Score.Total > ranked[j].Score.Total
		}
		return ranked[i].Score.DistanceKm < ranked[j].Score.DistanceKm
	})

	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
