package recommendation

import (
	"math"
	"time"
)

// ATMData is the candidate payload embedded in a recommendation
type ATMData struct {
	ID               string  `json:"id"`
	Location         string  `json:"location"`
	Parish           string  `json:"parish"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	Bank             string  `json:"bank"`
	BankName         string  `json:"bankName"`
	Functional       bool    `json:"functional"`
	DepositAvailable bool    `json:"deposit_available"`
	WithdrawalFee    float64 `json:"withdrawalFee"`
	DepositFee       float64 `json:"depositFee"`
	LastUpdated      string  `json:"lastUpdated,omitempty"`
}

// ScoreBreakdown exposes the per-component scores rounded for display
type ScoreBreakdown struct {
	Distance            float64 `json:"distance"`
	BankPreference      float64 `json:"bank_preference"`
	Functionality       float64 `json:"functionality"`
	DepositAvailability float64 `json:"deposit_availability"`
	WaitTime            float64 `json:"wait_time"`
}

// Recommendation is one ranked result
type Recommendation struct {
	ATMID               string         `json:"atm_id"`
	ATMData             ATMData        `json:"atm_data"`
	RecommendationScore float64        `json:"recommendation_score"`
	DistanceKm          float64        `json:"distance_km"`
	EstimatedWaitPeople int            `json:"estimated_wait_people"`
	Reasons             []string       `json:"reasons"`
	ScoreBreakdown      ScoreBreakdown `json:"score_breakdown"`
}

// NewRecommendation maps a ranked candidate to its response shape
func NewRecommendation(r Ranked) Recommendation {
	bank := r.Score.Bank
	data := ATMData{
		ID:               r.ATM.ID,
		Location:         r.ATM.Location,
		Parish:           r.ATM.Parish,
		Lat:              r.ATM.Coordinates.Latitude,
		Lng:              r.ATM.Coordinates.Longitude,
		Bank:             bank.String(),
		BankName:         bank.FullName(),
		Functional:       r.ATM.IsFunctional(),
		DepositAvailable: r.ATM.DepositAvailable,
		WithdrawalFee:    r.ATM.Bank().WithdrawalFee().InexactFloat64(),
		DepositFee:       r.ATM.Bank().DepositFee().InexactFloat64(),
	}
	if !r.ATM.UpdatedAt.IsZero() {
		data.LastUpdated = r.ATM.UpdatedAt.Format(time.RFC3339)
	}

	return Recommendation{
		ATMID:               r.ATM.ID,
		ATMData:             data,
		RecommendationScore: r.Score.Total,
		DistanceKm:          round2(r.Score.DistanceKm),
		EstimatedWaitPeople: r.Score.EstimatedWaitPeople,
		Reasons:             r.Score.Reasons,
		ScoreBreakdown: ScoreBreakdown{
			Distance:            round2(r.Score.Distance),
			BankPreference:      round2(r.Score.BankPreference),
			Functionality:       round2(r.Score.Functionality),
			DepositAvailability: round2(r.Score.DepositAvailability),
			WaitTime:            round2(r.Score.WaitTime),
		},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
