package atmview

import (
	"fmt"
	"time"

	"github.com/neighbourhood/backend/internal/domain/atm"
)

// ATMResponse is the read-endpoint shape of one mirrored record
type ATMResponse struct {
	ID               string   `json:"id"`
	Bank             string   `json:"bank"`
	BankName         string   `json:"bankName"`
	Type             string   `json:"type"` // ATM or ABM (deposit-capable)
	Lat              *float64 `json:"lat"`
	Lng              *float64 `json:"lng"`
	WithdrawalFee    float64  `json:"withdrawalFee"`
	DepositFee       float64  `json:"depositFee"`
	LowOnCash        bool     `json:"lowOnCash"`
	Functional       bool     `json:"functional"`
	SupportsCurrency string   `json:"supportsCurrency"`
	Address          string   `json:"address"`
	Location         string   `json:"location"`
	Parish           string   `json:"parish"`
	GeocodingFailed  bool     `json:"geocodingFailed"`
	LastUpdated      string   `json:"lastUpdated,omitempty"`
}

// StatsResponse is the aggregate statistics payload
type StatsResponse struct {
	Total           int64  `json:"total"`
	Working         int64  `json:"working"`
	NotWorking      int64  `json:"not_working"`
	GeocodingFailed int64  `json:"geocoding_failed"`
	Parishes        int64  `json:"parishes"`
	LastUpdated     string `json:"last_updated,omitempty"`
}

// NewATMResponse maps a domain record to its response shape
func NewATMResponse(a *atm.ATM) ATMResponse {
	bank := a.Bank()
	machineType := "ATM"
	if a.DepositAvailable {
		machineType = "ABM"
	}

	resp := ATMResponse{
		ID:               a.ID,
		Bank:             bank.String(),
		BankName:         bank.FullName(),
		Type:             machineType,
		WithdrawalFee:    bank.WithdrawalFee().InexactFloat64(),
		DepositFee:       bank.DepositFee().InexactFloat64(),
		LowOnCash:        a.LowOnCash(),
		Functional:       a.IsFunctional(),
		SupportsCurrency: "JMD",
		Address:          fmt.Sprintf("%s, %s", a.PlaceName(), a.Parish),
		Location:         a.Location,
		Parish:           a.Parish,
		GeocodingFailed:  a.GeocodingFailed,
	}
	if a.HasCoordinates() {
		lat, lng := a.Coordinates.Latitude, a.Coordinates.Longitude
		resp.Lat, resp.Lng = &lat, &lng
	}
	if !a.UpdatedAt.IsZero() {
		resp.LastUpdated = a.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}
