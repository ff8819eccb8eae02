package preference

import (
	"github.com/neighbourhood/backend/internal/domain/atm"
	"github.com/neighbourhood/backend/internal/domain/preference"
	"github.com/neighbourhood/backend/internal/domain/shared"
)

// SavePreferencesRequest carries a full or partial preference update.
// Omitted fields keep their stored values.
type SavePreferencesRequest struct {
	PreferredBanks    []string `json:"preferred_banks"`
	TransactionTypes  []string `json:"transaction_types"`
	MaxRadiusKm       *int     `json:"max_radius_km"`
	PreferredCurrency string   `json:"preferred_currency"`
}

// Validate checks set members and radius bounds
func (r SavePreferencesRequest) Validate() error {
	for _, b := range r.PreferredBanks {
		if b == preference.AnyBank || atm.KnownBank(b) {
			continue
		}
		return shared.NewDomainError("INVALID_INPUT", "Unknown bank code: "+b)
	}
	for _, t := range r.TransactionTypes {
		if !preference.TransactionType(t).IsValid() {
			return shared.NewDomainError("INVALID_INPUT", "Unknown transaction type: "+t)
		}
	}
	if r.MaxRadiusKm != nil && *r.MaxRadiusKm <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Max radius must be positive")
	}
	return nil
}

func (r SavePreferencesRequest) applyTo(prefs *preference.Preferences) {
	if len(r.PreferredBanks) > 0 {
		prefs.PreferredBanks = preference.BankSet(r.PreferredBanks)
	}
	if len(r.TransactionTypes) > 0 {
		types := make(preference.TransactionTypes, 0, len(r.TransactionTypes))
		for _, t := range r.TransactionTypes {
			types = append(types, preference.TransactionType(t))
		}
		prefs.TransactionTypes = types
	}
	if r.MaxRadiusKm != nil {
		prefs.MaxRadiusKm = *r.MaxRadiusKm
	}
	if r.PreferredCurrency != "" {
		prefs.PreferredCurrency = r.PreferredCurrency
	}
}

// PreferencesResponse is the read shape of a preference set
type PreferencesResponse struct {
	PreferredBanks    []string `json:"preferred_banks"`
	TransactionTypes  []string `json:"transaction_types"`
	MaxRadiusKm       int      `json:"max_radius_km"`
	PreferredCurrency string   `json:"preferred_currency"`
}

// NewPreferencesResponse maps preferences to their response shape
func NewPreferencesResponse(p *preference.Preferences) *PreferencesResponse {
	types := make([]string, 0, len(p.TransactionTypes))
	for _, t := range p.TransactionTypes {
		types = append(types, string(t))
	}
	return &PreferencesResponse{
		PreferredBanks:    append([]string(nil), p.PreferredBanks...),
		TransactionTypes:  types,
		MaxRadiusKm:       p.MaxRadiusKm,
		PreferredCurrency: p.PreferredCurrency,
	}
}
