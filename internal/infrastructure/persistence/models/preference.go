package models

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/neighbourhood/backend/internal/domain/preference"
)

// UserPreferencesModel is the persistence model for user recommendation
// preferences. Bank and transaction type sets are stored as JSON arrays.
type UserPreferencesModel struct {
	BaseModel
	UserID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	PreferredBanks    string    `gorm:"type:jsonb;not null;default:'[]'"`
	TransactionTypes  string    `gorm:"type:jsonb;not null;default:'[]'"`
	MaxRadiusKm       int       `gorm:"not null;default:10"`
	PreferredCurrency string    `gorm:"type:varchar(8);not null;default:'JMD'"`
}

// TableName returns the table name for GORM
func (UserPreferencesModel) TableName() string {
	return "user_preferences"
}

// ToDomain converts the persistence model to domain Preferences.
func (m *UserPreferencesModel) ToDomain() (*preference.Preferences, error) {
	var banks preference.BankSet
	if err := json.Unmarshal([]byte(m.PreferredBanks), &banks); err != nil {
		return nil, err
	}
	var types preference.TransactionTypes
	if err := json.Unmarshal([]byte(m.TransactionTypes), &types); err != nil {
		return nil, err
	}

	return &preference.Preferences{
		BaseEntity:        m.BaseModel.ToDomain(),
		UserID:            m.UserID,
		PreferredBanks:    banks,
		TransactionTypes:  types,
		MaxRadiusKm:       m.MaxRadiusKm,
		PreferredCurrency: m.PreferredCurrency,
	}, nil
}

// FromDomain populates the persistence model from domain Preferences.
func (m *UserPreferencesModel) FromDomain(p *preference.Preferences) error {
	banks, err := json.Marshal(p.PreferredBanks)
	if err != nil {
		return err
	}
	types, err := json.Marshal(p.TransactionTypes)
	if err != nil {
		return err
	}

	m.FromDomainBaseEntity(p.BaseEntity)
	m.UserID = p.UserID
	m.PreferredBanks = string(banks)
	m.TransactionTypes = string(types)
	m.MaxRadiusKm = p.MaxRadiusKm
	m.PreferredCurrency = p.PreferredCurrency
	return nil
}
