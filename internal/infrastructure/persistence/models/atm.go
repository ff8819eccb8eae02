package models

import (
	"time"

	"github.com/neighbourhood/backend/internal/domain/atm"
	"github.com/neighbourhood/backend/internal/domain/geo"
)

// ATMModel is the persistence model for the ATM domain entity. ATMs are
// keyed by the provider's external identifier rather than a generated UUID.
type ATMModel struct {
	ID               string    `gorm:"type:varchar(64);primary_key"`
	Location         string    `gorm:"type:varchar(255);not null"`
	Parish           string    `gorm:"type:varchar(100);not null;index"`
	DepositAvailable bool      `gorm:"not null;default:false"`
	Status           string    `gorm:"type:varchar(16);not null;default:'UNKNOWN';index"`
	LastUsed         string    `gorm:"type:varchar(16)"`
	Timestamp        time.Time `gorm:"not null"`
	Latitude         *float64  `gorm:"type:double precision"`
	Longitude        *float64  `gorm:"type:double precision"`
	GeocodingFailed  bool      `gorm:"not null;default:false"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ATMModel) TableName() string {
	return "atms"
}

// ToDomain converts the persistence model to a domain ATM entity.
func (m *ATMModel) ToDomain() *atm.ATM {
	entity := &atm.ATM{
		ID:               m.ID,
		Location:         m.Location,
		Parish:           m.Parish,
		DepositAvailable: m.DepositAvailable,
		Status:           atm.ParseStatus(m.Status),
		LastUsed:         m.LastUsed,
		Timestamp:        m.Timestamp,
		GeocodingFailed:  m.GeocodingFailed,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.Latitude != nil && m.Longitude != nil {
		entity.Coordinates = &geo.Coordinates{Latitude: *m.Latitude, Longitude: *m.Longitude}
	}
	return entity
}

// FromDomain populates the persistence model from a domain ATM entity.
func (m *ATMModel) FromDomain(a *atm.ATM) {
	m.ID = a.ID
	m.Location = a.Location
	m.Parish = a.Parish
	m.DepositAvailable = a.DepositAvailable
	m.Status = a.Status.String()
	m.LastUsed = a.LastUsed
	m.Timestamp = a.Timestamp
	m.GeocodingFailed = a.GeocodingFailed
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	if a.Coordinates != nil {
		lat, lng := a.Coordinates.Latitude, a.Coordinates.Longitude
		m.Latitude, m.Longitude = &lat, &lng
	} else {
		m.Latitude, m.Longitude = nil, nil
	}
}

// ATMModelFromDomain creates a new persistence model from a domain ATM entity.
func ATMModelFromDomain(a *atm.ATM) *ATMModel {
	m := &ATMModel{}
	m.FromDomain(a)
	return m
}
