package models

import (
	"time"

	"github.com/neighbourhood/backend/internal/domain/geo"
	"github.com/neighbourhood/backend/internal/domain/geocoding"
)

// GeocodingCacheModel is the persistence model for resolved coordinates.
// Entries are write-once, keyed by the (location, parish) pair.
type GeocodingCacheModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Location  string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_geocoding_cache_place,priority:1"`
	Parish    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_geocoding_cache_place,priority:2"`
	Latitude  float64   `gorm:"type:double precision;not null"`
	Longitude float64   `gorm:"type:double precision;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GeocodingCacheModel) TableName() string {
	return "geocoding_cache"
}

// ToDomain converts the persistence model to a domain cache entry.
func (m *GeocodingCacheModel) ToDomain() *geocoding.CacheEntry {
	return &geocoding.CacheEntry{
		Location:    m.Location,
		Parish:      m.Parish,
		Coordinates: geo.Coordinates{Latitude: m.Latitude, Longitude: m.Longitude},
		CreatedAt:   m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain cache entry.
func (m *GeocodingCacheModel) FromDomain(e *geocoding.CacheEntry) {
	m.Location = e.Location
	m.Parish = e.Parish
	m.Latitude = e.Coordinates.Latitude
	m.Longitude = e.Coordinates.Longitude
	m.CreatedAt = e.CreatedAt
}

// GeocodingFailureModel is the persistence model for the geocoding failure
// ledger, keyed by the ATM whose location could not be resolved.
type GeocodingFailureModel struct {
	ATMID        string    `gorm:"type:varchar(64);primary_key;column:atm_id"`
	Location     string    `gorm:"type:varchar(255);not null"`
	Parish       string    `gorm:"type:varchar(100);not null"`
	ErrorMessage string    `gorm:"type:text"`
	RetryCount   int       `gorm:"not null;default:1"`
	LastRetry    time.Time `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GeocodingFailureModel) TableName() string {
	return "geocoding_failures"
}

// ToDomain converts the persistence model to a domain failure entry.
func (m *GeocodingFailureModel) ToDomain() *geocoding.FailureEntry {
	return &geocoding.FailureEntry{
		ATMID:        m.ATMID,
		Location:     m.Location,
		Parish:       m.Parish,
		ErrorMessage: m.ErrorMessage,
		RetryCount:   m.RetryCount,
		LastRetry:    m.LastRetry,
		CreatedAt:    m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain failure entry.
func (m *GeocodingFailureModel) FromDomain(e *geocoding.FailureEntry) {
	m.ATMID = e.ATMID
	m.Location = e.Location
	m.Parish = e.Parish
	m.ErrorMessage = e.ErrorMessage
	m.RetryCount = e.RetryCount
	m.LastRetry = e.LastRetry
	m.CreatedAt = e.CreatedAt
}
