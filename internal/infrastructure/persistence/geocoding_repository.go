package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/neighbourhood/backend/internal/domain/geocoding"
	"github.com/neighbourhood/backend/internal/domain/shared"
	"github.com/neighbourhood/backend/internal/infrastructure/persistence/models"
)

// GormGeocodingCacheRepository implements geocoding.CacheRepository using GORM
type GormGeocodingCacheRepository struct {
	db *gorm.DB
}

// NewGormGeocodingCacheRepository creates a new GormGeocodingCacheRepository
func NewGormGeocodingCacheRepository(db *gorm.DB) *GormGeocodingCacheRepository {
	return &GormGeocodingCacheRepository{db: db}
}

// Find looks up cached coordinates for a (location, parish) pair
func (r *GormGeocodingCacheRepository) Find(ctx context.Context, location, parish string) (*geocoding.CacheEntry, error) {
	var model models.GeocodingCacheModel
	if err := r.db.WithContext(ctx).
		Where("location = ? AND parish = ?", location, parish).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SaveIfAbsent writes the entry unless the key already exists. Concurrent
// writers race safely; the first committed entry wins.
func (r *GormGeocodingCacheRepository) SaveIfAbsent(ctx context.Context, entry *geocoding.CacheEntry) error {
	model := &models.GeocodingCacheModel{}
	model.FromDomain(entry)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "location"}, {Name: "parish"}},
			DoNothing: true,
		}).
		Create(model).Error
}

// GormGeocodingFailureRepository implements geocoding.FailureRepository using GORM
type GormGeocodingFailureRepository struct {
	db *gorm.DB
}

// NewGormGeocodingFailureRepository creates a new GormGeocodingFailureRepository
func NewGormGeocodingFailureRepository(db *gorm.DB) *GormGeocodingFailureRepository {
	return &GormGeocodingFailureRepository{db: db}
}

// FindByATMID finds the failure ledger entry for an ATM
func (r *GormGeocodingFailureRepository) FindByATMID(ctx context.Context, atmID string) (*geocoding.FailureEntry, error) {
	var model models.GeocodingFailureModel
	if err := r.db.WithContext(ctx).First(&model, "atm_id = ?", atmID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRetryable returns ledger entries that have not exhausted the retry budget
func (r *GormGeocodingFailureRepository) FindRetryable(ctx context.Context) ([]geocoding.FailureEntry, error) {
	var failureModels []models.GeocodingFailureModel
	if err := r.db.WithContext(ctx).
		Where("retry_count < ?", geocoding.MaxRetries).
		Order("last_retry").
		Find(&failureModels).Error; err != nil {
		return nil, err
	}

	entries := make([]geocoding.FailureEntry, len(failureModels))
	for i := range failureModels {
		entries[i] = *failureModels[i].ToDomain()
	}
	return entries, nil
}

// Save upserts a failure ledger entry by ATM identifier
func (r *GormGeocodingFailureRepository) Save(ctx context.Context, entry *geocoding.FailureEntry) error {
	model := &models.GeocodingFailureModel{}
	model.FromDomain(entry)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "atm_id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// Delete removes the ledger entry for an ATM. Deleting an absent entry is
// not an error.
func (r *GormGeocodingFailureRepository) Delete(ctx context.Context, atmID string) error {
	return r.db.WithContext(ctx).
		Delete(&models.GeocodingFailureModel{}, "atm_id = ?", atmID).Error
}
