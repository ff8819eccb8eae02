package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/neighbourhood/backend/internal/domain/preference"
	"github.com/neighbourhood/backend/internal/domain/shared"
	"github.com/neighbourhood/backend/internal/infrastructure/persistence/models"
)

// GormPreferenceRepository implements preference.Repository using GORM
type GormPreferenceRepository struct {
	db *gorm.DB
}

// NewGormPreferenceRepository creates a new GormPreferenceRepository
func NewGormPreferenceRepository(db *gorm.DB) *GormPreferenceRepository {
	return &GormPreferenceRepository{db: db}
}

// FindByUserID finds the stored preferences for a user
func (r *GormPreferenceRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*preference.Preferences, error) {
	var model models.UserPreferencesModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// Save upserts preferences keyed by user
func (r *GormPreferenceRepository) Save(ctx context.Context, prefs *preference.Preferences) error {
	model := &models.UserPreferencesModel{}
	if err := model.FromDomain(prefs); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}
