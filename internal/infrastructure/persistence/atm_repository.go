package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/neighbourhood/backend/internal/domain/atm"
	"github.com/neighbourhood/backend/internal/domain/shared"
	"github.com/neighbourhood/backend/internal/infrastructure/persistence/models"
)

// GormATMRepository implements atm.Repository using GORM
type GormATMRepository struct {
	db *gorm.DB
}

// NewGormATMRepository creates a new GormATMRepository
func NewGormATMRepository(db *gorm.DB) *GormATMRepository {
	return &GormATMRepository{db: db}
}

// FindByID finds an ATM by its provider identifier
func (r *GormATMRepository) FindByID(ctx context.Context, id string) (*atm.ATM, error) {
	var model models.ATMModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every mirrored ATM ordered by parish and location
func (r *GormATMRepository) FindAll(ctx context.Context) ([]atm.ATM, error) {
	var atmModels []models.ATMModel
	if err := r.db.WithContext(ctx).
		Order("parish, location").
		Find(&atmModels).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(atmModels), nil
}

// FindByParish returns the ATMs recorded for a parish
func (r *GormATMRepository) FindByParish(ctx context.Context, parish string) ([]atm.ATM, error) {
	var atmModels []models.ATMModel
	if err := r.db.WithContext(ctx).
		Where("parish = ?", parish).
		Order("location").
		Find(&atmModels).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(atmModels), nil
}

// Save upserts an ATM record by its provider identifier
func (r *GormATMRepository) Save(ctx context.Context, record *atm.ATM) error {
	model := models.ATMModelFromDomain(record)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// Stats returns aggregate fleet counters
func (r *GormATMRepository) Stats(ctx context.Context) (*atm.Stats, error) {
	var row struct {
		Total           int64
		Working         int64
		GeocodingFailed int64
		Parishes        int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.ATMModel{}).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = ?) AS working,
			COUNT(*) FILTER (WHERE geocoding_failed) AS geocoding_failed,
			COUNT(DISTINCT parish) AS parishes`, atm.StatusWorking.String()).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats := &atm.Stats{
		Total:           row.Total,
		Working:         row.Working,
		GeocodingFailed: row.GeocodingFailed,
		Parishes:        row.Parishes,
	}

	if row.Total > 0 {
		var lastUpdated struct{ LastUpdated *time.Time }
		if err := r.db.WithContext(ctx).
			Model(&models.ATMModel{}).
			Select("MAX(updated_at) AS last_updated").
			Scan(&lastUpdated).Error; err != nil {
			return nil, err
		}
		stats.LastUpdated = lastUpdated.LastUpdated
	}
	return stats, nil
}

func toDomainSlice(atmModels []models.ATMModel) []atm.ATM {
	records := make([]atm.ATM, len(atmModels))
	for i := range atmModels {
		records[i] = *atmModels[i].ToDomain()
	}
	return records
}
