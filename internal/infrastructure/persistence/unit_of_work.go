package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/neighbourhood/backend/internal/domain/atm"
)

// GormUnitOfWork implements atm.UnitOfWork. All repository writes made
// inside the callback share one transaction; returning an error rolls the
// whole batch back.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// InTransaction runs fn with a repository bound to a single transaction
func (u *GormUnitOfWork) InTransaction(ctx context.Context, fn func(repo atm.Repository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormATMRepository(tx))
	})
}
