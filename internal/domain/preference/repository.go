package preference

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for user preferences
type Repository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Preferences, error)
	Save(ctx context.Context, prefs *Preferences) error
}
