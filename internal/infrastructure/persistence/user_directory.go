package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentalhub/backend/internal/domain/dashboard"
	"github.com/rentalhub/backend/internal/domain/identity"
	"github.com/rentalhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserDirectory implements dashboard.UserDirectory using GORM.
type GormUserDirectory struct {
	db *gorm.DB
}

// NewGormUserDirectory creates a new GORM-based user directory
func NewGormUserDirectory(db *gorm.DB) *GormUserDirectory {
	return &GormUserDirectory{db: db}
}

// FindByIDs resolves the given user ids to accounts. Ids that no
// longer exist are simply absent from the result.
func (d *GormUserDirectory) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.User, error) {
	if len(ids) == 0 {
		return []identity.User{}, nil
	}

	var rows []models.UserModel
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, dashboard.NewQueryError("user directory", err)
	}

	users := make([]identity.User, len(rows))
	for i := range rows {
		users[i] = rows[i].ToDomain()
	}
	return users, nil
}
