package repository

import (
	"context"

	"github.com/myshagun/backend/internal/models"
	"gorm.io/gorm"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Exists reports whether fromID has liked toID.
func (r *LikeRepository) Exists(ctx context.Context, fromID, toID string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&models.Like{}).
		Where("from_profile_id = ? AND to_profile_id = ?", fromID, toID).
		Count(&count).Error
	if err != nil {
		return false, WrapDBError(err)
	}
	return count > 0, nil
}

// Create inserts the like. A concurrent insert of the same pair yields ErrDuplicateKey.
func (r *LikeRepository) Create(ctx context.Context, like *models.Like) error {
	return WrapDBError(insertIsolated(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Omit("From", "To").Create(like).Error
	}))
}
