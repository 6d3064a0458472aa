package repository

import (
	"context"
	"errors"

	"github.com/myshagun/backend/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUserID returns nil, nil when the user has no profile.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := conn(ctx, r.db).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &profile, nil
}

// GetByUserIDs loads several profiles keyed by user id. Unknown ids are skipped.
func (r *ProfileRepository) GetByUserIDs(ctx context.Context, userIDs []string) (map[string]*models.Profile, error) {
	result := make(map[string]*models.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var profiles []*models.Profile
	if err := conn(ctx, r.db).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, WrapDBError(err)
	}
	for _, p := range profiles {
		result[p.UserID] = p
	}
	return result, nil
}

// Exists reports whether a profile with the id is present.
func (r *ProfileRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Profile{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return false, WrapDBError(err)
	}
	return count > 0, nil
}

// Update writes only the given columns. An empty map is a no-op.
func (r *ProfileRepository) Update(ctx context.Context, userID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := conn(ctx, r.db).Model(&models.Profile{}).Where("user_id = ?", userID).Updates(fields)
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// DiscoverFilter narrows the discovery list.
type DiscoverFilter struct {
	Gender models.Gender
	Limit  int
	Offset int
}

// Discover lists profiles other than viewerID that viewerID has not liked yet,
// newest first.
func (r *ProfileRepository) Discover(ctx context.Context, viewerID string, filter DiscoverFilter) ([]*models.Profile, error) {
	liked := r.db.Model(&models.Like{}).Select("to_profile_id").Where("from_profile_id = ?", viewerID)

	query := conn(ctx, r.db).
		Where("user_id <> ?", viewerID).
		Where("user_id NOT IN (?)", liked)
	if filter.Gender != "" {
		query = query.Where("gender = ?", filter.Gender)
	}

	var profiles []*models.Profile
	err := query.
		Order("created_at DESC, user_id").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&profiles).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return profiles, nil
}
