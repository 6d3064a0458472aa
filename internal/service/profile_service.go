package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/myshagun/backend/internal/models"
	"github.com/myshagun/backend/internal/repository"
	"github.com/myshagun/backend/internal/storage"
	"github.com/myshagun/backend/pkg/apperr"
	"github.com/myshagun/backend/pkg/logger"
	"go.uber.org/zap"
)

const (
	defaultDiscoverLimit = 20
	maxDiscoverLimit     = 100

	minHeightCm = 90
	maxHeightCm = 250
)

var ErrProfileNotFound = apperr.NotFound("profile not found")

// ProfileUpdate is a sparse edit: nil fields are left untouched.
type ProfileUpdate struct {
	FirstName     *string `json:"firstName"`
	LastName      *string `json:"lastName"`
	DateOfBirth   *string `json:"dateOfBirth"`
	Gender        *string `json:"gender"`
	MaritalStatus *string `json:"maritalStatus"`
	Religion      *string `json:"religion"`
	Caste         *string `json:"caste"`
	MotherTongue  *string `json:"motherTongue"`
	HeightCm      *int    `json:"heightCm"`
	Education     *string `json:"education"`
	Occupation    *string `json:"occupation"`
	AnnualIncome  *string `json:"annualIncome"`
	City          *string `json:"city"`
	State         *string `json:"state"`
	Country       *string `json:"country"`
	Diet          *string `json:"diet"`
	Smoking       *string `json:"smoking"`
	Drinking      *string `json:"drinking"`
	About         *string `json:"about"`
}

// ProfileView is a profile as another member sees it.
type ProfileView struct {
	*models.Profile
	Age   int  `json:"age"`
	Liked bool `json:"liked"`
}

type ProfileService struct {
	profiles ProfileStore
	likes    LikeStore
	photos   storage.PhotoStore
	now      func() time.Time
}

func NewProfileService(profiles ProfileStore, likes LikeStore, photos storage.PhotoStore) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		likes:    likes,
		photos:   photos,
		now:      time.Now,
	}
}

func (s *ProfileService) GetOwn(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// Update applies the non-nil fields of upd and returns the stored result.
func (s *ProfileService) Update(ctx context.Context, userID string, upd ProfileUpdate) (*models.Profile, error) {
	fields, err := s.updateColumns(upd)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.Update(ctx, userID, fields); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		logger.Log.Error("Failed to update profile",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, storeError(err)
	}

	logger.Log.Info("Profile updated",
		zap.String("user_id", userID),
		zap.Int("fields", len(fields)),
	)

	return s.GetOwn(ctx, userID)
}

// updateColumns validates upd and turns it into the column map passed to gorm.
func (s *ProfileService) updateColumns(upd ProfileUpdate) (map[string]interface{}, error) {
	fields := make(map[string]interface{})

	text := func(column string, v *string, max int, required bool) error {
		if v == nil {
			return nil
		}
		val := strings.TrimSpace(*v)
		if required && val == "" {
			return apperr.Validation(column + " cannot be empty")
		}
		if max > 0 && len(val) > max {
			return apperr.Validation(column + " is too long")
		}
		fields[column] = val
		return nil
	}

	checks := []error{
		text("first_name", upd.FirstName, 50, true),
		text("last_name", upd.LastName, 50, false),
		text("religion", upd.Religion, 50, false),
		text("caste", upd.Caste, 50, false),
		text("mother_tongue", upd.MotherTongue, 50, false),
		text("education", upd.Education, 100, false),
		text("occupation", upd.Occupation, 100, false),
		text("annual_income", upd.AnnualIncome, 50, false),
		text("city", upd.City, 100, false),
		text("state", upd.State, 100, false),
		text("country", upd.Country, 100, false),
		text("about", upd.About, 2000, false),
	}
	for _, err := range checks {
		if err != nil {
			return nil, err
		}
	}

	if upd.DateOfBirth != nil {
		dob, err := time.Parse(dateLayout, *upd.DateOfBirth)
		if err != nil {
			return nil, apperr.Validation("date of birth must be YYYY-MM-DD")
		}
		if !isAtLeastAge(dob, minimumAge, s.now()) {
			return nil, apperr.Validation("you must be at least 18 years old")
		}
		fields["date_of_birth"] = dob
	}
	if upd.Gender != nil {
		g := models.Gender(*upd.Gender)
		if !g.Valid() {
			return nil, apperr.Validation("gender must be male, female or other")
		}
		fields["gender"] = g
	}
	if upd.MaritalStatus != nil {
		m := models.MaritalStatus(*upd.MaritalStatus)
		if !m.Valid() {
			return nil, apperr.Validation("invalid marital status")
		}
		fields["marital_status"] = m
	}
	if upd.Diet != nil {
		d := models.Diet(*upd.Diet)
		if !d.Valid() {
			return nil, apperr.Validation("invalid diet")
		}
		fields["diet"] = d
	}
	if upd.Smoking != nil {
		h := models.Habit(*upd.Smoking)
		if !h.Valid() {
			return nil, apperr.Validation("smoking must be no, occasionally or yes")
		}
		fields["smoking"] = h
	}
	if upd.Drinking != nil {
		h := models.Habit(*upd.Drinking)
		if !h.Valid() {
			return nil, apperr.Validation("drinking must be no, occasionally or yes")
		}
		fields["drinking"] = h
	}
	if upd.HeightCm != nil {
		if *upd.HeightCm < minHeightCm || *upd.HeightCm > maxHeightCm {
			return nil, apperr.Validation("height must be between 90 and 250 cm")
		}
		fields["height_cm"] = *upd.HeightCm
	}

	return fields, nil
}

// GetPublic returns another member's profile with the viewer's like state.
func (s *ProfileService) GetPublic(ctx context.Context, viewerID, userID string) (*ProfileView, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("profile id is required")
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	liked := false
	if viewerID != userID {
		if liked, err = s.likes.Exists(ctx, viewerID, userID); err != nil {
			return nil, storeError(err)
		}
	}

	return &ProfileView{Profile: profile, Age: profile.Age(s.now()), Liked: liked}, nil
}

// Discover lists profiles the viewer has not liked yet, newest first.
func (s *ProfileService) Discover(ctx context.Context, viewerID, gender string, limit, offset int) ([]ProfileView, error) {
	filter := repository.DiscoverFilter{Limit: limit, Offset: offset}
	if gender != "" {
		filter.Gender = models.Gender(gender)
		if !filter.Gender.Valid() {
			return nil, apperr.Validation("gender must be male, female or other")
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultDiscoverLimit
	}
	if filter.Limit > maxDiscoverLimit {
		filter.Limit = maxDiscoverLimit
	}
	if filter.Offset < 0 {
		return nil, apperr.Validation("offset cannot be negative")
	}

	profiles, err := s.profiles.Discover(ctx, viewerID, filter)
	if err != nil {
		logger.Log.Error("Failed to list profiles",
			zap.String("user_id", viewerID),
			zap.Error(err),
		)
		return nil, storeError(err)
	}

	now := s.now()
	views := make([]ProfileView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, ProfileView{Profile: p, Age: p.Age(now)})
	}
	return views, nil
}

// SetPhoto stores the uploaded image and points the profile at it.
func (s *ProfileService) SetPhoto(ctx context.Context, userID string, r io.Reader, size int64) (string, error) {
	url, err := s.photos.Save(ctx, userID, r, size)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return "", apperr.Validation("photo must be a JPEG, PNG, GIF or WebP image")
		}
		logger.Log.Error("Failed to store photo",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return "", apperr.Unavailable(err)
	}

	if err := s.profiles.Update(ctx, userID, map[string]interface{}{"photo_url": url}); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return "", ErrProfileNotFound
		}
		return "", storeError(err)
	}

	logger.Log.Info("Profile photo updated",
		zap.String("user_id", userID),
		zap.String("photo_url", url),
	)
	return url, nil
}
