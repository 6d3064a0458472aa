package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/myshagun/backend/internal/models"
	"github.com/myshagun/backend/internal/repository"
	"github.com/myshagun/backend/internal/utils"
	"github.com/myshagun/backend/pkg/apperr"
	"github.com/myshagun/backend/pkg/logger"
	"go.uber.org/zap"
)

const (
	minimumAge = 18
	dateLayout = "2006-01-02"
)

var (
	ErrEmailAlreadyExists = apperr.AlreadyExists("email already registered")
	ErrInvalidCredentials = apperr.Unauthorized("invalid email or password")

	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// RegisterInput is everything needed to open an account and its profile.
type RegisterInput struct {
	Email       string
	Password    string
	Phone       string
	FirstName   string
	LastName    string
	DateOfBirth string
	Gender      models.Gender
}

type AuthService struct {
	users         UserStore
	jwtSecret     string
	jwtExpiration time.Duration
	now           func() time.Time
}

func NewAuthService(users UserStore, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		users:         users,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		now:           time.Now,
	}
}

// TokenTTL is how long issued tokens stay valid.
func (s *AuthService) TokenTTL() time.Duration {
	return s.jwtExpiration
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	start := time.Now()
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	logger.Log.Debug("Processing user registration", zap.String("email", in.Email))

	dob, err := s.validateRegisterInput(in)
	if err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("email", in.Email),
			zap.Error(err),
		)
		return nil, "", err
	}

	existing, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		logger.Log.Error("Failed to check email existence",
			zap.String("email", in.Email),
			zap.Error(err),
		)
		return nil, "", storeError(err)
	}
	if existing != nil {
		logger.Log.Warn("Email already exists", zap.String("email", in.Email))
		return nil, "", ErrEmailAlreadyExists
	}

	hashStart := time.Now()
	hashedPassword, err := utils.HashPassword(in.Password)
	if err != nil {
		logger.Log.Error("Failed to hash password", zap.Error(err))
		return nil, "", err
	}
	hashDuration := time.Since(hashStart)

	user := &models.User{
		Email:        in.Email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hashedPassword,
	}
	profile := &models.Profile{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DateOfBirth: dob,
		Gender:      in.Gender,
	}

	if err := s.createAccount(ctx, user, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// Lost a race with a concurrent registration for the same email.
			return nil, "", ErrEmailAlreadyExists
		}
		logger.Log.Error("Failed to create user in database",
			zap.String("email", in.Email),
			zap.Error(err),
		)
		return nil, "", storeError(err)
	}
	user.Profile = profile

	token, err := utils.GenerateToken(user.ID, user.Email, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User registered successfully",
		zap.String("user_id", user.ID),
		zap.String("email", in.Email),
		zap.Duration("hash_duration", hashDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, token, nil
}

// createAccount assigns the shared id before the insert so the profile row can
// reference its user inside the same transaction.
func (s *AuthService) createAccount(ctx context.Context, user *models.User, profile *models.Profile) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	profile.UserID = user.ID
	return s.users.CreateWithProfile(ctx, user, profile)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	start := time.Now()
	email = strings.ToLower(strings.TrimSpace(email))

	logger.Log.Debug("Processing user login", zap.String("email", email))

	if email == "" || password == "" {
		return nil, "", apperr.Validation("email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		logger.Log.Error("Failed to get user by email",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", storeError(err)
	}
	if user == nil {
		logger.Log.Warn("Login failed: user not found", zap.String("email", email))
		return nil, "", ErrInvalidCredentials
	}

	verifyStart := time.Now()
	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return nil, "", err
	}
	verifyDuration := time.Since(verifyStart)

	if !valid {
		logger.Log.Warn("Login failed: invalid password",
			zap.String("user_id", user.ID),
		)
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID, user.Email, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User logged in successfully",
		zap.String("user_id", user.ID),
		zap.Duration("password_verify_duration", verifyDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, token, nil
}

func (s *AuthService) validateRegisterInput(in RegisterInput) (time.Time, error) {
	if !emailRegex.MatchString(in.Email) {
		return time.Time{}, apperr.Validation("invalid email format")
	}
	if len(in.Email) > 100 {
		return time.Time{}, apperr.Validation("email too long")
	}

	if len(in.Password) < 8 {
		return time.Time{}, apperr.Validation("password must be at least 8 characters")
	}
	if len(in.Password) > 128 {
		return time.Time{}, apperr.Validation("password too long")
	}

	if in.FirstName == "" {
		return time.Time{}, apperr.Validation("first name is required")
	}
	if len(in.FirstName) > 50 || len(in.LastName) > 50 {
		return time.Time{}, apperr.Validation("name must be at most 50 characters")
	}
	if len(in.Phone) > 20 {
		return time.Time{}, apperr.Validation("phone must be at most 20 characters")
	}

	if !in.Gender.Valid() {
		return time.Time{}, apperr.Validation("gender must be male, female or other")
	}

	dob, err := time.Parse(dateLayout, in.DateOfBirth)
	if err != nil {
		return time.Time{}, apperr.Validation("date of birth must be YYYY-MM-DD")
	}
	if !isAtLeastAge(dob, minimumAge, s.now()) {
		return time.Time{}, apperr.Validation("you must be at least 18 years old")
	}

	return dob, nil
}

// isAtLeastAge reports whether someone born on dob has turned age by now.
func isAtLeastAge(dob time.Time, age int, now time.Time) bool {
	p := models.Profile{DateOfBirth: dob}
	return p.Age(now) >= age
}
