package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/myshagun/backend/internal/models"
	"github.com/myshagun/backend/internal/repository"
	"github.com/myshagun/backend/internal/service"
	"github.com/myshagun/backend/internal/testutil"
	"github.com/myshagun/backend/internal/utils"
	"github.com/myshagun/backend/pkg/apperr"
	"github.com/myshagun/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testJWTSecret = "test-secret-key"

type AuthServiceIntegrationTestSuite struct {
	suite.Suite
	testDB *testutil.TestDatabase
	auth   *service.AuthService
}

func (s *AuthServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.auth = service.NewAuthService(repository.NewUserRepository(s.testDB.DB), testJWTSecret, time.Hour)
}

func (s *AuthServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *AuthServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func validRegistration() service.RegisterInput {
	return service.RegisterInput{
		Email:       "Priya.Sharma@Example.com",
		Password:    "SecurePass123",
		Phone:       "+91 98765 43210",
		FirstName:   "Priya",
		LastName:    "Sharma",
		DateOfBirth: "1996-03-21",
		Gender:      models.GenderFemale,
	}
}

func (s *AuthServiceIntegrationTestSuite) TestRegister_CreatesUserAndProfile() {
	user, token, err := s.auth.Register(context.Background(), validRegistration())
	require.NoError(s.T(), err)

	assert.Equal(s.T(), "priya.sharma@example.com", user.Email)
	require.NotNil(s.T(), user.Profile)
	assert.Equal(s.T(), user.ID, user.Profile.UserID)

	claims, err := utils.ValidateToken(token, testJWTSecret)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, claims.UserID)

	var profile models.Profile
	require.NoError(s.T(), s.testDB.DB.First(&profile, "user_id = ?", user.ID).Error)
	assert.Equal(s.T(), "Priya", profile.FirstName)
	assert.Equal(s.T(), models.GenderFemale, profile.Gender)
	assert.Equal(s.T(), 1996, profile.DateOfBirth.Year())

	var stored models.User
	require.NoError(s.T(), s.testDB.DB.First(&stored, "id = ?", user.ID).Error)
	assert.NotEqual(s.T(), "SecurePass123", stored.PasswordHash)
}

func (s *AuthServiceIntegrationTestSuite) TestRegister_DuplicateEmail() {
	_, _, err := s.auth.Register(context.Background(), validRegistration())
	require.NoError(s.T(), err)

	in := validRegistration()
	in.Email = "priya.sharma@example.com"
	_, _, err = s.auth.Register(context.Background(), in)

	assert.ErrorIs(s.T(), err, service.ErrEmailAlreadyExists)
	assert.Equal(s.T(), apperr.CodeAlreadyExists, apperr.CodeOf(err))
}

func (s *AuthServiceIntegrationTestSuite) TestRegister_Validation() {
	underage := time.Now().AddDate(-17, 0, 0).Format("2006-01-02")

	testCases := []struct {
		name   string
		mutate func(in *service.RegisterInput)
	}{
		{"bad_email", func(in *service.RegisterInput) { in.Email = "not-an-email" }},
		{"short_password", func(in *service.RegisterInput) { in.Password = "short" }},
		{"missing_first_name", func(in *service.RegisterInput) { in.FirstName = "  " }},
		{"bad_gender", func(in *service.RegisterInput) { in.Gender = "unknown" }},
		{"bad_date", func(in *service.RegisterInput) { in.DateOfBirth = "21/03/1996" }},
		{"underage", func(in *service.RegisterInput) { in.DateOfBirth = underage }},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			in := validRegistration()
			tc.mutate(&in)

			_, _, err := s.auth.Register(context.Background(), in)

			assert.Equal(s.T(), apperr.CodeInvalidArgument, apperr.CodeOf(err))
		})
	}

	var users int64
	s.testDB.DB.Model(&models.User{}).Count(&users)
	assert.Equal(s.T(), int64(0), users)
}

func (s *AuthServiceIntegrationTestSuite) TestLogin() {
	registered, _, err := s.auth.Register(context.Background(), validRegistration())
	require.NoError(s.T(), err)

	user, token, err := s.auth.Login(context.Background(), " PRIYA.SHARMA@example.com ", "SecurePass123")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), registered.ID, user.ID)
	assert.NotEmpty(s.T(), token)

	_, _, err = s.auth.Login(context.Background(), "priya.sharma@example.com", "WrongPass123")
	assert.ErrorIs(s.T(), err, service.ErrInvalidCredentials)

	_, _, err = s.auth.Login(context.Background(), "nobody@example.com", "SecurePass123")
	assert.ErrorIs(s.T(), err, service.ErrInvalidCredentials)
	assert.Equal(s.T(), apperr.CodeUnauthenticated, apperr.CodeOf(err))
}

func TestAuthServiceIntegration(t *testing.T) {
	suite.Run(t, new(AuthServiceIntegrationTestSuite))
}
