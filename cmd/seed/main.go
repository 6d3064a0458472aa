package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/myshagun/backend/internal/config"
	"github.com/myshagun/backend/internal/database"
	"github.com/myshagun/backend/internal/models"
	"github.com/myshagun/backend/internal/repository"
	"github.com/myshagun/backend/internal/service"
	"github.com/myshagun/backend/pkg/logger"
	"go.uber.org/zap"
)

type demoAccount struct {
	email       string
	firstName   string
	lastName    string
	dateOfBirth string
	gender      models.Gender
}

var demoAccounts = []demoAccount{
	{"ananya@demo.myshagun.app", "Ananya", "Iyer", "1996-02-11", models.GenderFemale},
	{"kabir@demo.myshagun.app", "Kabir", "Malhotra", "1993-09-23", models.GenderMale},
	{"sneha@demo.myshagun.app", "Sneha", "Kulkarni", "1998-07-04", models.GenderFemale},
	{"vikram@demo.myshagun.app", "Vikram", "Reddy", "1992-12-30", models.GenderMale},
	{"farah@demo.myshagun.app", "Farah", "Khan", "1995-05-17", models.GenderFemale},
	{"rahul@demo.myshagun.app", "Rahul", "Verma", "1994-03-08", models.GenderMale},
}

func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		// Tokens are discarded; registration only needs something to sign with.
		cfg.JWTSecret = "seed"
	}

	if err := logger.Init(true); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "Demo12345"
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	authService := service.NewAuthService(repository.NewUserRepository(db), cfg.JWTSecret, cfg.JWTExpiry)
	ctx := context.Background()

	created := 0
	for _, acc := range demoAccounts {
		user, _, err := authService.Register(ctx, service.RegisterInput{
			Email:       acc.email,
			Password:    password,
			FirstName:   acc.firstName,
			LastName:    acc.lastName,
			DateOfBirth: acc.dateOfBirth,
			Gender:      acc.gender,
		})
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			logger.Log.Info("Demo account already exists", zap.String("email", acc.email))
		case err != nil:
			logger.Log.Fatal("Failed to create demo account",
				zap.String("email", acc.email),
				zap.Error(err),
			)
		default:
			created++
			logger.Log.Info("Demo account created",
				zap.String("email", acc.email),
				zap.String("user_id", user.ID),
			)
		}
	}

	logger.Log.Info("Seeding finished",
		zap.Int("created", created),
		zap.Int("total", len(demoAccounts)),
	)
}
