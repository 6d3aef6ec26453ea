package service

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumio-edu/lumio-api/internal/models"
	"github.com/lumio-edu/lumio-api/internal/repository"
)

// SeedService provisions the demo accounts used in development and demos.
type SeedService interface {
	SeedDemoUsers(ctx context.Context) error
}

type seedService struct {
	users   repository.UserRepository
	enabled bool
	logger  zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(users repository.UserRepository, enabled bool, logger zerolog.Logger) SeedService {
	return &seedService{
		users:   users,
		enabled: enabled,
		logger:  logger.With().Str("component", "seed_service").Logger(),
	}
}

// SeedDemoUsers creates the demo accounts when they are missing. Existing
// accounts with the same email are left untouched so local edits survive
// restarts.
func (s *seedService) SeedDemoUsers(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	demos := []struct {
		name     string
		email    string
		password string
		role     string
	}{
		{"Demo Admin", DemoAdminEmail, "admin123", models.RoleAdmin},
		{"Demo Teacher", "teacher@lumio.edu", "teacher123", models.RoleTeacher},
		{"Demo Student", "student@lumio.edu", "student123", models.RoleStudent},
	}

	var created int64
	for _, demo := range demos {
		hash, err := bcrypt.GenerateFromPassword([]byte(demo.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user := models.User{
			Name:         demo.name,
			Email:        demo.email,
			PasswordHash: string(hash),
			Role:         demo.role,
		}
		inserted, err := s.users.UpsertByEmail(ctx, &user)
		if err != nil {
			return err
		}
		if inserted {
			created++
		}
	}

	s.logger.Info().Int64("created", created).Msg("demo users seeded")
	return nil
}
