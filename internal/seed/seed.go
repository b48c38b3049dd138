// Package seed populates an empty database with the fixture accounts the
// import endpoint and local development expect.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskvault/taskvault/internal/domain"
	"github.com/taskvault/taskvault/internal/repository"
)

const bcryptCost = 12

// userCount is the number of regular fixture accounts (user1..userN). The
// usernames line up with the numeric user ids of the external import source.
const userCount = 10

// Seeder creates the fixture accounts when the user table is empty.
type Seeder struct {
	userRepo repository.UserRepository
	logger   *slog.Logger
}

// New creates a seeder.
func New(userRepo repository.UserRepository, logger *slog.Logger) *Seeder {
	return &Seeder{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Run seeds the fixture accounts. A non-empty user table makes Run a no-op so
// it is safe to invoke on every deploy.
func (s *Seeder) Run(ctx context.Context) error {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "users already present, skipping seed",
			slog.Int("count", count),
		)
		return nil
	}

	for i := 1; i <= userCount; i++ {
		username := fmt.Sprintf("user%d", i)
		if err := s.createUser(ctx, username, "password123", domain.DefaultRoles()); err != nil {
			return err
		}
	}

	if err := s.createUser(ctx, "admin", "password", []string{domain.RoleUser, domain.RoleAdmin}); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "seeded fixture accounts",
		slog.Int("users", userCount+1),
	)

	return nil
}

func (s *Seeder) createUser(ctx context.Context, username, password string, roles []string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password for %s: %w", username, err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("create seed user %s: %w", username, err)
	}

	s.logger.InfoContext(ctx, "seed user created",
		slog.String("username", username),
	)

	return nil
}
