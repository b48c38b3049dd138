package repository

import (
	"context"
	"time"

	"github.com/taskvault/taskvault/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername retrieves a user by their username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Count returns the total number of users.
	Count(ctx context.Context) (int, error)
}

// TaskFilter narrows task listings. Nil fields are not applied.
type TaskFilter struct {
	Priority  *domain.TaskPriority
	Completed *bool
	Offset    int
	Limit     int
}

// TaskRepository defines the interface for task persistence operations.
type TaskRepository interface {
	// Create inserts a new task into the store.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Task, error)

	// ListByUserID returns the user's tasks matching the filter, newest first,
	// along with the total count of matching rows before offset/limit.
	ListByUserID(ctx context.Context, userID string, filter TaskFilter) ([]domain.Task, int, error)

	// ExistsByTitle reports whether any task with the given title exists,
	// regardless of owner.
	ExistsByTitle(ctx context.Context, title string) (bool, error)

	// Update modifies an existing task in the store.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// RefreshTokenRepository defines the interface for refresh token persistence operations.
type RefreshTokenRepository interface {
	// Create stores a new refresh token.
	Create(ctx context.Context, userID, token string, expiresAt time.Time) error

	// GetByToken retrieves a refresh token record by its token string.
	GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error)

	// Revoke marks a specific refresh token as revoked.
	Revoke(ctx context.Context, token string) error

	// RevokeByUserID revokes all refresh tokens for the given user.
	RevokeByUserID(ctx context.Context, userID string) error
}
