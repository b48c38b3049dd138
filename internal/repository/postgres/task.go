package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/taskvault/taskvault/pkg/errors"

	"github.com/taskvault/taskvault/internal/domain"
	"github.com/taskvault/taskvault/internal/repository"
	"github.com/taskvault/taskvault/pkg/database"
)

// TaskRepository implements repository.TaskRepository using PostgreSQL.
type TaskRepository struct {
	pool database.DBTX
}

// NewTaskRepository creates a new PostgreSQL-backed task repository.
func NewTaskRepository(pool database.DBTX) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// Create inserts a new task into the database.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, title, description, completed, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.Title,
		t.Description,
		t.Completed,
		t.Priority,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `
		SELECT id, user_id, title, description, completed, priority, created_at, updated_at
		FROM tasks
		WHERE id = $1`

	var t domain.Task
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Completed,
		&t.Priority,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	return &t, nil
}

// ListByUserID returns the user's tasks matching the filter, newest first,
// plus the total count of matching rows.
func (r *TaskRepository) ListByUserID(ctx context.Context, userID string, filter repository.TaskFilter) ([]domain.Task, int, error) {
	where := `WHERE user_id = $1`
	args := []any{userID}

	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		where += fmt.Sprintf(" AND priority = $%d", len(args))
	}
	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		where += fmt.Sprintf(" AND completed = $%d", len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM tasks ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	listQuery := fmt.Sprintf(`
		SELECT id, user_id, title, description, completed, priority, created_at, updated_at
		FROM tasks
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Title,
			&t.Description,
			&t.Completed,
			&t.Priority,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan task row: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate task rows: %w", err)
	}

	if tasks == nil {
		tasks = []domain.Task{}
	}

	return tasks, total, nil
}

// ExistsByTitle reports whether any task with the given title exists.
func (r *TaskRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE title = $1)`, title).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check task title: %w", err)
	}
	return exists, nil
}

// Update modifies an existing task in the database.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	t.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET title = $1, description = $2, completed = $3, priority = $4, updated_at = $5
		WHERE id = $6`

	ct, err := r.pool.Exec(ctx, query,
		t.Title,
		t.Description,
		t.Completed,
		t.Priority,
		t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("task", t.ID)
	}

	return nil
}

// Delete removes a task from the database by its ID.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM tasks WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("task", id)
	}

	return nil
}
