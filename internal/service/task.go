package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/taskvault/taskvault/pkg/errors"
	"github.com/taskvault/taskvault/pkg/pagination"

	"github.com/taskvault/taskvault/internal/cache"
	"github.com/taskvault/taskvault/internal/domain"
	"github.com/taskvault/taskvault/internal/event"
	"github.com/taskvault/taskvault/internal/repository"
)

// ListCache is the task listing cache used by the service. Get reports a
// miss for any cache trouble; Set and Invalidate errors are logged and
// swallowed by the caller.
type ListCache interface {
	Get(ctx context.Context, key string) (*cache.ListResult, bool)
	Set(ctx context.Context, userID, key string, result *cache.ListResult) error
	Invalidate(ctx context.Context, userID string) error
}

// EventPublisher delivers task domain events to interested listeners.
type EventPublisher interface {
	Publish(ctx context.Context, evt event.TaskEvent)
}

// ExternalClient is the HTTP client used to fetch the external task source.
type ExternalClient interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// TaskService implements the business logic for task operations.
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	cache    ListCache
	events   EventPublisher
	external ExternalClient
	extURL   string
	logger   *slog.Logger
}

// NewTaskService creates a new task service. external and extURL configure
// the import source.
func NewTaskService(
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	listCache ListCache,
	events EventPublisher,
	external ExternalClient,
	extURL string,
	logger *slog.Logger,
) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		cache:    listCache,
		events:   events,
		external: external,
		extURL:   extURL,
		logger:   logger,
	}
}

// CreateTaskInput holds the parameters for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    domain.TaskPriority
}

// UpdateTaskInput holds the parameters for updating a task. The completion
// flag is the only mutable field; nil leaves it unchanged.
type UpdateTaskInput struct {
	Completed *bool
}

// ImportResult summarizes an external import run.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// List returns one page of the user's tasks, read through the cache. A hit
// returns the stored envelope verbatim; a miss queries the store and caches
// the assembled envelope.
func (s *TaskService) List(ctx context.Context, userID string, params pagination.Params, filter repository.TaskFilter) (*cache.ListResult, error) {
	if filter.Priority != nil && !filter.Priority.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid priority %q", *filter.Priority))
	}

	key := cache.Key(userID, params.Page, params.Limit, filter)
	if result, ok := s.cache.Get(ctx, key); ok {
		return result, nil
	}

	filter.Offset = params.Offset
	filter.Limit = params.Limit

	tasks, total, err := s.taskRepo.ListByUserID(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	result := pagination.NewResult(tasks, total, params)
	if err := s.cache.Set(ctx, userID, key, &result); err != nil {
		s.logger.WarnContext(ctx, "failed to cache task listing",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	return &result, nil
}

// Get returns a task owned by the user. A task owned by someone else is
// indistinguishable from a missing one.
func (s *TaskService) Get(ctx context.Context, id, userID string) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	if task.UserID != userID {
		return nil, apperrors.NotFound("task", id)
	}

	return task, nil
}

// Create persists a new task for the user, drops the user's cached listings,
// and emits a TASK_CREATED event.
func (s *TaskService) Create(ctx context.Context, userID string, input CreateTaskInput) (*domain.Task, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid priority %q", priority))
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Completed:   false,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.invalidateListings(ctx, userID)
	s.events.Publish(ctx, event.TaskCreated(task))

	s.logger.InfoContext(ctx, "task created",
		slog.String("task_id", task.ID),
		slog.String("user_id", userID),
	)

	return task, nil
}

// Update sets the completion flag on a task owned by the user. Title,
// description, and priority are immutable after creation. A TASK_COMPLETED
// event is emitted only when this update flips the task from open to
// completed.
func (s *TaskService) Update(ctx context.Context, id, userID string, input UpdateTaskInput) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task for update: %w", err)
	}

	if task.UserID != userID {
		return nil, apperrors.NotFound("task", id)
	}

	wasCompleted := task.Completed

	if input.Completed != nil {
		task.Completed = *input.Completed
	}

	task.UpdatedAt = time.Now().UTC()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.invalidateListings(ctx, userID)

	if !wasCompleted && task.Completed {
		s.events.Publish(ctx, event.TaskCompleted(task))
	}

	s.logger.InfoContext(ctx, "task updated",
		slog.String("task_id", task.ID),
		slog.String("user_id", userID),
	)

	return task, nil
}

// Delete removes a task. An admin may delete any task; everyone else only
// their own. The owner's cached listings are dropped either way.
func (s *TaskService) Delete(ctx context.Context, id, userID string, roles []string) error {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get task for delete: %w", err)
	}

	isAdmin := false
	for _, role := range roles {
		if role == domain.RoleAdmin {
			isAdmin = true
			break
		}
	}

	if !isAdmin && task.UserID != userID {
		return apperrors.NotFound("task", id)
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.invalidateListings(ctx, task.UserID)

	s.logger.InfoContext(ctx, "task deleted",
		slog.String("task_id", task.ID),
		slog.String("user_id", userID),
		slog.Bool("admin", isAdmin),
	)

	return nil
}

// externalTodo is one record of the external task source.
type externalTodo struct {
	UserID    int    `json:"userId"`
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// ImportExternal fetches the external task source and persists each record
// for the matching local user. Records whose title already exists, or whose
// external user has no local counterpart, are skipped. Only a failed fetch
// fails the call; per-record trouble is counted as skipped.
func (s *TaskService) ImportExternal(ctx context.Context) (*ImportResult, error) {
	resp, err := s.external.Get(ctx, s.extURL)
	if err != nil {
		return nil, apperrors.Upstream("fetch external tasks", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Upstream(fmt.Sprintf("external source returned status %d", resp.StatusCode), nil)
	}

	var todos []externalTodo
	if err := json.NewDecoder(resp.Body).Decode(&todos); err != nil {
		return nil, apperrors.Upstream("decode external tasks", err)
	}

	result := &ImportResult{}

	// External user ids map onto seeded usernames: user 3 is "user3".
	// Lookups are memoized for the run; nil marks a known-missing user.
	users := make(map[int]*domain.User)
	touched := make(map[string]struct{})

	for _, todo := range todos {
		user, ok := users[todo.UserID]
		if !ok {
			user, err = s.lookupExternalUser(ctx, todo.UserID)
			if err != nil {
				return nil, err
			}
			users[todo.UserID] = user
		}
		if user == nil {
			result.Skipped++
			continue
		}

		exists, err := s.taskRepo.ExistsByTitle(ctx, todo.Title)
		if err != nil {
			return nil, fmt.Errorf("check task title: %w", err)
		}
		if exists {
			result.Skipped++
			continue
		}

		now := time.Now().UTC()
		task := &domain.Task{
			ID:          uuid.New().String(),
			UserID:      user.ID,
			Title:       todo.Title,
			Description: fmt.Sprintf("External task ID: %d", todo.ID),
			Completed:   todo.Completed,
			Priority:    domain.PriorityMedium,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := s.taskRepo.Create(ctx, task); err != nil {
			return nil, fmt.Errorf("create imported task: %w", err)
		}

		s.events.Publish(ctx, event.TaskCreated(task))
		touched[user.ID] = struct{}{}
		result.Imported++
	}

	for userID := range touched {
		s.invalidateListings(ctx, userID)
	}

	s.logger.InfoContext(ctx, "external import completed",
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
	)

	return result, nil
}

// lookupExternalUser resolves an external numeric user id to a local user.
// A missing local user returns (nil, nil) so the caller can skip the record.
func (s *TaskService) lookupExternalUser(ctx context.Context, externalID int) (*domain.User, error) {
	username := fmt.Sprintf("user%d", externalID)

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("look up user %s: %w", username, err)
	}

	return user, nil
}

// invalidateListings drops the user's cached listings, logging failures.
// Writes must not fail because the cache is unavailable.
func (s *TaskService) invalidateListings(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate task listings",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
