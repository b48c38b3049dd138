package event

import (
	"time"

	"github.com/taskvault/taskvault/internal/domain"
)

// Event types for task domain events.
const (
	TypeTaskCreated   = "TASK_CREATED"
	TypeTaskCompleted = "TASK_COMPLETED"
)

// TaskEvent is the payload delivered to bus subscribers for both task
// event types.
type TaskEvent struct {
	Type       string    `json:"type"`
	TaskID     string    `json:"task_id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TaskCreated builds a TASK_CREATED event from a freshly persisted task.
func TaskCreated(task *domain.Task) TaskEvent {
	return TaskEvent{
		Type:       TypeTaskCreated,
		TaskID:     task.ID,
		UserID:     task.UserID,
		Title:      task.Title,
		OccurredAt: task.CreatedAt,
	}
}

// TaskCompleted builds a TASK_COMPLETED event for a task that just
// transitioned to completed.
func TaskCompleted(task *domain.Task) TaskEvent {
	return TaskEvent{
		Type:       TypeTaskCompleted,
		TaskID:     task.ID,
		UserID:     task.UserID,
		Title:      task.Title,
		OccurredAt: task.UpdatedAt,
	}
}
