package primary

import (
	"context"
	"time"
)

// TaskService defines the primary port for follow-up tasks.
type TaskService interface {
	// CreateTask creates a new task.
	CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error)

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, taskID string) (*Task, error)

	// ListTasks lists tasks with optional filters.
	ListTasks(ctx context.Context, filters TaskFilters) ([]*Task, error)

	// CompleteTask marks a task as done.
	CompleteTask(ctx context.Context, taskID string) (*Task, error)

	// PlanDeletion describes what deleting the task (and optionally its permit) removes.
	PlanDeletion(ctx context.Context, taskID string, includePermit bool) (*DeletionPlan, error)

	// CommitDeletion executes a confirmed task deletion plan.
	CommitDeletion(ctx context.Context, plan *DeletionPlan) error

	// DeleteTask deletes a task, and its linked permit when deletePermit is set.
	DeleteTask(ctx context.Context, taskID string, deletePermit bool) (*DeletionPlan, error)
}

// CreateTaskRequest contains parameters for creating a task.
type CreateTaskRequest struct {
	Title    string
	PersonID string // Optional
	PermitID string // Optional
	DueDate  *time.Time
}

// TaskFilters contains filter options for listing tasks.
type TaskFilters struct {
	PersonID string
	PermitID string
	Status   string
}

// Task represents a task at the port boundary.
type Task struct {
	ID          string
	Title       string
	PersonID    string
	PermitID    string
	Status      string
	DueDate     *time.Time
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}
