package app

import (
	"context"
	"errors"
	"strings"

	"github.com/example/permitdesk/internal/core/deletion"
	"github.com/example/permitdesk/internal/core/effects"
	"github.com/example/permitdesk/internal/core/task"
	"github.com/example/permitdesk/internal/domainerr"
	"github.com/example/permitdesk/internal/ports/primary"
	"github.com/example/permitdesk/internal/ports/secondary"
)

// TaskServiceImpl implements the TaskService interface.
type TaskServiceImpl struct {
	base
	tx         secondary.Transactor
	taskRepo   secondary.TaskRepository
	personRepo secondary.PersonRepository
	permitRepo secondary.PermitRepository
}

// NewTaskService creates a new TaskService with injected dependencies.
func NewTaskService(
	tx secondary.Transactor,
	taskRepo secondary.TaskRepository,
	personRepo secondary.PersonRepository,
	permitRepo secondary.PermitRepository,
	opts ...Option,
) *TaskServiceImpl {
	return &TaskServiceImpl{
		base:       newBase(opts),
		tx:         tx,
		taskRepo:   taskRepo,
		personRepo: personRepo,
		permitRepo: permitRepo,
	}
}

// CreateTask creates a new task.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, req primary.CreateTaskRequest) (*primary.Task, error) {
	actor := s.actor(ctx, "")

	var record *secondary.TaskRecord
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		guardCtx := task.CreateTaskContext{
			Title:    req.Title,
			PersonID: req.PersonID,
			PermitID: req.PermitID,
		}
		if req.PersonID != "" {
			found, err := exists(s.personRepo.GetByID(ctx, req.PersonID))
			if err != nil {
				return err
			}
			guardCtx.PersonExists = found
		}
		if req.PermitID != "" {
			found, err := exists(s.permitRepo.GetByID(ctx, req.PermitID))
			if err != nil {
				return err
			}
			guardCtx.PermitExists = found
		}

		if guard := task.CanCreateTask(guardCtx); !guard.Allowed {
			switch guard.Field {
			case "personId":
				return domainerr.NotFound("person", req.PersonID)
			case "permitId":
				return domainerr.NotFound("permit", req.PermitID)
			}
			return domainerr.Validation(guard.Field, guard.Reason)
		}

		now := s.clock()
		record = &secondary.TaskRecord{
			ID:        s.newID(),
			Title:     strings.TrimSpace(req.Title),
			PersonID:  req.PersonID,
			PermitID:  req.PermitID,
			Status:    task.StatusOpen,
			DueDate:   req.DueDate,
			CreatedBy: actor,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return s.taskRepo.Create(ctx, record)
	})
	if err != nil {
		return nil, translate(err, "task", req.Title)
	}

	s.logger.Info("task created", "task", record.ID, "person", record.PersonID, "permit", record.PermitID)
	s.emit(ctx, effects.Invalidate("task", record.ID, ""))
	return recordToTask(record), nil
}

// GetTask retrieves a task by ID.
func (s *TaskServiceImpl) GetTask(ctx context.Context, taskID string) (*primary.Task, error) {
	record, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, translate(err, "task", taskID)
	}
	return recordToTask(record), nil
}

// ListTasks lists tasks with optional filters.
func (s *TaskServiceImpl) ListTasks(ctx context.Context, filters primary.TaskFilters) ([]*primary.Task, error) {
	records, err := s.taskRepo.List(ctx, secondary.TaskFilters{
		PersonID: filters.PersonID,
		PermitID: filters.PermitID,
		Status:   filters.Status,
	})
	if err != nil {
		return nil, translate(err, "tasks", "")
	}
	tasks := make([]*primary.Task, len(records))
	for i, r := range records {
		tasks[i] = recordToTask(r)
	}
	return tasks, nil
}

// CompleteTask marks an open task as done.
func (s *TaskServiceImpl) CompleteTask(ctx context.Context, taskID string) (*primary.Task, error) {
	var record *secondary.TaskRecord
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.taskRepo.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if guard := task.CanCompleteTask(task.CompleteTaskContext{TaskID: taskID, Status: current.Status}); !guard.Allowed {
			return &domainerr.IllegalTransitionError{Current: current.Status, Requested: task.StatusDone, Reason: guard.Reason}
		}
		if err := s.taskRepo.Complete(ctx, taskID, s.clock()); err != nil {
			return err
		}
		record, err = s.taskRepo.GetByID(ctx, taskID)
		return err
	})
	if err != nil {
		return nil, translate(err, "task", taskID)
	}

	s.emit(ctx, effects.Invalidate("task", record.ID, ""))
	return recordToTask(record), nil
}

// PlanDeletion describes what deleting the task, and optionally its permit, removes.
func (s *TaskServiceImpl) PlanDeletion(ctx context.Context, taskID string, includePermit bool) (*primary.DeletionPlan, error) {
	var plan deletion.Plan
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		plan, err = s.plan(ctx, taskID, includePermit)
		return err
	})
	if err != nil {
		return nil, translate(err, "task", taskID)
	}
	return planToDTO(plan), nil
}

// CommitDeletion executes a confirmed plan. Other tasks linked to a deleted
// permit listed in the plan survive with the link cleared.
func (s *TaskServiceImpl) CommitDeletion(ctx context.Context, confirmed *primary.DeletionPlan) error {
	if confirmed == nil || confirmed.RootID == "" {
		return domainerr.Validation("plan", "required")
	}
	if confirmed.Entity != "task" {
		return domainerr.Validation("plan", "not a task deletion plan")
	}

	var plan deletion.Plan
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		plan, err = s.plan(ctx, confirmed.RootID, len(confirmed.Permits) > 0)
		if err != nil {
			return err
		}
		if !deletion.SamePlan(dtoToPlan(confirmed), plan) {
			return domainerr.Conflict("task %s or its permit changed since the plan was made", confirmed.RootID)
		}
		return s.execute(ctx, plan)
	})
	if err != nil {
		return translate(err, "task", confirmed.RootID)
	}

	s.afterDelete(ctx, plan)
	return nil
}

// DeleteTask deletes a task, and its linked permit when deletePermit is set.
// Other tasks still linked to that permit block the delete.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, taskID string, deletePermit bool) (*primary.DeletionPlan, error) {
	var plan deletion.Plan
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		plan, err = s.plan(ctx, taskID, deletePermit)
		if err != nil {
			return err
		}
		if len(plan.UnlinkedTasks) > 0 {
			return &domainerr.HasDependentsError{
				Entity: "permit",
				ID:     plan.Permits[0],
				Counts: map[string]int{deletion.TypeTasks: len(plan.UnlinkedTasks)},
			}
		}
		return s.execute(ctx, plan)
	})
	if err != nil {
		return nil, translate(err, "task", taskID)
	}

	s.afterDelete(ctx, plan)
	return planToDTO(plan), nil
}

func (s *TaskServiceImpl) plan(ctx context.Context, taskID string, includePermit bool) (deletion.Plan, error) {
	record, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return deletion.Plan{}, err
	}

	input := deletion.TaskPlanInput{TaskID: taskID, PermitID: record.PermitID, IncludePermit: includePermit}
	if includePermit && record.PermitID != "" {
		linked, err := s.taskRepo.List(ctx, secondary.TaskFilters{PermitID: record.PermitID})
		if err != nil {
			return deletion.Plan{}, err
		}
		for _, t := range linked {
			if t.ID != taskID {
				input.OtherTaskIDs = append(input.OtherTaskIDs, t.ID)
			}
		}
	}
	return deletion.PlanTaskDeletion(input), nil
}

// execute deletes the task before its permit so the FK never has to clear it.
func (s *TaskServiceImpl) execute(ctx context.Context, plan deletion.Plan) error {
	if err := s.taskRepo.Delete(ctx, plan.RootID); err != nil {
		return err
	}
	for _, id := range plan.Permits {
		if err := s.permitRepo.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *TaskServiceImpl) afterDelete(ctx context.Context, plan deletion.Plan) {
	s.metrics.AddDeletions("task", 1)
	s.metrics.AddDeletions("permit", len(plan.Permits))
	s.logger.Info("task deleted", "task", plan.RootID, "permits", len(plan.Permits), "unlinked", len(plan.UnlinkedTasks))

	effs := []effects.Effect{effects.Invalidate("task", plan.RootID, "")}
	for _, id := range plan.Permits {
		effs = append(effs, effects.Invalidate("permit", id, ""))
	}
	for _, id := range plan.UnlinkedTasks {
		effs = append(effs, effects.Invalidate("task", id, ""))
	}
	s.emit(ctx, effects.CompositeEffect{Effects: effs})
}

// exists turns a repository lookup into a presence check.
func exists[T any](_ T, err error) (bool, error) {
	if errors.Is(err, secondary.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func recordToTask(r *secondary.TaskRecord) *primary.Task {
	return &primary.Task{
		ID:          r.ID,
		Title:       r.Title,
		PersonID:    r.PersonID,
		PermitID:    r.PermitID,
		Status:      r.Status,
		DueDate:     r.DueDate,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		CompletedAt: r.CompletedAt,
	}
}
