package app

import (
	"context"
	"strings"

	"github.com/example/permitdesk/internal/core/deletion"
	"github.com/example/permitdesk/internal/core/effects"
	"github.com/example/permitdesk/internal/core/ticket"
	"github.com/example/permitdesk/internal/domainerr"
	"github.com/example/permitdesk/internal/ports/primary"
	"github.com/example/permitdesk/internal/ports/secondary"
)

// PersonServiceImpl implements the PersonService interface.
type PersonServiceImpl struct {
	base
	tx         secondary.Transactor
	personRepo secondary.PersonRepository
	permitRepo secondary.PermitRepository
	taskRepo   secondary.TaskRepository
	tickets    *TicketAllocator
}

// NewPersonService creates a new PersonService with injected dependencies.
func NewPersonService(
	tx secondary.Transactor,
	personRepo secondary.PersonRepository,
	permitRepo secondary.PermitRepository,
	taskRepo secondary.TaskRepository,
	tickets *TicketAllocator,
	opts ...Option,
) *PersonServiceImpl {
	return &PersonServiceImpl{
		base:       newBase(opts),
		tx:         tx,
		personRepo: personRepo,
		permitRepo: permitRepo,
		taskRepo:   taskRepo,
		tickets:    tickets,
	}
}

// CreatePerson creates a person with a FOR ticket.
func (s *PersonServiceImpl) CreatePerson(ctx context.Context, req primary.CreatePersonRequest) (*primary.Person, error) {
	verr := &domainerr.ValidationError{}
	if strings.TrimSpace(req.FirstName) == "" {
		verr.Add("firstName", "required")
	}
	if req.Relationship != "" && req.GuardianID == "" {
		verr.Add("relationship", "requires a guardian")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	actor := s.actor(ctx, "")

	var record *secondary.PersonRecord
	err := s.withRetry(ctx, s.tx, "create person", func(ctx context.Context) error {
		if req.GuardianID != "" {
			if _, err := s.personRepo.GetByID(ctx, req.GuardianID); err != nil {
				return translate(err, "person", req.GuardianID)
			}
		}

		number, err := s.tickets.Allocate(ctx, ticket.PrefixPerson)
		if err != nil {
			return err
		}

		now := s.clock()
		record = &secondary.PersonRecord{
			ID:             s.newID(),
			TicketNumber:   number,
			FirstName:      strings.TrimSpace(req.FirstName),
			LastName:       strings.TrimSpace(req.LastName),
			Nationality:    req.Nationality,
			PassportNumber: req.PassportNumber,
			GuardianID:     req.GuardianID,
			Relationship:   req.Relationship,
			CreatedBy:      actor,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		return s.personRepo.Create(ctx, record)
	})
	if err != nil {
		return nil, translate(err, "person", req.FirstName)
	}

	s.logger.Info("person created", "ticket", record.TicketNumber, "guardian", record.GuardianID)
	s.emit(ctx, effects.Invalidate("person", record.ID, record.TicketNumber))

	return recordToPerson(record), nil
}

// GetPerson retrieves a person by ID.
func (s *PersonServiceImpl) GetPerson(ctx context.Context, personID string) (*primary.Person, error) {
	record, err := s.personRepo.GetByID(ctx, personID)
	if err != nil {
		return nil, translate(err, "person", personID)
	}
	return recordToPerson(record), nil
}

// ListPersons lists persons matching a free-text search.
func (s *PersonServiceImpl) ListPersons(ctx context.Context, filters primary.PersonFilters) ([]*primary.Person, error) {
	records, err := s.personRepo.List(ctx, secondary.PersonFilters{
		Search:     filters.Search,
		GuardianID: filters.GuardianID,
		Limit:      filters.Limit,
	})
	if err != nil {
		return nil, translate(err, "persons", filters.Search)
	}
	persons := make([]*primary.Person, len(records))
	for i, r := range records {
		persons[i] = recordToPerson(r)
	}
	return persons, nil
}

// PlanDeletion describes every row a cascading delete of the person would remove.
func (s *PersonServiceImpl) PlanDeletion(ctx context.Context, personID string) (*primary.DeletionPlan, error) {
	var plan deletion.Plan
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		plan, err = s.plan(ctx, personID)
		return err
	})
	if err != nil {
		return nil, translate(err, "person", personID)
	}
	return planToDTO(plan), nil
}

// CommitDeletion recomputes the plan and executes it when nothing changed since
// it was confirmed.
func (s *PersonServiceImpl) CommitDeletion(ctx context.Context, confirmed *primary.DeletionPlan) error {
	if confirmed == nil || confirmed.RootID == "" {
		return domainerr.Validation("plan", "required")
	}
	if confirmed.Entity != "person" {
		return domainerr.Validation("plan", "not a person deletion plan")
	}

	var plan deletion.Plan
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		plan, err = s.plan(ctx, confirmed.RootID)
		if err != nil {
			return err
		}
		if !deletion.SamePlan(dtoToPlan(confirmed), plan) {
			return domainerr.Conflict("dependents of person %s changed since the plan was made", confirmed.RootID)
		}
		return s.execute(ctx, plan)
	})
	if err != nil {
		return translate(err, "person", confirmed.RootID)
	}

	s.afterDelete(ctx, plan)
	return nil
}

// DeletePerson deletes a person. Without cascade, any permit, task or dependent
// person blocks the delete and nothing changes.
func (s *PersonServiceImpl) DeletePerson(ctx context.Context, personID string, cascade bool) (*primary.DeletionPlan, error) {
	var plan deletion.Plan
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		plan, err = s.plan(ctx, personID)
		if err != nil {
			return err
		}
		if guard := deletion.CanDelete(deletion.DeleteContext{Plan: plan, Cascade: cascade}); !guard.Allowed {
			return &domainerr.HasDependentsError{Entity: "person", ID: personID, Counts: plan.Counts}
		}
		return s.execute(ctx, plan)
	})
	if err != nil {
		return nil, translate(err, "person", personID)
	}

	s.afterDelete(ctx, plan)
	return planToDTO(plan), nil
}

// plan loads the guardian tree with everything each member owns.
func (s *PersonServiceImpl) plan(ctx context.Context, personID string) (deletion.Plan, error) {
	tree, err := s.personRepo.ListGuardianTree(ctx, personID)
	if err != nil {
		return deletion.Plan{}, err
	}
	if len(tree) == 0 {
		return deletion.Plan{}, domainerr.NotFound("person", personID)
	}

	ids := make([]string, len(tree))
	nodes := make(map[string]*deletion.PersonNode, len(tree))
	for i, p := range tree {
		ids[i] = p.ID
		guardian := p.GuardianID
		if p.ID == personID {
			guardian = ""
		}
		nodes[p.ID] = &deletion.PersonNode{ID: p.ID, GuardianID: guardian}
	}

	permits, err := s.permitRepo.ListOwned(ctx, ids)
	if err != nil {
		return deletion.Plan{}, err
	}
	for _, o := range permits {
		nodes[o.PersonID].PermitIDs = append(nodes[o.PersonID].PermitIDs, o.ID)
	}

	tasks, err := s.taskRepo.ListOwned(ctx, ids)
	if err != nil {
		return deletion.Plan{}, err
	}
	for _, o := range tasks {
		nodes[o.PersonID].TaskIDs = append(nodes[o.PersonID].TaskIDs, o.ID)
	}

	input := deletion.PersonPlanInput{PersonID: personID}
	for _, id := range ids {
		input.Nodes = append(input.Nodes, *nodes[id])
	}
	return deletion.PlanPersonDeletion(input), nil
}

// execute deletes tasks, permits, dependents deepest first, then the root.
func (s *PersonServiceImpl) execute(ctx context.Context, plan deletion.Plan) error {
	for _, id := range plan.Tasks {
		if err := s.taskRepo.Delete(ctx, id); err != nil {
			return err
		}
	}
	for _, id := range plan.Permits {
		if err := s.permitRepo.Delete(ctx, id); err != nil {
			return err
		}
	}
	for _, id := range plan.Dependents {
		if err := s.personRepo.Delete(ctx, id); err != nil {
			return err
		}
	}
	return s.personRepo.Delete(ctx, plan.RootID)
}

func (s *PersonServiceImpl) afterDelete(ctx context.Context, plan deletion.Plan) {
	s.metrics.AddDeletions("person", 1+len(plan.Dependents))
	s.metrics.AddDeletions("permit", len(plan.Permits))
	s.metrics.AddDeletions("task", len(plan.Tasks))

	s.logger.Info("person deleted",
		"person", plan.RootID, "dependents", len(plan.Dependents),
		"permits", len(plan.Permits), "tasks", len(plan.Tasks))

	effs := []effects.Effect{effects.Invalidate("person", plan.RootID, "")}
	for _, id := range plan.Dependents {
		effs = append(effs, effects.Invalidate("person", id, ""))
	}
	for _, id := range plan.Permits {
		effs = append(effs, effects.Invalidate("permit", id, ""))
	}
	for _, id := range plan.Tasks {
		effs = append(effs, effects.Invalidate("task", id, ""))
	}
	s.emit(ctx, effects.CompositeEffect{Effects: effs})
}

func planToDTO(p deletion.Plan) *primary.DeletionPlan {
	counts := make(map[string]int, len(p.Counts))
	for k, v := range p.Counts {
		counts[k] = v
	}
	return &primary.DeletionPlan{
		Entity:        p.Entity,
		RootID:        p.RootID,
		Dependents:    p.Dependents,
		Permits:       p.Permits,
		Tasks:         p.Tasks,
		UnlinkedTasks: p.UnlinkedTasks,
		Counts:        counts,
		Fingerprint:   p.Fingerprint,
	}
}

func dtoToPlan(p *primary.DeletionPlan) deletion.Plan {
	return deletion.Plan{
		Entity:        p.Entity,
		RootID:        p.RootID,
		Dependents:    p.Dependents,
		Permits:       p.Permits,
		Tasks:         p.Tasks,
		UnlinkedTasks: p.UnlinkedTasks,
		Counts:        p.Counts,
		Fingerprint:   p.Fingerprint,
	}
}

func recordToPerson(r *secondary.PersonRecord) *primary.Person {
	return &primary.Person{
		ID:             r.ID,
		TicketNumber:   r.TicketNumber,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Nationality:    r.Nationality,
		PassportNumber: r.PassportNumber,
		GuardianID:     r.GuardianID,
		Relationship:   r.Relationship,
		CreatedBy:      r.CreatedBy,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
