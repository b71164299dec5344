// Package deletion contains pure planners and guards for destructive deletes.
// Planners turn pre-fetched dependency data into a DeletionPlan that names every
// row a commit would remove; no I/O happens here.
package deletion

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Dependent type keys used in Counts.
const (
	TypePermits    = "permits"
	TypeTasks      = "tasks"
	TypeDependents = "dependents"
)

// PersonNode is the pre-fetched dependency data for one person.
type PersonNode struct {
	ID         string
	GuardianID string
	PermitIDs  []string
	TaskIDs    []string
}

// PersonPlanInput contains pre-fetched data for a person deletion plan.
// Nodes must include the root and every person reachable through guardian links.
type PersonPlanInput struct {
	PersonID string
	Nodes    []PersonNode
}

// Plan describes exactly which rows a deletion will remove.
type Plan struct {
	Entity string
	RootID string

	// Dependents are ordered deepest first so they can be deleted in sequence.
	Dependents []string
	Permits    []string
	Tasks      []string

	// UnlinkedTasks keep existing but lose their permit link.
	UnlinkedTasks []string

	Counts      map[string]int
	Fingerprint string
}

// HasDependents reports whether anything besides the root would be removed.
func (p Plan) HasDependents() bool {
	return len(p.Dependents) > 0 || len(p.Permits) > 0 || len(p.Tasks) > 0
}

// PlanPersonDeletion builds the cascade plan for a person.
func PlanPersonDeletion(input PersonPlanInput) Plan {
	byID := make(map[string]PersonNode, len(input.Nodes))
	children := make(map[string][]string)
	for _, n := range input.Nodes {
		byID[n.ID] = n
		if n.GuardianID != "" {
			children[n.GuardianID] = append(children[n.GuardianID], n.ID)
		}
	}
	for k := range children {
		sort.Strings(children[k])
	}

	plan := Plan{Entity: "person", RootID: input.PersonID}

	// Post-order walk: dependents of dependents come before their guardian.
	visited := map[string]bool{input.PersonID: true}
	var walk func(id string)
	walk = func(id string) {
		for _, child := range children[id] {
			if visited[child] {
				continue
			}
			visited[child] = true
			walk(child)
			plan.Dependents = append(plan.Dependents, child)
		}
	}
	walk(input.PersonID)

	for _, id := range append(append([]string{}, plan.Dependents...), input.PersonID) {
		n := byID[id]
		plan.Permits = append(plan.Permits, n.PermitIDs...)
		plan.Tasks = append(plan.Tasks, n.TaskIDs...)
	}
	sort.Strings(plan.Permits)
	sort.Strings(plan.Tasks)

	plan.Counts = map[string]int{
		TypePermits:    len(plan.Permits),
		TypeTasks:      len(plan.Tasks),
		TypeDependents: len(plan.Dependents),
	}
	plan.Fingerprint = fingerprint(plan)
	return plan
}

// TaskPlanInput contains pre-fetched data for a task deletion plan.
type TaskPlanInput struct {
	TaskID        string
	PermitID      string // linked permit, empty if none
	IncludePermit bool
	// OtherTaskIDs are other tasks linked to the same permit.
	OtherTaskIDs []string
}

// PlanTaskDeletion builds the plan for a task and, optionally, its linked permit.
func PlanTaskDeletion(input TaskPlanInput) Plan {
	plan := Plan{Entity: "task", RootID: input.TaskID}
	if input.IncludePermit && input.PermitID != "" {
		plan.Permits = []string{input.PermitID}
		plan.UnlinkedTasks = append([]string{}, input.OtherTaskIDs...)
		sort.Strings(plan.UnlinkedTasks)
	}
	plan.Counts = map[string]int{
		TypePermits: len(plan.Permits),
		TypeTasks:   0,
	}
	plan.Fingerprint = fingerprint(plan)
	return plan
}

// DeleteContext provides context for deletion guards.
type DeleteContext struct {
	Plan    Plan
	Cascade bool
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// CanDelete evaluates whether a plan may be committed.
// Rule: plans with dependents require cascade.
func CanDelete(ctx DeleteContext) GuardResult {
	if ctx.Plan.HasDependents() && !ctx.Cascade {
		return GuardResult{
			Allowed: false,
			Reason: fmt.Sprintf("%s %s has %d permits, %d tasks and %d dependents. Use --cascade to delete anyway",
				ctx.Plan.Entity, ctx.Plan.RootID,
				ctx.Plan.Counts[TypePermits], ctx.Plan.Counts[TypeTasks], ctx.Plan.Counts[TypeDependents]),
		}
	}
	return GuardResult{Allowed: true}
}

// SamePlan reports whether a freshly computed plan matches a confirmed one.
func SamePlan(confirmed, current Plan) bool {
	return confirmed.Fingerprint != "" && confirmed.Fingerprint == current.Fingerprint
}

func fingerprint(p Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%s", p.Entity, p.RootID)
	for _, part := range []struct {
		tag string
		ids []string
	}{
		{"D", p.Dependents},
		{"P", p.Permits},
		{"T", p.Tasks},
		{"U", p.UnlinkedTasks},
	} {
		fmt.Fprintf(&b, "|%s:%s", part.tag, strings.Join(part.ids, ","))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
