package deletion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanPersonDeletion_NoDependents(t *testing.T) {
	plan := PlanPersonDeletion(PersonPlanInput{
		PersonID: "p1",
		Nodes:    []PersonNode{{ID: "p1"}},
	})

	assert.False(t, plan.HasDependents())
	assert.Equal(t, map[string]int{TypePermits: 0, TypeTasks: 0, TypeDependents: 0}, plan.Counts)
	assert.NotEmpty(t, plan.Fingerprint)
	assert.True(t, CanDelete(DeleteContext{Plan: plan}).Allowed)
}

func TestPlanPersonDeletion_CollectsSubtreeDeepestFirst(t *testing.T) {
	plan := PlanPersonDeletion(PersonPlanInput{
		PersonID: "root",
		Nodes: []PersonNode{
			{ID: "root", PermitIDs: []string{"permit-r"}, TaskIDs: []string{"task-r"}},
			{ID: "child", GuardianID: "root", PermitIDs: []string{"permit-c"}},
			{ID: "grandchild", GuardianID: "child", TaskIDs: []string{"task-g"}},
		},
	})

	require.True(t, plan.HasDependents())
	assert.Equal(t, []string{"grandchild", "child"}, plan.Dependents)
	assert.Equal(t, []string{"permit-c", "permit-r"}, plan.Permits)
	assert.Equal(t, []string{"task-g", "task-r"}, plan.Tasks)
	assert.Equal(t, 2, plan.Counts[TypeDependents])
	assert.Equal(t, 2, plan.Counts[TypePermits])
	assert.Equal(t, 2, plan.Counts[TypeTasks])
}

func TestPlanPersonDeletion_GuardianCycleTerminates(t *testing.T) {
	plan := PlanPersonDeletion(PersonPlanInput{
		PersonID: "a",
		Nodes: []PersonNode{
			{ID: "a", GuardianID: "b"},
			{ID: "b", GuardianID: "a"},
		},
	})
	assert.Equal(t, []string{"b"}, plan.Dependents)
}

func TestCanDelete(t *testing.T) {
	withDeps := PlanPersonDeletion(PersonPlanInput{
		PersonID: "p1",
		Nodes:    []PersonNode{{ID: "p1", PermitIDs: []string{"x"}}},
	})

	blocked := CanDelete(DeleteContext{Plan: withDeps})
	assert.False(t, blocked.Allowed)
	assert.Equal(t, "person p1 has 1 permits, 0 tasks and 0 dependents. Use --cascade to delete anyway", blocked.Reason)

	assert.True(t, CanDelete(DeleteContext{Plan: withDeps, Cascade: true}).Allowed)
}

func TestSamePlan_DetectsChangedDependents(t *testing.T) {
	before := PlanPersonDeletion(PersonPlanInput{PersonID: "p1", Nodes: []PersonNode{{ID: "p1", PermitIDs: []string{"x"}}}})
	same := PlanPersonDeletion(PersonPlanInput{PersonID: "p1", Nodes: []PersonNode{{ID: "p1", PermitIDs: []string{"x"}}}})
	after := PlanPersonDeletion(PersonPlanInput{PersonID: "p1", Nodes: []PersonNode{{ID: "p1", PermitIDs: []string{"x", "y"}}}})

	assert.True(t, SamePlan(before, same))
	assert.False(t, SamePlan(before, after))
	assert.False(t, SamePlan(Plan{}, Plan{}))
}

func TestPlanTaskDeletion(t *testing.T) {
	t.Run("task only", func(t *testing.T) {
		plan := PlanTaskDeletion(TaskPlanInput{TaskID: "t1", PermitID: "p1"})
		assert.False(t, plan.HasDependents())
		assert.Empty(t, plan.Permits)
	})

	t.Run("with permit", func(t *testing.T) {
		plan := PlanTaskDeletion(TaskPlanInput{TaskID: "t1", PermitID: "p1", IncludePermit: true, OtherTaskIDs: []string{"t3", "t2"}})
		assert.Equal(t, []string{"p1"}, plan.Permits)
		assert.Equal(t, []string{"t2", "t3"}, plan.UnlinkedTasks)
		assert.Equal(t, 1, plan.Counts[TypePermits])
	})

	t.Run("include permit without link", func(t *testing.T) {
		plan := PlanTaskDeletion(TaskPlanInput{TaskID: "t1", IncludePermit: true})
		assert.Empty(t, plan.Permits)
	})
}
