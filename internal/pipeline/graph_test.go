package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hacplanner/domain/archetype"
	"hacplanner/domain/core"
	"hacplanner/domain/task"
)

func indexOf(order []core.TaskID, id core.TaskID) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}

// TestExecutionOrderIsTopological verifies that for every edge (a->b), a
// appears before b in the returned order.
func TestExecutionOrderIsTopological(t *testing.T) {
	for _, arch := range []archetype.Archetype{
		archetype.ArchetypePreventabilityDetective,
		archetype.ArchetypeMetricAbstractor,
		archetype.ArchetypeExclusionAuditor,
		archetype.ArchetypeGeneralSurveillance,
	} {
		g := task.CatalogFor(arch)
		order := ExecutionOrder(g)
		require.Len(t, order, len(g.Nodes), "archetype %s", arch)

		for _, n := range g.Nodes {
			for _, dep := range n.DependsOn {
				assert.Less(t, indexOf(order, dep), indexOf(order, n.ID),
					"archetype %s: dependency %s must precede %s", arch, dep, n.ID)
			}
		}
	}
}

func TestExecutionOrderDeterministic(t *testing.T) {
	g := task.CatalogFor(archetype.ArchetypePreventabilityDetective)
	first := ExecutionOrder(g)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ExecutionOrder(g))
	}
}

// TestExecutionOrderAppendsDisconnectedNodes: nodes whose dependencies never
// resolve (cycle or missing dep) still appear exactly once at the end.
func TestExecutionOrderAppendsDisconnectedNodes(t *testing.T) {
	g := task.Graph{Nodes: []task.Node{
		{ID: "a", Type: task.TypeSignalExtraction},
		{ID: "b", Type: task.TypeCriteriaMapping, DependsOn: []core.TaskID{"a"}},
		{ID: "orphan", Type: task.TypeReviewerSynthesis, DependsOn: []core.TaskID{"does_not_exist"}},
	}}

	order := ExecutionOrder(g)
	require.Len(t, order, 3)
	assert.Equal(t, core.TaskID("orphan"), order[2])

	seen := map[core.TaskID]int{}
	for _, id := range order {
		seen[id]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "node %s appears %d times", id, n)
	}
}

func TestExecutionOrderToleratesCycle(t *testing.T) {
	g := task.Graph{Nodes: []task.Node{
		{ID: "x", Type: task.TypeSignalExtraction, DependsOn: []core.TaskID{"y"}},
		{ID: "y", Type: task.TypeCriteriaMapping, DependsOn: []core.TaskID{"x"}},
		{ID: "z", Type: task.TypeNarrativeSummary},
	}}

	order := ExecutionOrder(g)
	require.Len(t, order, 3)
	assert.Equal(t, core.TaskID("z"), order[0])
	// Cycle members are appended in declaration order.
	assert.Equal(t, core.TaskID("x"), order[1])
	assert.Equal(t, core.TaskID("y"), order[2])
}
