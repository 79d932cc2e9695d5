package pipeline

import (
	"hacplanner/domain/core"
	"hacplanner/domain/task"
)

// ExecutionOrder computes a valid execution order for the graph using Kahn's
// algorithm (in-degree tracking, no recursion).
//
// The order is deterministic: ready nodes are processed in declaration order.
// Nodes never reached by in-degree-zero propagation (cycles, or dependencies
// on ids that do not exist in the graph) are still appended at the end, in
// declaration order, so execution never silently drops a task.
func ExecutionOrder(g task.Graph) []core.TaskID {
	known := make(map[core.TaskID]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		known[n.ID] = true
	}

	inDegree := make(map[core.TaskID]int, len(g.Nodes))
	dependents := make(map[core.TaskID][]core.TaskID, len(g.Nodes))
	for _, n := range g.Nodes {
		inDegree[n.ID] = 0
	}
	for _, n := range g.Nodes {
		for _, dep := range n.DependsOn {
			if !known[dep] {
				// Edge into a node outside the graph: treat as unsatisfiable
				// rather than silently satisfied, so the node falls into the
				// defensive append below.
				inDegree[n.ID]++
				continue
			}
			inDegree[n.ID]++
			dependents[dep] = append(dependents[dep], n.ID)
		}
	}

	var queue []core.TaskID
	for _, n := range g.Nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	order := make([]core.TaskID, 0, len(g.Nodes))
	placed := make(map[core.TaskID]bool, len(g.Nodes))

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		placed[id] = true

		for _, next := range dependents[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	// Stable, defensive fallback: append anything Kahn could not reach.
	for _, n := range g.Nodes {
		if !placed[n.ID] {
			order = append(order, n.ID)
		}
	}

	return order
}
