package supervisor

import (
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"

	"github.com/aki/armlaunch/internal/launch"
)

// Order returns the enabled entities of a plan in start order. Entities start
// after everything they depend on; independent entities keep declaration
// order. Dependencies on disabled entities are dropped.
func Order(plan *launch.Plan) ([]*launch.Entity, error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	index := make(map[string]int)
	byName := make(map[string]*launch.Entity)
	for i, e := range plan.Entities {
		if !e.Enabled {
			continue
		}
		if err := g.AddVertex(e.Name); err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", e.Name, err)
		}
		index[e.Name] = i
		byName[e.Name] = e
	}

	for _, e := range plan.Entities {
		if !e.Enabled {
			continue
		}
		for _, dep := range e.DependsOn {
			target, ok := plan.Entity(dep)
			if !ok {
				return nil, fmt.Errorf("%w: %s depends on %s", ErrUnknownDependency, e.Name, dep)
			}
			if !target.Enabled {
				continue
			}
			if err := g.AddEdge(dep, e.Name); err != nil {
				if errors.Is(err, graph.ErrEdgeCreatesCycle) {
					return nil, fmt.Errorf("dependency cycle between %s and %s: %w", dep, e.Name, err)
				}
				if errors.Is(err, graph.ErrEdgeAlreadyExists) {
					continue
				}
				return nil, fmt.Errorf("failed to add dependency %s -> %s: %w", dep, e.Name, err)
			}
		}
	}

	names, err := graph.StableTopologicalSort(g, func(a, b string) bool {
		return index[a] < index[b]
	})
	if err != nil {
		return nil, fmt.Errorf("failed to order entities: %w", err)
	}

	ordered := make([]*launch.Entity, 0, len(names))
	for _, name := range names {
		ordered = append(ordered, byName[name])
	}
	return ordered, nil
}
