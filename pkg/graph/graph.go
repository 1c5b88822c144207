// Package graph holds the dependency graph of services and internal systems.
// It is a pure data structure: services, systems and directed "depends-on"
// edges, with breadth-first traversal over the reversed edges to answer
// "who is affected when this node goes down".
package graph

import (
	"sort"
	"sync"

	"github.com/noticehub/noticehub/pkg/types"
)

// Dependent is a node reached by traversal, with its minimum hop distance
// from the origin.
type Dependent struct {
	ID   string
	Hops int
}

// Graph is the in-memory dependency graph store. Reads may run concurrently;
// mutations take the write lock and exclude traversals.
type Graph struct {
	mu         sync.RWMutex
	services   map[string]types.Service
	systems    map[string]types.System
	dependents map[string]map[string]struct{} // target -> set of direct dependents
	generation uint64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		services:   make(map[string]types.Service),
		systems:    make(map[string]types.System),
		dependents: make(map[string]map[string]struct{}),
	}
}

// AddService registers a service. Re-adding an existing ID replaces the
// display data and is not an error.
func (g *Graph) AddService(s types.Service) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.services[s.ID] = s
	g.generation++
}

// AddSystem registers an internal system. Idempotent like AddService.
func (g *Graph) AddSystem(s types.System) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.systems[s.ID] = s
	g.generation++
}

// AddDependency records that system `from` depends on `to` (a service or
// another system). Both ends must already be registered. Re-adding an
// existing edge is a no-op.
func (g *Graph) AddDependency(from, to string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.systems[from]; !ok {
		return &types.UnknownNodeError{ID: from}
	}
	if !g.knownLocked(to) {
		return &types.UnknownNodeError{ID: to}
	}
	deps, ok := g.dependents[to]
	if !ok {
		deps = make(map[string]struct{})
		g.dependents[to] = deps
	}
	if _, ok := deps[from]; ok {
		return nil
	}
	deps[from] = struct{}{}
	g.generation++
	return nil
}

// RemoveDependency drops the edge if present. Unknown edges are a no-op.
func (g *Graph) RemoveDependency(from, to string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	deps, ok := g.dependents[to]
	if !ok {
		return
	}
	if _, ok := deps[from]; !ok {
		return
	}
	delete(deps, from)
	g.generation++
}

// RemoveService drops a service and every edge pointing at it. The caller
// is responsible for refusing removal while an ongoing event references the
// service.
func (g *Graph) RemoveService(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.services[id]; !ok {
		return
	}
	delete(g.services, id)
	delete(g.dependents, id)
	g.generation++
}

// RemoveSystem drops a system and every edge from or to it.
func (g *Graph) RemoveSystem(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.systems[id]; !ok {
		return
	}
	delete(g.systems, id)
	delete(g.dependents, id)
	for _, deps := range g.dependents {
		delete(deps, id)
	}
	g.generation++
}

// HasService reports whether a service with the given ID is registered.
func (g *Graph) HasService(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.services[id]
	return ok
}

// HasSystem reports whether a system with the given ID is registered.
func (g *Graph) HasSystem(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.systems[id]
	return ok
}

// Generation is a counter bumped on every mutation. Callers caching derived
// data compare generations to detect staleness.
func (g *Graph) Generation() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.generation
}

// DependentsOf returns the direct dependents of a node, sorted by ID.
func (g *Graph) DependentsOf(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	deps := g.dependents[id]
	out := make([]string, 0, len(deps))
	for d := range deps {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// AllDependents walks the reversed dependency edges breadth-first from the
// given node and returns every transitively affected node with its minimum
// hop distance, ordered by (hops, ID). A node is expanded at most once, so
// cyclic graphs terminate and shared targets report the shortest path.
// maxDepth <= 0 means unbounded; traversal is always capped by the total
// node count as a safety valve.
func (g *Graph) AllDependents(id string, maxDepth int) ([]Dependent, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.knownLocked(id) {
		return nil, &types.UnknownNodeError{ID: id}
	}

	limit := len(g.services) + len(g.systems)
	if maxDepth <= 0 || maxDepth > limit {
		maxDepth = limit
	}

	visited := map[string]struct{}{id: {}}
	frontier := []string{id}
	var out []Dependent

	for hops := 1; hops <= maxDepth && len(frontier) > 0; hops++ {
		var next []string
		for _, node := range frontier {
			for dep := range g.dependents[node] {
				if _, seen := visited[dep]; seen {
					continue
				}
				visited[dep] = struct{}{}
				out = append(out, Dependent{ID: dep, Hops: hops})
				next = append(next, dep)
			}
		}
		frontier = next
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Hops != out[j].Hops {
			return out[i].Hops < out[j].Hops
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (g *Graph) knownLocked(id string) bool {
	if _, ok := g.services[id]; ok {
		return true
	}
	_, ok := g.systems[id]
	return ok
}
