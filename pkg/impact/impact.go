// Package impact derives the set of internal systems affected by a downtime
// event. Severity decays with hop distance through the dependency graph, so
// a system depending directly on the failed service always ranks at least as
// severe as one affected only transitively.
package impact

import (
	"sync"

	"github.com/noticehub/noticehub/pkg/graph"
	"github.com/noticehub/noticehub/pkg/types"
)

// Engine computes impact results and caches them per ongoing event. The
// cache is keyed on the graph generation and the event state, so a graph
// change or a status transition forces a recomputation; a resolved event is
// dropped from the cache entirely.
type Engine struct {
	graph    *graph.Graph
	maxDepth int

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	generation uint64
	startUnix  int64
	confidence float64
	results    []types.ImpactResult
}

func New(g *graph.Graph, maxDepth int) *Engine {
	return &Engine{
		graph:    g,
		maxDepth: maxDepth,
		cache:    make(map[string]cacheEntry),
	}
}

// Compute returns the ordered impact of a downtime event, nearest hop first,
// ties broken by system ID. Identical graph and event state always yield the
// identical sequence. The computation has no side effects beyond the cache.
func (e *Engine) Compute(event *types.DowntimeEvent) ([]types.ImpactResult, error) {
	gen := e.graph.Generation()

	if event.Ongoing() {
		e.mu.Lock()
		entry, ok := e.cache[event.ID]
		e.mu.Unlock()
		if ok && entry.generation == gen && entry.startUnix == event.StartTime.Unix() && entry.confidence == event.Confidence {
			return entry.results, nil
		}
	}

	deps, err := e.graph.AllDependents(event.ServiceID, e.maxDepth)
	if err != nil {
		return nil, err
	}

	base := baseSeverity(event.Confidence)
	results := make([]types.ImpactResult, 0, len(deps))
	for _, d := range deps {
		// dependency edges always originate from systems, so every
		// dependent is an internal system
		results = append(results, types.ImpactResult{
			EventID:  event.ID,
			SystemID: d.ID,
			Hops:     d.Hops,
			Severity: base * decay(d.Hops),
		})
	}

	e.mu.Lock()
	if event.Ongoing() {
		e.cache[event.ID] = cacheEntry{
			generation: gen,
			startUnix:  event.StartTime.Unix(),
			confidence: event.Confidence,
			results:    results,
		}
	} else {
		delete(e.cache, event.ID)
	}
	e.mu.Unlock()

	return results, nil
}

// Invalidate drops any cached results for the event. Called when the event
// resolves.
func (e *Engine) Invalidate(eventID string) {
	e.mu.Lock()
	delete(e.cache, eventID)
	e.mu.Unlock()
}

// baseSeverity maps source confidence into a base severity. Confidence
// outside [0,1] is clamped.
func baseSeverity(confidence float64) float64 {
	if confidence <= 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

// decay is strictly decreasing in hop distance: 1/(1+hops).
func decay(hops int) float64 {
	return 1.0 / float64(1+hops)
}
