package impact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noticehub/noticehub/pkg/graph"
	"github.com/noticehub/noticehub/pkg/types"
)

func seedGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	g.AddService(types.Service{ID: "s3", Name: "AWS S3", Provider: "aws"})
	g.AddSystem(types.System{ID: "checkout", Name: "Checkout"})
	g.AddSystem(types.System{ID: "billing", Name: "Billing"})
	g.AddSystem(types.System{ID: "reporting", Name: "Reporting"})
	assert.NoError(t, g.AddDependency("checkout", "s3"))
	assert.NoError(t, g.AddDependency("billing", "s3"))
	assert.NoError(t, g.AddDependency("billing", "checkout"))
	assert.NoError(t, g.AddDependency("reporting", "billing"))
	return g
}

func ongoingEvent(t *testing.T, confidence float64) *types.DowntimeEvent {
	t.Helper()
	start, err := time.Parse(time.RFC3339, "2024-03-01T10:00:00Z")
	assert.NoError(t, err)
	return &types.DowntimeEvent{
		ID:         "ev-1",
		ServiceID:  "s3",
		StartTime:  start,
		Status:     types.EventOngoing,
		Confidence: confidence,
	}
}

func TestComputeOrderAndDecay(t *testing.T) {
	e := New(seedGraph(t), 0)
	ev := ongoingEvent(t, 1.0)

	results, err := e.Compute(ev)
	assert.NoError(t, err)
	assert.Equal(t, []types.ImpactResult{
		{EventID: "ev-1", SystemID: "billing", Hops: 1, Severity: 0.5},
		{EventID: "ev-1", SystemID: "checkout", Hops: 1, Severity: 0.5},
		{EventID: "ev-1", SystemID: "reporting", Hops: 2, Severity: 1.0 / 3.0},
	}, results)
}

func TestComputeDeterministic(t *testing.T) {
	e := New(seedGraph(t), 0)
	ev := ongoingEvent(t, 0.8)

	first, err := e.Compute(ev)
	assert.NoError(t, err)
	second, err := e.Compute(ev)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeSeverityScalesWithConfidence(t *testing.T) {
	e := New(seedGraph(t), 0)

	results, err := e.Compute(ongoingEvent(t, 0.5))
	assert.NoError(t, err)
	assert.Equal(t, 0.25, results[0].Severity)

	// confidence outside [0,1] is clamped
	low := ongoingEvent(t, -1)
	low.ID = "ev-low"
	results, err = e.Compute(low)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, results[0].Severity)
}

func TestComputeUnknownService(t *testing.T) {
	e := New(seedGraph(t), 0)
	ev := ongoingEvent(t, 1.0)
	ev.ServiceID = "ghost"

	_, err := e.Compute(ev)
	assert.Error(t, err)
}

func TestCacheInvalidatedOnGraphChange(t *testing.T) {
	g := seedGraph(t)
	e := New(g, 0)
	ev := ongoingEvent(t, 1.0)

	results, err := e.Compute(ev)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(results))

	g.RemoveDependency("reporting", "billing")

	results, err = e.Compute(ev)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(results))
}

func TestResolvedEventDropsFromCache(t *testing.T) {
	e := New(seedGraph(t), 0)
	ev := ongoingEvent(t, 1.0)

	_, err := e.Compute(ev)
	assert.NoError(t, err)

	end := ev.StartTime.Add(time.Hour)
	ev.EndTime = &end
	ev.Status = types.EventResolved

	results, err := e.Compute(ev)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(results))

	e.mu.Lock()
	_, cached := e.cache[ev.ID]
	e.mu.Unlock()
	assert.False(t, cached)
}

func TestComputeRespectsMaxDepth(t *testing.T) {
	e := New(seedGraph(t), 1)
	ev := ongoingEvent(t, 1.0)

	results, err := e.Compute(ev)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(results))
	for _, r := range results {
		assert.Equal(t, 1, r.Hops)
	}
}
