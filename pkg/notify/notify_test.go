package notify

import (
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noticehub/noticehub/pkg/store"
	"github.com/noticehub/noticehub/pkg/types"
)

func setup() (*Generator, *store.Store) {
	time.Local = time.UTC
	st, err := store.NewStore(":memory:")
	if err != nil {
		log.Fatal(err)
	}
	if err := st.InitializeDB(); err != nil {
		log.Fatal(err)
	}
	return New(st), st
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	assert.NoError(t, err)
	return ts
}

func ongoingEvent(t *testing.T) *types.DowntimeEvent {
	t.Helper()
	return &types.DowntimeEvent{
		ID:         "ev-1",
		ServiceID:  "s3",
		StartTime:  mustTime(t, "2024-03-01T10:00:00Z"),
		Status:     types.EventOngoing,
		Confidence: 1.0,
	}
}

func impactOn(systems ...string) []types.ImpactResult {
	results := make([]types.ImpactResult, len(systems))
	for i, id := range systems {
		results[i] = types.ImpactResult{EventID: "ev-1", SystemID: id, Hops: 1, Severity: 0.5}
	}
	return results
}

func TestSyncOpensOnePerImpactedSystem(t *testing.T) {
	g, st := setup()
	ev := ongoingEvent(t)

	changes, err := g.Sync(ev, impactOn("billing", "checkout"))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(changes.Opened))
	assert.Equal(t, 0, len(changes.Updated))
	assert.Equal(t, 0, len(changes.Resolved))

	open, err := st.OpenByEvent("ev-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(open))
}

func TestSyncDoesNotDuplicate(t *testing.T) {
	g, st := setup()
	ev := ongoingEvent(t)

	_, err := g.Sync(ev, impactOn("billing", "checkout"))
	assert.NoError(t, err)

	changes, err := g.Sync(ev, impactOn("billing", "checkout"))
	assert.NoError(t, err)
	assert.Equal(t, 0, len(changes.Opened))
	assert.Equal(t, 0, len(changes.Updated))
	assert.Equal(t, 0, len(changes.Resolved))

	open, err := st.OpenByEvent("ev-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(open))
}

func TestSyncUpdatesSeverityInPlace(t *testing.T) {
	g, st := setup()
	ev := ongoingEvent(t)

	_, err := g.Sync(ev, impactOn("billing"))
	assert.NoError(t, err)

	raised := impactOn("billing")
	raised[0].Severity = 0.9
	changes, err := g.Sync(ev, raised)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(changes.Opened))
	assert.Equal(t, 1, len(changes.Updated))
	assert.Equal(t, 0.9, changes.Updated[0].Severity)

	open, err := st.OpenByEvent("ev-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(open))
	assert.Equal(t, 0.9, open[0].Severity)
}

func TestSyncResolvesDroppedSystems(t *testing.T) {
	g, st := setup()
	ev := ongoingEvent(t)

	_, err := g.Sync(ev, impactOn("billing", "checkout"))
	assert.NoError(t, err)

	// checkout dropped out of the impact set
	changes, err := g.Sync(ev, impactOn("billing"))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(changes.Resolved))
	assert.Equal(t, "checkout", changes.Resolved[0].SystemID)

	open, err := st.OpenByEvent("ev-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(open))
	assert.Equal(t, "billing", open[0].SystemID)
}

func TestSyncResolvedEventClosesEverything(t *testing.T) {
	g, st := setup()
	ev := ongoingEvent(t)

	_, err := g.Sync(ev, impactOn("billing", "checkout"))
	assert.NoError(t, err)

	end := mustTime(t, "2024-03-01T12:00:00Z")
	ev.EndTime = &end
	ev.Status = types.EventResolved

	changes, err := g.Sync(ev, impactOn("billing", "checkout"))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(changes.Resolved))
	for _, n := range changes.Resolved {
		assert.Equal(t, types.NotificationResolved, n.Status)
		assert.True(t, n.ResolvedAt.Equal(end))
	}

	open, err := st.OpenByEvent("ev-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(open))

	// syncing again creates nothing new for the resolved event
	changes, err = g.Sync(ev, impactOn("billing", "checkout"))
	assert.NoError(t, err)
	assert.Equal(t, 0, len(changes.Opened))
	assert.Equal(t, 0, len(changes.Resolved))
}

func TestSyncNeverReopens(t *testing.T) {
	g, st := setup()
	ev := ongoingEvent(t)

	_, err := g.Sync(ev, impactOn("billing"))
	assert.NoError(t, err)

	end := mustTime(t, "2024-03-01T12:00:00Z")
	ev.EndTime = &end
	ev.Status = types.EventResolved
	_, err = g.Sync(ev, impactOn("billing"))
	assert.NoError(t, err)

	// the event flips back to ongoing state in memory; a fresh sync must
	// open a new notification rather than reopen the resolved record
	ev.EndTime = nil
	ev.Status = types.EventOngoing
	changes, err := g.Sync(ev, impactOn("billing"))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(changes.Opened))

	all, err := st.ListNotifications("")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(all))
}
