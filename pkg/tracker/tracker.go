// Package tracker records downtime events for services. It deduplicates
// re-reports of the same incident through a time-bucketed window, enforces
// monotonic resolution and computes per-service availability statistics.
package tracker

import (
	"time"

	"github.com/noticehub/noticehub/pkg/types"
)

// DefaultDedupWindow is the maximum distance between start times for two
// facts about the same service to be treated as the same incident.
const DefaultDedupWindow = 30 * time.Minute

// EventStore is the persistence the tracker needs. Implemented by pkg/store
// and by the mocks under pkg/store/mock.
type EventStore interface {
	GetEvent(id string) (*types.DowntimeEvent, bool, error)
	PutEvent(ev *types.DowntimeEvent) (*types.DowntimeEvent, error)
	FindOngoingNear(serviceID string, start time.Time, window time.Duration) (*types.DowntimeEvent, bool, error)
	ListServiceEvents(serviceID string, from time.Time, to time.Time) ([]*types.DowntimeEvent, error)
}

// ServiceResolver answers whether a service identifier is known. Facts for
// unknown services are rejected instead of creating phantom services.
type ServiceResolver interface {
	HasService(id string) bool
}

type Tracker struct {
	store    EventStore
	resolver ServiceResolver
	window   time.Duration
	now      func() time.Time
}

func New(store EventStore, resolver ServiceResolver, window time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &Tracker{
		store:    store,
		resolver: resolver,
		window:   window,
		now:      time.Now,
	}
}

// ReportFact applies one extracted fact. The returned bool is true when the
// fact merged into an existing ongoing event instead of creating a new one.
// A fact that fails validation mutates nothing.
func (t *Tracker) ReportFact(fact types.Fact) (*types.DowntimeEvent, bool, error) {
	if !t.resolver.HasService(fact.ServiceID) {
		return nil, false, &types.UnknownNodeError{ID: fact.ServiceID}
	}
	if fact.EndTime != nil && fact.EndTime.Before(fact.StartTime) {
		return nil, false, &types.InvalidIntervalError{Start: fact.StartTime, End: *fact.EndTime}
	}

	existing, ok, err := t.store.FindOngoingNear(fact.ServiceID, fact.StartTime, t.window)
	if err != nil {
		return nil, false, err
	}

	if ok {
		// same incident: keep the earlier start, adopt a reported end
		if fact.StartTime.Before(existing.StartTime) {
			existing.StartTime = fact.StartTime
		}
		if fact.EndTime != nil {
			existing.EndTime = fact.EndTime
			existing.Status = types.EventResolved
		}
		if fact.Confidence > existing.Confidence {
			existing.Confidence = fact.Confidence
		}
		if existing.Summary == "" {
			existing.Summary = fact.Summary
		}
		ev, err := t.store.PutEvent(existing)
		return ev, true, err
	}

	ev := &types.DowntimeEvent{
		ServiceID:  fact.ServiceID,
		StartTime:  fact.StartTime,
		EndTime:    fact.EndTime,
		Status:     types.EventOngoing,
		Confidence: fact.Confidence,
		Summary:    fact.Summary,
	}
	if fact.EndTime != nil {
		// a completed incident not previously seen
		ev.Status = types.EventResolved
	}
	created, err := t.store.PutEvent(ev)
	return created, false, err
}

// Lookup returns a tracked event by ID.
func (t *Tracker) Lookup(eventID string) (*types.DowntimeEvent, error) {
	ev, ok, err := t.store.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &types.UnknownEventError{ID: eventID}
	}
	return ev, nil
}

// Resolve closes an event explicitly. The end time never moves backward:
// resolving an already-resolved event with an equal or earlier end is a
// no-op.
func (t *Tracker) Resolve(eventID string, end time.Time) (*types.DowntimeEvent, error) {
	ev, ok, err := t.store.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &types.UnknownEventError{ID: eventID}
	}
	if end.Before(ev.StartTime) {
		return nil, &types.InvalidIntervalError{Start: ev.StartTime, End: end}
	}
	if ev.EndTime != nil && !end.After(*ev.EndTime) {
		return ev, nil
	}

	ev.EndTime = &end
	ev.Status = types.EventResolved
	return t.store.PutEvent(ev)
}

// Statistics sums the downtime of a service over a window. Overlapping
// events are merged before summing so concurrent incidents are not counted
// twice; ongoing events are clamped at the current time.
func (t *Tracker) Statistics(serviceID string, from time.Time, to time.Time) (types.DowntimeStatistic, error) {
	if !t.resolver.HasService(serviceID) {
		return types.DowntimeStatistic{}, &types.UnknownNodeError{ID: serviceID}
	}
	if !to.After(from) {
		return types.DowntimeStatistic{}, &types.InvalidIntervalError{Start: from, End: to}
	}

	events, err := t.store.ListServiceEvents(serviceID, from, to)
	if err != nil {
		return types.DowntimeStatistic{}, err
	}

	now := t.now()
	intervals := make([]interval, 0, len(events))
	for _, ev := range events {
		iv := interval{start: ev.StartTime, end: now}
		if ev.EndTime != nil {
			iv.end = *ev.EndTime
		}
		if iv.start.Before(from) {
			iv.start = from
		}
		if iv.end.After(to) {
			iv.end = to
		}
		if iv.end.After(iv.start) {
			intervals = append(intervals, iv)
		}
	}

	var total time.Duration
	for _, iv := range mergeIntervals(intervals) {
		total += iv.end.Sub(iv.start)
	}

	window := to.Sub(from)
	availability := 1.0 - float64(total)/float64(window)
	if availability < 0 {
		availability = 0
	}
	if availability > 1 {
		availability = 1
	}

	return types.DowntimeStatistic{
		ServiceID:     serviceID,
		WindowStart:   from,
		WindowEnd:     to,
		TotalDowntime: total,
		EventCount:    len(events),
		Availability:  availability,
	}, nil
}

type interval struct {
	start time.Time
	end   time.Time
}

// mergeIntervals coalesces overlapping or touching intervals. The input must
// be sorted by start time, which ListServiceEvents guarantees.
func mergeIntervals(in []interval) []interval {
	if len(in) == 0 {
		return nil
	}
	out := []interval{in[0]}
	for _, iv := range in[1:] {
		last := &out[len(out)-1]
		if !iv.start.After(last.end) {
			if iv.end.After(last.end) {
				last.end = iv.end
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}
