// Package pipeline wires the core together: an inbound fact is applied to
// the event tracker, the impact of the resulting event is computed, and the
// notification set is reconciled. One pipeline execution runs per fact;
// executions for the same service are serialized so the single-ongoing-event
// invariant holds under concurrent arrivals, while facts for distinct
// services proceed in parallel.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/noticehub/noticehub/pkg/impact"
	"github.com/noticehub/noticehub/pkg/metrics"
	"github.com/noticehub/noticehub/pkg/notify"
	"github.com/noticehub/noticehub/pkg/tracker"
	"github.com/noticehub/noticehub/pkg/types"
)

// Receipt summarizes what one fact or resolve did.
type Receipt struct {
	Event   *types.DowntimeEvent `json:"event"`
	Merged  bool                 `json:"merged"`
	Changes notify.Changes       `json:"changes"`
}

type Pipeline struct {
	tracker   *tracker.Tracker
	engine    *impact.Engine
	generator *notify.Generator
	metrics   *metrics.Metrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a pipeline. metrics may be nil.
func New(tr *tracker.Tracker, eng *impact.Engine, gen *notify.Generator, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		tracker:   tr,
		engine:    eng,
		generator: gen,
		metrics:   m,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Ingest applies one extracted fact end to end. Validation failures mutate
// nothing and are logged with their error kind before being returned.
func (p *Pipeline) Ingest(ctx context.Context, fact types.Fact) (*Receipt, error) {
	l := logr.FromContextOrDiscard(ctx)
	start := time.Now()

	unlock := p.lockService(fact.ServiceID)
	defer unlock()

	event, merged, err := p.tracker.ReportFact(fact)
	if err != nil {
		p.observeFact(metrics.OutcomeRejected, start)
		l.Info("Rejected fact", "service", fact.ServiceID, "kind", errKind(err), "error", err.Error())
		return nil, err
	}

	receipt, err := p.syncEvent(event)
	if err != nil {
		return nil, err
	}
	receipt.Merged = merged

	outcome := metrics.OutcomeCreated
	if merged {
		outcome = metrics.OutcomeMerged
	}
	p.observeFact(outcome, start)
	p.observeChanges(event, receipt.Changes)

	l.Info("Processed fact",
		"service", fact.ServiceID, "event", event.ID, "status", event.Status, "merged", merged,
		"opened", len(receipt.Changes.Opened), "resolved", len(receipt.Changes.Resolved),
	)
	return receipt, nil
}

// Resolve closes an event explicitly and reconciles its notifications. The
// resolve itself must run under the per-service lock: a concurrent merge for
// the same service would otherwise write back a stale ongoing row and undo
// the resolve.
func (p *Pipeline) Resolve(ctx context.Context, eventID string, end time.Time) (*Receipt, error) {
	l := logr.FromContextOrDiscard(ctx)

	// an event never changes its service, so the lock key can be looked up
	// before locking
	ev, err := p.tracker.Lookup(eventID)
	if err != nil {
		l.Info("Rejected resolve", "event", eventID, "kind", errKind(err), "error", err.Error())
		return nil, err
	}

	unlock := p.lockService(ev.ServiceID)
	defer unlock()

	event, err := p.tracker.Resolve(eventID, end)
	if err != nil {
		l.Info("Rejected resolve", "event", eventID, "kind", errKind(err), "error", err.Error())
		return nil, err
	}

	receipt, err := p.syncEvent(event)
	if err != nil {
		return nil, err
	}
	p.observeChanges(event, receipt.Changes)

	l.Info("Resolved event", "event", event.ID, "service", event.ServiceID, "closed_notifications", len(receipt.Changes.Resolved))
	return receipt, nil
}

func (p *Pipeline) syncEvent(event *types.DowntimeEvent) (*Receipt, error) {
	results, err := p.engine.Compute(event)
	if err != nil {
		return nil, err
	}
	changes, err := p.generator.Sync(event, results)
	if err != nil {
		return nil, err
	}
	return &Receipt{Event: event, Changes: changes}, nil
}

// lockService returns the unlock function for the per-service mutex,
// creating it on first use. Lock values are never removed; the catalog is
// small and stable.
func (p *Pipeline) lockService(id string) func() {
	p.mu.Lock()
	l, ok := p.locks[id]
	if !ok {
		l = &sync.Mutex{}
		p.locks[id] = l
	}
	p.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (p *Pipeline) observeFact(outcome string, start time.Time) {
	if p.metrics == nil {
		return
	}
	p.metrics.ObserveFact(outcome, time.Since(start).Seconds())
}

func (p *Pipeline) observeChanges(event *types.DowntimeEvent, changes notify.Changes) {
	if p.metrics == nil {
		return
	}
	if !event.Ongoing() {
		p.metrics.EventResolved()
	}
	if n := len(changes.Opened); n > 0 {
		p.metrics.NotificationsOpened(n)
	}
	if n := len(changes.Resolved); n > 0 {
		p.metrics.NotificationsResolved(n)
	}
}

func errKind(err error) string {
	var unknownNode *types.UnknownNodeError
	var unknownEvent *types.UnknownEventError
	var invalidInterval *types.InvalidIntervalError
	switch {
	case errors.As(err, &unknownNode):
		return "unknown_node"
	case errors.As(err, &unknownEvent):
		return "unknown_event"
	case errors.As(err, &invalidInterval):
		return "invalid_interval"
	default:
		return "internal"
	}
}
