// Package notify turns impact results into internal notification records
// with an open/resolved lifecycle. It guarantees at most one open
// notification per (event, affected system) pair and never reopens a
// resolved one: a recurring incident produces a new event and therefore new
// notifications.
package notify

import (
	"time"

	"github.com/noticehub/noticehub/pkg/types"
)

// NotificationStore is the persistence the generator needs. Implemented by
// pkg/store and by the mocks under pkg/store/mock.
type NotificationStore interface {
	PutNotification(n *types.Notification) (*types.Notification, error)
	OpenByEvent(eventID string) ([]*types.Notification, error)
}

// Changes lists what one Sync call did, for the delivery collaborator.
type Changes struct {
	Opened   []*types.Notification `json:"opened,omitempty"`
	Updated  []*types.Notification `json:"updated,omitempty"`
	Resolved []*types.Notification `json:"resolved,omitempty"`
}

type Generator struct {
	store NotificationStore
	now   func() time.Time
}

func New(store NotificationStore) *Generator {
	return &Generator{store: store, now: time.Now}
}

// Sync reconciles the open notifications of an event against its current
// impact results.
//
// For an ongoing event every impacted system gets exactly one open
// notification: missing ones are created, existing ones get their severity
// updated in place, and open notifications whose system dropped out of the
// impact set are resolved. For a resolved event every open notification is
// resolved, stamped with the event's end time.
func (g *Generator) Sync(event *types.DowntimeEvent, results []types.ImpactResult) (Changes, error) {
	open, err := g.store.OpenByEvent(event.ID)
	if err != nil {
		return Changes{}, err
	}
	openBySystem := make(map[string]*types.Notification, len(open))
	for _, n := range open {
		openBySystem[n.SystemID] = n
	}

	var changes Changes

	if !event.Ongoing() {
		resolvedAt := g.now()
		if event.EndTime != nil {
			resolvedAt = *event.EndTime
		}
		for _, n := range open {
			n.ResolvedAt = &resolvedAt
			n.Status = types.NotificationResolved
			stored, err := g.store.PutNotification(n)
			if err != nil {
				return changes, err
			}
			changes.Resolved = append(changes.Resolved, stored)
		}
		return changes, nil
	}

	impacted := make(map[string]struct{}, len(results))
	for _, r := range results {
		impacted[r.SystemID] = struct{}{}
		if existing, ok := openBySystem[r.SystemID]; ok {
			if existing.Severity == r.Severity {
				continue
			}
			existing.Severity = r.Severity
			stored, err := g.store.PutNotification(existing)
			if err != nil {
				return changes, err
			}
			changes.Updated = append(changes.Updated, stored)
			continue
		}

		stored, err := g.store.PutNotification(&types.Notification{
			EventID:   event.ID,
			SystemID:  r.SystemID,
			Severity:  r.Severity,
			Status:    types.NotificationOpen,
			CreatedAt: g.now(),
		})
		if err != nil {
			return changes, err
		}
		changes.Opened = append(changes.Opened, stored)
	}

	// systems no longer impacted, e.g. after a dependency edge was removed
	resolvedAt := g.now()
	for _, n := range open {
		if _, ok := impacted[n.SystemID]; ok {
			continue
		}
		n.ResolvedAt = &resolvedAt
		n.Status = types.NotificationResolved
		stored, err := g.store.PutNotification(n)
		if err != nil {
			return changes, err
		}
		changes.Resolved = append(changes.Resolved, stored)
	}

	return changes, nil
}
