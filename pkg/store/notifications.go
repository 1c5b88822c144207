package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noticehub/noticehub/pkg/types"
)

type dbNotification struct {
	ID         string  `db:"id"`
	EventID    string  `db:"event_id"`
	SystemID   string  `db:"system_id"`
	Severity   float64 `db:"severity"`
	CreatedAt  int64   `db:"created_at"`
	ResolvedAt int64   `db:"resolved_at"`
}

func (s *Store) PutNotification(n *types.Notification) (*types.Notification, error) {
	st := notificationToDbStruct(n)
	if len(st.ID) == 0 {
		st.ID = uuid.New().String()
	}

	q := `INSERT INTO notifications (id, event_id, system_id, severity, created_at, resolved_at)
	      VALUES (:id, :event_id, :system_id, :severity, :created_at, :resolved_at)
	      ON CONFLICT(id) DO UPDATE SET
	        event_id = :event_id, system_id = :system_id, severity = :severity,
	        created_at = :created_at, resolved_at = :resolved_at`
	if _, err := s.db.NamedExec(q, st); err != nil {
		return nil, fmt.Errorf("unable to store notification: %w", err)
	}

	return notificationFromDbStruct(&st), nil
}

// OpenByEvent returns the open notifications tied to one downtime event,
// ordered by affected system.
func (s *Store) OpenByEvent(eventID string) ([]*types.Notification, error) {
	results := []dbNotification{}
	err := s.db.Select(&results,
		"SELECT * FROM notifications WHERE event_id == ? AND resolved_at <= 0 ORDER BY system_id", eventID)
	if err != nil {
		return nil, fmt.Errorf("error while querying open notifications: %w", err)
	}

	converted := make([]*types.Notification, len(results))
	for i, r := range results {
		converted[i] = notificationFromDbStruct(&r)
	}
	return converted, nil
}

// ListNotifications returns notifications, optionally filtered by status.
// An empty status returns everything.
func (s *Store) ListNotifications(status types.NotificationStatus) ([]*types.Notification, error) {
	q := "SELECT * FROM notifications ORDER BY created_at, system_id"
	switch status {
	case types.NotificationOpen:
		q = "SELECT * FROM notifications WHERE resolved_at <= 0 ORDER BY created_at, system_id"
	case types.NotificationResolved:
		q = "SELECT * FROM notifications WHERE resolved_at > 0 ORDER BY created_at, system_id"
	}

	results := []dbNotification{}
	if err := s.db.Select(&results, q); err != nil {
		return nil, fmt.Errorf("error while querying notifications: %w", err)
	}

	converted := make([]*types.Notification, len(results))
	for i, r := range results {
		converted[i] = notificationFromDbStruct(&r)
	}
	return converted, nil
}

func notificationToDbStruct(n *types.Notification) dbNotification {
	st := dbNotification{
		ID:        n.ID,
		EventID:   n.EventID,
		SystemID:  n.SystemID,
		Severity:  n.Severity,
		CreatedAt: n.CreatedAt.Unix(),
	}
	if n.ResolvedAt != nil {
		st.ResolvedAt = n.ResolvedAt.Unix()
	}
	return st
}

func notificationFromDbStruct(st *dbNotification) *types.Notification {
	n := types.Notification{
		ID:        st.ID,
		EventID:   st.EventID,
		SystemID:  st.SystemID,
		Severity:  st.Severity,
		Status:    types.NotificationOpen,
		CreatedAt: time.Unix(st.CreatedAt, 0),
	}
	if st.ResolvedAt > 0 {
		resolved := time.Unix(st.ResolvedAt, 0)
		n.ResolvedAt = &resolved
		n.Status = types.NotificationResolved
	}
	return &n
}
