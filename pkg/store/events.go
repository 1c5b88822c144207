package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noticehub/noticehub/pkg/types"
)

type dbEvent struct {
	ID         string  `db:"id"`
	ServiceID  string  `db:"service_id"`
	StartTime  int64   `db:"start_time"`
	EndTime    int64   `db:"end_time"`
	Confidence float64 `db:"confidence"`
	Summary    string  `db:"summary"`
}

func (s *Store) PutEvent(ev *types.DowntimeEvent) (*types.DowntimeEvent, error) {
	st := eventToDbStruct(ev)
	if len(st.ID) == 0 {
		st.ID = uuid.New().String()
	}

	q := `INSERT INTO events (id, service_id, start_time, end_time, confidence, summary)
	      VALUES (:id, :service_id, :start_time, :end_time, :confidence, :summary)
	      ON CONFLICT(id) DO UPDATE SET
	        service_id = :service_id, start_time = :start_time, end_time = :end_time,
	        confidence = :confidence, summary = :summary`
	if _, err := s.db.NamedExec(q, st); err != nil {
		return nil, fmt.Errorf("unable to store downtime event: %w", err)
	}

	return eventFromDbStruct(&st), nil
}

func (s *Store) GetEvent(id string) (*types.DowntimeEvent, bool, error) {
	result := dbEvent{}
	err := s.db.Get(&result, "SELECT * FROM events WHERE id == ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error while querying event by ID: %w", err)
	}
	return eventFromDbStruct(&result), true, nil
}

// FindOngoingNear returns the ongoing event for a service whose start time
// lies within the given window of the candidate start, if one exists. This
// is the dedup lookup: such an event counts as the same incident.
func (s *Store) FindOngoingNear(serviceID string, start time.Time, window time.Duration) (*types.DowntimeEvent, bool, error) {
	lo := start.Add(-window).Unix()
	hi := start.Add(window).Unix()

	results := []dbEvent{}
	err := s.db.Select(&results,
		"SELECT * FROM events WHERE service_id == ? AND end_time <= 0 AND start_time >= ? AND start_time <= ? ORDER BY start_time LIMIT 1",
		serviceID, lo, hi)
	if err != nil {
		return nil, false, fmt.Errorf("error while querying ongoing events: %w", err)
	}
	if len(results) == 0 {
		return nil, false, nil
	}
	return eventFromDbStruct(&results[0]), true, nil
}

// ListEvents returns all events overlapping the [from, to) window, any
// service. Ongoing events overlap every window that starts before now.
func (s *Store) ListEvents(from time.Time, to time.Time) ([]*types.DowntimeEvent, error) {
	results := []dbEvent{}
	err := s.db.Select(&results,
		"SELECT * FROM events WHERE (end_time > ? OR end_time <= 0) AND start_time < ? ORDER BY start_time",
		from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("error while querying downtime events: %w", err)
	}

	converted := make([]*types.DowntimeEvent, len(results))
	for i, r := range results {
		converted[i] = eventFromDbStruct(&r)
	}
	return converted, nil
}

// ListServiceEvents is ListEvents restricted to one service; the statistics
// computation feeds on it.
func (s *Store) ListServiceEvents(serviceID string, from time.Time, to time.Time) ([]*types.DowntimeEvent, error) {
	results := []dbEvent{}
	err := s.db.Select(&results,
		"SELECT * FROM events WHERE service_id == ? AND (end_time > ? OR end_time <= 0) AND start_time < ? ORDER BY start_time",
		serviceID, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("error while querying downtime events for service: %w", err)
	}

	converted := make([]*types.DowntimeEvent, len(results))
	for i, r := range results {
		converted[i] = eventFromDbStruct(&r)
	}
	return converted, nil
}

func eventToDbStruct(ev *types.DowntimeEvent) dbEvent {
	st := dbEvent{
		ID:         ev.ID,
		ServiceID:  ev.ServiceID,
		StartTime:  ev.StartTime.Unix(),
		Confidence: ev.Confidence,
		Summary:    ev.Summary,
	}
	if ev.EndTime != nil {
		st.EndTime = ev.EndTime.Unix()
	}
	return st
}

func eventFromDbStruct(st *dbEvent) *types.DowntimeEvent {
	ev := types.DowntimeEvent{
		ID:         st.ID,
		ServiceID:  st.ServiceID,
		StartTime:  time.Unix(st.StartTime, 0),
		Status:     types.EventOngoing,
		Confidence: st.Confidence,
		Summary:    st.Summary,
	}
	if st.EndTime > 0 {
		end := time.Unix(st.EndTime, 0)
		ev.EndTime = &end
		ev.Status = types.EventResolved
	}
	return &ev
}
