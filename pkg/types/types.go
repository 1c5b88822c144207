package types

import "time"

// EventStatus tracks the lifecycle of a downtime event.
type EventStatus string

const (
	EventOngoing  EventStatus = "ongoing"
	EventResolved EventStatus = "resolved"
)

// NotificationStatus tracks the lifecycle of an internal notification.
// The only transition is open -> resolved; resolved is terminal.
type NotificationStatus string

const (
	NotificationOpen     NotificationStatus = "open"
	NotificationResolved NotificationStatus = "resolved"
)

// Service is an external dependency (cloud provider, SaaS) that can go down.
type Service struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider,omitempty"`
}

// System is an internal system whose availability depends on one or more
// services or other systems.
type System struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DependencyEdge is a directed "depends-on" relation from a system to a
// service or another system. Edges are stored as adjacency only; they have
// no lifecycle of their own.
type DependencyEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Fact is the structured input produced by the extraction collaborator.
// It is the only inbound shape the core accepts.
type Fact struct {
	ServiceID  string     `json:"service_id"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Confidence float64    `json:"confidence"`
	Summary    string     `json:"summary,omitempty"`
}

// DowntimeEvent is a tracked interval during which a service was unavailable.
// Events are never deleted, only marked resolved; resolved events feed the
// availability statistics.
type DowntimeEvent struct {
	ID         string      `json:"id"`
	ServiceID  string      `json:"service_id"`
	StartTime  time.Time   `json:"start_time"`
	EndTime    *time.Time  `json:"end_time,omitempty"`
	Status     EventStatus `json:"status"`
	Confidence float64     `json:"confidence"`
	Summary    string      `json:"summary,omitempty"`
}

// Ongoing reports whether the event has not yet been resolved.
func (e *DowntimeEvent) Ongoing() bool {
	return e.Status == EventOngoing
}

// ImpactResult states that a system is affected by a downtime event, with
// the minimum hop distance through the dependency graph and a severity that
// decays with distance. Results are derived on demand and never persisted.
type ImpactResult struct {
	EventID  string  `json:"event_id"`
	SystemID string  `json:"system_id"`
	Hops     int     `json:"hops"`
	Severity float64 `json:"severity"`
}

// Notification is an internal alert record tied to one (event, affected
// system) pair. At most one open notification exists per pair at any time.
type Notification struct {
	ID         string             `json:"id"`
	EventID    string             `json:"event_id"`
	SystemID   string             `json:"system_id"`
	Severity   float64            `json:"severity"`
	Status     NotificationStatus `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
	ResolvedAt *time.Time         `json:"resolved_at,omitempty"`
}

// DowntimeStatistic is the per-service availability summary over a time
// window. It is recomputed on every read, never stored.
type DowntimeStatistic struct {
	ServiceID     string        `json:"service_id"`
	WindowStart   time.Time     `json:"window_start"`
	WindowEnd     time.Time     `json:"window_end"`
	TotalDowntime time.Duration `json:"total_downtime"`
	EventCount    int           `json:"event_count"`
	Availability  float64       `json:"availability"`
}
