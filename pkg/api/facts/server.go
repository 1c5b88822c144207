// Package facts serves the inbound side of the core: fact ingestion,
// explicit event resolution and the event/notification listings.
package facts

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/noticehub/noticehub/pkg/api/handler"
	"github.com/noticehub/noticehub/pkg/pipeline"
	"github.com/noticehub/noticehub/pkg/types"
)

// Pipeline is the ingestion pipeline boundary.
type Pipeline interface {
	Ingest(ctx context.Context, fact types.Fact) (*pipeline.Receipt, error)
	Resolve(ctx context.Context, eventID string, end time.Time) (*pipeline.Receipt, error)
}

// EventStore is the read side for event listings.
type EventStore interface {
	GetEvent(id string) (*types.DowntimeEvent, bool, error)
	ListEvents(from time.Time, to time.Time) ([]*types.DowntimeEvent, error)
}

// NotificationLister is the read side for notification listings.
type NotificationLister interface {
	ListNotifications(status types.NotificationStatus) ([]*types.Notification, error)
}

type factsServer struct {
	pipeline      Pipeline
	events        EventStore
	notifications NotificationLister
}

type resolveRequest struct {
	EndTime time.Time `json:"end_time"`
}

func (s *factsServer) IngestFact(w http.ResponseWriter, r *http.Request) {
	fact := types.Fact{}
	if err := json.NewDecoder(r.Body).Decode(&fact); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := s.pipeline.Ingest(r.Context(), fact)
	if err != nil {
		http.Error(w, err.Error(), handler.StatusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(receipt)
}

func (s *factsServer) ResolveEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	req := resolveRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.EndTime.IsZero() {
		http.Error(w, "end_time is required", http.StatusBadRequest)
		return
	}

	receipt, err := s.pipeline.Resolve(r.Context(), id, req.EndTime)
	if err != nil {
		http.Error(w, err.Error(), handler.StatusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(receipt)
}

func (s *factsServer) GetEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok, err := s.events.GetEvent(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ev)
}

func (s *factsServer) ListEvents(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	ft, err := time.Parse(time.RFC3339, from)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	tt, err := time.Parse(time.RFC3339, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := s.events.ListEvents(ft, tt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

func (s *factsServer) ListNotifications(w http.ResponseWriter, r *http.Request) {
	status := types.NotificationStatus(r.URL.Query().Get("status"))
	switch status {
	case "", types.NotificationOpen, types.NotificationResolved:
	default:
		http.Error(w, "invalid status filter", http.StatusBadRequest)
		return
	}

	notifications, err := s.notifications.ListNotifications(status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notifications)
}

func Setup(mux *http.ServeMux, p Pipeline, events EventStore, notifications NotificationLister) {
	s := factsServer{pipeline: p, events: events, notifications: notifications}
	mux.HandleFunc("POST /api/v1/facts", s.IngestFact)
	mux.HandleFunc("POST /api/v1/events/{id}/resolve", s.ResolveEvent)
	mux.HandleFunc("GET /api/v1/events", s.ListEvents)
	mux.HandleFunc("GET /api/v1/events/{id}", s.GetEvent)
	mux.HandleFunc("GET /api/v1/notifications", s.ListNotifications)
}
