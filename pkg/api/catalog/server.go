// Package catalog serves CRUD for services, systems and dependency edges.
// Mutations are applied to the in-memory graph first (which validates edge
// endpoints) and then persisted, so the graph and the catalog tables stay
// consistent.
package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/noticehub/noticehub/pkg/api/handler"
	"github.com/noticehub/noticehub/pkg/graph"
	"github.com/noticehub/noticehub/pkg/store"
	"github.com/noticehub/noticehub/pkg/types"
)

// CatalogStore is the persistence side of the catalog.
type CatalogStore interface {
	UpsertService(svc types.Service) error
	UpsertSystem(sys types.System) error
	InsertDependency(edge types.DependencyEdge) error
	DeleteDependency(edge types.DependencyEdge) error
	DeleteService(id string) error
	DeleteSystem(id string) error
	ListServices() ([]types.Service, error)
	ListSystems() ([]types.System, error)
	ListDependencies() ([]types.DependencyEdge, error)
}

type catalogServer struct {
	store CatalogStore
	graph *graph.Graph
}

func (s *catalogServer) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := s.store.ListServices()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(services)
}

func (s *catalogServer) CreateService(w http.ResponseWriter, r *http.Request) {
	svc := types.Service{}
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if svc.ID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	if err := s.store.UpsertService(svc); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.graph.AddService(svc)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(svc)
}

func (s *catalogServer) DeleteService(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.store.DeleteService(id); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, store.ErrServiceInUse) {
			code = http.StatusConflict
		}
		http.Error(w, err.Error(), code)
		return
	}
	s.graph.RemoveService(id)

	w.WriteHeader(http.StatusNoContent)
}

func (s *catalogServer) ListSystems(w http.ResponseWriter, r *http.Request) {
	systems, err := s.store.ListSystems()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(systems)
}

func (s *catalogServer) CreateSystem(w http.ResponseWriter, r *http.Request) {
	sys := types.System{}
	if err := json.NewDecoder(r.Body).Decode(&sys); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if sys.ID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	if err := s.store.UpsertSystem(sys); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.graph.AddSystem(sys)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sys)
}

func (s *catalogServer) DeleteSystem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.store.DeleteSystem(id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.graph.RemoveSystem(id)

	w.WriteHeader(http.StatusNoContent)
}

func (s *catalogServer) ListDependencies(w http.ResponseWriter, r *http.Request) {
	deps, err := s.store.ListDependencies()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(deps)
}

func (s *catalogServer) CreateDependency(w http.ResponseWriter, r *http.Request) {
	edge := types.DependencyEdge{}
	if err := json.NewDecoder(r.Body).Decode(&edge); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// the graph validates that both endpoints exist
	if err := s.graph.AddDependency(edge.From, edge.To); err != nil {
		http.Error(w, err.Error(), handler.StatusFor(err))
		return
	}
	if err := s.store.InsertDependency(edge); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(edge)
}

func (s *catalogServer) DeleteDependency(w http.ResponseWriter, r *http.Request) {
	edge := types.DependencyEdge{
		From: r.PathValue("from"),
		To:   r.PathValue("to"),
	}

	if err := s.store.DeleteDependency(edge); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.graph.RemoveDependency(edge.From, edge.To)

	w.WriteHeader(http.StatusNoContent)
}

func Setup(mux *http.ServeMux, st CatalogStore, g *graph.Graph) {
	s := catalogServer{store: st, graph: g}
	mux.HandleFunc("GET /api/v1/services", s.ListServices)
	mux.HandleFunc("POST /api/v1/services", s.CreateService)
	mux.HandleFunc("DELETE /api/v1/services/{id}", s.DeleteService)
	mux.HandleFunc("GET /api/v1/systems", s.ListSystems)
	mux.HandleFunc("POST /api/v1/systems", s.CreateSystem)
	mux.HandleFunc("DELETE /api/v1/systems/{id}", s.DeleteSystem)
	mux.HandleFunc("GET /api/v1/dependencies", s.ListDependencies)
	mux.HandleFunc("POST /api/v1/dependencies", s.CreateDependency)
	mux.HandleFunc("DELETE /api/v1/dependencies/{from}/{to}", s.DeleteDependency)
}
