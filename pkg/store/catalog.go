package store

import (
	"errors"
	"fmt"

	"github.com/noticehub/noticehub/pkg/graph"
	"github.com/noticehub/noticehub/pkg/types"
)

type dbService struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Provider string `db:"provider"`
}

type dbSystem struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

type dbDependency struct {
	FromID string `db:"from_id"`
	ToID   string `db:"to_id"`
}

// ErrServiceInUse is returned when deleting a service that still has an
// ongoing downtime event.
var ErrServiceInUse = errors.New("service is referenced by an ongoing downtime event")

func (s *Store) UpsertService(svc types.Service) error {
	q := `INSERT INTO services (id, name, provider) VALUES (:id, :name, :provider)
	      ON CONFLICT(id) DO UPDATE SET name = :name, provider = :provider`
	_, err := s.db.NamedExec(q, dbService{ID: svc.ID, Name: svc.Name, Provider: svc.Provider})
	if err != nil {
		return fmt.Errorf("unable to store service: %w", err)
	}
	return nil
}

func (s *Store) UpsertSystem(sys types.System) error {
	q := `INSERT INTO systems (id, name) VALUES (:id, :name)
	      ON CONFLICT(id) DO UPDATE SET name = :name`
	_, err := s.db.NamedExec(q, dbSystem{ID: sys.ID, Name: sys.Name})
	if err != nil {
		return fmt.Errorf("unable to store system: %w", err)
	}
	return nil
}

func (s *Store) InsertDependency(edge types.DependencyEdge) error {
	q := `INSERT OR IGNORE INTO dependencies (from_id, to_id) VALUES (:from_id, :to_id)`
	_, err := s.db.NamedExec(q, dbDependency{FromID: edge.From, ToID: edge.To})
	if err != nil {
		return fmt.Errorf("unable to store dependency: %w", err)
	}
	return nil
}

func (s *Store) DeleteDependency(edge types.DependencyEdge) error {
	_, err := s.db.Exec("DELETE FROM dependencies WHERE from_id == ? AND to_id == ?", edge.From, edge.To)
	if err != nil {
		return fmt.Errorf("unable to delete dependency: %w", err)
	}
	return nil
}

// DeleteService removes a service from the catalog. Services referenced by
// an ongoing event cannot be deleted.
func (s *Store) DeleteService(id string) error {
	var open int
	err := s.db.Get(&open, "SELECT COUNT(*) FROM events WHERE service_id == ? AND end_time <= 0", id)
	if err != nil {
		return fmt.Errorf("unable to check events for service: %w", err)
	}
	if open > 0 {
		return ErrServiceInUse
	}
	if _, err := s.db.Exec("DELETE FROM services WHERE id == ?", id); err != nil {
		return fmt.Errorf("unable to delete service: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM dependencies WHERE to_id == ?", id); err != nil {
		return fmt.Errorf("unable to delete dependencies of service: %w", err)
	}
	return nil
}

func (s *Store) DeleteSystem(id string) error {
	if _, err := s.db.Exec("DELETE FROM systems WHERE id == ?", id); err != nil {
		return fmt.Errorf("unable to delete system: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM dependencies WHERE from_id == ? OR to_id == ?", id, id); err != nil {
		return fmt.Errorf("unable to delete dependencies of system: %w", err)
	}
	return nil
}

func (s *Store) ListServices() ([]types.Service, error) {
	results := []dbService{}
	if err := s.db.Select(&results, "SELECT * FROM services ORDER BY id"); err != nil {
		return nil, fmt.Errorf("error while querying services: %w", err)
	}
	out := make([]types.Service, len(results))
	for i, r := range results {
		out[i] = types.Service{ID: r.ID, Name: r.Name, Provider: r.Provider}
	}
	return out, nil
}

func (s *Store) ListSystems() ([]types.System, error) {
	results := []dbSystem{}
	if err := s.db.Select(&results, "SELECT * FROM systems ORDER BY id"); err != nil {
		return nil, fmt.Errorf("error while querying systems: %w", err)
	}
	out := make([]types.System, len(results))
	for i, r := range results {
		out[i] = types.System{ID: r.ID, Name: r.Name}
	}
	return out, nil
}

func (s *Store) ListDependencies() ([]types.DependencyEdge, error) {
	results := []dbDependency{}
	if err := s.db.Select(&results, "SELECT * FROM dependencies ORDER BY from_id, to_id"); err != nil {
		return nil, fmt.Errorf("error while querying dependencies: %w", err)
	}
	out := make([]types.DependencyEdge, len(results))
	for i, r := range results {
		out[i] = types.DependencyEdge{From: r.FromID, To: r.ToID}
	}
	return out, nil
}

// LoadGraph builds the in-memory dependency graph from the catalog tables.
// Edges referencing unknown nodes fail the load rather than being skipped.
func (s *Store) LoadGraph() (*graph.Graph, error) {
	g := graph.New()

	services, err := s.ListServices()
	if err != nil {
		return nil, err
	}
	for _, svc := range services {
		g.AddService(svc)
	}

	systems, err := s.ListSystems()
	if err != nil {
		return nil, err
	}
	for _, sys := range systems {
		g.AddSystem(sys)
	}

	edges, err := s.ListDependencies()
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		if err := g.AddDependency(e.From, e.To); err != nil {
			return nil, fmt.Errorf("inconsistent catalog: %w", err)
		}
	}

	return g, nil
}
