package mock

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/noticehub/noticehub/pkg/pipeline"
	"github.com/noticehub/noticehub/pkg/types"
)

type MockEventStore struct {
	DoError      bool
	ReturnValues []*types.DowntimeEvent
	LastCall     string
	LastCallID   string
	LastCallFrom time.Time
	LastCallTo   time.Time
}

func (m *MockEventStore) GetEvent(id string) (*types.DowntimeEvent, bool, error) {
	m.LastCall = "get"
	m.LastCallID = id
	if m.DoError {
		return nil, false, errors.New("some error")
	}
	for _, ev := range m.ReturnValues {
		if ev.ID == id {
			return ev, true, nil
		}
	}
	return nil, false, nil
}
func (m *MockEventStore) ListEvents(from time.Time, to time.Time) ([]*types.DowntimeEvent, error) {
	m.LastCall = "list"
	if m.DoError {
		return nil, errors.New("some error")
	}
	m.LastCallFrom = from
	m.LastCallTo = to
	return slices.Clone(m.ReturnValues), nil
}

type MockNotificationLister struct {
	DoError        bool
	ReturnValues   []*types.Notification
	LastCall       string
	LastCallStatus types.NotificationStatus
}

func (m *MockNotificationLister) ListNotifications(status types.NotificationStatus) ([]*types.Notification, error) {
	m.LastCall = "list"
	m.LastCallStatus = status
	if m.DoError {
		return nil, errors.New("some error")
	}
	return slices.Clone(m.ReturnValues), nil
}

type MockPipeline struct {
	DoError      error
	ReturnValue  *pipeline.Receipt
	LastCall     string
	LastCallFact types.Fact
	LastCallID   string
	LastCallEnd  time.Time
}

func (m *MockPipeline) Ingest(ctx context.Context, fact types.Fact) (*pipeline.Receipt, error) {
	m.LastCall = "ingest"
	m.LastCallFact = fact
	if m.DoError != nil {
		return nil, m.DoError
	}
	return m.ReturnValue, nil
}
func (m *MockPipeline) Resolve(ctx context.Context, eventID string, end time.Time) (*pipeline.Receipt, error) {
	m.LastCall = "resolve"
	m.LastCallID = eventID
	m.LastCallEnd = end
	if m.DoError != nil {
		return nil, m.DoError
	}
	return m.ReturnValue, nil
}

type MockStatisticsProvider struct {
	DoError      error
	ReturnValue  types.DowntimeStatistic
	LastCall     string
	LastCallID   string
	LastCallFrom time.Time
	LastCallTo   time.Time
}

func (m *MockStatisticsProvider) Statistics(serviceID string, from time.Time, to time.Time) (types.DowntimeStatistic, error) {
	m.LastCall = "statistics"
	m.LastCallID = serviceID
	m.LastCallFrom = from
	m.LastCallTo = to
	if m.DoError != nil {
		return types.DowntimeStatistic{}, m.DoError
	}
	return m.ReturnValue, nil
}

type MockCatalogStore struct {
	DoError      bool
	Services     []types.Service
	Systems      []types.System
	Dependencies []types.DependencyEdge
	LastCall     string
	LastCallID   string
}

func (m *MockCatalogStore) UpsertService(svc types.Service) error {
	m.LastCall = "upsertservice"
	m.LastCallID = svc.ID
	if m.DoError {
		return errors.New("some error")
	}
	m.Services = append(m.Services, svc)
	return nil
}
func (m *MockCatalogStore) UpsertSystem(sys types.System) error {
	m.LastCall = "upsertsystem"
	m.LastCallID = sys.ID
	if m.DoError {
		return errors.New("some error")
	}
	m.Systems = append(m.Systems, sys)
	return nil
}
func (m *MockCatalogStore) InsertDependency(edge types.DependencyEdge) error {
	m.LastCall = "insertdependency"
	if m.DoError {
		return errors.New("some error")
	}
	m.Dependencies = append(m.Dependencies, edge)
	return nil
}
func (m *MockCatalogStore) DeleteDependency(edge types.DependencyEdge) error {
	m.LastCall = "deletedependency"
	if m.DoError {
		return errors.New("some error")
	}
	return nil
}
func (m *MockCatalogStore) DeleteService(id string) error {
	m.LastCall = "deleteservice"
	m.LastCallID = id
	if m.DoError {
		return errors.New("some error")
	}
	return nil
}
func (m *MockCatalogStore) DeleteSystem(id string) error {
	m.LastCall = "deletesystem"
	m.LastCallID = id
	if m.DoError {
		return errors.New("some error")
	}
	return nil
}
func (m *MockCatalogStore) ListServices() ([]types.Service, error) {
	m.LastCall = "listservices"
	if m.DoError {
		return nil, errors.New("some error")
	}
	return slices.Clone(m.Services), nil
}
func (m *MockCatalogStore) ListSystems() ([]types.System, error) {
	m.LastCall = "listsystems"
	if m.DoError {
		return nil, errors.New("some error")
	}
	return slices.Clone(m.Systems), nil
}
func (m *MockCatalogStore) ListDependencies() ([]types.DependencyEdge, error) {
	m.LastCall = "listdependencies"
	if m.DoError {
		return nil, errors.New("some error")
	}
	return slices.Clone(m.Dependencies), nil
}
