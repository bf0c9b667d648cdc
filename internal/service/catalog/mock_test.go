package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/solarsite/internal/domain"
)

var _ projectStore = &projectStoreMock{}

type projectStoreMock struct {
	ListFunc    func(ctx context.Context, filter domain.ProjectFilter) ([]domain.Project, error)
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	CreateFunc  func(ctx context.Context, in domain.NewProject) (*domain.Project, error)
	UpdateFunc  func(ctx context.Context, id uuid.UUID, patch domain.ProjectPatch) (*domain.Project, error)
	DeleteFunc  func(ctx context.Context, id uuid.UUID) error
	CitiesFunc  func(ctx context.Context) ([]string, error)

	calls struct {
		List []struct {
			Filter domain.ProjectFilter
		}
	}
	lockList sync.RWMutex
}

func (mock *projectStoreMock) List(ctx context.Context, filter domain.ProjectFilter) ([]domain.Project, error) {
	if mock.ListFunc == nil {
		panic("projectStoreMock.ListFunc: method is nil but projectStore.List was just called")
	}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, struct{ Filter domain.ProjectFilter }{Filter: filter})
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, filter)
}

func (mock *projectStoreMock) ListCalls() []struct{ Filter domain.ProjectFilter } {
	mock.lockList.RLock()
	defer mock.lockList.RUnlock()
	return mock.calls.List
}

func (mock *projectStoreMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	if mock.GetByIDFunc == nil {
		panic("projectStoreMock.GetByIDFunc: method is nil but projectStore.GetByID was just called")
	}
	return mock.GetByIDFunc(ctx, id)
}

func (mock *projectStoreMock) Create(ctx context.Context, in domain.NewProject) (*domain.Project, error) {
	if mock.CreateFunc == nil {
		panic("projectStoreMock.CreateFunc: method is nil but projectStore.Create was just called")
	}
	return mock.CreateFunc(ctx, in)
}

func (mock *projectStoreMock) Update(ctx context.Context, id uuid.UUID, patch domain.ProjectPatch) (*domain.Project, error) {
	if mock.UpdateFunc == nil {
		panic("projectStoreMock.UpdateFunc: method is nil but projectStore.Update was just called")
	}
	return mock.UpdateFunc(ctx, id, patch)
}

func (mock *projectStoreMock) Delete(ctx context.Context, id uuid.UUID) error {
	if mock.DeleteFunc == nil {
		panic("projectStoreMock.DeleteFunc: method is nil but projectStore.Delete was just called")
	}
	return mock.DeleteFunc(ctx, id)
}

func (mock *projectStoreMock) Cities(ctx context.Context) ([]string, error) {
	if mock.CitiesFunc == nil {
		panic("projectStoreMock.CitiesFunc: method is nil but projectStore.Cities was just called")
	}
	return mock.CitiesFunc(ctx)
}

var _ publisher = &publisherMock{}

type publisherMock struct {
	PublishFunc func(ctx context.Context, topic string, data any) error

	calls struct {
		Publish []struct {
			Topic string
			Data  any
		}
	}
	lockPublish sync.RWMutex
}

func (mock *publisherMock) Publish(ctx context.Context, topic string, data any) error {
	mock.lockPublish.Lock()
	mock.calls.Publish = append(mock.calls.Publish, struct {
		Topic string
		Data  any
	}{Topic: topic, Data: data})
	mock.lockPublish.Unlock()
	if mock.PublishFunc == nil {
		return nil
	}
	return mock.PublishFunc(ctx, topic, data)
}

func (mock *publisherMock) PublishCalls() []struct {
	Topic string
	Data  any
} {
	mock.lockPublish.RLock()
	defer mock.lockPublish.RUnlock()
	return mock.calls.Publish
}

var _ statsStore = &statsStoreMock{}

type statsStoreMock struct {
	ComputeFunc func(ctx context.Context) (domain.DashboardStats, error)
}

func (mock *statsStoreMock) Compute(ctx context.Context) (domain.DashboardStats, error) {
	if mock.ComputeFunc == nil {
		panic("statsStoreMock.ComputeFunc: method is nil but statsStore.Compute was just called")
	}
	return mock.ComputeFunc(ctx)
}
