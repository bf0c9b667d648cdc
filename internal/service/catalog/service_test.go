package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/solarsite/internal/adapter/cache"
	"github.com/heartmarshall/solarsite/internal/adapter/events"
	"github.com/heartmarshall/solarsite/internal/adapter/memory"
	"github.com/heartmarshall/solarsite/internal/backend"
	"github.com/heartmarshall/solarsite/internal/config"
	"github.com/heartmarshall/solarsite/internal/domain"
)

var (
	memorySelector = backend.Select(config.RemoteConfig{})
	remoteSelector = backend.Select(config.RemoteConfig{
		URL: "postgres://u:p@localhost:5432/solar",
		Key: "0123456789abcdef0123456789abcdef",
	})
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func memoryService(t *testing.T, pub publisher) (*Service, *memory.DB) {
	t.Helper()
	db := memory.New()
	svc := NewService(discardLogger(), memorySelector, Stores{
		Projects:  db.Projects(),
		Reviews:   db.Reviews(),
		Inquiries: db.Inquiries(),
		Settings:  db.Settings(),
		Stats:     db.Stats(),
	}, nil, pub)
	return svc, db
}

func ptr[T any](v T) *T { return &v }

func TestProjects_CreateThenGet(t *testing.T) {
	t.Parallel()
	svc, _ := memoryService(t, nil)
	ctx := context.Background()

	created := svc.Projects.Create(ctx, domain.NewProject{Title: "Rooftop", CapacityKW: 5, City: "Pune"})
	require.NotNil(t, created)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, domain.ProjectStatusActive, created.Status)
	assert.Equal(t, []string{}, created.Images)
	assert.Equal(t, []string{}, created.Tags)
	assert.False(t, created.CreatedAt.IsZero())

	got := svc.Projects.GetByID(ctx, created.ID)
	require.NotNil(t, got)
	assert.Equal(t, *created, *got)
}

func TestProjects_CreateInvalidReturnsNil(t *testing.T) {
	t.Parallel()
	svc, _ := memoryService(t, nil)

	assert.Nil(t, svc.Projects.Create(context.Background(), domain.NewProject{CapacityKW: -1}))
	assert.Empty(t, svc.Projects.List(context.Background(), domain.ProjectFilter{}))
}

func TestProjects_UpdateMissingIsNoop(t *testing.T) {
	t.Parallel()
	svc, _ := memoryService(t, nil)
	ctx := context.Background()

	svc.Projects.Create(ctx, domain.NewProject{Title: "A", City: "Pune"})
	before := svc.Projects.List(ctx, domain.ProjectFilter{})

	got := svc.Projects.Update(ctx, uuid.New(), domain.ProjectPatch{Title: ptr("B")})
	assert.Nil(t, got)
	assert.Equal(t, before, svc.Projects.List(ctx, domain.ProjectFilter{}))
}

func TestProjects_DeleteReportsExistence(t *testing.T) {
	t.Parallel()
	svc, _ := memoryService(t, nil)
	ctx := context.Background()

	p := svc.Projects.Create(ctx, domain.NewProject{Title: "A"})
	require.NotNil(t, p)

	assert.True(t, svc.Projects.Delete(ctx, p.ID))
	assert.False(t, svc.Projects.Delete(ctx, p.ID))
	assert.Nil(t, svc.Projects.GetByID(ctx, p.ID))
}

func TestMemoryMode_MutationVisibleToNextList(t *testing.T) {
	t.Parallel()
	svc, _ := memoryService(t, nil)
	ctx := context.Background()

	assert.Empty(t, svc.Projects.List(ctx, domain.ProjectFilter{City: "Pune"}))
	svc.Projects.Create(ctx, domain.NewProject{Title: "A", City: "Pune"})

	// No refresh happens in memory mode, Items keeps the old result.
	assert.Empty(t, svc.Projects.Items())
	assert.Len(t, svc.Projects.List(ctx, domain.ProjectFilter{City: "Pune"}), 1)
}

func TestReviews_ApproveAndListApproved(t *testing.T) {
	t.Parallel()
	pub := &publisherMock{}
	svc, _ := memoryService(t, pub)
	ctx := context.Background()

	r := svc.Reviews.Create(ctx, domain.NewReview{ReviewerName: "Asha", Rating: 5, Comment: "Great"})
	require.NotNil(t, r)
	assert.False(t, r.IsApproved)
	assert.Empty(t, svc.Reviews.ListApproved(ctx, nil))

	approved := svc.Reviews.Approve(ctx, r.ID, ptr("thanks"))
	require.NotNil(t, approved)
	assert.True(t, approved.IsApproved)
	assert.Equal(t, "thanks", *approved.AdminResponse)

	list := svc.Reviews.ListApproved(ctx, nil)
	require.Len(t, list, 1)
	assert.Equal(t, r.ID, list[0].ID)

	calls := pub.PublishCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, events.TopicReviewSubmitted, calls[0].Topic)
}

func TestReviews_ApproveMissing(t *testing.T) {
	t.Parallel()
	svc, _ := memoryService(t, nil)
	assert.Nil(t, svc.Reviews.Approve(context.Background(), uuid.New(), nil))
}

func TestInquiries_CreatePublishesAndSetStatus(t *testing.T) {
	t.Parallel()
	pub := &publisherMock{PublishFunc: func(context.Context, string, any) error {
		return errors.New("broker down")
	}}
	svc, _ := memoryService(t, pub)
	ctx := context.Background()

	in := svc.Inquiries.Create(ctx, domain.NewInquiry{Name: "Ravi", Email: "ravi@example.com", Message: "Quote please"})
	require.NotNil(t, in, "publish failures must not fail the call")
	assert.Equal(t, domain.InquiryStatusNew, in.Status)
	require.Len(t, pub.PublishCalls(), 1)
	assert.Equal(t, events.TopicInquiryCreated, pub.PublishCalls()[0].Topic)

	updated := svc.Inquiries.SetStatus(ctx, in.ID, domain.InquiryStatusResolved)
	require.NotNil(t, updated)
	assert.Equal(t, domain.InquiryStatusResolved, updated.Status)

	assert.Nil(t, svc.Inquiries.SetStatus(ctx, in.ID, domain.InquiryStatus("bogus")))
}

func TestInquiries_InvalidEmailDoesNotPublish(t *testing.T) {
	t.Parallel()
	pub := &publisherMock{}
	svc, _ := memoryService(t, pub)

	assert.Nil(t, svc.Inquiries.Create(context.Background(), domain.NewInquiry{Name: "Ravi", Email: "nope"}))
	assert.Empty(t, pub.PublishCalls())
}

func TestSettingsAndStats_Memory(t *testing.T) {
	t.Parallel()
	svc, _ := memoryService(t, nil)
	ctx := context.Background()

	s := svc.Settings.Get(ctx)
	require.NotNil(t, s)
	assert.Equal(t, domain.SettingsID, s.ID)

	assert.Nil(t, svc.Settings.Update(ctx, domain.SettingsPatch{TariffPerKWh: ptr(0.0)}))
	updated := svc.Settings.Update(ctx, domain.SettingsPatch{TariffPerKWh: ptr(9.5)})
	require.NotNil(t, updated)
	assert.Equal(t, 9.5, updated.TariffPerKWh)

	svc.Projects.Create(ctx, domain.NewProject{Title: "A", CapacityKW: 4.5})
	svc.Inquiries.Create(ctx, domain.NewInquiry{Name: "R", Email: "r@example.com", Message: "Hi"})
	st := svc.Stats.Compute(ctx)
	assert.Equal(t, 1, st.TotalProjects)
	assert.Equal(t, 4.5, st.TotalCapacity)
	assert.Equal(t, 1, st.PendingInquiries)
}

func TestStats_FailureYieldsZero(t *testing.T) {
	t.Parallel()
	svc := NewService(discardLogger(), remoteSelector, Stores{
		Stats: &statsStoreMock{ComputeFunc: func(context.Context) (domain.DashboardStats, error) {
			return domain.DashboardStats{}, errors.New("timeout")
		}},
	}, nil, nil)

	assert.Equal(t, domain.DashboardStats{}, svc.Stats.Compute(context.Background()))
}

func TestRemoteMode_MutationRefreshesLastList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var rows []domain.Project
	mock := &projectStoreMock{
		ListFunc: func(context.Context, domain.ProjectFilter) ([]domain.Project, error) {
			out := make([]domain.Project, len(rows))
			copy(out, rows)
			return out, nil
		},
		CreateFunc: func(_ context.Context, in domain.NewProject) (*domain.Project, error) {
			p := domain.Project{ID: uuid.New(), Title: in.Title, City: in.City, Images: []string{}, Tags: []string{}, CreatedAt: now, UpdatedAt: now}
			rows = append([]domain.Project{p}, rows...)
			return &p, nil
		},
	}

	svc := NewService(discardLogger(), remoteSelector, Stores{Projects: mock}, cache.NewMemory(time.Minute), nil)
	filter := domain.ProjectFilter{City: "Pune"}

	assert.Empty(t, svc.Projects.List(ctx, filter))
	assert.Empty(t, svc.Projects.List(ctx, filter))
	assert.Len(t, mock.ListCalls(), 1, "second list is served from the cache")

	created := svc.Projects.Create(ctx, domain.NewProject{Title: "A", City: "Pune"})
	require.NotNil(t, created)

	calls := mock.ListCalls()
	require.Len(t, calls, 2, "mutation re-fetches the most recent filter")
	assert.Equal(t, filter, calls[1].Filter)

	items := svc.Projects.Items()
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)

	// The refreshed result is cached again.
	assert.Len(t, svc.Projects.List(ctx, filter), 1)
	assert.Len(t, mock.ListCalls(), 2)
}

func TestRemoteMode_ListFailureKeepsItems(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fail := false
	mock := &projectStoreMock{
		ListFunc: func(context.Context, domain.ProjectFilter) ([]domain.Project, error) {
			if fail {
				return nil, errors.New("connection reset")
			}
			return []domain.Project{{ID: uuid.New(), Title: "A"}}, nil
		},
	}
	svc := NewService(discardLogger(), remoteSelector, Stores{Projects: mock}, nil, nil)

	require.Len(t, svc.Projects.List(ctx, domain.ProjectFilter{}), 1)
	fail = true
	assert.Empty(t, svc.Projects.List(ctx, domain.ProjectFilter{Search: "x"}))
	assert.Len(t, svc.Projects.Items(), 1)
}

func TestProjects_Cities(t *testing.T) {
	t.Parallel()
	mock := &projectStoreMock{CitiesFunc: func(context.Context) ([]string, error) {
		return nil, errors.New("boom")
	}}
	svc := NewService(discardLogger(), remoteSelector, Stores{Projects: mock}, nil, nil)

	assert.Equal(t, []string{}, svc.Projects.Cities(context.Background()))
}

func TestRemoteMode_ListRacingMutationIsNotCached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var (
		rows    []domain.Project
		calls   atomic.Int32
		started = make(chan struct{})
		release = make(chan struct{})
	)
	mock := &projectStoreMock{
		ListFunc: func(context.Context, domain.ProjectFilter) ([]domain.Project, error) {
			out := make([]domain.Project, len(rows))
			copy(out, rows)
			if calls.Add(1) == 1 {
				close(started)
				<-release
			}
			return out, nil
		},
		CreateFunc: func(_ context.Context, in domain.NewProject) (*domain.Project, error) {
			p := domain.Project{ID: uuid.New(), Title: in.Title, Images: []string{}, Tags: []string{}, CreatedAt: now, UpdatedAt: now}
			rows = append([]domain.Project{p}, rows...)
			return &p, nil
		},
	}
	svc := NewService(discardLogger(), remoteSelector, Stores{Projects: mock}, cache.NewMemory(time.Minute), nil)

	slow := make(chan []domain.Project)
	go func() { slow <- svc.Projects.List(ctx, domain.ProjectFilter{}) }()
	<-started

	created := svc.Projects.Create(ctx, domain.NewProject{Title: "Carport"})
	require.NotNil(t, created)
	close(release)
	assert.Empty(t, <-slow, "the slow read began before the create")

	list := svc.Projects.List(ctx, domain.ProjectFilter{})
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	items := svc.Projects.Items()
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)
}

func remoteMemoryService(t *testing.T) *Service {
	t.Helper()
	db := memory.New()
	return NewService(discardLogger(), remoteSelector, Stores{
		Projects:  db.Projects(),
		Reviews:   db.Reviews(),
		Inquiries: db.Inquiries(),
		Settings:  db.Settings(),
		Stats:     db.Stats(),
	}, cache.NewMemory(time.Minute), nil)
}

func TestRemoteMode_ProjectChangesReachReviewAndInquiryLists(t *testing.T) {
	t.Parallel()
	svc := remoteMemoryService(t)
	ctx := context.Background()

	p := svc.Projects.Create(ctx, domain.NewProject{Title: "Old", City: "Pune"})
	require.NotNil(t, p)
	require.NotNil(t, svc.Reviews.Create(ctx, domain.NewReview{ProjectID: &p.ID, ReviewerName: "Asha", Rating: 5, Comment: "Great"}))
	require.NotNil(t, svc.Inquiries.Create(ctx, domain.NewInquiry{ProjectID: &p.ID, Name: "Ravi", Email: "ravi@example.com", Message: "Quote"}))

	reviews := svc.Reviews.List(ctx, domain.ReviewFilter{})
	require.Len(t, reviews, 1)
	require.NotNil(t, reviews[0].Project)
	assert.Equal(t, "Old", reviews[0].Project.Title)
	require.Len(t, svc.Inquiries.List(ctx, domain.InquiryFilter{}), 1)

	require.NotNil(t, svc.Projects.Update(ctx, p.ID, domain.ProjectPatch{Title: ptr("New")}))

	reviews = svc.Reviews.List(ctx, domain.ReviewFilter{})
	require.Len(t, reviews, 1)
	assert.Equal(t, "New", reviews[0].Project.Title)
	assert.Equal(t, "New", svc.Reviews.Items()[0].Project.Title, "current view refreshed too")
	assert.Equal(t, "New", svc.Inquiries.List(ctx, domain.InquiryFilter{})[0].Project.Title)

	require.True(t, svc.Projects.Delete(ctx, p.ID))

	reviews = svc.Reviews.List(ctx, domain.ReviewFilter{})
	require.Len(t, reviews, 1)
	assert.Nil(t, reviews[0].ProjectID)
	assert.Nil(t, reviews[0].Project)
	inquiries := svc.Inquiries.List(ctx, domain.InquiryFilter{})
	require.Len(t, inquiries, 1)
	assert.Nil(t, inquiries[0].ProjectID)
}

func TestService_ListsChangedFlushesCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rows := []domain.Project{{ID: uuid.New(), Title: "A"}}
	mock := &projectStoreMock{
		ListFunc: func(context.Context, domain.ProjectFilter) ([]domain.Project, error) {
			out := make([]domain.Project, len(rows))
			copy(out, rows)
			return out, nil
		},
	}
	svc := NewService(discardLogger(), remoteSelector, Stores{Projects: mock}, cache.NewMemory(time.Minute), nil)

	require.Len(t, svc.Projects.Query(ctx, domain.ProjectFilter{}), 1)

	// Another process adds a row; the cached answer stands until notified.
	rows = append(rows, domain.Project{ID: uuid.New(), Title: "B"})
	assert.Len(t, svc.Projects.Query(ctx, domain.ProjectFilter{}), 1)

	assert.True(t, svc.ListsChanged(ctx, "projects"))
	assert.Len(t, svc.Projects.Query(ctx, domain.ProjectFilter{}), 2)

	rows = append(rows, domain.Project{ID: uuid.New(), Title: "C"})
	svc.FlushLists(ctx)
	assert.Len(t, svc.Projects.Query(ctx, domain.ProjectFilter{}), 3)

	assert.False(t, svc.ListsChanged(ctx, "settings"))
}

func TestQuery_LeavesCurrentViewAlone(t *testing.T) {
	t.Parallel()
	svc := remoteMemoryService(t)
	ctx := context.Background()

	require.NotNil(t, svc.Projects.Create(ctx, domain.NewProject{Title: "Pune roof", City: "Pune"}))
	require.NotNil(t, svc.Projects.Create(ctx, domain.NewProject{Title: "Nashik farm", City: "Nashik"}))
	r := svc.Reviews.Create(ctx, domain.NewReview{ReviewerName: "Asha", Rating: 4, Comment: "Good"})
	require.NotNil(t, r)

	require.Len(t, svc.Projects.List(ctx, domain.ProjectFilter{City: "Pune"}), 1)
	require.Len(t, svc.Reviews.List(ctx, domain.ReviewFilter{}), 1)

	assert.Len(t, svc.Projects.Query(ctx, domain.ProjectFilter{City: "Nashik"}), 1)
	assert.Empty(t, svc.Reviews.ListApproved(ctx, nil))

	// A later mutation re-runs the admin's filter, not the public one.
	require.NotNil(t, svc.Projects.Create(ctx, domain.NewProject{Title: "Pune carport", City: "Pune"}))
	items := svc.Projects.Items()
	require.Len(t, items, 2)
	for _, p := range items {
		assert.Equal(t, "Pune", p.City)
	}
	assert.Len(t, svc.Reviews.Items(), 1, "pending review still in the admin view")
}
