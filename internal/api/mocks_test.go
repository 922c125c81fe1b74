package api

import (
	"context"
	"time"

	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/service"
	"github.com/phrazzld/studytrack-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// pointerOr returns args.Get(i) as *T, or nil when the mock returned nil.
func pointerOr[T any](args mock.Arguments, i int) *T {
	if v := args.Get(i); v != nil {
		return v.(*T)
	}
	return nil
}

type MockUserService struct{ mock.Mock }

func (m *MockUserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	return pointerOr[domain.User](args, 0), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	return pointerOr[domain.User](args, 0), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	return pointerOr[domain.User](args, 0), args.Error(1)
}

type MockSessionService struct{ mock.Mock }

func (m *MockSessionService) Start(
	ctx context.Context,
	userID int64,
	in service.StartSessionInput,
) (*domain.StudySession, error) {
	args := m.Called(ctx, userID, in)
	return pointerOr[domain.StudySession](args, 0), args.Error(1)
}

func (m *MockSessionService) Pause(ctx context.Context, userID, sessionID int64) (*domain.Pause, error) {
	args := m.Called(ctx, userID, sessionID)
	return pointerOr[domain.Pause](args, 0), args.Error(1)
}

func (m *MockSessionService) Resume(ctx context.Context, userID, pauseID int64) (bool, error) {
	args := m.Called(ctx, userID, pauseID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionService) Finish(ctx context.Context, userID, sessionID int64) (bool, error) {
	args := m.Called(ctx, userID, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionService) Get(ctx context.Context, userID, sessionID int64) (*domain.StudySession, error) {
	args := m.Called(ctx, userID, sessionID)
	return pointerOr[domain.StudySession](args, 0), args.Error(1)
}

func (m *MockSessionService) ElapsedSeconds(ctx context.Context, userID, sessionID int64) (int64, error) {
	args := m.Called(ctx, userID, sessionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionService) List(
	ctx context.Context,
	userID int64,
	filter store.SessionFilter,
) ([]*domain.StudySession, error) {
	args := m.Called(ctx, userID, filter)
	list, _ := args.Get(0).([]*domain.StudySession)
	return list, args.Error(1)
}

func (m *MockSessionService) Delete(ctx context.Context, userID, sessionID int64) error {
	return m.Called(ctx, userID, sessionID).Error(0)
}

type MockReportService struct{ mock.Mock }

func (m *MockReportService) Calendar(ctx context.Context, userID int64, month, year int) (*domain.Calendar, error) {
	args := m.Called(ctx, userID, month, year)
	return pointerOr[domain.Calendar](args, 0), args.Error(1)
}

func (m *MockReportService) Dashboard(
	ctx context.Context,
	userID int64,
	period domain.Period,
	day time.Time,
) (*domain.Dashboard, error) {
	args := m.Called(ctx, userID, period, day)
	return pointerOr[domain.Dashboard](args, 0), args.Error(1)
}

type MockGoalService struct{ mock.Mock }

func (m *MockGoalService) Create(ctx context.Context, userID int64, in service.GoalInput) (*domain.Goal, error) {
	args := m.Called(ctx, userID, in)
	return pointerOr[domain.Goal](args, 0), args.Error(1)
}

func (m *MockGoalService) Get(ctx context.Context, userID, id int64) (*domain.Goal, error) {
	args := m.Called(ctx, userID, id)
	return pointerOr[domain.Goal](args, 0), args.Error(1)
}

func (m *MockGoalService) List(ctx context.Context, userID int64, completed *bool) ([]*domain.Goal, error) {
	args := m.Called(ctx, userID, completed)
	list, _ := args.Get(0).([]*domain.Goal)
	return list, args.Error(1)
}

func (m *MockGoalService) Update(ctx context.Context, userID, id int64, in service.GoalInput) (*domain.Goal, error) {
	args := m.Called(ctx, userID, id, in)
	return pointerOr[domain.Goal](args, 0), args.Error(1)
}

func (m *MockGoalService) UpdateProgress(ctx context.Context, userID, id int64, current float64) (*domain.Goal, error) {
	args := m.Called(ctx, userID, id, current)
	return pointerOr[domain.Goal](args, 0), args.Error(1)
}

func (m *MockGoalService) Complete(ctx context.Context, userID, id int64) (*domain.Goal, error) {
	args := m.Called(ctx, userID, id)
	return pointerOr[domain.Goal](args, 0), args.Error(1)
}

func (m *MockGoalService) Delete(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

type MockNoteService struct{ mock.Mock }

func (m *MockNoteService) Create(ctx context.Context, userID int64, in service.NoteInput) (*domain.Note, error) {
	args := m.Called(ctx, userID, in)
	return pointerOr[domain.Note](args, 0), args.Error(1)
}

func (m *MockNoteService) Get(ctx context.Context, userID, id int64) (*domain.Note, error) {
	args := m.Called(ctx, userID, id)
	return pointerOr[domain.Note](args, 0), args.Error(1)
}

func (m *MockNoteService) List(ctx context.Context, userID int64, sessionID *int64) ([]*domain.Note, error) {
	args := m.Called(ctx, userID, sessionID)
	list, _ := args.Get(0).([]*domain.Note)
	return list, args.Error(1)
}

func (m *MockNoteService) Update(ctx context.Context, userID, id int64, in service.NoteInput) (*domain.Note, error) {
	args := m.Called(ctx, userID, id, in)
	return pointerOr[domain.Note](args, 0), args.Error(1)
}

func (m *MockNoteService) Delete(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockNoteService) History(ctx context.Context, userID, id int64) ([]domain.NoteHistory, error) {
	args := m.Called(ctx, userID, id)
	list, _ := args.Get(0).([]domain.NoteHistory)
	return list, args.Error(1)
}

var (
	_ service.UserService    = (*MockUserService)(nil)
	_ service.SessionService = (*MockSessionService)(nil)
	_ service.ReportService  = (*MockReportService)(nil)
	_ service.GoalService    = (*MockGoalService)(nil)
	_ service.NoteService    = (*MockNoteService)(nil)
)

type MockCatalogService struct{ mock.Mock }

func (m *MockCatalogService) CreateCategory(
	ctx context.Context,
	userID int64,
	in service.CategoryInput,
) (*domain.Category, error) {
	args := m.Called(ctx, userID, in)
	return pointerOr[domain.Category](args, 0), args.Error(1)
}

func (m *MockCatalogService) GetCategory(ctx context.Context, userID, id int64) (*domain.Category, error) {
	args := m.Called(ctx, userID, id)
	return pointerOr[domain.Category](args, 0), args.Error(1)
}

func (m *MockCatalogService) ListCategories(ctx context.Context, userID int64) ([]*domain.Category, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]*domain.Category)
	return list, args.Error(1)
}

func (m *MockCatalogService) UpdateCategory(
	ctx context.Context,
	userID, id int64,
	in service.CategoryInput,
) (*domain.Category, error) {
	args := m.Called(ctx, userID, id, in)
	return pointerOr[domain.Category](args, 0), args.Error(1)
}

func (m *MockCatalogService) DeleteCategory(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockCatalogService) CreateSubject(
	ctx context.Context,
	userID int64,
	in service.SubjectInput,
) (*domain.Subject, error) {
	args := m.Called(ctx, userID, in)
	return pointerOr[domain.Subject](args, 0), args.Error(1)
}

func (m *MockCatalogService) GetSubject(ctx context.Context, userID, id int64) (*domain.Subject, error) {
	args := m.Called(ctx, userID, id)
	return pointerOr[domain.Subject](args, 0), args.Error(1)
}

func (m *MockCatalogService) ListSubjects(
	ctx context.Context,
	userID int64,
	categoryID *int64,
) ([]*domain.Subject, error) {
	args := m.Called(ctx, userID, categoryID)
	list, _ := args.Get(0).([]*domain.Subject)
	return list, args.Error(1)
}

func (m *MockCatalogService) UpdateSubject(
	ctx context.Context,
	userID, id int64,
	in service.SubjectInput,
) (*domain.Subject, error) {
	args := m.Called(ctx, userID, id, in)
	return pointerOr[domain.Subject](args, 0), args.Error(1)
}

func (m *MockCatalogService) DeleteSubject(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockCatalogService) CreateTopic(ctx context.Context, userID int64, in service.TopicInput) (*domain.Topic, error) {
	args := m.Called(ctx, userID, in)
	return pointerOr[domain.Topic](args, 0), args.Error(1)
}

func (m *MockCatalogService) GetTopic(ctx context.Context, userID, id int64) (*domain.Topic, error) {
	args := m.Called(ctx, userID, id)
	return pointerOr[domain.Topic](args, 0), args.Error(1)
}

func (m *MockCatalogService) ListTopics(ctx context.Context, userID int64, subjectID *int64) ([]*domain.Topic, error) {
	args := m.Called(ctx, userID, subjectID)
	list, _ := args.Get(0).([]*domain.Topic)
	return list, args.Error(1)
}

func (m *MockCatalogService) UpdateTopic(
	ctx context.Context,
	userID, id int64,
	in service.TopicInput,
) (*domain.Topic, error) {
	args := m.Called(ctx, userID, id, in)
	return pointerOr[domain.Topic](args, 0), args.Error(1)
}

func (m *MockCatalogService) DeleteTopic(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

var _ service.CatalogService = (*MockCatalogService)(nil)
