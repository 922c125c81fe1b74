package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/events"
	"github.com/phrazzld/studytrack-api/internal/store"
	"github.com/stretchr/testify/require"
)

// memDB is the shared state behind the in-memory stores. Transactions are
// not modelled: WithTx returns the same store.
type memDB struct {
	mu     sync.Mutex
	nextID int64

	categories map[int64]domain.Category
	subjects   map[int64]domain.Subject
	topics     map[int64]domain.Topic
	sessions   map[int64]domain.StudySession
	pauses     map[int64]domain.Pause
	goals      map[int64]domain.Goal
	notes      map[int64]domain.Note
	history    []domain.NoteHistory
	users      map[int64]domain.User

	// failures maps "store.Method" to the error that method returns.
	failures map[string]error
}

func newMemDB() *memDB {
	return &memDB{
		categories: map[int64]domain.Category{},
		subjects:   map[int64]domain.Subject{},
		topics:     map[int64]domain.Topic{},
		sessions:   map[int64]domain.StudySession{},
		pauses:     map[int64]domain.Pause{},
		goals:      map[int64]domain.Goal{},
		notes:      map[int64]domain.Note{},
		users:      map[int64]domain.User{},
		failures:   map[string]error{},
	}
}

func (m *memDB) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memDB) fail(op string) error {
	return m.failures[op]
}

// memCategories implements store.CategoryStore.
type memCategories struct{ db *memDB }

func (s memCategories) Create(_ context.Context, c *domain.Category) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("categories.Create"); err != nil {
		return err
	}
	for _, other := range s.db.categories {
		if other.UserID == c.UserID && other.Name == c.Name {
			return store.ErrDuplicate
		}
	}
	c.ID = s.db.id()
	s.db.categories[c.ID] = *c
	return nil
}

func (s memCategories) GetByID(_ context.Context, id, userID int64) (*domain.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.categories[id]
	if !ok || c.UserID != userID {
		return nil, store.ErrCategoryNotFound
	}
	return &c, nil
}

func (s memCategories) List(_ context.Context, userID int64) ([]*domain.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Category
	for _, c := range s.db.categories {
		if c.UserID == userID {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s memCategories) Update(_ context.Context, c *domain.Category) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.categories[c.ID]; !ok {
		return store.ErrCategoryNotFound
	}
	s.db.categories[c.ID] = *c
	return nil
}

func (s memCategories) Delete(_ context.Context, id, userID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.categories[id]
	if !ok || c.UserID != userID {
		return store.ErrCategoryNotFound
	}
	for _, session := range s.db.sessions {
		if session.CategoryID == id {
			return store.ErrForeignKey
		}
	}
	delete(s.db.categories, id)
	return nil
}

func (s memCategories) WithTx(*sql.Tx) store.CategoryStore { return s }

// memSubjects implements store.SubjectStore.
type memSubjects struct{ db *memDB }

func (s memSubjects) Create(_ context.Context, subject *domain.Subject) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, other := range s.db.subjects {
		if other.UserID == subject.UserID && other.Name == subject.Name {
			return store.ErrDuplicate
		}
	}
	subject.ID = s.db.id()
	s.db.subjects[subject.ID] = *subject
	return nil
}

func (s memSubjects) GetByID(_ context.Context, id, userID int64) (*domain.Subject, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	subject, ok := s.db.subjects[id]
	if !ok || subject.UserID != userID {
		return nil, store.ErrSubjectNotFound
	}
	return &subject, nil
}

func (s memSubjects) List(_ context.Context, userID int64, categoryID *int64) ([]*domain.Subject, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Subject
	for _, subject := range s.db.subjects {
		if subject.UserID == userID && (categoryID == nil || subject.CategoryID == *categoryID) {
			subject := subject
			out = append(out, &subject)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s memSubjects) Update(_ context.Context, subject *domain.Subject) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.subjects[subject.ID] = *subject
	return nil
}

func (s memSubjects) Delete(_ context.Context, id, userID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	subject, ok := s.db.subjects[id]
	if !ok || subject.UserID != userID {
		return store.ErrSubjectNotFound
	}
	delete(s.db.subjects, id)
	return nil
}

func (s memSubjects) WithTx(*sql.Tx) store.SubjectStore { return s }

// memTopics implements store.TopicStore.
type memTopics struct{ db *memDB }

func (s memTopics) Create(_ context.Context, t *domain.Topic) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t.ID = s.db.id()
	s.db.topics[t.ID] = *t
	return nil
}

func (s memTopics) GetByID(_ context.Context, id, userID int64) (*domain.Topic, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.topics[id]
	if !ok || t.UserID != userID {
		return nil, store.ErrTopicNotFound
	}
	return &t, nil
}

func (s memTopics) List(_ context.Context, userID int64, subjectID *int64) ([]*domain.Topic, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Topic
	for _, t := range s.db.topics {
		if t.UserID == userID && (subjectID == nil || t.SubjectID == *subjectID) {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s memTopics) Update(_ context.Context, t *domain.Topic) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.topics[t.ID] = *t
	return nil
}

func (s memTopics) Delete(_ context.Context, id, userID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.topics[id]
	if !ok || t.UserID != userID {
		return store.ErrTopicNotFound
	}
	delete(s.db.topics, id)
	return nil
}

func (s memTopics) WithTx(*sql.Tx) store.TopicStore { return s }

// memSessions implements store.SessionStore.
type memSessions struct{ db *memDB }

func (s memSessions) Create(_ context.Context, session *domain.StudySession) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("sessions.Create"); err != nil {
		return err
	}
	session.ID = s.db.id()
	s.db.sessions[session.ID] = *session
	return nil
}

func (s memSessions) GetByID(_ context.Context, id, userID int64) (*domain.StudySession, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("sessions.GetByID"); err != nil {
		return nil, err
	}
	session, ok := s.db.sessions[id]
	if !ok || session.UserID != userID {
		return nil, store.ErrSessionNotFound
	}
	return &session, nil
}

func (s memSessions) GetByIDForUpdate(ctx context.Context, id, userID int64) (*domain.StudySession, error) {
	return s.GetByID(ctx, id, userID)
}

func (s memSessions) List(
	_ context.Context,
	userID int64,
	filter store.SessionFilter,
	now time.Time,
) ([]*domain.StudySession, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.StudySession
	for _, session := range s.db.sessions {
		switch {
		case session.UserID != userID,
			filter.Status != nil && session.Status != *filter.Status,
			filter.SubjectID != nil && session.SubjectID != *filter.SubjectID,
			filter.TopicID != nil && session.TopicID != *filter.TopicID,
			filter.From != nil && session.StartedAt.Before(*filter.From),
			filter.To != nil && !session.StartedAt.Before(*filter.To):
			continue
		}
		session := session
		session.ElapsedSeconds = domain.ElapsedSeconds(session.StartedAt, session.EndedAt, s.pausesOf(session.ID), now)
		out = append(out, &session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (s memSessions) pausesOf(sessionID int64) []domain.Pause {
	var out []domain.Pause
	for _, p := range s.db.pauses {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	return out
}

func (s memSessions) unfinished(id, userID int64) (domain.StudySession, error) {
	session, ok := s.db.sessions[id]
	if !ok || session.UserID != userID || session.Status == domain.SessionFinished {
		return domain.StudySession{}, store.ErrSessionNotFound
	}
	return session, nil
}

func (s memSessions) UpdateStatus(
	_ context.Context,
	id, userID int64,
	status domain.SessionStatus,
	at time.Time,
) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	session, err := s.unfinished(id, userID)
	if err != nil {
		return err
	}
	session.Status = status
	session.UpdatedAt = at
	s.db.sessions[id] = session
	return nil
}

func (s memSessions) Finish(_ context.Context, id, userID int64, endedAt time.Time, elapsed int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("sessions.Finish"); err != nil {
		return err
	}
	session, err := s.unfinished(id, userID)
	if err != nil {
		return err
	}
	session.Status = domain.SessionFinished
	session.EndedAt = &endedAt
	session.ElapsedSeconds = elapsed
	session.UpdatedAt = endedAt
	s.db.sessions[id] = session
	return nil
}

func (s memSessions) Delete(_ context.Context, id, userID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	session, ok := s.db.sessions[id]
	if !ok || session.UserID != userID {
		return store.ErrSessionNotFound
	}
	delete(s.db.sessions, id)
	for pid, p := range s.db.pauses {
		if p.SessionID == id {
			delete(s.db.pauses, pid)
		}
	}
	for nid, n := range s.db.notes {
		if n.SessionID == id {
			delete(s.db.notes, nid)
		}
	}
	return nil
}

func (s memSessions) WithTx(*sql.Tx) store.SessionStore { return s }

// memPauses implements store.PauseStore.
type memPauses struct{ db *memDB }

func (s memPauses) Create(_ context.Context, p *domain.Pause) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, other := range s.db.pauses {
		if other.SessionID == p.SessionID && other.IsOpen() {
			return store.ErrOpenPauseExists
		}
	}
	p.ID = s.db.id()
	s.db.pauses[p.ID] = *p
	return nil
}

func (s memPauses) GetByID(_ context.Context, id, userID int64) (*domain.Pause, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.pauses[id]
	if !ok || p.UserID != userID {
		return nil, store.ErrPauseNotFound
	}
	return &p, nil
}

func (s memPauses) GetOpenForUpdate(ctx context.Context, id, userID int64) (*domain.Pause, error) {
	p, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !p.IsOpen() {
		return nil, store.ErrPauseNotFound
	}
	return p, nil
}

func (s memPauses) Close(_ context.Context, id, userID int64, endedAt time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.pauses[id]
	if !ok || p.UserID != userID || !p.IsOpen() {
		return store.ErrPauseNotFound
	}
	p.EndedAt = &endedAt
	s.db.pauses[id] = p
	return nil
}

func (s memPauses) CloseOpenForSession(_ context.Context, sessionID, userID int64, endedAt time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var closed int64
	for id, p := range s.db.pauses {
		if p.SessionID == sessionID && p.UserID == userID && p.IsOpen() {
			p.EndedAt = &endedAt
			s.db.pauses[id] = p
			closed++
		}
	}
	return closed, nil
}

func (s memPauses) ListBySession(_ context.Context, sessionID, userID int64) ([]domain.Pause, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []domain.Pause
	for _, p := range s.db.pauses {
		if p.SessionID == sessionID && p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

func (s memPauses) WithTx(*sql.Tx) store.PauseStore { return s }

// memGoals implements store.GoalStore.
type memGoals struct{ db *memDB }

func (s memGoals) Create(_ context.Context, g *domain.Goal) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g.ID = s.db.id()
	s.db.goals[g.ID] = *g
	return nil
}

func (s memGoals) GetByID(_ context.Context, id, userID int64) (*domain.Goal, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g, ok := s.db.goals[id]
	if !ok || g.UserID != userID {
		return nil, store.ErrGoalNotFound
	}
	return &g, nil
}

func (s memGoals) List(_ context.Context, userID int64, completed *bool) ([]*domain.Goal, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Goal
	for _, g := range s.db.goals {
		if g.UserID == userID && (completed == nil || g.Completed == *completed) {
			g := g
			out = append(out, &g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memGoals) Update(_ context.Context, g *domain.Goal) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.goals[g.ID] = *g
	return nil
}

func (s memGoals) Delete(_ context.Context, id, userID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g, ok := s.db.goals[id]
	if !ok || g.UserID != userID {
		return store.ErrGoalNotFound
	}
	delete(s.db.goals, id)
	return nil
}

func (s memGoals) WithTx(*sql.Tx) store.GoalStore { return s }

// memNotes implements store.NoteStore.
type memNotes struct{ db *memDB }

func (s memNotes) Create(_ context.Context, n *domain.Note) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n.ID = s.db.id()
	s.db.notes[n.ID] = *n
	return nil
}

func (s memNotes) GetByID(_ context.Context, id, userID int64) (*domain.Note, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n, ok := s.db.notes[id]
	if !ok || n.UserID != userID {
		return nil, store.ErrNoteNotFound
	}
	return &n, nil
}

func (s memNotes) GetByIDForUpdate(ctx context.Context, id, userID int64) (*domain.Note, error) {
	return s.GetByID(ctx, id, userID)
}

func (s memNotes) List(_ context.Context, userID int64, sessionID *int64) ([]*domain.Note, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Note
	for _, n := range s.db.notes {
		if n.UserID == userID && (sessionID == nil || n.SessionID == *sessionID) {
			n := n
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memNotes) Update(_ context.Context, n *domain.Note) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("notes.Update"); err != nil {
		return err
	}
	s.db.notes[n.ID] = *n
	return nil
}

func (s memNotes) Delete(_ context.Context, id, userID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n, ok := s.db.notes[id]
	if !ok || n.UserID != userID {
		return store.ErrNoteNotFound
	}
	delete(s.db.notes, id)
	return nil
}

func (s memNotes) AddHistory(_ context.Context, h *domain.NoteHistory) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	h.ID = s.db.id()
	s.db.history = append(s.db.history, *h)
	return nil
}

func (s memNotes) ListHistory(_ context.Context, noteID, userID int64) ([]domain.NoteHistory, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []domain.NoteHistory
	for i := len(s.db.history) - 1; i >= 0; i-- {
		h := s.db.history[i]
		if h.NoteID == noteID && h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s memNotes) WithTx(*sql.Tx) store.NoteStore { return s }

var (
	_ store.CategoryStore = memCategories{}
	_ store.SubjectStore  = memSubjects{}
	_ store.TopicStore    = memTopics{}
	_ store.SessionStore  = memSessions{}
	_ store.PauseStore    = memPauses{}
	_ store.GoalStore     = memGoals{}
	_ store.NoteStore     = memNotes{}
)

// recordingEmitter keeps every emitted event.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.SessionEvent
	err    error
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.SessionEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.err
}

func (e *recordingEmitter) types() []events.EventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]events.EventType, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

// testClock is a settable Clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// txExpecter declares the transactions a test will run against sqlmock.
type txExpecter struct {
	mock sqlmock.Sqlmock
}

func (e txExpecter) commit(n int) {
	for i := 0; i < n; i++ {
		e.mock.ExpectBegin()
		e.mock.ExpectCommit()
	}
}

func (e txExpecter) rollback() {
	e.mock.ExpectBegin()
	e.mock.ExpectRollback()
}

// newMockDB returns a *sql.DB whose only job is to hand out transactions.
func newMockDB(t *testing.T) (*sql.DB, txExpecter) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, txExpecter{mock: mock}
}

// catalogFixture is one user's category, subject and topic.
type catalogFixture struct {
	userID     int64
	categoryID int64
	subjectID  int64
	topicID    int64
}

func seedCatalog(t *testing.T, db *memDB, userID int64, suffix string) catalogFixture {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c, err := domain.NewCategory(userID, "Concurso "+suffix, "", "", now)
	require.NoError(t, err)
	require.NoError(t, memCategories{db}.Create(ctx, c))

	subject, err := domain.NewSubject(userID, c.ID, "Direito "+suffix, "", now)
	require.NoError(t, err)
	require.NoError(t, memSubjects{db}.Create(ctx, subject))

	topic, err := domain.NewTopic(userID, subject.ID, "Constituição "+suffix, "", now)
	require.NoError(t, err)
	require.NoError(t, memTopics{db}.Create(ctx, topic))

	return catalogFixture{userID: userID, categoryID: c.ID, subjectID: subject.ID, topicID: topic.ID}
}
