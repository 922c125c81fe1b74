package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/platform/postgres/queries"
	"github.com/phrazzld/studytrack-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	mockNow     = time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)
	sessionCols = []string{
		"id", "usuario_id", "categoria_id", "materia_id", "topico_id", "inicio", "fim", "status",
		"criado_em", "atualizado_em",
	}
)

type mockEnv struct {
	mock    sqlmock.Sqlmock
	queries *queries.Registry
	db      store.DBTX
}

func newMockEnv(t *testing.T) *mockEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	q, err := queries.Default()
	require.NoError(t, err)

	return &mockEnv{mock: mock, queries: q, db: db}
}

// sql returns the statement as a literal regexp for sqlmock.
func (e *mockEnv) sql(name string) string {
	return regexp.QuoteMeta(e.queries.MustGet(name))
}

func TestPostgresSessionStore_Create(t *testing.T) {
	t.Parallel()
	env := newMockEnv(t)
	s := NewPostgresSessionStore(env.db, env.queries, nil)

	session, err := domain.NewStudySession(1, 2, 3, 4, mockNow)
	require.NoError(t, err)

	env.mock.ExpectQuery(env.sql("session.create")).
		WithArgs(int64(1), int64(2), int64(3), int64(4), mockNow, "em_andamento", mockNow, mockNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	require.NoError(t, s.Create(context.Background(), session))
	assert.Equal(t, int64(42), session.ID)
}

func TestPostgresSessionStore_Create_ForeignKey(t *testing.T) {
	t.Parallel()
	env := newMockEnv(t)
	s := NewPostgresSessionStore(env.db, env.queries, nil)

	session, err := domain.NewStudySession(1, 2, 3, 4, mockNow)
	require.NoError(t, err)

	env.mock.ExpectQuery(env.sql("session.create")).
		WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode})

	err = s.Create(context.Background(), session)
	assert.ErrorIs(t, err, store.ErrForeignKey)
}

func TestPostgresSessionStore_GetByID(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		env := newMockEnv(t)
		s := NewPostgresSessionStore(env.db, env.queries, nil)

		ended := mockNow.Add(time.Hour)
		env.mock.ExpectQuery(env.sql("session.get")).
			WithArgs(int64(7), int64(1)).
			WillReturnRows(sqlmock.NewRows(sessionCols).
				AddRow(int64(7), int64(1), int64(2), int64(3), int64(4), mockNow, ended, "finalizada", mockNow, ended))

		got, err := s.GetByID(context.Background(), 7, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.SessionFinished, got.Status)
		require.NotNil(t, got.EndedAt)
		assert.Equal(t, ended, *got.EndedAt)
	})

	t.Run("other owner reads as missing", func(t *testing.T) {
		t.Parallel()
		env := newMockEnv(t)
		s := NewPostgresSessionStore(env.db, env.queries, nil)

		env.mock.ExpectQuery(env.sql("session.get")).
			WithArgs(int64(7), int64(99)).
			WillReturnRows(sqlmock.NewRows(sessionCols))

		_, err := s.GetByID(context.Background(), 7, 99)
		assert.ErrorIs(t, err, store.ErrSessionNotFound)
	})
}

func TestPostgresSessionStore_List(t *testing.T) {
	t.Parallel()
	env := newMockEnv(t)
	s := NewPostgresSessionStore(env.db, env.queries, nil)

	subjectID := int64(3)
	status := domain.SessionPaused
	filter := store.SessionFilter{Status: &status, SubjectID: &subjectID}

	cols := append(append([]string{}, sessionCols...), "tempo_segundos")
	env.mock.ExpectQuery(env.sql("session.list")).
		WithArgs(int64(1), "pausada", int64(3), nil, nil, nil, defaultSessionListLimit, 0, mockNow).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(8), int64(1), int64(2), int64(3), int64(4), mockNow.Add(-time.Hour), nil, "pausada",
				mockNow, mockNow, int64(1500)))

	sessions, err := s.List(context.Background(), 1, filter, mockNow)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, int64(1500), sessions[0].ElapsedSeconds)
	assert.Nil(t, sessions[0].EndedAt)
}

func TestPostgresSessionStore_UpdateStatus(t *testing.T) {
	t.Parallel()

	t.Run("updated", func(t *testing.T) {
		t.Parallel()
		env := newMockEnv(t)
		s := NewPostgresSessionStore(env.db, env.queries, nil)

		env.mock.ExpectExec(env.sql("session.update_status")).
			WithArgs(int64(7), int64(1), "pausada", mockNow).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.UpdateStatus(context.Background(), 7, 1, domain.SessionPaused, mockNow))
	})

	t.Run("finished session does not match", func(t *testing.T) {
		t.Parallel()
		env := newMockEnv(t)
		s := NewPostgresSessionStore(env.db, env.queries, nil)

		env.mock.ExpectExec(env.sql("session.update_status")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.UpdateStatus(context.Background(), 7, 1, domain.SessionPaused, mockNow)
		assert.ErrorIs(t, err, store.ErrSessionNotFound)
	})
}

func TestPostgresSessionStore_Finish(t *testing.T) {
	t.Parallel()
	env := newMockEnv(t)
	s := NewPostgresSessionStore(env.db, env.queries, nil)

	env.mock.ExpectExec(env.sql("session.finish")).
		WithArgs(int64(7), int64(1), mockNow, int64(1500)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, s.Finish(context.Background(), 7, 1, mockNow, 1500))
}

func TestPostgresSessionStore_DatabaseErrorIsWrapped(t *testing.T) {
	t.Parallel()
	env := newMockEnv(t)
	s := NewPostgresSessionStore(env.db, env.queries, nil)

	env.mock.ExpectExec(env.sql("session.delete")).
		WillReturnError(errors.New("connection refused"))

	err := s.Delete(context.Background(), 7, 1)
	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "session", storeErr.Entity)
	assert.Equal(t, "delete", storeErr.Operation)
}

func TestPostgresPauseStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		t.Parallel()
		env := newMockEnv(t)
		s := NewPostgresPauseStore(env.db, env.queries, nil)

		env.mock.ExpectQuery(env.sql("pause.create")).
			WithArgs(int64(1), int64(7), mockNow).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

		p := &domain.Pause{UserID: 1, SessionID: 7, StartedAt: mockNow}
		require.NoError(t, s.Create(context.Background(), p))
		assert.Equal(t, int64(3), p.ID)
	})

	t.Run("second open pause rejected", func(t *testing.T) {
		t.Parallel()
		env := newMockEnv(t)
		s := NewPostgresPauseStore(env.db, env.queries, nil)

		env.mock.ExpectQuery(env.sql("pause.create")).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: constraintOpenPause})

		err := s.Create(context.Background(), &domain.Pause{UserID: 1, SessionID: 7, StartedAt: mockNow})
		assert.ErrorIs(t, err, store.ErrOpenPauseExists)
		assert.True(t, store.IsDuplicateError(err))
	})
}

func TestPostgresPauseStore_CloseOpenForSession(t *testing.T) {
	t.Parallel()
	env := newMockEnv(t)
	s := NewPostgresPauseStore(env.db, env.queries, nil)

	env.mock.ExpectExec(env.sql("pause.close_open_for_session")).
		WithArgs(int64(7), int64(1), mockNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := s.CloseOpenForSession(context.Background(), 7, 1, mockNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPostgresPauseStore_ListBySession(t *testing.T) {
	t.Parallel()
	env := newMockEnv(t)
	s := NewPostgresPauseStore(env.db, env.queries, nil)

	closed := mockNow.Add(5 * time.Minute)
	env.mock.ExpectQuery(env.sql("pause.list_by_session")).
		WithArgs(int64(7), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "usuario_id", "sessao_id", "inicio", "fim"}).
			AddRow(int64(1), int64(1), int64(7), mockNow, closed).
			AddRow(int64(2), int64(1), int64(7), mockNow.Add(10*time.Minute), nil))

	pauses, err := s.ListBySession(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Len(t, pauses, 2)
	assert.False(t, pauses[0].IsOpen())
	assert.True(t, pauses[1].IsOpen())
}

func TestPostgresGoalStore_GetByID(t *testing.T) {
	t.Parallel()
	env := newMockEnv(t)
	s := NewPostgresGoalStore(env.db, env.queries, nil)

	cols := []string{
		"id", "usuario_id", "materia_id", "topico_id", "titulo", "descricao", "quantidade_alvo",
		"quantidade_atual", "unidade", "recorrencia", "data_inicio", "data_fim", "concluida",
		"criado_em", "atualizado_em",
	}
	env.mock.ExpectQuery(env.sql("goal.get")).
		WithArgs(int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(5), int64(1), int64(3), nil, "Cálculo", "", 10.0, 2.5, "horas", "semanal",
				mockNow, nil, false, mockNow, mockNow))

	g, err := s.GetByID(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.GoalUnitHours, g.Unit)
	assert.Equal(t, domain.RecurrenceWeekly, g.Recurrence)
	require.NotNil(t, g.SubjectID)
	assert.Equal(t, int64(3), *g.SubjectID)
	assert.Nil(t, g.TopicID)
	assert.Nil(t, g.EndDate)
}

func TestPostgresGoalStore_ListFiltersCompletion(t *testing.T) {
	t.Parallel()
	env := newMockEnv(t)
	s := NewPostgresGoalStore(env.db, env.queries, nil)

	completed := true
	env.mock.ExpectQuery(env.sql("goal.list")).
		WithArgs(int64(1), true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	goals, err := s.List(context.Background(), 1, &completed)
	require.NoError(t, err)
	assert.Empty(t, goals)
	assert.NotNil(t, goals)
}

func TestPostgresNoteStore_History(t *testing.T) {
	t.Parallel()
	env := newMockEnv(t)
	s := NewPostgresNoteStore(env.db, env.queries, nil)

	h := &domain.NoteHistory{NoteID: 4, UserID: 1, Title: "old", Content: "before", EditedAt: mockNow}
	env.mock.ExpectQuery(env.sql("note.history_add")).
		WithArgs(int64(4), int64(1), "old", "before", mockNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	env.mock.ExpectQuery(env.sql("note.history_list")).
		WithArgs(int64(4), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nota_id", "usuario_id", "titulo", "conteudo", "editado_em"}).
			AddRow(int64(9), int64(4), int64(1), "old", "before", mockNow))

	require.NoError(t, s.AddHistory(context.Background(), h))
	assert.Equal(t, int64(9), h.ID)

	history, err := s.ListHistory(context.Background(), 4, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "before", history[0].Content)
}

func TestPostgresNoteStore_UpdateMissing(t *testing.T) {
	t.Parallel()
	env := newMockEnv(t)
	s := NewPostgresNoteStore(env.db, env.queries, nil)

	env.mock.ExpectExec(env.sql("note.update")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Update(context.Background(), &domain.Note{ID: 4, UserID: 1, Content: "x", UpdatedAt: mockNow})
	assert.ErrorIs(t, err, store.ErrNoteNotFound)
}

func TestPostgresReportStore_SessionTotals(t *testing.T) {
	t.Parallel()
	env := newMockEnv(t)
	s := NewPostgresReportStore(env.db, env.queries, nil)

	from := mockNow.Add(-24 * time.Hour)
	env.mock.ExpectQuery(env.sql("report.session_totals")).
		WithArgs(int64(1), from, mockNow, mockNow).
		WillReturnRows(sqlmock.NewRows([]string{"id", "materia_id", "nome", "inicio", "tempo_segundos", "finalizada"}).
			AddRow(int64(1), int64(3), "Física", from.Add(time.Hour), int64(1500), true).
			AddRow(int64(2), int64(3), "Física", from.Add(2*time.Hour), int64(600), false))

	totals, err := s.SessionTotals(context.Background(), 1, from, mockNow, mockNow)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "Física", totals[0].SubjectName)
	assert.Equal(t, int64(2100), totals[0].ElapsedSeconds+totals[1].ElapsedSeconds)
	assert.True(t, totals[0].Finished)
	assert.False(t, totals[1].Finished)
}

func TestCategoryStore_DuplicateName(t *testing.T) {
	t.Parallel()
	env := newMockEnv(t)
	s := NewPostgresCategoryStore(env.db, env.queries, nil)

	c, err := domain.NewCategory(1, "Exatas", "", "#112233", mockNow)
	require.NoError(t, err)

	env.mock.ExpectQuery(env.sql("category.create")).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "categorias_usuario_id_nome_key"})

	err = s.Create(context.Background(), c)
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestNewStoresPanicOnNilDB(t *testing.T) {
	t.Parallel()
	q, err := queries.Default()
	require.NoError(t, err)

	assert.Panics(t, func() { NewPostgresSessionStore(nil, q, nil) })
	assert.Panics(t, func() { NewPostgresPauseStore(nil, q, nil) })
	assert.Panics(t, func() { NewPostgresGoalStore(nil, q, nil) })
	assert.Panics(t, func() { NewPostgresNoteStore(nil, q, nil) })
	assert.Panics(t, func() { NewPostgresReportStore(nil, q, nil) })
}
