package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/studytrack-api/internal/api/shared"
	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/platform/logger"
	"github.com/phrazzld/studytrack-api/internal/service"
	"github.com/phrazzld/studytrack-api/internal/store"
)

// SessionHandler handles study session and report requests.
type SessionHandler struct {
	sessions service.SessionService
	reports  service.ReportService
	location *time.Location
	timeFunc func() time.Time
	logger   *slog.Logger
}

// NewSessionHandler creates a SessionHandler. Dates in query parameters are
// interpreted in loc; nil means UTC.
func NewSessionHandler(
	sessions service.SessionService,
	reports service.ReportService,
	loc *time.Location,
	logger *slog.Logger,
) *SessionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SessionHandler{
		sessions: sessions,
		reports:  reports,
		location: loc,
		timeFunc: time.Now,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// Start handles POST /sessions.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r)
	if !ok {
		return
	}
	var req StartSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	s, err := h.sessions.Start(r.Context(), userID, service.StartSessionInput{
		CategoryID: req.CategoryID,
		SubjectID:  req.SubjectID,
		TopicID:    req.TopicID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start study session")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("study session started",
		slog.Int64("user_id", userID),
		slog.Int64("session_id", s.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, newSessionResponse(s))
}

// List handles GET /sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r)
	if !ok {
		return
	}

	filter, err := h.sessionFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	list, err := h.sessions.List(r.Context(), userID, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list study sessions")
		return
	}
	if list == nil {
		list = []*domain.StudySession{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

func (h *SessionHandler) sessionFilter(r *http.Request) (store.SessionFilter, error) {
	var filter store.SessionFilter
	var err error

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, perr := domain.ParseSessionStatus(raw)
		if perr != nil {
			return filter, badRequest("status must be one of em_andamento, pausada, finalizada")
		}
		filter.Status = &status
	}
	if filter.SubjectID, err = queryInt64(r, "subject_id"); err != nil {
		return filter, err
	}
	if filter.TopicID, err = queryInt64(r, "topic_id"); err != nil {
		return filter, err
	}
	if filter.From, err = queryDate(r, "from", h.location); err != nil {
		return filter, err
	}
	to, err := queryDate(r, "to", h.location)
	if err != nil {
		return filter, err
	}
	if to != nil {
		// inclusive of the whole "to" day
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return filter, badRequest("from must not be after to")
	}
	return filter, nil
}

// Get handles GET /sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}

	s, err := h.sessions.Get(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get study session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newSessionResponse(s))
}

// Pause handles POST /sessions/{id}/pausar.
func (h *SessionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.sessions.Pause(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to pause study session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, p)
}

// Resume handles POST /sessions/pausas/{id}/retomar.
func (h *SessionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	userID, pauseID, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}

	resumed, err := h.sessions.Resume(r.Context(), userID, pauseID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to resume study session")
		return
	}
	if !resumed {
		HandleAPIError(w, r, store.ErrPauseNotFound, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ResumeResponse{PauseID: pauseID, Resumed: true})
}

// Finish handles POST /sessions/{id}/finalizar and responds with the
// finished session.
func (h *SessionHandler) Finish(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}

	finished, err := h.sessions.Finish(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to finish study session")
		return
	}
	if !finished {
		HandleAPIError(w, r, store.ErrSessionNotFound, "")
		return
	}

	s, err := h.sessions.Get(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get study session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newSessionResponse(s))
}

// Delete handles DELETE /sessions/{id}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.sessions.Delete(r.Context(), userID, sessionID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete study session")
		return
	}
	shared.RespondNoContent(w)
}

// Calendar handles GET /sessions/calendario?mes=&ano=.
func (h *SessionHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r)
	if !ok {
		return
	}

	month, err := queryInt(r, "mes")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	year, err := queryInt(r, "ano")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	cal, err := h.reports.Calendar(r.Context(), userID, month, year)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build calendar")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cal)
}

// Dashboard handles GET /sessions/dashboard?periodo=&data=. The period
// defaults to dia and the date to today.
func (h *SessionHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r)
	if !ok {
		return
	}

	period := domain.PeriodDay
	if raw := r.URL.Query().Get("periodo"); raw != "" {
		p, err := domain.ParsePeriod(raw)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		period = p
	}

	day, err := queryDate(r, "data", h.location)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if day == nil {
		today := h.timeFunc().In(h.location)
		day = &today
	}

	d, err := h.reports.Dashboard(r.Context(), userID, period, *day)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build dashboard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, d)
}
