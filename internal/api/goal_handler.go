package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/studytrack-api/internal/api/shared"
	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/service"
)

// GoalHandler handles goal requests.
type GoalHandler struct {
	goals  service.GoalService
	logger *slog.Logger
}

// NewGoalHandler creates a GoalHandler.
func NewGoalHandler(goals service.GoalService, logger *slog.Logger) *GoalHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for GoalHandler")
	}
	return &GoalHandler{
		goals:  goals,
		logger: logger.With(slog.String("component", "goal_handler")),
	}
}

// List handles GET /goals with an optional completed filter.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r)
	if !ok {
		return
	}
	completed, err := queryBool(r, "completed")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	list, err := h.goals.List(r.Context(), userID, completed)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list goals")
		return
	}
	if list == nil {
		list = []*domain.Goal{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// Create handles POST /goals.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r)
	if !ok {
		return
	}
	in, ok := h.decodeGoal(w, r)
	if !ok {
		return
	}
	g, err := h.goals.Create(r.Context(), userID, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create goal")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, g)
}

// Get handles GET /goals/{id}.
func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	g, err := h.goals.Get(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get goal")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, g)
}

// Update handles PUT /goals/{id}.
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	in, ok := h.decodeGoal(w, r)
	if !ok {
		return
	}
	g, err := h.goals.Update(r.Context(), userID, id, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update goal")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, g)
}

// UpdateProgress handles PATCH /goals/{id}/progress.
func (h *GoalHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	var req GoalProgressRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	g, err := h.goals.UpdateProgress(r.Context(), userID, id, *req.Current)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update goal progress")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, g)
}

// Complete handles PATCH /goals/{id}/complete.
func (h *GoalHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	g, err := h.goals.Complete(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete goal")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, g)
}

// Delete handles DELETE /goals/{id}.
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.goals.Delete(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete goal")
		return
	}
	shared.RespondNoContent(w)
}

func (h *GoalHandler) decodeGoal(w http.ResponseWriter, r *http.Request) (service.GoalInput, bool) {
	var req GoalRequest
	if !decodeAndValidate(w, r, &req) {
		return service.GoalInput{}, false
	}

	in := service.GoalInput{
		SubjectID:   req.SubjectID,
		TopicID:     req.TopicID,
		Title:       req.Title,
		Description: req.Description,
		Target:      req.Target,
		Current:     req.Current,
		Unit:        req.Unit,
		Recurrence:  req.Recurrence,
		Completed:   req.Completed,
	}
	// the datetime tag already checked the layout
	if req.StartDate != "" {
		in.StartDate, _ = time.Parse(dateLayout, req.StartDate)
	}
	if req.EndDate != "" {
		end, _ := time.Parse(dateLayout, req.EndDate)
		in.EndDate = &end
	}
	return in, true
}
