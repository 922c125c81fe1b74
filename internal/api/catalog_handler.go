package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/studytrack-api/internal/api/shared"
	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/service"
)

// CatalogHandler handles category, subject and topic requests.
type CatalogHandler struct {
	catalog service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(catalog service.CatalogService, logger *slog.Logger) *CatalogHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CatalogHandler")
	}
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger.With(slog.String("component", "catalog_handler")),
	}
}

// ListCategories handles GET /categories.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r)
	if !ok {
		return
	}
	list, err := h.catalog.ListCategories(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list categories")
		return
	}
	if list == nil {
		list = []*domain.Category{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// CreateCategory handles POST /categories.
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r)
	if !ok {
		return
	}
	var req CategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	c, err := h.catalog.CreateCategory(r.Context(), userID, categoryInput(req))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create category")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, c)
}

// GetCategory handles GET /categories/{id}.
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.catalog.GetCategory(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get category")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, c)
}

// UpdateCategory handles PUT /categories/{id}.
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	c, err := h.catalog.UpdateCategory(r.Context(), userID, id, categoryInput(req))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update category")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, c)
}

// DeleteCategory handles DELETE /categories/{id}.
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete category")
		return
	}
	shared.RespondNoContent(w)
}

// ListSubjects handles GET /subjects with an optional category_id filter.
func (h *CatalogHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r)
	if !ok {
		return
	}
	categoryID, err := queryInt64(r, "category_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	list, err := h.catalog.ListSubjects(r.Context(), userID, categoryID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list subjects")
		return
	}
	if list == nil {
		list = []*domain.Subject{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// CreateSubject handles POST /subjects.
func (h *CatalogHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r)
	if !ok {
		return
	}
	var req SubjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	s, err := h.catalog.CreateSubject(r.Context(), userID, subjectInput(req))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create subject")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, s)
}

// GetSubject handles GET /subjects/{id}.
func (h *CatalogHandler) GetSubject(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	s, err := h.catalog.GetSubject(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get subject")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, s)
}

// UpdateSubject handles PUT /subjects/{id}.
func (h *CatalogHandler) UpdateSubject(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	var req SubjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	s, err := h.catalog.UpdateSubject(r.Context(), userID, id, subjectInput(req))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update subject")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, s)
}

// DeleteSubject handles DELETE /subjects/{id}.
func (h *CatalogHandler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteSubject(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete subject")
		return
	}
	shared.RespondNoContent(w)
}

// ListTopics handles GET /topics with an optional subject_id filter.
func (h *CatalogHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r)
	if !ok {
		return
	}
	subjectID, err := queryInt64(r, "subject_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	list, err := h.catalog.ListTopics(r.Context(), userID, subjectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list topics")
		return
	}
	if list == nil {
		list = []*domain.Topic{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// CreateTopic handles POST /topics.
func (h *CatalogHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserID(w, r)
	if !ok {
		return
	}
	var req TopicRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	t, err := h.catalog.CreateTopic(r.Context(), userID, topicInput(req))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create topic")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, t)
}

// GetTopic handles GET /topics/{id}.
func (h *CatalogHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.catalog.GetTopic(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get topic")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, t)
}

// UpdateTopic handles PUT /topics/{id}.
func (h *CatalogHandler) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	var req TopicRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	t, err := h.catalog.UpdateTopic(r.Context(), userID, id, topicInput(req))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update topic")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, t)
}

// DeleteTopic handles DELETE /topics/{id}.
func (h *CatalogHandler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := handleUserIDAndPathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteTopic(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete topic")
		return
	}
	shared.RespondNoContent(w)
}

func categoryInput(req CategoryRequest) service.CategoryInput {
	return service.CategoryInput{Name: req.Name, Description: req.Description, Color: req.Color}
}

func subjectInput(req SubjectRequest) service.SubjectInput {
	return service.SubjectInput{CategoryID: req.CategoryID, Name: req.Name, Description: req.Description}
}

func topicInput(req TopicRequest) service.TopicInput {
	return service.TopicInput{SubjectID: req.SubjectID, Name: req.Name, Description: req.Description}
}
