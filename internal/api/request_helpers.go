package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/studytrack-api/internal/api/shared"
	"github.com/phrazzld/studytrack-api/internal/platform/logger"
)

const dateLayout = "2006-01-02"

// getUserIDFromContext returns the user ID the auth middleware stored.
func getUserIDFromContext(r *http.Request) (int64, bool) {
	return shared.UserIDFromContext(r.Context())
}

// getPathID parses a positive integer path parameter.
func getPathID(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return 0, badRequest(paramName + " is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(paramName + " must be a positive integer")
	}
	return id, nil
}

// handleUserID writes a 401 and reports false when the request carries no
// authenticated user.
func handleUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, errUnauthenticated, "")
		return 0, false
	}
	return userID, true
}

// handleUserIDAndPathID extracts the user and the {paramName} path ID,
// writing the error response itself when either is missing.
func handleUserIDAndPathID(w http.ResponseWriter, r *http.Request, paramName string) (int64, int64, bool) {
	userID, ok := handleUserID(w, r)
	if !ok {
		return 0, 0, false
	}
	id, err := getPathID(r, paramName)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return 0, 0, false
	}
	return userID, id, true
}

// queryInt64 parses an optional positive integer query parameter.
func queryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil, badRequest(name + " must be a positive integer")
	}
	return &v, nil
}

// queryInt parses a required integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, badRequest(name + " is required")
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(name + " must be an integer")
	}
	return v, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, badRequest(name + " must be true or false")
	}
	return &v, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter as midnight in loc.
func queryDate(r *http.Request, name string, loc *time.Location) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return nil, badRequest(name + " must be a date in YYYY-MM-DD format")
	}
	return &t, nil
}

// decodeAndValidate decodes the JSON body into req and validates its tags,
// writing a 400 on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}
