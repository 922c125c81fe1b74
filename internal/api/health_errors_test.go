package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/service"
	"github.com/phrazzld/studytrack-api/internal/service/auth"
	"github.com/phrazzld/studytrack-api/internal/store"
	"github.com/stretchr/testify/assert"
)

type pingerFunc func(context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	ok := NewHealthHandler(pingerFunc(func(context.Context) error { return nil }), testLogger())
	rec := httptest.NewRecorder()
	ok.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down := NewHealthHandler(pingerFunc(func(context.Context) error { return errors.New("connection refused") }), testLogger())
	rec = httptest.NewRecorder()
	down.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"wrapped not found", fmt.Errorf("lookup: %w", store.ErrTopicNotFound), http.StatusNotFound},
		{"duplicate email", store.ErrEmailExists, http.StatusConflict},
		{"in use", service.ErrInUse, http.StatusConflict},
		{"validation", domain.NewValidationError("name", "is required"), http.StatusBadRequest},
		{"transition", domain.ErrSessionNotInProgress, http.StatusBadRequest},
		{"relationship", service.ErrRelationshipInvalid, http.StatusBadRequest},
		{"bad query", badRequest("mes is required"), http.StatusBadRequest},
		{"service failure", service.NewServiceError("note", "update", "failed", errors.New("timeout")), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage_HidesInternals(t *testing.T) {
	t.Parallel()

	err := service.NewServiceError("session", "finish", "failed", errors.New("pq: password=hunter2 rejected"))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(err))
	assert.Equal(t, "Study session not found", GetSafeErrorMessage(store.ErrSessionNotFound))
	assert.Equal(t, "name: is required", GetSafeErrorMessage(domain.NewValidationError("name", "is required")))
}
