package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/studytrack-api/internal/api/shared"
	"github.com/phrazzld/studytrack-api/internal/platform/logger"
	"github.com/stretchr/testify/require"
)

const testUserID int64 = 1

// serve routes one request through a chi router holding only pattern, with
// userID already authenticated unless it is zero.
func serve(
	t *testing.T,
	method, pattern, target, body string,
	handler http.HandlerFunc,
	userID int64,
) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Method(method, pattern, handler)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != 0 {
		req = req.WithContext(shared.WithUserID(req.Context(), userID))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[shared.ErrorResponse](t, rec).Error
}

func testLogger() *slog.Logger {
	log, _ := logger.NewCapture()
	return log
}
