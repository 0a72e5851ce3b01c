package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"3tcapital/wealthdesk/internal/core/session"
	ctxutil "3tcapital/wealthdesk/internal/infrastructure/context"
)

// ReadJSONResponse checks the status code and decodes the JSON body into v.
func ReadJSONResponse(t testing.TB, w *httptest.ResponseRecorder, expectedStatus int, v any) {
	t.Helper()
	if w.Code != expectedStatus {
		t.Fatalf("expected status %d, got %d: %s", expectedStatus, w.Code, w.Body.String())
	}
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
}

// ReadErrorResponse decodes an error envelope after checking the status code.
func ReadErrorResponse(t testing.TB, w *httptest.ResponseRecorder, expectedStatus int) map[string]any {
	t.Helper()
	var response map[string]any
	ReadJSONResponse(t, w, expectedStatus, &response)
	return response
}

// CreateRequest creates an HTTP request with optional JSON body, URL params and session.
func CreateRequest(method, path string, body any, params map[string]string, sess *session.Session) *http.Request {
	var bodyReader *bytes.Reader
	if body != nil {
		jsonData, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonData)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if sess != nil {
		ctx = ctxutil.WithSession(ctx, sess)
	}
	return req.WithContext(ctx)
}
