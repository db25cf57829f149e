package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ottplanner/ottplanner/internal/api/middleware"
	"github.com/ottplanner/ottplanner/internal/api/models"
	"github.com/ottplanner/ottplanner/internal/api/response"
)

// requestWithID returns a request whose context carries a request ID, as if
// it had passed through the RequestID middleware.
func requestWithID(t *testing.T, path string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)

	var processed *http.Request
	middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		processed = r
	})).ServeHTTP(httptest.NewRecorder(), req)

	return processed
}

func TestJSON_IncludesRequestID(t *testing.T) {
	req := requestWithID(t, "/v1/plan")
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusOK, map[string]string{"message": "hello"})

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if id := rec.Header().Get("X-Request-Id"); !strings.HasPrefix(id, "req_") {
		t.Errorf("expected generated X-Request-Id header, got %q", id)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}
	if body := rec.Body.String(); body != "{\"message\":\"hello\"}\n" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestJSON_WithoutRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/plan", http.NoBody)
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusOK, nil)

	if id := rec.Header().Get("X-Request-Id"); id != "" {
		t.Errorf("expected no X-Request-Id header when not in context, got %q", id)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body for nil data, got %q", rec.Body.String())
	}
}

func TestEncode_Pretty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/plan?pretty", http.NoBody)
	rec := httptest.NewRecorder()

	response.Encode(rec, req, http.StatusOK, map[string]int{"a": 1}, true)

	if body := rec.Body.String(); body != "{\n  \"a\": 1\n}\n" {
		t.Errorf("expected indented body, got %q", body)
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, *http.Request)
		status int
		typ    string
	}{
		{
			name:   "bad request",
			write:  func(w http.ResponseWriter, r *http.Request) { response.BadRequest(w, r, "from is required", nil) },
			status: http.StatusBadRequest,
			typ:    models.ProblemTypeValidation,
		},
		{
			name:   "not found",
			write:  func(w http.ResponseWriter, r *http.Request) { response.NotFound(w, r, "stop not found") },
			status: http.StatusNotFound,
			typ:    models.ProblemTypeNotFound,
		},
		{
			name:   "too many requests",
			write:  func(w http.ResponseWriter, r *http.Request) { response.TooManyRequests(w, r, "slow down") },
			status: http.StatusTooManyRequests,
			typ:    models.ProblemTypeTooManyRequests,
		},
		{
			name:   "internal",
			write:  func(w http.ResponseWriter, r *http.Request) { response.InternalError(w, r, "boom") },
			status: http.StatusInternalServerError,
			typ:    models.ProblemTypeInternal,
		},
		{
			name:   "bad gateway",
			write:  func(w http.ResponseWriter, r *http.Request) { response.BadGateway(w, r, "engine sent garbage") },
			status: http.StatusBadGateway,
			typ:    models.ProblemTypeUpstream,
		},
		{
			name:   "unavailable",
			write:  func(w http.ResponseWriter, r *http.Request) { response.ServiceUnavailable(w, r, "engine down", 30) },
			status: http.StatusServiceUnavailable,
			typ:    models.ProblemTypeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestWithID(t, "/v1/ti/routes")
			rec := httptest.NewRecorder()

			tt.write(rec, req)

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("expected problem content type, got %q", ct)
			}

			var problem models.Problem
			if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
				t.Fatalf("failed to decode problem: %v", err)
			}
			if problem.Type != tt.typ {
				t.Errorf("expected type %q, got %q", tt.typ, problem.Type)
			}
			if problem.Instance != "/v1/ti/routes" {
				t.Errorf("expected instance /v1/ti/routes, got %q", problem.Instance)
			}
			if problem.TraceID != rec.Header().Get("X-Request-Id") {
				t.Errorf("trace ID %q does not match request ID header", problem.TraceID)
			}
		})
	}
}

func TestServiceUnavailable_RetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	response.ServiceUnavailable(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody), "down", 0)
	if ra := rec.Header().Get("Retry-After"); ra != "" {
		t.Errorf("expected no Retry-After header, got %q", ra)
	}

	rec = httptest.NewRecorder()
	response.ServiceUnavailable(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody), "down", 30)
	if ra := rec.Header().Get("Retry-After"); ra != "30" {
		t.Errorf("expected Retry-After 30, got %q", ra)
	}
}
