package insight

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/inneratlas/backend/internal/middleware"
)

func newTestRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Identity)
	New(nil).RegisterRoutes(r)
	return r
}

func TestInsightWithoutService(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/insights", strings.NewReader(`{"prompt":"reflect on this"}`))
	req.Header.Set("X-User-ID", "c1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when the LLM is not configured, got %d", rec.Code)
	}
}

func TestInsightRequiresIdentity(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/insights", strings.NewReader(`{"prompt":"x"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}
}
