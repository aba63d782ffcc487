// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	err error
}

func (f *fakeChecker) Ping(context.Context) error { return f.err }

func healthGet(t *testing.T, h *Handler, path string) (*httptest.ResponseRecorder, ReadinessResponse) {
	t.Helper()

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeChecker{}, &fakeChecker{})

	rec, body := healthGet(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)

	h.SetShutdown(true)
	rec, body = healthGet(t, h, "/livez")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "shutting_down", body.Status)
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		db, redis  Checker
		wantCode   int
		wantStatus string
	}{
		{
			name:       "all dependencies healthy",
			db:         &fakeChecker{},
			redis:      &fakeChecker{},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name:       "redis down degrades readiness",
			db:         &fakeChecker{},
			redis:      &fakeChecker{err: errors.New("connection refused")},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "degraded",
		},
		{
			name:       "missing checker degrades readiness",
			db:         nil,
			redis:      &fakeChecker{},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHandler(tt.db, tt.redis)
			rec, body := healthGet(t, h, "/readyz")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStatus, body.Status)
			require.Len(t, body.Checks, 2)
			assert.Equal(t, "database", body.Checks[0].Name)
			assert.Equal(t, "redis", body.Checks[1].Name)
		})
	}
}

func TestReadiness_NotReady(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeChecker{}, &fakeChecker{})
	h.SetReady(false)

	rec, body := healthGet(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", body.Status)
}
