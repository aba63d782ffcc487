// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/angelamos/localmart/internal/core"
)

type fakeVerifier struct {
	claims *AccessTokenClaims
	err    error
}

func (f *fakeVerifier) VerifyAccessToken(_ context.Context, _ string) (*AccessTokenClaims, error) {
	return f.claims, f.err
}

func claimsEcho() (http.Handler, *AccessTokenClaims) {
	captured := &AccessTokenClaims{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.UserID = GetUserID(r.Context())
		captured.ActiveRole = GetActiveRole(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return handler, captured
}

func TestAuthenticator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		authHeader string
		verifier   *fakeVerifier
		wantStatus int
		wantUserID string
	}{
		{
			name:       "valid token",
			authHeader: "Bearer good",
			verifier: &fakeVerifier{claims: &AccessTokenClaims{
				UserID:     "user-1",
				ActiveRole: "customer",
			}},
			wantStatus: http.StatusOK,
			wantUserID: "user-1",
		},
		{
			name:       "missing header",
			authHeader: "",
			verifier:   &fakeVerifier{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			authHeader: "Basic dXNlcjpwYXNz",
			verifier:   &fakeVerifier{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			authHeader: "Bearer stale",
			verifier:   &fakeVerifier{err: core.ErrTokenExpired},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			authHeader: "Bearer junk",
			verifier:   &fakeVerifier{err: core.ErrTokenInvalid},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler, captured := claimsEcho()
			mw := Authenticator(tt.verifier)(handler)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUserID, captured.UserID)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	t.Parallel()

	t.Run("anonymous passes through", func(t *testing.T) {
		t.Parallel()

		handler, captured := claimsEcho()
		mw := OptionalAuth(&fakeVerifier{err: core.ErrTokenInvalid})(handler)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, captured.UserID)
	})

	t.Run("bad token passes through unauthenticated", func(t *testing.T) {
		t.Parallel()

		handler, captured := claimsEcho()
		mw := OptionalAuth(&fakeVerifier{err: core.ErrTokenInvalid})(handler)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer junk")
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, captured.UserID)
	})

	t.Run("good token resolves claims", func(t *testing.T) {
		t.Parallel()

		handler, captured := claimsEcho()
		mw := OptionalAuth(&fakeVerifier{claims: &AccessTokenClaims{
			UserID:     "user-1",
			ActiveRole: "business",
		}})(handler)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", captured.UserID)
	})
}

func TestRequireActiveRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		activeRole string
		required   []string
		wantStatus int
	}{
		{name: "matching role", activeRole: "business", required: []string{"business"}, wantStatus: http.StatusOK},
		{name: "wrong mode", activeRole: "customer", required: []string{"business"}, wantStatus: http.StatusForbidden},
		{name: "unauthenticated", activeRole: "", required: []string{"business"}, wantStatus: http.StatusUnauthorized},
		{name: "any of several", activeRole: "customer", required: []string{"customer", "business"}, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			mw := RequireActiveRole(tt.required...)(handler)

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.activeRole != "" {
				ctx := withClaims(req.Context(), &AccessTokenClaims{
					UserID:     "user-1",
					ActiveRole: tt.activeRole,
				})
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestExtractToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer", header: "Bearer abc123", want: "abc123"},
		{name: "lowercase scheme", header: "bearer abc123", want: "abc123"},
		{name: "missing", header: "", want: ""},
		{name: "wrong scheme", header: "Basic abc123", want: ""},
		{name: "no token", header: "Bearer", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, ExtractToken(req))
		})
	}
}
