package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/janisto/linkhub/internal/platform/metrics"
)

type whoamiOutput struct {
	Body struct {
		UserID string `json:"userId"`
	}
}

func setupTestAPI(verifier Verifier, requireAuth bool) *chi.Mux {
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(NewAuthMiddleware(api, verifier))

	var security []map[string][]string
	if requireAuth {
		security = []map[string][]string{{"bearerAuth": {}}}
	}
	huma.Register(api, huma.Operation{
		OperationID: "whoami",
		Method:      http.MethodGet,
		Path:        "/whoami",
		Security:    security,
	}, func(ctx context.Context, _ *struct{}) (*whoamiOutput, error) {
		out := &whoamiOutput{}
		if user := UserFromContext(ctx); user != nil {
			out.Body.UserID = user.UID
		}
		return out, nil
	})
	return router
}

func serveWhoami(router http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewareSkipsUnsecuredOperations(t *testing.T) {
	rec := serveWhoami(setupTestAPI(&MockVerifier{Error: ErrInvalidToken}, false), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMiddlewareResolvesCallerPerToken(t *testing.T) {
	verifier := &MockVerifier{Users: map[string]*User{
		"alice-token": TestUser(),
		"bob-token":   {UID: "bob-uid"},
	}}
	router := setupTestAPI(verifier, true)

	for token, want := range map[string]string{"alice-token": "alice-uid", "bob-token": "bob-uid"} {
		rec := serveWhoami(router, "Bearer "+token)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", token, rec.Code)
		}
		var body struct {
			UserID string `json:"userId"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.UserID != want {
			t.Fatalf("%s: expected %s, got %s", token, want, body.UserID)
		}
	}
}

func TestMiddlewareRejections(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		verifyErr  error
		wantStatus int
		reason     string
	}{
		{"missing header", "", nil, http.StatusUnauthorized, "no_token"},
		{"basic scheme", "Basic dXNlcjpwYXNz", nil, http.StatusUnauthorized, "invalid_token"},
		{"expired", "Bearer t", ErrTokenExpired, http.StatusUnauthorized, "token_expired"},
		{"revoked", "Bearer t", ErrTokenRevoked, http.StatusUnauthorized, "token_revoked"},
		{"disabled", "Bearer t", ErrUserDisabled, http.StatusUnauthorized, "user_disabled"},
		{"certificates", "Bearer t", ErrCertificateFetch, http.StatusServiceUnavailable, "certificate_fetch_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := metrics.AuthFailures.WithLabelValues(tt.reason)
			before := testutil.ToFloat64(counter)

			router := setupTestAPI(&MockVerifier{User: TestUser(), Error: tt.verifyErr}, true)
			rec := serveWhoami(router, tt.header)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusServiceUnavailable {
				if got := rec.Header().Get("Retry-After"); got != "30" {
					t.Fatalf("expected Retry-After 30, got %q", got)
				}
			} else if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
				t.Fatalf("expected WWW-Authenticate Bearer, got %q", got)
			}
			if got := testutil.ToFloat64(counter); got != before+1 {
				t.Fatalf("expected auth failure counted, got %v -> %v", before, got)
			}
		})
	}
}

func TestUserFromContext(t *testing.T) {
	if UserFromContext(context.Background()) != nil {
		t.Fatal("expected nil user without auth")
	}
	want := &User{UID: "ctx-user"}
	ctx := context.WithValue(context.Background(), userContextKey{}, want)
	if got := UserFromContext(ctx); got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
