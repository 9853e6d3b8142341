package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
)

type testOutput struct {
	Body struct {
		Token string `json:"token"`
	}
}

func setupTestAPI() *chi.Mux {
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(NewCredentialsMiddleware(api))

	huma.Get(api, "/test", func(ctx context.Context, _ *struct{}) (*testOutput, error) {
		out := &testOutput{}
		out.Body.Token, _ = TokenFromContext(ctx)
		return out, nil
	})
	return router
}

func TestMiddlewarePassesThroughWithoutHeader(t *testing.T) {
	router := setupTestAPI()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if out.Token != "" {
		t.Fatalf("expected no token, got %q", out.Token)
	}
}

func TestMiddlewareStoresToken(t *testing.T) {
	router := setupTestAPI()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if out.Token != "secret-token" {
		t.Fatalf("expected secret-token, got %q", out.Token)
	}
}

func TestMiddlewareRejectsInvalidAuthFormat(t *testing.T) {
	router := setupTestAPI()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if got := resp.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Fatalf("expected WWW-Authenticate Bearer, got %q", got)
	}
}
