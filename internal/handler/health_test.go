package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/middleware"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/utils"
)

func TestHealth(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	if err := Health(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("got %d %q, want 200 %q", rec.Code, rec.Body.String(), "ok")
	}
}

// TestStaffRoutesRBAC verifies that the JWT and role middleware gate a
// staff-only route: no token is 401, a guest token is 403, a staff
// token reaches the handler.
func TestStaffRoutesRBAC(t *testing.T) {
	const secret = "test-secret"
	e := echo.New()
	g := e.Group("/v1/staff", middleware.JWTAuth(secret), middleware.RequireRole("STAFF"))
	g.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	sign := func(role string) string {
		at, err := utils.NewAccessToken(secret, 1, role, 5)
		if err != nil {
			t.Fatalf("NewAccessToken: %v", err)
		}
		return at.Token
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/staff/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/staff/ping", nil)
	req.Header.Set("Authorization", "Bearer "+sign("GUEST"))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("guest token: got %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/staff/ping", nil)
	req.Header.Set("Authorization", "Bearer "+sign("STAFF"))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("staff token: got %d, want 200", rec.Code)
	}
}
