package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/config"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/middleware"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/utils"
)

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
}

func newCacheMiddleware(t *testing.T) echo.MiddlewareFunc {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return middleware.NewRedisCache(cacheConfig(), rdb)
}

func get(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// TestCacheNeverShadowsProtectedRoutes wires the middleware the way the
// server does: the cache wraps only the public route while the private
// listing sits behind JWT auth with no cache. An authenticated read of
// the private route must not leave anything an anonymous caller can
// replay.
func TestCacheNeverShadowsProtectedRoutes(t *testing.T) {
	const secret = "test-secret"
	e := echo.New()
	cacheMW := newCacheMiddleware(t)

	e.GET("/v1/availability", func(c echo.Context) error {
		return c.String(http.StatusOK, "public-availability")
	}, cacheMW)
	private := e.Group("/v1", middleware.JWTAuth(secret), middleware.RequireRole("GUEST", "STAFF"))
	private.GET("/my-reservations", func(c echo.Context) error {
		return c.String(http.StatusOK, "reservations-of-user-1")
	})

	at, err := utils.NewAccessToken(secret, 1, "GUEST", 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	if rec := get(e, "/v1/my-reservations", at.Token); rec.Code != http.StatusOK {
		t.Fatalf("authenticated listing: got %d, want 200", rec.Code)
	}
	// The anonymous retry must be rejected by auth, never answered from
	// a cached copy of another user's listing.
	rec := get(e, "/v1/my-reservations", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous listing: got %d %q, want 401", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Cache") == "HIT" {
		t.Fatal("private route answered from the response cache")
	}

	// The public route still caches.
	if rec := get(e, "/v1/availability", ""); rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first public read: X-Cache=%q, want MISS", rec.Header().Get("X-Cache"))
	}
	rec = get(e, "/v1/availability", "")
	if rec.Header().Get("X-Cache") != "HIT" || rec.Body.String() != "public-availability" {
		t.Fatalf("second public read: X-Cache=%q body=%q", rec.Header().Get("X-Cache"), rec.Body.String())
	}
}

// TestCacheKeysOnConcretePath pins the key to the real URL path and
// query, not the route pattern: different path parameters and different
// query strings must never collide.
func TestCacheKeysOnConcretePath(t *testing.T) {
	e := echo.New()
	cacheMW := newCacheMiddleware(t)

	e.GET("/v1/rooms/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "room-"+c.Param("id"))
	}, cacheMW)
	e.GET("/v1/availability", func(c echo.Context) error {
		return c.String(http.StatusOK, "avail:"+c.QueryString())
	}, cacheMW)

	if body := get(e, "/v1/rooms/1", "").Body.String(); body != "room-1" {
		t.Fatalf("first path: body = %q", body)
	}
	rec := get(e, "/v1/rooms/2", "")
	if rec.Body.String() != "room-2" {
		t.Fatalf("second path served %q: cache keyed on the route pattern", rec.Body.String())
	}
	rec = get(e, "/v1/rooms/1", "")
	if rec.Header().Get("X-Cache") != "HIT" || rec.Body.String() != "room-1" {
		t.Fatalf("replay of first path: X-Cache=%q body=%q", rec.Header().Get("X-Cache"), rec.Body.String())
	}

	q1 := "check_in=2026-03-10&check_out=2026-03-13"
	q2 := "check_in=2026-04-01&check_out=2026-04-02"
	if body := get(e, "/v1/availability?"+q1, "").Body.String(); body != "avail:"+q1 {
		t.Fatalf("first query: body = %q", body)
	}
	if body := get(e, "/v1/availability?"+q2, "").Body.String(); body != "avail:"+q2 {
		t.Fatalf("second query served %q: cache ignored the query string", body)
	}
}
