package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/salon-booking/internal/auth"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newRouter(mw ...gin.HandlerFunc) (*gin.Engine, *auth.Actor) {
	gin.SetMode(gin.TestMode)
	var seen auth.Actor
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		seen = Actor(c)
		c.Status(http.StatusOK)
	})
	r.GET("/x", handlers...)
	return r, &seen
}

func do(r http.Handler, token string) int {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddlewareBuildsActor(t *testing.T) {
	r, seen := newRouter(AuthMiddleware(secret))

	code := do(r, sign(t, jwt.MapClaims{"sub": 20, "role": "barber", "barber_id": 3}, secret))
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if !seen.IsBarber() || *seen.BarberID != 3 || seen.UserID != 20 {
		t.Fatalf("unexpected actor %+v", seen)
	}

	do(r, sign(t, jwt.MapClaims{"sub": 10, "role": "customer"}, secret))
	if !seen.IsCustomer() || seen.UserID != 10 {
		t.Fatalf("unexpected actor %+v", seen)
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	r, _ := newRouter(AuthMiddleware(secret))

	cases := map[string]string{
		"missing":           "",
		"wrong key":         sign(t, jwt.MapClaims{"sub": 1, "role": "admin"}, "other"),
		"barber without id": sign(t, jwt.MapClaims{"sub": 1, "role": "barber"}, secret),
		"unknown role":      sign(t, jwt.MapClaims{"sub": 1, "role": "root"}, secret),
		"no subject":        sign(t, jwt.MapClaims{"role": "admin"}, secret),
		"garbage":           "not-a-jwt",
	}
	for name, token := range cases {
		if code := do(r, token); code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", name, code)
		}
	}
}

func TestOptionalAuth(t *testing.T) {
	r, seen := newRouter(OptionalAuth(secret))

	if code := do(r, ""); code != http.StatusOK || seen.Role != "" {
		t.Fatalf("anonymous request: %d %+v", code, seen)
	}
	if code := do(r, "garbage"); code != http.StatusOK {
		t.Fatalf("bad token must not block optional auth, got %d", code)
	}
}

func TestRequireRole(t *testing.T) {
	r, _ := newRouter(AuthMiddleware(secret), RequireRole("admin"))

	if code := do(r, sign(t, jwt.MapClaims{"sub": 1, "role": "admin"}, secret)); code != http.StatusOK {
		t.Fatalf("admin: %d", code)
	}
	if code := do(r, sign(t, jwt.MapClaims{"sub": 10, "role": "customer"}, secret)); code != http.StatusForbidden {
		t.Fatalf("customer: %d", code)
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://salon.test"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://salon.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "https://salon.test" {
		t.Fatalf("preflight: %d %q", w.Code, w.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unknown origin must not be reflected")
	}
}
