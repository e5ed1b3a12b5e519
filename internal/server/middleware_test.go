package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sceneworks/scene/internal/identity"
)

func identityTestRouter(t *testing.T) (*gin.Engine, *identity.Actor) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var captured identity.Actor
	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	r.Use(IdentityMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		actor, ok := identity.ActorFromContext(c.Request.Context())
		if !ok {
			t.Fatal("actor missing from handler context")
		}
		captured = actor
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r, &captured
}

func TestIdentityMiddlewareResolvesActor(t *testing.T) {
	r, captured := identityTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-User-Id", "1234567890123456789")
	req.Header.Set("X-User-Role", "customer")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if captured.Role != identity.RoleCustomer {
		t.Fatalf("expected customer role, got %q", captured.Role)
	}
	if captured.UserID.String() != "1234567890123456789" {
		t.Fatalf("unexpected user id %s", captured.UserID)
	}
}

func TestIdentityMiddlewareManagerVenue(t *testing.T) {
	r, captured := identityTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-User-Id", "1234567890123456789")
	req.Header.Set("X-User-Role", "venue_manager")
	req.Header.Set("X-Venue-Id", "987654321098765432")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if captured.Role != identity.RoleVenueManager {
		t.Fatalf("expected venue_manager role, got %q", captured.Role)
	}
	if captured.VenueID.String() != "987654321098765432" {
		t.Fatalf("unexpected venue id %s", captured.VenueID)
	}
}

func TestIdentityMiddlewareRejectsMissingUser(t *testing.T) {
	r, _ := identityTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-User-Role", "customer")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestIdentityMiddlewareRejectsUnknownRole(t *testing.T) {
	r, _ := identityTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-User-Id", "1234567890123456789")
	req.Header.Set("X-User-Role", "superuser")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
