package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenIssuer_SignAndParse(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour)
	userID := uuid.New()
	profileID := uuid.New()

	token, err := ti.Sign(userID, RoleDoctor, profileID)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := ti.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != RoleDoctor {
		t.Errorf("expected role doctor, got %s", claims.Role)
	}
	if claims.ProfileID != profileID {
		t.Errorf("expected profile id %s, got %s", profileID, claims.ProfileID)
	}
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	ti := NewTokenIssuer(testSecret, -time.Minute)
	token, err := ti.Sign(uuid.New(), RolePatient, uuid.New())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ti.Parse(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour)
	other := NewTokenIssuer("another-secret-another-secret-xx", time.Hour)

	token, err := ti.Sign(uuid.New(), RolePatient, uuid.New())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := other.Parse(token); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestJWTMiddleware(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour)
	userID := uuid.New()
	token, _ := ti.Sign(userID, RolePatient, uuid.New())

	e := echo.New()
	handler := JWTMiddleware(ti)(func(c echo.Context) error {
		claims := ClaimsFromContext(c.Request().Context())
		if claims == nil || claims.UserID != userID {
			t.Error("expected claims in context")
		}
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No header
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	err := handler(e.NewContext(req, rec))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}

	// Garbage token
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	err = handler(e.NewContext(req, rec))
	httpErr, ok = err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	run := func(role string, required ...string) error {
		handler := RequireRole(required...)(func(c echo.Context) error {
			return c.String(http.StatusOK, "ok")
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if role != "" {
			claims := &Claims{UserID: uuid.New(), Role: role}
			req = req.WithContext(WithClaims(req.Context(), claims))
		}
		rec := httptest.NewRecorder()
		return handler(e.NewContext(req, rec))
	}

	if err := run(RoleDoctor, RoleDoctor); err != nil {
		t.Errorf("doctor should access doctor route: %v", err)
	}
	if err := run(RoleAdmin, RoleDoctor); err != nil {
		t.Errorf("admin should access any route: %v", err)
	}
	err := run(RolePatient, RoleDoctor)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403 for patient on doctor route, got %v", err)
	}
	err = run("", RoleDoctor)
	httpErr, ok = err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for anonymous, got %v", err)
	}
}
