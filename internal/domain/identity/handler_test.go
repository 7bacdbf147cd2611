package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caredesk/caredesk/internal/platform/auth"
)

func newTestHandler(t *testing.T) (*Handler, *Service) {
	t.Helper()
	svc := newTestService()
	return NewHandler(svc), svc
}

func TestHandlerRegister(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	body := `{"email":"new@example.com","password":"supersecret","role":"patient","full_name":"New Patient","age":30}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var result AuthResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Token == "" {
		t.Error("expected token in response")
	}
}

func TestHandlerRegister_Conflict(t *testing.T) {
	h, svc := newTestHandler(t)
	e := echo.New()

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email: "taken@example.com", Password: "supersecret", FullName: "Taken", Age: 25,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := `{"email":"taken@example.com","password":"supersecret","full_name":"Again","age":25}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Register(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Errorf("expected 409, got %v", err)
	}
}

func TestHandlerLogin_BadCredentials(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	body := `{"email":"nobody@example.com","password":"whatever1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestHandlerGetPatient_SelfOnly(t *testing.T) {
	h, svc := newTestHandler(t)
	e := echo.New()

	reg, err := svc.Register(context.Background(), RegisterInput{
		Email: "self@example.com", Password: "supersecret", FullName: "Self", Age: 50,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	get := func(claims *auth.Claims, id uuid.UUID) (int, error) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if claims != nil {
			req = req.WithContext(auth.WithClaims(req.Context(), claims))
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(id.String())
		err := h.GetPatient(c)
		if err != nil {
			if he, ok := err.(*echo.HTTPError); ok {
				return he.Code, err
			}
			return 0, err
		}
		return rec.Code, nil
	}

	// Patient reading their own profile.
	own := &auth.Claims{UserID: reg.UserID, Role: auth.RolePatient, ProfileID: reg.ProfileID}
	if code, _ := get(own, reg.ProfileID); code != http.StatusOK {
		t.Errorf("self read: expected 200, got %d", code)
	}

	// Patient reading someone else's profile.
	other := &auth.Claims{UserID: uuid.New(), Role: auth.RolePatient, ProfileID: uuid.New()}
	if code, _ := get(other, reg.ProfileID); code != http.StatusForbidden {
		t.Errorf("cross-patient read: expected 403, got %d", code)
	}

	// Doctors can read any patient.
	doc := &auth.Claims{UserID: uuid.New(), Role: auth.RoleDoctor, ProfileID: uuid.New()}
	if code, _ := get(doc, reg.ProfileID); code != http.StatusOK {
		t.Errorf("doctor read: expected 200, got %d", code)
	}

	// Unknown id.
	if code, _ := get(doc, uuid.New()); code != http.StatusNotFound {
		t.Errorf("missing patient: expected 404, got %d", code)
	}
}

func TestHandlerGetPatient_BadID(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.GetPatient(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandlerListDoctors(t *testing.T) {
	h, svc := newTestHandler(t)
	e := echo.New()

	specialty := "cardiology"
	for _, email := range []string{"d1@example.com", "d2@example.com"} {
		if _, err := svc.Register(context.Background(), RegisterInput{
			Email: email, Password: "supersecret", Role: auth.RoleDoctor,
			FullName: "Doc", Specialty: &specialty,
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/doctors", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListDoctors(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data  []*Doctor `json:"data"`
		Total int       `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 || len(resp.Data) != 2 {
		t.Errorf("expected 2 doctors, got total=%d len=%d", resp.Total, len(resp.Data))
	}
}
