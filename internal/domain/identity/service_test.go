package identity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/caredesk/caredesk/internal/platform/auth"
)

// -- Mock Repositories --

type mockUserRepo struct {
	users map[uuid.UUID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

type mockPatientRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockPatientRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Patient, error) {
	for _, p := range m.patients {
		if p.UserID != nil && *p.UserID == userID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, len(result), nil
}

type mockDoctorRepo struct {
	doctors map[uuid.UUID]*Doctor
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return d, nil
}

func (m *mockDoctorRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Doctor, error) {
	for _, d := range m.doctors {
		if d.UserID != nil && *d.UserID == userID {
			return d, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockDoctorRepo) List(_ context.Context, limit, offset int) ([]*Doctor, int, error) {
	var result []*Doctor
	for _, d := range m.doctors {
		result = append(result, d)
	}
	return result, len(result), nil
}

func newTestService() *Service {
	tokens := auth.NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	return NewService(newMockUserRepo(), newMockPatientRepo(), newMockDoctorRepo(), tokens)
}

// -- Tests --

func TestRegister_Patient(t *testing.T) {
	svc := newTestService()

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Jane@Example.com",
		Password: "supersecret",
		Role:     auth.RolePatient,
		FullName: "Jane Doe",
		Age:      34,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Token == "" {
		t.Error("expected a token")
	}
	if result.Role != auth.RolePatient {
		t.Errorf("expected patient role, got %s", result.Role)
	}
	if result.ProfileID == uuid.Nil || result.ProfileID == result.UserID {
		t.Error("expected a distinct patient profile id")
	}
}

func TestRegister_DefaultsToPatientRole(t *testing.T) {
	svc := newTestService()

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "default@example.com",
		Password: "supersecret",
		FullName: "Default Role",
		Age:      20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Role != auth.RolePatient {
		t.Errorf("expected patient role, got %s", result.Role)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestService()
	in := RegisterInput{
		Email:    "dup@example.com",
		Password: "supersecret",
		Role:     auth.RoleDoctor,
		FullName: "Dr. Dup",
	}

	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), in); err != ErrEmailTaken {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"missing email", RegisterInput{Password: "supersecret", FullName: "X"}},
		{"short password", RegisterInput{Email: "a@b.c", Password: "short", FullName: "X"}},
		{"missing name", RegisterInput{Email: "a@b.c", Password: "supersecret"}},
		{"bad role", RegisterInput{Email: "a@b.c", Password: "supersecret", FullName: "X", Role: "wizard"}},
		{"bad age", RegisterInput{Email: "a@b.c", Password: "supersecret", FullName: "X", Role: "patient", Age: 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tt.in); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService()

	reg, err := svc.Register(context.Background(), RegisterInput{
		Email:    "login@example.com",
		Password: "supersecret",
		Role:     auth.RolePatient,
		FullName: "Login Test",
		Age:      40,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := svc.Login(context.Background(), "LOGIN@example.com", "supersecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.UserID != reg.UserID {
		t.Errorf("expected user id %s, got %s", reg.UserID, result.UserID)
	}
	if result.ProfileID != reg.ProfileID {
		t.Errorf("expected profile id %s, got %s", reg.ProfileID, result.ProfileID)
	}

	if _, err := svc.Login(context.Background(), "login@example.com", "wrongpass"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "unknown@example.com", "supersecret"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
