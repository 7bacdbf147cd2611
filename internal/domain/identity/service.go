package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/caredesk/caredesk/internal/platform/auth"
	"github.com/caredesk/caredesk/pkg/password"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Service struct {
	users    UserRepository
	patients PatientRepository
	doctors  DoctorRepository
	tokens   *auth.TokenIssuer
}

func NewService(users UserRepository, patients PatientRepository, doctors DoctorRepository, tokens *auth.TokenIssuer) *Service {
	return &Service{users: users, patients: patients, doctors: doctors, tokens: tokens}
}

// RegisterInput carries everything needed to create an account plus its
// role-specific profile.
type RegisterInput struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Role       string  `json:"role"`
	FullName   string  `json:"full_name"`
	Age        int     `json:"age"`
	Gender     *string `json:"gender,omitempty"`
	BloodGroup *string `json:"blood_group,omitempty"`
	Specialty  *string `json:"specialty,omitempty"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	ProfileID uuid.UUID `json:"profile_id"`
}

var validRoles = map[string]bool{
	auth.RolePatient: true, auth.RoleDoctor: true, auth.RoleAdmin: true,
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if in.FullName == "" {
		return nil, fmt.Errorf("full_name is required")
	}
	if in.Role == "" {
		in.Role = auth.RolePatient
	}
	if !validRoles[in.Role] {
		return nil, fmt.Errorf("invalid role: %s", in.Role)
	}
	if in.Role == auth.RolePatient && (in.Age < 0 || in.Age > 130) {
		return nil, fmt.Errorf("age must be between 0 and 130")
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		FullName:     in.FullName,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	profileID := u.ID
	switch in.Role {
	case auth.RolePatient:
		p := &Patient{
			UserID:     &u.ID,
			FullName:   in.FullName,
			Age:        in.Age,
			Gender:     in.Gender,
			BloodGroup: in.BloodGroup,
		}
		if err := s.patients.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("create patient profile: %w", err)
		}
		profileID = p.ID
	case auth.RoleDoctor:
		d := &Doctor{
			UserID:    &u.ID,
			FullName:  in.FullName,
			Specialty: in.Specialty,
		}
		if err := s.doctors.Create(ctx, d); err != nil {
			return nil, fmt.Errorf("create doctor profile: %w", err)
		}
		profileID = d.ID
	}

	token, err := s.tokens.Sign(u.ID, u.Role, profileID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &AuthResult{Token: token, UserID: u.ID, Role: u.Role, ProfileID: profileID}, nil
}

func (s *Service) Login(ctx context.Context, email, pw string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !password.Match(u.PasswordHash, pw) {
		return nil, ErrInvalidCredentials
	}

	profileID := u.ID
	switch u.Role {
	case auth.RolePatient:
		if p, err := s.patients.GetByUserID(ctx, u.ID); err == nil {
			profileID = p.ID
		}
	case auth.RoleDoctor:
		if d, err := s.doctors.GetByUserID(ctx, u.ID); err == nil {
			profileID = d.ID
		}
	}

	token, err := s.tokens.Sign(u.ID, u.Role, profileID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &AuthResult{Token: token, UserID: u.ID, Role: u.Role, ProfileID: profileID}, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, limit, offset)
}
