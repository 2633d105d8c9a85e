package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/myproject/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// --- fakes ---

// fakeStaffRepo implements domain.StaffRepository for testing.
type fakeStaffRepo struct {
	staff     *domain.StaffUser
	getErr    error
	createErr error
	created   *domain.StaffUser
}

func (f *fakeStaffRepo) Create(_ context.Context, s *domain.StaffUser) error {
	if f.createErr != nil {
		return f.createErr
	}
	s.ID = 1
	f.created = s
	return nil
}

func (f *fakeStaffRepo) GetByEmail(_ context.Context, _ string) (*domain.StaffUser, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.staff, nil
}

func (f *fakeStaffRepo) GetByID(_ context.Context, id uint) (*domain.StaffUser, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.staff == nil || f.staff.ID != id {
		return nil, domain.ErrNotFound
	}
	return f.staff, nil
}

// --- helpers ---

func hashPassword(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

func newIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	tokens, err := NewTokenIssuer(testSecret, "myproject", time.Hour)
	if err != nil {
		t.Fatalf("new token issuer: %v", err)
	}
	return tokens
}

func activeStaff(t *testing.T, pw string) *domain.StaffUser {
	s := &domain.StaffUser{Name: "Alice", Email: "alice@example.com", PasswordHash: hashPassword(t, pw), IsActive: true}
	s.ID = 42
	return s
}

// --- Login tests ---

func TestLogin_Success(t *testing.T) {
	pw := "secret1234"
	tokens := newIssuer(t)
	svc := NewService(tokens, &fakeStaffRepo{staff: activeStaff(t, pw)})

	resp, err := svc.Login(context.Background(), "alice@example.com", pw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("token type = %q; want Bearer", resp.TokenType)
	}
	if resp.ExpiresAt <= time.Now().Unix() {
		t.Error("ExpiresAt should be in the future")
	}

	id, err := tokens.Parse(resp.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if id != 42 {
		t.Errorf("subject = %d; want 42", id)
	}
}

func TestLogin_Unauthorized(t *testing.T) {
	pw := "secret1234"
	inactive := activeStaff(t, pw)
	inactive.IsActive = false

	tests := []struct {
		name     string
		repo     *fakeStaffRepo
		password string
	}{
		{"unknown email", &fakeStaffRepo{getErr: domain.ErrNotFound}, pw},
		{"wrong password", &fakeStaffRepo{staff: activeStaff(t, pw)}, "wrong-password"},
		{"inactive account", &fakeStaffRepo{staff: inactive}, pw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newIssuer(t), tt.repo)
			_, err := svc.Login(context.Background(), "alice@example.com", tt.password)
			if !domain.IsUnauthorized(err) {
				t.Errorf("expected unauthorized error, got: %v", err)
			}
		})
	}
}

func TestLogin_RepositoryError(t *testing.T) {
	boom := domain.NewAppError(domain.CodeInternal, "database error", errors.New("down"))
	svc := NewService(newIssuer(t), &fakeStaffRepo{getErr: boom})

	_, err := svc.Login(context.Background(), "alice@example.com", "secret1234")
	if !errors.Is(err, boom) {
		t.Errorf("expected repository error to pass through, got: %v", err)
	}
}

// --- CreateStaff tests ---

func TestCreateStaff_Success(t *testing.T) {
	repo := &fakeStaffRepo{}
	svc := NewService(newIssuer(t), repo)

	staff, err := svc.CreateStaff(context.Background(), "  Alice ", " Alice@Example.com ", "password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if staff.Name != "Alice" {
		t.Errorf("name = %q; want %q", staff.Name, "Alice")
	}
	if staff.Email != "alice@example.com" {
		t.Errorf("email = %q; want lower-cased address", staff.Email)
	}
	if !staff.IsActive {
		t.Error("new staff should be active")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte("password123")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestCreateStaff_DuplicateEmail(t *testing.T) {
	svc := NewService(newIssuer(t), &fakeStaffRepo{createErr: domain.ErrAlreadyExists})

	_, err := svc.CreateStaff(context.Background(), "Alice", "alice@example.com", "password123")
	if !domain.IsAlreadyExists(err) {
		t.Errorf("expected already-exists error, got: %v", err)
	}
}

func TestValidateStaffInput(t *testing.T) {
	tests := []struct {
		name     string
		inName   string
		email    string
		password string
		wantErr  bool
	}{
		{"valid input", "Alice", "alice@example.com", "password123", false},
		{"empty name", "", "alice@example.com", "password123", true},
		{"empty email", "Alice", "", "password123", true},
		{"invalid email format", "Alice", "notanemail", "password123", true},
		{"malformed email", "Alice", "a@", "password123", true},
		{"password too short", "Alice", "alice@example.com", "short", true},
		{"password exactly 8 chars", "Alice", "alice@example.com", "exactly8", false},
		{"password exceeds 72 chars", "Alice", "alice@example.com", strings.Repeat("A", 73), true},
		{"password exactly 72 chars", "Alice", "alice@example.com", strings.Repeat("A", 72), false},
		{"name exceeds 100 characters", strings.Repeat("A", 101), "alice@example.com", "password123", true},
		{"name of 100 runes", strings.Repeat("é", 100), "alice@example.com", "password123", false},
		{"display-name format rejected", "Alice", "Alice <alice@example.com>", "password123", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateStaffInput(tt.inName, tt.email, tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got err=%v", tt.wantErr, err)
			}
		})
	}
}

// --- VerifyToken tests ---

func TestVerifyToken(t *testing.T) {
	tokens := newIssuer(t)
	staff := activeStaff(t, "secret1234")
	good, _, err := tokens.Issue(staff.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	orphan, _, _ := tokens.Issue(7)

	inactive := *staff
	inactive.IsActive = false

	tests := []struct {
		name    string
		repo    *fakeStaffRepo
		token   string
		wantErr bool
	}{
		{"valid", &fakeStaffRepo{staff: staff}, good, false},
		{"garbage", &fakeStaffRepo{staff: staff}, "not-a-token", true},
		{"deleted account", &fakeStaffRepo{staff: staff}, orphan, true},
		{"deactivated account", &fakeStaffRepo{staff: &inactive}, good, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewService(tokens, tt.repo).VerifyToken(context.Background(), tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got err=%v", tt.wantErr, err)
			}
			if err != nil && !domain.IsUnauthorized(err) {
				t.Errorf("expected unauthorized error, got: %v", err)
			}
			if err == nil && id != staff.ID {
				t.Errorf("id = %d; want %d", id, staff.ID)
			}
		})
	}
}
