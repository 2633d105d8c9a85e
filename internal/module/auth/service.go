package auth

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/myproject/internal/domain"
)

// Service defines the staff authentication operations.
type Service interface {
	Login(ctx context.Context, email, password string) (*TokenResponse, error)
	CreateStaff(ctx context.Context, name, email, password string) (*domain.StaffUser, error)
	VerifyToken(ctx context.Context, token string) (uint, error)
}

// authService implements Service.
type authService struct {
	tokens *TokenIssuer
	staff  domain.StaffRepository
}

// NewService creates a new auth Service.
func NewService(tokens *TokenIssuer, staff domain.StaffRepository) Service {
	return &authService{tokens: tokens, staff: staff}
}

// Login authenticates a staff account by email and password and returns a
// signed token. Unknown accounts, wrong passwords and inactive accounts all
// yield the same unauthorized error.
func (s *authService) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	staff, err := s.staff.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !staff.IsActive {
		return nil, domain.ErrUnauthorized
	}

	token, exp, err := s.tokens.Issue(staff.ID)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to generate token", err)
	}

	slog.InfoContext(ctx, "staff logged in", "staff_id", staff.ID)
	return &TokenResponse{Token: token, TokenType: "Bearer", ExpiresAt: exp.Unix()}, nil
}

// validateStaffInput validates account input. name and email are expected
// to be pre-trimmed by callers.
func validateStaffInput(name, email, password string) error {
	nameLen := utf8.RuneCountInString(name)
	if nameLen == 0 {
		return domain.NewAppError(domain.CodeValidation, "name is required", nil)
	}
	if nameLen > 100 {
		return domain.NewAppError(domain.CodeValidation, "name must not exceed 100 characters", nil)
	}
	if email == "" {
		return domain.NewAppError(domain.CodeValidation, "email is required", nil)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return domain.NewAppError(domain.CodeValidation, "email must be a valid email address", nil)
	}
	if len(password) < 8 {
		return domain.NewAppError(domain.CodeValidation, "password must be at least 8 characters", nil)
	}
	if len(password) > 72 {
		return domain.NewAppError(domain.CodeValidation, "password must not exceed 72 characters", nil)
	}
	return nil
}

// CreateStaff creates an active staff account with a bcrypt password hash.
func (s *authService) CreateStaff(ctx context.Context, name, email, password string) (*domain.StaffUser, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateStaffInput(name, email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}

	staff := domain.StaffUser{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.staff.Create(ctx, &staff); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "staff account created", "staff_id", staff.ID)
	return &staff, nil
}

// VerifyToken parses token and checks that its account still exists and is
// active.
func (s *authService) VerifyToken(ctx context.Context, token string) (uint, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return 0, domain.NewAppError(domain.CodeUnauthorized, "invalid or expired token", err)
	}
	staff, err := s.staff.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return 0, domain.ErrUnauthorized
		}
		return 0, err
	}
	if !staff.IsActive {
		return 0, domain.ErrUnauthorized
	}
	return id, nil
}
