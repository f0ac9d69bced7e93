package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"churchsite/internal/domain"
)

const minPasswordLen = 8

type authService struct {
	adminRepo      domain.AdminRepository
	hasher         domain.PasswordHasher
	issuer         domain.TokenIssuer
	tokenExpiry    time.Duration
	contextTimeout time.Duration
	now            func() time.Time
}

// NewAuthService creates an AuthService for admin login and bootstrap.
func NewAuthService(adminRepo domain.AdminRepository, hasher domain.PasswordHasher, issuer domain.TokenIssuer, tokenExpiry, timeout time.Duration) domain.AuthService {
	return &authService{
		adminRepo:      adminRepo,
		hasher:         hasher,
		issuer:         issuer,
		tokenExpiry:    tokenExpiry,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// Login checks the credentials and issues a signed admin token.
// Unknown email and wrong password both report ErrUnauthorized.
func (s *authService) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	admin, err := s.adminRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.hasher.Compare(admin.PasswordHash, admin.Salt, password); err != nil {
		return nil, domain.ErrUnauthorized
	}

	issuedAt := s.now()
	token, err := s.issuer.Issue(admin.ID, admin.Email, []string{domain.AdminRole}, s.tokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &domain.LoginResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: issuedAt.Add(s.tokenExpiry),
		Admin:     admin,
	}, nil
}

func (s *authService) Me(ctx context.Context, adminID string) (*domain.AdminUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("me: %w", err)
	}
	return admin, nil
}

// EnsureAdmin creates the admin account, or resets its password when it no longer matches.
func (s *authService) EnsureAdmin(ctx context.Context, email, password, name string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = domain.NormalizeEmail(email)
	verr := &domain.ValidationError{}
	validEmail(verr, "email", email)
	if email == "" {
		verr.Add("email", "is required")
	}
	if len(password) < minPasswordLen {
		verr.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	existing, err := s.adminRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if s.hasher.Compare(existing.PasswordHash, existing.Salt, password) == nil {
			return nil
		}
		salt, hash, err := s.hashPassword(password)
		if err != nil {
			return err
		}
		if err := s.adminRepo.UpdatePassword(ctx, existing.ID, hash, salt); err != nil {
			return fmt.Errorf("ensure admin: update password: %w", err)
		}
		return nil
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("ensure admin: %w", err)
	}

	salt, hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}
	now := s.now()
	admin := &domain.AdminUser{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("ensure admin: create: %w", err)
	}
	return nil
}

func (s *authService) hashPassword(password string) (salt, hash string, err error) {
	salt, err = s.hasher.GenerateSalt()
	if err != nil {
		return "", "", fmt.Errorf("ensure admin: %w", err)
	}
	hash, err = s.hasher.Hash(salt, password)
	if err != nil {
		return "", "", fmt.Errorf("ensure admin: %w", err)
	}
	return salt, hash, nil
}
