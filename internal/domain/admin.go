package domain

import (
	"context"
	"time"
)

// AdminRole is the role claim carried by admin session tokens.
const AdminRole = "admin"

// AdminUser is an operator allowed to manage content and moderate registrations.
// swagger:model AdminUser
type AdminUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues session tokens (e.g. JWT) for an authenticated admin.
type TokenIssuer interface {
	Issue(adminID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a session token and returns the authenticated admin ID.
type TokenVerifier interface {
	Verify(token string) (adminID string, err error)
}

// AdminRepository defines storage for admin users.
type AdminRepository interface {
	Create(ctx context.Context, admin *AdminUser) error
	GetByEmail(ctx context.Context, email string) (*AdminUser, error)
	GetByID(ctx context.Context, id string) (*AdminUser, error)
	UpdatePassword(ctx context.Context, id, hash, salt string) error
}

// LoginResult is returned by a successful admin login.
// swagger:model LoginResult
type LoginResult struct {
	Token     string     `json:"token"`
	TokenType string     `json:"tokenType"`
	ExpiresAt time.Time  `json:"expiresAt"`
	Admin     *AdminUser `json:"admin"`
}

// AuthService authenticates admins and issues server-verified session tokens.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Me(ctx context.Context, adminID string) (*AdminUser, error)
	// EnsureAdmin creates the admin when missing, or resets its password when present.
	EnsureAdmin(ctx context.Context, email, password, name string) error
}
