package auth

import (
	"context"

	"github.com/pingpanel/pingpanel/server/internal/store"
)

// Identity is the unified identity representation for all auth providers.
type Identity struct {
	UserID   string // local user ID; for external providers, set after provisioning
	Subject  string // external provider user ID, empty for builtin
	Username string
	Role     string // "admin" or "user"
}

// Provider validates bearer tokens and returns identities.
type Provider interface {
	ValidateToken(ctx context.Context, token string) (*Identity, error)
	Bootstrap(ctx context.Context) error
	Name() string
}

// LoginProvider is implemented by providers that support username/password login.
type LoginProvider interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password, role, plan string) (*store.User, error)
}
