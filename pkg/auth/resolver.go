package auth

import (
	"context"

	"github.com/nuber-eats/nuber/pkg/logger"
)

// Account is what the resolver needs from a stored user.
type Account struct {
	ID       uint
	Role     Role
	Verified bool
}

// AccountFinder loads an account by id. Implementations return a nil
// account (and any error) when the id is unknown.
type AccountFinder interface {
	FindAccount(ctx context.Context, id uint) (*Account, error)
}

// AccountFinderFunc adapts a function to AccountFinder.
type AccountFinderFunc func(ctx context.Context, id uint) (*Account, error)

func (f AccountFinderFunc) FindAccount(ctx context.Context, id uint) (*Account, error) {
	return f(ctx, id)
}

// Resolver turns a raw credential into a Principal.
type Resolver struct {
	accounts AccountFinder
}

func NewResolver(accounts AccountFinder) *Resolver {
	return &Resolver{accounts: accounts}
}

// Resolve never fails: an empty, malformed or expired token, or a token for
// an account that no longer exists, all yield nil, the same as an anonymous
// request.
func (r *Resolver) Resolve(ctx context.Context, token string) *Principal {
	if token == "" {
		return nil
	}

	claims, err := ValidateToken(token)
	if err != nil {
		logger.WithCtx(ctx).Debug("auth: token rejected", "error", err)
		return nil
	}

	account, err := r.accounts.FindAccount(ctx, claims.ID)
	if err != nil {
		logger.WithCtx(ctx).Warn("auth: account lookup failed", "user_id", claims.ID, "error", err)
		return nil
	}
	if account == nil {
		return nil
	}

	return &Principal{ID: account.ID, Role: account.Role, Verified: account.Verified}
}
