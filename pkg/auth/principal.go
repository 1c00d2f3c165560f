package auth

import (
	"context"
	"fmt"
)

// Role is an account's role on the platform.
type Role string

const (
	RoleClient   Role = "Client"
	RoleOwner    Role = "Owner"
	RoleDelivery Role = "Delivery"
	RoleAdmin    Role = "Admin"
)

// Roles lists every assignable role.
var Roles = []Role{RoleClient, RoleOwner, RoleDelivery, RoleAdmin}

func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

// ParseRole maps a role name onto a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("auth: unknown role %q", s)
	}
	return r, nil
}

// Principal is the authenticated caller of one request.
type Principal struct {
	ID       uint
	Role     Role
	Verified bool
}

type principalKey struct{}

// WithPrincipal attaches p to ctx. A nil p leaves the request anonymous.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal attached to ctx, or nil.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
