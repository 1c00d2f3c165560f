// Package rbac decides whether a caller may invoke an operation.
//
// Every operation declares a *Policy at registration time (or nil when it is
// open to anonymous callers). Allow is evaluated once per call, after the
// identity middleware has attached the caller's principal to the context.
package rbac

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/nuber-eats/nuber/pkg/auth"
	"github.com/nuber-eats/nuber/pkg/response"
)

// Any is the wildcard role: any authenticated caller.
const Any auth.Role = "Any"

// ErrForbidden is the only error a denied call ever sees. It says nothing
// about whether the caller was anonymous or held the wrong role.
var ErrForbidden = errors.New("forbidden")

// Policy is the set of roles allowed to invoke an operation.
type Policy struct {
	roles map[auth.Role]struct{}
}

// Roles builds a policy from a role list. Include Any to admit every
// authenticated caller.
func Roles(roles ...auth.Role) *Policy {
	p := &Policy{roles: make(map[auth.Role]struct{}, len(roles))}
	for _, r := range roles {
		p.roles[r] = struct{}{}
	}
	return p
}

// Authenticated admits any caller with a principal.
func Authenticated() *Policy { return Roles(Any) }

func (p *Policy) has(r auth.Role) bool {
	_, ok := p.roles[r]
	return ok
}

func (p *Policy) String() string {
	if p == nil {
		return "-"
	}
	names := make([]string, 0, len(p.roles))
	for r := range p.roles {
		names = append(names, string(r))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// Allow reports whether principal may invoke an operation guarded by policy.
// A nil policy allows everyone; otherwise a principal is required and must
// hold one of the policy's roles, unless the policy contains Any. Admin has
// no implicit pass.
func Allow(policy *Policy, principal *auth.Principal) bool {
	if policy == nil {
		return true
	}
	if principal == nil {
		return false
	}
	if policy.has(Any) {
		return true
	}
	return policy.has(principal.Role)
}

// Check is Allow against the principal carried by ctx, returning ErrForbidden
// on deny.
func Check(ctx context.Context, policy *Policy) error {
	if !Allow(policy, auth.PrincipalFrom(ctx)) {
		return ErrForbidden
	}
	return nil
}

// Require is the HTTP form of Check. Denied requests get a bare 403.
func Require(policy *Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := Check(r.Context(), policy); err != nil {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Registry maps operation names to their declared policy.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]*Policy
}

func NewRegistry() *Registry {
	return &Registry{policies: make(map[string]*Policy)}
}

// Declare records the policy for op. Declaring the same op twice is a
// programming error.
func (r *Registry) Declare(op string, policy *Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.policies[op]; dup {
		panic(fmt.Sprintf("rbac: operation %q declared twice", op))
	}
	r.policies[op] = policy
}

// Policy returns op's policy. Unknown operations get a policy no role
// satisfies, so a missing declaration fails closed.
func (r *Registry) Policy(op string) *Policy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[op]
	if !ok {
		return Roles()
	}
	return p
}

// Authorize checks ctx's principal against op's declared policy.
func (r *Registry) Authorize(ctx context.Context, op string) error {
	return Check(ctx, r.Policy(op))
}

// Operation is one row of List.
type Operation struct {
	Name   string
	Policy string
}

// List returns every declared operation sorted by name.
func (r *Registry) List() []Operation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Operation, 0, len(r.policies))
	for name, p := range r.policies {
		out = append(out, Operation{Name: name, Policy: p.String()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
