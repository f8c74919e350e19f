// Package requestctx carries the authenticated caller through request contexts.
package requestctx

import (
	"context"
	"slices"
	"strings"
)

// Role names accepted on caller tokens.
const (
	RoleAdmin    = "admin"
	RoleReviewer = "reviewer"
)

// Principal identifies the authenticated caller of a request.
type Principal struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the principal carries role.
func (p Principal) HasRole(role string) bool {
	role = strings.TrimSpace(role)
	if role == "" {
		return false
	}
	return slices.Contains(p.Roles, role)
}

// IsAdmin reports whether the principal may use admin-only operations.
func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

type principalContextKey struct{}

// WithPrincipal stores the caller in context.
func WithPrincipal(ctx context.Context, principal Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	principal.UserID = strings.TrimSpace(principal.UserID)
	principal.Roles = slices.Clone(principal.Roles)
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext returns the caller stored in context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	principal, ok := ctx.Value(principalContextKey{}).(Principal)
	return principal, ok
}

// WithUserID stores a user identifier in context with no roles.
func WithUserID(ctx context.Context, userID string) context.Context {
	return WithPrincipal(ctx, Principal{UserID: userID})
}

// UserIDFromContext returns the user identifier stored in context.
func UserIDFromContext(ctx context.Context) string {
	principal, _ := PrincipalFromContext(ctx)
	return principal.UserID
}
