package requestctx

import (
	"context"
	"testing"
)

func TestUserIDFromContextRoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), "user-42")
	got := UserIDFromContext(ctx)
	if got != "user-42" {
		t.Fatalf("UserIDFromContext = %q, want %q", got, "user-42")
	}
}

func TestUserIDFromContextEmpty(t *testing.T) {
	got := UserIDFromContext(context.Background())
	if got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestUserIDFromContextNil(t *testing.T) {
	got := UserIDFromContext(nil)
	if got != "" {
		t.Fatalf("expected empty string for nil context, got %q", got)
	}
}

func TestWithUserIDNilContext(t *testing.T) {
	ctx := WithUserID(nil, "user-99")
	if ctx == nil {
		t.Fatalf("expected non-nil context")
	}
	if got := UserIDFromContext(ctx); got != "user-99" {
		t.Fatalf("UserIDFromContext = %q, want %q", got, "user-99")
	}
}

func TestPrincipalRoles(t *testing.T) {
	ctx := WithPrincipal(context.Background(), Principal{UserID: " admin-1 ", Roles: []string{RoleAdmin, RoleReviewer}})
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		t.Fatal("expected principal in context")
	}
	if principal.UserID != "admin-1" {
		t.Fatalf("UserID = %q, want %q", principal.UserID, "admin-1")
	}
	if !principal.IsAdmin() {
		t.Fatal("expected admin role")
	}
	if !principal.HasRole(RoleReviewer) {
		t.Fatal("expected reviewer role")
	}
	if principal.HasRole(" ") {
		t.Fatal("blank role must not match")
	}
}

func TestPrincipalFromContextMissing(t *testing.T) {
	if _, ok := PrincipalFromContext(context.Background()); ok {
		t.Fatal("expected no principal")
	}
	if _, ok := PrincipalFromContext(nil); ok {
		t.Fatal("expected no principal for nil context")
	}
}

func TestWithUserIDHasNoRoles(t *testing.T) {
	principal, _ := PrincipalFromContext(WithUserID(context.Background(), "user-1"))
	if principal.IsAdmin() {
		t.Fatal("user id only principal must not be admin")
	}
}
