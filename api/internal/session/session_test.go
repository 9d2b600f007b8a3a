package session

import (
	"context"
	"strings"
	"testing"

	"dorm-management-system/api/internal/store"
)

func newResolver(t *testing.T) (*Resolver, *store.Store) {
	t.Helper()
	st := store.New(10, 4)
	return NewResolver(st, "admin@dorm.com", "password123"), st
}

func TestLoginAdmin(t *testing.T) {
	ctx := context.Background()
	r, st := newResolver(t)

	if _, ok := r.LoginAdmin(ctx, "admin@dorm.com", "wrong"); ok {
		t.Fatal("wrong password must fail")
	}
	logs := st.AuditLogs(ctx)
	if len(logs) != 1 || logs[0].Action != "Failed Login" {
		t.Fatalf("expected one Failed Login entry, got %+v", logs)
	}
	if !strings.Contains(logs[0].Details, "admin@dorm.com") {
		t.Fatalf("failed-login details should carry the email: %q", logs[0].Details)
	}

	sess, ok := r.LoginAdmin(ctx, "admin@dorm.com", "password123")
	if !ok || sess.Role != RoleAdmin {
		t.Fatalf("valid credentials rejected: %+v ok=%v", sess, ok)
	}
	logs = st.AuditLogs(ctx)
	if len(logs) != 2 || logs[0].Action != "Admin Login" {
		t.Fatalf("expected Admin Login entry first, got %+v", logs)
	}
}

func TestFindTenant(t *testing.T) {
	ctx := context.Background()
	r, st := newResolver(t)
	tenant, err := st.AddTenant(ctx, 2, "Jane Smith", 900)
	if err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	before := len(st.AuditLogs(ctx))

	sess, ok := r.FindTenant(ctx, " jane SMITH ", 2)
	if !ok || sess.Role != RoleTenant {
		t.Fatalf("lookup failed: %+v ok=%v", sess, ok)
	}
	if sess.Tenant == nil || sess.Tenant.ID != tenant.ID {
		t.Fatalf("session carries wrong tenant: %+v", sess.Tenant)
	}
	logs := st.AuditLogs(ctx)
	if len(logs) != before+1 || logs[0].Action != "Tenant Login" {
		t.Fatalf("expected Tenant Login entry, got %+v", logs[0])
	}

	if _, ok := r.FindTenant(ctx, "Jane Smith", 3); ok {
		t.Fatal("wrong room must fail")
	}
	logs = st.AuditLogs(ctx)
	if logs[0].Action != "Failed Login" {
		t.Fatalf("failed tenant login must audit, got %+v", logs[0])
	}
}
