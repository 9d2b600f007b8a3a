// Package session resolves login attempts into role-tagged identities.
// There is a single fixed admin credential pair and tenants sign in with
// their name plus room number; every attempt lands in the audit trail.
package session

import (
	"context"
	"fmt"
	"strings"

	"dorm-management-system/api/internal/models"
	"dorm-management-system/api/internal/store"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleTenant Role = "tenant"
)

// Session is the resolved identity held by the client after a successful
// login. Tenant is set only for tenant sessions. There is no server-side
// session state; logout is the client discarding its token.
type Session struct {
	Role   Role           `json:"role"`
	Tenant *models.Tenant `json:"tenant,omitempty"`
}

type Resolver struct {
	store         *store.Store
	adminEmail    string
	adminPassword string
}

func NewResolver(st *store.Store, adminEmail string, adminPassword string) *Resolver {
	return &Resolver{store: st, adminEmail: adminEmail, adminPassword: adminPassword}
}

// LoginAdmin checks the fixed credential pair and fails closed on any
// mismatch. Both outcomes are audited.
func (r *Resolver) LoginAdmin(ctx context.Context, email string, password string) (Session, bool) {
	if email == r.adminEmail && password == r.adminPassword {
		r.store.AppendAudit(ctx, models.ActorAdmin, "Admin Login", "Admin user logged in successfully.")
		return Session{Role: RoleAdmin}, true
	}
	r.store.AppendAudit(ctx, models.ActorSystem, "Failed Login",
		fmt.Sprintf("Failed login attempt for email: %s.", email))
	return Session{}, false
}

// FindTenant matches the supplied name (case-insensitive, trimmed) and room
// number against the store. The first match wins; names are not unique.
// Failed attempts are audited the same way failed admin logins are.
func (r *Resolver) FindTenant(ctx context.Context, name string, roomID int) (Session, bool) {
	tenant, ok := r.store.FindTenant(ctx, name, roomID)
	if !ok {
		r.store.AppendAudit(ctx, models.ActorSystem, "Failed Login",
			fmt.Sprintf("Failed tenant login attempt for '%s' in Room %d.", strings.TrimSpace(name), roomID))
		return Session{}, false
	}
	r.store.AppendAudit(ctx, models.ActorTenant, "Tenant Login",
		fmt.Sprintf("Tenant '%s' logged in.", tenant.Name))
	return Session{Role: RoleTenant, Tenant: &tenant}, true
}
