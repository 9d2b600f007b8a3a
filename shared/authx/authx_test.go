package authx

import (
	"testing"
	"time"
)

func TestMintVerifyRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	token, err := issuer.Mint(AuthContext{Role: RoleTenant, TenantID: "tenant-1", TenantName: "John Doe", RoomID: 3})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	auth, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if auth.Role != RoleTenant || auth.TenantID != "tenant-1" || auth.RoomID != 3 {
		t.Fatalf("unexpected auth context: %+v", auth)
	}

	adminToken, err := issuer.Mint(AuthContext{Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Mint admin: %v", err)
	}
	auth, err = issuer.Verify(adminToken)
	if err != nil || !auth.IsAdmin() {
		t.Fatalf("admin token rejected: %+v err=%v", auth, err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	a, _ := NewTokenIssuer("secret-a", time.Hour)
	b, _ := NewTokenIssuer("secret-b", time.Hour)

	token, err := a.Mint(AuthContext{Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, err := b.Verify(token); err == nil {
		t.Fatal("token signed with a different secret must fail")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer, _ := NewTokenIssuer("test-secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	token, err := issuer.Mint(AuthContext{Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	issuer.now = time.Now
	if _, err := issuer.Verify(token); err == nil {
		t.Fatal("expired token must fail")
	}
}

func TestMintRejectsUnknownRole(t *testing.T) {
	issuer, _ := NewTokenIssuer("test-secret", time.Hour)
	if _, err := issuer.Mint(AuthContext{Role: "superuser"}); err == nil {
		t.Fatal("unknown role must fail")
	}
}
