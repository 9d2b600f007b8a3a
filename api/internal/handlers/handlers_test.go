package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dorm-management-system/api/internal/middleware"
	"dorm-management-system/api/internal/models"
	"dorm-management-system/api/internal/reporting"
	"dorm-management-system/api/internal/session"
	"dorm-management-system/api/internal/store"
	"dorm-management-system/shared/authx"
	"dorm-management-system/shared/logx"
)

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return f.text, f.err
}

type testEnv struct {
	server *httptest.Server
	store  *store.Store
	gen    *fakeGenerator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.New(10, 2)
	log := logx.New("handlers-test", "test", "", "error")
	issuer, err := authx.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	gen := &fakeGenerator{text: "## Overall Summary\nAll quiet."}

	h := &Handlers{
		Store:    st,
		Resolver: session.NewResolver(st, "admin@dorm.com", "password123"),
		Reports:  reporting.NewService(st, gen, nil, time.Minute, log),
		Issuer:   issuer,
		Logger:   log,
	}

	mux := http.NewServeMux()
	h.Register(mux)

	handler := middleware.AuthMiddleware{
		Issuer: issuer,
		Skip: func(r *http.Request) bool {
			return r.URL.Path == "/api/v1/auth/admin/login" || r.URL.Path == "/api/v1/auth/tenant/login"
		},
	}.Wrap(mux)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, store: st, gen: gen}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/auth/admin/login", "", adminLoginRequest{Email: "admin@dorm.com", Password: "password123"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login status %d", resp.StatusCode)
	}
	return decodeBody[loginResponse](t, resp).Token
}

func (e *testEnv) tenantToken(t *testing.T, name string, roomID int) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/auth/tenant/login", "", tenantLoginRequest{Name: name, RoomID: roomID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tenant login status %d", resp.StatusCode)
	}
	return decodeBody[loginResponse](t, resp).Token
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/api/v1/auth/admin/login", "", adminLoginRequest{Email: "admin@dorm.com", Password: "nope"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/v1/rooms", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestTenantLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)

	resp := env.do(t, http.MethodPost, "/api/v1/rooms/2/tenants", admin, addTenantRequest{Name: "John Doe", Rent: 10500})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add tenant status %d", resp.StatusCode)
	}
	tenant := decodeBody[models.Tenant](t, resp)
	if tenant.BillingStatus != models.BillingDue || tenant.RoomID != 2 {
		t.Fatalf("unexpected tenant: %+v", tenant)
	}

	// Room capacity is 2 in this fixture.
	env.do(t, http.MethodPost, "/api/v1/rooms/2/tenants", admin, addTenantRequest{Name: "B", Rent: 1})
	resp = env.do(t, http.MethodPost, "/api/v1/rooms/2/tenants", admin, addTenantRequest{Name: "C", Rent: 1})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("full room status %d, want 409", resp.StatusCode)
	}

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/tenants/%s/billing/toggle", tenant.ID), admin, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("toggle status %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodDelete, "/api/v1/tenants/"+tenant.ID, admin, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("remove status %d", resp.StatusCode)
	}
}

func TestAdminOnlyRoutesRejectTenants(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	env.do(t, http.MethodPost, "/api/v1/rooms/1/tenants", admin, addTenantRequest{Name: "Jane Smith", Rent: 900})
	token := env.tenantToken(t, "Jane Smith", 1)

	for _, tc := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/v1/stats", nil},
		{http.MethodGet, "/api/v1/audit-logs", nil},
		{http.MethodPost, "/api/v1/announcements", createAnnouncementRequest{Title: "t", Content: "c"}},
		{http.MethodPost, "/api/v1/reports/monthly", nil},
		{http.MethodDelete, "/api/v1/tenants/tenant-x", nil},
	} {
		resp := env.do(t, tc.method, tc.path, token, tc.body)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s %s status %d, want 403", tc.method, tc.path, resp.StatusCode)
		}
	}
}

func TestMaintenanceFlow(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	env.do(t, http.MethodPost, "/api/v1/rooms/3/tenants", admin, addTenantRequest{Name: "Peter Jones", Rent: 1200})
	tenant := env.tenantToken(t, "Peter Jones", 3)

	// Tenants may only file for their own room.
	resp := env.do(t, http.MethodPost, "/api/v1/maintenance-requests", tenant, addRequestRequest{RoomID: 5, Description: "Broken window"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("cross-room request status %d, want 403", resp.StatusCode)
	}

	resp = env.do(t, http.MethodPost, "/api/v1/maintenance-requests", tenant, addRequestRequest{RoomID: 3, Description: "Broken window"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add request status %d", resp.StatusCode)
	}
	request := decodeBody[models.MaintenanceRequest](t, resp)
	if request.Status != models.MaintenanceReported || request.Priority != models.PriorityMedium {
		t.Fatalf("unexpected request defaults: %+v", request)
	}

	completed := models.MaintenanceCompleted
	resp = env.do(t, http.MethodPatch, "/api/v1/maintenance-requests/"+request.ID, admin, models.MaintenanceUpdate{Status: &completed})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("update status %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodPatch, "/api/v1/maintenance-requests/req-missing", admin, models.MaintenanceUpdate{Status: &completed})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing request status %d, want 404", resp.StatusCode)
	}

	bad := models.MaintenanceStatus("Paused")
	resp = env.do(t, http.MethodPatch, "/api/v1/maintenance-requests/"+request.ID, admin, models.MaintenanceUpdate{Status: &bad})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid status %d, want 400", resp.StatusCode)
	}
}

func TestAnnouncements(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)

	resp := env.do(t, http.MethodPost, "/api/v1/announcements", admin, createAnnouncementRequest{Title: "BBQ", Content: "Saturday 5 PM"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	announcement := decodeBody[models.Announcement](t, resp)

	resp = env.do(t, http.MethodGet, "/api/v1/announcements", admin, nil)
	list := decodeBody[[]models.Announcement](t, resp)
	if len(list) != 1 || list[0].ID != announcement.ID {
		t.Fatalf("unexpected list: %+v", list)
	}

	resp = env.do(t, http.MethodDelete, "/api/v1/announcements/"+announcement.ID, admin, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
	// Deleting again stays a no-op.
	resp = env.do(t, http.MethodDelete, "/api/v1/announcements/"+announcement.ID, admin, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("repeat delete status %d", resp.StatusCode)
	}
}

func TestStatsAndAuditLogs(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	env.do(t, http.MethodPost, "/api/v1/rooms/1/tenants", admin, addTenantRequest{Name: "A", Rent: 100})

	resp := env.do(t, http.MethodGet, "/api/v1/stats", admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status %d", resp.StatusCode)
	}
	stats := decodeBody[reporting.DashboardStats](t, resp)
	if stats.TotalTenants != 1 || stats.OutstandingDues != 100 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	resp = env.do(t, http.MethodGet, "/api/v1/audit-logs", admin, nil)
	logs := decodeBody[[]models.AuditLog](t, resp)
	if len(logs) < 2 {
		t.Fatalf("expected login and add entries, got %+v", logs)
	}
	if logs[0].Action != "Tenant Added" {
		t.Fatalf("most recent entry should be Tenant Added, got %q", logs[0].Action)
	}
}

func TestMonthlyReport(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)

	resp := env.do(t, http.MethodPost, "/api/v1/reports/monthly", admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report status %d", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["report"] == "" {
		t.Fatal("empty report body")
	}

	env.gen.err = errors.New("upstream down")
	env.gen.text = ""
	resp = env.do(t, http.MethodPost, "/api/v1/reports/monthly", admin, nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("failed report status %d, want 502", resp.StatusCode)
	}
}
