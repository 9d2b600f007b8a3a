// Package handlers exposes the dormitory HTTP API. All handlers speak the
// shared JSON error envelope and rely on the auth middleware having placed
// the verified session on the request context.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"dorm-management-system/api/internal/reporting"
	"dorm-management-system/api/internal/session"
	"dorm-management-system/api/internal/store"
	"dorm-management-system/shared/authx"
	"dorm-management-system/shared/httpx"
	"dorm-management-system/shared/logx"
)

type Handlers struct {
	Store    *store.Store
	Resolver *session.Resolver
	Reports  *reporting.Service
	Issuer   *authx.TokenIssuer
	Logger   logx.Logger
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/auth/admin/login", h.adminLogin)
	mux.HandleFunc("POST /api/v1/auth/tenant/login", h.tenantLogin)

	mux.HandleFunc("GET /api/v1/rooms", h.listRooms)
	mux.HandleFunc("GET /api/v1/stats", h.dashboardStats)
	mux.HandleFunc("POST /api/v1/rooms/{id}/tenants", h.addTenant)
	mux.HandleFunc("DELETE /api/v1/tenants/{id}", h.removeTenant)
	mux.HandleFunc("POST /api/v1/tenants/{id}/billing/toggle", h.toggleBilling)

	mux.HandleFunc("GET /api/v1/maintenance-requests", h.listMaintenanceRequests)
	mux.HandleFunc("POST /api/v1/maintenance-requests", h.addMaintenanceRequest)
	mux.HandleFunc("PATCH /api/v1/maintenance-requests/{id}", h.updateMaintenanceRequest)

	mux.HandleFunc("GET /api/v1/announcements", h.listAnnouncements)
	mux.HandleFunc("POST /api/v1/announcements", h.createAnnouncement)
	mux.HandleFunc("DELETE /api/v1/announcements/{id}", h.deleteAnnouncement)

	mux.HandleFunc("GET /api/v1/audit-logs", h.listAuditLogs)
	mux.HandleFunc("POST /api/v1/reports/monthly", h.monthlyReport)
}

// requireAuth returns the session from the context. The auth middleware
// guarantees it for every route it does not skip; a miss means the route
// was wired outside the middleware chain.
func (h *Handlers) requireAuth(w http.ResponseWriter, r *http.Request) (authx.AuthContext, bool) {
	auth, ok := authx.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing auth context", nil)
		return authx.AuthContext{}, false
	}
	return auth, true
}

func (h *Handlers) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	auth, ok := h.requireAuth(w, r)
	if !ok {
		return false
	}
	if !auth.IsAdmin() {
		httpx.WriteError(w, r, http.StatusForbidden, "PERMISSION_DENIED", "admin role required", nil)
		return false
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid json body", nil)
		return false
	}
	return true
}

func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrRoomCapacity):
		httpx.WriteError(w, r, http.StatusConflict, "FAILED_PRECONDITION", err.Error(), nil)
	case errors.Is(err, store.ErrRequestNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		httpx.WriteError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}
