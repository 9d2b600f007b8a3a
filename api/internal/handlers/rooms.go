package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"dorm-management-system/shared/httpx"
)

type addTenantRequest struct {
	Name string  `json:"name"`
	Rent float64 `json:"rent"`
}

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAuth(w, r); !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.Store.Rooms(r.Context()))
}

func (h *Handlers) dashboardStats(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.Reports.Stats(r.Context()))
}

func (h *Handlers) addTenant(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	roomID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || roomID <= 0 {
		httpx.WriteError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid room id", nil)
		return
	}
	var req addTenantRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "name is required", nil)
		return
	}
	if req.Rent < 0 {
		httpx.WriteError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "rent must be >= 0", nil)
		return
	}

	tenant, err := h.Store.AddTenant(r.Context(), roomID, req.Name, req.Rent)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, tenant)
}

func (h *Handlers) removeTenant(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	tenantID := strings.TrimSpace(r.PathValue("id"))
	if tenantID == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid tenant id", nil)
		return
	}
	h.Store.RemoveTenant(r.Context(), tenantID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) toggleBilling(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	tenantID := strings.TrimSpace(r.PathValue("id"))
	if tenantID == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid tenant id", nil)
		return
	}
	h.Store.ToggleTenantBilling(r.Context(), tenantID)
	w.WriteHeader(http.StatusNoContent)
}
