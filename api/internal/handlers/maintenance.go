package handlers

import (
	"net/http"
	"strings"

	"dorm-management-system/api/internal/models"
	"dorm-management-system/shared/httpx"
)

type addRequestRequest struct {
	RoomID      int    `json:"roomId"`
	Description string `json:"description"`
}

func (h *Handlers) listMaintenanceRequests(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAuth(w, r); !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.Store.MaintenanceRequests(r.Context()))
}

func (h *Handlers) addMaintenanceRequest(w http.ResponseWriter, r *http.Request) {
	auth, ok := h.requireAuth(w, r)
	if !ok {
		return
	}
	var req addRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.RoomID <= 0 || req.Description == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "roomId and description are required", nil)
		return
	}

	actor := models.ActorAdmin
	if !auth.IsAdmin() {
		// Tenants may only report issues for their own room.
		if req.RoomID != auth.RoomID {
			httpx.WriteError(w, r, http.StatusForbidden, "PERMISSION_DENIED", "tenants may only file requests for their own room", nil)
			return
		}
		actor = auth.TenantName
	}

	request := h.Store.AddMaintenanceRequest(r.Context(), req.RoomID, req.Description, actor)
	httpx.WriteJSON(w, http.StatusCreated, request)
}

func (h *Handlers) updateMaintenanceRequest(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid request id", nil)
		return
	}
	var update models.MaintenanceUpdate
	if !decodeJSON(w, r, &update) {
		return
	}
	if update.Status != nil && !update.Status.Valid() {
		httpx.WriteError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid status", nil)
		return
	}
	if update.Priority != nil && !update.Priority.Valid() {
		httpx.WriteError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid priority", nil)
		return
	}

	if err := h.Store.UpdateMaintenanceRequest(r.Context(), id, update); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
