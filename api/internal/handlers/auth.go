package handlers

import (
	"net/http"
	"strings"

	"log/slog"

	"dorm-management-system/api/internal/session"
	"dorm-management-system/shared/authx"
	"dorm-management-system/shared/httpx"
)

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tenantLoginRequest struct {
	Name   string `json:"name"`
	RoomID int    `json:"roomId"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	Session session.Session `json:"session"`
}

func (h *Handlers) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "email and password are required", nil)
		return
	}

	sess, ok := h.Resolver.LoginAdmin(r.Context(), req.Email, req.Password)
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid credentials", nil)
		return
	}
	token, err := h.Issuer.Mint(authx.AuthContext{Role: authx.RoleAdmin})
	if err != nil {
		h.Logger.Error(r.Context(), "token_mint_failed", "session token mint failed", slog.Any("error", err))
		httpx.WriteError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, loginResponse{Token: token, Session: sess})
}

func (h *Handlers) tenantLogin(w http.ResponseWriter, r *http.Request) {
	var req tenantLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.RoomID <= 0 {
		httpx.WriteError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "name and roomId are required", nil)
		return
	}

	sess, ok := h.Resolver.FindTenant(r.Context(), req.Name, req.RoomID)
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "no matching tenant", nil)
		return
	}
	token, err := h.Issuer.Mint(authx.AuthContext{
		Role:       authx.RoleTenant,
		TenantID:   sess.Tenant.ID,
		TenantName: sess.Tenant.Name,
		RoomID:     sess.Tenant.RoomID,
	})
	if err != nil {
		h.Logger.Error(r.Context(), "token_mint_failed", "session token mint failed", slog.Any("error", err))
		httpx.WriteError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, loginResponse{Token: token, Session: sess})
}
