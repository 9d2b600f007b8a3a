package handlers

import (
	"net/http"
	"strings"

	"dorm-management-system/shared/httpx"
)

type createAnnouncementRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *Handlers) listAnnouncements(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAuth(w, r); !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.Store.Announcements(r.Context()))
}

func (h *Handlers) createAnnouncement(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var req createAnnouncementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if req.Title == "" || req.Content == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "title and content are required", nil)
		return
	}

	announcement := h.Store.CreateAnnouncement(r.Context(), req.Title, req.Content)
	httpx.WriteJSON(w, http.StatusCreated, announcement)
}

func (h *Handlers) deleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid announcement id", nil)
		return
	}
	h.Store.DeleteAnnouncement(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}
