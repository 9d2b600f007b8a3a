package handlers

import (
	"net/http"

	"dorm-management-system/shared/httpx"
)

func (h *Handlers) listAuditLogs(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.Store.AuditLogs(r.Context()))
}

func (h *Handlers) monthlyReport(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	report, err := h.Reports.MonthlyReport(r.Context())
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadGateway, "INTERNAL_ERROR", "failed to generate report", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"report": report})
}
