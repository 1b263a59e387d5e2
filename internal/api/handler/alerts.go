package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/albapepper/healthjournal-engagement/internal/alerts"
	"github.com/albapepper/healthjournal-engagement/internal/api/identity"
	"github.com/albapepper/healthjournal-engagement/internal/api/respond"
)

// ListAlerts returns one page of the caller's unexpired alerts, newest first.
// @Summary List alerts
// @Description Paged inbox with total and unread counts.
// @Tags alerts
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Param limit query int false "Page size (max 100)" default(20)
// @Param offset query int false "Offset" default(0)
// @Param unread_only query bool false "Only unread alerts"
// @Success 200 {object} alerts.Inbox
// @Failure 400 {object} respond.ErrorResponse
// @Router /alerts [get]
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f alerts.ListFilter
	var err error
	if v := q.Get("limit"); v != "" {
		if f.Limit, err = strconv.Atoi(v); err != nil {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_PARAM", "limit must be an integer")
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if f.Offset, err = strconv.Atoi(v); err != nil {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_PARAM", "offset must be an integer")
			return
		}
	}
	if v := q.Get("unread_only"); v != "" {
		if f.UnreadOnly, err = strconv.ParseBool(v); err != nil {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_PARAM", "unread_only must be a boolean")
			return
		}
	}

	inbox, err := h.Alerts.Inbox(r.Context(), identity.UserID(r.Context()), f)
	if err != nil {
		respond.WriteServiceError(w, h.logger, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, inbox)
}

// MarkAlertRead flags one alert as read.
// @Summary Mark alert read
// @Tags alerts
// @Param X-User-ID header string true "Authenticated user ID"
// @Param id path string true "Alert ID"
// @Success 204
// @Failure 404 {object} respond.ErrorResponse
// @Router /alerts/{id}/read [post]
func (h *Handler) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	id, ok := alertID(w, r)
	if !ok {
		return
	}
	if err := h.Alerts.MarkRead(r.Context(), identity.UserID(r.Context()), id); err != nil {
		respond.WriteServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllAlertsRead flags all of the caller's alerts as read.
// @Summary Mark all alerts read
// @Tags alerts
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Success 200 {object} map[string]int64
// @Router /alerts/read-all [post]
func (h *Handler) MarkAllAlertsRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.Alerts.MarkAllRead(r.Context(), identity.UserID(r.Context()))
	if err != nil {
		respond.WriteServiceError(w, h.logger, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]int64{"updated": n})
}

// DismissAlert deletes one alert.
// @Summary Dismiss alert
// @Tags alerts
// @Param X-User-ID header string true "Authenticated user ID"
// @Param id path string true "Alert ID"
// @Success 204
// @Failure 404 {object} respond.ErrorResponse
// @Router /alerts/{id} [delete]
func (h *Handler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := alertID(w, r)
	if !ok {
		return
	}
	if err := h.Alerts.Dismiss(r.Context(), identity.UserID(r.Context()), id); err != nil {
		respond.WriteServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func alertID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
