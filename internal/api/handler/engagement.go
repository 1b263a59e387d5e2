package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/albapepper/healthjournal-engagement/internal/api/identity"
	"github.com/albapepper/healthjournal-engagement/internal/api/respond"
	"github.com/albapepper/healthjournal-engagement/internal/cache"
	"github.com/albapepper/healthjournal-engagement/internal/engagement"
)

const (
	defaultHistoryDays = 30
	maxBodyBytes       = 64 << 10
)

// Cache resources invalidated when a user records an event.
var eventResources = []string{"history", "milestones"}

// RecordEventRequest is the body of POST /events.
type RecordEventRequest struct {
	Category string `json:"category" example:"symptom"`
	Date     string `json:"date,omitempty" example:"2026-03-10"`
}

// RecordEvent records one journal activity event.
// @Summary Record an activity event
// @Description Updates the caller's engagement counters and awards crossed milestones. Events without a resolvable user are accepted and dropped.
// @Tags engagement
// @Accept json
// @Produce json
// @Param X-User-ID header string false "Authenticated user ID"
// @Param body body RecordEventRequest true "Event"
// @Success 202 {object} engagement.Result
// @Failure 400 {object} respond.ErrorResponse
// @Router /events [post]
func (h *Handler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserID(r.Context())
	if userID == "" {
		h.logger.Warn("Dropping engagement event without user", "path", r.URL.Path)
		respond.WriteJSONObject(w, http.StatusAccepted, map[string]bool{"recorded": false})
		return
	}

	var req RecordEventRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be a JSON object")
		return
	}

	res, err := h.Engagement.RecordEvent(r.Context(), userID, engagement.Category(req.Category), req.Date)
	if err != nil {
		respond.WriteServiceError(w, h.logger, err)
		return
	}
	if !res.Recorded {
		respond.WriteJSONObject(w, http.StatusAccepted, map[string]bool{"recorded": false})
		return
	}
	h.cache.InvalidateUser(userID, eventResources...)
	if res.Milestones == nil {
		res.Milestones = []engagement.MilestoneType{}
	}
	respond.WriteJSONObject(w, http.StatusAccepted, res)
}

// GetStats returns the caller's engagement counters.
// @Summary Get engagement stats
// @Tags engagement
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Success 200 {object} engagement.Stats
// @Failure 401 {object} respond.ErrorResponse
// @Router /engagement/stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Engagement.Stats(r.Context(), identity.UserID(r.Context()))
	if err != nil {
		respond.WriteServiceError(w, h.logger, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, st)
}

// GetHistory returns daily entry counts for charting, oldest first.
// @Summary Get daily entry history
// @Description One point per day for the last N days ending today, zero-filled. Supports If-None-Match.
// @Tags engagement
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Param days query int false "Number of days (1-365)" default(30)
// @Success 200 {array} engagement.DayCount
// @Success 304 "Not modified"
// @Failure 400 {object} respond.ErrorResponse
// @Router /engagement/history [get]
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	days := defaultHistoryDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_PARAM", "days must be an integer")
			return
		}
		days = n
	}

	userID := identity.UserID(r.Context())
	key := cache.UserKey("history", userID, strconv.Itoa(days), h.Engagement.Today())
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLHistory, true)
		return
	}

	points, err := h.Engagement.History(r.Context(), userID, days)
	if err != nil {
		respond.WriteServiceError(w, h.logger, err)
		return
	}
	h.writeCached(w, r, key, points, cache.TTLHistory)
}

// GetMilestones lists the caller's achieved milestones.
// @Summary List milestones
// @Tags engagement
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Success 200 {array} engagement.Milestone
// @Success 304 "Not modified"
// @Router /milestones [get]
func (h *Handler) GetMilestones(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserID(r.Context())
	key := cache.UserKey("milestones", userID)
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLMilestones, true)
		return
	}

	list, err := h.Engagement.Milestones(r.Context(), userID)
	if err != nil {
		respond.WriteServiceError(w, h.logger, err)
		return
	}
	if list == nil {
		list = []engagement.Milestone{}
	}
	h.writeCached(w, r, key, list, cache.TTLMilestones)
}

// writeCached marshals v, stores it and writes it with its ETag, answering
// 304 when the client already has this version.
func (h *Handler) writeCached(w http.ResponseWriter, r *http.Request, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		respond.WriteServiceError(w, h.logger, err)
		return
	}
	etag := h.cache.Set(key, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}
