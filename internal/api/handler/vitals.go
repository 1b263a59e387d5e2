package handler

import (
	"net/http"
	"time"

	"github.com/albapepper/healthjournal-engagement/internal/api/identity"
	"github.com/albapepper/healthjournal-engagement/internal/api/respond"
	"github.com/albapepper/healthjournal-engagement/internal/vitals"
	"github.com/albapepper/healthjournal-engagement/internal/wearable"
)

const maxSamplesPerRequest = 500

// HeartRateRequest is the body of POST /vitals/heart-rate.
type HeartRateRequest struct {
	BPM        float64    `json:"bpm" example:"124"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// HeartRateResponse reports what the elevated check did.
type HeartRateResponse struct {
	Outcome vitals.Outcome `json:"outcome" example:"notified"`
}

// SampleInput is one reading in POST /wearable/samples.
type SampleInput struct {
	Metric     string    `json:"metric" example:"heart_rate"`
	Value      float64   `json:"value" example:"72"`
	RecordedAt time.Time `json:"recorded_at"`
}

// SamplesRequest is the body of POST /wearable/samples.
type SamplesRequest struct {
	Samples []SampleInput `json:"samples"`
}

// ReportHeartRate stores a fresh reading and checks it against the
// caller's elevated heart-rate threshold.
// @Summary Submit a heart-rate reading
// @Description Pushes a symptom-logging prompt when the reading is at or above the user's threshold, at most once per cooldown window.
// @Tags vitals
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Param body body HeartRateRequest true "Reading"
// @Success 200 {object} HeartRateResponse
// @Failure 400 {object} respond.ErrorResponse
// @Router /vitals/heart-rate [post]
func (h *Handler) ReportHeartRate(w http.ResponseWriter, r *http.Request) {
	var req HeartRateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	userID := identity.UserID(r.Context())

	if h.Samples != nil && req.BPM > 0 {
		at := h.now().UTC()
		if req.RecordedAt != nil {
			at = req.RecordedAt.UTC()
		}
		err := h.Samples.Record(r.Context(), wearable.Sample{
			UserID: userID, Metric: wearable.MetricHeartRate, Value: req.BPM, RecordedAt: at,
		})
		if err != nil {
			h.logger.Warn("Storing heart-rate sample failed", "user_id", userID, "error", err)
		}
	}

	respond.WriteJSONObject(w, http.StatusOK, HeartRateResponse{
		Outcome: h.Vitals.CheckAndNotify(r.Context(), userID, req.BPM),
	})
}

// RecordSamples stores readings synced from the caller's wearable.
// @Summary Sync wearable samples
// @Description Stores up to 500 readings. Re-sent readings are ignored.
// @Tags vitals
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Param body body SamplesRequest true "Readings"
// @Success 202 {object} map[string]int
// @Failure 400 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /wearable/samples [post]
func (h *Handler) RecordSamples(w http.ResponseWriter, r *http.Request) {
	if h.Samples == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Wearable storage is not configured")
		return
	}
	var req SamplesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Samples) == 0 || len(req.Samples) > maxSamplesPerRequest {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "samples must contain 1 to 500 readings")
		return
	}
	for _, s := range req.Samples {
		if !wearable.Metric(s.Metric).Valid() || s.RecordedAt.IsZero() {
			respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_SAMPLE",
				"each sample needs a known metric and recorded_at", s.Metric)
			return
		}
	}

	userID := identity.UserID(r.Context())
	for _, s := range req.Samples {
		err := h.Samples.Record(r.Context(), wearable.Sample{
			UserID: userID, Metric: wearable.Metric(s.Metric), Value: s.Value, RecordedAt: s.RecordedAt.UTC(),
		})
		if err != nil {
			respond.WriteServiceError(w, h.logger, err)
			return
		}
	}
	respond.WriteJSONObject(w, http.StatusAccepted, map[string]int{"recorded": len(req.Samples)})
}
