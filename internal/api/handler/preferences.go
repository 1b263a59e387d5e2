package handler

import (
	"encoding/json"
	"net/http"

	"github.com/albapepper/healthjournal-engagement/internal/api/identity"
	"github.com/albapepper/healthjournal-engagement/internal/api/respond"
	"github.com/albapepper/healthjournal-engagement/internal/preferences"
)

// ThresholdRequest is the body of PUT /preferences/heart-rate-threshold.
type ThresholdRequest struct {
	BPM int `json:"bpm" example:"110"`
}

// DeviceTokenRequest is the body of PUT /devices/token.
type DeviceTokenRequest struct {
	Token string `json:"token" example:"ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]"`
}

// GetPreferences returns the caller's notification preferences.
// @Summary Get notification preferences
// @Description Users who never saved preferences get the defaults.
// @Tags preferences
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Success 200 {object} preferences.Preferences
// @Router /preferences [get]
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := h.Preferences.Get(r.Context(), identity.UserID(r.Context()))
	if err != nil {
		respond.WriteServiceError(w, h.logger, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, p)
}

// UpdatePreferences applies a partial update.
// @Summary Update notification preferences
// @Description Omitted fields are left unchanged.
// @Tags preferences
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Param body body preferences.Patch true "Changes"
// @Success 200 {object} preferences.Preferences
// @Failure 400 {object} respond.ErrorResponse
// @Router /preferences [put]
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var patch preferences.Patch
	if !decodeBody(w, r, &patch) {
		return
	}
	p, err := h.Preferences.Update(r.Context(), identity.UserID(r.Context()), patch)
	if err != nil {
		respond.WriteServiceError(w, h.logger, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, p)
}

// SetHeartRateThreshold sets the elevated heart-rate threshold.
// @Summary Set heart-rate threshold
// @Tags preferences
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Authenticated user ID"
// @Param body body ThresholdRequest true "Threshold"
// @Success 200 {object} preferences.Preferences
// @Failure 400 {object} respond.ErrorResponse
// @Router /preferences/heart-rate-threshold [put]
func (h *Handler) SetHeartRateThreshold(w http.ResponseWriter, r *http.Request) {
	var req ThresholdRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.Preferences.SetHeartRateThreshold(r.Context(), identity.UserID(r.Context()), req.BPM)
	if err != nil {
		respond.WriteServiceError(w, h.logger, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, p)
}

// RegisterDeviceToken stores the caller's push token.
// @Summary Register device push token
// @Tags preferences
// @Accept json
// @Param X-User-ID header string true "Authenticated user ID"
// @Param body body DeviceTokenRequest true "Token"
// @Success 204
// @Failure 400 {object} respond.ErrorResponse
// @Router /devices/token [put]
func (h *Handler) RegisterDeviceToken(w http.ResponseWriter, r *http.Request) {
	var req DeviceTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.Preferences.RegisterDeviceToken(r.Context(), identity.UserID(r.Context()), req.Token); err != nil {
		respond.WriteServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Request body is not valid JSON for this endpoint", err.Error())
		return false
	}
	return true
}
