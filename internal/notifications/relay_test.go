package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/healthjournal-engagement/internal/logger"
)

func relayServer(t *testing.T, status int, response string, got *[]relayMessage, auth *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRelayClient_Send_OK(t *testing.T) {
	var (
		got  []relayMessage
		auth string
	)
	srv := relayServer(t, http.StatusOK, `{"data":[{"status":"ok","id":"ticket-9"}]}`, &got, &auth)
	c := NewRelayClient(srv.URL, "secret", 0, logger.Discard())

	id, err := c.Send(context.Background(), Message{
		Token: relayToken, Title: "Keep your streak alive", Body: "Log today", Data: map[string]string{"alert_id": "a1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ticket-9", id)
	assert.Equal(t, "Bearer secret", auth)
	require.Len(t, got, 1)
	assert.Equal(t, relayToken, got[0].To)
	assert.Equal(t, "a1", got[0].Data["alert_id"])
}

func TestRelayClient_Send_DeviceNotRegistered(t *testing.T) {
	srv := relayServer(t, http.StatusOK,
		`{"data":[{"status":"error","message":"not a registered push token","details":{"error":"DeviceNotRegistered"}}]}`, nil, nil)
	c := NewRelayClient(srv.URL, "", 10, logger.Discard())

	_, err := c.Send(context.Background(), Message{Token: relayToken})
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRelayClient_Send_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
	}{
		{"server error", http.StatusInternalServerError, `oops`},
		{"request error", http.StatusOK, `{"errors":[{"code":"PUSH_TOO_MANY_EXPERIENCE_IDS","message":"bad"}]}`},
		{"ticket error", http.StatusOK, `{"data":[{"status":"error","message":"too big","details":{"error":"MessageTooBig"}}]}`},
		{"empty", http.StatusOK, `{"data":[]}`},
		{"garbage", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := relayServer(t, tt.status, tt.response, nil, nil)
			_, err := NewRelayClient(srv.URL, "", 0, logger.Discard()).Send(context.Background(), Message{Token: relayToken})
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestRelayClient_NilIsUnavailable(t *testing.T) {
	var c *RelayClient
	_, err := c.Send(context.Background(), Message{Token: relayToken})
	assert.ErrorIs(t, err, ErrTransportUnavailable)
}
