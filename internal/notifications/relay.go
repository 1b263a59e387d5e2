package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RelayClient sends push notifications through the Expo push relay.
// Rate limiting is handled via a token bucket limiter.
type RelayClient struct {
	httpClient  *http.Client
	url         string
	accessToken string
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// NewRelayClient creates a relay client. requestsPerSecond <= 0 disables
// the limiter.
func NewRelayClient(url, accessToken string, requestsPerSecond int, logger *slog.Logger) *RelayClient {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &RelayClient{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		url:         url,
		accessToken: accessToken,
		limiter:     rate.NewLimiter(limit, max(requestsPerSecond, 1)),
		logger:      logger,
	}
}

type relayMessage struct {
	To       string            `json:"to"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Sound    string            `json:"sound"`
	Priority string            `json:"priority"`
}

// relayResponse is the relay's ticket wrapper.
type relayResponse struct {
	Data []struct {
		Status  string `json:"status"`
		ID      string `json:"id"`
		Message string `json:"message"`
		Details struct {
			Error string `json:"error"`
		} `json:"details"`
	} `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Send delivers one message and returns the relay ticket ID.
func (c *RelayClient) Send(ctx context.Context, m Message) (string, error) {
	if c == nil || c.url == "" {
		return "", ErrTransportUnavailable
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal([]relayMessage{{
		To:       m.Token,
		Title:    m.Title,
		Body:     m.Body,
		Data:     m.Data,
		Sound:    "default",
		Priority: "high",
	}})
	if err != nil {
		return "", fmt.Errorf("encode relay message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("relay request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("relay returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result relayResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("relay error %s: %s", result.Errors[0].Code, result.Errors[0].Message)
	}
	if len(result.Data) == 0 {
		return "", fmt.Errorf("relay returned no ticket")
	}

	ticket := result.Data[0]
	if ticket.Status != "ok" {
		if ticket.Details.Error == "DeviceNotRegistered" {
			return "", fmt.Errorf("%w: %s", ErrTokenInvalid, ticket.Message)
		}
		return "", fmt.Errorf("relay ticket %s: %s", ticket.Details.Error, ticket.Message)
	}
	return ticket.ID, nil
}
