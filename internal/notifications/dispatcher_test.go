package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/healthjournal-engagement/internal/logger"
)

// transportMock is a Func-field fake that counts calls.
type transportMock struct {
	mu       sync.Mutex
	calls    []Message
	SendFunc func(ctx context.Context, m Message) (string, error)
}

func (t *transportMock) Send(ctx context.Context, m Message) (string, error) {
	t.mu.Lock()
	t.calls = append(t.calls, m)
	t.mu.Unlock()
	return t.SendFunc(ctx, m)
}

func accepting(id string) *transportMock {
	return &transportMock{SendFunc: func(context.Context, Message) (string, error) { return id, nil }}
}

func failing(err error) *transportMock {
	return &transportMock{SendFunc: func(context.Context, Message) (string, error) { return "", err }}
}

const (
	relayToken   = "ExponentPushToken[abc123def456]"
	gatewayToken = "fcm-token-0123456789abcdef"
)

func TestIsRelayToken(t *testing.T) {
	assert.True(t, IsRelayToken("ExponentPushToken[xyz]"))
	assert.True(t, IsRelayToken("ExpoPushToken[xyz]"))
	assert.False(t, IsRelayToken("ExponentPushToken[]"))
	assert.False(t, IsRelayToken(gatewayToken))
}

func TestSend_GatewayInvalidTokenFallsBackToRelay(t *testing.T) {
	gateway := failing(fmt.Errorf("%w: registration token is not valid", ErrTokenInvalid))
	relay := accepting("ticket-1")
	d := NewDispatcher(relay, gateway, 0, logger.Discard())

	res := d.Send(context.Background(), gatewayToken, "Title", "Body", nil)

	assert.True(t, res.Success)
	assert.Equal(t, "ticket-1", res.MessageID)
	assert.Equal(t, TransportRelay, res.Transport)
	assert.Len(t, gateway.calls, 1)
	require.Len(t, relay.calls, 1)
	assert.Equal(t, gatewayToken, relay.calls[0].Token)
}

func TestSend_RelayTokenNeverUsesGateway(t *testing.T) {
	gateway := accepting("msg-1")
	relay := failing(errors.New("relay returned 503"))
	d := NewDispatcher(relay, gateway, 0, logger.Discard())

	res := d.Send(context.Background(), relayToken, "Title", "Body", nil)

	assert.False(t, res.Success)
	assert.Equal(t, TransportRelay, res.Transport)
	assert.Contains(t, res.Error, "503")
	assert.Empty(t, gateway.calls)
}

func TestSend_GatewayOtherErrorDoesNotFallBack(t *testing.T) {
	gateway := failing(errors.New("fcm send: deadline exceeded"))
	relay := accepting("ticket-1")
	d := NewDispatcher(relay, gateway, 0, logger.Discard())

	res := d.Send(context.Background(), gatewayToken, "Title", "Body", nil)

	assert.False(t, res.Success)
	assert.Equal(t, TransportGateway, res.Transport)
	assert.Empty(t, relay.calls)
}

func TestSend_GatewaySuccess(t *testing.T) {
	d := NewDispatcher(accepting("ticket"), accepting("projects/p/messages/1"), 0, logger.Discard())
	res := d.Send(context.Background(), gatewayToken, "Title", "Body", map[string]string{"k": "v"})
	assert.Equal(t, Result{Success: true, MessageID: "projects/p/messages/1", Transport: TransportGateway}, res)
}

func TestSend_FallbackIsAttemptedOnce(t *testing.T) {
	invalid := fmt.Errorf("%w: DeviceNotRegistered", ErrTokenInvalid)
	gateway, relay := failing(invalid), failing(invalid)
	d := NewDispatcher(relay, gateway, 0, logger.Discard())

	res := d.Send(context.Background(), gatewayToken, "Title", "Body", nil)

	assert.False(t, res.Success)
	assert.Len(t, gateway.calls, 1)
	assert.Len(t, relay.calls, 1)
}

func TestSend_RecoversFromPanic(t *testing.T) {
	gateway := &transportMock{SendFunc: func(context.Context, Message) (string, error) {
		panic("nil map write")
	}}
	d := NewDispatcher(accepting("x"), gateway, 0, logger.Discard())

	var res Result
	require.NotPanics(t, func() {
		res = d.Send(context.Background(), gatewayToken, "Title", "Body", nil)
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "panic")
}

func TestSend_MissingTransportsAndToken(t *testing.T) {
	d := NewDispatcher(nil, nil, 0, logger.Discard())
	assert.Equal(t, ErrNoDeviceToken.Error(), d.Send(context.Background(), "", "T", "B", nil).Error)
	assert.Equal(t, ErrTransportUnavailable.Error(), d.Send(context.Background(), relayToken, "T", "B", nil).Error)

	var nilGateway *FCMGateway
	d = NewDispatcher(nil, nilGateway, 0, logger.Discard())
	res := d.Send(context.Background(), gatewayToken, "T", "B", nil)
	assert.False(t, res.Success)
}

type messageSenderMock struct {
	got *messaging.Message
	id  string
	err error
}

func (m *messageSenderMock) Send(_ context.Context, msg *messaging.Message) (string, error) {
	m.got = msg
	return m.id, m.err
}

func TestFCMGateway_Send(t *testing.T) {
	client := &messageSenderMock{id: "projects/p/messages/42"}
	g := &FCMGateway{client: client, logger: logger.Discard()}

	id, err := g.Send(context.Background(), Message{Token: gatewayToken, Title: "T", Body: "B", Data: map[string]string{"a": "1"}})
	require.NoError(t, err)
	assert.Equal(t, "projects/p/messages/42", id)
	assert.Equal(t, gatewayToken, client.got.Token)
	assert.Equal(t, "T", client.got.Notification.Title)
	assert.Equal(t, "high", client.got.Android.Priority)

	client.err = errors.New("unavailable")
	_, err = g.Send(context.Background(), Message{Token: gatewayToken})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestNewFCMGateway_DisabledWithoutCredentials(t *testing.T) {
	g, err := NewFCMGateway(context.Background(), "", logger.Discard())
	require.NoError(t, err)
	assert.Nil(t, g)
}
