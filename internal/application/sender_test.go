package application

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/bnema/uccx-chat-client/internal/domain"
	"github.com/bnema/uccx-chat-client/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "plain", text: "hi from customer", want: "<Message><body>hi from customer</body></Message>"},
		{name: "control chars dropped", text: "A\x07", want: "<Message><body>A</body></Message>"},
		{name: "markup escaped", text: "a < b & c", want: "<Message><body>a &lt; b &amp; c</body></Message>"},
		{name: "empty", text: "", want: "<Message><body></body></Message>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeMessage(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestSendMessagePutsEnvelopeWithSessionAffinity(t *testing.T) {
	t.Parallel()

	f := newClientFixture(t, nil)
	f.started(t)
	f.transport.reply(http.MethodPut, testEventsURL, http.StatusOK, "")

	require.NoError(t, f.client.SendMessage(context.Background(), "hi from customer"))

	reqs := f.transport.requestsFor(http.MethodPut, testEventsURL)
	require.Len(t, reqs, 1)
	assert.Equal(t, "application/xml", reqs[0].Header.Get("Content-Type"))
	assert.Equal(t, "<Message><body>hi from customer</body></Message>", string(reqs[0].Body))

	handshake := f.transport.requestsFor(http.MethodGet, testRedirectURL)
	require.Len(t, handshake, 1)
	assert.Same(t, handshake[0].Affinity, reqs[0].Affinity)
	assert.Empty(t, f.rec.snapshot())
	assert.True(t, f.client.Polling())
}

func TestSendMessageSessionGoneEndsSession(t *testing.T) {
	t.Parallel()

	f := newClientFixture(t, nil)
	f.started(t)
	f.transport.fail(http.MethodPut, testEventsURL, &ports.TransportError{
		Kind:       ports.FailureNotFound,
		StatusCode: http.StatusNotFound,
		Err:        errors.New("not found"),
	})

	err := f.client.SendMessage(context.Background(), "anyone there?")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.Equal(t, []string{"session-expired", "stop-polling"}, f.rec.snapshot())
	assert.False(t, f.client.Polling())

	err = f.client.SendMessage(context.Background(), "again")
	assert.ErrorIs(t, err, domain.ErrSessionNotActive)
	assert.Len(t, f.transport.requestsFor(http.MethodPut, testEventsURL), 1)
	assert.False(t, f.client.pollOnce(context.Background(), f.client.stop))
	assert.Empty(t, f.transport.requestsFor(http.MethodGet, testEventsURL))
}

func TestSendMessageNotFoundStatusEndsSession(t *testing.T) {
	t.Parallel()

	f := newClientFixture(t, nil)
	f.started(t)
	f.transport.reply(http.MethodPut, testEventsURL, http.StatusNotFound, "")

	err := f.client.SendMessage(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, 1, f.rec.count("session-expired"))
	assert.Equal(t, 1, f.rec.count("stop-polling"))
}

func TestSendMessageOtherFailureKeepsSession(t *testing.T) {
	t.Parallel()

	f := newClientFixture(t, nil)
	f.started(t)
	f.transport.fail(http.MethodPut, testEventsURL, &ports.TransportError{
		Kind:       ports.FailureOther,
		StatusCode: http.StatusInternalServerError,
		Err:        errors.New("server error"),
	})

	err := f.client.SendMessage(context.Background(), "hello")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Empty(t, f.rec.snapshot())
	assert.True(t, f.client.Polling())
}

func TestSendMessageBeforeStartIsRejected(t *testing.T) {
	t.Parallel()

	f := newClientFixture(t, nil)

	err := f.client.SendMessage(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrSessionNotActive)
	assert.Empty(t, f.transport.requestsFor(http.MethodPut, testEventsURL))
}
