package statusserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/uccx-chat-client/internal/domain"
	"github.com/bnema/uccx-chat-client/pkg/logger"
	"github.com/bnema/uccx-chat-client/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSession struct{}

func (stubSession) SessionID() string   { return "7d3c" }
func (stubSession) Polling() bool       { return true }
func (stubSession) Cursor() int64       { return 42 }
func (stubSession) Participants() int64 { return 1 }
func (stubSession) Params() domain.ChatParams {
	return domain.ChatParams{Form: 100000, CSQ: "Chat_Csq28", URLBase: "https://sm.example.com/ccp"}
}

func TestSessionEndpoint(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(NewRouter(stubSession{}, logger.NewNop()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/session")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got SessionSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, SessionSnapshot{
		SessionID:    "7d3c",
		Polling:      true,
		Cursor:       42,
		Participants: 1,
		Form:         100000,
		CSQ:          "Chat_Csq28",
		URLBase:      "https://sm.example.com/ccp",
	}, got)
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	t.Parallel()

	metrics.RecordEvent("MessageEvent")
	server := httptest.NewServer(NewRouter(stubSession{}, logger.NewNop()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "uccx_chat_events_total")

	resp, err = http.Get(server.URL + "/missing")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListenServeShutdown(t *testing.T) {
	t.Parallel()

	srv, err := Listen("127.0.0.1:0", stubSession{}, logger.NewNop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + srv.Addr() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-done)
}
