package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/uccx-chat-client/internal/domain"
	"github.com/bnema/uccx-chat-client/internal/ports"
	"github.com/bnema/uccx-chat-client/pkg/logger"
	"github.com/stretchr/testify/require"
)

type scriptedReply struct {
	resp ports.Response
	err  error
}

type fakeTransport struct {
	mu       sync.Mutex
	requests []ports.Request
	replies  map[string][]scriptedReply
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{replies: map[string][]scriptedReply{}}
}

func routeKey(method, url string) string {
	return method + " " + url
}

func (f *fakeTransport) reply(method, url string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := routeKey(method, url)
	f.replies[key] = append(f.replies[key], scriptedReply{resp: ports.Response{StatusCode: status, Body: []byte(body)}})
}

func (f *fakeTransport) fail(method, url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := routeKey(method, url)
	f.replies[key] = append(f.replies[key], scriptedReply{err: err})
}

func (f *fakeTransport) Do(_ context.Context, req ports.Request) (ports.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	key := routeKey(req.Method, req.URL)
	queue := f.replies[key]
	if len(queue) == 0 {
		return ports.Response{}, fmt.Errorf("no scripted reply for %s", key)
	}
	next := queue[0]
	f.replies[key] = queue[1:]

	return next.resp, next.err
}

func (f *fakeTransport) requestsFor(method, url string) []ports.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ports.Request
	for _, req := range f.requests {
		if req.Method == method && req.URL == url {
			out = append(out, req)
		}
	}
	return out
}

// fakeDecoder maps a raw body to a prepared tree.
type fakeDecoder struct {
	trees map[string]ports.EventTree
}

func (d fakeDecoder) Decode(raw []byte) (ports.EventTree, error) {
	tree, ok := d.trees[string(raw)]
	if !ok {
		return nil, errors.New("malformed event document")
	}
	return tree, nil
}

type manualTicker struct {
	ch chan time.Time
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               {}

type manualClock struct {
	now    time.Time
	ticker *manualTicker
}

func newManualClock() *manualClock {
	return &manualClock{
		now:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		ticker: &manualTicker{ch: make(chan time.Time)},
	}
}

func (c *manualClock) Now() time.Time                       { return c.now }
func (c *manualClock) NewTicker(time.Duration) ports.Ticker { return c.ticker }

func (c *manualClock) tick(t *testing.T) {
	t.Helper()
	select {
	case c.ticker.ch <- c.now:
	case <-time.After(time.Second):
		t.Fatal("poll loop did not take the tick")
	}
}

// recorder collects handler invocations in call order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) count(name string) int {
	n := 0
	for _, call := range r.snapshot() {
		if call == name || strings.HasPrefix(call, name+"(") {
			n++
		}
	}
	return n
}

func (r *recorder) handlers() domain.Handlers {
	return domain.Handlers{
		OnMessageEvent:        func(from, message string) { r.add("message(%s,%s)", from, message) },
		OnStatusEvent:         func(status, detail string) { r.add("status(%s,%s)", status, detail) },
		OnPresenceEvent:       func(from, status string) { r.add("presence(%s,%s)", from, status) },
		OnPresenceJoined:      func(from string) { r.add("presence-joined(%s)", from) },
		OnPresenceLeft:        func(from string) { r.add("presence-left(%s)", from) },
		OnLastParticipantLeft: func() { r.add("last-participant-left") },
		OnTypingEvent:         func(from, status string) { r.add("typing(%s,%s)", from, status) },
		OnTypingStart:         func(from string) { r.add("typing-start(%s)", from) },
		OnTypingStop:          func(from string) { r.add("typing-stop(%s)", from) },
		OnOtherEvent:          func(eventType string, _ map[string][]string) { r.add("other(%s)", eventType) },
		OnAgentTimeout:        func(detail string) { r.add("agent-timeout(%s)", detail) },
		OnChatCreated:         func() { r.add("chat-created") },
		OnStopPolling:         func() { r.add("stop-polling") },
		OnSessionExpired:      func() { r.add("session-expired") },
	}
}

const (
	testURLBase      = "https://sm.example.com/ccp"
	testRedirectURL  = testURLBase + "/chat/100000/redirect"
	testEventsURL    = testURLBase + "/chat"
	handshakeSuccess = http.StatusFound
)

func testParams() domain.ChatParams {
	return domain.ChatParams{
		Form:          100000,
		URLBase:       testURLBase,
		CSQ:           "Chat_Csq28",
		Title:         "Facebook Messenger",
		CustomerEmail: "coty@example.com",
		CustomerPhone: "5551234",
		Author:        "Coty Condry",
	}
}

type clientFixture struct {
	client    *ChatClient
	transport *fakeTransport
	clock     *manualClock
	rec       *recorder
}

func newClientFixture(t *testing.T, trees map[string]ports.EventTree, opts ...ChatClientOption) clientFixture {
	t.Helper()

	transport := newFakeTransport()
	clock := newManualClock()
	rec := &recorder{}

	opts = append([]ChatClientOption{
		WithLogger(logger.NewNop()),
		WithClock(clock),
		WithHandlers(rec.handlers()),
	}, opts...)

	client, err := NewChatClient(testParams(), transport, fakeDecoder{trees: trees}, opts...)
	require.NoError(t, err)
	t.Cleanup(client.StopPolling)

	return clientFixture{client: client, transport: transport, clock: clock, rec: rec}
}

// started performs a successful handshake.
func (f clientFixture) started(t *testing.T) {
	t.Helper()
	f.transport.reply(http.MethodGet, testRedirectURL, handshakeSuccess, "")
	require.NoError(t, f.client.Start(context.Background()))
	require.True(t, f.client.Polling())
}

func group(eventType string, events ...ports.Fields) ports.EventGroup {
	return ports.EventGroup{Type: eventType, Events: events}
}

func presence(id, from, status string) ports.Fields {
	return ports.Fields{"id": {id}, "from": {from}, "status": {status}}
}

func message(id, from, body string) ports.Fields {
	return ports.Fields{"id": {id}, "from": {from}, "body": {body}}
}

func status(id, code, detail string) ports.Fields {
	fields := ports.Fields{"id": {id}, "status": {code}}
	if detail != "" {
		fields["detail"] = []string{detail}
	}
	return fields
}

func typing(id, from, state string) ports.Fields {
	return ports.Fields{"id": {id}, "from": {from}, "status": {state}}
}
