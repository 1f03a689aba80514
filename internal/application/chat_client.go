package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/bnema/uccx-chat-client/internal/domain"
	"github.com/bnema/uccx-chat-client/internal/ports"
	"github.com/bnema/uccx-chat-client/pkg/logger"
	"github.com/bnema/uccx-chat-client/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

var errUnexpectedStatus = errors.New("unexpected status")

type ChatClientOption func(*ChatClient)

func WithLogger(l *logger.Logger) ChatClientOption {
	return func(c *ChatClient) {
		if l != nil {
			c.log = l
		}
	}
}

func WithClock(clock ports.Clock) ChatClientOption {
	return func(c *ChatClient) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithEventSink forwards every dispatched event to sink in addition to the handlers.
func WithEventSink(sink ports.EventSink) ChatClientOption {
	return func(c *ChatClient) {
		c.sink = sink
	}
}

// WithHandlers overlays handlers onto the no-op defaults at construction.
func WithHandlers(handlers domain.Handlers) ChatClientOption {
	return func(c *ChatClient) {
		c.handlers = c.handlers.Merge(handlers)
	}
}

// ChatClient drives one customer chat session: the start handshake, the
// event poll loop and outbound messages. A client is single use; once polling
// stops the session is over.
type ChatClient struct {
	params    domain.ChatParams
	transport ports.Transport
	decoder   ports.EventDecoder
	clock     ports.Clock
	sink      ports.EventSink
	log       *logger.Logger
	sessionID string
	affinity  http.CookieJar

	handlersMu sync.RWMutex
	handlers   domain.Handlers

	mu      sync.Mutex
	started bool
	polling bool
	stop    chan struct{}
	stopped chan struct{}

	cursor       atomic.Int64
	participants atomic.Int64
	lastLeft     atomic.Bool
}

func NewChatClient(params domain.ChatParams, transport ports.Transport, decoder ports.EventDecoder, opts ...ChatClientOption) (*ChatClient, error) {
	if transport == nil {
		return nil, errors.New("transport is required")
	}
	if decoder == nil {
		return nil, errors.New("event decoder is required")
	}
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create session cookie jar: %w", err)
	}

	c := &ChatClient{
		params:    params,
		transport: transport,
		decoder:   decoder,
		clock:     ports.SystemClock{},
		log:       logger.Global(),
		sessionID: uuid.NewString(),
		affinity:  jar,
		handlers:  domain.DefaultHandlers(),
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(
		zap.String("session_id", c.sessionID),
		zap.Int("form", params.Form),
		zap.String("url_base", params.URLBase),
	)

	return c, nil
}

// Start opens the chat session and, when the gateway accepts it, begins
// polling. ctx bounds the whole session: cancelling it stops polling.
// A failed handshake is logged and returned; no handler fires and the
// client cannot be started again.
func (c *ChatClient) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return domain.ErrSessionClosed
	}
	c.started = true
	c.mu.Unlock()

	c.log.Info("creating chat session", zap.String("csq", c.params.CSQ))

	query := url.Values{}
	query.Set("author", c.params.Author)
	query.Set("title", c.params.Title)
	query.Set("extensionField_Name", c.params.CustomerName)
	query.Set("extensionField_Email", c.params.CustomerEmail)
	query.Set("extensionField_PhoneNumber", c.params.CustomerPhone)
	query.Set("extensionField_ccxqueuetag", c.params.CSQ)

	resp, err := c.transport.Do(ctx, ports.Request{
		Method:   http.MethodGet,
		URL:      fmt.Sprintf("%s/chat/%d/redirect", c.params.URLBase, c.params.Form),
		Query:    query,
		Affinity: c.affinity,
	})
	if err != nil {
		metrics.RecordSession("error")
		c.log.Error("start chat session failed", zap.Error(err))
		return fmt.Errorf("start chat session: %w", err)
	}
	if resp.StatusCode != http.StatusFound {
		metrics.RecordSession("rejected")
		c.log.Warn("chat session rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("author", c.params.Author),
			zap.String("title", c.params.Title),
		)
		return fmt.Errorf("%w: status %d", domain.ErrHandshakeRejected, resp.StatusCode)
	}

	metrics.RecordSession("started")
	c.startPolling(ctx)

	return nil
}

func (c *ChatClient) startPolling(ctx context.Context) {
	c.mu.Lock()
	if c.polling {
		c.mu.Unlock()
		return
	}
	c.polling = true
	stop := c.stop
	c.mu.Unlock()

	metrics.SessionsActive.Inc()
	c.log.Info("polling chat events", zap.Duration("interval", c.params.PollInterval))

	go c.pollLoop(ctx, stop)
}

func (c *ChatClient) pollLoop(ctx context.Context, stop <-chan struct{}) {
	ticker := c.clock.NewTicker(c.params.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.terminate(false)
			return
		case <-stop:
			return
		case <-ticker.C():
		}

		if !c.pollOnce(ctx, stop) {
			return
		}
	}
}

// pollOnce fetches and dispatches one batch of events. It returns false when
// the loop must end.
func (c *ChatClient) pollOnce(ctx context.Context, stop <-chan struct{}) bool {
	select {
	case <-stop:
		return false
	default:
	}

	begin := c.clock.Now()
	tree, err := c.fetchEvents(ctx)
	elapsed := c.clock.Now().Sub(begin).Seconds()
	if err != nil {
		metrics.RecordPoll("error", elapsed)
		select {
		case <-stop:
			return false
		default:
		}
		if ctx.Err() != nil {
			c.terminate(false)
			return false
		}
		c.log.Warn("poll failed, session expired?", zap.Error(err))
		c.terminate(true)
		return false
	}
	metrics.RecordPoll("ok", elapsed)

	c.dispatch(ctx, tree)
	return true
}

func (c *ChatClient) fetchEvents(ctx context.Context) (ports.EventTree, error) {
	query := url.Values{}
	query.Set("eventid", strconv.FormatInt(c.cursor.Load(), 10))
	query.Set("all", strconv.FormatBool(c.params.IncludeOwnEvents))

	resp, err := c.transport.Do(ctx, ports.Request{
		Method:   http.MethodGet,
		URL:      c.params.URLBase + "/chat",
		Query:    query,
		Affinity: c.affinity,
	})
	if err != nil {
		return nil, fmt.Errorf("poll events: %w", err)
	}
	if err := expectSuccess(resp); err != nil {
		return nil, fmt.Errorf("poll events: %w", err)
	}

	tree, err := c.decoder.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	return tree, nil
}

// StopPolling ends the session. Only the first call after the session became
// active has an effect; it fires OnStopPolling once.
func (c *ChatClient) StopPolling() {
	c.terminate(false)
}

// terminate moves the session from active to inactive exactly once. When
// expired is set, OnSessionExpired fires before OnStopPolling.
func (c *ChatClient) terminate(expired bool) {
	c.mu.Lock()
	if !c.polling {
		c.mu.Unlock()
		return
	}
	c.polling = false
	close(c.stop)
	c.mu.Unlock()
	defer close(c.stopped)

	metrics.SessionsActive.Dec()
	c.log.Info("polling stopped", zap.Bool("expired", expired), zap.Int64("cursor", c.cursor.Load()))

	h := c.currentHandlers()
	if expired {
		h.OnSessionExpired()
	}
	h.OnStopPolling()
}

// SetHandlers overlays update onto the current handler set.
func (c *ChatClient) SetHandlers(update domain.Handlers) {
	c.handlersMu.Lock()
	c.handlers = c.handlers.Merge(update)
	c.handlersMu.Unlock()
}

func (c *ChatClient) currentHandlers() domain.Handlers {
	c.handlersMu.RLock()
	defer c.handlersMu.RUnlock()
	return c.handlers
}

// Cursor returns the highest event id processed so far.
func (c *ChatClient) Cursor() int64 {
	return c.cursor.Load()
}

// Participants returns the number of agents currently in the chat.
func (c *ChatClient) Participants() int64 {
	return c.participants.Load()
}

func (c *ChatClient) Polling() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.polling
}

func (c *ChatClient) SessionID() string {
	return c.sessionID
}

func (c *ChatClient) Params() domain.ChatParams {
	return c.params
}

// Stopped is closed once polling has stopped and the stop handlers returned.
func (c *ChatClient) Stopped() <-chan struct{} {
	return c.stopped
}

func expectSuccess(resp ports.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	return &ports.TransportError{
		Kind:       ports.ClassifyStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Err:        errUnexpectedStatus,
	}
}
