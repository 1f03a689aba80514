package cmd

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/uccx-chat-client/internal/domain"
	"github.com/bnema/uccx-chat-client/internal/ports"
)

// autoMessenger repeats a canned customer message while an agent is in the
// chat. Each join restarts the timer, stopping the session ends it.
type autoMessenger struct {
	ctx      context.Context
	text     string
	interval time.Duration
	clock    ports.Clock
	send     func(ctx context.Context, text string) error

	mu   sync.Mutex
	stop chan struct{}
}

func newAutoMessenger(ctx context.Context, text string, interval time.Duration, clock ports.Clock, send func(context.Context, string) error) *autoMessenger {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &autoMessenger{ctx: ctx, text: text, interval: interval, clock: clock, send: send}
}

func (a *autoMessenger) enabled() bool {
	return a.text != "" && a.interval > 0
}

func (a *autoMessenger) restart() {
	if !a.enabled() {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop != nil {
		close(a.stop)
	}
	stop := make(chan struct{})
	a.stop = stop

	ticker := a.clock.NewTicker(a.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-a.ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C():
				_ = a.send(a.ctx, a.text)
			}
		}
	}()
}

func (a *autoMessenger) halt() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop != nil {
		close(a.stop)
		a.stop = nil
	}
}

// wrap chains the messenger onto the join and stop callbacks of h.
func (a *autoMessenger) wrap(h domain.Handlers) domain.Handlers {
	if !a.enabled() {
		return h
	}

	joined := h.OnPresenceJoined
	stopped := h.OnStopPolling
	h.OnPresenceJoined = func(from string) {
		if joined != nil {
			joined(from)
		}
		a.restart()
	}
	h.OnStopPolling = func() {
		a.halt()
		if stopped != nil {
			stopped()
		}
	}

	return h
}
