package transcript

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bnema/uccx-chat-client/internal/domain"
)

// Transcript records chat activity and echoes each line to out as it
// happens. It is safe for concurrent use.
type Transcript struct {
	mu         sync.Mutex
	out        io.Writer
	now        func() time.Time
	opts       RenderOptions
	styles     styles
	lines      []Line
	showTyping bool
}

type Option func(*Transcript)

func WithClock(now func() time.Time) Option {
	return func(t *Transcript) {
		if now != nil {
			t.now = now
		}
	}
}

func WithTyping(show bool) Option {
	return func(t *Transcript) {
		t.showTyping = show
	}
}

func New(out io.Writer, opts RenderOptions, options ...Option) *Transcript {
	if out == nil {
		out = io.Discard
	}

	t := &Transcript{
		out:    out,
		now:    time.Now,
		opts:   opts,
		styles: newStyles(),
	}
	for _, opt := range options {
		opt(t)
	}

	return t
}

func (t *Transcript) Add(kind LineKind, from, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	line := Line{At: t.now(), Kind: kind, From: from, Text: text}
	t.lines = append(t.lines, line)
	_, _ = fmt.Fprintln(t.out, renderLine(line, t.opts, t.styles))
}

func (t *Transcript) Lines() []Line {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]Line(nil), t.lines...)
}

// Summary renders everything recorded so far.
func (t *Transcript) Summary() (string, error) {
	return Render(t.Lines(), t.opts)
}

// Handlers maps chat callbacks onto transcript lines.
func (t *Transcript) Handlers() domain.Handlers {
	return domain.Handlers{
		OnMessageEvent: func(from, message string) {
			t.Add(LineMessage, from, message)
		},
		OnStatusEvent: func(status, detail string) {
			switch status {
			case domain.StatusChatOK, domain.StatusTimedOutWaitingAgent:
				return
			}
			text := "status " + status
			if detail != "" {
				text += ": " + detail
			}
			t.Add(LineSystem, "", text)
		},
		OnChatCreated: func() {
			t.Add(LineSystem, "", "chat created, waiting for an agent")
		},
		OnAgentTimeout: func(detail string) {
			text := "no agent answered in time"
			if detail != "" {
				text += ": " + detail
			}
			t.Add(LineWarning, "", text)
		},
		OnPresenceJoined: func(from string) {
			t.Add(LinePresence, from, from+" joined the chat")
		},
		OnPresenceLeft: func(from string) {
			t.Add(LinePresence, from, from+" left the chat")
		},
		OnLastParticipantLeft: func() {
			t.Add(LineSystem, "", "all agents have left")
		},
		OnTypingStart: func(from string) {
			if t.showTyping {
				t.Add(LineTyping, from, from+" is typing...")
			}
		},
		OnOtherEvent: func(eventType string, _ map[string][]string) {
			t.Add(LineSystem, "", "unhandled event "+eventType)
		},
		OnSessionExpired: func() {
			t.Add(LineWarning, "", "chat session expired")
		},
		OnStopPolling: func() {
			t.Add(LineSystem, "", "chat ended")
		},
	}
}
