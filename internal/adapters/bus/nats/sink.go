// Package nats publishes chat events onto a NATS subject tree so other
// services can follow a customer chat as it happens.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/uccx-chat-client/internal/domain"
	"github.com/bnema/uccx-chat-client/internal/ports"
	"github.com/bnema/uccx-chat-client/pkg/logger"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const DefaultSubjectPrefix = "uccx.chat"

// Config holds NATS connection configuration.
type Config struct {
	URL           string
	Token         string
	SubjectPrefix string
}

type publisher interface {
	Publish(subject string, data []byte) error
}

// Sink is a ports.EventSink backed by a core NATS connection.
type Sink struct {
	conn   *nats.Conn
	pub    publisher
	prefix string
	now    func() time.Time
}

var _ ports.EventSink = (*Sink)(nil)

// Connect establishes a connection to the NATS server.
func Connect(cfg Config, log *logger.Logger) (*Sink, error) {
	if log == nil {
		log = logger.Global()
	}

	opts := []nats.Option{
		nats.Name("uccx-chat-client"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	sink := newSink(nc, cfg.SubjectPrefix)
	sink.conn = nc

	return sink, nil
}

func newSink(pub publisher, prefix string) *Sink {
	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	return &Sink{pub: pub, prefix: prefix, now: time.Now}
}

// Publish sends event to <prefix>.<session>.<kind>.
func (s *Sink) Publish(ctx context.Context, sessionID string, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(toEnvelope(sessionID, event, s.now().UTC()))
	if err != nil {
		return fmt.Errorf("encode chat event: %w", err)
	}

	subject := Subject(s.prefix, sessionID, event.Kind())
	if err := s.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	return nil
}

// Close drains pending publishes and closes the connection.
func (s *Sink) Close() {
	if s.conn == nil {
		return
	}
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
	}
}

// Subject builds the subject for one event. Tokens that would break the
// subject hierarchy are replaced with '_'.
func Subject(prefix, sessionID string, kind domain.EventKind) string {
	return prefix + "." + subjectToken(sessionID) + "." + subjectToken(string(kind))
}

func subjectToken(raw string) string {
	if raw == "" {
		return "_"
	}

	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, raw)
}

type envelope struct {
	SessionID string              `json:"session_id"`
	Kind      string              `json:"kind"`
	EventID   int64               `json:"event_id"`
	At        time.Time           `json:"at"`
	From      string              `json:"from,omitempty"`
	Body      string              `json:"body,omitempty"`
	Status    string              `json:"status,omitempty"`
	Detail    string              `json:"detail,omitempty"`
	Fields    map[string][]string `json:"fields,omitempty"`
}

func toEnvelope(sessionID string, event domain.Event, at time.Time) envelope {
	env := envelope{
		SessionID: sessionID,
		Kind:      string(event.Kind()),
		EventID:   event.EventID(),
		At:        at,
	}

	switch ev := event.(type) {
	case domain.MessageEvent:
		env.From = ev.From
		env.Body = ev.Body
	case domain.StatusEvent:
		env.Status = ev.Status
		env.Detail = ev.Detail
	case domain.PresenceEvent:
		env.From = ev.From
		env.Status = ev.Status
	case domain.TypingEvent:
		env.From = ev.From
		env.Status = ev.Status
	case domain.OtherEvent:
		env.Fields = ev.Fields
	}

	return env
}
