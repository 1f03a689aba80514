package application

import (
	"context"
	"strconv"
	"strings"

	"github.com/bnema/uccx-chat-client/internal/domain"
	"github.com/bnema/uccx-chat-client/internal/ports"
	"github.com/bnema/uccx-chat-client/pkg/metrics"
	"go.uber.org/zap"
)

// NormalizeEvents flattens a decoded feed into typed events, keeping group
// order and the order of events inside each group.
func NormalizeEvents(tree ports.EventTree) []domain.Event {
	var events []domain.Event
	for _, group := range tree {
		for _, fields := range group.Events {
			events = append(events, normalizeEvent(group.Type, fields))
		}
	}

	return events
}

func normalizeEvent(eventType string, fields ports.Fields) domain.Event {
	id := parseEventID(fields.First("id"))

	switch domain.EventKind(eventType) {
	case domain.EventKindMessage:
		return domain.MessageEvent{
			ID:   id,
			From: fields.First("from"),
			Body: domain.DecodeMessageBody(fields.First("body")),
		}
	case domain.EventKindStatus:
		return domain.StatusEvent{
			ID:     id,
			Status: fields.First("status"),
			Detail: fields.First("detail"),
		}
	case domain.EventKindPresence:
		return domain.PresenceEvent{
			ID:     id,
			From:   fields.First("from"),
			Status: fields.First("status"),
		}
	case domain.EventKindTyping:
		return domain.TypingEvent{
			ID:     id,
			From:   fields.First("from"),
			Status: fields.First("status"),
		}
	default:
		return domain.OtherEvent{
			ID:     id,
			Type:   eventType,
			Fields: fields,
		}
	}
}

// parseEventID reads a leading integer the way the gateway ids are written.
// Anything unparsable is 0 and never moves the cursor.
func parseEventID(raw string) int64 {
	raw = strings.TrimSpace(raw)
	end := 0
	for end < len(raw) && (raw[end] >= '0' && raw[end] <= '9' || end == 0 && raw[end] == '-') {
		end++
	}
	id, err := strconv.ParseInt(raw[:end], 10, 64)
	if err != nil {
		return 0
	}

	return id
}

func (c *ChatClient) dispatch(ctx context.Context, tree ports.EventTree) {
	for _, event := range NormalizeEvents(tree) {
		c.processEvent(ctx, event)
	}
}

func (c *ChatClient) processEvent(ctx context.Context, event domain.Event) {
	c.advanceCursor(event.EventID())
	metrics.RecordEvent(string(event.Kind()))

	h := c.currentHandlers()
	switch e := event.(type) {
	case domain.MessageEvent:
		h.OnMessageEvent(e.From, e.Body)
	case domain.StatusEvent:
		h.OnStatusEvent(e.Status, e.Detail)
		switch e.Status {
		case domain.StatusTimedOutWaitingAgent:
			h.OnAgentTimeout(e.Detail)
		case domain.StatusChatOK:
			h.OnChatCreated()
		}
	case domain.PresenceEvent:
		c.processPresence(h, e)
	case domain.TypingEvent:
		h.OnTypingEvent(e.From, e.Status)
		switch e.Status {
		case domain.TypingComposing:
			h.OnTypingStart(e.From)
		case domain.TypingPaused:
			h.OnTypingStop(e.From)
		}
	case domain.OtherEvent:
		h.OnOtherEvent(e.Type, e.Fields)
	}

	if c.sink != nil {
		if err := c.sink.Publish(ctx, c.sessionID, event); err != nil {
			c.log.Warn("publish chat event failed", zap.String("type", string(event.Kind())), zap.Error(err))
		}
	}
}

func (c *ChatClient) processPresence(h domain.Handlers, e domain.PresenceEvent) {
	h.OnPresenceEvent(e.From, e.Status)

	switch e.Status {
	case domain.PresenceJoined:
		h.OnPresenceJoined(e.From)
		c.participants.Add(1)
	case domain.PresenceLeft:
		h.OnPresenceLeft(e.From)
		if c.participants.Add(-1) < 1 && c.lastLeft.CompareAndSwap(false, true) {
			h.OnLastParticipantLeft()
			c.StopPolling()
		}
	}

	count := c.participants.Load()
	metrics.Participants.Set(float64(count))
	c.log.Debug("participants changed", zap.Int64("participants", count), zap.String("from", e.From))
}

// advanceCursor raises the cursor to id; lower ids leave it unchanged.
func (c *ChatClient) advanceCursor(id int64) {
	for {
		current := c.cursor.Load()
		if id <= current {
			return
		}
		if c.cursor.CompareAndSwap(current, id) {
			return
		}
	}
}
