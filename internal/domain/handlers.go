package domain

// Handlers is the set of consumer callbacks fired while a chat session is
// processed. A nil field means "keep the previous/default behaviour"; see Merge.
type Handlers struct {
	OnMessageEvent        func(from, message string)
	OnStatusEvent         func(status, detail string)
	OnPresenceEvent       func(from, status string)
	OnPresenceJoined      func(from string)
	OnPresenceLeft        func(from string)
	OnLastParticipantLeft func()
	OnTypingEvent         func(from, status string)
	OnTypingStart         func(from string)
	OnTypingStop          func(from string)
	OnOtherEvent          func(eventType string, fields map[string][]string)
	OnAgentTimeout        func(detail string)
	OnChatCreated         func()
	OnStopPolling         func()
	OnSessionExpired      func()
}

// DefaultHandlers returns a handler set where every callback is a no-op.
func DefaultHandlers() Handlers {
	return Handlers{
		OnMessageEvent:        func(string, string) {},
		OnStatusEvent:         func(string, string) {},
		OnPresenceEvent:       func(string, string) {},
		OnPresenceJoined:      func(string) {},
		OnPresenceLeft:        func(string) {},
		OnLastParticipantLeft: func() {},
		OnTypingEvent:         func(string, string) {},
		OnTypingStart:         func(string) {},
		OnTypingStop:          func(string) {},
		OnOtherEvent:          func(string, map[string][]string) {},
		OnAgentTimeout:        func(string) {},
		OnChatCreated:         func() {},
		OnStopPolling:         func() {},
		OnSessionExpired:      func() {},
	}
}

// Merge overlays the non-nil callbacks of update onto h. Callbacks missing
// from update keep their current value.
func (h Handlers) Merge(update Handlers) Handlers {
	if update.OnMessageEvent != nil {
		h.OnMessageEvent = update.OnMessageEvent
	}
	if update.OnStatusEvent != nil {
		h.OnStatusEvent = update.OnStatusEvent
	}
	if update.OnPresenceEvent != nil {
		h.OnPresenceEvent = update.OnPresenceEvent
	}
	if update.OnPresenceJoined != nil {
		h.OnPresenceJoined = update.OnPresenceJoined
	}
	if update.OnPresenceLeft != nil {
		h.OnPresenceLeft = update.OnPresenceLeft
	}
	if update.OnLastParticipantLeft != nil {
		h.OnLastParticipantLeft = update.OnLastParticipantLeft
	}
	if update.OnTypingEvent != nil {
		h.OnTypingEvent = update.OnTypingEvent
	}
	if update.OnTypingStart != nil {
		h.OnTypingStart = update.OnTypingStart
	}
	if update.OnTypingStop != nil {
		h.OnTypingStop = update.OnTypingStop
	}
	if update.OnOtherEvent != nil {
		h.OnOtherEvent = update.OnOtherEvent
	}
	if update.OnAgentTimeout != nil {
		h.OnAgentTimeout = update.OnAgentTimeout
	}
	if update.OnChatCreated != nil {
		h.OnChatCreated = update.OnChatCreated
	}
	if update.OnStopPolling != nil {
		h.OnStopPolling = update.OnStopPolling
	}
	if update.OnSessionExpired != nil {
		h.OnSessionExpired = update.OnSessionExpired
	}

	return h
}
