package domain

type EventKind string

const (
	EventKindMessage  EventKind = "MessageEvent"
	EventKindStatus   EventKind = "StatusEvent"
	EventKindPresence EventKind = "PresenceEvent"
	EventKindTyping   EventKind = "TypingEvent"
)

const (
	StatusChatOK               = "chat_ok"
	StatusTimedOutWaitingAgent = "chat_timedout_waiting_for_agent"

	PresenceJoined = "joined"
	PresenceLeft   = "left"

	TypingComposing = "composing"
	TypingPaused    = "paused"
)

// Event is one decoded entry of the chat event feed. The concrete types are
// MessageEvent, StatusEvent, PresenceEvent, TypingEvent and OtherEvent.
type Event interface {
	Kind() EventKind
	EventID() int64
}

type MessageEvent struct {
	ID   int64
	From string
	// Body is already form-decoded.
	Body string
}

type StatusEvent struct {
	ID     int64
	Status string
	Detail string
}

type PresenceEvent struct {
	ID     int64
	From   string
	Status string
}

type TypingEvent struct {
	ID     int64
	From   string
	Status string
}

// OtherEvent carries any event type the client does not interpret.
type OtherEvent struct {
	ID     int64
	Type   string
	Fields map[string][]string
}

func (e MessageEvent) Kind() EventKind  { return EventKindMessage }
func (e StatusEvent) Kind() EventKind   { return EventKindStatus }
func (e PresenceEvent) Kind() EventKind { return EventKindPresence }
func (e TypingEvent) Kind() EventKind   { return EventKindTyping }
func (e OtherEvent) Kind() EventKind    { return EventKind(e.Type) }

func (e MessageEvent) EventID() int64  { return e.ID }
func (e StatusEvent) EventID() int64   { return e.ID }
func (e PresenceEvent) EventID() int64 { return e.ID }
func (e TypingEvent) EventID() int64   { return e.ID }
func (e OtherEvent) EventID() int64    { return e.ID }
