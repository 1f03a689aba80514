package ports

// Fields maps a child element name to its text values, in document order.
// A field that occurs once is still a one-element slice.
type Fields map[string][]string

// First returns the first value of key, or "" when the field is absent.
func (f Fields) First(key string) string {
	values := f[key]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

type EventGroup struct {
	Type   string
	Events []Fields
}

// EventTree is a decoded event feed: one group per event type name, in the
// order the type first appears in the document.
type EventTree []EventGroup

type EventDecoder interface {
	Decode(raw []byte) (EventTree, error)
}
