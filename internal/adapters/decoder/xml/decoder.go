package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/uccx-chat-client/internal/ports"
)

// RootElement is the document element of the gateway's event feed.
const RootElement = "chatEvents"

var (
	ErrEmptyDocument  = errors.New("empty event document")
	ErrUnexpectedRoot = errors.New("unexpected event document root")
)

// Decoder turns the gateway's event feed into an EventTree. Each child of
// the root is one event, its element name the event type. Each child of an
// event is a field whose text content becomes one value.
type Decoder struct{}

var _ ports.EventDecoder = Decoder{}

func (Decoder) Decode(raw []byte) (ports.EventTree, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyDocument
	}

	dec := xml.NewDecoder(bytes.NewReader(raw))
	root, err := nextStart(dec)
	if err != nil {
		return nil, fmt.Errorf("decode event document: %w", err)
	}
	if root.Name.Local != RootElement {
		return nil, fmt.Errorf("%w: %q", ErrUnexpectedRoot, root.Name.Local)
	}

	tree := ports.EventTree{}
	index := map[string]int{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode event document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			fields, err := decodeEvent(dec)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", t.Name.Local, err)
			}
			pos, ok := index[t.Name.Local]
			if !ok {
				pos = len(tree)
				index[t.Name.Local] = pos
				tree = append(tree, ports.EventGroup{Type: t.Name.Local})
			}
			tree[pos].Events = append(tree[pos].Events, fields)
		case xml.EndElement:
			return tree, nil
		}
	}
}

func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return xml.StartElement{}, ErrEmptyDocument
			}
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

// decodeEvent reads fields up to the end of the current event element.
func decodeEvent(dec *xml.Decoder) (ports.Fields, error) {
	fields := ports.Fields{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			text, err := elementText(dec)
			if err != nil {
				return nil, err
			}
			fields[t.Name.Local] = append(fields[t.Name.Local], text)
		case xml.EndElement:
			return fields, nil
		}
	}
}

// elementText collects the character data of the current element and its
// descendants.
func elementText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			sb.Write(t)
		}
	}

	return sb.String(), nil
}
