package transcript

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type LineKind string

const (
	LineMessage  LineKind = "message"
	LineOutgoing LineKind = "outgoing"
	LinePresence LineKind = "presence"
	LineTyping   LineKind = "typing"
	LineSystem   LineKind = "system"
	LineWarning  LineKind = "warning"
)

// Line is one rendered entry of a chat transcript.
type Line struct {
	At   time.Time
	Kind LineKind
	From string
	Text string
}

type RenderOptions struct {
	SessionID      string
	Title          string
	ShowTimestamps bool
}

func renderView(lines []Line, opts RenderOptions, s styles) string {
	title := opts.Title
	if title == "" {
		title = "Chat transcript"
	}

	out := []string{
		s.title.Render(title),
		s.header.Render(summary(lines, opts.SessionID)),
	}

	if len(lines) == 0 {
		out = append(out, s.empty.Render("No chat activity recorded."))
		return lipgloss.JoinVertical(lipgloss.Left, out...)
	}

	body := make([]string, 0, len(lines))
	for _, line := range lines {
		body = append(body, renderLine(line, opts, s))
	}
	out = append(out, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, body...)))

	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

func summary(lines []Line, sessionID string) string {
	received, sent := 0, 0
	for _, line := range lines {
		switch line.Kind {
		case LineMessage:
			received++
		case LineOutgoing:
			sent++
		}
	}

	text := fmt.Sprintf("messages: %d received, %d sent", received, sent)
	if sessionID != "" {
		text = "session " + sessionID + " | " + text
	}

	return text
}

func renderLine(line Line, opts RenderOptions, s styles) string {
	var rendered string
	switch line.Kind {
	case LineMessage:
		rendered = s.agent.Render(line.From+":") + " " + s.body.Render(line.Text)
	case LineOutgoing:
		rendered = s.customer.Render(line.From+":") + " " + s.body.Render(line.Text)
	case LinePresence:
		rendered = s.presence.Render("* " + line.Text)
	case LineTyping:
		rendered = s.typing.Render(line.Text)
	case LineWarning:
		rendered = s.warning.Render("! " + line.Text)
	default:
		rendered = s.system.Render("- " + line.Text)
	}

	if !opts.ShowTimestamps || line.At.IsZero() {
		return rendered
	}

	return s.timestamp.Render(line.At.Format("[15:04:05]")) + " " + rendered
}
