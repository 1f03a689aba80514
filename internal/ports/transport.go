package ports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bnema/uccx-chat-client/internal/domain"
)

type Request struct {
	Method string
	URL    string
	Query  url.Values
	Header http.Header
	Body   []byte
	// Affinity carries the session cookies. Every call of one chat session
	// must reuse the jar that was passed to the handshake.
	Affinity http.CookieJar
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs one HTTP exchange. Redirects are returned, never
// followed. Responses with a status >= 400 come back as a *TransportError.
type Transport interface {
	Do(ctx context.Context, req Request) (Response, error)
}

type FailureKind int

const (
	FailureOther FailureKind = iota
	FailureNotFound
)

func (k FailureKind) String() string {
	switch k {
	case FailureNotFound:
		return "not_found"
	default:
		return "other"
	}
}

type TransportError struct {
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport %s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport %s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports not-found failures as domain.ErrSessionNotFound: the gateway
// answers 404 once the chat session behind the cookie is gone.
func (e *TransportError) Is(target error) bool {
	return target == domain.ErrSessionNotFound && e.Kind == FailureNotFound
}

// ClassifyStatus maps an HTTP status to a failure kind.
func ClassifyStatus(statusCode int) FailureKind {
	if statusCode == http.StatusNotFound {
		return FailureNotFound
	}
	return FailureOther
}

// IsSessionGone reports whether err means the remote chat session no longer exists.
func IsSessionGone(err error) bool {
	return errors.Is(err, domain.ErrSessionNotFound)
}
