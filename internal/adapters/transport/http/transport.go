package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"time"

	"github.com/bnema/uccx-chat-client/internal/ports"
)

const maxResponseBytes = 4 << 20

var errResponseStatus = errors.New("gateway responded with an error status")

// Transport talks to the chat gateway over net/http. It never follows
// redirects, so the handshake's 302 reaches the caller.
type Transport struct {
	HTTPClient     *nethttp.Client
	RequestTimeout time.Duration
}

var _ ports.Transport = Transport{}

func (t Transport) Do(ctx context.Context, req ports.Request) (ports.Response, error) {
	endpoint, err := buildURL(req.URL, req.Query)
	if err != nil {
		return ports.Response{}, &ports.TransportError{Kind: ports.FailureOther, Err: err}
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	requestCtx, cancel := t.requestContext(ctx)
	defer cancel()
	httpReq, err := nethttp.NewRequestWithContext(requestCtx, req.Method, endpoint, body)
	if err != nil {
		return ports.Response{}, &ports.TransportError{Kind: ports.FailureOther, Err: fmt.Errorf("create request: %w", err)}
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	resp, err := t.client(req.Affinity).Do(httpReq)
	if err != nil {
		return ports.Response{}, &ports.TransportError{Kind: ports.FailureOther, Err: fmt.Errorf("%s %s: %w", req.Method, req.URL, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return ports.Response{}, &ports.TransportError{Kind: ports.FailureOther, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= nethttp.StatusBadRequest {
		return ports.Response{}, &ports.TransportError{
			Kind:       ports.ClassifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s %s: %w", req.Method, req.URL, errResponseStatus),
		}
	}

	return ports.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// client returns a copy of the configured client bound to the session jar.
func (t Transport) client(jar nethttp.CookieJar) *nethttp.Client {
	base := t.HTTPClient
	if base == nil {
		base = nethttp.DefaultClient
	}

	client := *base
	if jar != nil {
		client.Jar = jar
	}
	client.CheckRedirect = func(*nethttp.Request, []*nethttp.Request) error {
		return nethttp.ErrUseLastResponse
	}

	return &client
}

func (t Transport) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline || t.RequestTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, t.RequestTimeout)
}

func buildURL(raw string, query url.Values) (string, error) {
	if raw == "" {
		return "", errors.New("request url is required")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse request url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("request url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("request url host is required")
	}

	if len(query) > 0 {
		merged := parsed.Query()
		for key, values := range query {
			for _, value := range values {
				merged.Add(key, value)
			}
		}
		parsed.RawQuery = merged.Encode()
	}

	return parsed.String(), nil
}
