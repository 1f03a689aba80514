package http

import (
	"context"
	"io"
	nethttp "net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/bnema/uccx-chat-client/internal/domain"
	"github.com/bnema/uccx-chat-client/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJar(t *testing.T) nethttp.CookieJar {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return jar
}

func TestDoReturnsRedirectWithoutFollowing(t *testing.T) {
	t.Parallel()

	followed := false
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/ccp/chat/100000/redirect", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "Chat_Csq28", r.URL.Query().Get("extensionField_ccxqueuetag"))
		nethttp.SetCookie(w, &nethttp.Cookie{Name: "JSESSIONID", Value: "abc123", Path: "/"})
		nethttp.Redirect(w, r, "/ccp/landing", nethttp.StatusFound)
	})
	mux.HandleFunc("/ccp/landing", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		followed = true
		w.WriteHeader(nethttp.StatusOK)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	jar := newJar(t)
	resp, err := Transport{}.Do(context.Background(), ports.Request{
		Method:   nethttp.MethodGet,
		URL:      server.URL + "/ccp/chat/100000/redirect",
		Query:    url.Values{"extensionField_ccxqueuetag": {"Chat_Csq28"}},
		Affinity: jar,
	})
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusFound, resp.StatusCode)
	assert.False(t, followed)

	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)
	cookies := jar.Cookies(serverURL)
	require.Len(t, cookies, 1)
	assert.Equal(t, "abc123", cookies[0].Value)
}

func TestDoReplaysSessionCookies(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch r.Method {
		case nethttp.MethodGet:
			nethttp.SetCookie(w, &nethttp.Cookie{Name: "JSESSIONID", Value: "sticky", Path: "/"})
			_, _ = io.WriteString(w, "<chatEvents/>")
		case nethttp.MethodPut:
			cookie, err := r.Cookie("JSESSIONID")
			if err != nil || cookie.Value != "sticky" {
				w.WriteHeader(nethttp.StatusNotFound)
				return
			}
			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, "application/xml", r.Header.Get("Content-Type"))
			assert.Equal(t, "<Message><body>hi</body></Message>", string(body))
			w.WriteHeader(nethttp.StatusOK)
		}
	}))
	defer server.Close()

	jar := newJar(t)
	resp, err := Transport{}.Do(context.Background(), ports.Request{Method: nethttp.MethodGet, URL: server.URL + "/chat", Affinity: jar})
	require.NoError(t, err)
	assert.Equal(t, "<chatEvents/>", string(resp.Body))

	_, err = Transport{}.Do(context.Background(), ports.Request{
		Method:   nethttp.MethodPut,
		URL:      server.URL + "/chat",
		Header:   nethttp.Header{"Content-Type": {"application/xml"}},
		Body:     []byte("<Message><body>hi</body></Message>"),
		Affinity: jar,
	})
	require.NoError(t, err)

	_, err = Transport{}.Do(context.Background(), ports.Request{Method: nethttp.MethodPut, URL: server.URL + "/chat", Affinity: newJar(t)})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestDoClassifiesErrorStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		wantKind ports.FailureKind
	}{
		{name: "not found", status: nethttp.StatusNotFound, wantKind: ports.FailureNotFound},
		{name: "server error", status: nethttp.StatusInternalServerError, wantKind: ports.FailureOther},
		{name: "bad request", status: nethttp.StatusBadRequest, wantKind: ports.FailureOther},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := Transport{}.Do(context.Background(), ports.Request{Method: nethttp.MethodGet, URL: server.URL})
			require.Error(t, err)

			var transportErr *ports.TransportError
			require.ErrorAs(t, err, &transportErr)
			assert.Equal(t, tt.wantKind, transportErr.Kind)
			assert.Equal(t, tt.status, transportErr.StatusCode)
		})
	}
}

func TestDoConnectionFailureIsOther(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	_, err := Transport{}.Do(context.Background(), ports.Request{Method: nethttp.MethodGet, URL: endpoint})
	require.Error(t, err)

	var transportErr *ports.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, ports.FailureOther, transportErr.Kind)
	assert.False(t, ports.IsSessionGone(err))
}

func TestDoRequestTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := Transport{RequestTimeout: 20 * time.Millisecond}.Do(context.Background(), ports.Request{Method: nethttp.MethodGet, URL: server.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBuildURL(t *testing.T) {
	t.Parallel()

	got, err := buildURL("https://sm.example.com/ccp/chat?x=1", url.Values{"eventid": {"7"}, "all": {"false"}})
	require.NoError(t, err)
	assert.Equal(t, "https://sm.example.com/ccp/chat?all=false&eventid=7&x=1", got)

	_, err = buildURL("", nil)
	assert.ErrorContains(t, err, "required")

	_, err = buildURL("ftp://sm.example.com", nil)
	assert.ErrorContains(t, err, "http or https")

	_, err = buildURL("https:///chat", nil)
	assert.ErrorContains(t, err, "host is required")
}
