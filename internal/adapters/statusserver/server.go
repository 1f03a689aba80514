// Package statusserver exposes a running chat session over HTTP: health,
// Prometheus metrics and a JSON snapshot of the session state.
package statusserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bnema/uccx-chat-client/internal/domain"
	"github.com/bnema/uccx-chat-client/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Session is the read side of a chat client.
type Session interface {
	SessionID() string
	Polling() bool
	Cursor() int64
	Participants() int64
	Params() domain.ChatParams
}

type SessionSnapshot struct {
	SessionID    string `json:"session_id"`
	Polling      bool   `json:"polling"`
	Cursor       int64  `json:"cursor"`
	Participants int64  `json:"participants"`
	Form         int    `json:"form"`
	CSQ          string `json:"csq"`
	URLBase      string `json:"url_base"`
}

func Snapshot(session Session) SessionSnapshot {
	params := session.Params()
	return SessionSnapshot{
		SessionID:    session.SessionID(),
		Polling:      session.Polling(),
		Cursor:       session.Cursor(),
		Participants: session.Participants(),
		Form:         params.Form,
		CSQ:          params.CSQ,
		URLBase:      params.URLBase,
	}
}

func NewRouter(session Session, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.Global()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(requestLogging(log))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/session", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(Snapshot(session)); err != nil {
			log.Warn("encode session snapshot", zap.Error(err))
		}
	})

	return r
}

// Server serves the router until Shutdown.
type Server struct {
	srv *http.Server
	ln  net.Listener
	log *logger.Logger
}

// Listen binds addr. Use ":0" for an ephemeral port.
func Listen(addr string, session Session, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Global()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	return &Server{
		srv: &http.Server{
			Handler:           NewRouter(session, log),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		ln:  ln,
		log: log,
	}, nil
}

func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Serve blocks until the server is shut down.
func (s *Server) Serve() error {
	s.log.Info("status server listening", zap.String("addr", s.Addr()))
	if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve status: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func requestLogging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			log.Debug("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
