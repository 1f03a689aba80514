package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	natsbus "github.com/bnema/uccx-chat-client/internal/adapters/bus/nats"
	xmldecoder "github.com/bnema/uccx-chat-client/internal/adapters/decoder/xml"
	"github.com/bnema/uccx-chat-client/internal/adapters/render/transcript"
	"github.com/bnema/uccx-chat-client/internal/adapters/statusserver"
	httptransport "github.com/bnema/uccx-chat-client/internal/adapters/transport/http"
	"github.com/bnema/uccx-chat-client/internal/application"
	"github.com/bnema/uccx-chat-client/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const quitCommand = "/quit"

var errChatExpired = errors.New("chat session expired")

type chatOptions struct {
	params       paramFlags
	profile      string
	autoMessage  string
	autoInterval time.Duration
	listen       string
	natsURL      string
	natsSubject  string
	noInput      bool
	typing       bool
	timestamps   bool
	summary      bool
	maxDuration  time.Duration
}

func newChatCmd(app *app) *cobra.Command {
	opts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open a customer chat session",
		Long:  "Open a customer chat session, print agent activity as it arrives and send each line typed on stdin as a customer message. Type /quit to leave.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, app, opts)
		},
	}

	opts.params.register(cmd, app.defaultURLBase)
	flags := cmd.Flags()
	flags.StringVar(&opts.profile, "profile", "", "start from a saved profile; explicit flags override it")
	flags.StringVar(&opts.autoMessage, "auto-message", "", "message to send repeatedly once an agent joins")
	flags.DurationVar(&opts.autoInterval, "auto-interval", 5*time.Second, "interval between automatic messages")
	flags.StringVar(&opts.listen, "listen", "", "serve /healthz, /metrics and /session on this address")
	flags.StringVar(&opts.natsURL, "nats-url", app.natsURL, "publish chat events to this NATS server (env UCCX_NATS_URL)")
	flags.StringVar(&opts.natsSubject, "nats-subject", natsbus.DefaultSubjectPrefix, "NATS subject prefix")
	flags.BoolVar(&opts.noInput, "no-input", false, "do not read customer messages from stdin")
	flags.BoolVar(&opts.typing, "typing", false, "show agent typing notifications")
	flags.BoolVar(&opts.timestamps, "timestamps", false, "prefix transcript lines with the local time")
	flags.BoolVar(&opts.summary, "summary", false, "print a transcript summary when the chat ends")
	flags.DurationVar(&opts.maxDuration, "max-duration", 0, "leave the chat after this long (0 = no limit)")

	return cmd
}

func resolveChatParams(cmd *cobra.Command, app *app, opts *chatOptions) (domain.ChatParams, error) {
	if opts.profile == "" {
		return opts.params.apply(cmd, domain.ChatParams{}, false), nil
	}

	profile, err := app.profiles.Get(cmd.Context(), domain.ProfileName(opts.profile))
	if err != nil {
		return domain.ChatParams{}, err
	}

	return opts.params.apply(cmd, profile.Params, true), nil
}

func runChat(cmd *cobra.Command, app *app, opts *chatOptions) error {
	params, err := resolveChatParams(cmd, app, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.maxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.maxDuration)
		defer cancel()
	}

	tr := transcript.New(cmd.OutOrStdout(), transcript.RenderOptions{
		Title:          params.Title,
		ShowTimestamps: opts.timestamps,
	}, transcript.WithTyping(opts.typing), transcript.WithClock(app.now))

	clientOpts := []application.ChatClientOption{application.WithLogger(app.log)}
	if opts.natsURL != "" {
		sink, err := app.connectSink(natsbus.Config{
			URL:           opts.natsURL,
			Token:         app.natsToken,
			SubjectPrefix: opts.natsSubject,
		}, app.log)
		if err != nil {
			return err
		}
		defer sink.Close()
		clientOpts = append(clientOpts, application.WithEventSink(sink))
	}

	client, err := application.NewChatClient(params, httptransport.Transport{
		HTTPClient:     app.httpClient,
		RequestTimeout: app.requestTimeout,
	}, xmldecoder.Decoder{}, clientOpts...)
	if err != nil {
		return err
	}

	var expired atomic.Bool
	handlers := tr.Handlers()
	onExpired := handlers.OnSessionExpired
	handlers.OnSessionExpired = func() {
		expired.Store(true)
		onExpired()
	}
	auto := newAutoMessenger(ctx, opts.autoMessage, opts.autoInterval, nil, func(ctx context.Context, text string) error {
		return sendAndRecord(ctx, client, tr, text)
	})
	client.SetHandlers(auto.wrap(handlers))

	if opts.listen != "" {
		srv, err := statusserver.Listen(opts.listen, client, app.log)
		if err != nil {
			return err
		}
		go func() {
			if err := srv.Serve(); err != nil {
				app.log.Error("status server stopped", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	label := fmt.Sprintf("Opening chat on %s (form %d, queue %s)...", params.URLBase, params.Form, params.CSQ)
	if err := runSpinner(ctx, cmd.ErrOrStderr(), label, client.Start); err != nil {
		return err
	}
	tr.Add(transcript.LineSystem, "", "connected as "+client.Params().Author+", session "+client.SessionID())

	if !opts.noInput {
		go forwardInput(ctx, cmd.InOrStdin(), client, tr)
	}

	select {
	case <-client.Stopped():
	case <-ctx.Done():
		client.StopPolling()
		<-client.Stopped()
	}

	if opts.summary {
		summary, err := tr.Summary()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), summary)
	}

	if expired.Load() {
		return fmt.Errorf("session %s: %w", client.SessionID(), errChatExpired)
	}

	return nil
}

// forwardInput sends each stdin line as a customer message until EOF, /quit
// or the end of the session.
func forwardInput(ctx context.Context, in io.Reader, client *application.ChatClient, tr *transcript.Transcript) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == quitCommand:
			client.StopPolling()
			return
		}

		if err := sendAndRecord(ctx, client, tr, line); errors.Is(err, domain.ErrSessionNotActive) {
			return
		}
	}
}

func sendAndRecord(ctx context.Context, client *application.ChatClient, tr *transcript.Transcript, text string) error {
	if err := client.SendMessage(ctx, text); err != nil {
		if !errors.Is(err, domain.ErrSessionNotActive) {
			tr.Add(transcript.LineWarning, "", "message not sent: "+err.Error())
		}
		return err
	}

	tr.Add(transcript.LineOutgoing, client.Params().Author, text)
	return nil
}
