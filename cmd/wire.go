package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	natsbus "github.com/bnema/uccx-chat-client/internal/adapters/bus/nats"
	tomlrepo "github.com/bnema/uccx-chat-client/internal/adapters/repo/toml"
	"github.com/bnema/uccx-chat-client/internal/application"
	"github.com/bnema/uccx-chat-client/internal/ports"
	"github.com/bnema/uccx-chat-client/pkg/logger"
	"github.com/spf13/viper"
)

const defaultRequestTimeout = 30 * time.Second

type eventSink interface {
	ports.EventSink
	Close()
}

type app struct {
	profiles       *application.ProfileService
	profilesPath   string
	log            *logger.Logger
	logLevel       string
	development    bool
	httpClient     *http.Client
	requestTimeout time.Duration
	defaultURLBase string
	natsURL        string
	natsToken      string
	connectSink    func(natsbus.Config, *logger.Logger) (eventSink, error)
	now            func() time.Time
}

func wireApp() (*app, error) {
	repo, err := tomlrepo.NewRepository(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire profile repository: %w", err)
	}

	return &app{
		profiles:       application.NewProfileService(repo, ports.SystemClock{}),
		profilesPath:   repo.Path(),
		log:            logger.Global(),
		logLevel:       envOrDefault("UCCX_LOG_LEVEL", "info"),
		development:    os.Getenv("UCCX_ENV") == "development",
		httpClient:     http.DefaultClient,
		requestTimeout: defaultRequestTimeout,
		defaultURLBase: os.Getenv("UCCX_URL_BASE"),
		natsURL:        os.Getenv("UCCX_NATS_URL"),
		natsToken:      os.Getenv("UCCX_NATS_TOKEN"),
		connectSink: func(cfg natsbus.Config, log *logger.Logger) (eventSink, error) {
			return natsbus.Connect(cfg, log)
		},
		now: time.Now,
	}, nil
}

// configureLogger rebuilds the global logger once flags are parsed.
func (a *app) configureLogger() error {
	build := logger.New
	if a.development {
		build = logger.NewDevelopment
	}

	log, err := build(a.logLevel)
	if err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}
	logger.SetGlobal(log)
	a.log = log

	return nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
