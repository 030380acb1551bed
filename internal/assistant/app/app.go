// Package app provides the main OneCard assistant application
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/account"
	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/actions"
	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/api"
	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/audit"
	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/dispatch"
	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/events"
	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/kb"
)

// Config holds application configuration
type Config struct {
	// HTTPAddr is the TCP address the API server listens on (e.g. ":8080").
	HTTPAddr string

	// KBPath is an optional path to a knowledge-base YAML file. When empty,
	// the built-in knowledge base is used.
	KBPath string

	// AuditDBPath is the SQLite database path for the dispatch audit log.
	// Defaults to ":memory:" so nothing outlives the process.
	AuditDBPath string

	// LatencyUnit scales the simulated operation delays. Zero keeps the
	// default unit (100 ms, reproducing the original 500–1200 ms delays).
	LatencyUnit time.Duration

	// KafkaBrokers enables Kafka publishing of account state-change events
	// when non-empty. Events go to the structured log otherwise.
	KafkaBrokers []string

	// KafkaTopic overrides the default events topic.
	KafkaTopic string
}

// App wires the assistant components together.
type App struct {
	config         *Config
	store          *account.Store
	apiServer      *api.Server
	auditor        *audit.Store
	kafkaPublisher *events.KafkaPublisher
}

// New creates the application: seeded account state, knowledge base, action
// service, dispatcher, audit store, and the HTTP server.
func New(config *Config) (*App, error) {
	if config == nil {
		config = &Config{}
	}
	if config.HTTPAddr == "" {
		config.HTTPAddr = ":8080"
	}

	// Knowledge base: file override or built-in.
	var knowledgeBase *kb.KnowledgeBase
	if config.KBPath != "" {
		loaded, err := kb.Load(config.KBPath)
		if err != nil {
			return nil, fmt.Errorf("load knowledge base: %w", err)
		}
		knowledgeBase = loaded
		slog.Info("knowledge base loaded", "path", config.KBPath, "entries", knowledgeBase.Len())
	} else {
		knowledgeBase = kb.Default()
	}

	// One account record per process; every request shares it.
	store := account.NewSeeded()

	var serviceOpts []actions.Option
	if config.LatencyUnit > 0 {
		serviceOpts = append(serviceOpts, actions.WithLatencyUnit(config.LatencyUnit))
	}
	service := actions.New(store, serviceOpts...)

	app := &App{
		config: config,
		store:  store,
	}

	// State-change events: Kafka when brokers are configured, the structured
	// log otherwise.
	var publisher events.Publisher = events.LogPublisher{}
	if len(config.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(config.KafkaBrokers, config.KafkaTopic)
		app.kafkaPublisher = kafkaPublisher
		publisher = kafkaPublisher
		slog.Info("kafka event publishing enabled", "brokers", config.KafkaBrokers)
	}

	dispatcher := dispatch.New(knowledgeBase, service, dispatch.WithPublisher(publisher))

	auditor, err := audit.Open(config.AuditDBPath)
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}
	app.auditor = auditor

	app.apiServer = api.New(config.HTTPAddr, dispatcher, service, auditor)
	return app, nil
}

// Run starts the HTTP server and blocks until an interrupt signal arrives.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.apiServer.Start(ctx); err != nil {
		return fmt.Errorf("start api server: %w", err)
	}

	slog.Info("assistant is running; press Ctrl+C to stop", "addr", a.config.HTTPAddr)

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	return nil
}

// Stop releases the application's resources.
func (a *App) Stop() {
	if a.apiServer != nil {
		a.apiServer.Stop()
	}
	if a.kafkaPublisher != nil {
		if err := a.kafkaPublisher.Close(); err != nil {
			slog.Warn("close kafka publisher", "err", err)
		}
	}
	if a.auditor != nil {
		if err := a.auditor.Close(); err != nil {
			slog.Warn("close audit store", "err", err)
		}
	}
}
