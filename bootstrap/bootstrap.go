// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robinsondorm/robinai/adapters/clock"
	"github.com/robinsondorm/robinai/adapters/groupme"
	apihttp "github.com/robinsondorm/robinai/adapters/http"
	"github.com/robinsondorm/robinai/adapters/idgen"
	"github.com/robinsondorm/robinai/adapters/memory"
	"github.com/robinsondorm/robinai/adapters/metrics"
	"github.com/robinsondorm/robinai/adapters/openai"
	"github.com/robinsondorm/robinai/adapters/sqlite"
	"github.com/robinsondorm/robinai/app"
	"github.com/robinsondorm/robinai/config"
	"github.com/robinsondorm/robinai/domain/message"
	"github.com/rs/zerolog"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector

	budgetStore  *memory.BudgetStore
	openaiClient *openai.Client
	service      *app.ResponderService
	configHolder *config.Holder
}

// New creates and initializes the application from a loaded config.
func New(cfg *config.Config) (*App, error) {
	logger := setupLogger(cfg.Logging)

	logger.Info().Msg("initializing robinai")

	a := &App{Logger: logger}

	if err := a.build(cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// NewWithHotReload creates the application with config hot reload.
// The config file is watched for changes, and SIGHUP forces a reload.
func NewWithHotReload(cfgPath string) (*App, error) {
	bootLogger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	holder, err := config.NewHolder(cfgPath, bootLogger)
	if err != nil {
		return nil, fmt.Errorf("config holder: %w", err)
	}

	cfg := holder.Get()
	logger := setupLogger(cfg.Logging)

	logger.Info().Str("config", cfgPath).Msg("initializing robinai with hot reload")

	a := &App{Logger: logger, configHolder: holder}

	if err := a.build(cfg); err != nil {
		holder.Stop()
		return nil, err
	}

	holder.OnChange(a.applyConfig)
	holder.OnError(func(error) {
		if a.Metrics != nil {
			a.Metrics.ConfigReloadErrors.Inc()
		}
	})

	if err := holder.WatchFile(); err != nil {
		logger.Warn().Err(err).Msg("config file watch unavailable, SIGHUP reload only")
	}
	holder.WatchSignals()

	return a, nil
}

func (a *App) build(cfg *config.Config) error {
	// Usage log database
	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return fmt.Errorf("migrate database: %w", err)
	}
	a.DB = db
	a.Logger.Info().Str("dsn", cfg.Database.DSN).Msg("usage database ready")

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		a.Logger.Info().Str("path", cfg.Metrics.Path).Msg("prometheus metrics enabled")
	}

	a.budgetStore = memory.NewBudgetStore(cfg.Budget.DailyLimit)

	a.openaiClient = openai.NewClient(openai.Config{
		APIKey:       cfg.OpenAI.APIKey,
		BaseURL:      cfg.OpenAI.BaseURL,
		Model:        cfg.OpenAI.Model,
		SystemPrompt: cfg.Bot.SystemPrompt,
		MaxTokens:    cfg.OpenAI.MaxTokens,
		Temperature:  cfg.OpenAI.Temperature,
		Timeout:      cfg.OpenAI.Timeout,
	})

	messenger := groupme.NewClient(groupme.Config{
		BotID:   cfg.GroupMe.BotID,
		BaseURL: cfg.GroupMe.BaseURL,
		Timeout: cfg.GroupMe.Timeout,
	})

	usageStore := sqlite.NewUsageStore(db)

	a.service = app.NewResponderService(app.ResponderDeps{
		Budget:    a.budgetStore,
		Completer: a.openaiClient,
		Messenger: messenger,
		Usage:     usageStore,
		Clock:     clock.System{},
		IDGen:     idgen.UUID{},
		Metrics:   a.Metrics,
		Logger:    a.Logger,
	}, dynamicConfig(cfg))

	handler := apihttp.NewHandler(apihttp.HandlerDeps{
		Service: a.service,
		Budget:  a.budgetStore,
		Usage:   usageStore,
		Clock:   clock.System{},
		Logger:  a.Logger,
	})

	router := handler.Routes()
	if a.Metrics != nil {
		router.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	a.HTTPServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return nil
}

// applyConfig pushes reloadable settings into running components.
// Non-reloadable fields (server address, credentials, DSN) are ignored.
func (a *App) applyConfig(cfg *config.Config) {
	a.budgetStore.SetLimit(cfg.Budget.DailyLimit)
	a.openaiClient.UpdatePrompt(cfg.Bot.SystemPrompt, cfg.OpenAI.MaxTokens, cfg.OpenAI.Temperature)
	a.service.UpdateConfig(dynamicConfig(cfg))

	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if a.Metrics != nil {
		a.Metrics.ConfigReloads.Inc()
	}

	a.Logger.Info().Msg("configuration applied to running services")
}

func dynamicConfig(cfg *config.Config) app.DynamicConfig {
	return app.DynamicConfig{
		Filter: message.FilterConfig{
			BotID:          cfg.GroupMe.BotID,
			BotName:        cfg.GroupMe.BotName,
			RequireMention: cfg.Bot.RequireMentionEnabled(),
		},
		EstimateTokens: cfg.Budget.EstimateTokens,
		LimitNotice:    cfg.Bot.LimitNotice,
		ErrorNotice:    cfg.Bot.ErrorNotice,
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.configHolder != nil {
		a.configHolder.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// Reload forces a config reload. Only meaningful with hot reload enabled.
func (a *App) Reload() error {
	if a.configHolder == nil {
		return fmt.Errorf("hot reload not enabled")
	}
	return a.configHolder.Reload()
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
