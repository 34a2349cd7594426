package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"

	"github.com/loupelabs/loupe/internal/api/handlers"
	"github.com/loupelabs/loupe/internal/api/middleware"
	"github.com/loupelabs/loupe/internal/config"
	"github.com/loupelabs/loupe/internal/ebay"
	"github.com/loupelabs/loupe/internal/notify"
	"github.com/loupelabs/loupe/internal/pipeline"
	"github.com/loupelabs/loupe/internal/search"
	"github.com/loupelabs/loupe/internal/store"
	"github.com/loupelabs/loupe/internal/telemetry"
	"github.com/loupelabs/loupe/internal/worker"
	"github.com/loupelabs/loupe/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the poll worker and ops API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(ctx, cfg.Telemetry, Version)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}

	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	wrk := buildWorker(cfg, st, log)

	scheduler := worker.NewScheduler(wrk, cfg.Worker.PollInterval(), log)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	e := buildServer(cfg, st, scheduler, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr, "poll_interval", cfg.Worker.PollInterval())

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutting down server", "error", err)
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Error("shutting down telemetry", "error", err)
	}

	log.Info("stopped")
	return nil
}

// buildWorker assembles the poll worker from the configured marketplace,
// classification, and notification components.
func buildWorker(cfg *config.Config, st store.Store, log *slog.Logger) *worker.Worker {
	pool := ebay.NewCredentialPool(st,
		ebay.WithTokenURL(cfg.Ebay.TokenURL),
		ebay.WithScope(cfg.Ebay.Scope),
		ebay.WithPoolLogger(log),
	)

	pacer := ebay.NewPacer(
		cfg.Ebay.RateLimit.PerSecond,
		cfg.Ebay.RateLimit.Burst,
		cfg.Ebay.RateLimit.DailyLimit,
	)

	fetcher := ebay.NewDetailFetcher(pool, st,
		ebay.WithBrowseURL(cfg.Ebay.BrowseURL),
		ebay.WithMarketplace(cfg.Ebay.Marketplace),
		ebay.WithPacer(pacer),
		ebay.WithDetailTTL(cfg.Worker.DetailTTL),
		ebay.WithFetcherLogger(log),
	)

	searcher := search.New(
		cfg.Search.URL,
		cfg.Search.Breaker.MaxFailures,
		cfg.Search.Breaker.OpenTimeout,
		search.WithHTTPClient(&http.Client{Timeout: cfg.Search.Timeout}),
		search.WithLogger(log),
	)

	pipe := pipeline.New(fetcher, st,
		pipeline.WithTestSeller(cfg.Worker.TestSeller),
		pipeline.WithLogger(log),
	)

	return worker.New(
		st,
		searcher,
		pipe,
		buildNotifier(&cfg.Slack, log),
		buildProvisioner(&cfg.Slack, st, log),
		worker.Config{
			InterTaskDelay:     cfg.Worker.InterTaskDelay,
			InterMetalDelay:    cfg.Worker.InterMetalDelay,
			TaskDeadline:       cfg.Worker.TaskDeadline,
			RetryLimit:         cfg.Worker.RetryLimit,
			RejectTTL:          cfg.Worker.RejectTTL,
			MetalPriceTTL:      cfg.Worker.MetalPriceTTL,
			CleanupProbability: cfg.Worker.CleanupProbability,
		},
		worker.WithLogger(log),
	)
}

func buildNotifier(cfg *config.SlackConfig, log *slog.Logger) notify.Notifier {
	if cfg.BotToken == "" && cfg.WebhookURL == "" {
		log.Warn("no slack transport configured, notifications disabled")
		return notify.NewNoopNotifier()
	}

	opts := []notify.SlackOption{notify.WithSlackLogger(log)}
	if cfg.BotToken != "" && cfg.APIURL != "" {
		opts = append(opts, notify.WithSlackAPI(slackClient(cfg)))
	}
	return notify.NewSlackNotifier(cfg.BotToken, cfg.WebhookURL, cfg.DefaultChannel, opts...)
}

func buildProvisioner(cfg *config.SlackConfig, st store.Store, log *slog.Logger) *notify.ChannelProvisioner {
	if cfg.BotToken == "" {
		// Without a bot the provisioner is a no-op; tasks keep their
		// configured channel names.
		return notify.NewChannelProvisioner(nil, st, nil, log)
	}
	return notify.NewChannelProvisioner(slackClient(cfg), st, cfg.InviteUserIDs(), log)
}

func slackClient(cfg *config.SlackConfig) *slack.Client {
	if cfg.APIURL != "" {
		return slack.New(cfg.BotToken, slack.OptionAPIURL(cfg.APIURL))
	}
	return slack.New(cfg.BotToken)
}

// buildServer assembles the Echo server: probes, metrics, the Slack events
// receiver, and the huma ops API.
func buildServer(cfg *config.Config, st store.Store, scheduler *worker.Scheduler, log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(st)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	reactions := handlers.NewReactionReceiver(st, log)
	e.POST("/slack/events", reactions.Handle)

	api := humaecho.New(e, huma.DefaultConfig("Loupe Ops API", Version))
	handlers.NewOpsHandler(st, scheduler).Register(api)

	return e
}
