package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shorts-player/domain/dto"
	"shorts-player/domain/repository"
	"shorts-player/infrastructure/cache"
	youtubeclient "shorts-player/infrastructure/clients/youtube"
	"shorts-player/infrastructure/configuration"
	"shorts-player/infrastructure/logger"
	"shorts-player/infrastructure/monitoring"
	"shorts-player/infrastructure/pubsub"
	"shorts-player/infrastructure/scheduler"
	"shorts-player/infrastructure/servicebus"
	"shorts-player/infrastructure/utils"
	httpHandler "shorts-player/interfaces/http"
	"shorts-player/server"
	"shorts-player/usecase"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const (
	storeRetryInterval = 15 * time.Second
	storePrepTimeout   = 30 * time.Second
	shutdownTimeout    = 10 * time.Second
	adminTokenTTL      = 24 * time.Hour
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

// closer releases a resource on shutdown.
type closer func(ctx context.Context) error

func main() {
	defer recoverPanic()
	// "token [subject]" prints an admin bearer token instead of serving.
	if len(os.Args) > 1 && os.Args[1] == "token" {
		os.Exit(printAdminToken(os.Args[2:]))
	}
	if err := run(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	cfg := loadConfiguration()
	strict := cfg.Refresh.StrictStartup

	var closers []closer

	store, err := InitiateStore(cfg.Database)
	if err != nil {
		return fmt.Errorf("initiate store: %w", err)
	}
	closers = append(closers, store.close)

	storeReady := true
	if err := store.prepare(ctx, storePrepTimeout); err != nil {
		if strict {
			return err
		}
		storeReady = false
		logger.GetLogger().WithField("error", err).Error("Video store unavailable at startup; retrying in background")
	} else {
		logger.GetLogger().WithField("driver", store.driver).Info("Video store connected")
	}

	quota, quotaClose := initiateQuotaTracker(ctx, cfg)
	if quotaClose != nil {
		closers = append(closers, quotaClose)
	}

	yt, err := youtubeclient.NewYouTubeClient(ctx, &youtubeclient.Config{
		APIKey:       cfg.YouTube.APIKey,
		ClientID:     cfg.YouTube.ClientID,
		ClientSecret: cfg.YouTube.ClientSecret,
		AccessToken:  cfg.YouTube.AccessToken,
		RefreshToken: cfg.YouTube.RefreshToken,
	})
	if err != nil {
		if strict {
			return fmt.Errorf("youtube client: %w", err)
		}
		logger.GetLogger().WithField("error", err).Error("YouTube client unavailable; refreshes will fail until configured")
		yt = unavailableYouTube{err: err}
	}

	videoUC := usecase.NewVideoUseCase(store, yt, quota, refreshPolicy(cfg))
	notifiers, notifierClosers := initiateNotifiers(ctx, cfg)
	closers = append(closers, notifierClosers...)
	if len(notifiers) > 0 {
		videoUC.WithNotifier(notifiers)
	}

	g, ctx := errgroup.WithContext(ctx)

	if storeReady {
		if err := startInitialization(ctx, g, videoUC, strict); err != nil {
			return err
		}
	} else {
		g.Go(func() error {
			return awaitStore(ctx, store, videoUC)
		})
	}

	refreshScheduler := scheduler.NewRefreshScheduler(videoUC, scheduler.WithRefreshSchedule(cfg.Refresh.Schedule))
	if err := refreshScheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	router := server.InitiateRouter(
		httpHandler.NewVideoHandler(videoUC),
		httpHandler.NewMonitoringHandler(videoUC),
		cfg.App.AllowedOrigins,
		cfg.App.SecretKey,
	)

	app := cfg.App
	logger.GetLogger().WithFields(map[string]interface{}{"port": app.Port, "tls": app.TLSEnabled}).Info("Starting application")
	httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		var err error
		if app.TLSEnabled && app.TLSCertFile != "" && app.TLSKeyFile != "" {
			logger.GetLogger().WithFields(map[string]interface{}{"cert": app.TLSCertFile, "key": app.TLSKeyFile}).Info("Serving HTTPS")
			err = httpServer.ListenAndServeTLS(app.TLSCertFile, app.TLSKeyFile)
		} else {
			if app.TLSEnabled {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
			}
			err = httpServer.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	errs := httpServer.Shutdown(shutdownCtx)
	select {
	case <-refreshScheduler.Stop().Done():
	case <-shutdownCtx.Done():
		logger.GetLogger().Warn("Scheduled job still running at shutdown")
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		errs = multierr.Append(errs, err)
	}
	for i := len(closers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, closers[i](shutdownCtx))
	}
	logger.GetLogger().Info("Application stopped")
	return errs
}

// loadConfiguration applies config.env and .env on top of the OS environment.
// Env files never override the OS environment; config is reloaded so their values apply.
func loadConfiguration() configuration.Config {
	if n := configuration.LoadEnvFromFile("config.env", ".env"); n > 0 {
		logger.GetLogger().WithField("variables", n).Info("Loaded env files")
		configuration.LoadConfig()
		configuration.Apply(&configuration.C)
	}
	return configuration.C
}

func printAdminToken(args []string) int {
	subject := "operator"
	if len(args) > 0 && args[0] != "" {
		subject = args[0]
	}
	secret := loadConfiguration().App.SecretKey
	if secret == "" {
		logger.GetLogger().Error("SECRET_KEY is not configured")
		return 1
	}
	token, err := utils.GenerateAdminToken(subject, secret, adminTokenTTL)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to sign admin token")
		return 1
	}
	fmt.Println(token)
	return 0
}

func refreshPolicy(cfg configuration.Config) usecase.RefreshPolicy {
	policy := usecase.RefreshPolicy{
		CacheLifetime:     cfg.Refresh.CacheLifetime,
		CheckAvailability: cfg.Refresh.CheckAvailability,
		MaxRecords:        cfg.Refresh.MaxRecords,
		RetryAttempts:     cfg.Refresh.RetryAttempts,
		RetryDelay:        cfg.Refresh.RetryDelay,
		RequestTimeout:    cfg.YouTube.RequestTimeout,
		StrictStartup:     cfg.Refresh.StrictStartup,
		DailyQuota:        cfg.YouTube.DailyQuota,
		EnforceQuota:      cfg.YouTube.EnforceQuota,
		SearchCost:        cfg.YouTube.SearchCost,
		DetailsCostPerID:  cfg.YouTube.DetailsCostPerID,
	}
	for _, q := range cfg.Refresh.Queries {
		policy.Queries = append(policy.Queries, usecase.VideoQuery{
			Term:            q.Term,
			Category:        q.Category,
			VideoCategoryID: q.VideoCategoryID,
			VideoDuration:   q.VideoDuration,
			PublishedBefore: q.PublishedBefore,
			PublishedAfter:  q.PublishedAfter,
			RegionCode:      q.RegionCode,
			Pages:           q.Pages,
		})
	}
	if cutoff := cfg.Refresh.Cutoff(); cutoff != nil {
		policy.Filters = append(policy.Filters, usecase.DateFilter{Cutoff: *cutoff})
	}
	if len(cfg.Refresh.Keywords) > 0 {
		policy.Filters = append(policy.Filters, usecase.NewKeywordFilter(cfg.Refresh.Keywords))
	}
	return policy
}

// initiateQuotaTracker prefers the shared Redis counter and falls back to an in-process one.
func initiateQuotaTracker(ctx context.Context, cfg configuration.Config) (repository.IQuotaTracker, closer) {
	opts := []monitoring.QuotaOption{monitoring.WithWarnRatio(cfg.YouTube.QuotaWarnRatio)}
	if cfg.RedisClient.Enabled() {
		redisClient, err := cache.NewCache(
			ctx,
			fmt.Sprintf("%s:%s", cfg.RedisClient.Host, cfg.RedisClient.Port),
			cfg.RedisClient.Username,
			cfg.RedisClient.Password,
			cfg.RedisClient.DB,
		)
		if err == nil {
			logger.GetLogger().Info("Redis quota counter initialized successfully.")
			return cache.NewQuotaCache(redisClient, cfg.YouTube.DailyQuota, opts...), func(context.Context) error { return redisClient.Close() }
		}
		logger.GetLogger().WithField("error", err).Warn("Redis not available - using in-process quota counter")
	}
	return monitoring.NewQuotaTracker(cfg.YouTube.DailyQuota, opts...), nil
}

func initiateNotifiers(ctx context.Context, cfg configuration.Config) (usecase.Notifiers, []closer) {
	var (
		notifiers usecase.Notifiers
		closers   []closer
	)
	if cfg.Pubsub.ProjectID != "" {
		client, err := pubsub.NewPubSub(ctx, cfg.Pubsub.ProjectID)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while instantiate PubSub")
		} else {
			notifiers = append(notifiers, pubsub.NewRefreshPublisher(client, cfg.Pubsub.Topic))
			closers = append(closers, func(context.Context) error { return client.Close() })
		}
	}
	if cfg.ServiceBus.Namespace != "" {
		client, err := servicebus.NewServiceBus(ctx, cfg.ServiceBus.Namespace)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without Service Bus notifications")
		} else {
			notifiers = append(notifiers, servicebus.NewRefreshSender(client, cfg.ServiceBus.Queue))
			closers = append(closers, client.Close)
		}
	}
	return notifiers, closers
}

type initializer interface {
	Initialize(ctx context.Context) error
}

// startInitialization runs the startup refresh. Strict mode waits for it so a
// failure stops the process; otherwise it runs alongside the HTTP server.
func startInitialization(ctx context.Context, g *errgroup.Group, startup initializer, strict bool) error {
	if strict {
		return startup.Initialize(ctx)
	}
	g.Go(func() error {
		return startup.Initialize(ctx)
	})
	return nil
}

// awaitStore retries the store until it is reachable, then runs the startup refresh.
func awaitStore(ctx context.Context, store *videoStore, videoUC initializer) error {
	ticker := time.NewTicker(storeRetryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := store.prepare(ctx, storePrepTimeout); err != nil {
				logger.GetLogger().WithField("error", err).Warn("Video store still unavailable")
				continue
			}
			logger.GetLogger().WithField("driver", store.driver).Info("Video store connected")
			return videoUC.Initialize(ctx)
		}
	}
}

// unavailableYouTube stands in for a client that could not be configured.
type unavailableYouTube struct {
	err error
}

func (u unavailableYouTube) SearchVideos(context.Context, *dto.YouTubeSearchRequest) (*dto.YouTubeSearchResponse, error) {
	return nil, u.err
}

func (u unavailableYouTube) GetVideoStatuses(context.Context, []string) ([]dto.YouTubeVideoStatus, error) {
	return nil, u.err
}
