package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/lsalmeida/ecoeletronico-backend/api/routes"
	"github.com/lsalmeida/ecoeletronico-backend/internal/accounts"
	"github.com/lsalmeida/ecoeletronico-backend/internal/auth"
	"github.com/lsalmeida/ecoeletronico-backend/internal/bazaar"
	"github.com/lsalmeida/ecoeletronico-backend/internal/export"
	"github.com/lsalmeida/ecoeletronico-backend/internal/impactstats"
	"github.com/lsalmeida/ecoeletronico-backend/internal/redemptions"
	"github.com/lsalmeida/ecoeletronico-backend/internal/submissions"
	"github.com/lsalmeida/ecoeletronico-backend/internal/terms"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/auth/session"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/config"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/logger"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/metrics"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/migrate"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	decisionMetrics := metrics.NewDecisionMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	gormDB := dbClient.DB()
	accountRepo := accounts.NewRepository(gormDB)
	submissionRepo := submissions.NewRepository(gormDB)
	redemptionRepo := redemptions.NewRepository(gormDB)
	termRepo := terms.NewRepository(gormDB)
	bazaarRepo := bazaar.NewRepository(gormDB)
	impactRepo := impactstats.NewRepository(gormDB)
	exportRepo := export.NewRepository(gormDB)

	termsService, err := terms.NewService(terms.ServiceParams{
		TxRunner:    dbClient,
		Repo:        termRepo,
		Accounts:    accountRepo,
		Submissions: submissionRepo,
		Metrics:     decisionMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create terms service", err)
		os.Exit(1)
	}

	accountsService, err := accounts.NewService(accounts.ServiceParams{
		Repo:        accountRepo,
		Terms:       termsService,
		PasswordCfg: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create accounts service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		AccountRepo:    accountRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	recoveryService, err := auth.NewRecoveryService(auth.RecoveryServiceParams{
		AccountRepo:    accountRepo,
		Codes:          auth.NewRedisCodeStore(redisClient),
		PasswordConfig: cfg.Password,
		RecoveryConfig: cfg.Recovery,
		AppConfig:      cfg.App,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create recovery service", err)
		os.Exit(1)
	}

	impactService, err := impactstats.NewService(impactRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create impact service", err)
		os.Exit(1)
	}

	submissionsService, err := submissions.NewService(submissions.ServiceParams{
		TxRunner: dbClient,
		Repo:     submissionRepo,
		Accounts: accountRepo,
		Impact:   impactService,
		Metrics:  decisionMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create submissions service", err)
		os.Exit(1)
	}

	redemptionsService, err := redemptions.NewService(redemptions.ServiceParams{
		TxRunner: dbClient,
		Repo:     redemptionRepo,
		Accounts: accountRepo,
		Terms:    termsService,
		Metrics:  decisionMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create redemptions service", err)
		os.Exit(1)
	}

	bazaarService, err := bazaar.NewService(bazaar.ServiceParams{
		TxRunner: dbClient,
		Repo:     bazaarRepo,
		Accounts: accountRepo,
		Terms:    termsService,
		Config:   cfg.Bazaar,
		Metrics:  decisionMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bazaar service", err)
		os.Exit(1)
	}

	exportService, err := export.NewService(exportRepo, termsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create export service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
		Auth:        authService,
		Register:    registerService,
		Recovery:    recoveryService,
		Accounts:    accountsService,
		Submissions: submissionsService,
		Redemptions: redemptionsService,
		Terms:       termsService,
		Bazaar:      bazaarService,
		Impact:      impactService,
		Export:      exportService,
	}, metricsHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	if err := serve(ctx, logg, server); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

// serve runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests within shutdownTimeout.
func serve(ctx context.Context, logg *logger.Logger, server *http.Server) error {
	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case err := <-serveErr:
		return err
	case <-signalCtx.Done():
	}

	logg.Info(ctx, "shutdown signal received, draining connections")
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs error
	if err := server.Shutdown(drainCtx); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := <-serveErr; err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}
