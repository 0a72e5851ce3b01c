package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	auditpostgres "3tcapital/wealthdesk/internal/adapters/audit/postgres"
	"3tcapital/wealthdesk/internal/adapters/fixtures"
	clientshttp "3tcapital/wealthdesk/internal/adapters/http/clients"
	documentshttp "3tcapital/wealthdesk/internal/adapters/http/documents"
	healthhttp "3tcapital/wealthdesk/internal/adapters/http/health"
	holdingshttp "3tcapital/wealthdesk/internal/adapters/http/holdings"
	"3tcapital/wealthdesk/internal/adapters/memory"
	"3tcapital/wealthdesk/internal/adapters/notify"
	apphealth "3tcapital/wealthdesk/internal/application/health"
	"3tcapital/wealthdesk/internal/application/history"
	"3tcapital/wealthdesk/internal/application/portfolio"
	"3tcapital/wealthdesk/internal/application/workflow"
	"3tcapital/wealthdesk/internal/core/lifecycle"
	"3tcapital/wealthdesk/internal/infrastructure/config"
	"3tcapital/wealthdesk/internal/infrastructure/database"
	"3tcapital/wealthdesk/internal/infrastructure/http/server"
	"3tcapital/wealthdesk/internal/infrastructure/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "service stopped: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.App.Name, cfg.Log.Level, cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed, err := fixtures.Load(cfg.Seed.Path)
	if err != nil {
		return fmt.Errorf("load seed data: %w", err)
	}
	store := memory.New(seed)
	log.Info("seed data loaded", "clients", len(seed.Clients), "seed_file", cfg.Seed.Path)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := notify.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	notifiers := []lifecycle.Notifier{notify.NewLogNotifier(log), metrics}
	var (
		checkers   []apphealth.Checker
		historySvc *history.Service
		auditTrail *notify.AuditNotifier
	)
	if cfg.Audit.Enabled {
		pool, err := database.NewPool(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect audit database: %w", err)
		}
		defer pool.Close()
		if err := database.RunMigrations(ctx, pool, log); err != nil {
			return fmt.Errorf("migrate audit database: %w", err)
		}

		repo := auditpostgres.NewRepository(pool, log)
		auditTrail = notify.NewAuditNotifier(repo, log, cfg.Audit.QueueSize, cfg.Audit.WriteTimeout, metrics,
			notify.WithBreaker(notify.NewBreaker(cfg.Audit.BreakerFailures, cfg.Audit.BreakerCooldown)))
		notifiers = append(notifiers, auditTrail)
		if historySvc, err = history.NewService(repo); err != nil {
			return err
		}
		checkers = append(checkers, apphealth.CheckFunc{Label: "audit_database", Fn: pool.Ping})
		log.Info("audit trail enabled", "database", cfg.Database.Database, "queue_size", cfg.Audit.QueueSize)
	} else {
		log.Info("audit trail disabled")
	}

	workflowSvc, err := workflow.NewService(store, store.Documents(), store.Holdings(), log,
		workflow.WithNotifier(notify.NewMultiNotifier(log, notifiers...)),
		workflow.WithReviewPolicy(reviewPolicy(cfg.Workflow, log)),
	)
	if err != nil {
		return fmt.Errorf("build workflow: %w", err)
	}
	portfolioSvc, err := portfolio.NewService(store, workflowSvc, portfolio.WithWorkers(cfg.Workflow.PortfolioWorkers))
	if err != nil {
		return fmt.Errorf("build portfolio: %w", err)
	}

	healthSvc := apphealth.NewService(apphealth.Metadata{
		Service:     cfg.App.Name,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
	}, checkers...)

	srv, err := server.New(server.Options{
		Config:        cfg,
		Logger:        log,
		HealthHandler: http.HandlerFunc(healthhttp.NewHandler(healthSvc).Status),
		Gatherer:      registry,
		Routes: []server.RouteRegistrar{
			clientshttp.NewHandler(portfolioSvc, workflowSvc, historySvc, log),
			documentshttp.NewHandler(workflowSvc, log),
			holdingshttp.NewHandler(workflowSvc, log),
		},
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}
	defer srv.Close()

	runErr := srv.Run(ctx)

	if auditTrail != nil {
		drainCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := auditTrail.Close(drainCtx); err != nil {
			log.Warn("audit queue not fully drained", "error", err)
		}
	}
	return runErr
}

func reviewPolicy(cfg config.WorkflowSettings, log *slog.Logger) workflow.ReviewPolicy {
	if len(cfg.AutoApproveNames) == 0 {
		return workflow.ManualReview{}
	}
	log.Info("auto review enabled", "documents", cfg.AutoApproveNames)
	return workflow.NewAutoApproveNames(cfg.AutoApproveNames)
}
