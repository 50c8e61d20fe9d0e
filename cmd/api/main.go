package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/resolvehq/complaints-backend/internal/api"
	"github.com/resolvehq/complaints-backend/internal/auth"
	"github.com/resolvehq/complaints-backend/internal/classifier"
	"github.com/resolvehq/complaints-backend/internal/config"
	"github.com/resolvehq/complaints-backend/internal/db"
	"github.com/resolvehq/complaints-backend/internal/engine"
	"github.com/resolvehq/complaints-backend/internal/fraud"
	"github.com/resolvehq/complaints-backend/internal/intel"
	"github.com/resolvehq/complaints-backend/internal/logger"
	"github.com/resolvehq/complaints-backend/internal/mailer"
	"github.com/resolvehq/complaints-backend/internal/metrics"
	"github.com/resolvehq/complaints-backend/internal/middleware"
	"github.com/resolvehq/complaints-backend/internal/policy"
	"github.com/resolvehq/complaints-backend/internal/repository/postgres"
	"github.com/resolvehq/complaints-backend/internal/services"
	"github.com/resolvehq/complaints-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	// policy rules: load once, then hot-reload on file changes
	rules := policy.NewStore(cfg.PolicyPath, log)
	if err := rules.Load(); err != nil {
		log.Error("policy load", "path", cfg.PolicyPath, "err", err)
		os.Exit(1)
	}
	go func() {
		if err := rules.Watch(ctx); err != nil {
			log.Warn("policy watcher stopped", "err", err)
		}
	}()

	// classifier artifact is optional, the engine escalates without it
	var model engine.Classifier
	if m, err := classifier.LoadFile(cfg.ModelPath); err != nil {
		log.Warn("classifier unavailable, rules and escalation only", "path", cfg.ModelPath, "err", err)
	} else {
		model = m
		log.Info("classifier loaded", "path", cfg.ModelPath, "samples", m.Samples, "trained_at", m.TrainedAt)
	}

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer,
		15*time.Minute, 7*24*time.Hour)
	mail := mailer.New(cfg.SMTP, log)
	analyzer := intel.NewAnalyzer()
	eng := engine.New(rules, model, log)

	customerSvc := services.NewCustomerService(repos.Customers, repos.Complaints)
	decisionSvc := services.NewDecisionService(eng, analyzer, fraud.NewDetector(), customerSvc,
		repos.Complaints, repos.Customers, mail, wp, cfg, log)
	analyticsSvc := services.NewAnalyticsService(repos.Complaints)
	feedbackSvc := services.NewFeedbackService(repos.Feedback, log)
	staffSvc := services.NewStaffService(repos.Staff, tm, log)

	if err := staffSvc.SeedAdmin(ctx, cfg.AdminUser, cfg.AdminPassword); err != nil {
		log.Error("admin seed", "err", err)
		os.Exit(1)
	}

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg:       cfg,
		Pool:      pool,
		Repos:     repos,
		Engine:    eng,
		Policy:    rules,
		Analyzer:  analyzer,
		Mail:      mail,
		Decisions: decisionSvc,
		Analytics: analyticsSvc,
		Customers: customerSvc,
		Feedback:  feedbackSvc,
		Staff:     staffSvc,
		AuthMW:    middleware.NewAuthMiddleware(tm),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "rules", rules.Len(), "model", model != nil)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
