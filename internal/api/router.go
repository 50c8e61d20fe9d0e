package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/resolvehq/complaints-backend/internal/api/handlers"
	"github.com/resolvehq/complaints-backend/internal/api/httpx"
	"github.com/resolvehq/complaints-backend/internal/config"
	"github.com/resolvehq/complaints-backend/internal/engine"
	"github.com/resolvehq/complaints-backend/internal/intel"
	"github.com/resolvehq/complaints-backend/internal/mailer"
	"github.com/resolvehq/complaints-backend/internal/metrics"
	"github.com/resolvehq/complaints-backend/internal/middleware"
	"github.com/resolvehq/complaints-backend/internal/models"
	"github.com/resolvehq/complaints-backend/internal/policy"
	"github.com/resolvehq/complaints-backend/internal/repository/postgres"
	"github.com/resolvehq/complaints-backend/internal/services"
)

type RouterDeps struct {
	Cfg      config.Config
	Pool     *pgxpool.Pool
	Repos    postgres.Repositories
	Engine   *engine.Engine
	Policy   *policy.Store
	Analyzer *intel.Analyzer
	Mail     *mailer.Mailer

	Decisions *services.DecisionService
	Analytics *services.AnalyticsService
	Customers *services.CustomerService
	Feedback  *services.FeedbackService
	Staff     *services.StaffService
	AuthMW    *middleware.AuthMiddleware
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics)
	r.Use(middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", d.health)
	r.Handle("/metrics", metrics.Handler())

	decide := handlers.NewDecideHandler(d.Decisions, d.Analyzer)
	audit := handlers.NewAuditHandler(d.Repos.Complaints)
	analytics := handlers.NewAnalyticsHandler(d.Analytics, d.Customers)
	customers := handlers.NewCustomersHandler(d.Customers, d.Repos.Complaints)
	authH := handlers.NewAuthHandler(d.Staff)
	feedback := handlers.NewFeedbackHandler(d.Feedback)
	admin := handlers.NewAdminHandler(d.Mail)

	r.Route("/api/v1", func(r chi.Router) {
		// public surface
		r.Post("/decide", decide.Decide)
		r.Post("/decide/explain", decide.Explain)
		r.Post("/rewrite", decide.Rewrite)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		// staff surface
		r.Group(func(r chi.Router) {
			r.Use(d.AuthMW.Auth)

			r.Get("/auth/me", authH.Me)
			r.Post("/feedback", feedback.Submit)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleAgent))
				r.Post("/batch/decide", decide.Batch)
				r.Get("/audit", audit.List)
				r.Get("/analytics/overview", analytics.Overview)
				r.Get("/analytics/root-causes", analytics.RootCauses)
				r.Get("/analytics/timeseries", analytics.Timeseries)
				r.Get("/analytics/top-customers", analytics.TopCustomers)
				r.Get("/customers/top", customers.Top)
				r.Get("/customers/{id}", customers.Get)
				r.Get("/customers/{id}/summary", customers.Summary)
				r.Get("/customers/{id}/complaints", customers.ListComplaints)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Get("/audit/export.csv", audit.ExportCSV)
				r.Get("/debug/email", admin.DebugEmail)
				r.Post("/smtp/test", admin.SMTPTest)
				r.Post("/staff", authH.CreateStaff)
			})
		})
	})

	return r
}

// health reports per-component readiness, the service stays up even when the
// model artifact or SMTP are absent.
func (d RouterDeps) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbOK := d.Pool != nil && d.Pool.Ping(ctx) == nil

	status := "ok"
	code := http.StatusOK
	if !dbOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, code, map[string]any{
		"status": status,
		"components": map[string]any{
			"engine":         d.Engine.Ready(),
			"model_loaded":   d.Engine.ModelLoaded(),
			"policy_rules":   d.Policy.Len(),
			"database":       dbOK,
			"smtp":           d.Mail.Configured(),
			"fraud_detector": true,
		},
	})
}
