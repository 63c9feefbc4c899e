package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/endurancy/platform/internal/api/handlers"
	"github.com/endurancy/platform/internal/api/middleware"
	"github.com/endurancy/platform/internal/audit"
	"github.com/endurancy/platform/internal/auth"
	"github.com/endurancy/platform/internal/cache"
	"github.com/endurancy/platform/internal/catalog"
	"github.com/endurancy/platform/internal/config"
	"github.com/endurancy/platform/internal/models"
	"github.com/endurancy/platform/internal/notification"
	"github.com/endurancy/platform/internal/organization"
	"github.com/endurancy/platform/internal/queue"
	"github.com/endurancy/platform/internal/request"
	"github.com/endurancy/platform/internal/storage"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	jwt   *auth.JWTMiddleware
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		jwt:   auth.NewJWTMiddleware(cfg.Auth.JWTSecret),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services
	c := cache.New(rt.redis)
	orgSvc := organization.NewService(rt.db, c)
	catalogSvc := catalog.NewService(rt.db)
	notifSvc := notification.NewService(rt.db,
		rt.cfg.Notifications.RetentionDays, rt.cfg.Notifications.StaleTicketMins)
	requestSvc := request.NewService(rt.db, catalogSvc, orgSvc, notifSvc)
	auditSvc := audit.NewService(rt.db)
	logoStore := storage.NewLocalStore(rt.cfg.Uploads.Dir, rt.cfg.Uploads.MaxLogoBytes)
	queueClient := queue.NewClient(rt.cfg.Redis)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		// Organization admin surface
		orgH := handlers.NewOrganizationHandler(orgSvc, requestSvc, logoStore, auditSvc,
			rt.cfg.Uploads.MaxLogoBytes)
		r.Route("/organization", func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleOrgAdmin))
			r.Use(auth.RequireOrganization)

			r.Get("/plan", orgH.Plan)
			r.Post("/request-plan-change", orgH.RequestPlanChange)
			r.Post("/request-module-activation", orgH.RequestModuleActivation)
			r.Get("/settings", orgH.GetSettings)
			r.Put("/settings", orgH.UpdateSettings)
			r.Post("/logo", orgH.UploadLogo)
		})

		// Per-user notification inbox
		notifH := handlers.NewNotificationHandler(notifSvc)
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notifH.List)
			r.Get("/unread", notifH.Unread)
			r.Get("/stats", notifH.Stats)
			r.Post("/{id}/read", notifH.MarkRead)
			r.Post("/read-all", notifH.MarkAllRead)
		})

		// Platform admin surface
		adminH := handlers.NewAdminHandler(requestSvc, auditSvc, queueClient, notifSvc)
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleAdmin))

			r.Get("/requests", adminH.ListRequests)
			r.Post("/requests/{id}/approve", adminH.ApproveRequest)
			r.Post("/requests/{id}/reject", adminH.RejectRequest)
			r.Get("/audit", adminH.AuditLogs)
			r.Post("/tickets/{id}/notify", adminH.NotifyTicket)
			r.Post("/notifications/cleanup", adminH.TriggerCleanup)
			r.Post("/notifications/scan", adminH.TriggerSystemScan)
		})
	})

	return r
}
