package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lsalmeida/ecoeletronico-backend/api/controllers"
	"github.com/lsalmeida/ecoeletronico-backend/api/middleware"
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
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/logger"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services bundles every domain service the router mounts.
type Services struct {
	Auth        auth.Service
	Register    auth.RegisterService
	Recovery    auth.RecoveryService
	Accounts    accounts.Service
	Submissions submissions.Service
	Redemptions redemptions.Service
	Terms       terms.Service
	Bazaar      bazaar.Service
	Impact      impactstats.Service
	Export      export.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions sessionManager,
	svcs Services,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	recoveryPolicy := middleware.NewAuthRateLimitPolicy(
		"recovery",
		cfg.AuthRateLimit.RecoveryWindow,
		cfg.AuthRateLimit.RecoveryIPLimit,
		cfg.AuthRateLimit.RecoveryEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg), middleware.Idempotency(redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Register, svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(recoveryPolicy, redisClient, logg)).Post("/recovery", controllers.AuthRecoveryRequest(svcs.Recovery, logg))
		r.With(middleware.AuthRateLimit(recoveryPolicy, redisClient, logg)).Post("/recovery/confirm", controllers.AuthRecoveryConfirm(svcs.Recovery, logg))
		r.Post("/logout", controllers.AuthLogout(sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AdminAuthLogin(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/account", func(r chi.Router) {
			r.Get("/me", controllers.AccountMe(svcs.Accounts, logg))
			r.Post("/password", controllers.AccountChangePassword(svcs.Accounts, logg))
			r.Put("/consent", controllers.AccountUpdateConsent(svcs.Accounts, logg))
		})

		r.Get("/materials", controllers.MaterialsList())
		r.Route("/submissions", func(r chi.Router) {
			r.Post("/", controllers.SubmissionCreate(svcs.Submissions, logg))
			r.Get("/", controllers.SubmissionListMine(svcs.Submissions, logg))
		})

		r.Get("/coupons", controllers.CouponsList(svcs.Redemptions, logg))
		r.Route("/redemptions", func(r chi.Router) {
			r.Post("/", controllers.RedemptionCreate(svcs.Redemptions, logg))
			r.Get("/", controllers.RedemptionListMine(svcs.Redemptions, logg))
		})

		r.Get("/terms/current", controllers.TermsCurrent(svcs.Terms, logg))

		r.Route("/bazaar", func(r chi.Router) {
			r.Get("/window", controllers.BazaarWindow(svcs.Bazaar, logg))
			r.Post("/vouchers", controllers.BazaarVoucherPurchase(svcs.Bazaar, logg))
			r.Get("/vouchers", controllers.BazaarMyVouchers(svcs.Bazaar, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", controllers.AdminAccountsRanking(svcs.Accounts, logg))
			r.Post("/{accountId}/activate", controllers.AdminAccountActivate(svcs.Accounts, logg))
			r.Post("/{accountId}/deactivate", controllers.AdminAccountDeactivate(svcs.Accounts, logg))
			r.Post("/{accountId}/adjust", controllers.AdminAccountAdjustBalance(svcs.Accounts, logg))
		})

		r.Route("/submissions", func(r chi.Router) {
			r.Get("/pending", controllers.AdminSubmissionsPending(svcs.Submissions, logg))
			r.Post("/{submissionId}/approve", controllers.AdminSubmissionApprove(svcs.Submissions, logg))
			r.Post("/{submissionId}/reject", controllers.AdminSubmissionReject(svcs.Submissions, logg))
		})

		r.Route("/redemptions", func(r chi.Router) {
			r.Get("/pending", controllers.AdminRedemptionsPending(svcs.Redemptions, logg))
			r.Post("/{redemptionId}/approve", controllers.AdminRedemptionApprove(svcs.Redemptions, logg))
			r.Post("/{redemptionId}/reject", controllers.AdminRedemptionReject(svcs.Redemptions, logg))
		})

		r.Route("/terms", func(r chi.Router) {
			r.Post("/advance", controllers.AdminTermsAdvance(svcs.Terms, logg))
			r.Get("/snapshots", controllers.AdminTermSnapshots(svcs.Terms, logg))
			r.Get("/snapshots/{term}", controllers.AdminTermSnapshot(svcs.Terms, logg))
		})

		r.Route("/bazaar", func(r chi.Router) {
			r.Post("/open", controllers.AdminBazaarOpen(svcs.Bazaar, logg))
			r.Post("/close", controllers.AdminBazaarClose(svcs.Bazaar, logg))
			r.Get("/stats", controllers.AdminBazaarStats(svcs.Bazaar, logg))
			r.Get("/vouchers/{code}", controllers.AdminVoucherVerify(svcs.Bazaar, logg))
			r.Post("/vouchers/{code}/use", controllers.AdminVoucherUse(svcs.Bazaar, logg))
		})

		r.Get("/reports/impact", controllers.AdminImpactReport(svcs.Impact, logg))
		r.Get("/export", controllers.AdminExport(svcs.Export, logg))
	})

	return r
}
