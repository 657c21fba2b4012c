package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/dealerdesk-backend/api/controllers"
	"github.com/angelmondragon/dealerdesk-backend/api/middleware"
	"github.com/angelmondragon/dealerdesk-backend/internal/assets"
	"github.com/angelmondragon/dealerdesk-backend/internal/auth"
	"github.com/angelmondragon/dealerdesk-backend/internal/buyers"
	"github.com/angelmondragon/dealerdesk-backend/internal/contracts"
	"github.com/angelmondragon/dealerdesk-backend/internal/dashboard"
	"github.com/angelmondragon/dealerdesk-backend/internal/installments"
	"github.com/angelmondragon/dealerdesk-backend/internal/inventory"
	"github.com/angelmondragon/dealerdesk-backend/internal/investors"
	"github.com/angelmondragon/dealerdesk-backend/internal/settings"
	"github.com/angelmondragon/dealerdesk-backend/internal/showroom"
	"github.com/angelmondragon/dealerdesk-backend/internal/titletransfers"
	"github.com/angelmondragon/dealerdesk-backend/pkg/auth/session"
	"github.com/angelmondragon/dealerdesk-backend/pkg/config"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
	"github.com/angelmondragon/dealerdesk-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/dealerdesk-backend/pkg/redis"
)

// RedisStore is the slice of pkg/redis the HTTP layer needs.
type RedisStore interface {
	pkgredis.Pinger
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Deps carries every collaborator the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Schema   controllers.SchemaProbe
	Redis    RedisStore
	Sessions session.AccessSessionChecker
	Gatherer prometheus.Gatherer
	Metrics  *metrics.HTTPMetrics

	Auth           auth.Service
	Assets         assets.Registry
	Inventory      inventory.Service
	Showroom       showroom.Service
	Investors      investors.Service
	Buyers         buyers.Service
	Contracts      contracts.Service
	Installments   installments.Service
	TitleTransfers titletransfers.Service
	Dashboard      dashboard.Service
	Settings       settings.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.Metrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	store := d.Redis
	idem := middleware.Idempotency(store, logg)

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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, store))
		r.Get("/schema", controllers.HealthSchema(d.Schema, logg))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, store, logg)).Post("/register", controllers.AuthRegister(d.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, store, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(d.Auth, cfg.JWT, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))

		r.Get("/assets/available", controllers.AssetsAvailable(d.Assets, logg))

		r.Get("/inventory", controllers.InventoryList(d.Inventory, logg))
		r.Post("/inventory", controllers.InventoryCreate(d.Inventory, logg))
		r.Patch("/inventory/{id}/status", controllers.InventoryUpdateStatus(d.Inventory, logg))

		r.Get("/showroom", controllers.ShowroomList(d.Showroom, logg))
		r.Post("/showroom", controllers.ShowroomCreate(d.Showroom, logg))
		r.Patch("/showroom/{id}/status", controllers.ShowroomUpdateStatus(d.Showroom, logg))

		r.Get("/investors", controllers.InvestorList(d.Investors, logg))
		r.Post("/investors", controllers.InvestorCreate(d.Investors, logg))
		r.Get("/investors/{id}/balance", controllers.InvestorBalance(d.Investors, logg))
		r.With(idem).Put("/investors/{id}/balance", controllers.InvestorSetBalance(d.Investors, logg))

		r.Get("/buyers", controllers.BuyerList(d.Buyers, logg))
		r.Post("/buyers", controllers.BuyerCreate(d.Buyers, logg))
		r.Get("/buyers/export", controllers.BuyerExport(d.Buyers, logg))

		r.Get("/contracts", controllers.ContractList(d.Contracts, logg))
		r.With(idem).Post("/contracts", controllers.ContractCreate(d.Contracts, logg))
		r.Get("/contracts/{id}", controllers.ContractDetail(d.Contracts, logg))
		r.Get("/contracts/{id}/document", controllers.ContractDocument(d.Contracts, d.Settings, logg))
		r.Get("/contracts/{id}/installments", controllers.ContractInstallments(d.Contracts, logg))
		r.Get("/contracts/{id}/installments/export", controllers.ContractInstallmentsExport(d.Contracts, logg))

		r.Get("/installments", controllers.InstallmentList(d.Installments, logg))
		r.With(idem).Post("/installments/{id}/pay", controllers.InstallmentPay(d.Installments, logg))

		r.Get("/title-transfers", controllers.TitleTransferList(d.TitleTransfers, logg))
		r.With(idem).Post("/title-transfers", controllers.TitleTransferCreate(d.TitleTransfers, logg))

		r.Get("/dashboard", controllers.DashboardStats(d.Dashboard, logg))

		r.Get("/settings/letterhead", controllers.LetterheadFetch(d.Settings, logg))
		r.Put("/settings/letterhead", controllers.LetterheadSave(d.Settings, logg))
	})

	return r
}
