// Package app assembles the domain services shared by the API and dealerctl.
package app

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/dealerdesk-backend/internal/assets"
	"github.com/angelmondragon/dealerdesk-backend/internal/buyers"
	"github.com/angelmondragon/dealerdesk-backend/internal/contracts"
	"github.com/angelmondragon/dealerdesk-backend/internal/dashboard"
	"github.com/angelmondragon/dealerdesk-backend/internal/installments"
	"github.com/angelmondragon/dealerdesk-backend/internal/inventory"
	"github.com/angelmondragon/dealerdesk-backend/internal/investors"
	"github.com/angelmondragon/dealerdesk-backend/internal/settings"
	"github.com/angelmondragon/dealerdesk-backend/internal/showroom"
	"github.com/angelmondragon/dealerdesk-backend/internal/titletransfers"
	"github.com/angelmondragon/dealerdesk-backend/pkg/config"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
	"github.com/angelmondragon/dealerdesk-backend/pkg/metrics"
	"github.com/angelmondragon/dealerdesk-backend/pkg/outbox"
)

type Params struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         *db.Client
	Registerer prometheus.Registerer
	// Now overrides the clock for contract issue dates and payments.
	Now func() time.Time
}

type Services struct {
	// Assets is the registry shared with contract issuance; the API uses it to
	// list what a new contract may finance.
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

func Build(p Params) (*Services, error) {
	if p.Config == nil || p.DB == nil {
		return nil, fmt.Errorf("config and db are required")
	}
	conn := p.DB.DB()

	inventoryRepo := inventory.NewRepository(conn)
	showroomRepo := showroom.NewRepository(conn)
	investorRepo := investors.NewRepository(conn)
	buyerRepo := buyers.NewRepository(conn)
	contractRepo := contracts.NewRepository(conn)
	installmentRepo := installments.NewRepository(conn)
	emitter := outbox.NewService(outbox.NewRepository(conn), p.Logger)
	contractMetrics := metrics.NewContractMetrics(p.Registerer)

	var (
		out Services
		err error
	)
	if out.Inventory, err = inventory.NewService(inventoryRepo); err != nil {
		return nil, fmt.Errorf("inventory service: %w", err)
	}
	if out.Showroom, err = showroom.NewService(showroomRepo); err != nil {
		return nil, fmt.Errorf("showroom service: %w", err)
	}
	if out.Investors, err = investors.NewService(investorRepo, p.Logger); err != nil {
		return nil, fmt.Errorf("investors service: %w", err)
	}
	if out.Buyers, err = buyers.NewService(buyerRepo); err != nil {
		return nil, fmt.Errorf("buyers service: %w", err)
	}
	if out.TitleTransfers, err = titletransfers.NewService(titletransfers.NewRepository(conn)); err != nil {
		return nil, fmt.Errorf("title transfers service: %w", err)
	}
	if out.Settings, err = settings.NewService(conn, p.Config.Company); err != nil {
		return nil, fmt.Errorf("settings service: %w", err)
	}

	registry, err := assets.NewRegistry(inventoryRepo, showroomRepo)
	if err != nil {
		return nil, fmt.Errorf("asset registry: %w", err)
	}
	out.Assets = registry
	out.Contracts, err = contracts.NewService(contracts.ServiceParams{
		DB:           p.DB,
		Contracts:    contractRepo,
		Installments: installmentRepo,
		Assets:       registry,
		Buyers:       buyerRepo,
		Investors:    investorRepo,
		Ledger:       out.Investors,
		Outbox:       emitter,
		Metrics:      contractMetrics,
		Logger:       p.Logger,
		Now:          p.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("contracts service: %w", err)
	}
	out.Installments, err = installments.NewService(installments.ServiceParams{
		DB:      p.DB,
		Repo:    installmentRepo,
		Outbox:  emitter,
		Metrics: contractMetrics,
		Logger:  p.Logger,
		Now:     p.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("installments service: %w", err)
	}
	out.Dashboard, err = dashboard.NewService(dashboard.ServiceParams{
		Schema:       p.DB,
		Contracts:    contractRepo,
		Installments: installmentRepo,
		Inventory:    inventoryRepo,
		Showroom:     showroomRepo,
		Investors:    investorRepo,
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard service: %w", err)
	}
	return &out, nil
}
