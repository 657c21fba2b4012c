// Package dashboard aggregates the headline numbers shown on the landing page.
package dashboard

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/dealerdesk-backend/internal/contracts"
	"github.com/angelmondragon/dealerdesk-backend/internal/installments"
	"github.com/angelmondragon/dealerdesk-backend/internal/inventory"
	"github.com/angelmondragon/dealerdesk-backend/internal/investors"
	"github.com/angelmondragon/dealerdesk-backend/internal/showroom"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
)

type schemaProbe interface {
	MissingTables(ctx context.Context, tables ...string) ([]string, error)
}

type Stats struct {
	ActiveContracts       int64           `json:"activeContracts"`
	Outstanding           decimal.Decimal `json:"outstanding"`
	Collected             decimal.Decimal `json:"collected"`
	PaidCount             int64           `json:"paidCount"`
	UnpaidCount           int64           `json:"unpaidCount"`
	ShowroomCount         int64           `json:"showroomCount"`
	AvailableInventory    int64           `json:"availableInventory"`
	TotalInvestorsBalance decimal.Decimal `json:"totalInvestorsBalance"`
	Provisioned           bool            `json:"provisioned"`
	MissingTables         []string        `json:"missingTables"`
}

type Service interface {
	Stats(ctx context.Context) (*Stats, error)
}

type ServiceParams struct {
	Schema       schemaProbe
	Contracts    contracts.Repository
	Installments installments.Repository
	Inventory    inventory.Repository
	Showroom     showroom.Repository
	Investors    investors.Repository
}

type service struct {
	params ServiceParams
}

func NewService(params ServiceParams) (Service, error) {
	if params.Schema == nil || params.Contracts == nil || params.Installments == nil ||
		params.Inventory == nil || params.Showroom == nil || params.Investors == nil {
		return nil, fmt.Errorf("dashboard dependencies required")
	}
	return &service{params: params}, nil
}

// Stats runs every aggregate concurrently. Missing tables count as empty;
// Provisioned reports whether any were missing.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	out := &Stats{
		Outstanding:           decimal.Zero,
		Collected:             decimal.Zero,
		TotalInvestorsBalance: decimal.Zero,
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		missing, err := s.params.Schema.MissingTables(gctx)
		if err != nil {
			return err
		}
		out.MissingTables = missing
		out.Provisioned = len(missing) == 0
		return nil
	})
	g.Go(func() error {
		n, err := s.params.Contracts.CountByStatus(gctx, enums.ContractStatusActive)
		if err != nil {
			return db.Classify(err, "count contracts")
		}
		out.ActiveContracts = n
		return nil
	})
	g.Go(func() error {
		totals, err := s.params.Installments.TotalsByStatus(gctx)
		if err != nil {
			return db.Classify(err, "sum installments")
		}
		for _, row := range totals {
			if row.Status == enums.InstallmentStatusPaid {
				out.PaidCount += row.Count
				out.Collected = out.Collected.Add(row.Total)
				continue
			}
			out.UnpaidCount += row.Count
			out.Outstanding = out.Outstanding.Add(row.Total)
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.params.Showroom.Count(gctx)
		if err != nil {
			return db.Classify(err, "count showroom")
		}
		out.ShowroomCount = n
		return nil
	})
	g.Go(func() error {
		n, err := s.params.Inventory.CountByStatus(gctx, enums.InventoryStatusAvailable)
		if err != nil {
			return db.Classify(err, "count inventory")
		}
		out.AvailableInventory = n
		return nil
	})
	g.Go(func() error {
		sum, err := s.params.Investors.SumBalances(gctx)
		if err != nil {
			return db.Classify(err, "sum investor balances")
		}
		out.TotalInvestorsBalance = sum
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
