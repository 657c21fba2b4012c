// Package assets resolves a financed vehicle id to either an owned inventory
// item or a consigned showroom item.
package assets

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/internal/inventory"
	"github.com/angelmondragon/dealerdesk-backend/internal/showroom"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
	"github.com/angelmondragon/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
)

type Kind string

const (
	KindOwned     Kind = "owned"
	KindConsigned Kind = "consigned"
)

// ErrAssetNotFound is returned when an id is in neither table.
var ErrAssetNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")

// Asset is a tagged union: exactly one of Owned or Consigned is set,
// matching Kind.
type Asset struct {
	Kind      Kind                  `json:"kind"`
	Owned     *models.InventoryItem `json:"owned,omitempty"`
	Consigned *models.ShowroomItem  `json:"consigned,omitempty"`
}

func (a Asset) ID() string {
	switch a.Kind {
	case KindOwned:
		return a.Owned.ID
	case KindConsigned:
		return a.Consigned.ID
	}
	return ""
}

// Price is what the asset contributes to a contract's item value: the list
// price of owned cars, the selling price of consigned ones.
func (a Asset) Price() decimal.Decimal {
	switch a.Kind {
	case KindOwned:
		return a.Owned.Price
	case KindConsigned:
		return a.Consigned.SellingPrice
	}
	return decimal.Zero
}

// Available reports whether the asset can still be financed.
func (a Asset) Available() bool {
	switch a.Kind {
	case KindOwned:
		return a.Owned.Status == enums.InventoryStatusAvailable
	case KindConsigned:
		return a.Consigned.Status == enums.ShowroomStatusReceived
	}
	return false
}

// Describe is a short human label used in documents and errors.
func (a Asset) Describe() string {
	switch a.Kind {
	case KindOwned:
		return fmt.Sprintf("%s %s (%s)", a.Owned.Type, a.Owned.Model, a.Owned.PlateNumber)
	case KindConsigned:
		return fmt.Sprintf("%s (%s)", a.Consigned.Type, a.Consigned.PlateNumber)
	}
	return ""
}

type Registry interface {
	WithTx(tx *gorm.DB) Registry
	Lookup(ctx context.Context, id string, forUpdate bool) (Asset, error)
	SetStatus(ctx context.Context, id string, target enums.AssetStatus) error
	ListAvailable(ctx context.Context) ([]Asset, error)
}

type registry struct {
	inventory inventory.Repository
	showroom  showroom.Repository
}

func NewRegistry(inv inventory.Repository, show showroom.Repository) (Registry, error) {
	if inv == nil || show == nil {
		return nil, fmt.Errorf("inventory and showroom repositories required")
	}
	return &registry{inventory: inv, showroom: show}, nil
}

func (r *registry) WithTx(tx *gorm.DB) Registry {
	if tx == nil {
		return r
	}
	return &registry{inventory: r.inventory.WithTx(tx), showroom: r.showroom.WithTx(tx)}
}

// Lookup checks inventory first, then the showroom.
func (r *registry) Lookup(ctx context.Context, id string, forUpdate bool) (Asset, error) {
	owned, err := r.inventory.FindByID(ctx, id, forUpdate)
	switch {
	case err == nil:
		return Asset{Kind: KindOwned, Owned: owned}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return Asset{}, db.Classify(err, "look up inventory item")
	}

	consigned, err := r.showroom.FindByID(ctx, id, forUpdate)
	switch {
	case err == nil:
		return Asset{Kind: KindConsigned, Consigned: consigned}, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Asset{}, ErrAssetNotFound
	default:
		return Asset{}, db.Classify(err, "look up showroom item")
	}
}

// SetStatus writes target into whichever table holds id, translating to the
// showroom vocabulary (available -> received) when needed.
func (r *registry) SetStatus(ctx context.Context, id string, target enums.AssetStatus) error {
	if !target.IsValid() {
		return pkgerrors.FieldErrors("invalid status", map[string]string{"status": "must be available or sold"})
	}

	affected, err := r.inventory.UpdateStatus(ctx, id, target.InventoryStatus())
	if err != nil {
		return db.Classify(err, "update inventory status")
	}
	if affected > 0 {
		return nil
	}

	affected, err = r.showroom.UpdateStatus(ctx, id, target.ShowroomStatus())
	if err != nil {
		return db.Classify(err, "update showroom status")
	}
	if affected == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// ListAvailable returns every asset that can be attached to a new contract.
func (r *registry) ListAvailable(ctx context.Context) ([]Asset, error) {
	owned, err := r.inventory.List(ctx)
	if err != nil {
		return nil, db.Classify(err, "list inventory")
	}
	consigned, err := r.showroom.List(ctx)
	if err != nil {
		return nil, db.Classify(err, "list showroom")
	}

	out := make([]Asset, 0, len(owned)+len(consigned))
	for i := range owned {
		if asset := (Asset{Kind: KindOwned, Owned: &owned[i]}); asset.Available() {
			out = append(out, asset)
		}
	}
	for i := range consigned {
		if asset := (Asset{Kind: KindConsigned, Consigned: &consigned[i]}); asset.Available() {
			out = append(out, asset)
		}
	}
	return out, nil
}
