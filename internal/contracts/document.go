package contracts

import (
	"context"
	"errors"
	"fmt"

	"github.com/divan/num2words"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dealerdesk-backend/internal/assets"
	"github.com/angelmondragon/dealerdesk-backend/internal/settings"
)

// Document carries everything the print collaborator needs for one contract.
// Rendering is not done here.
type Document struct {
	ContractWithDetails
	Reference   string              `json:"reference"`
	TypeLabel   string              `json:"typeLabel"`
	Assets      []assets.Asset      `json:"assets"`
	AmountWords string              `json:"amountInWords"`
	Letterhead  settings.Letterhead `json:"letterhead"`
}

// Document assembles the printable view. The letterhead is passed in by the
// caller and printed with hidden fields blanked.
func (s *service) Document(ctx context.Context, id string, letterhead settings.Letterhead) (*Document, error) {
	details, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	financed := make([]assets.Asset, 0, len(details.Contract.AssetIDs))
	for _, assetID := range details.Contract.AssetIDs {
		asset, err := s.assets.Lookup(ctx, assetID, false)
		if errors.Is(err, assets.ErrAssetNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		financed = append(financed, asset)
	}

	reference := details.Contract.ManualID
	if reference == "" {
		reference = details.Contract.ID
	}

	return &Document{
		ContractWithDetails: *details,
		Reference:           reference,
		TypeLabel:           details.Contract.Type.Label(),
		Assets:              financed,
		AmountWords:         AmountInWords(details.Contract.TotalAmount),
		Letterhead:          letterhead.Visible(),
	}, nil
}

// AmountInWords spells the whole part of amount and appends the fraction in
// hundredths, e.g. "one thousand two hundred fifty and 50/100".
func AmountInWords(amount decimal.Decimal) string {
	amount = amount.Abs().Round(2)
	whole := amount.Truncate(0)
	cents := amount.Sub(whole).Shift(2).IntPart()
	return fmt.Sprintf("%s and %02d/100", num2words.Convert(int(whole.IntPart())), cents)
}
