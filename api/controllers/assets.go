package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dealerdesk-backend/api/responses"
	"github.com/angelmondragon/dealerdesk-backend/internal/assets"
	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
)

// availableAsset is one pickable row of the contract form. Item carries the
// full inventory or showroom record for the detail panel.
type availableAsset struct {
	ID    string          `json:"id"`
	Kind  assets.Kind     `json:"kind"`
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
	Item  any             `json:"item"`
}

// AssetsAvailable lists owned cars still available and consigned cars still
// on the floor, the only vehicles a new contract may finance.
func AssetsAvailable(registry assets.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if registry == nil {
			unavailable(w, r, logg, "assets")
			return
		}
		list, err := registry.ListAvailable(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]availableAsset, 0, len(list))
		for _, a := range list {
			row := availableAsset{ID: a.ID(), Kind: a.Kind, Label: a.Describe(), Price: a.Price()}
			if a.Kind == assets.KindOwned {
				row.Item = a.Owned
			} else {
				row.Item = a.Consigned
			}
			out = append(out, row)
		}
		responses.WriteSuccess(w, out)
	}
}
