package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dealerdesk-backend/api/responses"
	"github.com/angelmondragon/dealerdesk-backend/api/validators"
	"github.com/angelmondragon/dealerdesk-backend/internal/contracts"
	"github.com/angelmondragon/dealerdesk-backend/internal/installments"
	"github.com/angelmondragon/dealerdesk-backend/internal/settings"
	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
)

type createContractRequest struct {
	ManualID      string          `json:"manualId"`
	Type          string          `json:"type"`
	BuyerID       string          `json:"buyerId"`
	GuarantorID   string          `json:"guarantorId"`
	InvestorID    string          `json:"investorId"`
	AssetIDs      []string        `json:"assetIds"`
	ServiceFee    decimal.Decimal `json:"serviceFee"`
	PaymentMode   string          `json:"paymentMode"`
	Months        int             `json:"months"`
	CreditDueDate string          `json:"creditDueDate"`
	Notes         string          `json:"notes"`
}

func (req createContractRequest) draft(r *http.Request) contracts.Draft {
	return contracts.Draft{
		ManualID:      req.ManualID,
		Type:          req.Type,
		BuyerID:       req.BuyerID,
		GuarantorID:   req.GuarantorID,
		InvestorID:    req.InvestorID,
		AssetIDs:      req.AssetIDs,
		ServiceFee:    req.ServiceFee,
		PaymentMode:   req.PaymentMode,
		Months:        req.Months,
		CreditDueDate: req.CreditDueDate,
		Notes:         req.Notes,
		Actor:         actorFromRequest(r),
	}
}

func ContractList(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "contracts")
			return
		}
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ContractCreate runs the sale workflow: schedule, asset flip and investor debit.
func ContractCreate(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "contracts")
			return
		}
		var body createContractRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), body.draft(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func ContractDetail(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "contracts")
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// ContractDocument returns the printable contract with the current letterhead.
func ContractDocument(svc contracts.Service, settingsSvc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || settingsSvc == nil {
			unavailable(w, r, logg, "contracts")
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		letterhead, err := settingsSvc.Letterhead(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		doc, err := svc.Document(r.Context(), id, letterhead)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, doc)
	}
}

func ContractInstallments(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "contracts")
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail.Installments)
	}
}

// ContractInstallmentsExport downloads one contract's schedule; defaults to CSV.
func ContractInstallmentsExport(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "contracts")
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reference := detail.Contract.ID
		if detail.Contract.ManualID != "" {
			reference = detail.Contract.ManualID
		}
		writeExport(w, r, logg, "installments_"+reference, installments.ExportTable(detail.Installments), time.Now())
	}
}
