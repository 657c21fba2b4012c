package controllers

import (
	"net/http"

	"github.com/angelmondragon/dealerdesk-backend/api/responses"
	"github.com/angelmondragon/dealerdesk-backend/api/validators"
	"github.com/angelmondragon/dealerdesk-backend/internal/installments"
	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
)

// InstallmentList lists every installment, optionally filtered by ?status=.
func InstallmentList(svc installments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "installments")
			return
		}
		status := validators.QueryString(r, "status", 32)
		list, err := svc.ListAll(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// InstallmentPay records a cash collection. Paying twice moves the paid date.
func InstallmentPay(svc installments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "installments")
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paid, err := svc.Pay(r.Context(), id, actorFromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, paid)
	}
}
