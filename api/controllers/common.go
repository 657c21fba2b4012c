package controllers

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/dealerdesk-backend/api/middleware"
	"github.com/angelmondragon/dealerdesk-backend/api/responses"
	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
	"github.com/angelmondragon/dealerdesk-backend/pkg/export"
	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
	"github.com/angelmondragon/dealerdesk-backend/pkg/outbox"
)

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// pathID reads a required chi URL parameter.
func pathID(r *http.Request, name string) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, name))
	if id == "" {
		return "", pkgerrors.FieldErrors("invalid path", map[string]string{name: "is required"})
	}
	return id, nil
}

// actorFromRequest identifies the signed-in operator for event attribution.
func actorFromRequest(r *http.Request) *outbox.ActorRef {
	userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return nil
	}
	return &outbox.ActorRef{UserID: userID, Email: middleware.EmailFromContext(r.Context())}
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeInternal, "%s service unavailable", name))
}

// writeExport renders table in the ?format= requested (csv by default).
func writeExport(w http.ResponseWriter, r *http.Request, logg *logger.Logger, base string, table export.Table, now time.Time) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, table); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteAttachment(w, format.ContentType(), format.Filename(base, now), buf.Bytes())
}
