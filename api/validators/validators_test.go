package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
)

type draftBody struct {
	Name     string           `json:"name" validate:"required"`
	Months   int              `json:"months" validate:"gte=1,lte=120"`
	Mode     string           `json:"mode" validate:"oneof=monthly quarterly"`
	AssetIDs []string         `json:"assetIds" validate:"required,min=1,dive,required"`
	Fee      *decimal.Decimal `json:"fee" validate:"required"`
}

func decode(t *testing.T, body string) error {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	var dest draftBody
	return DecodeJSONBody(req, &dest)
}

func detailsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok, "details %T", typed.Details())
	return details
}

func TestDecodeJSONBodyAcceptsValidDraft(t *testing.T) {
	err := decode(t, `{"name":"Omar","months":12,"mode":"monthly","assetIds":["a1"],"fee":"150.50"}`)
	require.NoError(t, err)
}

func TestDecodeJSONBodyReportsFieldPaths(t *testing.T) {
	err := decode(t, `{"name":"","months":0,"mode":"weekly","assetIds":[""]}`)
	details := detailsOf(t, err)
	require.Equal(t, "is required", details["name"])
	require.Equal(t, "must be 1 or more", details["months"])
	require.Equal(t, "must be one of monthly, quarterly", details["mode"])
	require.Equal(t, "is required", details["assetIds[0]"])
	require.Equal(t, "is required", details["fee"])
}

func TestDecodeJSONBodyRejectsUnknownField(t *testing.T) {
	err := decode(t, `{"name":"Omar","color":"red"}`)
	details := detailsOf(t, err)
	require.Equal(t, "is not allowed", details["color"])
}

func TestDecodeJSONBodyRejectsEmptyAndTrailing(t *testing.T) {
	err := decode(t, ``)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Contains(t, err.Error(), "request body is required")

	err = decode(t, `{"name":"Omar","months":1,"mode":"monthly","assetIds":["a"],"fee":"1"} {}`)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyRejectsWrongType(t *testing.T) {
	err := decode(t, `{"months":"twelve"}`)
	details := detailsOf(t, err)
	require.Equal(t, "must be int", details["months"])
}

func TestSanitizeStringKeepsRunesWhole(t *testing.T) {
	require.Equal(t, "عمر", SanitizeString("  عمر محمد ", 3))
	require.Equal(t, "Paid", SanitizeString("Pa\x00id\n", 0))
}

func TestQueryString(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/installments?status=%20Overdue%20", nil)
	require.Equal(t, "Overdue", QueryString(req, "status", 32))
	require.Equal(t, "", QueryString(req, "missing", 32))
}
