package validation

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/billsplit/internal/dto"
	"github.com/ahmetcoskunkizilkaya/billsplit/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validBill() dto.BillRequest {
	return dto.BillRequest{
		Type:         models.BillTypeSimple,
		ShareType:    models.SharePublic,
		Subtotal:     decimal.NewNullDecimal(decimal.RequireFromString("10.00")),
		Total:        decimal.NewNullDecimal(decimal.RequireFromString("10.00")),
		NumberPeople: 1,
		BillItems: []dto.BillItemRequest{
			{Quantity: decimal.NewNullDecimal(decimal.NewFromInt(1))},
		},
		BillParticipants: []dto.BillParticipantRequest{
			{Amount: decimal.NewNullDecimal(decimal.NewFromInt(5))},
		},
	}
}

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *Error
	require.ErrorAs(t, err, &verr)
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestStructValidBill(t *testing.T) {
	req := validBill()
	require.NoError(t, Struct(&req))
}

func TestStructMissingFields(t *testing.T) {
	req := dto.BillRequest{}
	got := fields(t, Struct(&req))

	require.Equal(t, "field required", got["type"])
	require.Equal(t, "field required", got["share_type"])
	require.Equal(t, "field required", got["number_people"])
	require.Equal(t, "field required", got["subtotal"])
	require.Equal(t, "field required", got["total"])
}

func TestStructNestedPaths(t *testing.T) {
	req := validBill()
	bad := "not-an-email"
	req.BillItems[0].UnitPrice = decimal.NewNullDecimal(decimal.NewFromInt(-1))
	req.BillParticipants[0].Email = &bad
	req.BillParticipants = append(req.BillParticipants, dto.BillParticipantRequest{})

	got := fields(t, Struct(&req))
	require.Contains(t, got, "bill_items[0].unit_price")
	require.Equal(t, "value is not a valid email address", got["bill_participants[0].email"])
	require.Equal(t, "field required", got["bill_participants[1].amount"])
}

func TestStructEnumsAndRanges(t *testing.T) {
	req := validBill()
	req.ShareType = 9
	req.TaxPercent = decimal.NewNullDecimal(decimal.NewFromInt(150))

	got := fields(t, Struct(&req))
	require.Equal(t, "must be one of [1 2]", got["share_type"])
	require.Equal(t, "must be less than or equal to 100", got["tax_percent"])
}

func TestStructSignUp(t *testing.T) {
	req := dto.SignUpRequest{UserID: "alice", Password: "short", Email: "alice@example.com", FullName: "Alice"}
	got := fields(t, Struct(&req))
	require.Equal(t, "must be at least 8 characters long", got["password"])

	var verr *Error
	require.ErrorAs(t, Struct(&req), &verr)
	require.Equal(t, []interface{}{map[string]string{"password": "must be at least 8 characters long"}}, verr.Messages())
}
