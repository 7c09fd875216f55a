package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiffinworks/commerce-backend/pkg/config"
	pkgerrors "github.com/tiffinworks/commerce-backend/pkg/errors"
	"github.com/tiffinworks/commerce-backend/pkg/shopify"
)

type stubCartCreator struct {
	cart     *shopify.Cart
	err      error
	gotInput shopify.CartInput
	calls    int
}

func (s *stubCartCreator) CartCreate(ctx context.Context, input shopify.CartInput) (*shopify.Cart, error) {
	s.gotInput = input
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.cart, nil
}

func newTestAssembler(t *testing.T, creator cartCreator) *Assembler {
	t.Helper()
	a, err := NewAssembler(creator, config.CheckoutConfig{
		MainProductID: "gid://shopify/Product/42",
		Discount:      "10",
	}, nil, nil)
	require.NoError(t, err)
	return a
}

func validInput() SubmitInput {
	return SubmitInput{
		Lines: []LineInput{
			{Day: "Monday", Date: "2026-09-07", Category: "Protein", Type: "main", TiffinPlan: "weekly", Qty: 1, VariantID: "gid://v/1"},
			{Day: "Monday", Date: "2026-09-07", Category: "Sides", Type: "side", TiffinPlan: "weekly", Qty: 2, VariantID: "gid://v/2"},
			{Day: "Tuesday", Date: "2026-09-08", Category: "Veggies", Type: "veggie", TiffinPlan: "weekly", Qty: 1, VariantID: "gid://v/3"},
		},
		CustomerAccessToken: "cat-1",
		Email:               "jo@example.com",
	}
}

func attributeMap(attrs []shopify.CartAttribute) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		out[attr.Key] = attr.Value
	}
	return out
}

func TestSubmitDayCountCountsDistinctDays(t *testing.T) {
	t.Parallel()

	creator := &stubCartCreator{cart: &shopify.Cart{ID: "cart-1", CheckoutURL: "https://x/checkout"}}
	assembler := newTestAssembler(t, creator)

	cart, err := assembler.Submit(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "cart-1", cart.ID)

	attrs := attributeMap(creator.gotInput.Attributes)
	assert.Equal(t, "2", attrs["DayCount"], "3 lines across 2 days")
	assert.Equal(t, "10", attrs["Discount"])
}

func TestSubmitMainLineAttributeShape(t *testing.T) {
	t.Parallel()

	creator := &stubCartCreator{cart: &shopify.Cart{ID: "cart-1"}}
	assembler := newTestAssembler(t, creator)

	_, err := assembler.Submit(context.Background(), validInput())
	require.NoError(t, err)

	main := attributeMap(creator.gotInput.Lines[0].Attributes)
	assert.Equal(t, "protein", main["Category"])
	assert.Equal(t, "2026-09-07", main["_DayDate"])
	assert.Equal(t, "Monday", main["_Day"])
	assert.Equal(t, "main", main["_Type"])
	assert.Equal(t, "weekly", main["_TiffinPlan"])
	assert.Equal(t, "gid://shopify/Product/42", main["__mainprodid"])
	assert.NotContains(t, main, "Day")
	assert.NotContains(t, main, "DayDate")
}

func TestSubmitStandardLineOmitsMainReference(t *testing.T) {
	t.Parallel()

	creator := &stubCartCreator{cart: &shopify.Cart{ID: "cart-1"}}
	assembler := newTestAssembler(t, creator)

	_, err := assembler.Submit(context.Background(), validInput())
	require.NoError(t, err)

	side := attributeMap(creator.gotInput.Lines[1].Attributes)
	assert.Equal(t, "sides", side["Category"])
	assert.Equal(t, "2026-09-07", side["DayDate"])
	assert.Equal(t, "Monday", side["Day"])
	assert.Equal(t, "side", side["Type"])
	assert.Equal(t, "weekly", side["TiffinPlan"])
	assert.NotContains(t, side, "__mainprodid")
	assert.NotContains(t, side, "_Day")
}

func TestSubmitBuyerIdentity(t *testing.T) {
	t.Parallel()

	creator := &stubCartCreator{cart: &shopify.Cart{ID: "cart-1"}}
	assembler := newTestAssembler(t, creator)

	_, err := assembler.Submit(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "cat-1", creator.gotInput.BuyerIdentity.CustomerAccessToken)
	assert.Equal(t, "jo@example.com", creator.gotInput.BuyerIdentity.Email)
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()

	assembler := newTestAssembler(t, &stubCartCreator{cart: &shopify.Cart{ID: "x"}})

	cases := []struct {
		name   string
		mutate func(*SubmitInput)
	}{
		{"no lines", func(in *SubmitInput) { in.Lines = nil }},
		{"no access token", func(in *SubmitInput) { in.CustomerAccessToken = " " }},
		{"no email", func(in *SubmitInput) { in.Email = "" }},
		{"missing variant", func(in *SubmitInput) { in.Lines[0].VariantID = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := assembler.Submit(context.Background(), input)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
}

func TestSubmitSurfacesBackendError(t *testing.T) {
	t.Parallel()

	backendErr := pkgerrors.New(pkgerrors.CodeMissingData, "no cart returned")
	assembler := newTestAssembler(t, &stubCartCreator{err: backendErr})

	_, err := assembler.Submit(context.Background(), validInput())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeMissingData, pkgerrors.As(err).Code())
}

func TestTrySubmitSwallowsFailure(t *testing.T) {
	t.Parallel()

	assembler := newTestAssembler(t, &stubCartCreator{err: pkgerrors.New(pkgerrors.CodeDependency, "down")})

	cart := assembler.TrySubmit(context.Background(), validInput())
	assert.Nil(t, cart)
}

func TestTrySubmitReturnsCart(t *testing.T) {
	t.Parallel()

	assembler := newTestAssembler(t, &stubCartCreator{cart: &shopify.Cart{ID: "cart-9"}})

	cart := assembler.TrySubmit(context.Background(), validInput())
	require.NotNil(t, cart)
	assert.Equal(t, "cart-9", cart.ID)
}

func TestSubmitDefaultsZeroQuantityToOne(t *testing.T) {
	t.Parallel()

	creator := &stubCartCreator{cart: &shopify.Cart{ID: "cart-1"}}
	assembler := newTestAssembler(t, creator)

	input := validInput()
	input.Lines[0].Qty = 0
	_, err := assembler.Submit(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, creator.gotInput.Lines[0].Quantity)
}
