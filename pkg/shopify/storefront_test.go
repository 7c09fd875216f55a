package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiffinworks/commerce-backend/pkg/config"
	pkgerrors "github.com/tiffinworks/commerce-backend/pkg/errors"
)

func newTestStorefront(t *testing.T, handler http.HandlerFunc) (*StorefrontClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewStorefrontClient(
		config.ShopifyConfig{Domain: "shop.example.com", APIVersion: "2024-07", StorefrontToken: "public-token"},
		nil,
		WithEndpoint(server.URL),
		WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return client, server
}

func TestMultipassRedeemSuccess(t *testing.T) {
	var gotToken string
	client, _ := newTestStorefront(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "public-token", r.Header.Get("X-Shopify-Storefront-Access-Token"))

		var req struct {
			Variables map[string]string `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotToken = req.Variables["multipassToken"]

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"customerAccessTokenCreateWithMultipass": map[string]any{
					"customerAccessToken": map[string]any{
						"accessToken": "cat-123",
						"expiresAt":   "2026-09-02T00:00:00Z",
					},
					"customerUserErrors": []any{},
				},
			},
		})
	})

	session, err := client.CustomerAccessTokenCreateWithMultipass(context.Background(), "opaque-token")
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", gotToken)
	assert.Equal(t, "cat-123", session.AccessToken)
	assert.Equal(t, 2026, session.ExpiresAt.Year())
}

func TestMultipassRedeemJoinsUserErrors(t *testing.T) {
	client, _ := newTestStorefront(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"customerAccessTokenCreateWithMultipass": map[string]any{
					"customerAccessToken": nil,
					"customerUserErrors": []map[string]any{
						{"field": []string{"multipassToken"}, "message": "token expired"},
						{"field": []string{"multipassToken"}, "message": "signature invalid"},
					},
				},
			},
		})
	})

	_, err := client.CustomerAccessTokenCreateWithMultipass(context.Background(), "stale")
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "token expired; signature invalid", typed.Message())
}

func TestMultipassRedeemMissingToken(t *testing.T) {
	client, _ := newTestStorefront(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"customerAccessTokenCreateWithMultipass": map[string]any{
					"customerAccessToken": nil,
					"customerUserErrors":  []any{},
				},
			},
		})
	})

	_, err := client.CustomerAccessTokenCreateWithMultipass(context.Background(), "token")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeMissingData, pkgerrors.As(err).Code())
}

func TestCartCreateSuccess(t *testing.T) {
	var gotInput CartInput
	client, _ := newTestStorefront(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables struct {
				Input CartInput `json:"input"`
			} `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotInput = req.Variables.Input

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"cartCreate": map[string]any{
					"cart": map[string]any{
						"id":          "gid://shopify/Cart/1",
						"checkoutUrl": "https://shop.example.com/checkout/1",
					},
					"userErrors": []any{},
				},
			},
		})
	})

	input := CartInput{
		Lines: []CartLineInput{{
			MerchandiseID: "gid://shopify/ProductVariant/9",
			Quantity:      2,
			Attributes:    []CartAttribute{{Key: "Category", Value: "protein"}},
		}},
		Attributes:    []CartAttribute{{Key: "DayCount", Value: "1"}},
		BuyerIdentity: CartBuyerIdentity{CustomerAccessToken: "cat-123", Email: "jo@example.com"},
	}

	cart, err := client.CartCreate(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Cart/1", cart.ID)
	assert.Equal(t, "https://shop.example.com/checkout/1", cart.CheckoutURL)
	assert.Equal(t, input.Lines, gotInput.Lines)
	assert.Equal(t, "cat-123", gotInput.BuyerIdentity.CustomerAccessToken)
}

func TestCartCreateNoCart(t *testing.T) {
	client, _ := newTestStorefront(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"cartCreate": map[string]any{"cart": nil, "userErrors": []any{}},
			},
		})
	})

	_, err := client.CartCreate(context.Background(), CartInput{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeMissingData, pkgerrors.As(err).Code())
}

func TestGraphQLTopLevelErrors(t *testing.T) {
	client, _ := newTestStorefront(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{{"message": "Throttled"}},
		})
	})

	_, err := client.CartCreate(context.Background(), CartInput{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}

func TestGraphQLHTTPFailure(t *testing.T) {
	client, _ := newTestStorefront(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := client.CartCreate(context.Background(), CartInput{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}
