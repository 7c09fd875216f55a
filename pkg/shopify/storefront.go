package shopify

import (
	"context"
	"time"

	"github.com/tiffinworks/commerce-backend/pkg/config"
	pkgerrors "github.com/tiffinworks/commerce-backend/pkg/errors"
	"github.com/tiffinworks/commerce-backend/pkg/logger"
)

const storefrontTokenHeader = "X-Shopify-Storefront-Access-Token"

// StorefrontClient talks to the public storefront GraphQL API.
type StorefrontClient struct {
	gql *graphQLClient
}

// NewStorefrontClient wires the storefront endpoint from config.
func NewStorefrontClient(cfg config.ShopifyConfig, logg *logger.Logger, opts ...Option) (*StorefrontClient, error) {
	gql, err := newGraphQLClient(cfg.StorefrontURL(), storefrontTokenHeader, cfg.StorefrontToken, logg, opts...)
	if err != nil {
		return nil, err
	}
	return &StorefrontClient{gql: gql}, nil
}

// CustomerSession is the backend-issued credential for cart operations.
type CustomerSession struct {
	AccessToken string
	ExpiresAt   time.Time
}

const customerAccessTokenCreateQuery = `mutation customerAccessTokenCreateWithMultipass($multipassToken: String!) {
  customerAccessTokenCreateWithMultipass(multipassToken: $multipassToken) {
    customerAccessToken {
      accessToken
      expiresAt
    }
    customerUserErrors {
      field
      message
    }
  }
}`

// CustomerAccessTokenCreateWithMultipass redeems a multipass token for a
// customer access token. Validation errors are aggregated into one message;
// a response with neither errors nor a token fails distinctly.
func (c *StorefrontClient) CustomerAccessTokenCreateWithMultipass(ctx context.Context, multipassToken string) (*CustomerSession, error) {
	var data struct {
		Result struct {
			CustomerAccessToken *struct {
				AccessToken string `json:"accessToken"`
				ExpiresAt   string `json:"expiresAt"`
			} `json:"customerAccessToken"`
			CustomerUserErrors []UserError `json:"customerUserErrors"`
		} `json:"customerAccessTokenCreateWithMultipass"`
	}

	err := c.gql.execute(ctx, "customer_access_token_create", customerAccessTokenCreateQuery,
		map[string]any{"multipassToken": multipassToken}, &data)
	if err != nil {
		return nil, err
	}

	if len(data.Result.CustomerUserErrors) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, JoinUserErrors(data.Result.CustomerUserErrors)).
			WithDetails(data.Result.CustomerUserErrors)
	}

	token := data.Result.CustomerAccessToken
	if token == nil || token.AccessToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeMissingData, "no customer access token returned")
	}

	expiresAt, err := time.Parse(time.RFC3339, token.ExpiresAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse access token expiry")
	}

	return &CustomerSession{AccessToken: token.AccessToken, ExpiresAt: expiresAt}, nil
}

// CartAttribute is a key/value attribute attached to a cart or a line.
type CartAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CartLineInput is one merchandise line of a cart creation request.
type CartLineInput struct {
	MerchandiseID string          `json:"merchandiseId"`
	Quantity      int             `json:"quantity"`
	Attributes    []CartAttribute `json:"attributes,omitempty"`
}

// CartBuyerIdentity associates the cart with a redeemed customer session.
type CartBuyerIdentity struct {
	CustomerAccessToken string `json:"customerAccessToken,omitempty"`
	Email               string `json:"email,omitempty"`
}

// CartInput is the full cartCreate payload.
type CartInput struct {
	Lines         []CartLineInput   `json:"lines"`
	Attributes    []CartAttribute   `json:"attributes,omitempty"`
	BuyerIdentity CartBuyerIdentity `json:"buyerIdentity"`
}

// Cart is the created checkout-ready cart.
type Cart struct {
	ID          string
	CheckoutURL string
}

const cartCreateQuery = `mutation cartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart {
      id
      checkoutUrl
    }
    userErrors {
      field
      message
    }
  }
}`

// CartCreate submits a single cart creation mutation.
func (c *StorefrontClient) CartCreate(ctx context.Context, input CartInput) (*Cart, error) {
	var data struct {
		Result struct {
			Cart *struct {
				ID          string `json:"id"`
				CheckoutURL string `json:"checkoutUrl"`
			} `json:"cart"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"cartCreate"`
	}

	err := c.gql.execute(ctx, "cart_create", cartCreateQuery, map[string]any{"input": input}, &data)
	if err != nil {
		return nil, err
	}

	if len(data.Result.UserErrors) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, JoinUserErrors(data.Result.UserErrors)).
			WithDetails(data.Result.UserErrors)
	}

	if data.Result.Cart == nil || data.Result.Cart.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeMissingData, "no cart returned")
	}

	return &Cart{ID: data.Result.Cart.ID, CheckoutURL: data.Result.Cart.CheckoutURL}, nil
}
