package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/tiffinworks/commerce-backend/pkg/errors"
	"github.com/tiffinworks/commerce-backend/pkg/multipass"
	"github.com/tiffinworks/commerce-backend/pkg/shopify"
)

type tokenEncoder interface {
	Encode(customer multipass.Customer) (string, error)
}

type tokenRedeemer interface {
	CustomerAccessTokenCreateWithMultipass(ctx context.Context, multipassToken string) (*shopify.CustomerSession, error)
}

// Identity is the verified customer identity handed off by the auth layer.
type Identity struct {
	Email     string
	FirstName string
	LastName  string
	ReturnTo  string
}

// CustomerSession is the redeemed commerce-backend credential.
type CustomerSession struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Service converts a verified identity into a customer access token via the
// multipass hand-off. Redemption is not retried here; callers decide.
type Service interface {
	Redeem(ctx context.Context, identity Identity) (*CustomerSession, error)
}

type service struct {
	encoder    tokenEncoder
	storefront tokenRedeemer
}

// NewService wires the exchange from an encoder and a storefront client.
func NewService(encoder tokenEncoder, storefront tokenRedeemer) (Service, error) {
	if encoder == nil {
		return nil, fmt.Errorf("multipass encoder required")
	}
	if storefront == nil {
		return nil, fmt.Errorf("storefront client required")
	}
	return &service{encoder: encoder, storefront: storefront}, nil
}

func (s *service) Redeem(ctx context.Context, identity Identity) (*CustomerSession, error) {
	if strings.TrimSpace(identity.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	token, err := s.encoder.Encode(multipass.Customer{
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		ReturnTo:  identity.ReturnTo,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode multipass token")
	}

	redeemed, err := s.storefront.CustomerAccessTokenCreateWithMultipass(ctx, token)
	if err != nil {
		return nil, err
	}

	return &CustomerSession{
		AccessToken: redeemed.AccessToken,
		ExpiresAt:   redeemed.ExpiresAt,
	}, nil
}
