package cart

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tiffinworks/commerce-backend/pkg/config"
	pkgerrors "github.com/tiffinworks/commerce-backend/pkg/errors"
	"github.com/tiffinworks/commerce-backend/pkg/logger"
	"github.com/tiffinworks/commerce-backend/pkg/metrics"
	"github.com/tiffinworks/commerce-backend/pkg/shopify"
)

// LineTypeMain marks the line that carries the main-product reference.
const LineTypeMain = "main"

const (
	attrCategory   = "Category"
	attrDayCount   = "DayCount"
	attrDiscount   = "Discount"
	mainProductKey = "__mainprodid"
)

type cartCreator interface {
	CartCreate(ctx context.Context, input shopify.CartInput) (*shopify.Cart, error)
}

// LineInput is one selected catalog item heading into the cart.
type LineInput struct {
	Day        string `json:"day"`
	Date       string `json:"date"`
	Category   string `json:"category"`
	Type       string `json:"type"`
	TiffinPlan string `json:"tiffin_plan"`
	Qty        int    `json:"qty"`
	VariantID  string `json:"variant_id"`
}

// SubmitInput is a full day-grouped selection plus buyer identity.
type SubmitInput struct {
	Lines               []LineInput
	CustomerAccessToken string
	Email               string
}

// Assembler converts selections into checkout-ready cart creation requests.
type Assembler struct {
	storefront    cartCreator
	mainProductID string
	discount      string
	logger        *logger.Logger
	metrics       *metrics.CommerceMetrics
}

// NewAssembler wires an assembler from the storefront client and checkout config.
func NewAssembler(storefront cartCreator, cfg config.CheckoutConfig, logg *logger.Logger, m *metrics.CommerceMetrics) (*Assembler, error) {
	if storefront == nil {
		return nil, fmt.Errorf("storefront client required")
	}
	if strings.TrimSpace(cfg.MainProductID) == "" {
		return nil, fmt.Errorf("main product id required")
	}
	discount := strings.TrimSpace(cfg.Discount)
	if discount == "" {
		discount = "10"
	}
	return &Assembler{
		storefront:    storefront,
		mainProductID: cfg.MainProductID,
		discount:      discount,
		logger:        logg,
		metrics:       m,
	}, nil
}

// Submit assembles and sends one cart creation mutation, returning the cart
// or the underlying failure.
func (a *Assembler) Submit(ctx context.Context, input SubmitInput) (*shopify.Cart, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart must contain at least one line")
	}
	if strings.TrimSpace(input.CustomerAccessToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer access token is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer email is required")
	}

	lines := make([]shopify.CartLineInput, 0, len(input.Lines))
	for _, item := range input.Lines {
		if strings.TrimSpace(item.VariantID) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required on every line")
		}
		lines = append(lines, a.buildLine(item))
	}

	request := shopify.CartInput{
		Lines: lines,
		Attributes: []shopify.CartAttribute{
			{Key: attrDayCount, Value: strconv.Itoa(distinctDays(input.Lines))},
			{Key: attrDiscount, Value: a.discount},
		},
		BuyerIdentity: shopify.CartBuyerIdentity{
			CustomerAccessToken: input.CustomerAccessToken,
			Email:               input.Email,
		},
	}

	start := time.Now()
	cart, err := a.storefront.CartCreate(ctx, request)
	a.metrics.ObserveDuration("cart_create", time.Since(start))
	if err != nil {
		a.metrics.IncFailure("cart_create")
		return nil, err
	}
	a.metrics.IncSuccess("cart_create")
	return cart, nil
}

// TrySubmit keeps the degraded contract some callers rely on: failures are
// logged and collapse into an absent cart.
func (a *Assembler) TrySubmit(ctx context.Context, input SubmitInput) *shopify.Cart {
	cart, err := a.Submit(ctx, input)
	if err != nil {
		if a.logger != nil {
			a.logger.Error(ctx, "cart submission failed", err)
		}
		return nil
	}
	return cart
}

// buildLine selects the attribute template by line type at construction time.
func (a *Assembler) buildLine(item LineInput) shopify.CartLineInput {
	qty := item.Qty
	if qty <= 0 {
		qty = 1
	}
	line := shopify.CartLineInput{
		MerchandiseID: item.VariantID,
		Quantity:      qty,
	}
	if item.Type == LineTypeMain {
		line.Attributes = newMainAttributes(item, a.mainProductID)
	} else {
		line.Attributes = newStandardAttributes(item)
	}
	return line
}

// newMainAttributes carries the underscore-prefixed keys plus the fixed
// main-product reference. The key shapes are the wire protocol; the leading
// underscores are deliberate and must not be normalized.
func newMainAttributes(item LineInput, mainProductID string) []shopify.CartAttribute {
	return []shopify.CartAttribute{
		{Key: attrCategory, Value: strings.ToLower(item.Category)},
		{Key: "_DayDate", Value: item.Date},
		{Key: "_Day", Value: item.Day},
		{Key: "_Type", Value: item.Type},
		{Key: "_TiffinPlan", Value: item.TiffinPlan},
		{Key: mainProductKey, Value: mainProductID},
	}
}

func newStandardAttributes(item LineInput) []shopify.CartAttribute {
	return []shopify.CartAttribute{
		{Key: attrCategory, Value: strings.ToLower(item.Category)},
		{Key: "DayDate", Value: item.Date},
		{Key: "Day", Value: item.Day},
		{Key: "Type", Value: item.Type},
		{Key: "TiffinPlan", Value: item.TiffinPlan},
	}
}

func distinctDays(lines []LineInput) int {
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		seen[line.Day] = struct{}{}
	}
	return len(seen)
}
