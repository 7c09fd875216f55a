package controllers

import (
	"net/http"

	"github.com/tiffinworks/commerce-backend/api/responses"
	"github.com/tiffinworks/commerce-backend/api/validators"
	"github.com/tiffinworks/commerce-backend/internal/cart"
	pkgerrors "github.com/tiffinworks/commerce-backend/pkg/errors"
	"github.com/tiffinworks/commerce-backend/pkg/logger"
)

type cartLineRequest struct {
	Day        string `json:"day" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Category   string `json:"category" validate:"required"`
	Type       string `json:"type" validate:"required"`
	TiffinPlan string `json:"tiffin_plan"`
	Qty        int    `json:"qty" validate:"min=0"`
	VariantID  string `json:"variant_id" validate:"required"`
}

type cartSubmitRequest struct {
	Lines               []cartLineRequest `json:"lines" validate:"required,min=1,dive"`
	CustomerAccessToken string            `json:"customer_access_token" validate:"required"`
	Email               string            `json:"email" validate:"required,email"`
}

type cartSubmitResponse struct {
	CartID      string `json:"cart_id"`
	CheckoutURL string `json:"checkout_url"`
}

// CartSubmit assembles a day-grouped selection into a checkout-ready cart.
func CartSubmit(assembler *cart.Assembler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if assembler == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart assembler unavailable"))
			return
		}

		var payload cartSubmitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]cart.LineInput, len(payload.Lines))
		for i, line := range payload.Lines {
			lines[i] = cart.LineInput{
				Day:        line.Day,
				Date:       line.Date,
				Category:   line.Category,
				Type:       line.Type,
				TiffinPlan: line.TiffinPlan,
				Qty:        line.Qty,
				VariantID:  line.VariantID,
			}
		}

		created, err := assembler.Submit(r.Context(), cart.SubmitInput{
			Lines:               lines,
			CustomerAccessToken: payload.CustomerAccessToken,
			Email:               payload.Email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, cartSubmitResponse{
			CartID:      created.ID,
			CheckoutURL: created.CheckoutURL,
		})
	}
}
