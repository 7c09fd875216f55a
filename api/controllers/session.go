package controllers

import (
	"net/http"

	"github.com/tiffinworks/commerce-backend/api/responses"
	"github.com/tiffinworks/commerce-backend/api/validators"
	"github.com/tiffinworks/commerce-backend/internal/session"
	pkgerrors "github.com/tiffinworks/commerce-backend/pkg/errors"
	"github.com/tiffinworks/commerce-backend/pkg/logger"
)

type sessionExchangeRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ReturnTo  string `json:"return_to"`
}

// SessionExchange converts a verified identity into a customer access token.
func SessionExchange(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		var payload sessionExchangeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerSession, err := svc.Redeem(r.Context(), session.Identity{
			Email:     payload.Email,
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			ReturnTo:  payload.ReturnTo,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, customerSession)
	}
}
