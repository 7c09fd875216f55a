package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tiffinworks/commerce-backend/api/responses"
	"github.com/tiffinworks/commerce-backend/api/validators"
	"github.com/tiffinworks/commerce-backend/internal/catalog"
	"github.com/tiffinworks/commerce-backend/internal/pricing"
	pkgerrors "github.com/tiffinworks/commerce-backend/pkg/errors"
	"github.com/tiffinworks/commerce-backend/pkg/logger"
)

type dayMenuResponse struct {
	Day    string                  `json:"day"`
	Groups []catalog.CategoryGroup `json:"groups"`
}

type menuDayRequest struct {
	Groups []catalog.CategoryGroup `json:"groups" validate:"required"`
}

type menuBulkRequest struct {
	Days       []catalog.DayEntry `json:"days" validate:"required,min=1"`
	CurrentDay string             `json:"current_day"`
}

func dayParam(r *http.Request) (string, error) {
	day := strings.TrimSpace(chi.URLParam(r, "day"))
	if !catalog.IsWeekday(day) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%q is not a weekday", day))
	}
	return day, nil
}

func validateGroups(groups []catalog.CategoryGroup) error {
	for _, group := range groups {
		if !catalog.IsValidCategory(group.Key) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown category %q", group.Key))
		}
	}
	return nil
}

// MenuGetDay returns one day's catalog with discount pricing applied.
func MenuGetDay(store *catalog.Store, engine *pricing.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := dayParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groups := engine.ApplyAll(store.CatalogFor(day))
		responses.WriteSuccess(w, dayMenuResponse{Day: day, Groups: groups})
	}
}

// MenuGetCurrent returns the current day's catalog with pricing applied. An
// unset current day yields an empty menu rather than an error.
func MenuGetCurrent(store *catalog.Store, engine *pricing.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day := store.CurrentDay()
		groups := engine.ApplyAll(store.CurrentDayCatalog())
		responses.WriteSuccess(w, dayMenuResponse{Day: day, Groups: groups})
	}
}

// MenuPutDay atomically replaces one day's catalog.
func MenuPutDay(store *catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := dayParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload menuDayRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validateGroups(payload.Groups); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.UpsertDay(day, payload.Groups)
		responses.WriteSuccess(w, dayMenuResponse{Day: day, Groups: store.CatalogFor(day)})
	}
}

// MenuPutBulk replaces a batch of days in one notification and optionally
// moves the current-day pointer.
func MenuPutBulk(store *catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload menuBulkRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		for _, entry := range payload.Days {
			if !catalog.IsWeekday(entry.Day) {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%q is not a weekday", entry.Day)))
				return
			}
			if err := validateGroups(entry.Groups); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if payload.CurrentDay != "" && !catalog.IsWeekday(payload.CurrentDay) {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%q is not a weekday", payload.CurrentDay)))
			return
		}

		store.UpsertMany(payload.Days)
		if payload.CurrentDay != "" {
			store.SetCurrentDay(payload.CurrentDay)
		}

		responses.WriteSuccess(w, map[string]any{
			"days":        len(payload.Days),
			"current_day": store.CurrentDay(),
		})
	}
}

// MenuDeleteDay clears one day. Clearing the current day also unsets the
// current-day pointer.
func MenuDeleteDay(store *catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := dayParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.ClearDay(day)
		responses.WriteSuccess(w, map[string]string{"status": "cleared", "day": day})
	}
}

// MenuDeleteAll clears every day and the current-day pointer.
func MenuDeleteAll(store *catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.ClearAll()
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}
