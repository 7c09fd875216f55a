package controllers

import (
	"net/http"

	"github.com/tiffinworks/commerce-backend/api/responses"
	"github.com/tiffinworks/commerce-backend/api/validators"
	"github.com/tiffinworks/commerce-backend/internal/pricing"
	"github.com/tiffinworks/commerce-backend/pkg/logger"
)

type thresholdEntry struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value" validate:"required"`
}

type thresholdsReplaceRequest struct {
	Entries []thresholdEntry `json:"entries" validate:"required,dive"`
}

// PricingReplaceThresholds swaps the whole raw threshold feed. Entries that
// fail to parse are retained in the feed but never price anything.
func PricingReplaceThresholds(engine *pricing.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload thresholdsReplaceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries := make([]pricing.Entry, len(payload.Entries))
		for i, entry := range payload.Entries {
			entries[i] = pricing.Entry{Key: entry.Key, Value: entry.Value}
		}
		engine.SetAll(entries)

		responses.WriteSuccess(w, map[string]int{"entries": len(entries)})
	}
}

// PricingUpsertThreshold replaces or appends a single feed entry by key.
func PricingUpsertThreshold(engine *pricing.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload thresholdEntry
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		engine.UpsertOne(pricing.Entry{Key: payload.Key, Value: payload.Value})
		responses.WriteSuccess(w, map[string]string{"key": payload.Key})
	}
}
