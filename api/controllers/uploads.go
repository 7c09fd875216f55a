package controllers

import (
	"io"
	"net/http"
	"strings"

	"github.com/tiffinworks/commerce-backend/api/responses"
	"github.com/tiffinworks/commerce-backend/internal/uploads"
	pkgerrors "github.com/tiffinworks/commerce-backend/pkg/errors"
	"github.com/tiffinworks/commerce-backend/pkg/logger"
)

const (
	uploadMemoryLimit = 8 << 20

	// Headroom over the payload cap for multipart framing and the
	// file_id field.
	uploadFormSlack = 64 << 10
)

// UploadFile accepts a multipart form with a "file" field and an optional
// "file_id" field selecting update-in-place, then runs the full pipeline.
func UploadFile(pipeline *uploads.Pipeline, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pipeline == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload pipeline unavailable"))
			return
		}

		if limit := pipeline.MaxBytes(); limit > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, limit+uploadFormSlack)
		}

		if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field is required"))
			return
		}
		defer file.Close()

		payload, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read uploaded file"))
			return
		}

		result, err := pipeline.Run(r.Context(), uploads.Input{
			Filename:       header.Filename,
			MIMEType:       header.Header.Get("Content-Type"),
			Payload:        payload,
			ExistingFileID: strings.TrimSpace(r.FormValue("file_id")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
