package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shoplite/catalog/internal/assets"
	"github.com/shoplite/catalog/internal/service"
	"github.com/shoplite/catalog/pkg/web"
)

// maxUploadBytes caps in-memory buffering of multipart bodies.
const maxUploadBytes = 10 << 20

// imageField is the multipart form field carrying the optional image file.
const imageField = "image"

// fieldViolation is one entry of a validation error response.
type fieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// decodeCreatePayload reads a create request body, JSON or multipart form,
// returning the DTO and the optional image blob. On a malformed body it writes
// the error response itself and returns ok=false.
func decodeCreatePayload(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (service.ProductCreateDto, *assets.Blob, bool) {
	var dto service.ProductCreateDto

	if !isMultipart(r) {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			logger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
			web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
			return dto, nil, false
		}
		dto.ItemName = strings.TrimSpace(dto.ItemName)
		return dto, nil, true
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.ErrorContext(r.Context(), "Error parsing multipart form", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return dto, nil, false
	}

	dto.ItemName = strings.TrimSpace(r.FormValue("itemName"))
	dto.Type = r.FormValue("type")
	dto.PrimaryUnit = r.FormValue("primaryUnit")
	dto.CustomUnit = r.FormValue("customUnit")
	dto.GSTEnabled = parseFormBool(r.FormValue("gstEnabled"))
	dto.SellPrice = parseFormDecimal(r.FormValue("sellPrice"))

	blob, ok := formImage(w, r, logger)
	if !ok {
		return dto, nil, false
	}
	return dto, blob, true
}

// decodeUpdatePayload reads an update request body, same shape as create.
func decodeUpdatePayload(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (service.ProductUpdateDto, *assets.Blob, bool) {
	var dto service.ProductUpdateDto

	if !isMultipart(r) {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			logger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
			web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
			return dto, nil, false
		}
		dto.ItemName = strings.TrimSpace(dto.ItemName)
		return dto, nil, true
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.ErrorContext(r.Context(), "Error parsing multipart form", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return dto, nil, false
	}

	dto.ItemName = strings.TrimSpace(r.FormValue("itemName"))
	dto.Type = r.FormValue("type")
	dto.PrimaryUnit = r.FormValue("primaryUnit")
	dto.CustomUnit = r.FormValue("customUnit")
	dto.GSTEnabled = parseFormBool(r.FormValue("gstEnabled"))
	dto.SellPrice = parseFormDecimal(r.FormValue("sellPrice"))

	blob, ok := formImage(w, r, logger)
	if !ok {
		return dto, nil, false
	}
	return dto, blob, true
}

// formImage extracts the optional image file from a parsed multipart form.
func formImage(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*assets.Blob, bool) {
	file, header, err := r.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, true
		}
		logger.ErrorContext(r.Context(), "Error reading image file from form", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid image file")
		return nil, false
	}
	return &assets.Blob{
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}, true
}

// isMultipart reports whether the request body is a multipart form.
func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "multipart/form-data"
}

// parseFormDecimal converts a form value to a decimal.
// Empty or malformed values map to nil and are caught by validation.
func parseFormDecimal(value string) *decimal.Decimal {
	if value == "" {
		return nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil
	}
	return &d
}

// parseFormBool converts a form value to a bool, treating anything
// unparseable as false.
func parseFormBool(value string) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return b
}
