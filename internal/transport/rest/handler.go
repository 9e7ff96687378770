// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	producterrors "github.com/shoplite/catalog/internal/errors"
	"github.com/shoplite/catalog/internal/service"
	"github.com/shoplite/catalog/pkg/web"
)

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of ProductAPI with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	validate := validator.New()
	// Report violations under the wire field names, not Go struct field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{
		service:  service,
		validate: validate,
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Delete("/", h.DeleteByID)
			r.Put("/", h.Update)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// productResponse is the envelope for single-product mutations.
type productResponse struct {
	Message string              `json:"message"`
	Product *service.ProductDto `json:"product"`
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "ItemName", found.ItemName)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAll retrieves the list of all products, newest first.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "Received request to find all products")
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Create handles the creation of a new product, with an optional image file.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)

	dto, blob, ok := decodeCreatePayload(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create product", "product", dto)

	if violations := h.validatePayload(dto, dto.SellPrice); len(violations) > 0 {
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", violations)
		web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"errors": violations})
		return
	}

	newProduct, err := h.service.Create(r.Context(), dto, blob)
	if err != nil {
		h.respondMutationError(w, r, mLogger, err, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "ItemName", newProduct.ItemName)
	web.RespondJSON(w, mLogger, http.StatusCreated, productResponse{
		Message: "Product created successfully",
		Product: newProduct,
	})
}

// Update handles modification of an existing product, with an optional replacement image.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to update product", "ID", id)

	dto, blob, ok := decodeUpdatePayload(w, r, mLogger)
	if !ok {
		return
	}

	if violations := h.validatePayload(dto, dto.SellPrice); len(violations) > 0 {
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", violations)
		web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"errors": violations})
		return
	}

	updated, err := h.service.Update(r.Context(), id, dto, blob)
	if err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		h.respondMutationError(w, r, mLogger, err, fmt.Sprintf("Failed to update product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "ItemName", updated.ItemName)
	web.RespondJSON(w, mLogger, http.StatusOK, productResponse{
		Message: "Product updated successfully",
		Product: updated,
	})
}

// DeleteByID deletes a product by its ID and returns the removed record.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	removed, err := h.service.DeleteByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for deletion", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondJSON(w, mLogger, http.StatusOK, productResponse{
		Message: "Product deleted successfully",
		Product: removed,
	})
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// respondMutationError maps create/update failures that are not simple
// not-found cases to their HTTP shape.
func (h *Handler) respondMutationError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, producterrors.ErrAssetUpload):
		mLogger.ErrorContext(r.Context(), "Image upload failed", "error", err)
		web.RespondErrorDetails(w, mLogger, http.StatusBadRequest, "Image upload failed", err.Error())
	case errors.Is(err, producterrors.ErrBarcodeConflict):
		mLogger.ErrorContext(r.Context(), "Barcode generation kept colliding", "error", err)
		web.RespondError(w, mLogger, http.StatusConflict, "Could not assign a unique barcode")
	default:
		mLogger.ErrorContext(r.Context(), fallback, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fallback)
	}
}

// validatePayload runs the declarative rules plus the price checks the rule
// set cannot express, and returns all violations at once.
func (h *Handler) validatePayload(dto any, sellPrice *decimal.Decimal) []fieldViolation {
	var violations []fieldViolation
	if err := h.validate.Struct(dto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, fieldErr := range validationErrors {
				violations = append(violations, fieldViolation{
					Field:   fieldErr.Field(),
					Message: "failed on rule: " + fieldErr.Tag(),
				})
			}
		}
	}
	if sellPrice != nil && sellPrice.IsNegative() {
		violations = append(violations, fieldViolation{
			Field:   "sellPrice",
			Message: "must be non-negative",
		})
	}
	return violations
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
