// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shoplite/catalog/internal/assets"
	perrors "github.com/shoplite/catalog/internal/errors"
	"github.com/shoplite/catalog/internal/store"
)

// imageFolder namespaces product images inside the asset host.
const imageFolder = "products"

// barcodeAttempts bounds how often a fresh barcode is drawn after a collision.
const barcodeAttempts = 3

// gstPercentage applies whenever GST is enabled on a product.
const gstPercentage = 5

var gstRate = decimal.New(5, -2) // 0.05

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// FindAll returns all products, newest first.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// Create adds a new product, uploading the image first when one is supplied.
	// Returns ErrAssetUpload if the upload fails (no product is persisted) and
	// ErrBarcodeConflict if barcode generation keeps colliding.
	Create(ctx context.Context, product ProductCreateDto, image *assets.Blob) (*ProductDto, error)

	// Update modifies an existing product and recomputes its derived fields.
	// A supplied image replaces the existing asset; the old asset's removal is
	// best-effort. Returns ErrProductNotFound if no product exists with the
	// given ID and ErrAssetUpload if the new image cannot be stored, in which
	// case the record is left unmodified.
	Update(ctx context.Context, id uuid.UUID, product ProductUpdateDto, image *assets.Blob) (*ProductDto, error)

	// DeleteByID removes a product and, best-effort, its image asset.
	// Returns the removed record, or ErrProductNotFound.
	DeleteByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
	host       assets.AssetHost
	logger     *slog.Logger
}

// NewService creates a new instance of ProductService with the provided
// repository and asset host.
func NewService(repo store.ProductStore, host assets.AssetHost, logger *slog.Logger) *Service {
	return &Service{
		repository: repo,
		host:       host,
		logger:     logger.With("component", "service"),
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	ItemName    string           `json:"itemName"    validate:"required"`
	SellPrice   *decimal.Decimal `json:"sellPrice"   validate:"required"`
	Type        string           `json:"type"        validate:"required,oneof=Veg Non-Veg Beverage"`
	PrimaryUnit string           `json:"primaryUnit" validate:"omitempty,oneof=piece kg gram"`
	CustomUnit  string           `json:"customUnit"`
	GSTEnabled  bool             `json:"gstEnabled"`
}

// ProductUpdateDto represents the data transfer object for updating a product.
// ItemName may be omitted, in which case the stored name is kept.
type ProductUpdateDto struct {
	ItemName    string           `json:"itemName"`
	SellPrice   *decimal.Decimal `json:"sellPrice"   validate:"required"`
	Type        string           `json:"type"        validate:"required,oneof=Veg Non-Veg Beverage"`
	PrimaryUnit string           `json:"primaryUnit" validate:"omitempty,oneof=piece kg gram"`
	CustomUnit  string           `json:"customUnit"`
	GSTEnabled  bool             `json:"gstEnabled"`
}

// ProductDto represents the data transfer object for a product.
// GSTPercentage, GSTAmount and TotalPrice are derived from SellPrice and
// GSTEnabled and are never settable by callers.
type ProductDto struct {
	ID            string          `json:"id"`
	ItemName      string          `json:"itemName"`
	SellPrice     decimal.Decimal `json:"sellPrice"`
	Type          string          `json:"type"`
	PrimaryUnit   string          `json:"primaryUnit,omitempty"`
	CustomUnit    string          `json:"customUnit,omitempty"`
	GSTEnabled    bool            `json:"gstEnabled"`
	GSTPercentage int32           `json:"gstPercentage"`
	GSTAmount     decimal.Decimal `json:"gstAmount"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Barcode       string          `json:"barcode"`
	Image         string          `json:"image,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}

	return toDto(product), nil
}

// FindAll retrieves all products, newest first, and returns them as ProductDTOs.
// Returns an empty slice if no products exist or error if the retrieval fails.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))

	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}

	return productDTOs, nil
}

// Create creates a new product and returns it as a ProductDto.
// When an image is supplied it is uploaded before anything is persisted, so an
// upload failure leaves no partial product behind.
func (s *Service) Create(ctx context.Context, product ProductCreateDto, image *assets.Blob) (*ProductDto, error) {
	var asset *assets.Asset
	if image != nil {
		a, err := s.host.Upload(ctx, *image, imageFolder)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", perrors.ErrAssetUpload, err)
		}
		asset = a
	}

	percentage, amount, total := deriveTax(*product.SellPrice, product.GSTEnabled)
	record := store.NewProduct{
		ItemName:      strings.TrimSpace(product.ItemName),
		SellPrice:     *product.SellPrice,
		Category:      product.Type,
		PrimaryUnit:   product.PrimaryUnit,
		CustomUnit:    product.CustomUnit,
		GSTEnabled:    product.GSTEnabled,
		GSTPercentage: percentage,
		GSTAmount:     amount,
		TotalPrice:    total,
	}
	if asset != nil {
		record.ImageID = asset.ID
		record.ImageURL = asset.URL
	}

	// Barcodes are drawn from a large space; a collision means another draw,
	// bounded so a broken store cannot loop forever.
	var lastErr error
	for range barcodeAttempts {
		record.Barcode = newBarcode()
		created, err := s.repository.Create(ctx, record)
		if err == nil {
			return toDto(created), nil
		}
		lastErr = err
		if !errors.Is(err, perrors.ErrBarcodeConflict) {
			break
		}
	}

	s.discardAsset(ctx, asset)
	return nil, fmt.Errorf("failed to create product: %w", lastErr)
}

// Update modifies an existing product's details and returns the updated product as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) Update(ctx context.Context, id uuid.UUID, product ProductUpdateDto, image *assets.Blob) (*ProductDto, error) {
	existing, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}

	name := strings.TrimSpace(product.ItemName)
	if name == "" {
		name = existing.ItemName
	}

	imageID, imageURL := existing.ImageID, existing.ImageURL
	if image != nil {
		if existing.ImageID != "" {
			// Removal of the replaced asset is best-effort; the record update
			// proceeds regardless.
			if err := s.host.Delete(ctx, existing.ImageID); err != nil {
				s.logger.WarnContext(ctx, "failed to delete replaced image asset",
					"product_id", id, "asset_id", existing.ImageID, "error", err)
			}
		}
		a, err := s.host.Upload(ctx, *image, imageFolder)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", perrors.ErrAssetUpload, err)
		}
		imageID, imageURL = a.ID, a.URL
	}

	percentage, amount, total := deriveTax(*product.SellPrice, product.GSTEnabled)
	updated, err := s.repository.Update(ctx, store.Product{
		ID:            id,
		ItemName:      name,
		SellPrice:     *product.SellPrice,
		Category:      product.Type,
		PrimaryUnit:   product.PrimaryUnit,
		CustomUnit:    product.CustomUnit,
		GSTEnabled:    product.GSTEnabled,
		GSTPercentage: percentage,
		GSTAmount:     amount,
		TotalPrice:    total,
		Barcode:       existing.Barcode,
		ImageID:       imageID,
		ImageURL:      imageURL,
		CreatedAt:     existing.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}

	return toDto(updated), nil
}

// DeleteByID deletes a product by its ID and returns the removed record.
// The image asset, if any, is removed from the host best-effort afterwards.
func (s *Service) DeleteByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	removed, err := s.repository.DeleteByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}

	if removed.ImageID != "" {
		if err := s.host.Delete(ctx, removed.ImageID); err != nil {
			s.logger.WarnContext(ctx, "failed to delete image asset of removed product",
				"product_id", id, "asset_id", removed.ImageID, "error", err)
		}
	}

	return toDto(removed), nil
}

// discardAsset removes a freshly uploaded asset after a failed insert so the
// host is not left holding an image no record points at. Best-effort.
func (s *Service) discardAsset(ctx context.Context, asset *assets.Asset) {
	if asset == nil {
		return
	}
	if err := s.host.Delete(ctx, asset.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete orphaned image asset",
			"asset_id", asset.ID, "error", err)
	}
}

// deriveTax computes the GST fields from the sell price and the GST flag.
func deriveTax(sellPrice decimal.Decimal, gstEnabled bool) (int32, decimal.Decimal, decimal.Decimal) {
	percentage := int32(0)
	amount := decimal.Zero
	if gstEnabled {
		percentage = gstPercentage
		amount = sellPrice.Mul(gstRate).Round(2)
	}
	total := sellPrice.Add(amount).Round(2)
	return percentage, amount, total
}

// newBarcode draws a 12-digit numeral uniformly at random.
func newBarcode() string {
	const lo, hi = int64(100_000_000_000), int64(1_000_000_000_000)
	return strconv.FormatInt(lo+rand.Int64N(hi-lo), 10)
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:            product.ID.String(),
		ItemName:      product.ItemName,
		SellPrice:     product.SellPrice,
		Type:          product.Category,
		PrimaryUnit:   product.PrimaryUnit,
		CustomUnit:    product.CustomUnit,
		GSTEnabled:    product.GSTEnabled,
		GSTPercentage: product.GSTPercentage,
		GSTAmount:     product.GSTAmount,
		TotalPrice:    product.TotalPrice,
		Barcode:       product.Barcode,
		Image:         product.ImageURL,
		CreatedAt:     product.CreatedAt,
	}
}
