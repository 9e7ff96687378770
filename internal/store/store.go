// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product record in the store. Derived fields
// (GSTPercentage, GSTAmount, TotalPrice) are computed by the service layer
// before the record reaches the store; the store never touches them.
type Product struct {
	ID            uuid.UUID
	ItemName      string
	SellPrice     decimal.Decimal
	Category      string
	PrimaryUnit   string
	CustomUnit    string
	GSTEnabled    bool
	GSTPercentage int32
	GSTAmount     decimal.Decimal
	TotalPrice    decimal.Decimal
	Barcode       string
	ImageID       string
	ImageURL      string
	CreatedAt     time.Time
}

// NewProduct carries the fully-populated fields for a product insert.
// ID and CreatedAt are assigned by the store.
type NewProduct struct {
	ItemName      string
	SellPrice     decimal.Decimal
	Category      string
	PrimaryUnit   string
	CustomUnit    string
	GSTEnabled    bool
	GSTPercentage int32
	GSTAmount     decimal.Decimal
	TotalPrice    decimal.Decimal
	Barcode       string
	ImageID       string
	ImageURL      string
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll returns all products ordered by creation time, newest first.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// Create adds a new product to the system.
	// Returns ErrBarcodeConflict if the barcode is already taken.
	Create(ctx context.Context, p NewProduct) (*Product, error)

	// Update replaces the mutable fields of an existing product.
	// ID, Barcode and CreatedAt are never changed.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, p Product) (*Product, error)

	// DeleteByID removes a product by its ID and returns the removed record,
	// so callers can locate its image asset for cleanup.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) (*Product, error)
}
