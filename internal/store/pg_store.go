package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	perrors "github.com/shoplite/catalog/internal/errors"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

const productColumns = `id, item_name, sell_price, category, primary_unit, custom_unit,
	gst_enabled, gst_percentage, gst_amount, total_price, barcode, image_id, image_url, created_at`

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindAll retrieves all products ordered by creation time, newest first.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgStore) FindAll(ctx context.Context) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product rows: %w", err)
	}
	return products, nil
}

// Create adds a new product to the system.
// Returns ErrBarcodeConflict if the barcode unique constraint is violated.
func (p *PgStore) Create(ctx context.Context, np NewProduct) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`INSERT INTO products (item_name, sell_price, category, primary_unit, custom_unit,
			gst_enabled, gst_percentage, gst_amount, total_price, barcode, image_id, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+productColumns,
		np.ItemName, np.SellPrice, np.Category, np.PrimaryUnit, np.CustomUnit,
		np.GSTEnabled, np.GSTPercentage, np.GSTAmount, np.TotalPrice, np.Barcode, np.ImageID, np.ImageURL)
	product, err := scanProduct(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, perrors.ErrBarcodeConflict
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update replaces the mutable fields of an existing product.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, up Product) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE products
		 SET item_name = $2, sell_price = $3, category = $4, primary_unit = $5, custom_unit = $6,
			gst_enabled = $7, gst_percentage = $8, gst_amount = $9, total_price = $10,
			image_id = $11, image_url = $12
		 WHERE id = $1
		 RETURNING `+productColumns,
		up.ID, up.ItemName, up.SellPrice, up.Category, up.PrimaryUnit, up.CustomUnit,
		up.GSTEnabled, up.GSTPercentage, up.GSTAmount, up.TotalPrice, up.ImageID, up.ImageURL)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteByID removes a product by its unique identifier and returns the removed record.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`DELETE FROM products WHERE id = $1 RETURNING `+productColumns, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to delete product by ID: %w", err)
	}
	return product, nil
}

// scanProduct reads one product row in productColumns order.
func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.ItemName, &p.SellPrice, &p.Category, &p.PrimaryUnit, &p.CustomUnit,
		&p.GSTEnabled, &p.GSTPercentage, &p.GSTAmount, &p.TotalPrice, &p.Barcode, &p.ImageID, &p.ImageURL, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
