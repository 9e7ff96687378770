package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	perrors "github.com/shoplite/catalog/internal/errors"
)

const skipIntegrationTests = "CATALOG_SKIP_INTEGRATION_TESTS"

// PgStoreSuite is a test suite for the PostgreSQL ProductStore implementation.
type PgStoreSuite struct {
	suite.Suite                             // Embedding testify's suite for structured testing
	pgContainer *postgres.PostgresContainer // PostgreSQL container for integration tests
	dbPool      *pgxpool.Pool               // PostgreSQL connection pool for integration tests
	store       ProductStore                //
	logger      *slog.Logger                // Logger for the test suite
	ctx         context.Context             // Context for the test suite, used for cancellation and timeouts
}

// SetupSuite initializes the test suite by setting up a PostgreSQL container,
func (s *PgStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "catalog"
	dbUser := "user"
	dbPassword := "password"

	// 1. Start a PostgreSQL container with the specified configuration. Wait for the container to be ready.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		// Wait for a specific log message indicating the database service is ready.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		// Ensure the container is ready to accept connections on the default PostgreSQL port.
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 3. create a new pgxpool instance using the connection string
	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	// 3.1 Ping the database to ensure the connection is established
	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// 4. Database migration
	// Build path to migrations directory
	wd, _ := os.Getwd()
	migrationsPath := filepath.Join(wd, "migrations")
	sourceURL := "file://" + migrationsPath
	// Create a new migrate instance with the source URL and connection string
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	// Apply all available migrations
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.logger.Info("Migrations applied for integration tests")

	s.store = NewPgStore(s.dbPool)
	s.logger.Info("Initialization complete for PgStoreSuite")
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *PgStoreSuite) TearDownSuite() {
	s.logger.Info("Tearing down suite...")
	if s.dbPool != nil {
		s.dbPool.Close()
		s.logger.Info("DB pool closed.")
	}
	if s.pgContainer != nil {
		s.logger.Info("Terminating PostgreSQL container...")
		err := s.pgContainer.Terminate(s.ctx)
		if err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		} else {
			s.logger.Info("PostgreSQL container terminated.")
		}
	}
}

// SetupTest prepares the database for each test by truncating the products table.
func (s *PgStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products CASCADE")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

// TestPgStoreIntegration runs the ProductStore integration tests.
func TestPgStoreIntegration(t *testing.T) {
	// Skip integration tests if the environment variable is set
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	// Run the test suite
	suite.Run(t, new(PgStoreSuite))
}

// createTestProduct is a helper function to create a product for testing purposes.
func (s *PgStoreSuite) createTestProduct(name, barcode string) *Product {
	s.T().Helper()
	product, err := s.store.Create(s.ctx, NewProduct{
		ItemName:      name,
		SellPrice:     decimal.RequireFromString("20"),
		Category:      "Beverage",
		GSTEnabled:    true,
		GSTPercentage: 5,
		GSTAmount:     decimal.RequireFromString("1.00"),
		TotalPrice:    decimal.RequireFromString("21.00"),
		Barcode:       barcode,
	})
	require.NoError(s.T(), err, "createTestProduct helper failed to create product")
	return product
}

func (s *PgStoreSuite) TestCreateAndFindByID() {
	// 1. Create a new product
	created := s.createTestProduct("Tea", "100000000001")

	// 2. Check that the product was created successfully
	require.NotEqual(s.T(), uuid.Nil, created.ID, "Created product ID should be set")
	require.Equal(s.T(), "Tea", created.ItemName)
	require.Equal(s.T(), "100000000001", created.Barcode)
	require.True(s.T(), created.GSTAmount.Equal(decimal.RequireFromString("1.00")))
	require.True(s.T(), created.TotalPrice.Equal(decimal.RequireFromString("21.00")))
	require.NotZero(s.T(), created.CreatedAt, "CreatedAt should be set")

	// 3. Fetch the product by ID
	fetched, err := s.store.FindByID(s.ctx, created.ID)

	// 4. Check that the fetched product matches the created product
	require.NoError(s.T(), err, "FindByID should not return an error")
	require.Equal(s.T(), created.ID, fetched.ID)
	require.Equal(s.T(), created.ItemName, fetched.ItemName)
	require.Equal(s.T(), created.Barcode, fetched.Barcode)
	require.True(s.T(), created.SellPrice.Equal(fetched.SellPrice))
	require.WithinDuration(s.T(), created.CreatedAt, fetched.CreatedAt, time.Second)
}

func (s *PgStoreSuite) TestFindByID_NotFound() {
	// Attempt to fetch a product that does not exist
	_, err := s.store.FindByID(s.ctx, uuid.New())
	// Check that the error is ErrProductNotFound
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound, "Expected ErrProductNotFound for non-existent product")
}

func (s *PgStoreSuite) TestFindAll_NewestFirst() {
	s.createTestProduct("Product A", "100000000001")
	s.createTestProduct("Product B", "100000000002")
	s.createTestProduct("Product C", "100000000003")

	products, err := s.store.FindAll(s.ctx)

	require.NoError(s.T(), err)
	require.Len(s.T(), products, 3, "Should retrieve 3 products")
	assert.Equal(s.T(), "Product C", products[0].ItemName)
	assert.Equal(s.T(), "Product B", products[1].ItemName)
	assert.Equal(s.T(), "Product A", products[2].ItemName)
}

func (s *PgStoreSuite) TestCreate_BarcodeConflict() {
	s.createTestProduct("Tea", "100000000001")

	_, err := s.store.Create(s.ctx, NewProduct{
		ItemName:   "Coffee",
		SellPrice:  decimal.RequireFromString("30"),
		Category:   "Beverage",
		TotalPrice: decimal.RequireFromString("30"),
		GSTAmount:  decimal.Zero,
		Barcode:    "100000000001",
	})

	require.ErrorIs(s.T(), err, perrors.ErrBarcodeConflict, "Expected ErrBarcodeConflict for duplicate barcode")
}

func (s *PgStoreSuite) TestUpdateProduct() {
	// Create a product to update
	created := s.createTestProduct("Tea", "100000000001")

	// Update the product's details
	patch := *created
	patch.ItemName = "Green Tea"
	patch.SellPrice = decimal.RequireFromString("30")
	patch.GSTAmount = decimal.RequireFromString("1.50")
	patch.TotalPrice = decimal.RequireFromString("31.50")
	patch.ImageID = "products/abc.jpg"
	patch.ImageURL = "http://localhost:9000/catalog-images/products/abc.jpg"
	updated, err := s.store.Update(s.ctx, patch)
	require.NoError(s.T(), err, "Update should not return an error")

	// Check that the updated product matches the new details
	require.Equal(s.T(), created.ID, updated.ID)
	require.Equal(s.T(), "Green Tea", updated.ItemName)
	require.True(s.T(), updated.SellPrice.Equal(decimal.RequireFromString("30")))
	require.True(s.T(), updated.TotalPrice.Equal(decimal.RequireFromString("31.50")))
	require.Equal(s.T(), "products/abc.jpg", updated.ImageID)
	require.Equal(s.T(), created.Barcode, updated.Barcode, "Barcode should never change on update")
	require.WithinDuration(s.T(), created.CreatedAt, updated.CreatedAt, time.Second)
}

func (s *PgStoreSuite) TestUpdateProduct_NotFound() {
	_, err := s.store.Update(s.ctx, Product{
		ID:         uuid.New(),
		ItemName:   "Ghost",
		SellPrice:  decimal.RequireFromString("10"),
		Category:   "Veg",
		GSTAmount:  decimal.Zero,
		TotalPrice: decimal.RequireFromString("10"),
	})
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *PgStoreSuite) TestDeleteByID() {
	created := s.createTestProduct("Tea", "100000000001")

	removed, err := s.store.DeleteByID(s.ctx, created.ID)

	require.NoError(s.T(), err)
	require.Equal(s.T(), created.ID, removed.ID, "DeleteByID should return the removed record")
	require.Equal(s.T(), created.Barcode, removed.Barcode)

	_, err = s.store.FindByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *PgStoreSuite) TestDeleteByID_NotFound() {
	_, err := s.store.DeleteByID(s.ctx, uuid.New())
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}
