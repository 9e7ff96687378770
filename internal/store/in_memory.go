package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	perrors "github.com/shoplite/catalog/internal/errors"
)

// inMemory implements ProductStore using an in-memory map.
// It mirrors the pg implementation's semantics (barcode uniqueness,
// newest-first listing) and is used by tests.
type inMemory struct {
	mu       sync.RWMutex
	products map[uuid.UUID]Product
	barcodes map[string]struct{}
	seq      map[uuid.UUID]int
	nextSeq  int
	clock    func() time.Time
}

// NewInMemoryStore creates a new instance of ProductStore backed by process memory.
func NewInMemoryStore() ProductStore {
	return &inMemory{
		products: make(map[uuid.UUID]Product),
		barcodes: make(map[string]struct{}),
		seq:      make(map[uuid.UUID]int),
		clock:    time.Now,
	}
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(_ context.Context, id uuid.UUID) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	return &p, nil
}

// FindAll retrieves all products, newest first.
func (s *inMemory) FindAll(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, p)
	}
	// Insertion order breaks ties for records created within the same tick.
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return s.seq[list[i].ID] > s.seq[list[j].ID]
	})
	return list, nil
}

// Create creates a new product and returns it.
func (s *inMemory) Create(_ context.Context, np NewProduct) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.barcodes[np.Barcode]; taken {
		return nil, perrors.ErrBarcodeConflict
	}

	product := Product{
		ID:            uuid.New(),
		ItemName:      np.ItemName,
		SellPrice:     np.SellPrice,
		Category:      np.Category,
		PrimaryUnit:   np.PrimaryUnit,
		CustomUnit:    np.CustomUnit,
		GSTEnabled:    np.GSTEnabled,
		GSTPercentage: np.GSTPercentage,
		GSTAmount:     np.GSTAmount,
		TotalPrice:    np.TotalPrice,
		Barcode:       np.Barcode,
		ImageID:       np.ImageID,
		ImageURL:      np.ImageURL,
		CreatedAt:     s.clock(),
	}
	s.products[product.ID] = product
	s.barcodes[product.Barcode] = struct{}{}
	s.seq[product.ID] = s.nextSeq
	s.nextSeq++

	return &product, nil
}

// Update replaces the mutable fields of an existing product.
func (s *inMemory) Update(_ context.Context, up Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[up.ID]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}

	// Barcode and CreatedAt are immutable.
	up.Barcode = existing.Barcode
	up.CreatedAt = existing.CreatedAt
	s.products[up.ID] = up

	return &up, nil
}

// DeleteByID deletes a product by its ID and returns the removed record.
func (s *inMemory) DeleteByID(_ context.Context, id uuid.UUID) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	delete(s.products, id)
	delete(s.barcodes, p.Barcode)
	delete(s.seq, id)
	return &p, nil
}
