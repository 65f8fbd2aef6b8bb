package repositories

import (
	"fmt"
	"sync"
	"time"

	"stlprime/internal/models"
)

// MockModelRepository is an in-memory implementation of ModelRepository.
type MockModelRepository struct {
	listings   map[uint]models.STLModel
	nextID     uint
	nextPropID uint
	mu         sync.RWMutex
}

// NewMockModelRepository creates a new instance of MockModelRepository.
func NewMockModelRepository() *MockModelRepository {
	return &MockModelRepository{
		listings:   make(map[uint]models.STLModel),
		nextID:     1,
		nextPropID: 1,
	}
}

// GetAll returns all model listings.
func (r *MockModelRepository) GetAll() ([]models.STLModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.STLModel, 0, len(r.listings))
	for _, m := range r.listings {
		list = append(list, m)
	}
	return list, nil
}

// GetByID returns a model listing by its ID.
func (r *MockModelRepository) GetByID(id uint) (*models.STLModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[id]
	if !ok {
		return nil, fmt.Errorf("model with ID %d: %w", id, ErrNotFound)
	}
	return &listing, nil
}

// Create adds a new model listing.
func (r *MockModelRepository) Create(model *models.STLModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	model.ID = r.nextID
	r.nextID++
	model.CreatedAt = time.Now()
	model.UpdatedAt = time.Now()
	r.listings[model.ID] = *model
	return nil
}

// Delete removes a model listing together with its material properties.
func (r *MockModelRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[id]; !ok {
		return fmt.Errorf("model with ID %d: %w", id, ErrNotFound)
	}
	delete(r.listings, id)
	return nil
}

// AddMaterialProperty attaches a material property to an existing model.
func (r *MockModelRepository) AddMaterialProperty(prop *models.MaterialProperty) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[prop.ModelID]
	if !ok {
		return fmt.Errorf("model with ID %d: %w", prop.ModelID, ErrNotFound)
	}
	prop.ID = r.nextPropID
	r.nextPropID++
	listing.MaterialProperties = append(listing.MaterialProperties, *prop)
	r.listings[prop.ModelID] = listing
	return nil
}
