package repositories

import (
	"errors"
	"fmt"

	"stlprime/internal/models"

	"gorm.io/gorm"
)

// GORMModelRepository is a GORM implementation of ModelRepository.
type GORMModelRepository struct {
	db *gorm.DB
}

// NewGORMModelRepository creates a new instance of GORMModelRepository.
func NewGORMModelRepository(db *gorm.DB) *GORMModelRepository {
	return &GORMModelRepository{
		db: db,
	}
}

// GetAll retrieves all model listings from the database.
func (r *GORMModelRepository) GetAll() ([]models.STLModel, error) {
	var listings []models.STLModel
	if err := r.db.Preload("MaterialProperties").Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to get all models: %w", err)
	}
	return listings, nil
}

// GetByID retrieves a single model listing with its material properties.
func (r *GORMModelRepository) GetByID(id uint) (*models.STLModel, error) {
	var listing models.STLModel
	if err := r.db.Preload("MaterialProperties").First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("model with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get model by ID %d: %w", id, err)
	}
	return &listing, nil
}

// Create creates a new model listing in the database.
func (r *GORMModelRepository) Create(model *models.STLModel) error {
	if err := r.db.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create model: %w", err)
	}
	return nil
}

// Delete removes a model listing and all of its material property rows.
// Children go first so the cascade does not depend on driver FK settings.
func (r *GORMModelRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.MaterialProperty{}, "model_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete material properties for model %d: %w", id, err)
		}
		res := tx.Delete(&models.STLModel{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete model %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("model with ID %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// AddMaterialProperty attaches a material property row to its model.
func (r *GORMModelRepository) AddMaterialProperty(prop *models.MaterialProperty) error {
	if err := r.db.Create(prop).Error; err != nil {
		return fmt.Errorf("failed to create material property: %w", err)
	}
	return nil
}
