package repositories

import "stlprime/internal/models"

// ModelRepository defines the interface for STL model listing data access.
type ModelRepository interface {
	GetAll() ([]models.STLModel, error)
	GetByID(id uint) (*models.STLModel, error)
	Create(model *models.STLModel) error
	Delete(id uint) error
	AddMaterialProperty(prop *models.MaterialProperty) error
}
