package services

import (
	"encoding/json"
	"fmt"
	"log"

	"stlprime/internal/models"
	"stlprime/internal/repositories"
	"stlprime/pkg/rabbitmq"
)

// CatalogService handles business logic for STL model listings and their
// material properties.
type CatalogService struct {
	modelRepo repositories.ModelRepository
	userRepo  repositories.UserRepository
	mqClient  *rabbitmq.Client
}

// NewCatalogService creates a new CatalogService. mqClient may be nil, in
// which case listing events are not published.
func NewCatalogService(modelRepo repositories.ModelRepository, userRepo repositories.UserRepository, mqClient *rabbitmq.Client) *CatalogService {
	return &CatalogService{
		modelRepo: modelRepo,
		userRepo:  userRepo,
		mqClient:  mqClient,
	}
}

// GetAllListings retrieves all model listings.
func (s *CatalogService) GetAllListings() ([]models.STLModel, error) {
	return s.modelRepo.GetAll()
}

// GetListing retrieves a single model listing with its material properties.
func (s *CatalogService) GetListing(id uint) (*models.STLModel, error) {
	return s.modelRepo.GetByID(id)
}

// CreateListing creates a new model listing after checking that the owner
// exists, then publishes a listing.created event.
// IsFree is stored as given; it is advisory and does not force the price
// to zero.
func (s *CatalogService) CreateListing(listing *models.STLModel) (*models.STLModel, error) {
	if _, err := s.userRepo.GetByID(listing.OwnerID); err != nil {
		return nil, fmt.Errorf("owner %d: %w", listing.OwnerID, err)
	}

	if err := s.modelRepo.Create(listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	if s.mqClient != nil {
		event := map[string]interface{}{
			"modelID": listing.ID,
			"ownerID": listing.OwnerID,
			"title":   listing.Title,
			"price":   listing.Price,
			"isFree":  listing.IsFree,
		}
		body, err := json.Marshal(event)
		if err != nil {
			log.Printf("Failed to marshal listing event to JSON: %v", err)
		} else if err := s.mqClient.PublishListingCreated(body); err != nil {
			log.Printf("Warning: Failed to publish listing created event for model %d: %v", listing.ID, err)
		}
	} else {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
	}

	return listing, nil
}

// DeleteListing removes a model listing. Its material property rows are
// deleted with it.
func (s *CatalogService) DeleteListing(id uint) error {
	return s.modelRepo.Delete(id)
}

// AddMaterialProperty attaches a material property to an existing model
// listing. The weight must be positive and the print time non-negative.
func (s *CatalogService) AddMaterialProperty(prop *models.MaterialProperty) error {
	if prop.EstimatedWeight <= 0 {
		return fmt.Errorf("estimated weight must be positive, got %g", prop.EstimatedWeight)
	}
	if prop.PrintTime < 0 {
		return fmt.Errorf("print time must be non-negative, got %d", prop.PrintTime)
	}

	if _, err := s.modelRepo.GetByID(prop.ModelID); err != nil {
		return fmt.Errorf("model %d: %w", prop.ModelID, err)
	}
	return s.modelRepo.AddMaterialProperty(prop)
}
