package handlers

import (
	"errors"
	"fmt"
	"log"

	"stlprime/internal/models"
	"stlprime/internal/repositories"
	"stlprime/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles HTTP requests for STL model listings.
type CatalogHandler struct {
	service  *services.CatalogService
	validate *validator.Validate
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app. The
// router passed in is expected to require authentication.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	modelRoutes := router.Group("/models")
	modelRoutes.Get("/", h.HandleGetModels)
	modelRoutes.Get("/:id", h.HandleGetModelByID)
	modelRoutes.Post("/", h.HandleCreateModel)
	modelRoutes.Delete("/:id", h.HandleDeleteModel)
	modelRoutes.Post("/:id/materials", h.HandleAddMaterialProperty)
}

// HandleGetModels retrieves all model listings.
func (h *CatalogHandler) HandleGetModels(c *fiber.Ctx) error {
	listings, err := h.service.GetAllListings()
	if err != nil {
		log.Printf("Error getting all models: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve models",
			"error":   err.Error(),
		})
	}
	return c.JSON(listings)
}

// HandleGetModelByID retrieves a single model listing by its ID.
func (h *CatalogHandler) HandleGetModelByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Model ID must be a positive integer",
		})
	}

	listing, err := h.service.GetListing(uint(id))
	if err != nil {
		log.Printf("Error getting model by ID %d: %v", id, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Model with ID %d not found", id),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve model",
			"error":   err.Error(),
		})
	}
	return c.JSON(listing)
}

// CreateModelRequest represents the request body for creating a listing.
type CreateModelRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=255"`
	Description string  `json:"description" validate:"omitempty,max=2000"`
	FileURL     string  `json:"file_url" validate:"omitempty,max=500"`
	ImageURL    string  `json:"image_url" validate:"omitempty,max=500"`
	Price       float64 `json:"price" validate:"gte=0"`
	IsFree      bool    `json:"is_free"`
}

// HandleCreateModel creates a new model listing owned by the caller.
func (h *CatalogHandler) HandleCreateModel(c *fiber.Ctx) error {
	var req CreateModelRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create model request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	ownerID, ok := c.Locals("user_id").(float64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Missing user identity",
		})
	}

	listing := &models.STLModel{
		Title:       req.Title,
		Description: req.Description,
		FileURL:     req.FileURL,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		IsFree:      req.IsFree,
		OwnerID:     uint(ownerID),
	}

	created, err := h.service.CreateListing(listing)
	if err != nil {
		log.Printf("Error creating model listing: %v", err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Listing owner does not exist",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create model",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleDeleteModel deletes a model listing and its material properties.
func (h *CatalogHandler) HandleDeleteModel(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Model ID must be a positive integer",
		})
	}

	if err := h.service.DeleteListing(uint(id)); err != nil {
		log.Printf("Error deleting model %d: %v", id, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Model with ID %d not found", id),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete model",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Model %d deleted successfully", id),
	})
}

// MaterialPropertyRequest represents the request body for adding a
// material property to a model listing.
type MaterialPropertyRequest struct {
	FilamentType           string  `json:"filament_type" validate:"required,max=100"`
	EstimatedWeight        float64 `json:"estimated_weight" validate:"required,gt=0"`
	PrintTime              int     `json:"print_time" validate:"gte=0"`
	RecommendedTemperature int     `json:"recommended_temperature"`
}

// HandleAddMaterialProperty attaches a material property to a model listing.
func (h *CatalogHandler) HandleAddMaterialProperty(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Model ID must be a positive integer",
		})
	}

	var req MaterialPropertyRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing material property request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	prop := &models.MaterialProperty{
		ModelID:                uint(id),
		FilamentType:           req.FilamentType,
		EstimatedWeight:        req.EstimatedWeight,
		PrintTime:              req.PrintTime,
		RecommendedTemperature: req.RecommendedTemperature,
	}

	if err := h.service.AddMaterialProperty(prop); err != nil {
		log.Printf("Error adding material property to model %d: %v", id, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Model with ID %d not found", id),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not add material property",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(prop)
}
