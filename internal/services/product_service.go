package services

import (
	"encoding/json"
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"glozin/internal/models"
	"glozin/internal/repositories"
	"glozin/internal/storage"
	"glozin/pkg/rabbitmq"

	"github.com/google/uuid"
)

// ValidationError marks an input problem the client can fix, as opposed to a
// storage failure. Handlers translate it to a 400 response.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// CreateProductInput carries the scalar form fields of a product creation
// request. Numeric fields are pointers so that a present zero value (stock 0,
// discountPercentage 0) is distinguishable from an absent field.
type CreateProductInput struct {
	Brand              string   `form:"brand" validate:"required"`
	Title              string   `form:"title" validate:"required"`
	Description        string   `form:"description" validate:"required"`
	SKU                string   `form:"sku" validate:"required"`
	Colors             string   `form:"colors" validate:"required"` // JSON-encoded list of color names
	Price              *float64 `form:"price" validate:"required,gt=0"`
	DiscountPercentage *float64 `form:"discountPercentage" validate:"omitempty,gte=0,lte=100"`
	Stock              *int     `form:"stock" validate:"required,gte=0"`
	Sizes              []string `form:"sizes" validate:"omitempty,min=1"`
}

// UpdateProductInput is the full replacement field set for a product update.
// Updates are PUT semantics: every field is required and the stored document
// is replaced wholesale, colors included (no photo re-association happens).
type UpdateProductInput struct {
	Brand              string              `json:"brand" validate:"required"`
	Title              string              `json:"title" validate:"required"`
	Description        string              `json:"description" validate:"required"`
	SKU                string              `json:"sku" validate:"required"`
	Price              *float64            `json:"price" validate:"required,gt=0"`
	DiscountPercentage *float64            `json:"discountPercentage" validate:"required,gte=0,lte=100"`
	Stock              *int                `json:"stock" validate:"required,gte=0"`
	ViewCount          *int                `json:"viewCount" validate:"required,gte=0"`
	Sizes              []string            `json:"sizes" validate:"required,min=1"`
	Colors             []models.ColorEntry `json:"colors" validate:"required"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	photos   storage.PhotoStore
	mqClient *rabbitmq.Client
}

// NewProductService creates a new ProductService. mqClient may be nil when no
// broker is configured; events are then skipped.
func NewProductService(repo repositories.ProductRepository, photos storage.PhotoStore, mqClient *rabbitmq.Client) *ProductService {
	return &ProductService{
		repo:     repo,
		photos:   photos,
		mqClient: mqClient,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct persists the uploaded photo files, assembles the per-color
// photo lists and stores the resulting product. files maps multipart field
// names (photos[<colorName>]) to the uploaded file headers for that field.
func (s *ProductService) CreateProduct(input CreateProductInput, files map[string][]*multipart.FileHeader) (*models.Product, error) {
	names, err := decodeColorNames(input.Colors)
	if err != nil {
		return nil, err
	}

	colors, err := s.assembleColors(names, files)
	if err != nil {
		return nil, err
	}

	sizes := models.SizeList(input.Sizes)
	if len(sizes) == 0 {
		sizes = models.SizeList{"s", "m"}
	}
	discount := 0.0
	if input.DiscountPercentage != nil {
		discount = *input.DiscountPercentage
	}

	now := time.Now()
	product := &models.Product{
		ID:                 uuid.New().String(),
		Brand:              input.Brand,
		Title:              input.Title,
		Description:        input.Description,
		SKU:                input.SKU,
		Price:              *input.Price,
		DiscountPercentage: discount,
		Stock:              *input.Stock,
		Sizes:              sizes,
		Colors:             colors,
		ViewCount:          0,
		CreatedAt:          now,
		ModifiedAt:         now,
	}

	if err := s.repo.Create(product); err != nil {
		return nil, err
	}

	s.publishEvent("product.created", product)
	return product, nil
}

// UpdateProduct replaces every field of the product identified by id. The
// caller supplies a pre-built colors payload; previously uploaded photo files
// that drop out of it are not removed from storage.
func (s *ProductService) UpdateProduct(id string, input UpdateProductInput) (*models.Product, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:                 existing.ID,
		Brand:              input.Brand,
		Title:              input.Title,
		Description:        input.Description,
		SKU:                input.SKU,
		Price:              *input.Price,
		DiscountPercentage: *input.DiscountPercentage,
		Stock:              *input.Stock,
		Sizes:              models.SizeList(input.Sizes),
		Colors:             models.ColorList(input.Colors),
		ViewCount:          *input.ViewCount,
		CreatedAt:          existing.CreatedAt,
		ModifiedAt:         time.Now(),
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}

	s.publishEvent("product.updated", product)
	return product, nil
}

// DeleteProduct deletes a product by its ID. Photo files referenced by the
// product stay on disk; their lifecycle is an external policy.
func (s *ProductService) DeleteProduct(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.publishEvent("product.deleted", map[string]string{"id": id})
	return nil
}

// decodeColorNames parses the JSON-encoded color list from the form field.
func decodeColorNames(colorsJSON string) ([]string, error) {
	var names []string
	if err := json.Unmarshal([]byte(colorsJSON), &names); err != nil {
		return nil, NewValidationError("colors must be a JSON array of color names: %v", err)
	}
	return names, nil
}

// assembleColors builds one ColorEntry per decoded color name, in order. The
// files uploaded under the field photos[<name>] are persisted and their
// stored filenames recorded in upload order; a color with no matching field
// gets an empty photo list.
func (s *ProductService) assembleColors(names []string, files map[string][]*multipart.FileHeader) (models.ColorList, error) {
	colors := make(models.ColorList, 0, len(names))
	for _, name := range names {
		entry := models.ColorEntry{
			Name:   name,
			Photos: []string{},
		}
		for _, file := range files[fmt.Sprintf("photos[%s]", name)] {
			stored, err := s.photos.Save(file)
			if err != nil {
				return nil, fmt.Errorf("failed to store photo for color %s: %w", name, err)
			}
			entry.Photos = append(entry.Photos, stored)
		}
		colors = append(colors, entry)
	}
	return colors, nil
}

// publishEvent pushes a product lifecycle event to the broker. Publishing is
// best-effort: a failure is logged and never fails the request.
func (s *ProductService) publishEvent(event string, payload interface{}) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishProductEvent(event, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", event, err)
	}
}
