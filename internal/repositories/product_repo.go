package repositories

import (
	"errors"

	"glozin/internal/models"
)

// Sentinel errors returned by every ProductRepository implementation so
// callers can translate persistence failures without string matching.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateSKU    = errors.New("sku already exists")
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
