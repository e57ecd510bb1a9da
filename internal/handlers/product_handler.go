package handlers

import (
	"errors"
	"fmt"
	"log"

	"glozin/internal/repositories"
	"glozin/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Stable error codes returned to clients. Internal error detail stays in the
// server log.
const (
	codeValidation = "validation_error"
	codeNotFound   = "not_found"
	codeConflict   = "conflict"
	codeStorage    = "storage_error"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterAdminRoutes registers the full product CRUD under the given router
// group (mounted at /api/admin).
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	productRoutes := router.Group("/product")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// RegisterUserRoutes registers the read-only product routes under the given
// router group (mounted at /api/user).
func (h *ProductHandler) RegisterUserRoutes(router fiber.Router) {
	productRoutes := router.Group("/product")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
}

// HandleGetProducts retrieves all products. No filtering or pagination.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return respondError(c, fiber.StatusInternalServerError, codeStorage, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	productID := c.Params("id")
	product, err := h.service.GetProductByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return respondError(c, fiber.StatusNotFound, codeNotFound, fmt.Sprintf("Product with ID %s not found", productID))
		}
		log.Printf("Error getting product by ID %s: %v", productID, err)
		return respondError(c, fiber.StatusInternalServerError, codeStorage, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product from a multipart form. Photo
// files arrive under fields named photos[<colorName>] and are associated to
// the matching entry of the JSON-encoded colors field.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input services.CreateProductInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing create product form: %v", err)
		return respondError(c, fiber.StatusBadRequest, codeValidation, "Invalid multipart form data")
	}

	if err := h.validate.Struct(input); err != nil {
		return respondValidationErrors(c, err)
	}

	form, err := c.MultipartForm()
	if err != nil {
		log.Printf("Error reading multipart form: %v", err)
		return respondError(c, fiber.StatusBadRequest, codeValidation, "Request body must be multipart/form-data")
	}

	product, err := h.service.CreateProduct(input, form.File)
	if err != nil {
		return h.respondServiceError(c, err, "create product")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Product created successfully",
		"product": product,
	})
}

// HandleUpdateProduct replaces an existing product. PUT semantics: the JSON
// body must carry the complete field set and the stored document is replaced
// wholesale.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	productID := c.Params("id")

	var input services.UpdateProductInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing update request body: %v", err)
		return respondError(c, fiber.StatusBadRequest, codeValidation, "Invalid request body")
	}

	if err := h.validate.Struct(input); err != nil {
		return respondValidationErrors(c, err)
	}

	product, err := h.service.UpdateProduct(productID, input)
	if err != nil {
		return h.respondServiceError(c, err, "update product")
	}

	return c.JSON(product)
}

// HandleDeleteProduct removes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	if err := h.service.DeleteProduct(productID); err != nil {
		return h.respondServiceError(c, err, "delete product")
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}

// respondServiceError maps service and repository errors to HTTP statuses.
func (h *ProductHandler) respondServiceError(c *fiber.Ctx, err error, operation string) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return respondError(c, fiber.StatusBadRequest, codeValidation, validationErr.Error())
	case errors.Is(err, repositories.ErrProductNotFound):
		return respondError(c, fiber.StatusNotFound, codeNotFound, "Product not found")
	case errors.Is(err, repositories.ErrDuplicateSKU):
		return respondError(c, fiber.StatusConflict, codeConflict, "A product with this SKU already exists")
	default:
		log.Printf("Error during %s: %v", operation, err)
		return respondError(c, fiber.StatusInternalServerError, codeStorage, fmt.Sprintf("Could not %s", operation))
	}
}

// respondValidationErrors renders a per-field error map for a failed struct
// validation.
func respondValidationErrors(c *fiber.Ctx, err error) error {
	validationErrors := err.(validator.ValidationErrors)
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"code":    codeValidation,
		"errors":  errorMessages,
	})
}

func respondError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"code":    code,
	})
}
