package services_test

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"testing"

	"glozin/internal/models"
	"glozin/internal/repositories"
	"glozin/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// fakePhotoStore records saved files and hands back predictable names.
type fakePhotoStore struct {
	saved    []string
	failWith error
}

func (f *fakePhotoStore) Save(file *multipart.FileHeader) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	stored := fmt.Sprintf("stored-%d-%s", len(f.saved), file.Filename)
	f.saved = append(f.saved, stored)
	return stored, nil
}

// buildFileHeaders assembles real multipart file headers, grouped by field
// name, the way Fiber hands them to the service.
func buildFileHeaders(t *testing.T, filesByField map[string][]string) map[string][]*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for field, filenames := range filesByField {
		for _, filename := range filenames {
			part, err := writer.CreateFormFile(field, filename)
			require.NoError(t, err)
			_, err = part.Write([]byte("fake image bytes for " + filename))
			require.NoError(t, err)
		}
	}
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func validCreateInput() services.CreateProductInput {
	return services.CreateProductInput{
		Brand:              "Nike",
		Title:              "Air",
		Description:        "x",
		SKU:                "SKU1",
		Colors:             `["Red","Blue"]`,
		Price:              floatPtr(120),
		DiscountPercentage: floatPtr(10),
		Stock:              intPtr(5),
		Sizes:              []string{"S", "M"},
	}
}

func TestProductService_CreateProduct_AssemblesColors(t *testing.T) {
	mockRepo := new(MockProductRepository)
	photos := &fakePhotoStore{}
	service := services.NewProductService(mockRepo, photos, nil)

	files := buildFileHeaders(t, map[string][]string{
		"photos[Red]": {"red_shoe.png"},
	})

	var created *models.Product
	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Run(func(args mock.Arguments) {
		created = args.Get(0).(*models.Product)
	}).Return(nil).Once()

	product, err := service.CreateProduct(validCreateInput(), files)

	assert.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, created, product)
	assert.NotEmpty(t, product.ID)
	assert.Equal(t, 0, product.ViewCount)
	assert.False(t, product.CreatedAt.IsZero())
	assert.Equal(t, product.CreatedAt, product.ModifiedAt)

	// One entry per decoded color name, in input order.
	require.Len(t, product.Colors, 2)
	assert.Equal(t, "Red", product.Colors[0].Name)
	require.Len(t, product.Colors[0].Photos, 1)
	assert.Contains(t, product.Colors[0].Photos[0], "red_shoe.png")
	// A color without a matching field gets an empty list, not a nil one.
	assert.Equal(t, "Blue", product.Colors[1].Name)
	assert.NotNil(t, product.Colors[1].Photos)
	assert.Empty(t, product.Colors[1].Photos)

	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_PhotoOrderPreserved(t *testing.T) {
	mockRepo := new(MockProductRepository)
	photos := &fakePhotoStore{}
	service := services.NewProductService(mockRepo, photos, nil)

	files := buildFileHeaders(t, map[string][]string{
		"photos[Red]": {"first.png", "second.png", "third.png"},
	})

	input := validCreateInput()
	input.Colors = `["Red"]`

	var created *models.Product
	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Run(func(args mock.Arguments) {
		created = args.Get(0).(*models.Product)
	}).Return(nil).Once()

	_, err := service.CreateProduct(input, files)

	assert.NoError(t, err)
	require.Len(t, created.Colors, 1)
	require.Len(t, created.Colors[0].Photos, 3)
	assert.Contains(t, created.Colors[0].Photos[0], "first.png")
	assert.Contains(t, created.Colors[0].Photos[1], "second.png")
	assert.Contains(t, created.Colors[0].Photos[2], "third.png")
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_Defaults(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, &fakePhotoStore{}, nil)

	input := validCreateInput()
	input.Sizes = nil
	input.DiscountPercentage = nil
	input.Stock = intPtr(0) // present zero must be accepted

	var created *models.Product
	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Run(func(args mock.Arguments) {
		created = args.Get(0).(*models.Product)
	}).Return(nil).Once()

	_, err := service.CreateProduct(input, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.SizeList{"s", "m"}, created.Sizes)
	assert.Equal(t, 0.0, created.DiscountPercentage)
	assert.Equal(t, 0, created.Stock)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_InvalidColorsJSON(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, &fakePhotoStore{}, nil)

	input := validCreateInput()
	input.Colors = `{"not":"a list"}`

	product, err := service.CreateProduct(input, nil)

	assert.Error(t, err)
	assert.Nil(t, product)
	var validationErr *services.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestProductService_CreateProduct_PhotoStoreFailure(t *testing.T) {
	mockRepo := new(MockProductRepository)
	photos := &fakePhotoStore{failWith: fmt.Errorf("disk full")}
	service := services.NewProductService(mockRepo, photos, nil)

	files := buildFileHeaders(t, map[string][]string{
		"photos[Red]": {"red_shoe.png"},
	})

	product, err := service.CreateProduct(validCreateInput(), files)

	assert.Error(t, err)
	assert.Nil(t, product)
	assert.Contains(t, err.Error(), "disk full")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestProductService_CreateProduct_DuplicateSKU(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, &fakePhotoStore{}, nil)

	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(repositories.ErrDuplicateSKU).Once()

	product, err := service.CreateProduct(validCreateInput(), nil)

	assert.Error(t, err)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, repositories.ErrDuplicateSKU))
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, &fakePhotoStore{}, nil)

	expectedProducts := []models.Product{
		{ID: "1", Brand: "Nike", Title: "Air", SKU: "SKU1", Price: 120, Stock: 5},
		{ID: "2", Brand: "Adidas", Title: "Boost", SKU: "SKU2", Price: 90, Stock: 3},
	}

	mockRepo.On("GetAll").Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts()

	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, &fakePhotoStore{}, nil)

	expectedProduct := &models.Product{ID: "1", Brand: "Nike", Title: "Air", SKU: "SKU1"}

	mockRepo.On("GetByID", "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID("1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	mockRepo.On("GetByID", "99").Return(nil, repositories.ErrProductNotFound).Once()
	product, err = service.GetProductByID("99")
	assert.Error(t, err)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, repositories.ErrProductNotFound))
	mockRepo.AssertExpectations(t)
}

func validUpdateInput() services.UpdateProductInput {
	return services.UpdateProductInput{
		Brand:              "Nike",
		Title:              "Air Max",
		Description:        "updated",
		SKU:                "SKU1",
		Price:              floatPtr(150),
		DiscountPercentage: floatPtr(0),
		Stock:              intPtr(7),
		ViewCount:          intPtr(42),
		Sizes:              []string{"S", "M", "L"},
		Colors: []models.ColorEntry{
			{Name: "Red", Photos: []string{"existing.png"}},
		},
	}
}

func TestProductService_UpdateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, &fakePhotoStore{}, nil)

	existing := &models.Product{ID: "1", Brand: "Nike", Title: "Air", SKU: "SKU1"}
	mockRepo.On("GetByID", "1").Return(existing, nil).Once()

	var updated *models.Product
	mockRepo.On("Update", mock.AnythingOfType("*models.Product")).Run(func(args mock.Arguments) {
		updated = args.Get(0).(*models.Product)
	}).Return(nil).Once()

	product, err := service.UpdateProduct("1", validUpdateInput())

	assert.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "1", updated.ID)
	assert.Equal(t, "Air Max", updated.Title)
	assert.Equal(t, 42, updated.ViewCount)
	assert.Equal(t, existing.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.ModifiedAt.IsZero())
	require.Len(t, updated.Colors, 1)
	assert.Equal(t, "Red", updated.Colors[0].Name)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, &fakePhotoStore{}, nil)

	mockRepo.On("GetByID", "99").Return(nil, repositories.ErrProductNotFound).Once()

	product, err := service.UpdateProduct("99", validUpdateInput())

	assert.Error(t, err)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, repositories.ErrProductNotFound))
	mockRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, &fakePhotoStore{}, nil)

	mockRepo.On("Delete", "1").Return(nil).Once()
	err := service.DeleteProduct("1")
	assert.NoError(t, err)

	mockRepo.On("Delete", "99").Return(repositories.ErrProductNotFound).Once()
	err = service.DeleteProduct("99")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, repositories.ErrProductNotFound))
	mockRepo.AssertExpectations(t)
}
