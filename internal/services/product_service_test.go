package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPublisher records published product events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishProductEvent(event models.ProductEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func notFound(id int) error {
	return fmt.Errorf("product with ID %d: %w", id, repositories.ErrNotFound)
}

func TestProductService_GetAllProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil, nil)

	expectedProducts := []models.Product{
		{ID: 1, Name: "Product A", Price: 10.0, Stock: 100},
		{ID: 2, Name: "Product B", Price: 20.0, Stock: 50},
	}
	mockRepo.On("GetAll", ctx).Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts(ctx)
	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)

	// Empty storage lists as an empty slice, not nil
	mockRepo.On("GetAll", ctx).Return(nil, nil).Once()
	products, err = service.GetAllProducts(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	mockRepo.On("GetAll", ctx).Return(nil, errors.New("database error")).Once()
	_, err = service.GetAllProducts(ctx)
	assert.ErrorContains(t, err, "database error")
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil, nil)

	expectedProduct := &models.Product{ID: 1, Name: "Product A", Price: 10.0, Stock: 100}

	mockRepo.On("GetByID", ctx, 1).Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	mockRepo.On("GetByID", ctx, 99).Return(nil, notFound(99)).Once()
	product, err = service.GetProductByID(ctx, 99)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	assert.Nil(t, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	publisher := new(MockPublisher)
	service := services.NewProductService(mockRepo, publisher, nil, nil)

	payload := models.NewProductPayload("Widget", 9.99, 10).WithID(77)

	mockRepo.On("Create", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.ID == 0 && p.Name == "Widget" && p.Price == 9.99 && p.Stock == 10
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Product).ID = 5
	}).Return(nil).Once()
	publisher.On("PublishProductEvent", mock.MatchedBy(func(e models.ProductEvent) bool {
		return e.Type == models.ProductCreated && e.ProductID == 5
	})).Return(nil).Once()

	product, err := service.CreateProduct(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, models.Product{ID: 5, Name: "Widget", Price: 9.99, Stock: 10}, *product)
	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestProductService_CreateProduct_Rejected(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil, nil)

	_, err := service.CreateProduct(ctx, nil)
	assert.ErrorIs(t, err, services.ErrMissingPayload)

	name := "No price"
	_, err = service.CreateProduct(ctx, &models.ProductPayload{Name: &name})
	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "price")
	assert.Contains(t, validationErr.Fields, "stock")
	assert.NotContains(t, validationErr.Fields, "name")

	_, err = service.CreateProduct(ctx, models.NewProductPayload("", 1, 1))
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "name")

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_CreateProduct_ZeroValuesArePresent(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil, nil)

	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()
	_, err := service.CreateProduct(ctx, models.NewProductPayload("Freebie", 0, 0))
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	publisher := new(MockPublisher)
	service := services.NewProductService(mockRepo, publisher, nil, nil)

	payload := models.NewProductPayload("Product A Updated", 12.0, 95).WithID(1)
	expected := &models.Product{ID: 1, Name: "Product A Updated", Price: 12.0, Stock: 95}

	mockRepo.On("Update", ctx, expected).Return(nil).Once()
	publisher.On("PublishProductEvent", mock.MatchedBy(func(e models.ProductEvent) bool {
		return e.Type == models.ProductUpdated && e.ProductID == 1
	})).Return(errors.New("broker down")).Once()

	product, err := service.UpdateProduct(ctx, 1, payload)
	assert.NoError(t, err, "publish failures do not fail the update")
	assert.Equal(t, expected, product)

	missing := models.NewProductPayload("NonExistent", 1.0, 1).WithID(99)
	mockRepo.On("Update", ctx, &models.Product{ID: 99, Name: "NonExistent", Price: 1.0, Stock: 1}).Return(notFound(99)).Once()
	_, err = service.UpdateProduct(ctx, 99, missing)
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestProductService_UpdateProduct_Rejected(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, nil, nil)

	_, err := service.UpdateProduct(ctx, 6, nil)
	assert.ErrorIs(t, err, services.ErrMissingPayload)

	_, err = service.UpdateProduct(ctx, 6, models.NewProductPayload("X", 1, 1).WithID(5))
	assert.ErrorIs(t, err, services.ErrIDMismatch)

	_, err = service.UpdateProduct(ctx, 6, models.NewProductPayload("X", 1, 1))
	assert.ErrorIs(t, err, services.ErrIDMismatch, "a payload without id never matches")

	_, err = service.UpdateProduct(ctx, 6, (&models.ProductPayload{}).WithID(6))
	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	publisher := new(MockPublisher)
	service := services.NewProductService(mockRepo, publisher, nil, nil)

	mockRepo.On("Delete", ctx, 1).Return(nil).Once()
	publisher.On("PublishProductEvent", mock.MatchedBy(func(e models.ProductEvent) bool {
		return e.Type == models.ProductDeleted && e.ProductID == 1 && e.Product == nil
	})).Return(nil).Once()
	err := service.DeleteProduct(ctx, 1)
	assert.NoError(t, err)

	mockRepo.On("Delete", ctx, 99).Return(notFound(99)).Once()
	err = service.DeleteProduct(ctx, 99)
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}
