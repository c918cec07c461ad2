package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory/internal/metrics"
	"inventory/internal/models"
	"inventory/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// EventPublisher delivers product change notifications, e.g. to RabbitMQ.
type EventPublisher interface {
	PublishProductEvent(event models.ProductEvent) error
}

// ProductService handles the product operations exposed by the API.
type ProductService struct {
	repo      repositories.ProductRepository
	validate  *validator.Validate
	publisher EventPublisher
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// NewProductService creates a new ProductService. publisher and m may be nil.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, m *metrics.Metrics, log *zap.Logger) *ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductService{
		repo:      repo,
		validate:  newValidator(),
		publisher: publisher,
		metrics:   m,
		log:       log,
	}
}

// GetAllProducts returns every product in storage order. The result is never nil.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	s.metrics.RecordProductOperation("list", err)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// GetProductByID returns the product with the given id or ErrProductNotFound.
func (s *ProductService) GetProductByID(ctx context.Context, id int) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	s.metrics.RecordProductOperation("get", err)
	if err != nil {
		return nil, translateNotFound(err, id)
	}
	return product, nil
}

// CreateProduct validates the payload and stores it. Any id in the payload is ignored.
func (s *ProductService) CreateProduct(ctx context.Context, payload *models.ProductPayload) (*models.Product, error) {
	if payload == nil {
		return nil, ErrMissingPayload
	}
	if err := s.validate.Struct(payload); err != nil {
		return nil, toValidationError(err)
	}

	product := payload.ToProduct()
	product.ID = 0
	err := s.repo.Create(ctx, &product)
	s.metrics.RecordProductOperation("create", err)
	if err != nil {
		return nil, err
	}

	s.publish(models.ProductCreated, product.ID, &product)
	return &product, nil
}

// UpdateProduct replaces the product stored under id. The payload must carry the
// same id; a missing product is reported as ErrProductNotFound, never created.
func (s *ProductService) UpdateProduct(ctx context.Context, id int, payload *models.ProductPayload) (*models.Product, error) {
	if payload == nil {
		return nil, ErrMissingPayload
	}
	if payload.ID == nil || *payload.ID != id {
		return nil, ErrIDMismatch
	}
	if err := s.validate.Struct(payload); err != nil {
		return nil, toValidationError(err)
	}

	product := payload.ToProduct()
	err := s.repo.Update(ctx, &product)
	s.metrics.RecordProductOperation("update", err)
	if err != nil {
		return nil, translateNotFound(err, id)
	}

	s.publish(models.ProductUpdated, product.ID, &product)
	return &product, nil
}

// DeleteProduct removes the product with the given id.
func (s *ProductService) DeleteProduct(ctx context.Context, id int) error {
	err := s.repo.Delete(ctx, id)
	s.metrics.RecordProductOperation("delete", err)
	if err != nil {
		return translateNotFound(err, id)
	}

	s.publish(models.ProductDeleted, id, nil)
	return nil
}

// publish is best effort: the change is already stored, so failures are only logged.
func (s *ProductService) publish(eventType models.ProductEventType, id int, product *models.Product) {
	if s.publisher == nil {
		return
	}
	event := models.ProductEvent{
		Type:       eventType,
		ProductID:  id,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishProductEvent(event); err != nil {
		s.log.Warn("Failed to publish product event",
			zap.String("type", string(eventType)),
			zap.Int("product_id", id),
			zap.Error(err))
	}
}

func translateNotFound(err error, id int) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: id %d", ErrProductNotFound, id)
	}
	return err
}
