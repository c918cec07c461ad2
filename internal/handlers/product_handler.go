package handlers

import (
	"strconv"

	"inventory/internal/logger"
	"inventory/internal/models"
	"inventory/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Location values sent with create and update responses. Clients treat them as
// status labels, not as resource URLs.
const (
	createdLocation = "ADD SUCCESS"
	editedLocation  = "EDIT SUCCESS"
	deletedMessage  = "DELETE SUCCESS"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	log     *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the product routes, guarded by the given middleware.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	productRoutes := router.Group("/products", guards...)
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts returns all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return writeProductError(c, h.log, err)
	}
	return c.JSON(products)
}

// HandleGetProductByID returns a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, ok := parseProductID(c)
	if !ok {
		return invalidID(c)
	}

	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return writeProductError(c, h.log, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct stores a new product and answers 201 with the stored entity.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	payload, err := parsePayload(c)
	if err != nil {
		return invalidBody(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), payload)
	if err != nil {
		return writeProductError(c, h.log, err)
	}

	logger.FromCtx(c, h.log).Info("Product created",
		zap.Int("product_id", product.ID),
		zap.String("name", product.Name))
	c.Set(fiber.HeaderLocation, createdLocation)
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces a product and answers 202 with the new state.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok := parseProductID(c)
	if !ok {
		return invalidID(c)
	}

	payload, err := parsePayload(c)
	if err != nil {
		return invalidBody(c, err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, payload)
	if err != nil {
		return writeProductError(c, h.log, err)
	}

	logger.FromCtx(c, h.log).Info("Product updated", zap.Int("product_id", id))
	c.Set(fiber.HeaderLocation, editedLocation)
	return c.Status(fiber.StatusAccepted).JSON(product)
}

// HandleDeleteProduct removes a product and answers with a plain text confirmation.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok := parseProductID(c)
	if !ok {
		return invalidID(c)
	}

	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return writeProductError(c, h.log, err)
	}

	logger.FromCtx(c, h.log).Info("Product deleted", zap.Int("product_id", id))
	c.Type("txt")
	return c.Status(fiber.StatusOK).SendString(deletedMessage)
}

func parseProductID(c *fiber.Ctx) (int, bool) {
	id, err := strconv.Atoi(c.Params("id"))
	return id, err == nil
}

// parsePayload returns nil for an empty body or a JSON null.
func parsePayload(c *fiber.Ctx) (*models.ProductPayload, error) {
	if len(c.Body()) == 0 {
		return nil, nil
	}
	var payload *models.ProductPayload
	if err := c.BodyParser(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid product ID format",
	})
}

func invalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
