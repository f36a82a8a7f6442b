package handler

import (
	"errors"
	"net/http"
	"strconv"

	"storefront-admin/internal/core/logger"
	"storefront-admin/internal/features/catalog/domain"
	"storefront-admin/internal/features/catalog/ports"
	"storefront-admin/internal/features/catalog/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CatalogHandler handles HTTP requests for products and catalog attributes.
type CatalogHandler struct {
	// service proxies catalog administration to the remote platform.
	service *service.CatalogService
}

// NewCatalogHandler creates a new instance of CatalogHandler.
func NewCatalogHandler(s *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service: s,
	}
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

// ListProducts handles GET /products.
// @Summary List products
// @Tags Catalog
// @Produce json
// @Param search query string false "Free-text search term"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20)"
// @Success 200 {object} domain.ProductPage
// @Failure 502 {object} ErrorResponse
// @Router /products [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	filter := domain.ProductFilter{
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}

	page, err := h.service.ListProducts(c.Context(), filter)
	if err != nil {
		return h.fail(c, "list products", err)
	}

	return c.Status(http.StatusOK).JSON(page)
}

// GetProduct handles GET /products/{id}.
// @Summary Get product by ID
// @Tags Catalog
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} ErrorResponse
// @Router /products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "get product", err)
	}

	return c.Status(http.StatusOK).JSON(product)
}

// CreateProduct handles POST /products.
// @Summary Create a product
// @Tags Catalog
// @Accept json
// @Produce json
// @Param body body domain.Product true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /products [post]
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var product domain.Product
	if err := c.BodyParser(&product); err != nil {
		return h.badRequest(c, "invalid request body")
	}

	created, err := h.service.CreateProduct(c.Context(), &product)
	if err != nil {
		return h.fail(c, "create product", err)
	}

	return c.Status(http.StatusCreated).JSON(created)
}

// UpdateProduct handles PUT /products/{id}.
// @Summary Update a product
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param body body domain.Product true "Product"
// @Success 200 {object} domain.Product
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	var product domain.Product
	if err := c.BodyParser(&product); err != nil {
		return h.badRequest(c, "invalid request body")
	}

	updated, err := h.service.UpdateProduct(c.Context(), c.Params("id"), &product)
	if err != nil {
		return h.fail(c, "update product", err)
	}

	return c.Status(http.StatusOK).JSON(updated)
}

// DeleteProduct handles DELETE /products/{id}.
// @Summary Delete a product
// @Tags Catalog
// @Produce json
// @Param id path string true "Product ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /products/{id} [delete]
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, "delete product", err)
	}

	return c.SendStatus(http.StatusNoContent)
}

// ListAttributes handles GET /catalog/{resource}.
// @Summary List attribute values
// @Tags Catalog
// @Produce json
// @Param resource path string true "categories, brands, colors or sizes"
// @Success 200 {array} domain.Attribute
// @Failure 400 {object} ErrorResponse
// @Router /catalog/{resource} [get]
func (h *CatalogHandler) ListAttributes(c *fiber.Ctx) error {
	attrs, err := h.service.ListAttributes(c.Context(), c.Params("resource"))
	if err != nil {
		return h.fail(c, "list attributes", err)
	}

	return c.Status(http.StatusOK).JSON(attrs)
}

// CreateAttribute handles POST /catalog/{resource}.
// @Summary Create an attribute value
// @Tags Catalog
// @Accept json
// @Produce json
// @Param resource path string true "categories, brands, colors or sizes"
// @Param body body domain.Attribute true "Attribute"
// @Success 201 {object} domain.Attribute
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /catalog/{resource} [post]
func (h *CatalogHandler) CreateAttribute(c *fiber.Ctx) error {
	var attr domain.Attribute
	if err := c.BodyParser(&attr); err != nil {
		return h.badRequest(c, "invalid request body")
	}

	created, err := h.service.CreateAttribute(c.Context(), c.Params("resource"), &attr)
	if err != nil {
		return h.fail(c, "create attribute", err)
	}

	return c.Status(http.StatusCreated).JSON(created)
}

// UpdateAttribute handles PUT /catalog/{resource}/{id}.
// @Summary Rename an attribute value
// @Tags Catalog
// @Accept json
// @Produce json
// @Param resource path string true "categories, brands, colors or sizes"
// @Param id path string true "Attribute ID"
// @Param body body domain.Attribute true "Attribute"
// @Success 200 {object} domain.Attribute
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /catalog/{resource}/{id} [put]
func (h *CatalogHandler) UpdateAttribute(c *fiber.Ctx) error {
	var attr domain.Attribute
	if err := c.BodyParser(&attr); err != nil {
		return h.badRequest(c, "invalid request body")
	}

	updated, err := h.service.UpdateAttribute(c.Context(), c.Params("resource"), c.Params("id"), &attr)
	if err != nil {
		return h.fail(c, "update attribute", err)
	}

	return c.Status(http.StatusOK).JSON(updated)
}

// DeleteAttribute handles DELETE /catalog/{resource}/{id}.
// @Summary Delete an attribute value
// @Tags Catalog
// @Produce json
// @Param resource path string true "categories, brands, colors or sizes"
// @Param id path string true "Attribute ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /catalog/{resource}/{id} [delete]
func (h *CatalogHandler) DeleteAttribute(c *fiber.Ctx) error {
	if err := h.service.DeleteAttribute(c.Context(), c.Params("resource"), c.Params("id")); err != nil {
		return h.fail(c, "delete attribute", err)
	}

	return c.SendStatus(http.StatusNoContent)
}

// badRequest writes a 400 with the given message.
func (h *CatalogHandler) badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID(c),
	})
}

// fail maps service and remote errors to HTTP responses.
func (h *CatalogHandler) fail(c *fiber.Ctx, action string, err error) error {
	status := http.StatusBadGateway
	msg := "Upstream commerce API unavailable"

	switch {
	case errors.Is(err, service.ErrUnknownResource):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, service.ErrNameRequired):
		status = http.StatusUnprocessableEntity
		msg = err.Error()
	case errors.Is(err, ports.ErrNotFound):
		status = http.StatusNotFound
		msg = "Catalog entry not found"
	default:
		if rej, ok := ports.IsRejection(err); ok {
			status = rej.StatusCode
			msg = rej.Message
		}
	}

	if status >= 500 {
		logger.Get().Error("Catalog action failed",
			zap.String("action", action),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
	}

	return c.Status(status).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID(c),
	})
}

// rayID returns the request id set by the requestid middleware.
func rayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return id
}

// queryInt parses an int query parameter with a default.
func queryInt(c *fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
