package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"storefront-svc/cache"
	"storefront-svc/imageurl"
	"storefront-svc/middleware"
	"storefront-svc/models"
	"storefront-svc/upstream"
)

type ProductHandler struct {
	api      *upstream.Client
	cache    *cache.ProductCache
	resolver *imageurl.Resolver
	logger   *zap.Logger
}

func NewProductHandler(api *upstream.Client, productCache *cache.ProductCache, resolver *imageurl.Resolver, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		api:      api,
		cache:    productCache,
		resolver: resolver,
		logger:   logger,
	}
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "GetProducts")
	defer span.End()

	token := c.GetHeader("Authorization")
	limit, _ := strconv.Atoi(c.Query("limit"))
	featured := c.Query("featured") == "true"
	admin := c.Query("admin") == "true"

	fetch := func(ctx context.Context) ([]models.Product, error) {
		return h.api.ListProducts(ctx, token, upstream.ProductQuery{
			Limit:    limit,
			Featured: featured,
			Admin:    admin,
		})
	}

	var products []models.Product
	var err error
	switch {
	case admin:
		// Admin listings bypass the cache: the back office always sees
		// exactly what the backend holds.
		products, err = fetch(ctx)
	case featured:
		products, err = h.cache.GetFeatured(ctx, limit, fetch)
	case limit > 0:
		// A truncated listing must never occupy the full-catalog slot.
		products, err = fetch(ctx)
	default:
		products, err = h.cache.GetAll(ctx, fetch)
	}
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to fetch products", zap.Error(err))
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("products.count", len(products)))
	c.JSON(http.StatusOK, h.resolveProducts(products))
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "GetProduct")
	defer span.End()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}
	span.SetAttributes(attribute.Int("product.id", id))

	token := c.GetHeader("Authorization")
	product, err := h.cache.GetByID(ctx, id, func(ctx context.Context) (*models.Product, error) {
		return h.api.GetProduct(ctx, token, id)
	})
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	resolved := *product
	resolved.ImageURL = h.resolver.ResolveProduct(resolved.ImageURL)
	c.JSON(http.StatusOK, resolved)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "CreateProduct")
	defer span.End()

	fields, image, err := h.productForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.api.CreateProduct(ctx, middleware.AuthHeader(c), fields, image)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to create product", zap.Error(err))
		respondError(c, err)
		return
	}

	h.cache.InvalidateList()
	h.logger.Info("Product created", zap.Int("product_id", product.ID))
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "UpdateProduct")
	defer span.End()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}
	span.SetAttributes(attribute.Int("product.id", id))

	fields, image, err := h.productForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.api.UpdateProduct(ctx, middleware.AuthHeader(c), id, fields, image)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to update product", zap.Error(err))
		respondError(c, err)
		return
	}

	h.cache.InvalidateProduct(id)
	h.logger.Info("Product updated", zap.Int("product_id", id))
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "DeleteProduct")
	defer span.End()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	if err := h.api.DeleteProduct(ctx, middleware.AuthHeader(c), id); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to delete product", zap.Error(err))
		respondError(c, err)
		return
	}

	h.cache.InvalidateProduct(id)
	h.logger.Info("Product deleted", zap.Int("product_id", id))
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// productForm extracts the admin form fields and optional image file for
// pass-through to the core API.
func (h *ProductHandler) productForm(c *gin.Context) (map[string]string, *upstream.FileUpload, error) {
	fields := make(map[string]string)
	for _, name := range []string{"name", "description", "price", "catalog_id", "featured"} {
		if value := c.PostForm(name); value != "" {
			fields[name] = value
		}
	}

	fileHeader, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		// Updates without a new image keep the existing one.
		return fields, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, err
	}

	return fields, &upstream.FileUpload{
		Field:       "image",
		Name:        fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

func (h *ProductHandler) resolveProducts(products []models.Product) []models.Product {
	resolved := make([]models.Product, len(products))
	for i, p := range products {
		p.ImageURL = h.resolver.ResolveProduct(p.ImageURL)
		resolved[i] = p
	}
	return resolved
}
