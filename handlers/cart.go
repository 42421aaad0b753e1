package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"storefront-svc/imageurl"
	"storefront-svc/middleware"
	"storefront-svc/models"
	"storefront-svc/upstream"
)

// CartHandler is a thin pass-through: the backend owns the cart, the gateway
// only forwards calls and normalizes image URLs on the way out.
type CartHandler struct {
	api      *upstream.Client
	resolver *imageurl.Resolver
	logger   *zap.Logger
}

func NewCartHandler(api *upstream.Client, resolver *imageurl.Resolver, logger *zap.Logger) *CartHandler {
	return &CartHandler{api: api, resolver: resolver, logger: logger}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "GetCart")
	defer span.End()

	lines, err := h.api.GetCart(ctx, middleware.AuthHeader(c))
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("cart.lines", len(lines)))
	c.JSON(http.StatusOK, h.resolveLines(lines))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "AddCartItem")
	defer span.End()

	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines, err := h.api.AddCartItem(ctx, middleware.AuthHeader(c), req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.resolveLines(lines))
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "UpdateCartItem")
	defer span.End()

	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines, err := h.api.UpdateCartItem(ctx, middleware.AuthHeader(c), productID, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.resolveLines(lines))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "RemoveCartItem")
	defer span.End()

	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	if err := h.api.RemoveCartItem(ctx, middleware.AuthHeader(c), productID); err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "ClearCart")
	defer span.End()

	if err := h.api.ClearCart(ctx, middleware.AuthHeader(c)); err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

func (h *CartHandler) resolveLines(lines []models.CartLine) []models.CartLine {
	resolved := make([]models.CartLine, len(lines))
	for i, line := range lines {
		line.ImageURL = h.resolver.ResolveProduct(line.ImageURL)
		resolved[i] = line
	}
	return resolved
}
