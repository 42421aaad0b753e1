package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"storefront-svc/middleware"
	"storefront-svc/models"
	"storefront-svc/upstream"
)

type CatalogHandler struct {
	api    *upstream.Client
	logger *zap.Logger
}

func NewCatalogHandler(api *upstream.Client, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{api: api, logger: logger}
}

func (h *CatalogHandler) GetCatalogs(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "GetCatalogs")
	defer span.End()

	catalogs, err := h.api.ListCatalogs(ctx, c.GetHeader("Authorization"))
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogs)
}

func (h *CatalogHandler) CreateCatalog(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "CreateCatalog")
	defer span.End()

	var req models.CatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	catalog, err := h.api.CreateCatalog(ctx, middleware.AuthHeader(c), req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	h.logger.Info("Catalog created", zap.Int("catalog_id", catalog.ID))
	c.JSON(http.StatusCreated, catalog)
}

func (h *CatalogHandler) UpdateCatalog(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "UpdateCatalog")
	defer span.End()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid catalog ID"})
		return
	}

	var req models.CatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	catalog, err := h.api.UpdateCatalog(ctx, middleware.AuthHeader(c), id, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalog)
}

func (h *CatalogHandler) DeleteCatalog(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "DeleteCatalog")
	defer span.End()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid catalog ID"})
		return
	}

	if err := h.api.DeleteCatalog(ctx, middleware.AuthHeader(c), id); err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Catalog deleted successfully"})
}
