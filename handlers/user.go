package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"storefront-svc/middleware"
	"storefront-svc/upstream"
)

type UserHandler struct {
	api    *upstream.Client
	logger *zap.Logger
}

func NewUserHandler(api *upstream.Client, logger *zap.Logger) *UserHandler {
	return &UserHandler{api: api, logger: logger}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "ListUsers")
	defer span.End()

	users, err := h.api.ListUsers(ctx, middleware.AuthHeader(c))
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("users.count", len(users)))
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "DeleteUser")
	defer span.End()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := h.api.DeleteUser(ctx, middleware.AuthHeader(c), id); err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	h.logger.Info("User deleted", zap.Int("user_id", id))
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
