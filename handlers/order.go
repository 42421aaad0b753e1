package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"storefront-svc/checkout"
	"storefront-svc/imageurl"
	"storefront-svc/middleware"
	"storefront-svc/models"
	"storefront-svc/upstream"
)

type OrderHandler struct {
	api      *upstream.Client
	resolver *imageurl.Resolver
	logger   *zap.Logger
}

func NewOrderHandler(api *upstream.Client, resolver *imageurl.Resolver, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{api: api, resolver: resolver, logger: logger}
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "ListOrders")
	defer span.End()

	filter := upstream.OrderFilter{
		StartDate:     c.Query("startDate"),
		EndDate:       c.Query("endDate"),
		PaymentStatus: c.Query("paymentStatus"),
		OrderStatus:   c.Query("orderStatus"),
	}

	orders, err := h.api.ListOrders(ctx, middleware.AuthHeader(c), filter)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	for i := range orders {
		h.resolveOrder(&orders[i])
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "GetOrder")
	defer span.End()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}
	span.SetAttributes(attribute.Int("order.id", id))

	order, err := h.api.GetOrder(ctx, middleware.AuthHeader(c), id)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	h.resolveOrder(order)
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "CancelOrder")
	defer span.End()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := h.api.CancelOrder(ctx, middleware.AuthHeader(c), id)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	h.logger.Info("Order cancelled", zap.Int("order_id", id))
	h.resolveOrder(order)
	c.JSON(http.StatusOK, order)
}

// UploadProof lets a customer attach or replace the payment proof on an
// existing order, under the same file rules as checkout confirmation.
func (h *OrderHandler) UploadProof(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "UploadProof")
	defer span.End()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	proof, err := h.proofUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := h.api.UploadProof(ctx, middleware.AuthHeader(c), id, proof)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	h.logger.Info("Payment proof uploaded", zap.Int("order_id", id))
	h.resolveOrder(order)
	c.JSON(http.StatusOK, order)
}

// AdminUpdateStatus applies the combined order/payment/comment update, then
// re-fetches the order in full so the response reflects exactly what the
// backend persisted, never an optimistic merge.
func (h *OrderHandler) AdminUpdateStatus(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "AdminUpdateOrderStatus")
	defer span.End()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}
	span.SetAttributes(attribute.Int("order.id", id))

	var req models.AdminOrderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.OrderStatus.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
		return
	}
	if !req.PaymentStatus.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment status"})
		return
	}

	token := middleware.AuthHeader(c)
	if err := h.api.AdminUpdateOrder(ctx, token, id, req); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to update order status", zap.Int("order_id", id), zap.Error(err))
		respondError(c, err)
		return
	}

	order, err := h.api.GetOrder(ctx, token, id)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	h.logger.Info("Order updated by admin",
		zap.Int("order_id", id),
		zap.String("order_status", string(req.OrderStatus)),
		zap.String("payment_status", string(req.PaymentStatus)),
	)
	h.resolveOrder(order)
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) proofUpload(c *gin.Context) (*upstream.FileUpload, error) {
	fileHeader, err := c.FormFile("paymentProof")
	if err != nil {
		// Unlike checkout confirmation, this endpoint exists only to attach
		// a proof, so a missing file part is always a rejection.
		return nil, checkout.ErrProofRequired
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, checkout.MaxProofSize+1))
	if err != nil {
		return nil, err
	}

	proof := &upstream.FileUpload{
		Field:       "paymentProof",
		Name:        fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	}
	if err := checkout.ValidateProof(proof); err != nil {
		return nil, err
	}
	return proof, nil
}

func (h *OrderHandler) resolveOrder(order *models.Order) {
	order.PaymentProofURL = h.resolver.ResolveProof(order.PaymentProofURL)
	for i := range order.Items {
		order.Items[i].ImageURL = h.resolver.ResolveProduct(order.Items[i].ImageURL)
	}
}
