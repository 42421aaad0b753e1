package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"storefront-svc/checkout"
	"storefront-svc/middleware"
	"storefront-svc/upstream"
)

type CheckoutHandler struct {
	svc    *checkout.Service
	logger *zap.Logger
}

func NewCheckoutHandler(svc *checkout.Service, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, logger: logger}
}

// Stage handles the cart view's checkout form: validate, snapshot the cart,
// and park the session for the payment view.
func (h *CheckoutHandler) Stage(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "StageCheckout")
	defer span.End()

	var req checkout.StageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.svc.Stage(ctx, middleware.UserID(c), middleware.AuthHeader(c), req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("checkout.payment_method", string(session.PaymentMethod)),
		attribute.Int64("checkout.total_amount", session.TotalAmount),
	)
	middleware.RecordCheckoutStaged()
	c.JSON(http.StatusCreated, session)
}

// GetStaged backs the payment view. A 404 here tells the client to show its
// "no checkout data" state and navigate back to the cart.
func (h *CheckoutHandler) GetStaged(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "GetStagedCheckout")
	defer span.End()

	session, err := h.svc.Staged(ctx, middleware.UserID(c))
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Confirm submits the staged checkout, with an optional paymentProof file
// part for non-COD methods.
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	ctx, span := otel.Tracer("storefront").Start(c.Request.Context(), "ConfirmCheckout")
	defer span.End()

	proof, err := h.proofUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.svc.Confirm(ctx, middleware.UserID(c), middleware.AuthHeader(c), proof)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("order.id", order.ID))
	middleware.RecordOrderSubmitted(order.PaymentMethod)
	c.JSON(http.StatusCreated, order)
}

// proofUpload reads the optional paymentProof file part. Absence is not an
// error here; the service decides whether the payment method requires it.
func (h *CheckoutHandler) proofUpload(c *gin.Context) (*upstream.FileUpload, error) {
	fileHeader, err := c.FormFile("paymentProof")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		// No multipart body at all counts as no file; COD confirms can be
		// an empty POST.
		return nil, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// Read one byte past the cap so the service can reject oversized files
	// without the gateway buffering them whole.
	content, err := io.ReadAll(io.LimitReader(file, checkout.MaxProofSize+1))
	if err != nil {
		return nil, err
	}

	return &upstream.FileUpload{
		Field:       "paymentProof",
		Name:        fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}
