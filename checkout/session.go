// Package checkout implements the staged checkout flow: the cart view stages
// a validated session, the payment view loads it, attaches a proof when the
// payment method needs one, and submits everything to the core API as a
// single multipart order.
package checkout

import (
	"errors"
	"time"

	"storefront-svc/models"
	"storefront-svc/upstream"
)

type PaymentMethod string

const (
	PaymentCOD   PaymentMethod = "cod"
	PaymentQRIS  PaymentMethod = "qris"
	PaymentDana  PaymentMethod = "dana"
	PaymentGopay PaymentMethod = "gopay"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentQRIS, PaymentDana, PaymentGopay:
		return true
	}
	return false
}

// RequiresProof reports whether the method needs an uploaded payment proof.
// Cash on delivery is the only exemption.
func (m PaymentMethod) RequiresProof() bool {
	return m != PaymentCOD
}

type DeliveryOption string

const (
	DeliveryPickup  DeliveryOption = "pickup"
	DeliveryCourier DeliveryOption = "delivery"
)

func (o DeliveryOption) Valid() bool {
	return o == DeliveryPickup || o == DeliveryCourier
}

// Session is the staged, not-yet-submitted snapshot of cart plus
// delivery/payment choices, held in the store between the cart and payment
// views. JSON field names match the browser client's checkoutData object.
type Session struct {
	PaymentMethod         PaymentMethod     `json:"paymentMethod"`
	Items                 []models.CartLine `json:"items"`
	TotalAmount           int64             `json:"totalAmount"`
	DesiredCompletionDate string            `json:"desiredCompletionDate"`
	DeliveryOption        DeliveryOption    `json:"deliveryOption"`
	DeliveryAddress       string            `json:"deliveryAddress,omitempty"`
	PhoneNumber           string            `json:"phoneNumber,omitempty"`
	StagedAt              time.Time         `json:"stagedAt"`
}

// StageRequest is what the cart view's checkout form submits.
type StageRequest struct {
	PaymentMethod         string `json:"paymentMethod" binding:"required"`
	DesiredCompletionDate string `json:"desiredCompletionDate" binding:"required"`
	DeliveryOption        string `json:"deliveryOption" binding:"required"`
	DeliveryAddress       string `json:"deliveryAddress"`
	PhoneNumber           string `json:"phoneNumber"`
}

// ErrNoSession means the payment view was opened with nothing staged
// (direct navigation, or a reload after a successful submission).
var ErrNoSession = errors.New("no checkout data")

// ValidationError is any client-correctable rejection, raised before a
// network call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// IsValidation reports whether err is a client-correctable validation error.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

var (
	ErrEmptyCart             = &ValidationError{"cart is empty"}
	ErrInvalidPaymentMethod  = &ValidationError{"invalid payment method"}
	ErrInvalidDeliveryOption = &ValidationError{"invalid delivery option"}
	ErrInvalidDate           = &ValidationError{"desired completion date is invalid"}
	ErrDateInPast            = &ValidationError{"desired completion date must not be earlier than today"}
	ErrAddressRequired       = &ValidationError{"delivery address is required for delivery orders"}
	ErrPhoneRequired         = &ValidationError{"phone number is required for delivery orders"}
	ErrProofRequired         = &ValidationError{"payment proof is required"}
	ErrProofBadType          = &ValidationError{"payment proof must be a JPEG, PNG, WebP or PDF file"}
	ErrProofTooLarge         = &ValidationError{"payment proof must be smaller than 5 MB"}
	ErrMalformedItems        = &ValidationError{"checkout items are missing or malformed"}
)

// MaxProofSize caps proof uploads at 5 MB.
const MaxProofSize = 5 << 20

var allowedProofTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// ValidateProof checks an uploaded payment proof's type and size. It is used
// both by checkout confirmation and by the standalone proof re-upload.
func ValidateProof(proof *upstream.FileUpload) error {
	if proof == nil {
		return ErrProofRequired
	}
	if !allowedProofTypes[proof.ContentType] {
		return ErrProofBadType
	}
	if len(proof.Content) > MaxProofSize {
		return ErrProofTooLarge
	}
	return nil
}
