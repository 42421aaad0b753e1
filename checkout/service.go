package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"storefront-svc/models"
	"storefront-svc/upstream"
)

const dateLayout = "2006-01-02"

// Publisher emits checkout events after a successful submission. Publishing
// is best-effort: a broker outage never fails an order.
type Publisher interface {
	PublishCheckoutEvent(ctx context.Context, event models.CheckoutEvent) error
}

type Service struct {
	store     Store
	api       *upstream.Client
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(store Store, api *upstream.Client, publisher Publisher, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		api:       api,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Stage validates the checkout form against the user's cart and saves the
// resulting session. Field validation happens before the cart fetch so bad
// input never costs a network call.
func (s *Service) Stage(ctx context.Context, userID int, token string, req StageRequest) (*Session, error) {
	method := PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	option := DeliveryOption(req.DeliveryOption)
	if !option.Valid() {
		return nil, ErrInvalidDeliveryOption
	}

	date, err := time.Parse(dateLayout, req.DesiredCompletionDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	// Compare calendar dates in the server's zone; truncating the instant
	// would resolve "today" to the previous UTC day east of Greenwich.
	y, m, d := s.now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		return nil, ErrDateInPast
	}

	if option == DeliveryCourier {
		if req.DeliveryAddress == "" {
			return nil, ErrAddressRequired
		}
		if req.PhoneNumber == "" {
			return nil, ErrPhoneRequired
		}
	}

	lines, err := s.api.GetCart(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	var total int64
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, ErrMalformedItems
		}
		total += line.Price * int64(line.Quantity)
	}

	session := &Session{
		PaymentMethod:         method,
		Items:                 lines,
		TotalAmount:           total,
		DesiredCompletionDate: req.DesiredCompletionDate,
		DeliveryOption:        option,
		DeliveryAddress:       req.DeliveryAddress,
		PhoneNumber:           req.PhoneNumber,
		StagedAt:              s.now(),
	}

	if err := s.store.Save(ctx, userID, session); err != nil {
		return nil, fmt.Errorf("stage checkout: %w", err)
	}

	s.logger.Info("Checkout staged",
		zap.Int("user_id", userID),
		zap.String("payment_method", string(method)),
		zap.Int64("total_amount", total),
		zap.Int("items", len(lines)),
	)
	return session, nil
}

// Staged returns the pending session, or ErrNoSession so the payment view
// can show its explicit "no checkout data" state.
func (s *Service) Staged(ctx context.Context, userID int) (*Session, error) {
	return s.store.Load(ctx, userID)
}

// Confirm submits the staged session as one multipart order. On success the
// session is cleared exactly once and the upstream cart clear plus the event
// publish are best-effort. On failure the session stays staged so the user
// can retry by resubmitting.
func (s *Service) Confirm(ctx context.Context, userID int, token string, proof *upstream.FileUpload) (*models.Order, error) {
	session, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if session.PaymentMethod.RequiresProof() || proof != nil {
		if err := ValidateProof(proof); err != nil {
			return nil, err
		}
	}

	if len(session.Items) == 0 {
		return nil, ErrMalformedItems
	}
	for _, item := range session.Items {
		if item.ProductID <= 0 || item.Quantity < 1 || item.Price < 0 {
			return nil, ErrMalformedItems
		}
	}

	itemsJSON, err := json.Marshal(session.Items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}

	fields := map[string]string{
		"items":                   string(itemsJSON),
		"payment_method":          string(session.PaymentMethod),
		"total_amount":            strconv.FormatInt(session.TotalAmount, 10),
		"desired_completion_date": session.DesiredCompletionDate,
		"delivery_option":         string(session.DeliveryOption),
	}
	if session.DeliveryOption == DeliveryCourier {
		fields["delivery_address"] = session.DeliveryAddress
		fields["phone_number"] = session.PhoneNumber
	}

	order, err := s.api.CreateOrder(ctx, token, fields, proof)
	if err != nil {
		return nil, err
	}

	if err := s.store.Clear(ctx, userID); err != nil {
		s.logger.Error("Failed to clear staged checkout after submission",
			zap.Int("user_id", userID), zap.Error(err))
	}

	// No compensation if this fails: the order exists and the next cart view
	// refresh self-corrects. Known inconsistency window.
	if err := s.api.ClearCart(ctx, token); err != nil {
		s.logger.Warn("Cart not cleared after order submission",
			zap.Int("user_id", userID), zap.Int("order_id", order.ID), zap.Error(err))
	}

	if s.publisher != nil {
		event := models.CheckoutEvent{
			OrderID:       order.ID,
			UserID:        userID,
			PaymentMethod: string(session.PaymentMethod),
			TotalAmount:   session.TotalAmount,
			EventType:     "checkout_submitted",
		}
		if err := s.publisher.PublishCheckoutEvent(ctx, event); err != nil {
			s.logger.Error("Failed to publish checkout event", zap.Error(err))
		}
	}

	s.logger.Info("Order submitted",
		zap.Int("user_id", userID),
		zap.Int("order_id", order.ID),
		zap.String("payment_method", string(session.PaymentMethod)),
	)
	return order, nil
}
