package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"

	"storefront-svc/checkout"
	"storefront-svc/models"
	"storefront-svc/upstream"
)

type checkoutBackend struct {
	mu         sync.Mutex
	cart       []models.CartLine
	orderPosts int
	cartClears int
}

func (b *checkoutBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/cart":
			json.NewEncoder(w).Encode(b.cart)
		case r.Method == http.MethodPost && r.URL.Path == "/orders":
			b.orderPosts++
			json.NewEncoder(w).Encode(models.Order{ID: 42, PaymentMethod: "cod", TotalAmount: 50000})
		case r.Method == http.MethodDelete && r.URL.Path == "/cart":
			b.cartClears++
			w.Write([]byte(`{"message":"cleared"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
		}
	}
}

type noopPublisher struct{}

func (noopPublisher) PublishCheckoutEvent(ctx context.Context, event models.CheckoutEvent) error {
	return nil
}

func setupCheckoutTest(t *testing.T, backend *checkoutBackend) *gin.Engine {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	api := upstream.NewClient(srv.URL, 5*time.Second, zaptest.NewLogger(t))
	svcStore := checkout.NewMemoryStore()
	svc := checkout.NewService(svcStore, api, noopPublisher{}, zaptest.NewLogger(t))
	handler := NewCheckoutHandler(svc, zaptest.NewLogger(t))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(fakeAuth(1))
	router.POST("/checkout", handler.Stage)
	router.GET("/checkout", handler.GetStaged)
	router.POST("/checkout/confirm", handler.Confirm)
	return router
}

func stageBody(t *testing.T) string {
	t.Helper()
	date := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	return `{"paymentMethod":"cod","desiredCompletionDate":"` + date + `","deliveryOption":"pickup"}`
}

func TestCheckoutFlow_StageThenConfirm(t *testing.T) {
	backend := &checkoutBackend{cart: []models.CartLine{{ProductID: 1, Name: "Risoles", Price: 25000, Quantity: 2}}}
	router := setupCheckoutTest(t, backend)

	req := httptest.NewRequest("POST", "/checkout", strings.NewReader(stageBody(t)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d staging, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var session checkout.Session
	if err := json.Unmarshal(w.Body.Bytes(), &session); err != nil {
		t.Fatalf("Failed to decode session: %v", err)
	}
	if session.TotalAmount != 50000 {
		t.Errorf("Expected total 50000, got %d", session.TotalAmount)
	}

	// The payment view reads the session back.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/checkout", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d reading staged session, got %d", http.StatusOK, w.Code)
	}

	// COD confirm is an empty POST, no proof attached.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/checkout/confirm", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d confirming, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	if backend.orderPosts != 1 {
		t.Errorf("Expected 1 order submission, got %d", backend.orderPosts)
	}
	if backend.cartClears != 1 {
		t.Errorf("Expected the cart to be cleared once, got %d", backend.cartClears)
	}

	// The session is one-shot: a reload of the payment view gets a 404.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/checkout", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d after confirmation, got %d", http.StatusNotFound, w.Code)
	}
}

func TestConfirm_WithoutStagedSession(t *testing.T) {
	backend := &checkoutBackend{}
	router := setupCheckoutTest(t, backend)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/checkout/confirm", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusNotFound, w.Code, w.Body.String())
	}
	if backend.orderPosts != 0 {
		t.Errorf("Expected no order submission, got %d", backend.orderPosts)
	}
}

func TestGetStaged_MissingSessionRecordedOnSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	router := setupCheckoutTest(t, &checkoutBackend{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/checkout", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}

	var recorded bool
	for _, span := range recorder.Ended() {
		if span.Name() != "GetStagedCheckout" {
			continue
		}
		for _, event := range span.Events() {
			if event.Name == "exception" {
				recorded = true
			}
		}
	}
	if !recorded {
		t.Error("Expected the missing-session error to be recorded on the span")
	}
}

func TestStage_ValidationErrorIs400(t *testing.T) {
	backend := &checkoutBackend{cart: []models.CartLine{{ProductID: 1, Price: 1000, Quantity: 1}}}
	router := setupCheckoutTest(t, backend)

	body := `{"paymentMethod":"wire","desiredCompletionDate":"2030-01-01","deliveryOption":"pickup"}`
	req := httptest.NewRequest("POST", "/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
	}
}
