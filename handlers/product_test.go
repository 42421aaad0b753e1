package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"storefront-svc/cache"
	"storefront-svc/imageurl"
	"storefront-svc/middleware"
	"storefront-svc/models"
	"storefront-svc/upstream"
)

type productBackend struct {
	mu         sync.Mutex
	listCalls  int
	getCalls   int
	products   []models.Product
	updateName string
}

func (b *productBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/products":
			b.listCalls++
			list := b.products
			if n, _ := strconv.Atoi(r.URL.Query().Get("limit")); n > 0 && n < len(list) {
				list = list[:n]
			}
			json.NewEncoder(w).Encode(list)
		case r.Method == http.MethodGet && r.URL.Path == "/products/1":
			b.getCalls++
			p := b.products[0]
			if b.updateName != "" {
				p.Name = b.updateName
			}
			json.NewEncoder(w).Encode(p)
		case r.Method == http.MethodPut && r.URL.Path == "/products/1":
			r.ParseMultipartForm(10 << 20)
			b.updateName = r.FormValue("name")
			p := b.products[0]
			p.Name = b.updateName
			json.NewEncoder(w).Encode(p)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
		}
	}
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func fakeAuth(userID int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextAuthHeader, "Bearer test-token")
		c.Set(middleware.ContextIsAdmin, true)
		c.Next()
	}
}

func setupProductTest(t *testing.T, backend *productBackend) (*gin.Engine, *testClock) {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	clock := &testClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	api := upstream.NewClient(srv.URL, 5*time.Second, zaptest.NewLogger(t))
	productCache := cache.NewProductCache(5*time.Minute, clock.Now)
	resolver := imageurl.NewResolver("http://localhost:5000")
	handler := NewProductHandler(api, productCache, resolver, zaptest.NewLogger(t))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/products", handler.GetProducts)
	router.GET("/products/:id", handler.GetProduct)
	router.PUT("/products/:id", fakeAuth(1), handler.UpdateProduct)
	return router, clock
}

func TestGetProducts_CacheTTL(t *testing.T) {
	backend := &productBackend{products: []models.Product{{ID: 1, Name: "Risoles", ImageURL: "uploads/products/risoles.png"}}}
	router, clock := setupProductTest(t, backend)

	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/products", nil))
		return w
	}

	if w := get(); w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	// Second read inside the TTL hits the cache: zero additional fetches.
	clock.Advance(4 * time.Minute)
	get()
	if backend.listCalls != 1 {
		t.Errorf("Expected 1 upstream list call, got %d", backend.listCalls)
	}

	// Past the TTL: exactly one more.
	clock.Advance(2 * time.Minute)
	get()
	if backend.listCalls != 2 {
		t.Errorf("Expected 2 upstream list calls, got %d", backend.listCalls)
	}
}

func TestGetProducts_LimitedListDoesNotPoisonCache(t *testing.T) {
	backend := &productBackend{products: []models.Product{{ID: 1}, {ID: 2}, {ID: 3}}}
	router, _ := setupProductTest(t, backend)

	get := func(path string) []models.Product {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s: expected status %d, got %d", path, http.StatusOK, w.Code)
		}
		var got []models.Product
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("GET %s: failed to decode response: %v", path, err)
		}
		return got
	}

	if limited := get("/products?limit=1"); len(limited) != 1 {
		t.Fatalf("Expected 1 product with limit=1, got %d", len(limited))
	}

	// The truncated response must not have been cached as the full catalog.
	if full := get("/products"); len(full) != 3 {
		t.Errorf("Expected the full catalog of 3 products, got %d", len(full))
	}
	if backend.listCalls != 2 {
		t.Errorf("Expected 2 upstream list calls, got %d", backend.listCalls)
	}

	// The full list now owns the cache slot.
	if full := get("/products"); len(full) != 3 {
		t.Errorf("Expected 3 cached products, got %d", len(full))
	}
	if backend.listCalls != 2 {
		t.Errorf("Expected the cached full list to serve the repeat read, got %d calls", backend.listCalls)
	}
}

func TestGetProducts_ResolvesImageURLs(t *testing.T) {
	backend := &productBackend{products: []models.Product{{ID: 1, ImageURL: "uploads/products/risoles.png"}}}
	router, _ := setupProductTest(t, backend)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/products", nil))

	var got []models.Product
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	want := "http://localhost:5000/product_images/risoles.png"
	if got[0].ImageURL != want {
		t.Errorf("Expected image url %q, got %q", want, got[0].ImageURL)
	}
}

func TestUpdateProduct_InvalidatesDetailCache(t *testing.T) {
	backend := &productBackend{products: []models.Product{{ID: 1, Name: "Risoles"}}}
	router, _ := setupProductTest(t, backend)

	// Prime the per-id cache.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/products/1", nil))
	if backend.getCalls != 1 {
		t.Fatalf("Expected 1 upstream get call, got %d", backend.getCalls)
	}

	// Admin renames the product.
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	form.WriteField("name", "Risoles Mayo")
	form.Close()
	req := httptest.NewRequest("PUT", "/products/1", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	// The next detail read must refetch and see the new name.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/products/1", nil))
	var got models.Product
	json.Unmarshal(w.Body.Bytes(), &got)
	if got.Name != "Risoles Mayo" {
		t.Errorf("Expected post-update name, got %q", got.Name)
	}
	if backend.getCalls != 2 {
		t.Errorf("Expected 2 upstream get calls after invalidation, got %d", backend.getCalls)
	}
}

func TestGetProducts_UpstreamErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"maintenance"}`))
	}))
	defer srv.Close()

	api := upstream.NewClient(srv.URL, 5*time.Second, zaptest.NewLogger(t))
	handler := NewProductHandler(api,
		cache.NewProductCache(5*time.Minute, time.Now),
		imageurl.NewResolver("http://localhost:5000"),
		zaptest.NewLogger(t))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/products", handler.GetProducts)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/products", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
	if body := w.Body.String(); !bytes.Contains([]byte(body), []byte("maintenance")) {
		t.Errorf("Expected upstream message in body, got %s", body)
	}
}
