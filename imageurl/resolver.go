package imageurl

import (
	"strings"
	"sync"
)

const productPathPrefix = "/product_images/"

// Resolver rewrites the backend's inconsistent image path fragments into
// absolute URLs. The backend stores product images under several historical
// conventions (absolute URLs, bare filenames, paths with or without an
// uploads/products/ segment), so every outbound payload goes through here.
type Resolver struct {
	origin string

	mu    sync.Mutex
	cache map[string]string
}

// NewResolver builds a resolver rooted at the backend's static-file origin
// (the API origin without its /api suffix).
func NewResolver(origin string) *Resolver {
	return &Resolver{
		origin: strings.TrimRight(origin, "/"),
		cache:  make(map[string]string),
	}
}

// ResolveProduct maps a raw product image reference to an absolute URL.
// Empty input yields empty output; the caller renders a placeholder.
// Results are memoized by the exact input string for the process lifetime.
func (r *Resolver) ResolveProduct(raw string) string {
	if raw == "" {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if resolved, ok := r.cache[raw]; ok {
		return resolved
	}

	resolved := r.resolveProduct(raw)
	r.cache[raw] = resolved
	return resolved
}

func (r *Resolver) resolveProduct(raw string) string {
	// Already absolute or an ephemeral blob reference: leave untouched.
	// This branch also makes resolution idempotent.
	if strings.HasPrefix(raw, "http://") ||
		strings.HasPrefix(raw, "https://") ||
		strings.HasPrefix(raw, "blob:") {
		return raw
	}

	if strings.HasPrefix(raw, productPathPrefix) {
		return r.origin + raw
	}

	rest := strings.TrimLeft(raw, "/")
	rest = strings.TrimPrefix(rest, "uploads/products/")
	return r.origin + productPathPrefix + rest
}

// ResolveProof maps a payment proof reference to an absolute URL. Proofs are
// requested far less often than product images, so there is no memoization.
func (r *Resolver) ResolveProof(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return r.origin + "/proofs/" + strings.TrimLeft(raw, "/")
}
