package server

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// DefaultMaxIterations caps the test depth a client may request.
const DefaultMaxIterations = 1_000_000

// DefaultMaxSweepCells caps the number of cells a /sweep request may classify.
const DefaultMaxSweepCells = 65_536

// SecurityConfig holds the HTTP hardening settings.
type SecurityConfig struct {
	// EnableCORS adds Access-Control-* headers for allowed origins.
	EnableCORS bool
	// AllowedOrigins lists the origins accepted for CORS; "*" accepts all.
	AllowedOrigins []string
	// AllowedMethods is both the CORS method list and the set of methods
	// the API handlers accept.
	AllowedMethods []string
	// MaxIterations is the largest n a request may ask for.
	MaxIterations int
	// MaxSweepCells is the largest w*h a sweep request may ask for.
	MaxSweepCells int
}

// DefaultSecurityConfig returns a read-only API configuration.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxIterations:  DefaultMaxIterations,
		MaxSweepCells:  DefaultMaxSweepCells,
	}
}

// allowsMethod reports whether method is in the allow-list.
func (c SecurityConfig) allowsMethod(method string) bool {
	return slices.Contains(c.AllowedMethods, method)
}

// allowsOrigin reports whether origin may receive CORS headers. A request
// without an Origin header only matches the wildcard.
func (c SecurityConfig) allowsOrigin(origin string) bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" || (origin != "" && o == origin) {
			return true
		}
	}
	return false
}

// SecurityMiddleware adds security headers and CORS handling. Preflight
// OPTIONS requests are answered with 204 without reaching next.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if config.EnableCORS {
			origin := r.Header.Get("Origin")
			if config.allowsOrigin(origin) {
				if origin == "" || slices.Contains(config.AllowedOrigins, "*") {
					h.Set("Access-Control-Allow-Origin", "*")
				} else {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
				h.Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Max-Age", strconv.Itoa(86400))
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}
