package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/giygas/prescription-assistant/config"
	"github.com/giygas/prescription-assistant/logging"
	"github.com/giygas/prescription-assistant/metrics"
	"github.com/juju/ratelimit"
)

// RealIPMiddleware extracts the real IP from X-Forwarded-For header, or drops
// the port from RemoteAddr so one client maps to one rate limit bucket
func RealIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// Take the first IP from the comma-separated list
			if idx := strings.Index(xff, ","); idx != -1 {
				xff = xff[:idx]
			}
			r.RemoteAddr = strings.TrimSpace(xff)
		} else if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			r.RemoteAddr = host
		}
		next.ServeHTTP(w, r)
	})
}

// BlockDirectAccessMiddleware only lets requests through that come from the
// reverse proxy or from localhost
func BlockDirectAccessMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Requests forwarded by nginx (trusted proxy) carry one of these headers
		if r.Header.Get("X-Real-IP") == "" && r.Header.Get("X-Forwarded-For") == "" {
			// No proxy headers, likely direct access - only localhost may skip the proxy
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				// If we can't parse the host:port, try to use the whole RemoteAddr as host
				host = r.RemoteAddr
			}

			// Allow localhost access for development and the CLI smoke tests
			if host == "127.0.0.1" || host == "::1" || host == "localhost" {
				next.ServeHTTP(w, r)
				return
			}

			logging.Warn("Direct access blocked", "remote_addr", r.RemoteAddr, "user_agent", r.Header.Get("User-Agent"))
			respondWithError(w, http.StatusForbidden, "Direct access not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestSizeMiddleware limits the size of request headers and body.
// Bodies without a Content-Length are capped while they are read.
func RequestSizeMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check Content-Length if the client sent one (-1 means unknown)
			if r.ContentLength > cfg.MaxRequestBody {
				logging.Warn("Request body too large",
					"content_length", r.ContentLength,
					"max_allowed", cfg.MaxRequestBody,
					"remote_addr", r.RemoteAddr,
					"user_agent", r.UserAgent())

				respondWithError(w, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("Request body too large. Maximum allowed size is %d bytes", cfg.MaxRequestBody))
				return
			}

			// Check header size (rough estimate: keys and values only)
			headerSize := int64(0)
			for key, values := range r.Header {
				headerSize += int64(len(key))
				for _, value := range values {
					headerSize += int64(len(value))
				}
			}

			if headerSize > cfg.MaxHeaderSize {
				logging.Warn("Request headers too large",
					"header_size", headerSize,
					"max_allowed", cfg.MaxHeaderSize,
					"remote_addr", r.RemoteAddr,
					"user_agent", r.UserAgent())

				respondWithError(w, http.StatusRequestHeaderFieldsTooLarge,
					fmt.Sprintf("Request headers too large. Maximum allowed size is %d bytes", cfg.MaxHeaderSize))
				return
			}

			// Chunked bodies have no Content-Length, cap them while they are read.
			// Handlers see *http.MaxBytesError and answer 413 themselves.
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxRequestBody)
			}

			// If all checks pass, proceed with the request
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter manages per-client rate limiting. Each client IP owns a token
// bucket; requests and chat frames take tokens from it.
type RateLimiter struct {
	clients map[string]*ratelimit.Bucket
	mu      sync.RWMutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*ratelimit.Bucket),
	}
}

func (rl *RateLimiter) getBucket(clientIP string) *ratelimit.Bucket {
	rl.mu.RLock()
	bucket, exists := rl.clients[clientIP]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if bucket, exists = rl.clients[clientIP]; !exists {
			// Create bucket: 3 tokens per second, max 1000 tokens
			bucket = ratelimit.NewBucketWithRate(3, 1000)
			rl.clients[clientIP] = bucket
		}
		rl.mu.Unlock()
	}

	return bucket
}

// Allow takes cost tokens from the client's bucket and reports whether there
// were enough. Chat frames use it since they never pass through the HTTP middleware.
func (rl *RateLimiter) Allow(clientIP string, cost int64) bool {
	return rl.getBucket(clientIP).TakeAvailable(cost) >= cost
}

// removeFullBuckets forgets clients whose bucket refilled completely and
// returns how many buckets remain
func (rl *RateLimiter) removeFullBuckets() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// A full bucket means the client has been idle long enough to refill,
	// it will get a fresh one on its next request
	for ip, bucket := range rl.clients {
		if bucket.Available() == bucket.Capacity() {
			delete(rl.clients, ip)
		}
	}
	return len(rl.clients)
}

// cleanup removes idle clients periodically
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		for range ticker.C {
			metrics.RateLimiterBucketsTotal.Set(float64(rl.removeFullBuckets()))
		}
	}()
}

var globalRateLimiter = NewRateLimiter()

// ClientRateLimiter returns the limiter shared by RateLimitHandler, so other
// entry points can charge the same buckets
func ClientRateLimiter() *RateLimiter {
	return globalRateLimiter
}

func init() {
	globalRateLimiter.cleanup()
}

// getTokenCost prices a request by the work it causes: storing a prescription
// and holding a chat connection cost more than reading one back
func getTokenCost(r *http.Request) int64 {
	path := strings.TrimSuffix(r.URL.Path, "/")

	// Check for exact matches first
	switch path {
	case "/metrics":
		return 0 // Free for the Prometheus scraper
	case "/health":
		return 5 // Low cost for health check
	case "/v1/ask":
		return 20 // Validates and resolves a whole medicine list
	case "/v1/prescriptions":
		if r.Method == http.MethodPost {
			return 50 // Stores a new prescription
		}
		return 5
	}

	// Then the per-prescription routes
	if strings.HasPrefix(path, "/v1/prescriptions/") {
		switch {
		case strings.HasSuffix(path, "/chat"):
			return 50 // Holds a connection, frames are charged separately
		case strings.HasSuffix(path, "/ask"):
			return 10 // One question
		case r.Method == http.MethodPut:
			return 30 // Validates and swaps the medicine list
		}
	}

	return 5 // Get, delete and unknown routes
}

// RateLimitHandler implements rate limiting using token bucket
func RateLimitHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// RealIPMiddleware usually strips the port already
		clientIP := r.RemoteAddr
		if host, _, err := net.SplitHostPort(clientIP); err == nil {
			clientIP = host
		}

		bucket := globalRateLimiter.getBucket(clientIP)
		tokenCost := getTokenCost(r)

		// Advertise the bucket shape on every response
		w.Header().Set("X-RateLimit-Limit", "1000")
		w.Header().Set("X-RateLimit-Rate", "3")

		if bucket.TakeAvailable(tokenCost) < tokenCost {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "60")
			logging.Warn("Rate limit exceeded", "client_ip", clientIP, "path", r.URL.Path, "cost", tokenCost)
			respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(bucket.Available(), 10))

		next.ServeHTTP(w, r)
	})
}

// respondWithError writes the same error body as the handlers package
func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	payload := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error("Failed to encode JSON response", "error", err)
	}
}
