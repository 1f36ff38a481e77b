// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package middleware provides the cross-cutting HTTP processing chain.

It acts as a series of decorators around the standard http.Handler, injecting
traceability, safety, and security into every request lifecycle.

Standard Stack:

  - Trace: RequestID generation for log correlation.
  - Peer: ClientAddress resolves the client IP, trusting forwarding headers
    only from configured proxies.
  - Log: Structured activity logging (slog).
  - Guard: Per-IP rate limiting and browser security headers.
  - Safe: Panic recovery to prevent server crashes.
  - Session: RequireSession in front of gated screens (see authz.go).
*/
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/netip"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/gukkan/internal/platform/apperr"
	"github.com/taibuivan/gukkan/internal/platform/constants"
	"github.com/taibuivan/gukkan/internal/platform/ctxutil"
	"github.com/taibuivan/gukkan/internal/platform/respond"
	"github.com/taibuivan/gukkan/pkg/uuidv7"
)

// # Request Tracing

// RequestID attaches a correlation ID to every request for log tracing.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Reuse a well-formed ID from the client or proxy
			requestID := request.Header.Get(constants.HeaderXRequestID)

			// 2. Otherwise generate a time-sortable UUID v7
			if !uuidv7.Valid(requestID) {
				requestID = uuidv7.New()
			}

			// 3. Inject into context and response headers
			ctx := ctxutil.WithRequestID(request.Context(), requestID)
			writer.Header().Set(constants.HeaderXRequestID, requestID)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// # Activity Logging

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// StructuredLogger logs every request status and latency.
// It also injects a request-specific logger into the context.
func StructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			startTime := time.Now()

			// 1. Create a sub-logger for this specific request
			requestLogger := logger.With(
				slog.String("request_id", ctxutil.GetRequestID(request.Context())),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
				slog.String("ip", ClientIP(request)),
			)

			// 2. Inject this logger into the context for downstream use
			ctx := ctxutil.WithLogger(request.Context(), requestLogger)
			wrappedWriter := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(wrappedWriter, request.WithContext(ctx))

			// 3. Final log entry after the request is finished
			logLevel := slog.LevelInfo
			if wrappedWriter.status >= 500 {
				logLevel = slog.LevelError
			} else if wrappedWriter.status >= 400 {
				logLevel = slog.LevelWarn
			}

			// The raw query may carry a search term; it is never logged.
			requestLogger.Log(ctx, logLevel, "http_request_finished",
				slog.Int("status", wrappedWriter.status),
				slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
				slog.String("user_agent", request.UserAgent()),
			)
		})
	}
}

// # Rate Limiting

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LimitedResponder writes the response for a request over budget. The
// Retry-After header is already set.
type LimitedResponder func(writer http.ResponseWriter, request *http.Request, retryAfter int)

// RateLimitOption customizes [RateLimit].
type RateLimitOption func(*rateLimitSettings)

type rateLimitSettings struct {
	onLimited LimitedResponder
}

// OnLimited replaces the default JSON 429 body, e.g. to re-render a form.
func OnLimited(responder LimitedResponder) RateLimitOption {
	return func(settings *rateLimitSettings) { settings.onLimited = responder }
}

func respondLimited(writer http.ResponseWriter, request *http.Request, retryAfter int) {
	respond.Error(writer, request, apperr.RateLimited(retryAfter))
}

// RateLimit limits requests per client IP (see [ClientIP]) using the token
// bucket algorithm.
//
// Each call owns its client table, so different routes can carry different
// budgets. The table is swept until ctx is cancelled.
func RateLimit(ctx context.Context, rps float64, burst int, options ...RateLimitOption) func(http.Handler) http.Handler {
	settings := rateLimitSettings{onLimited: respondLimited}
	for _, option := range options {
		option(&settings)
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*rateLimitClient)
	)

	go func() {
		ticker := time.NewTicker(constants.RateLimitCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				mu.Lock()
				for ip, clientInfo := range clients {
					if time.Since(clientInfo.lastSeen) > constants.RateLimitClientTTL {
						delete(clients, ip)
					}
				}
				mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()

	retryAfter := int(math.Ceil(1 / rps))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			clientIP := ClientIP(request)

			mu.Lock()
			clientInfo, found := clients[clientIP]
			if !found {
				clientInfo = &rateLimitClient{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
				clients[clientIP] = clientInfo
			}
			clientInfo.lastSeen = time.Now()
			allowed := clientInfo.limiter.Allow()
			mu.Unlock()

			if !allowed {
				writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(retryAfter))
				settings.onLimited(writer, request, retryAfter)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Reliability & Safety

// PanicRecovery recovers from panics, logs the stack trace, and returns 500.
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}

				stackTrace := make([]byte, 4096)
				length := runtime.Stack(stackTrace, false)

				ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "panic_recovered",
					slog.Any("error", err),
					slog.String("stack", string(stackTrace[:length])),
				)

				http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(writer, request)
	})
}

// # Browser Security

// AppConfig defines the behavior needed by the security header middleware.
type AppConfig interface {
	IsProduction() bool
}

// SecurityHeaders sets the response headers every screen carries.
//
// HSTS is only sent in production, where the app is served over TLS.
func SecurityHeaders(cfg AppConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			header := writer.Header()
			header.Set("X-Content-Type-Options", "nosniff")
			header.Set("X-Frame-Options", "DENY")
			header.Set("Referrer-Policy", "same-origin")
			if cfg.IsProduction() {
				header.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Client Address

// ProxyPolicy lists the peers allowed to report the client address through
// X-Forwarded-For and X-Real-IP. The zero value and nil trust nobody.
type ProxyPolicy struct {
	trusted []netip.Prefix
}

// NewProxyPolicy parses CIDR ranges ("10.0.0.0/8") or single addresses.
func NewProxyPolicy(entries []string) (*ProxyPolicy, error) {
	policy := &ProxyPolicy{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if prefix, err := netip.ParsePrefix(entry); err == nil {
			policy.trusted = append(policy.trusted, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted_proxy_invalid: %q", entry)
		}
		addr = addr.Unmap()
		policy.trusted = append(policy.trusted, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return policy, nil
}

// Trusts reports whether addr is a configured proxy.
func (policy *ProxyPolicy) Trusts(addr netip.Addr) bool {
	if policy == nil || !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range policy.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// Resolve returns the client address for request.
//
// The socket peer is the answer unless it is a trusted proxy. Behind one,
// X-Forwarded-For is read right to left and the first hop that is not a
// trusted proxy wins; X-Real-IP is the fallback when no usable hop exists.
func (policy *ProxyPolicy) Resolve(request *http.Request) string {
	peer := peerAddress(request)
	peerAddr, err := netip.ParseAddr(peer)
	if err != nil || !policy.Trusts(peerAddr) {
		return peer
	}

	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		client := ""
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			client = hop.Unmap().String()
			if !policy.Trusts(hop) {
				return client
			}
		}
		if client != "" {
			return client
		}
	}

	if realIP, err := netip.ParseAddr(strings.TrimSpace(request.Header.Get(constants.HeaderXRealIP))); err == nil {
		return realIP.Unmap().String()
	}
	return peer
}

// ClientAddress resolves the client IP once per request and stores it for
// logging and rate limiting.
func ClientAddress(policy *ProxyPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := ctxutil.WithClientIP(request.Context(), policy.Resolve(request))
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// ClientIP returns the address stored by [ClientAddress], or the socket
// peer when the middleware did not run. Forwarding headers are never read
// here.
func ClientIP(request *http.Request) string {
	if ip := ctxutil.GetClientIP(request.Context()); ip != "" {
		return ip
	}
	return peerAddress(request)
}

func peerAddress(request *http.Request) string {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
