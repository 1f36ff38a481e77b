// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Library: Row caps and backend identifiers.
  - Session: Cookie sizing and refresh skew.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "gukkan"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// LoginRateLimitRPS throttles sign-in attempts per IP.
	LoginRateLimitRPS = 0.2

	// LoginRateLimitBurst allows a few quick retries before throttling.
	LoginRateLimitBurst = 5
)

// # Library

const (
	// LibraryRowLimit caps every list and search query.
	LibraryRowLimit = 30

	// BackendPostgREST reads library rows through the Supabase REST interface.
	BackendPostgREST = "postgrest"

	// BackendPostgres reads library rows through a direct pgx connection.
	BackendPostgres = "postgres"
)

// # Session

const (
	// SessionCookieChunkSize is the largest value written into a single cookie.
	SessionCookieChunkSize = 3180

	// SessionCookieMaxAge mirrors the browser-side lifetime of Supabase session cookies.
	SessionCookieMaxAge = 400 * 24 * time.Hour

	// SessionRefreshSkew refreshes tokens that expire within this window.
	SessionRefreshSkew = 30 * time.Second

	// SessionCookieBase64Prefix marks a base64url encoded session value.
	SessionCookieBase64Prefix = "base64-"

	// SessionRevocationFallbackTTL applies when a revoked token has no readable expiry.
	SessionRevocationFallbackTTL = time.Hour
)

// # Routes

const (
	RouteHome   = "/"
	RouteLogin  = "/login"
	RouteLogout = "/logout"
	RouteSearch = "/games/search"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderCacheControl  = "Cache-Control"
	HeaderContentType   = "Content-Type"
	HeaderRetryAfter    = "Retry-After"
)

// # JSON Field Identifiers

const (
	FieldStatus = "status"
	FieldChecks = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixRevokedToken = "session:revoked:"
)
