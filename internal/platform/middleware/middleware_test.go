// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gukkan/internal/platform/ctxutil"
	"github.com/taibuivan/gukkan/internal/platform/middleware"
	"github.com/taibuivan/gukkan/internal/platform/sec"
	"github.com/taibuivan/gukkan/internal/session"
)

var ok = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusNoContent)
})

/*
TestRequestID generates an ID when missing and keeps a well-formed one.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	parsed, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))

	provided := uuid.NewString()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", provided)
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, provided, seen)

	request = httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "<script>")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.NotEqual(t, "<script>", seen)
}

/*
TestStructuredLogger logs one line per request without the query string.
*/
func TestStructuredLogger(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buffer, nil))

	handler := middleware.StructuredLogger(logger)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.NotSame(t, slog.Default(), ctxutil.GetLogger(request.Context()))
		writer.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/games/search?q=secret", nil))

	line := buffer.String()
	assert.Contains(t, line, `"msg":"http_request_finished"`)
	assert.Contains(t, line, `"status":418`)
	assert.Contains(t, line, `"level":"WARN"`)
	assert.NotContains(t, line, "secret")
}

/*
TestRateLimit rejects the request past the burst with 429.
*/
func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, 0.5, 2)(ok)

	codes := make([]int, 0, 3)
	for range 3 {
		request := httptest.NewRequest(http.MethodPost, "/login", nil)
		request.RemoteAddr = "203.0.113.9:5000"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
		if recorder.Code == http.StatusTooManyRequests {
			assert.Equal(t, "2", recorder.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// Other clients have their own bucket.
	request := httptest.NewRequest(http.MethodPost, "/login", nil)
	request.RemoteAddr = "198.51.100.1:5000"
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "boom")
}

type environment bool

func (production environment) IsProduction() bool { return bool(production) }

func TestSecurityHeaders(t *testing.T) {
	recorder := httptest.NewRecorder()
	middleware.SecurityHeaders(environment(false))(ok).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", recorder.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", recorder.Header().Get("X-Frame-Options"))
	assert.Empty(t, recorder.Header().Get("Strict-Transport-Security"))

	recorder = httptest.NewRecorder()
	middleware.SecurityHeaders(environment(true))(ok).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, recorder.Header().Get("Strict-Transport-Security"))
}

/*
TestProxyPolicy_Resolve honours forwarding headers only from trusted peers.
*/
func TestProxyPolicy_Resolve(t *testing.T) {
	policy, err := middleware.NewProxyPolicy([]string{"10.0.0.0/8", "192.0.2.10"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		peer      string
		forwarded string
		realIP    string
		want      string
	}{
		{"direct_client", "203.0.113.9:5000", "", "", "203.0.113.9"},
		{"untrusted_peer_forwarded_ignored", "203.0.113.9:5000", "10.0.0.7", "", "203.0.113.9"},
		{"untrusted_peer_real_ip_ignored", "203.0.113.9:5000", "", "198.51.100.7", "203.0.113.9"},
		{"trusted_proxy", "10.1.2.3:443", "198.51.100.7", "", "198.51.100.7"},
		{"trusted_single_address", "192.0.2.10:443", "198.51.100.7", "", "198.51.100.7"},
		{"spoofed_leftmost_hop", "10.1.2.3:443", "1.2.3.4, 198.51.100.7, 10.9.9.9", "", "198.51.100.7"},
		{"all_hops_trusted", "10.1.2.3:443", "10.0.0.1, 10.0.0.2", "", "10.0.0.1"},
		{"trusted_real_ip", "10.1.2.3:443", "", "198.51.100.8", "198.51.100.8"},
		{"garbage_header", "10.1.2.3:443", "not-an-ip", "", "10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.RemoteAddr = tt.peer
			if tt.forwarded != "" {
				request.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				request.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, policy.Resolve(request))
		})
	}
}

func TestNewProxyPolicy(t *testing.T) {
	_, err := middleware.NewProxyPolicy([]string{"10.0.0.0/8", " ", "::1"})
	require.NoError(t, err)

	_, err = middleware.NewProxyPolicy([]string{"proxy.internal"})
	require.Error(t, err)

	var nobody *middleware.ProxyPolicy
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.1:80"
	request.Header.Set("X-Forwarded-For", "198.51.100.7")
	assert.Equal(t, "10.0.0.1", nobody.Resolve(request))
}

/*
TestRateLimit_IgnoresSpoofedForwarding keeps one bucket per socket address
when the client rotates X-Forwarded-For.
*/
func TestRateLimit_IgnoresSpoofedForwarding(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	policy, err := middleware.NewProxyPolicy(nil)
	require.NoError(t, err)
	handler := middleware.ClientAddress(policy)(middleware.RateLimit(ctx, 0.2, 5)(ok))

	allowed := 0
	for i := range 100 {
		request := httptest.NewRequest(http.MethodPost, "/login", nil)
		request.RemoteAddr = "203.0.113.9:5000"
		request.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		request.Header.Set("X-Real-IP", fmt.Sprintf("10.0.1.%d", i))
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		if recorder.Code != http.StatusTooManyRequests {
			allowed++
		}
	}
	assert.Equal(t, 5, allowed)
}

/*
TestRateLimit_BehindTrustedProxy splits buckets by the forwarded client.
*/
func TestRateLimit_BehindTrustedProxy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	policy, err := middleware.NewProxyPolicy([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	handler := middleware.ClientAddress(policy)(middleware.RateLimit(ctx, 0.2, 1)(ok))

	for _, client := range []string{"198.51.100.1", "198.51.100.2"} {
		request := httptest.NewRequest(http.MethodPost, "/login", nil)
		request.RemoteAddr = "10.0.0.2:443"
		request.Header.Set("X-Forwarded-For", client)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusNoContent, recorder.Code, client)
	}
}

func TestRateLimit_OnLimited(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var gotRetry int
	handler := middleware.RateLimit(ctx, 0.2, 1, middleware.OnLimited(func(writer http.ResponseWriter, _ *http.Request, retryAfter int) {
		gotRetry = retryAfter
		writer.WriteHeader(http.StatusTooManyRequests)
		_, _ = writer.Write([]byte("<p>slow down</p>"))
	}))(ok)

	var recorder *httptest.ResponseRecorder
	for range 2 {
		recorder = httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/login", nil))
	}
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.Equal(t, "<p>slow down</p>", recorder.Body.String())
	assert.Equal(t, "5", recorder.Header().Get("Retry-After"))
	assert.Equal(t, 5, gotRetry)
}

// # Session Guard

type stubResolver struct {
	identity *sec.Identity
	calls    int
}

func (resolver *stubResolver) Resolve(context.Context, session.CookieStore) (*sec.Identity, error) {
	resolver.calls++
	if resolver.identity == nil {
		return nil, session.ErrNoSession
	}
	return resolver.identity, nil
}

/*
TestRequireSession redirects anonymous requests before the handler runs and
injects the identity otherwise.
*/
func TestRequireSession(t *testing.T) {
	var reached *sec.Identity
	inner := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		reached = ctxutil.GetIdentity(request.Context())
		writer.WriteHeader(http.StatusOK)
	})

	anonymous := &stubResolver{}
	recorder := httptest.NewRecorder()
	middleware.RequireSession(anonymous)(inner).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/games/search?q=a", nil))
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/login", recorder.Header().Get("Location"))
	assert.Nil(t, reached)
	assert.Equal(t, 1, anonymous.calls)

	signedIn := &stubResolver{identity: &sec.Identity{UserID: "user-1", AccessToken: "token"}}
	recorder = httptest.NewRecorder()
	middleware.RequireSession(signedIn)(inner).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/games/search?q=a", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, reached)
	assert.Equal(t, "user-1", reached.UserID)
}
