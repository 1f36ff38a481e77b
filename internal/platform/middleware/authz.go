// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/gukkan/internal/platform/constants"
	"github.com/taibuivan/gukkan/internal/platform/ctxutil"
	"github.com/taibuivan/gukkan/internal/platform/respond"
	"github.com/taibuivan/gukkan/internal/platform/sec"
	"github.com/taibuivan/gukkan/internal/session"
)

// SessionResolver resolves the identity behind a request's cookies.
//
// Defining it here decouples the middleware from [session.Gate] so tests can
// inject a stub.
type SessionResolver interface {
	Resolve(ctx context.Context, store session.CookieStore) (*sec.Identity, error)
}

// RequireSession guards a screen behind a signed-in session.
//
// # Flow
//  1. Resolve the session cookies, letting the resolver rewrite them on refresh.
//  2. If there is no session, redirect to the login screen before any handler runs.
//  3. Otherwise inject the [*sec.Identity] and a user-scoped logger into the context.
func RequireSession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity, err := resolver.Resolve(request.Context(), session.NewHTTPCookieStore(writer, request))
			if err != nil || identity == nil {
				respond.Redirect(writer, request, constants.RouteLogin)
				return
			}

			ctx := ctxutil.WithIdentity(request.Context(), identity)
			ctx = ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With(slog.String("user_id", identity.UserID)))

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
