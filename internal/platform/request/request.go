// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away query string and form handling and the lookup of the
session identity, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"net/http"
	"strings"

	"github.com/taibuivan/gukkan/internal/platform/apperr"
	"github.com/taibuivan/gukkan/internal/platform/ctxutil"
	"github.com/taibuivan/gukkan/internal/platform/sec"
)

// maxFormBytes caps login form bodies.
const maxFormBytes = 8 << 10

/*
Query returns a single query string value, untouched.
*/
func Query(request *http.Request, name string) string {
	return request.URL.Query().Get(name)
}

/*
Form parses a bounded urlencoded body and returns the named fields.

Missing fields are returned as empty strings. Values are not trimmed; that is
the service layer's decision.
*/
func Form(writer http.ResponseWriter, request *http.Request, names ...string) (map[string]string, error) {
	request.Body = http.MaxBytesReader(writer, request.Body, maxFormBytes)
	if err := request.ParseForm(); err != nil {
		return nil, apperr.ValidationError("Invalid form payload")
	}

	values := make(map[string]string, len(names))
	for _, name := range names {
		values[name] = request.PostForm.Get(name)
	}
	return values, nil
}

/*
Identity extracts the resolved session identity from the request context.

Returns nil if the request has no session.
*/
func Identity(request *http.Request) *sec.Identity {
	return ctxutil.GetIdentity(request.Context())
}

/*
RequiredIdentity ensures the request carries a session and returns it.

Returns:
  - *sec.Identity: The session identity
  - error: apperr.Unauthorized if the request has no session
*/
func RequiredIdentity(request *http.Request) (*sec.Identity, error) {
	identity := ctxutil.GetIdentity(request.Context())
	if identity == nil || strings.TrimSpace(identity.UserID) == "" {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return identity, nil
}
