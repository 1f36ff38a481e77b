// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session resolves the signed-in user of a request from its cookies.

# Architecture

The browser holds the backend-issued token pair in a session cookie. On each
gated request the [Gate] decodes that cookie, refreshes the pair when the
access token is about to expire, consults the revocation list and verifies
the access token. Any failure along the way is "no session".

Cookie access goes through the [CookieStore] capability so the gate never
touches the transport directly and can be driven from tests.
*/
package session

import "net/http"

// # Cookie Capability

// CookieStore reads the incoming cookies and queues outgoing ones.
type CookieStore interface {
	// GetAll returns every cookie sent with the request.
	GetAll() []*http.Cookie

	// SetAll queues cookies on the response. A cookie with MaxAge < 0 deletes it.
	SetAll(cookies []*http.Cookie)
}

// HTTPCookieStore adapts a request/response pair to [CookieStore].
type HTTPCookieStore struct {
	writer  http.ResponseWriter
	request *http.Request
}

func NewHTTPCookieStore(writer http.ResponseWriter, request *http.Request) *HTTPCookieStore {
	return &HTTPCookieStore{writer: writer, request: request}
}

func (store *HTTPCookieStore) GetAll() []*http.Cookie {
	return store.request.Cookies()
}

func (store *HTTPCookieStore) SetAll(cookies []*http.Cookie) {
	for _, cookie := range cookies {
		http.SetCookie(store.writer, cookie)
	}
}
