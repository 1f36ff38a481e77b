// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/gukkan/internal/platform/constants"
	"github.com/taibuivan/gukkan/internal/platform/supabase"
)

// Codec errors.
var (
	ErrNoCookie        = errors.New("session: no session cookie")
	ErrMalformedCookie = errors.New("session: malformed session cookie")
)

// # Cookie Codec

// Codec maps a [supabase.Session] to and from the browser cookie format.
//
// The value is the session JSON, either raw (URI-encoded) or prefixed with
// "base64-" and base64url encoded. Values longer than the chunk size are
// split over cookies named '<name>.0', '<name>.1' and so on.
type Codec struct {
	name      string
	secure    bool
	maxAge    time.Duration
	chunkSize int
}

// NewCodec builds a codec for the cookie called name.
func NewCodec(name string, secure bool) *Codec {
	return &Codec{
		name:      name,
		secure:    secure,
		maxAge:    constants.SessionCookieMaxAge,
		chunkSize: constants.SessionCookieChunkSize,
	}
}

// Name returns the base cookie name.
func (codec *Codec) Name() string { return codec.name }

// Decode reassembles and parses the session from the request cookies.
//
// A single cookie named exactly like the codec wins over chunks. Chunks must
// be consecutive from '.0'; a gap ends the value.
func (codec *Codec) Decode(cookies []*http.Cookie) (*supabase.Session, error) {
	value, ok := codec.assemble(cookies)
	if !ok {
		return nil, ErrNoCookie
	}

	payload, err := decodeValue(value)
	if err != nil {
		return nil, err
	}

	session := &supabase.Session{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCookie, err)
	}
	if session.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token", ErrMalformedCookie)
	}
	return session, nil
}

// Encode serializes session into one or more cookies.
func (codec *Codec) Encode(session *supabase.Session) ([]*http.Cookie, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("session: encode: %w", err)
	}

	value := constants.SessionCookieBase64Prefix + base64.RawURLEncoding.EncodeToString(payload)
	if len(value) <= codec.chunkSize {
		return []*http.Cookie{codec.cookie(codec.name, value)}, nil
	}

	var cookies []*http.Cookie
	for index := 0; len(value) > 0; index++ {
		size := min(codec.chunkSize, len(value))
		cookies = append(cookies, codec.cookie(codec.chunkName(index), value[:size]))
		value = value[size:]
	}
	return cookies, nil
}

// Write stores session and expires any stale cookie of a previous encoding.
func (codec *Codec) Write(store CookieStore, session *supabase.Session) error {
	cookies, err := codec.Encode(session)
	if err != nil {
		return err
	}

	written := make(map[string]bool, len(cookies))
	for _, cookie := range cookies {
		written[cookie.Name] = true
	}

	for _, existing := range store.GetAll() {
		if codec.owns(existing.Name) && !written[existing.Name] {
			cookies = append(cookies, codec.expired(existing.Name))
		}
	}

	store.SetAll(cookies)
	return nil
}

// Clear expires every session cookie present on the request.
func (codec *Codec) Clear(store CookieStore) {
	var cookies []*http.Cookie
	for _, existing := range store.GetAll() {
		if codec.owns(existing.Name) {
			cookies = append(cookies, codec.expired(existing.Name))
		}
	}
	if len(cookies) > 0 {
		store.SetAll(cookies)
	}
}

// # Internals

func (codec *Codec) assemble(cookies []*http.Cookie) (string, bool) {
	chunks := make(map[int]string)
	for _, cookie := range cookies {
		if cookie.Name == codec.name {
			return cookie.Value, cookie.Value != ""
		}
		if index, ok := codec.chunkIndex(cookie.Name); ok {
			chunks[index] = cookie.Value
		}
	}

	if len(chunks) == 0 {
		return "", false
	}

	indexes := make([]int, 0, len(chunks))
	for index := range chunks {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)

	var builder strings.Builder
	for expected, index := range indexes {
		if index != expected {
			break
		}
		builder.WriteString(chunks[index])
	}
	return builder.String(), builder.Len() > 0
}

func decodeValue(value string) ([]byte, error) {
	if encoded, ok := strings.CutPrefix(value, constants.SessionCookieBase64Prefix); ok {
		payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCookie, err)
		}
		return payload, nil
	}

	unescaped, err := url.PathUnescape(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCookie, err)
	}
	return []byte(unescaped), nil
}

func (codec *Codec) chunkName(index int) string {
	return codec.name + "." + strconv.Itoa(index)
}

func (codec *Codec) chunkIndex(name string) (int, bool) {
	suffix, ok := strings.CutPrefix(name, codec.name+".")
	if !ok {
		return 0, false
	}
	index, err := strconv.Atoi(suffix)
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}

func (codec *Codec) owns(name string) bool {
	if name == codec.name {
		return true
	}
	_, ok := codec.chunkIndex(name)
	return ok
}

func (codec *Codec) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(codec.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   codec.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (codec *Codec) expired(name string) *http.Cookie {
	cookie := codec.cookie(name, "")
	cookie.MaxAge = -1
	return cookie
}
