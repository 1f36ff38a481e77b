// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taibuivan/gukkan/internal/platform/apperr"
	"github.com/taibuivan/gukkan/internal/platform/constants"
	"github.com/taibuivan/gukkan/internal/platform/ctxutil"
	"github.com/taibuivan/gukkan/internal/platform/sec"
	"github.com/taibuivan/gukkan/internal/platform/supabase"
)

// ErrNoSession means the request has no usable session. The cause is logged, never returned.
var ErrNoSession = apperr.Unauthorized("No session")

// Resolution results, used as metric labels.
const (
	ResultOK            = "ok"
	ResultRefreshed     = "refreshed"
	ResultAbsent        = "absent"
	ResultMalformed     = "malformed"
	ResultExpired       = "expired"
	ResultRefreshFailed = "refresh_failed"
	ResultRevoked       = "revoked"
	ResultStoreError    = "store_error"
	ResultInvalid       = "invalid"
)

// Refresher exchanges a refresh token for a new session.
type Refresher interface {
	RefreshSession(ctx context.Context, refreshToken string) (*supabase.Session, error)
}

// Observer receives resolution outcomes.
type Observer interface {
	ObserveSession(result string)
}

// # Gate

// Gate resolves request cookies into an [sec.Identity].
type Gate struct {
	codec       *Codec
	refresher   Refresher
	verifier    Verifier
	revocations Revocations
	observer    Observer
	timeout     time.Duration
	now         func() time.Time
}

// GateConfig wires a [Gate].
type GateConfig struct {
	Codec       *Codec
	Refresher   Refresher
	Verifier    Verifier
	Revocations Revocations // optional
	Observer    Observer
	Timeout     time.Duration
}

func NewGate(cfg GateConfig) *Gate {
	revocations := cfg.Revocations
	if revocations == nil {
		revocations = NopRevocations{}
	}
	observer := cfg.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	return &Gate{
		codec:       cfg.Codec,
		refresher:   cfg.Refresher,
		verifier:    cfg.Verifier,
		revocations: revocations,
		observer:    observer,
		timeout:     cfg.Timeout,
		now:         time.Now,
	}
}

/*
Resolve returns the identity behind the request cookies, or [ErrNoSession].

# Flow

 1. Decode the session cookie.
 2. Refresh the token pair when the access token expires within the skew
    window, and rewrite the cookies. A failed refresh clears them.
 3. Reject tokens on the revocation list.
 4. Verify the access token; its subject is the identity.

Every backend call shares one deadline. Any failure, a timeout included,
is "no session".
*/
func (gate *Gate) Resolve(parent context.Context, store CookieStore) (*sec.Identity, error) {
	ctx, cancel := context.WithTimeout(parent, gate.timeout)
	defer cancel()

	logger := ctxutil.GetLogger(parent)

	// ── 1. Decode ─────────────────────────────────────────────────────────
	current, err := gate.codec.Decode(store.GetAll())
	if err != nil {
		if errors.Is(err, ErrNoCookie) {
			return gate.reject(ResultAbsent)
		}
		logger.WarnContext(parent, "session_cookie_malformed", slog.Any("error", err))
		gate.codec.Clear(store)
		return gate.reject(ResultMalformed)
	}

	// ── 2. Refresh ────────────────────────────────────────────────────────
	result := ResultOK
	expiry := Expiry(current)
	if expiring(expiry, gate.now()) {
		if current.RefreshToken == "" {
			gate.codec.Clear(store)
			return gate.reject(ResultExpired)
		}

		refreshed, err := gate.refresher.RefreshSession(ctx, current.RefreshToken)
		if err != nil {
			logger.WarnContext(parent, "session_refresh_failed", slog.Any("error", err))
			gate.codec.Clear(store)
			return gate.reject(ResultRefreshFailed)
		}

		if err := gate.codec.Write(store, refreshed); err != nil {
			logger.ErrorContext(parent, "session_cookie_write_failed", slog.Any("error", err))
			return gate.reject(ResultRefreshFailed)
		}

		current = refreshed
		expiry = Expiry(current)
		result = ResultRefreshed
	}

	// ── 3. Revocation ─────────────────────────────────────────────────────
	revoked, err := gate.revocations.IsRevoked(ctx, current.AccessToken)
	if err != nil {
		logger.ErrorContext(parent, "session_revocation_check_failed", slog.Any("error", err))
		return gate.reject(ResultStoreError)
	}
	if revoked {
		gate.codec.Clear(store)
		return gate.reject(ResultRevoked)
	}

	// ── 4. Verification ───────────────────────────────────────────────────
	userID, err := gate.verifier.Verify(ctx, current.AccessToken)
	if err != nil || userID == "" {
		logger.WarnContext(parent, "session_verify_failed", slog.Any("error", err))
		return gate.reject(ResultInvalid)
	}

	gate.observer.ObserveSession(result)
	return &sec.Identity{
		UserID:      userID,
		AccessToken: current.AccessToken,
		ExpiresAt:   expiry,
	}, nil
}

func (gate *Gate) reject(result string) (*sec.Identity, error) {
	gate.observer.ObserveSession(result)
	return nil, ErrNoSession
}

// Expiry returns when the session's access token expires. It prefers the
// stored expiry and falls back to the token's own claim; zero means unknown.
func Expiry(session *supabase.Session) time.Time {
	if expiry := session.Expiry(); !expiry.IsZero() {
		return expiry
	}
	expiry, _ := sec.UnverifiedExpiry(session.AccessToken)
	return expiry
}

type nopObserver struct{}

func (nopObserver) ObserveSession(string) {}

func expiring(expiry, now time.Time) bool {
	identity := sec.Identity{ExpiresAt: expiry}
	return identity.Expired(now, constants.SessionRefreshSkew)
}
