// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gukkan/internal/platform/supabase"
	"github.com/taibuivan/gukkan/internal/session"
)

const jwtSecret = "test-secret-with-enough-length-0123456789"

func mintToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return signed
}

// # Fakes

type fakeRefresher struct {
	session *supabase.Session
	err     error
	calls   int
	last    string
}

func (refresher *fakeRefresher) RefreshSession(_ context.Context, refreshToken string) (*supabase.Session, error) {
	refresher.calls++
	refresher.last = refreshToken
	return refresher.session, refresher.err
}

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (revocations *fakeRevocations) IsRevoked(_ context.Context, accessToken string) (bool, error) {
	return revocations.revoked[accessToken], revocations.err
}

func (revocations *fakeRevocations) Revoke(_ context.Context, accessToken string, _ time.Time) error {
	revocations.revoked[accessToken] = true
	return nil
}

type recordingObserver struct {
	mu      sync.Mutex
	results []string
}

func (observer *recordingObserver) ObserveSession(result string) {
	observer.mu.Lock()
	defer observer.mu.Unlock()
	observer.results = append(observer.results, result)
}

type fixture struct {
	gate        *session.Gate
	codec       *session.Codec
	refresher   *fakeRefresher
	revocations *fakeRevocations
	observer    *recordingObserver
}

func newFixture(verifier session.Verifier) *fixture {
	f := &fixture{
		codec:       session.NewCodec(cookieName, true),
		refresher:   &fakeRefresher{},
		revocations: &fakeRevocations{revoked: map[string]bool{}},
		observer:    &recordingObserver{},
	}
	if verifier == nil {
		verifier = session.NewLocalVerifier(jwtSecret)
	}
	f.gate = session.NewGate(session.GateConfig{
		Codec:       f.codec,
		Refresher:   f.refresher,
		Verifier:    verifier,
		Revocations: f.revocations,
		Observer:    f.observer,
		Timeout:     time.Second,
	})
	return f
}

func (f *fixture) storeWith(t *testing.T, current *supabase.Session) *memoryStore {
	t.Helper()
	cookies, err := f.codec.Encode(current)
	require.NoError(t, err)
	return &memoryStore{in: cookies}
}

// # Tests

/*
TestGate_Resolve_Valid resolves the token subject without refreshing.
*/
func TestGate_Resolve_Valid(t *testing.T) {
	f := newFixture(nil)
	expiresAt := time.Now().Add(time.Hour)
	accessToken := mintToken(t, "user-1", expiresAt)
	store := f.storeWith(t, &supabase.Session{AccessToken: accessToken, RefreshToken: "rt", ExpiresAt: expiresAt.Unix()})

	identity, err := f.gate.Resolve(context.Background(), store)

	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, accessToken, identity.AccessToken)
	assert.Equal(t, expiresAt.Unix(), identity.ExpiresAt.Unix())
	assert.Zero(t, f.refresher.calls)
	assert.Empty(t, store.out)
	assert.Equal(t, []string{session.ResultOK}, f.observer.results)
}

/*
TestGate_Resolve_Refresh swaps an expiring pair and rewrites the cookie.
*/
func TestGate_Resolve_Refresh(t *testing.T) {
	f := newFixture(nil)
	stale := mintToken(t, "user-1", time.Now().Add(10*time.Second))
	fresh := mintToken(t, "user-1", time.Now().Add(time.Hour))
	f.refresher.session = &supabase.Session{AccessToken: fresh, RefreshToken: "rt-2", ExpiresIn: 3600}

	// No expires_at: the token's own claim decides.
	store := f.storeWith(t, &supabase.Session{AccessToken: stale, RefreshToken: "rt-1"})

	identity, err := f.gate.Resolve(context.Background(), store)

	require.NoError(t, err)
	assert.Equal(t, fresh, identity.AccessToken)
	assert.Equal(t, 1, f.refresher.calls)
	assert.Equal(t, "rt-1", f.refresher.last)
	assert.Equal(t, []string{session.ResultRefreshed}, f.observer.results)

	rewritten, err := f.codec.Decode(store.out)
	require.NoError(t, err)
	assert.Equal(t, fresh, rewritten.AccessToken)
	assert.Equal(t, "rt-2", rewritten.RefreshToken)
}

/*
TestGate_Resolve_NoSession covers every fail-closed branch.
*/
func TestGate_Resolve_NoSession(t *testing.T) {
	valid := func(t *testing.T) string { return mintToken(t, "user-1", time.Now().Add(time.Hour)) }

	tests := []struct {
		name    string
		arrange func(t *testing.T, f *fixture) *memoryStore
		result  string
		cleared bool
	}{
		{
			name:    "NoCookie",
			arrange: func(_ *testing.T, _ *fixture) *memoryStore { return &memoryStore{} },
			result:  session.ResultAbsent,
		},
		{
			name: "Malformed",
			arrange: func(_ *testing.T, _ *fixture) *memoryStore {
				return &memoryStore{in: []*http.Cookie{{Name: cookieName, Value: "garbage"}}}
			},
			result:  session.ResultMalformed,
			cleared: true,
		},
		{
			name: "ExpiredWithoutRefreshToken",
			arrange: func(t *testing.T, f *fixture) *memoryStore {
				return f.storeWith(t, &supabase.Session{AccessToken: mintToken(t, "user-1", time.Now().Add(-time.Minute))})
			},
			result:  session.ResultExpired,
			cleared: true,
		},
		{
			name: "RefreshFailed",
			arrange: func(t *testing.T, f *fixture) *memoryStore {
				f.refresher.err = errors.New("refresh token already used")
				return f.storeWith(t, &supabase.Session{AccessToken: mintToken(t, "user-1", time.Now()), RefreshToken: "rt"})
			},
			result:  session.ResultRefreshFailed,
			cleared: true,
		},
		{
			name: "Revoked",
			arrange: func(t *testing.T, f *fixture) *memoryStore {
				token := valid(t)
				f.revocations.revoked[token] = true
				return f.storeWith(t, &supabase.Session{AccessToken: token})
			},
			result:  session.ResultRevoked,
			cleared: true,
		},
		{
			name: "RevocationStoreDown",
			arrange: func(t *testing.T, f *fixture) *memoryStore {
				f.revocations.err = errors.New("dial tcp: connection refused")
				return f.storeWith(t, &supabase.Session{AccessToken: valid(t)})
			},
			result: session.ResultStoreError,
		},
		{
			name: "BadSignature",
			arrange: func(t *testing.T, f *fixture) *memoryStore {
				token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
					Subject:   "user-1",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				})
				forged, err := token.SignedString([]byte("another-secret"))
				require.NoError(t, err)
				return f.storeWith(t, &supabase.Session{AccessToken: forged})
			},
			result: session.ResultInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)
			store := tt.arrange(t, f)

			identity, err := f.gate.Resolve(context.Background(), store)

			assert.Nil(t, identity)
			assert.ErrorIs(t, err, session.ErrNoSession)
			assert.Equal(t, []string{tt.result}, f.observer.results)
			if tt.cleared {
				require.NotEmpty(t, store.out)
				for _, cookie := range store.out {
					assert.Equal(t, -1, cookie.MaxAge)
				}
			} else {
				assert.Empty(t, store.out)
			}
		})
	}
}

// slowLookup blocks until the deadline.
type slowLookup struct{}

func (slowLookup) GetUser(ctx context.Context, _ string) (*supabase.User, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type staticLookup struct{ id string }

func (lookup staticLookup) GetUser(context.Context, string) (*supabase.User, error) {
	return &supabase.User{ID: lookup.id}, nil
}

/*
TestGate_Resolve_RemoteVerifier asks the auth backend and fails closed on timeout.
*/
func TestGate_Resolve_RemoteVerifier(t *testing.T) {
	current := &supabase.Session{AccessToken: "opaque", ExpiresAt: time.Now().Add(time.Hour).Unix()}

	f := newFixture(session.NewRemoteVerifier(staticLookup{id: "user-9"}))
	identity, err := f.gate.Resolve(context.Background(), f.storeWith(t, current))
	require.NoError(t, err)
	assert.Equal(t, "user-9", identity.UserID)

	slow := newFixture(session.NewRemoteVerifier(slowLookup{}))
	slow.gate = session.NewGate(session.GateConfig{
		Codec:    slow.codec,
		Verifier: session.NewRemoteVerifier(slowLookup{}),
		Observer: slow.observer,
		Timeout:  20 * time.Millisecond,
	})
	identity, err = slow.gate.Resolve(context.Background(), slow.storeWith(t, current))
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.Equal(t, []string{session.ResultInvalid}, slow.observer.results)
}
