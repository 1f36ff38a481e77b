// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"fmt"

	"github.com/taibuivan/gukkan/internal/platform/sec"
	"github.com/taibuivan/gukkan/internal/platform/supabase"
)

// # Verifiers

// Verifier checks an access token and returns the user it belongs to.
type Verifier interface {
	Verify(ctx context.Context, accessToken string) (string, error)
}

// LocalVerifier checks the signature with the project JWT secret.
type LocalVerifier struct {
	verifier *sec.HMACVerifier
}

func NewLocalVerifier(secret string) *LocalVerifier {
	return &LocalVerifier{verifier: sec.NewHMACVerifier(secret)}
}

func (local *LocalVerifier) Verify(_ context.Context, accessToken string) (string, error) {
	claims, err := local.verifier.VerifyToken(accessToken)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// UserLookup resolves the owner of an access token on the auth backend.
type UserLookup interface {
	GetUser(ctx context.Context, accessToken string) (*supabase.User, error)
}

// RemoteVerifier asks the auth backend who owns the token.
type RemoteVerifier struct {
	users UserLookup
}

func NewRemoteVerifier(users UserLookup) *RemoteVerifier {
	return &RemoteVerifier{users: users}
}

func (remote *RemoteVerifier) Verify(ctx context.Context, accessToken string) (string, error) {
	user, err := remote.users.GetUser(ctx, accessToken)
	if err != nil {
		return "", fmt.Errorf("session_user_lookup_failed: %w", err)
	}
	return user.ID, nil
}
