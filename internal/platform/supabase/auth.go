// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// # Auth Types

// User is the subset of the auth user record the application reads.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	Aud   string `json:"aud,omitempty"`
}

// Session is a token pair issued by the auth service.
//
// Its JSON form is the payload stored in the browser session cookie.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// Expiry returns the access token expiry. A zero time means unknown.
func (session *Session) Expiry() time.Time {
	if session.ExpiresAt <= 0 {
		return time.Time{}
	}
	return time.Unix(session.ExpiresAt, 0)
}

// normalize fills ExpiresAt from ExpiresIn when the backend omitted it.
func (session *Session) normalize(now time.Time) {
	if session.ExpiresAt == 0 && session.ExpiresIn > 0 {
		session.ExpiresAt = now.Add(time.Duration(session.ExpiresIn) * time.Second).Unix()
	}
}

// # Auth Operations

// SignInWithPassword exchanges an email and password for a session.
func (client *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	return client.token(ctx, "password", map[string]string{
		"email":    email,
		"password": password,
	})
}

// RefreshSession exchanges a refresh token for a new session.
//
// Refresh tokens are single-use; the returned session replaces the old one.
func (client *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	return client.token(ctx, "refresh_token", map[string]string{
		"refresh_token": refreshToken,
	})
}

// GetUser resolves the user owning accessToken. The backend validates the token.
func (client *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	request, err := client.newRequest(ctx, http.MethodGet, "/auth/v1/user", nil, accessToken)
	if err != nil {
		return nil, err
	}

	response, err := client.do(request)
	if err != nil {
		return nil, err
	}

	user := &User{}
	if err := response.JSON(user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("supabase: user response has no id")
	}
	return user, nil
}

// SignOut revokes the refresh tokens of the session owning accessToken.
func (client *Client) SignOut(ctx context.Context, accessToken string) error {
	request, err := client.newRequest(ctx, http.MethodPost, "/auth/v1/logout?scope=local", nil, accessToken)
	if err != nil {
		return err
	}

	response, err := client.do(request)
	if err != nil {
		return err
	}
	return response.Err()
}

// Health checks that the auth service is reachable.
func (client *Client) Health(ctx context.Context) error {
	request, err := client.newRequest(ctx, http.MethodGet, "/auth/v1/health", nil, "")
	if err != nil {
		return err
	}

	response, err := client.do(request)
	if err != nil {
		return err
	}
	return response.Err()
}

// token calls the token endpoint with the given grant.
func (client *Client) token(ctx context.Context, grantType string, payload map[string]string) (*Session, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("supabase: marshal token request: %w", err)
	}

	request, err := client.newRequest(ctx, http.MethodPost, "/auth/v1/token?grant_type="+grantType, bytes.NewReader(body), "")
	if err != nil {
		return nil, err
	}

	response, err := client.do(request)
	if err != nil {
		return nil, err
	}

	session := &Session{}
	if err := response.JSON(session); err != nil {
		return nil, err
	}
	if session.AccessToken == "" {
		return nil, fmt.Errorf("supabase: token response has no access token")
	}

	session.normalize(time.Now())
	return session, nil
}
