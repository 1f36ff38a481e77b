// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives for session handling.
//
// # Architecture
//
// This package isolates security-sensitive code (JWT verification, token
// fingerprints) from the domain logic. Access tokens are minted by the hosted
// auth backend and only ever verified here, never signed.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingSubject is returned for a well-signed token that names no user.
var ErrMissingSubject = errors.New("auth: token has no subject")

// AccessClaims is the payload of a backend-issued access token.
type AccessClaims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// HMACVerifier validates access tokens signed with the project JWT secret (HS256).
type HMACVerifier struct {
	secret []byte
	leeway time.Duration
}

// NewHMACVerifier creates a verifier for the given project secret.
func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret), leeway: 5 * time.Second}
}

// VerifyToken checks the signature and validity of a JWT string.
func (verifier *HMACVerifier) VerifyToken(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
		}
		return verifier.secret, nil
	}, jwt.WithLeeway(verifier.leeway), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	return claims, nil
}

// UnverifiedExpiry reads the 'exp' claim without checking the signature.
//
// It is only used to decide whether a refresh is due; the token is still
// verified before any identity is trusted.
func UnverifiedExpiry(tokenString string) (time.Time, error) {
	claims := &AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, fmt.Errorf("auth: malformed token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}
