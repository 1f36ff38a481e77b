// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "time"

// # Session Identity

// Identity is the resolved owner of a request session.
//
// UserID is opaque. AccessToken is forwarded to the backend so row-level
// security evaluates queries as this user.
type Identity struct {
	UserID      string
	AccessToken string
	ExpiresAt   time.Time
}

// Expired reports whether the access token has passed its expiry, allowing for skew.
func (identity Identity) Expired(now time.Time, skew time.Duration) bool {
	if identity.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(skew).Before(identity.ExpiresAt)
}
